package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
	domain "github.com/bryanwahyu/admissions-desk/internal/domain/review"
)

type ReviewRepository struct{ db *sql.DB }

func NewReviewRepository(db *sql.DB) *ReviewRepository { return &ReviewRepository{db: db} }

// Save inserts a review. application_json is TEXT so the field order survives.
func (r *ReviewRepository) Save(ctx context.Context, rv *domain.Review) error {
	const q = `
INSERT INTO application_reviews
  (id, application_number, application_json, brief, reviewed_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
 application_json = EXCLUDED.application_json,
 brief = EXCLUDED.brief,
 reviewed_by = EXCLUDED.reviewed_by;`
	app, err := rv.Application.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		rv.ID, rv.Number, string(app), rv.Brief, stringOrDash(rv.ReviewedBy), timeOrNow(rv.CreatedAt))
	return err
}

// History returns the latest reviews of one application, newest first.
func (r *ReviewRepository) History(ctx context.Context, number string, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, application_number, application_json, brief, reviewed_by, created_at
FROM application_reviews
WHERE application_number=$1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, number, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Review, 0, limit)
	for rows.Next() {
		var (
			rv  domain.Review
			app string
		)
		if err := rows.Scan(&rv.ID, &rv.Number, &app, &rv.Brief, &rv.ReviewedBy, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if rv.Application, err = records.DecodeRecord([]byte(app)); err != nil {
			return nil, fmt.Errorf("decode review %s: %w", rv.ID, err)
		}
		rv.ReviewedBy = dashToEmpty(rv.ReviewedBy)
		out = append(out, &rv)
	}
	return out, rows.Err()
}
