package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
	domain "github.com/bryanwahyu/admissions-desk/internal/domain/review"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Save inserts a review; the application is stored as JSON in field order.
func (r *ReviewRepository) Save(ctx context.Context, rv *domain.Review) error {
	const q = `
INSERT INTO application_reviews
  (id, application_number, application_json, brief, reviewed_by, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  application_json=VALUES(application_json), brief=VALUES(brief), reviewed_by=VALUES(reviewed_by);
`
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
WHERE application_number=?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, number, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Review, 0, limit)
	for rows.Next() {
		var (
			rv  domain.Review
			app []byte
		)
		if err := rows.Scan(&rv.ID, &rv.Number, &app, &rv.Brief, &rv.ReviewedBy, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if rv.Application, err = records.DecodeRecord(app); err != nil {
			return nil, fmt.Errorf("decode review %s: %w", rv.ID, err)
		}
		rv.ReviewedBy = dashToEmpty(rv.ReviewedBy)
		out = append(out, &rv)
	}
	return out, rows.Err()
}
