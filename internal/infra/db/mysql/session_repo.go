package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/admissions-desk/internal/domain/session"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save insert/update a session
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO desk_sessions (id, username, email, created_at)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE
  username=VALUES(username), email=VALUES(email);
`
	_, err := r.db.ExecContext(ctx, q, string(s.ID), s.Username, s.Email, timeOrNow(s.CreatedAt))
	return err
}

func (r *SessionRepository) Get(ctx context.Context, id domain.ID) (*domain.Session, error) {
	const q = `
SELECT id, username, email, created_at
FROM desk_sessions
WHERE id=? LIMIT 1;
`
	var s domain.Session
	err := r.db.QueryRowContext(ctx, q, string(id)).Scan(&s.ID, &s.Username, &s.Email, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session; deleting a missing one is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id domain.ID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM desk_sessions WHERE id=?;`, string(id))
	return err
}
