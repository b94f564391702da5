package review

import (
	"context"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// Source looks applications up by number. It returns every matching row.
type Source interface {
	Application(ctx context.Context, number string) ([]records.Record, error)
}

// Repository keeps past reviews.
type Repository interface {
	Save(ctx context.Context, r *Review) error
	History(ctx context.Context, number string, limit int) ([]*Review, error)
}
