package ai

import (
	"context"

	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

// Client writes a short reviewer brief for one application.
type Client interface {
	Brief(ctx context.Context, application records.Record) (string, error)
}
