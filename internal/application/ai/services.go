package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domain "github.com/bryanwahyu/admissions-desk/internal/domain/ai"
	"github.com/bryanwahyu/admissions-desk/internal/domain/records"
)

const defaultTimeout = 20 * time.Second

// Service bounds every brief request in time and logs quota trouble once per call.
type Service struct {
	client  domain.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewService(client domain.Client, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, timeout: timeout, logger: logger}
}

// Brief implements ai.Client so the service can stand in for a raw provider.
func (s *Service) Brief(ctx context.Context, application records.Record) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	brief, err := s.client.Brief(ctx, application)
	if errors.Is(err, domain.ErrQuotaExceeded) {
		s.logger.WarnContext(ctx, "ai quota exceeded")
	}
	return brief, err
}
