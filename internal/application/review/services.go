package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/admissions-desk/internal/application"
	"github.com/bryanwahyu/admissions-desk/internal/domain/ai"
	domain "github.com/bryanwahyu/admissions-desk/internal/domain/review"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service looks applications up by number. Brief and Repo are optional.
type Service struct {
	Source domain.Source
	Brief  ai.Client
	Repo   domain.Repository
	Clock  application.Clock
	Logger *slog.Logger
}

// Lookup fetches the first application matching number. A failing brief or
// a failing save never fails the lookup; both are logged.
func (s *Service) Lookup(ctx context.Context, number, reviewer string) (*domain.Review, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.ErrNumberRequired
	}

	rows, err := s.Source.Application(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", number, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, number)
	}

	r := &domain.Review{
		ID:          uuid.NewString(),
		Number:      number,
		Application: rows[0],
		ReviewedBy:  reviewer,
		CreatedAt:   s.now(),
	}
	log := s.log().With(slog.String("application_number", number))

	if s.Brief != nil {
		brief, err := s.Brief.Brief(ctx, r.Application)
		switch {
		case errors.Is(err, ai.ErrQuotaExceeded):
			log.WarnContext(ctx, "brief skipped, ai quota exceeded")
		case err != nil:
			log.WarnContext(ctx, "brief failed", slog.String("error", err.Error()))
		default:
			r.Brief = brief
		}
	}

	if s.Repo != nil {
		if err := s.Repo.Save(ctx, r); err != nil {
			log.WarnContext(ctx, "review not recorded", slog.String("error", err.Error()))
		}
	}
	log.InfoContext(ctx, "application reviewed", slog.Int("matches", len(rows)))
	return r, nil
}

// History lists past reviews of number, newest first. limit is clamped to [1, 100]
// and defaults to 20.
func (s *Service) History(ctx context.Context, number string, limit int) ([]*domain.Review, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.ErrNumberRequired
	}
	if s.Repo == nil {
		return []*domain.Review{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	out, err := s.Repo.History(ctx, number, limit)
	if err != nil {
		return nil, fmt.Errorf("review history: %w", err)
	}
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
