package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/admissions-desk/internal/application"
	domain "github.com/bryanwahyu/admissions-desk/internal/domain/session"
	"github.com/bryanwahyu/admissions-desk/internal/logger"
)

// Service signs employees in against the upstream and keeps their sessions.
type Service struct {
	Auth   domain.Authenticator
	Store  domain.Store
	Clock  application.Clock
	Logger *slog.Logger

	// NewID generates session ids; uuid.NewString when nil.
	NewID func() string
}

// Profile is what the profile screen shows, fallbacks already applied.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Initial string `json:"initial"`
}

// Login checks the credentials upstream and opens a session for the employee.
// A refused login returns a *domain.RejectedError carrying the upstream message.
func (s *Service) Login(ctx context.Context, empid, password string) (*domain.Session, error) {
	empid = strings.TrimSpace(empid)
	if empid == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	res, err := s.Auth.Authenticate(ctx, empid, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !res.Accepted() {
		s.log().InfoContext(ctx, "login refused", slog.String("empid", empid))
		return nil, &domain.RejectedError{Message: res.Error}
	}

	sess := &domain.Session{
		ID:        domain.ID(s.newID()),
		Username:  res.UserInfo.Name,
		Email:     res.UserInfo.Email,
		CreatedAt: s.now(),
	}
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	ctx = logger.WithSessionID(ctx, string(sess.ID))
	s.log().InfoContext(ctx, "login accepted", slog.String("empid", empid))
	return sess, nil
}

// Profile returns the display name, email and avatar letter for a session.
func (s *Service) Profile(ctx context.Context, id domain.ID) (Profile, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Name:    sess.DisplayName(),
		Email:   sess.DisplayEmail(),
		Initial: sess.Initial(),
	}, nil
}

// Logout removes the session. Logging out twice is fine.
func (s *Service) Logout(ctx context.Context, id domain.ID) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log().InfoContext(logger.WithSessionID(ctx, string(id)), "logged out")
	return nil
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
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
