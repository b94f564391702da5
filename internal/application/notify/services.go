package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrTokenRequired is returned for an empty push token.
var ErrTokenRequired = errors.New("push token is required")

// Registrar forwards device push tokens to the upstream.
type Registrar interface {
	RegisterPushToken(ctx context.Context, token string) (json.RawMessage, error)
}

type Service struct {
	Registrar Registrar
	Logger    *slog.Logger
}

// Register forwards token upstream and returns the upstream reply untouched.
func (s *Service) Register(ctx context.Context, token string) (json.RawMessage, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	reply, err := s.Registrar.RegisterPushToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("register push token: %w", err)
	}
	s.log().InfoContext(ctx, "push token registered", slog.String("reply", string(reply)))
	return reply, nil
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
