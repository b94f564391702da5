package session

import "context"

// Store persists sessions. Delete of a missing session is not an error.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id ID) (*Session, error)
	Delete(ctx context.Context, id ID) error
}

// Authenticator checks employee credentials against the upstream login endpoint.
type Authenticator interface {
	Authenticate(ctx context.Context, empid, password string) (LoginResult, error)
}
