package session

import "errors"

var (
	ErrNotFound           = errors.New("session not found")
	ErrMissingCredentials = errors.New("employee id and password are required")
	ErrLoginRejected      = errors.New("login rejected")
)

// DefaultRejection is shown when the upstream refuses a login without saying why.
const DefaultRejection = "Login failed"

// RejectedError carries the upstream's reason for refusing a login.
// It matches ErrLoginRejected with errors.Is.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return DefaultRejection
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool { return target == ErrLoginRejected }
