package review

import "errors"

var (
	ErrNumberRequired = errors.New("application number is required")
	ErrNotFound       = errors.New("application not found")
)
