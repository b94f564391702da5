package records

import "errors"

// ErrMalformedSnapshot is returned when an upstream body is not an array of flat objects.
var ErrMalformedSnapshot = errors.New("malformed snapshot")
