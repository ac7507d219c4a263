package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed or missing request parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable is returned when the measurement store cannot be reached.
	ErrStoreUnavailable = errors.New("measurement store unavailable")
	// ErrStoreQuery is returned when the store accepted the connection but the query failed.
	ErrStoreQuery = errors.New("measurement store query failed")
)

type invalidArgumentError struct {
	msg string
}

func (e *invalidArgumentError) Error() string { return e.msg }

func (e *invalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// InvalidArgumentf returns an error matching ErrInvalidArgument whose message
// is shown to the caller as is.
func InvalidArgumentf(format string, args ...any) error {
	return &invalidArgumentError{msg: fmt.Sprintf(format, args...)}
}
