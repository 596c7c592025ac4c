package command

import (
	"errors"
	"fmt"
)

// ErrBadInput reports arguments that do not fit a command's shape,
// like three words where one or two are expected.
var ErrBadInput = errors.New("command: bad input")

// MissingArgumentError reports a required argument that was not given.
type MissingArgumentError struct {
	Arg string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("command: missing argument %q", e.Arg)
}

// MissingConfigError reports a command that needs configuration the
// process was started without.
type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("command: missing configuration %q", e.Key)
}

// InternalError wraps a panic recovered during command execution. The
// executor converts panics into this error instead of re-panicking,
// so the command lock is always released and the process survives.
type InternalError struct {
	Value any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("command: internal error: %v", e.Value)
}
