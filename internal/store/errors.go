package store

import (
	"errors"
	"fmt"
)

// ErrSettingNotFound is returned when a key is absent from the key/value table.
var ErrSettingNotFound = errors.New("setting not found")

// Error is a persistence failure: I/O, a constraint violation or a stored
// value that does not decode.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// ConfigError reports a stored configuration value that fails to parse.
type ConfigError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
