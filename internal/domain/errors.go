package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig signals a rejected option or missing required input.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoSource signals that no genome source was configured.
	ErrNoSource = errors.New("no genome source specified")
	// ErrGenomeNotFound signals that a genome could not be located.
	ErrGenomeNotFound = errors.New("genome not found")
	// ErrNoSeedProtein signals a genome without a usable seed protein.
	ErrNoSeedProtein = errors.New("no seed protein")
	// ErrMalformedRecord signals an unparseable input record.
	ErrMalformedRecord = errors.New("malformed record")
)

// ConfigError wraps ErrInvalidConfig with the offending option name.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig.Error(), e.Option, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// NewConfigError creates a configuration error for an option.
func NewConfigError(option, reason string) error {
	return &ConfigError{Option: option, Reason: reason}
}
