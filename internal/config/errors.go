package config

import "fmt"

// ErrorType classifies configuration errors.
type ErrorType int

const (
	// NotFound means the configuration file does not exist.
	NotFound ErrorType = iota
	// Invalid means the file could not be read or parsed.
	Invalid
	// ValidationFailed means a value is out of range.
	ValidationFailed
)

// ConfigError describes a configuration problem.
type ConfigError struct {
	Type    ErrorType
	File    string
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	where := e.File
	if where == "" {
		where = "<defaults>"
	}
	if e.Field != "" {
		where = fmt.Sprintf("%s [field: %s]", where, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("configuration error in %s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error in %s: %s", where, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func fieldError(field, message string) *ConfigError {
	return &ConfigError{Type: ValidationFailed, Field: field, Message: message}
}
