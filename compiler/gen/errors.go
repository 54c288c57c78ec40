// Package gen is the synthesis engine: it classifies the types of an
// annotated declaration, decides the execution and materialization strategy,
// builds the command text and parameter bindings, and emits the
// implementation body.
package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrUnsupportedType indicates a type outside the enumerated scalar set
	// where a database type mapping is required.
	ErrUnsupportedType = errors.New("sqlproc: unsupported type")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("sqlproc: code generation failed")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("sqlproc: missing configuration")
)

// TypeError reports a scalar-mapping gap: a parameter or result type whose
// database type tag was requested but which is outside the enumerated
// primitive set. It is a hard failure of the declaration's generation, never
// a silent skip, since it indicates a gap the caller must address.
type TypeError struct {
	Interface string
	Method    string
	Param     string // empty when the result type is at fault
	Type      string
	Message   string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	var b strings.Builder
	b.WriteString("sqlproc: type error")
	if e.Interface != "" {
		b.WriteString(" on ")
		b.WriteString(e.Interface)
		if e.Method != "" {
			b.WriteString(".")
			b.WriteString(e.Method)
		}
	}
	if e.Param != "" {
		b.WriteString(" parameter ")
		b.WriteString(e.Param)
	}
	if e.Type != "" {
		b.WriteString(" (type ")
		b.WriteString(e.Type)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for TypeError.
func (e *TypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// NewTypeError creates a new TypeError.
func NewTypeError(iface, method, param, typ, message string) *TypeError {
	return &TypeError{
		Interface: iface,
		Method:    method,
		Param:     param,
		Type:      typ,
		Message:   message,
	}
}

// GenerationError represents a code generation failure for one unit.
type GenerationError struct {
	Unit    string
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("sqlproc: generation error")
	if e.Unit != "" {
		b.WriteString(" on unit ")
		b.WriteString(e.Unit)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(unit, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Unit:    unit,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("sqlproc: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("sqlproc: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsTypeError reports whether the error is a TypeError.
func IsTypeError(err error) bool {
	var typeErr *TypeError
	return errors.As(err, &typeErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
