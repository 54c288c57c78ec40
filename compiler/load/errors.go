package load

import (
	"errors"
	"strings"
)

// Sentinel errors for the fatal, run-aborting failures of the extractor.
var (
	// ErrMarkerUnresolved indicates a //sqlproc:query method whose raw-command
	// marker type (sqlproc.Raw) could not be bound to any parameter.
	ErrMarkerUnresolved = errors.New("sqlproc: marker symbol not resolvable")
	// ErrRuntimeUnresolved indicates that generation needs the runtime
	// package but it is not reachable from the scanned package.
	ErrRuntimeUnresolved = errors.New("sqlproc: runtime package not resolvable")
)

// ExtractError reports a structural problem with one annotated declaration.
type ExtractError struct {
	Interface string
	Method    string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	var b strings.Builder
	b.WriteString("sqlproc: extract error")
	if e.Interface != "" {
		b.WriteString(" on ")
		b.WriteString(e.Interface)
		if e.Method != "" {
			b.WriteString(".")
			b.WriteString(e.Method)
		}
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
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// NewExtractError creates a new ExtractError.
func NewExtractError(iface, method, message string, cause error) *ExtractError {
	return &ExtractError{
		Interface: iface,
		Method:    method,
		Message:   message,
		Cause:     cause,
	}
}
