package entities

import (
	"errors"
	"fmt"
)

// CompileErrorKind classifies compile failures
type CompileErrorKind int

const (
	InvalidMetadata CompileErrorKind = iota + 1
	MalformedStructure
	UnresolvedReference
)

// String returns the kind name
func (k CompileErrorKind) String() string {
	switch k {
	case InvalidMetadata:
		return "invalid metadata"
	case MalformedStructure:
		return "malformed structure"
	case UnresolvedReference:
		return "unresolved reference"
	default:
		return "compile error"
	}
}

var (
	// ErrInvalidMetadata matches any CompileError of kind InvalidMetadata
	ErrInvalidMetadata = errors.New("invalid metadata")
	// ErrMalformedStructure matches any CompileError of kind MalformedStructure
	ErrMalformedStructure = errors.New("malformed structure")
	// ErrUnresolvedReference matches any CompileError of kind UnresolvedReference
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrEmptyPresentation is returned when a document compiles to zero slides
	ErrEmptyPresentation = errors.New("presentation has no slides")
)

// CompileError is a fatal compilation failure
type CompileError struct {
	Kind CompileErrorKind
	// Slide is the 0-based slide being built when the error happened
	Slide int
	// Line is the 1-based source line, 0 when unknown
	Line    int
	Message string
	Err     error
}

// Error implements error
func (e *CompileError) Error() string {
	msg := e.Kind.String() + ": " + e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *CompileError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels
func (e *CompileError) Is(target error) bool {
	switch target {
	case ErrInvalidMetadata:
		return e.Kind == InvalidMetadata
	case ErrMalformedStructure:
		return e.Kind == MalformedStructure
	case ErrUnresolvedReference:
		return e.Kind == UnresolvedReference
	}
	return false
}

var (
	// ErrImageDecode is returned when image bytes cannot be decoded
	ErrImageDecode = errors.New("image decode failed")
	// ErrUnsupportedImageFormat is returned for formats no decoder handles
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	// ErrCapabilityTimeout is returned when the terminal does not answer a query in time
	ErrCapabilityTimeout = errors.New("terminal capability query timed out")
)

// TerminalError is a fatal failure talking to the terminal
type TerminalError struct {
	Op  string
	Err error
}

// Error implements error
func (e *TerminalError) Error() string {
	return "terminal " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause
func (e *TerminalError) Unwrap() error {
	return e.Err
}
