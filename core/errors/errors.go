// Package errors provides standardized error types and helpers for the scripture store.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")

	// ErrDataSourceNotFound indicates a translation's physical source is missing.
	ErrDataSourceNotFound = errors.New("translation data source not found")
	// ErrOpenFailed indicates a translation source exists but cannot be opened or read.
	ErrOpenFailed = errors.New("translation open failed")
	// ErrQuery indicates a backing-store fault during a read.
	ErrQuery = errors.New("query failed")
)

// SourceKind classifies a failure to open a translation source.
type SourceKind int

const (
	// DataSourceNotFound means the source file does not exist.
	DataSourceNotFound SourceKind = iota
	// OpenFailed means the source exists but is unreadable, corrupt or has the wrong schema.
	OpenFailed
)

func (k SourceKind) String() string {
	switch k {
	case DataSourceNotFound:
		return "data source not found"
	case OpenFailed:
		return "open failed"
	default:
		return "unknown"
	}
}

// SourceError is returned when a translation cannot be opened.
type SourceError struct {
	Kind        SourceKind
	Translation string // Translation ID
	Path        string // Resolved physical locator
	Err         error  // Underlying error, if any
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("translation %s: %s", e.Translation, e.Kind)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the sentinel matching this error's kind.
func (e *SourceError) Is(target error) bool {
	switch e.Kind {
	case DataSourceNotFound:
		return target == ErrDataSourceNotFound
	case OpenFailed:
		return target == ErrOpenFailed
	}
	return false
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// QueryError represents a backing-store fault during a read.
type QueryError struct {
	Op          string // Query operation (e.g., "load verses", "available books")
	Translation string // Active translation ID
	Err         error  // Underlying driver error
}

func (e *QueryError) Error() string {
	if e.Translation != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Translation, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Is matches ErrQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "translation", "book")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is matches ErrInvalidInput even when a cause is wrapped.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing error
type ParseError struct {
	Format  string // Format being parsed (e.g., "reference", "preferences")
	Input   string // Offending input, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("failed to parse %s %q: %s", e.Format, e.Input, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

// Is matches ErrInvalidInput even when a cause is wrapped.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewSourceNotFound creates a SourceError of kind DataSourceNotFound.
func NewSourceNotFound(translation, path string, err error) *SourceError {
	return &SourceError{Kind: DataSourceNotFound, Translation: translation, Path: path, Err: err}
}

// NewOpenFailed creates a SourceError of kind OpenFailed.
func NewOpenFailed(translation, path string, err error) *SourceError {
	return &SourceError{Kind: OpenFailed, Translation: translation, Path: path, Err: err}
}

// NewQuery creates a QueryError
func NewQuery(op, translation string, err error) *QueryError {
	return &QueryError{Op: op, Translation: translation, Err: err}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, input, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Input:   input,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
