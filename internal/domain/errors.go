package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors have no infrastructure dependency.

var (
	// Parse errors
	ErrValueShape        = errors.New("value does not match the declared shape")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrKeyConflict       = errors.New("key already set to a different value")
	ErrInvalidArguments  = errors.New("invalid arguments")
	ErrInvalidDescriptor = errors.New("invalid pattern descriptor")

	// Include errors
	ErrIncludeCycle = errors.New("@file include cycle")
	ErrIncludeDepth = errors.New("@file include depth exceeded")
	ErrFileNotFound = errors.New("file not found")

	// Catalog errors
	ErrInvalidCatalog = errors.New("invalid command catalog")
	ErrUnknownGroup   = errors.New("unknown parser group")

	// Config command errors
	ErrConfigValue = errors.New("invalid config value")
)

// ParseError is a recoverable parse failure recorded in a store's error slot.
// Message is what the user sees; Hint points at further help.
type ParseError struct {
	Err     error
	Message string
	Hint    string
}

// NewParseError builds a ParseError classified by one of the sentinels above.
func NewParseError(kind error, message, hint string) *ParseError {
	return &ParseError{Err: kind, Message: message, Hint: hint}
}

func (e *ParseError) Error() string {
	return e.Message
}

// Unwrap exposes the classifying sentinel to errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Err
}
