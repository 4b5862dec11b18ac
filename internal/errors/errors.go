// Package errors provides structured, coded errors for the Isora framework.
//
// Every framework-originated failure carries a stable code (e.g. "I102"),
// a category, and an optional suggestion so that CLI and log output can
// point users at the actual fix instead of a bare message.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies where in the framework an error originated.
type Category string

const (
	CategoryRender  Category = "render"
	CategoryRoute   Category = "route"
	CategoryLoader  Category = "loader"
	CategoryState   Category = "state"
	CategorySession Category = "session"
	CategoryAssets  Category = "assets"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Error is a structured framework error.
type Error struct {
	// Code is a stable identifier, e.g. "I102". Empty for ad-hoc errors.
	Code string

	// Category is the framework area the error belongs to.
	Category Category

	// Message is a short, user-facing description.
	Message string

	// Suggestion is an optional hint on how to fix the problem.
	Suggestion string

	// DocURL links to the documentation page for this code, if any.
	DocURL string

	// Wrapped is the underlying cause, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		return msg + ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped cause for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches two framework errors by code, so sentinel comparisons like
// errors.Is(err, errors.New("I102")) work without identity.
func (e *Error) Is(target error) bool {
	var fe *Error
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Code != "" && fe.Code == e.Code
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// WithSuggestion attaches a fix hint.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// New creates an Error from a registered code. Unknown codes produce a
// generic error carrying the code, so callers never get nil.
func New(code string) *Error {
	t, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "unknown error"}
	}
	return &Error{
		Code:       code,
		Category:   t.Category,
		Message:    t.Message,
		Suggestion: t.Suggestion,
		DocURL:     t.DocURL,
	}
}

// Newf creates an ad-hoc Error with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// From wraps a standard error under a registered code.
// Returns nil when err is nil.
func From(err error, code string) *Error {
	if err == nil {
		return nil
	}
	return New(code).Wrap(err)
}
