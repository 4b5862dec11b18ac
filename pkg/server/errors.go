package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound signals that a loader or handler could not find the
// requested entity. The pipeline responds with the 404 page instead of
// the error page.
var ErrNotFound = errors.New("not found")

// RedirectError aborts rendering in favor of an HTTP redirect. Loaders
// return it (or call Ctx.Redirect) when the canonical response for a
// request is another URL, e.g. after a trailing-slash normalization or
// an auth check.
type RedirectError struct {
	URL  string
	Code int
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s (%d)", e.URL, e.Code)
}

// Redirect creates a 302 redirect error.
func Redirect(url string) *RedirectError {
	return &RedirectError{URL: url, Code: http.StatusFound}
}

// RedirectWithCode creates a redirect error with an explicit status.
func RedirectWithCode(url string, code int) *RedirectError {
	return &RedirectError{URL: url, Code: code}
}

// AsRedirect extracts a RedirectError from err, if present.
func AsRedirect(err error) (*RedirectError, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
