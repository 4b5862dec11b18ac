package render

import "github.com/microcosm-cc/bluemonday"

// Sanitizer filters raw HTML before it is written to the document.
type Sanitizer interface {
	Sanitize(html string) string
}

// UGCSanitizer wraps a bluemonday policy suited for user-generated
// content: common formatting tags survive, scripts and event handler
// attributes do not.
type UGCSanitizer struct {
	policy *bluemonday.Policy
}

// NewUGCSanitizer creates the default user-generated-content sanitizer.
func NewUGCSanitizer() *UGCSanitizer {
	return &UGCSanitizer{policy: bluemonday.UGCPolicy()}
}

// NewStrictSanitizer creates a sanitizer that strips all markup,
// leaving only text.
func NewStrictSanitizer() *UGCSanitizer {
	return &UGCSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize implements Sanitizer.
func (s *UGCSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
