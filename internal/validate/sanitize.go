package validate

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text trims s, drops every HTML tag (and the bodies of script and style
// elements) and escapes what is left.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(strings.TrimSpace(s)))
}

// TextPtr is Text for optional fields.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	return &v
}
