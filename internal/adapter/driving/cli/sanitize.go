package cli

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips all markup from backend-supplied text before it is
// written to the terminal.
var textPolicy = bluemonday.StrictPolicy()

// plain returns s without markup or control characters.
func plain(s string) string {
	if s == "" {
		return ""
	}
	// StrictPolicy escapes entities; the terminal wants the literal text.
	out := html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, out)
}
