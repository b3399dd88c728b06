package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// maxTextLength caps user-authored free text fields
const maxTextLength = 2000

// SanitizeText strips HTML, null bytes and surrounding whitespace from
// user-authored text and caps its length.
func SanitizeText(input string) string {
	input = htmlPolicy.Sanitize(input)
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)

	if len(input) > maxTextLength {
		input = input[:maxTextLength]
	}
	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}
