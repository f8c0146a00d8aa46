package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// SanitizeBody cleans user-generated body text, keeping common formatting
// tags while stripping scripts and event handlers.
func SanitizeBody(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeTitle strips all HTML from titles and category names.
func SanitizeTitle(input string) string {
	return strictPolicy.Sanitize(input)
}
