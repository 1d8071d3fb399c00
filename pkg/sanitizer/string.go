package sanitizer

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// CollapseSpaces trims a free-text field and squeezes internal runs of
// whitespace into single spaces.
func CollapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeEmail lowercases and trims an email address so the unique index
// on users.email treats case variants as the same account.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
