// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user-supplied identity fields before
// they are compared or persisted.
package normalize

import (
	"strings"
)

// Email lowercases and trims an email address. Uniqueness checks and
// lookups always operate on this form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name collapses interior whitespace runs and trims the ends.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone strips spaces, hyphens and parentheses so that "98765 43210"
// and "9876543210" compare equal. It does not validate the result;
// see inputval.PhoneDigits for that.
func Phone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '-', '(', ')':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
