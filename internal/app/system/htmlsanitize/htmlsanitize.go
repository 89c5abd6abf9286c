// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from free-text input before it is
// persisted. Club descriptions, collaboration pitches and exit reasons
// all pass through StripTags so stored text is plain text.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	once.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// StripTags removes all HTML, returning the trimmed text content.
func StripTags(s string) string {
	return strings.TrimSpace(policy().Sanitize(s))
}
