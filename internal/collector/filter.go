package collector

import (
	"strings"

	"github.com/taratriia/market-analyzer/internal/domain"
)

// IsValid reports whether a comment meets the collection criteria: a body
// that exists and is not a withdrawal sentinel, at least minWords words, and
// a score of at least minScore.
func IsValid(c domain.Comment, minWords, minScore int) bool {
	if c.Body == "" || c.Body == "[deleted]" || c.Body == "[removed]" {
		return false
	}
	if len(strings.Fields(c.Body)) < minWords {
		return false
	}
	return c.Score >= minScore
}
