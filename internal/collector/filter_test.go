package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taratriia/market-analyzer/internal/domain"
)

func TestIsValidRejectsWithdrawnBodies(t *testing.T) {
	// High score and plenty of words must not rescue a withdrawn body.
	for _, body := range []string{"", "[deleted]", "[removed]"} {
		c := domain.Comment{Body: body, Score: 9999}
		assert.False(t, IsValid(c, 0, 0), "body %q should never pass", body)
	}
}

func TestIsValidWordBoundary(t *testing.T) {
	c := domain.Comment{Body: "one two three four five", Score: 10}

	assert.True(t, IsValid(c, 5, 1), "exactly minWords words should pass")
	assert.False(t, IsValid(c, 6, 1), "one word short should fail")
}

func TestIsValidScoreBoundary(t *testing.T) {
	c := domain.Comment{Body: "plenty of words in this particular comment body here", Score: 3}

	assert.True(t, IsValid(c, 1, 3), "score equal to minScore should pass")
	assert.False(t, IsValid(c, 1, 4), "score below minScore should fail")
	assert.True(t, IsValid(domain.Comment{Body: "negative score comment", Score: -2}, 1, -2))
}

func TestIsValidWhitespaceSplit(t *testing.T) {
	// Runs of whitespace count as single separators.
	c := domain.Comment{Body: "  spaced\tout\n words   here  ", Score: 1}
	assert.True(t, IsValid(c, 4, 1))
	assert.False(t, IsValid(c, 5, 1))
}
