package bridge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "third ✓", truncate("third ✓", previewRunes))
	assert.Equal(t, "ab…", truncate("abc", 2))
	assert.Equal(t, "", truncate("", 3))

	long := strings.Repeat("a", previewRunes-1) + "✓✓✓"
	got := truncate(long, previewRunes)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", previewRunes-1)+"✓…", got)
}
