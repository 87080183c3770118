package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "a", FirstNonEmpty("a", "b"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
	assert.Equal(t, "", FirstNonEmpty())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abcdef", 3))
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
	assert.Equal(t, "", TruncateRunes("abc", 0))
	// multi-byte characters are never split
	assert.Equal(t, "héé", TruncateRunes("héééé", 3))

	long := strings.Repeat("x", 500)
	assert.Len(t, TruncateRunes(long, 300), 300)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitCSV(" a, b ,,c "))
	assert.Nil(t, SplitCSV(""))
	assert.Nil(t, SplitCSV(" , "))
}
