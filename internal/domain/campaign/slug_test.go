package campaign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Help Sam", "help-sam"},
		{"punctuation stripped", "Help Sam's Fight!", "help-sams-fight"},
		{"whitespace collapsed", "  Help   Sam \t Now ", "help-sam-now"},
		{"accents folded", "Ayúdale a José", "ayudale-a-jose"},
		{"underscores kept", "team_sam rocks", "team_sam-rocks"},
		{"hyphen runs collapsed", "Sam -- strong", "sam-strong"},
		{"only symbols", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}

	t.Run("truncates to fifty characters", func(t *testing.T) {
		s := Slugify(strings.Repeat("abcdefghij ", 10))
		assert.LessOrEqual(t, len(s), MaxSlugLength)
		assert.False(t, strings.HasSuffix(s, "-"))
	})
}

func TestSlugWithSuffix(t *testing.T) {
	assert.Equal(t, "help-sam-2", SlugWithSuffix("help-sam", 2))

	long := strings.Repeat("a", MaxSlugLength)
	s := SlugWithSuffix(long, 12)
	assert.Len(t, s, MaxSlugLength)
	assert.True(t, strings.HasSuffix(s, "-12"))
}
