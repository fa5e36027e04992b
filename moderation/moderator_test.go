package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dictionary := []string{"spam", "troll", "scam"}
	mod, err := NewModerator(dictionary, replacementChar, log)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "This is spam here",
			expected: "This is **** here",
			words:    []string{"spam"},
		},
		{
			name:     "Multiple occurrences",
			input:    "spam spam spam",
			expected: "**** **** ****",
			words:    []string{"spam", "spam", "spam"},
		},
		{
			name:     "Leet speak and internal punctuation",
			input:    "Not a $.c.4.m !",
			expected: "Not a ******* !",
			words:    []string{"scam"},
		},
		{
			name:     "Uppercase and noise",
			input:    "T-R-O-L-L and SPAM",
			expected: "********* and ****",
			words:    []string{"troll", "spam"},
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "Stop the troll!",
			expected: "Stop the *****!",
			words:    []string{"troll"},
		},
		{
			name:     "Nothing to censor",
			input:    "Chat rooms are great",
			expected: "Chat rooms are great",
			words:    nil,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			content, words := mod.Censor(tt.input)
			req.Equal(tt.expected, content)
			req.Equal(tt.words, words)
		})
	}
}

func TestModerator_IgnoresNoiseOnlyWords(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a dictionary polluted with punctuation only entries
	mod, err := NewModerator([]string{"...", ",,,", "", "spam"}, replacementChar, log)
	req.NoError(err)

	// Then real words are still censored
	content, words := mod.Censor("No spam please")
	req.Equal("No **** please", content)
	req.Equal([]string{"spam"}, words)

	// And punctuation is left untouched
	content, words = mod.Censor("Hello ...")
	req.Equal("Hello ...", content)
	req.Nil(words)
}
