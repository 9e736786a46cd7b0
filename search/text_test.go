package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLexicalTerms(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"plain words", "database optimization", []string{"database", "optimization"}},
		{"punctuation stripped", "what's the O(n) cost?", []string{"whats", "the", "On", "cost"}},
		{"extra whitespace", "  badger   tuning  ", []string{"badger", "tuning"}},
		{"only punctuation", "?!...", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeLexicalTerms(tt.query))
		})
	}
}

func TestLexicalQuery(t *testing.T) {
	assert.Equal(t, "database AND optimization", LexicalQuery("database, optimization!"))
	assert.Equal(t, "", LexicalQuery("???"))
}

func TestSnippet(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "short", Snippet("short", 10))
	})

	t.Run("long text truncated with marker", func(t *testing.T) {
		got := Snippet(strings.Repeat("a", 20), 5)
		assert.Equal(t, "aaaaa...", got)
	})

	t.Run("multibyte safe", func(t *testing.T) {
		got := Snippet("héllo wörld", 5)
		assert.Equal(t, "héllo...", got)
	})

	t.Run("exact length unchanged", func(t *testing.T) {
		assert.Equal(t, "abcde", Snippet("abcde", 5))
	})
}
