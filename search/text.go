package search

import (
	"regexp"
	"strings"
)

// nonWordPattern matches everything that is not a word character or whitespace.
var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// SanitizeLexicalTerms reduces free-form query text to bare search terms.
// All non-word, non-space characters are stripped, then the remainder is
// split on whitespace. An empty result disables the lexical branch.
func SanitizeLexicalTerms(query string) []string {
	cleaned := nonWordPattern.ReplaceAllString(query, "")
	terms := strings.Fields(cleaned)
	if len(terms) == 0 {
		return nil
	}
	return terms
}

// LexicalQuery joins sanitized terms into a conjunctive query string.
// Returns "" when the query sanitizes to nothing.
func LexicalQuery(query string) string {
	return strings.Join(SanitizeLexicalTerms(query), " AND ")
}

// Snippet returns the first maxRunes runes of text, appending an ellipsis
// marker when the text was cut. Safe on multi-byte content.
func Snippet(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
