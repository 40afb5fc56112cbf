// Package rules implements the pattern-based issue detectors.
package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/quill/internal/model"
)

func newIssue(text string, rule model.Rule, start, end int, msg string, suggestions ...string) model.Issue {
	return model.Issue{
		Rule:         rule,
		Message:      msg,
		StartIndex:   start,
		EndIndex:     end,
		OriginalText: text[start:end],
		Suggestions:  suggestions,
	}
}

// matchCase shapes a suggestion after the capitalization of the original word.
func matchCase(original, suggestion string) string {
	if original == "" || suggestion == "" {
		return suggestion
	}
	letters := 0
	upper := 0
	for _, r := range original {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 1 && upper == letters {
		return strings.ToUpper(suggestion)
	}
	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(suggestion)
		return string(unicode.ToUpper(r)) + suggestion[size:]
	}
	return suggestion
}
