package stats

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	wordPattern    = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)
	vowelGroups    = regexp.MustCompile(`[aeiouy]+`)
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
)

// Span is a half-open byte range into a text.
type Span struct {
	Start int
	End   int
}

// Text returns the spanned substring.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// Words returns all word tokens in text.
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// SplitSentences returns sentence spans with surrounding whitespace trimmed.
// A sentence ends after a run of terminal punctuation followed by whitespace,
// at a blank line, or at the end of the text.
func SplitSentences(text string) []Span {
	var spans []Span
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		trimmed := strings.TrimRightFunc(text[start:end], unicode.IsSpace)
		if trimmed != "" {
			spans = append(spans, Span{Start: start, End: start + len(trimmed)})
		}
		start = -1
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if start < 0 {
			if !unicode.IsSpace(r) {
				start = i
			}
			i += size
			continue
		}
		switch {
		case r == '.' || r == '!' || r == '?':
			j := i + size
			for j < len(text) && strings.IndexByte(`.!?"')`, text[j]) >= 0 {
				j++
			}
			if j >= len(text) {
				flush(len(text))
				return spans
			}
			next, _ := utf8.DecodeRuneInString(text[j:])
			if unicode.IsSpace(next) {
				flush(j)
			}
			i = j
		case r == '\n' && strings.HasPrefix(strings.TrimLeft(text[i+size:], " \t\r"), "\n"):
			flush(i)
			i += size
		default:
			i += size
		}
	}
	flush(len(text))
	return spans
}

// CountParagraphs counts non-empty blocks separated by blank lines.
func CountParagraphs(text string) int {
	count := 0
	for _, block := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// Syllables estimates the syllable count of a single word.
func Syllables(word string) int {
	w := strings.ToLower(word)
	groups := len(vowelGroups.FindAllString(w, -1))
	if groups > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		groups--
	}
	if groups < 1 {
		return 1
	}
	return groups
}
