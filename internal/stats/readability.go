package stats

import (
	"math"
	"unicode/utf8"

	"github.com/verte-zerg/quill/internal/model"
)

// DefaultLongSentenceWords is the word count at which a sentence counts as difficult.
const DefaultLongSentenceWords = 25

// ReadabilityCalculator computes Flesch-Kincaid grade level and flags long sentences.
type ReadabilityCalculator struct {
	LongSentenceWords int
}

// Readability scores text. Empty text yields the zero value.
func (c ReadabilityCalculator) Readability(text string) model.Readability {
	limit := c.LongSentenceWords
	if limit <= 0 {
		limit = DefaultLongSentenceWords
	}
	sentences := SplitSentences(text)
	var (
		totalWords     int
		totalSyllables int
		totalLetters   int
		difficult      []model.DifficultSentence
	)
	for _, span := range sentences {
		sentence := span.Text(text)
		words := Words(sentence)
		for _, w := range words {
			totalSyllables += Syllables(w)
			totalLetters += utf8.RuneCountInString(w)
		}
		totalWords += len(words)
		if len(words) >= limit {
			difficult = append(difficult, model.DifficultSentence{
				Text:       sentence,
				StartIndex: span.Start,
				EndIndex:   span.End,
				Words:      len(words),
			})
		}
	}
	if totalWords == 0 || len(sentences) == 0 {
		return model.Readability{}
	}
	wordsPerSentence := float64(totalWords) / float64(len(sentences))
	syllablesPerWord := float64(totalSyllables) / float64(totalWords)
	grade := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	if grade < 0 {
		grade = 0
	}
	return model.Readability{
		GradeLevel:         round1(grade),
		AvgSentenceLength:  round1(wordsPerSentence),
		AvgWordLength:      round1(float64(totalLetters) / float64(totalWords)),
		DifficultSentences: difficult,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
