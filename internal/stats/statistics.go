package stats

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/quill/internal/model"
)

// DefaultWordsPerMinute is the average silent reading speed used for reading time.
const DefaultWordsPerMinute = 238

// StatisticsCalculator computes raw text counts.
type StatisticsCalculator struct {
	WordsPerMinute int
}

// Statistics counts words, characters, sentences and paragraphs and estimates reading time.
func (c StatisticsCalculator) Statistics(text string) model.Statistics {
	words := len(Words(text))
	return model.Statistics{
		Words:       words,
		Characters:  utf8.RuneCountInString(text),
		Sentences:   len(SplitSentences(text)),
		Paragraphs:  CountParagraphs(text),
		ReadingTime: ReadingTime(words, c.WordsPerMinute),
	}
}

// ReadingTime estimates reading time rounded up to the second.
func ReadingTime(words, wpm int) time.Duration {
	if words <= 0 {
		return 0
	}
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	seconds := math.Ceil(float64(words) / float64(wpm) * 60)
	return time.Duration(seconds) * time.Second
}
