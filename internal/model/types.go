// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Rule is the category tag attached to an issue.
type Rule string

// Known rule categories.
const (
	RuleSpelling     Rule = "spelling"
	RuleGrammar      Rule = "grammar"
	RuleConfusedWord Rule = "confused-word"
	RuleContraction  Rule = "contraction"
	RulePassiveVoice Rule = "passive-voice"
	RuleWordy        Rule = "wordy"
	RuleCliche       Rule = "cliche"
	RuleNumberFormat Rule = "number-format"
	RuleLongSentence Rule = "long-sentence"
	RuleTone         Rule = "tone"
)

// Issue is a flagged span of the current text.
// StartIndex and EndIndex are byte offsets forming a half-open range.
type Issue struct {
	Rule         Rule
	Message      string
	StartIndex   int
	EndIndex     int
	OriginalText string
	Suggestions  []string
}

// Len returns the span length in bytes.
func (i Issue) Len() int {
	return i.EndIndex - i.StartIndex
}

// Key returns the position-independent dismissal key for the issue.
func (i Issue) Key() DismissedPatternKey {
	return NewDismissedPatternKey(i.Rule, i.OriginalText)
}

// Correction is a replacement string for an issue span.
type Correction struct {
	Text string
}

// Score holds aggregate writing scores, each in [0, 100].
type Score struct {
	Overall     int
	Correctness int
	Clarity     int
	Engagement  int
	Delivery    int
}

// DifficultSentence is a sentence the readability calculator flags as hard to read.
type DifficultSentence struct {
	Text       string
	StartIndex int
	EndIndex   int
	Words      int
}

// Readability summarizes how hard the text is to read.
type Readability struct {
	GradeLevel         float64
	AvgSentenceLength  float64
	AvgWordLength      float64
	DifficultSentences []DifficultSentence
}

// Tone names a tone class.
type Tone string

// Tone classes.
const (
	ToneNeutral    Tone = "neutral"
	ToneFormal     Tone = "formal"
	ToneInformal   Tone = "informal"
	ToneConfident  Tone = "confident"
	ToneTentative  Tone = "tentative"
	ToneFriendly   Tone = "friendly"
	ToneAggressive Tone = "aggressive"
)

// ToneInconsistency marks a sentence whose tone disagrees with the dominant tone.
type ToneInconsistency struct {
	Text       string
	StartIndex int
	EndIndex   int
	Tone       Tone
}

// ToneReport is the tone classifier output.
type ToneReport struct {
	Dominant        Tone
	Breakdown       map[Tone]float64
	Consistent      bool
	Inconsistencies []ToneInconsistency
}

// Statistics holds raw text counts.
type Statistics struct {
	Words       int
	Characters  int
	Sentences   int
	Paragraphs  int
	ReadingTime time.Duration
}

// AnalysisResult is the composed output of one analysis pass.
// A result is never mutated once built.
type AnalysisResult struct {
	Issues      []Issue
	Score       Score
	Readability Readability
	Tone        ToneReport
	Statistics  Statistics
}

// DismissedPatternKey identifies a dismissed rule+text combination.
type DismissedPatternKey struct {
	Rule Rule
	Text string
}

// NewDismissedPatternKey builds a key with the text lowercased.
func NewDismissedPatternKey(rule Rule, text string) DismissedPatternKey {
	return DismissedPatternKey{Rule: rule, Text: strings.ToLower(text)}
}

// DismissedSet is the set of dismissed patterns for a session.
type DismissedSet map[DismissedPatternKey]struct{}

// Has reports whether the issue matches a dismissed pattern.
func (d DismissedSet) Has(issue Issue) bool {
	if len(d) == 0 {
		return false
	}
	_, ok := d[issue.Key()]
	return ok
}

// Clone returns an independent copy of the set.
func (d DismissedSet) Clone() DismissedSet {
	out := make(DismissedSet, len(d))
	for k := range d {
		out[k] = struct{}{}
	}
	return out
}

// Keys returns the keys of the set in no particular order.
func (d DismissedSet) Keys() []DismissedPatternKey {
	out := make([]DismissedPatternKey, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	return out
}

// HistoryEntry is a snapshot taken before a correction is applied.
type HistoryEntry struct {
	Text   string
	Result AnalysisResult
}

// AnalysisConfig defines analysis settings.
type AnalysisConfig struct {
	QuietWindow       time.Duration
	HistoryCapacity   int
	DictionaryPath    string
	LongSentenceWords int
	WordsPerMinute    int
}

// CheckConfig defines options for the check command.
type CheckConfig struct {
	Color     bool
	Jobs      int
	FailBelow int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Path        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RunRecord captures one recorded analysis run.
type RunRecord struct {
	ID         int64
	SessionID  string
	Path       string
	AnalyzedAt time.Time
	Words      int
	Issues     int
	Score      Score
}

// RuleCount aggregates issue counts per rule for a run.
type RuleCount struct {
	Rule  Rule
	Count int
}
