// Package analysis merges detector and metric outputs into one result per text.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/rules"
	"github.com/verte-zerg/quill/internal/stats"
)

// IssueDetector finds issues in text.
type IssueDetector interface {
	Detect(text string) []model.Issue
}

// ReadabilityCalculator scores how hard text is to read.
type ReadabilityCalculator interface {
	Readability(text string) model.Readability
}

// ToneClassifier labels the tone of text.
type ToneClassifier interface {
	Classify(text string) model.ToneReport
}

// StatisticsCalculator counts words, sentences and the like.
type StatisticsCalculator interface {
	Statistics(text string) model.Statistics
}

// ScoreCalculator turns a final issue list into scores.
type ScoreCalculator interface {
	Score(issues []model.Issue) model.Score
}

// Analyzer is the analysis orchestrator. It holds no per-session state and
// Analyze is a pure function of its arguments.
type Analyzer struct {
	Rules       IssueDetector
	Advanced    IssueDetector
	Readability ReadabilityCalculator
	Tone        ToneClassifier
	Statistics  StatisticsCalculator
	Scorer      ScoreCalculator
}

// NewDefault wires the built-in collaborators.
func NewDefault(cfg model.AnalysisConfig, dictionary map[string]string) *Analyzer {
	return &Analyzer{
		Rules:       rules.NewDetector(dictionary),
		Advanced:    rules.AdvancedDetector{},
		Readability: stats.ReadabilityCalculator{LongSentenceWords: cfg.LongSentenceWords},
		Tone:        stats.ToneClassifier{},
		Statistics:  stats.StatisticsCalculator{WordsPerMinute: cfg.WordsPerMinute},
		Scorer:      stats.ScoreCalculator{},
	}
}

// EmptyResult is the canonical result for empty or whitespace-only text.
func EmptyResult() model.AnalysisResult {
	return model.AnalysisResult{
		Issues: []model.Issue{},
		Score:  stats.PerfectScore(),
		Tone:   stats.NeutralTone(),
	}
}

// Analyze runs every collaborator over text and composes a fresh result.
// Issues are deduplicated on (start, end, rule), dismissed patterns are
// dropped, and the remainder is sorted by start offset.
func (a *Analyzer) Analyze(text string, dismissed model.DismissedSet) model.AnalysisResult {
	if strings.TrimSpace(text) == "" {
		return EmptyResult()
	}

	readability := a.Readability.Readability(text)
	tone := a.Tone.Classify(text)

	var collected []model.Issue
	collected = append(collected, a.Rules.Detect(text)...)
	collected = append(collected, a.Advanced.Detect(text)...)
	collected = append(collected, readabilityIssues(readability)...)
	collected = append(collected, toneIssues(tone)...)

	issues := SortIssues(FilterDismissed(Dedup(collected), dismissed))

	return model.AnalysisResult{
		Issues:      issues,
		Score:       a.Scorer.Score(issues),
		Readability: readability,
		Tone:        tone,
		Statistics:  a.Statistics.Statistics(text),
	}
}

type dedupKey struct {
	start int
	end   int
	rule  model.Rule
}

// Dedup keeps the first issue for each (start, end, rule) triple.
// Different rules over the same span are all kept.
func Dedup(issues []model.Issue) []model.Issue {
	seen := make(map[dedupKey]struct{}, len(issues))
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		key := dedupKey{start: issue.StartIndex, end: issue.EndIndex, rule: issue.Rule}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, issue)
	}
	return out
}

// FilterDismissed drops issues whose rule and lowercased text were dismissed.
func FilterDismissed(issues []model.Issue, dismissed model.DismissedSet) []model.Issue {
	if len(dismissed) == 0 {
		return issues
	}
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if dismissed.Has(issue) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// SortIssues stable-sorts issues by ascending start offset in place and returns them.
func SortIssues(issues []model.Issue) []model.Issue {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].StartIndex < issues[j].StartIndex
	})
	return issues
}

func readabilityIssues(r model.Readability) []model.Issue {
	issues := make([]model.Issue, 0, len(r.DifficultSentences))
	for _, s := range r.DifficultSentences {
		issues = append(issues, model.Issue{
			Rule:         model.RuleLongSentence,
			Message:      fmt.Sprintf("Long sentence (%d words): consider splitting it", s.Words),
			StartIndex:   s.StartIndex,
			EndIndex:     s.EndIndex,
			OriginalText: s.Text,
		})
	}
	return issues
}

func toneIssues(t model.ToneReport) []model.Issue {
	issues := make([]model.Issue, 0, len(t.Inconsistencies))
	for _, inc := range t.Inconsistencies {
		issues = append(issues, model.Issue{
			Rule:         model.RuleTone,
			Message:      fmt.Sprintf("Sentence sounds %s while the text is mostly %s", inc.Tone, t.Dominant),
			StartIndex:   inc.StartIndex,
			EndIndex:     inc.EndIndex,
			OriginalText: inc.Text,
		})
	}
	return issues
}
