package analysis

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/stats"
)

type fixedDetector []model.Issue

func (f fixedDetector) Detect(string) []model.Issue {
	out := make([]model.Issue, len(f))
	copy(out, f)
	return out
}

func newTestAnalyzer(rulesOut, advancedOut []model.Issue) *Analyzer {
	return &Analyzer{
		Rules:       fixedDetector(rulesOut),
		Advanced:    fixedDetector(advancedOut),
		Readability: stats.ReadabilityCalculator{},
		Tone:        stats.ToneClassifier{},
		Statistics:  stats.StatisticsCalculator{},
		Scorer:      stats.ScoreCalculator{},
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := NewDefault(model.AnalysisConfig{}, nil)
	for _, text := range []string{"", "   ", "\n\t\n"} {
		res := a.Analyze(text, nil)
		if len(res.Issues) != 0 {
			t.Fatalf("expected no issues for %q, got %d", text, len(res.Issues))
		}
		if res.Score != stats.PerfectScore() {
			t.Fatalf("expected perfect score for %q, got %+v", text, res.Score)
		}
		if res.Statistics.Words != 0 || res.Statistics.Sentences != 0 {
			t.Fatalf("expected zero statistics for %q, got %+v", text, res.Statistics)
		}
		if res.Tone.Dominant != model.ToneNeutral {
			t.Fatalf("expected neutral tone, got %s", res.Tone.Dominant)
		}
	}
}

func TestAnalyzeIsPure(t *testing.T) {
	a := NewDefault(model.AnalysisConfig{}, nil)
	text := "Teh report was written by Sam. In order to win, I has to train."
	first := a.Analyze(text, nil)
	second := a.Analyze(text, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical input")
	}
	if len(first.Issues) == 0 {
		t.Fatalf("expected issues for %q", text)
	}
}

func TestAnalyzeSortsIssues(t *testing.T) {
	a := NewDefault(model.AnalysisConfig{}, nil)
	res := a.Analyze("In order to win, Teh team was beaten by rain. I has a pen.", nil)
	for i := 1; i < len(res.Issues); i++ {
		if res.Issues[i-1].StartIndex > res.Issues[i].StartIndex {
			t.Fatalf("issues not sorted: %+v", res.Issues)
		}
	}
}

func TestAnalyzeDedupsSameRuleAndSpan(t *testing.T) {
	dup := model.Issue{Rule: model.RuleSpelling, StartIndex: 0, EndIndex: 3, OriginalText: "Teh", Message: "first"}
	again := dup
	again.Message = "second"
	other := model.Issue{Rule: model.RuleGrammar, StartIndex: 0, EndIndex: 3, OriginalText: "Teh"}

	a := newTestAnalyzer([]model.Issue{dup, other}, []model.Issue{again})
	res := a.Analyze("Teh cat.", nil)
	if len(res.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", res.Issues)
	}
	if res.Issues[0].Message != "first" {
		t.Fatalf("expected the first detected issue to win, got %q", res.Issues[0].Message)
	}
	if res.Issues[1].Rule != model.RuleGrammar {
		t.Fatalf("expected grammar issue on the same span to survive, got %s", res.Issues[1].Rule)
	}
}

func TestAnalyzeStableOrderForEqualStarts(t *testing.T) {
	first := model.Issue{Rule: model.RuleWordy, StartIndex: 4, EndIndex: 8, OriginalText: "cats"}
	second := model.Issue{Rule: model.RuleCliche, StartIndex: 4, EndIndex: 9, OriginalText: "cats."}
	early := model.Issue{Rule: model.RuleSpelling, StartIndex: 0, EndIndex: 3, OriginalText: "The"}

	a := newTestAnalyzer([]model.Issue{first}, []model.Issue{second, early})
	res := a.Analyze("The cats.", nil)
	if len(res.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(res.Issues))
	}
	got := []model.Rule{res.Issues[0].Rule, res.Issues[1].Rule, res.Issues[2].Rule}
	want := []model.Rule{model.RuleSpelling, model.RuleWordy, model.RuleCliche}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAnalyzeFiltersDismissed(t *testing.T) {
	a := NewDefault(model.AnalysisConfig{}, nil)
	text := "Teh cat and teh dog."
	res := a.Analyze(text, nil)
	if countRule(res.Issues, model.RuleSpelling) != 2 {
		t.Fatalf("expected 2 spelling issues, got %+v", res.Issues)
	}

	dismissed := model.DismissedSet{model.NewDismissedPatternKey(model.RuleSpelling, "TEH"): {}}
	res = a.Analyze(text, dismissed)
	if countRule(res.Issues, model.RuleSpelling) != 0 {
		t.Fatalf("expected dismissed spelling issues to be removed, got %+v", res.Issues)
	}
	if res.Score != stats.PerfectScore() {
		t.Fatalf("expected score from filtered issues, got %+v", res.Score)
	}
}

func TestAnalyzeFlagsLongSentences(t *testing.T) {
	a := NewDefault(model.AnalysisConfig{LongSentenceWords: 5}, nil)
	res := a.Analyze("Short one. This sentence clearly has far too many words.", nil)
	if countRule(res.Issues, model.RuleLongSentence) != 1 {
		t.Fatalf("expected one long-sentence issue, got %+v", res.Issues)
	}
}

func TestAnalyzeScoresFinalIssues(t *testing.T) {
	a := NewDefault(model.AnalysisConfig{}, nil)
	res := a.Analyze("I has a pen.", nil)
	if res.Score.Correctness >= 100 {
		t.Fatalf("expected correctness penalty, got %+v", res.Score)
	}
	if res.Statistics.Words != 4 {
		t.Fatalf("expected 4 words, got %d", res.Statistics.Words)
	}
}

func countRule(issues []model.Issue, rule model.Rule) int {
	n := 0
	for _, issue := range issues {
		if issue.Rule == rule {
			n++
		}
	}
	return n
}
