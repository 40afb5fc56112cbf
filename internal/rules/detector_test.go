package rules

import (
	"testing"

	"github.com/verte-zerg/quill/internal/model"
)

func findIssue(issues []model.Issue, rule model.Rule, original string) (model.Issue, bool) {
	for _, issue := range issues {
		if issue.Rule == rule && issue.OriginalText == original {
			return issue, true
		}
	}
	return model.Issue{}, false
}

func TestDetectorSpelling(t *testing.T) {
	text := "Teh report was recieved."
	issues := NewDetector(nil).Detect(text)
	issue, ok := findIssue(issues, model.RuleSpelling, "Teh")
	if !ok {
		t.Fatalf("expected spelling issue for Teh, got %+v", issues)
	}
	if issue.StartIndex != 0 || issue.EndIndex != 3 {
		t.Fatalf("unexpected span [%d,%d)", issue.StartIndex, issue.EndIndex)
	}
	if len(issue.Suggestions) != 1 || issue.Suggestions[0] != "The" {
		t.Fatalf("expected capitalized suggestion, got %v", issue.Suggestions)
	}
}

func TestDetectorCustomDictionary(t *testing.T) {
	issues := NewDetector(map[string]string{"Hte": "the"}).Detect("hte end")
	issue, ok := findIssue(issues, model.RuleSpelling, "hte")
	if !ok || issue.Suggestions[0] != "the" {
		t.Fatalf("expected custom dictionary hit, got %+v", issues)
	}
}

func TestDetectorContractions(t *testing.T) {
	issues := NewDetector(nil).Detect("Dont worry, im fine.")
	dont, ok := findIssue(issues, model.RuleContraction, "Dont")
	if !ok || dont.Suggestions[0] != "Don't" {
		t.Fatalf("expected Don't suggestion, got %+v", issues)
	}
	im, ok := findIssue(issues, model.RuleContraction, "im")
	if !ok || im.Suggestions[0] != "I'm" {
		t.Fatalf("expected I'm suggestion, got %+v", issues)
	}
}

func TestDetectorConfusedWords(t *testing.T) {
	text := "You could of asked. Its a trap."
	issues := NewDetector(nil).Detect(text)
	of, ok := findIssue(issues, model.RuleConfusedWord, "of")
	if !ok || of.StartIndex != 10 || of.Suggestions[0] != "have" {
		t.Fatalf("expected modal-of issue, got %+v", issues)
	}
	its, ok := findIssue(issues, model.RuleConfusedWord, "Its")
	if !ok || its.Suggestions[0] != "It's" {
		t.Fatalf("expected its issue, got %+v", issues)
	}
}

func TestDetectorGrammar(t *testing.T) {
	text := "I has a pen."
	issues := NewDetector(nil).Detect(text)
	issue, ok := findIssue(issues, model.RuleGrammar, "has")
	if !ok {
		t.Fatalf("expected agreement issue, got %+v", issues)
	}
	if issue.StartIndex != 2 || issue.EndIndex != 5 || issue.Suggestions[0] != "have" {
		t.Fatalf("unexpected issue %+v", issue)
	}
}

func TestDetectorRepeatedWord(t *testing.T) {
	text := "See the the dog."
	issues := NewDetector(nil).Detect(text)
	issue, ok := findIssue(issues, model.RuleGrammar, " the")
	if !ok {
		t.Fatalf("expected repeated word issue, got %+v", issues)
	}
	if issue.StartIndex != 7 || issue.EndIndex != 11 || issue.Suggestions[0] != "" {
		t.Fatalf("unexpected issue %+v", issue)
	}
}

func TestDetectorCleanText(t *testing.T) {
	if issues := NewDetector(nil).Detect("The cat sat on the mat."); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestMatchCase(t *testing.T) {
	cases := []struct{ original, suggestion, want string }{
		{"teh", "the", "the"},
		{"Teh", "the", "The"},
		{"TEH", "the", "THE"},
		{"I", "me", "Me"},
	}
	for _, c := range cases {
		if got := matchCase(c.original, c.suggestion); got != c.want {
			t.Fatalf("matchCase(%q, %q) = %q, want %q", c.original, c.suggestion, got, c.want)
		}
	}
}
