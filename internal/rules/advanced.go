package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/verte-zerg/quill/internal/model"
)

var passivePattern = regexp.MustCompile(`(?i)\b(am|are|is|was|were|be|been|being)\s+(\w+ed|written|taken|given|made|done|seen|known|shown|broken|chosen|driven|eaten|forgotten|hidden|stolen|thrown|built|sent|held|kept|told|found|caught|bought|brought|taught|left)\b`)

var numberToken = regexp.MustCompile(`\d[\d.,]*\d|\d`)

type phrase struct {
	text       string
	suggestion string
}

var wordyPhrases = []phrase{
	{"in order to", "to"},
	{"due to the fact that", "because"},
	{"at this point in time", "now"},
	{"in the event that", "if"},
	{"for the purpose of", "for"},
	{"a large number of", "many"},
	{"has the ability to", "can"},
	{"in spite of the fact that", "although"},
	{"with regard to", "about"},
	{"prior to", "before"},
	{"in close proximity to", "near"},
	{"each and every", "every"},
	{"the majority of", "most"},
}

var cliches = []string{
	"at the end of the day",
	"think outside the box",
	"low-hanging fruit",
	"in the nick of time",
	"avoid like the plague",
	"better late than never",
	"last but not least",
	"only time will tell",
	"every cloud has a silver lining",
	"a blessing in disguise",
}

type compiledPhrase struct {
	re         *regexp.Regexp
	suggestion string
}

var (
	wordyPatterns  = compilePhrases(wordyPhrases)
	clichePatterns = compileCliches(cliches)
)

func phrasePattern(text string) *regexp.Regexp {
	parts := strings.Fields(text)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}

func compilePhrases(phrases []phrase) []compiledPhrase {
	out := make([]compiledPhrase, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, compiledPhrase{re: phrasePattern(p.text), suggestion: p.suggestion})
	}
	return out
}

func compileCliches(list []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(list))
	for _, c := range list {
		out = append(out, phrasePattern(c))
	}
	return out
}

// AdvancedDetector flags style problems: passive voice, wordy phrases,
// clichés, and ungrouped large numbers.
type AdvancedDetector struct{}

// Detect returns style issues grouped by category.
func (AdvancedDetector) Detect(text string) []model.Issue {
	var issues []model.Issue
	for _, loc := range passivePattern.FindAllStringIndex(text, -1) {
		issues = append(issues, newIssue(text, model.RulePassiveVoice, loc[0], loc[1],
			"Passive voice: consider naming who performs the action"))
	}
	for _, p := range wordyPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			original := text[loc[0]:loc[1]]
			issues = append(issues, newIssue(text, model.RuleWordy, loc[0], loc[1],
				fmt.Sprintf("Wordy phrase: %q can be shortened", original), matchCase(original, p.suggestion)))
		}
	}
	for _, re := range clichePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			issues = append(issues, newIssue(text, model.RuleCliche, loc[0], loc[1],
				"Cliché: say it in your own words"))
		}
	}
	for _, loc := range numberToken.FindAllStringIndex(text, -1) {
		digits := text[loc[0]:loc[1]]
		if len(digits) < 5 || strings.Trim(digits, "0123456789") != "" {
			continue
		}
		issues = append(issues, newIssue(text, model.RuleNumberFormat, loc[0], loc[1],
			"Group large numbers with commas", groupDigits(digits)))
	}
	return issues
}

func groupDigits(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
