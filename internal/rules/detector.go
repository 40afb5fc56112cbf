package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/verte-zerg/quill/internal/model"
)

var wordToken = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)

var defaultTypos = map[string]string{
	"teh":         "the",
	"recieve":     "receive",
	"definately":  "definitely",
	"seperate":    "separate",
	"occured":     "occurred",
	"untill":      "until",
	"wich":        "which",
	"alot":        "a lot",
	"becuase":     "because",
	"thier":       "their",
	"goverment":   "government",
	"enviroment":  "environment",
	"tommorow":    "tomorrow",
	"accomodate":  "accommodate",
	"begining":    "beginning",
	"beleive":     "believe",
	"calender":    "calendar",
	"existance":   "existence",
	"independant": "independent",
	"neccessary":  "necessary",
	"occassion":   "occasion",
	"publically":  "publicly",
	"wierd":       "weird",
	"arguement":   "argument",
}

var missingApostrophes = map[string]string{
	"dont":     "don't",
	"cant":     "can't",
	"wont":     "won't",
	"doesnt":   "doesn't",
	"isnt":     "isn't",
	"didnt":    "didn't",
	"wasnt":    "wasn't",
	"arent":    "aren't",
	"havent":   "haven't",
	"hasnt":    "hasn't",
	"couldnt":  "couldn't",
	"shouldnt": "shouldn't",
	"wouldnt":  "wouldn't",
	"im":       "I'm",
	"ive":      "I've",
	"thats":    "that's",
	"theyre":   "they're",
	"youre":    "you're",
}

// subjectVerb maps a pronoun to the verb forms it must not take and their fixes.
var subjectVerb = map[string]map[string]string{
	"i":    {"has": "have", "is": "am", "are": "am", "were": "was"},
	"you":  {"has": "have", "is": "are", "was": "were"},
	"we":   {"has": "have", "is": "are", "was": "were"},
	"they": {"has": "have", "is": "are", "was": "were"},
	"he":   {"have": "has", "are": "is", "were": "was", "don't": "doesn't"},
	"she":  {"have": "has", "are": "is", "were": "was", "don't": "doesn't"},
	"it":   {"have": "has", "are": "is", "were": "was", "don't": "doesn't"},
}

var (
	modalOf       = regexp.MustCompile(`(?i)\b(could|should|would|must|might) (of)\b`)
	yourWelcome   = regexp.MustCompile(`(?i)\b(your) welcome\b`)
	itsBeforeVerb = regexp.MustCompile(`(?i)\b(its) (a|an|been|going|not|time)\b`)
	theirBeVerb   = regexp.MustCompile(`(?i)\b(their) (is|are|was|were)\b`)
	pronounVerb   = regexp.MustCompile(`(?i)\b(i|you|we|they|he|she|it) ([a-z]+(?:'[a-z]+)?)\b`)
)

// Detector flags typos, confused words, missing contraction apostrophes, and
// basic grammar slips.
type Detector struct {
	typos map[string]string
}

// NewDetector builds a detector using the built-in typo table merged with extra.
func NewDetector(extra map[string]string) *Detector {
	typos := make(map[string]string, len(defaultTypos)+len(extra))
	for k, v := range defaultTypos {
		typos[k] = v
	}
	for k, v := range extra {
		typos[strings.ToLower(k)] = v
	}
	return &Detector{typos: typos}
}

// Detect returns issues in text order per category.
func (d *Detector) Detect(text string) []model.Issue {
	var issues []model.Issue
	issues = append(issues, d.spelling(text)...)
	issues = append(issues, confusedWords(text)...)
	issues = append(issues, grammar(text)...)
	return issues
}

func (d *Detector) spelling(text string) []model.Issue {
	var issues []model.Issue
	for _, loc := range wordToken.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		lower := strings.ToLower(word)
		if fix, ok := d.typos[lower]; ok {
			issues = append(issues, newIssue(text, model.RuleSpelling, loc[0], loc[1],
				fmt.Sprintf("Possible spelling mistake: %q", word), matchCase(word, fix)))
			continue
		}
		if fix, ok := missingApostrophes[lower]; ok {
			if lower != "im" && lower != "ive" {
				fix = matchCase(word, fix)
			}
			issues = append(issues, newIssue(text, model.RuleContraction, loc[0], loc[1],
				"Contraction is missing an apostrophe", fix))
		}
	}
	return issues
}

func confusedWords(text string) []model.Issue {
	var issues []model.Issue
	for _, m := range modalOf.FindAllStringSubmatchIndex(text, -1) {
		of := text[m[4]:m[5]]
		issues = append(issues, newIssue(text, model.RuleConfusedWord, m[4], m[5],
			"Use \"have\" after a modal verb", matchCase(of, "have")))
	}
	for _, m := range yourWelcome.FindAllStringSubmatchIndex(text, -1) {
		word := text[m[2]:m[3]]
		issues = append(issues, newIssue(text, model.RuleConfusedWord, m[2], m[3],
			"Did you mean \"you're\"?", matchCase(word, "you're")))
	}
	for _, m := range itsBeforeVerb.FindAllStringSubmatchIndex(text, -1) {
		word := text[m[2]:m[3]]
		issues = append(issues, newIssue(text, model.RuleConfusedWord, m[2], m[3],
			"Did you mean \"it's\" (it is)?", matchCase(word, "it's")))
	}
	for _, m := range theirBeVerb.FindAllStringSubmatchIndex(text, -1) {
		word := text[m[2]:m[3]]
		issues = append(issues, newIssue(text, model.RuleConfusedWord, m[2], m[3],
			"Did you mean \"there\"?", matchCase(word, "there")))
	}
	return issues
}

func grammar(text string) []model.Issue {
	var issues []model.Issue
	for _, m := range pronounVerb.FindAllStringSubmatchIndex(text, -1) {
		pronoun := strings.ToLower(text[m[2]:m[3]])
		verb := text[m[4]:m[5]]
		fix, ok := subjectVerb[pronoun][strings.ToLower(verb)]
		if !ok {
			continue
		}
		issues = append(issues, newIssue(text, model.RuleGrammar, m[4], m[5],
			fmt.Sprintf("%q does not agree with %q", verb, text[m[2]:m[3]]), matchCase(verb, fix)))
	}
	issues = append(issues, repeatedWords(text)...)
	return issues
}

// repeatedWords flags a word that immediately repeats the previous one. The
// span covers the whitespace before the repeat so removing it leaves one space.
func repeatedWords(text string) []model.Issue {
	var issues []model.Issue
	locs := wordToken.FindAllStringIndex(text, -1)
	for i := 1; i < len(locs); i++ {
		prev, cur := locs[i-1], locs[i]
		if strings.TrimSpace(text[prev[1]:cur[0]]) != "" || strings.Contains(text[prev[1]:cur[0]], "\n") {
			continue
		}
		if !strings.EqualFold(text[prev[0]:prev[1]], text[cur[0]:cur[1]]) {
			continue
		}
		issues = append(issues, newIssue(text, model.RuleGrammar, prev[1], cur[1],
			fmt.Sprintf("Repeated word %q", text[cur[0]:cur[1]]), ""))
	}
	return issues
}
