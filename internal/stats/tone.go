package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/quill/internal/model"
)

// toneOrder fixes tie-breaking between tones with equal weight.
var toneOrder = []model.Tone{
	model.ToneFormal,
	model.ToneInformal,
	model.ToneConfident,
	model.ToneTentative,
	model.ToneFriendly,
	model.ToneAggressive,
	model.ToneNeutral,
}

var toneLexicon = map[model.Tone][]string{
	model.ToneFormal:     {"therefore", "furthermore", "moreover", "consequently", "regarding", "hereby", "thus", "pursuant", "accordingly", "nevertheless"},
	model.ToneInformal:   {"gonna", "wanna", "kinda", "sorta", "hey", "yeah", "cool", "awesome", "stuff", "lol", "ok", "okay", "guys"},
	model.ToneConfident:  {"certainly", "definitely", "clearly", "undoubtedly", "guarantee", "must", "absolutely"},
	model.ToneTentative:  {"maybe", "perhaps", "might", "possibly", "somewhat", "probably", "guess", "unsure", "seems"},
	model.ToneFriendly:   {"thanks", "thank", "please", "glad", "happy", "appreciate", "welcome", "wonderful", "enjoy"},
	model.ToneAggressive: {"stupid", "ridiculous", "unacceptable", "demand", "hate", "terrible", "idiot", "useless", "pathetic"},
}

var toneOpposites = map[model.Tone]model.Tone{
	model.ToneFormal:     model.ToneInformal,
	model.ToneInformal:   model.ToneFormal,
	model.ToneConfident:  model.ToneTentative,
	model.ToneTentative:  model.ToneConfident,
	model.ToneFriendly:   model.ToneAggressive,
	model.ToneAggressive: model.ToneFriendly,
}

var toneIndex = buildToneIndex()

func buildToneIndex() map[string]model.Tone {
	idx := map[string]model.Tone{}
	for tone, words := range toneLexicon {
		for _, w := range words {
			idx[w] = tone
		}
	}
	return idx
}

// ToneClassifier labels each sentence with a tone from a small lexicon.
type ToneClassifier struct{}

// NeutralTone is the tone report for text with no sentences.
func NeutralTone() model.ToneReport {
	return model.ToneReport{
		Dominant:   model.ToneNeutral,
		Breakdown:  map[model.Tone]float64{model.ToneNeutral: 100},
		Consistent: true,
	}
}

// Classify computes the per-tone sentence share and flags sentences whose tone
// opposes the dominant one.
func (ToneClassifier) Classify(text string) model.ToneReport {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return NeutralTone()
	}
	labels := make([]model.Tone, len(sentences))
	counts := map[model.Tone]int{}
	for i, span := range sentences {
		labels[i] = sentenceTone(span.Text(text))
		counts[labels[i]]++
	}

	breakdown := make(map[model.Tone]float64, len(counts))
	for tone, n := range counts {
		breakdown[tone] = math.Round(float64(n)/float64(len(sentences))*1000) / 10
	}

	dominant := model.ToneNeutral
	best := 0
	for _, tone := range toneOrder {
		if tone == model.ToneNeutral {
			continue
		}
		if counts[tone] > best {
			best = counts[tone]
			dominant = tone
		}
	}

	report := model.ToneReport{
		Dominant:   dominant,
		Breakdown:  breakdown,
		Consistent: true,
	}
	opposite, ok := toneOpposites[dominant]
	if !ok {
		return report
	}
	for i, span := range sentences {
		if labels[i] != opposite {
			continue
		}
		report.Inconsistencies = append(report.Inconsistencies, model.ToneInconsistency{
			Text:       span.Text(text),
			StartIndex: span.Start,
			EndIndex:   span.End,
			Tone:       labels[i],
		})
	}
	report.Consistent = len(report.Inconsistencies) == 0
	return report
}

func sentenceTone(sentence string) model.Tone {
	hits := map[model.Tone]int{}
	for _, w := range Words(sentence) {
		if tone, ok := toneIndex[strings.ToLower(w)]; ok {
			hits[tone]++
		}
	}
	label := model.ToneNeutral
	best := 0
	for _, tone := range toneOrder {
		if hits[tone] > best {
			best = hits[tone]
			label = tone
		}
	}
	return label
}
