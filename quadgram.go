package decodex

import (
	"context"
	"strings"
)

// quadgramFrequency holds the log-probability of the most common English
// four-letter sequences, in the style of practicalcryptography.com's
// quadgram statistics used for classical cipher cryptanalysis. Sequences
// not present fall back to floorLogProb. This is a small, hand-curated
// sample of the full 97-million-quadgram corpus — enough to separate
// English-shaped text from random noise, not a complete language model.
var quadgramFrequency = map[string]float64{
	"TION": -3.6, "NTHE": -3.7, "THER": -3.5, "THAT": -3.8, "OFTH": -3.9,
	"FTHE": -3.4, "THES": -4.0, "WITH": -3.7, "INTH": -3.9, "ATIO": -3.8,
	"HERE": -3.9, "OTHE": -4.1, "TTHE": -4.0, "THIS": -3.9, "EDTH": -4.4,
	"THEC": -4.2, "ETHE": -3.6, "ANDT": -4.0, "ETHI": -4.3, "HISI": -4.5,
	"HELL": -4.6, "WORL": -4.7, "LLOW": -4.6, "OULD": -3.9, "IGHT": -3.8,
	"MENT": -3.9, "TING": -3.9, "IONS": -4.0, "HAVE": -4.0, "EVER": -4.2,
}

const floorLogProb = -5.5

// quadgramScore returns the average log-probability across every
// overlapping four-character window of s (upper-cased, non-letters
// stripped). Higher (less negative) scores indicate more English-shaped
// text.
func quadgramScore(s string) float64 {
	letters := make([]byte, 0, len(s))
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, byte(r))
		}
	}
	if len(letters) < 4 {
		return floorLogProb
	}
	var sum float64
	windows := len(letters) - 3
	for i := 0; i < windows; i++ {
		key := string(letters[i : i+4])
		if lp, ok := quadgramFrequency[key]; ok {
			sum += lp
		} else {
			sum += floorLogProb
		}
	}
	return sum / float64(windows)
}

// dictionaryHitFraction returns the fraction of whitespace-separated tokens
// in s that appear in a small closed-class function-word set, used
// alongside the quadgram score to catch short strings a pure n-gram model
// scores poorly.
var commonWords = map[string]struct{}{
	"the": {}, "of": {}, "and": {}, "to": {}, "in": {}, "is": {}, "you": {},
	"that": {}, "it": {}, "for": {}, "on": {}, "with": {}, "as": {}, "this": {},
	"was": {}, "are": {}, "be": {}, "at": {}, "have": {}, "hello": {}, "world": {},
	"flag": {}, "a": {}, "an": {},
}

func dictionaryHitFraction(s string) float64 {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return 0
	}
	hits := 0
	for _, w := range fields {
		w = strings.Trim(w, ".,!?;:'\"")
		if _, ok := commonWords[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(fields))
}

// sensitivityThreshold maps a Sensitivity level to the minimum combined
// score QuadgramClassifier requires to accept a string as English.
func sensitivityThreshold(s Sensitivity) float64 {
	switch s {
	case SensitivityLow:
		return 0.62
	case SensitivityHigh:
		return 0.40
	default:
		return 0.50
	}
}

// QuadgramClassifier is the dictionary-and-n-gram English-likelihood
// Classifier that wire.New configures. It combines a quadgram
// log-probability score (normalized against the floor) with a common-word
// hit fraction. The orchestrator has no automatic switch to it: it
// consults whichever Classifier OrchestratorConfig names, and the
// Classifier interface has no way to report itself unavailable.
type QuadgramClassifier struct{}

// NewQuadgramClassifier returns a ready-to-use QuadgramClassifier. It has no
// external dependencies or state.
func NewQuadgramClassifier() *QuadgramClassifier { return &QuadgramClassifier{} }

// Classify implements Classifier.
func (c *QuadgramClassifier) Classify(_ context.Context, normalized string, sensitivity Sensitivity) (float64, bool) {
	if len(normalized) < 2 {
		return 0, false
	}
	quadNorm := (quadgramScore(normalized) - floorLogProb) / (-3.4 - floorLogProb)
	if quadNorm < 0 {
		quadNorm = 0
	}
	if quadNorm > 1 {
		quadNorm = 1
	}
	dictScore := dictionaryHitFraction(normalized)
	combined := quadNorm*0.7 + dictScore*0.3

	if combined >= sensitivityThreshold(sensitivity) {
		return combined, true
	}
	return combined, false
}
