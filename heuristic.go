package decodex

import (
	"context"
	"math"
	"sort"

	"github.com/vantyr/decodex/internal/text"
)

func runeLen(s string) int                    { return text.Len(s) }
func nonPrintableFraction(s string) float64   { return text.NonPrintableFraction(s) }
func invisibleFraction(s string) float64      { return text.InvisibleFraction(s) }

// shannonEntropy returns the normalized Shannon entropy of s in [0,1]: 0 for
// a pure single-symbol string, 1 for maximally random text over the
// alphabet actually observed. Because the maximum is taken over that
// observed alphabet, evenly mixed English prose scores high as well
// ("hello world" gives about 0.95), so this term alone does not separate
// English from base64/ciphertext-looking noise.
func shannonEntropy(s string) float64 {
	runes := text.Runes(s)
	if len(runes) == 0 {
		return 0
	}
	counts := make(map[rune]int, len(runes))
	for _, r := range runes {
		counts[r]++
	}
	if len(counts) <= 1 {
		return 0
	}
	n := float64(len(runes))
	var h float64
	for _, c := range counts {
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	maxH := math.Log2(float64(len(counts)))
	if maxH == 0 {
		return 0
	}
	return h / maxH
}

// stringQuality scores a string in [0,1], penalizing high fractions of
// non-printable or invisible scalars. A string more than half invisible
// characters is treated as effectively unusable.
func stringQuality(s string) float64 {
	if runeLen(s) == 0 {
		return 0
	}
	invisible := invisibleFraction(s)
	if invisible > 0.5 {
		return 0
	}
	nonPrintable := nonPrintableFraction(s)
	quality := 1 - (invisible*0.6 + nonPrintable*0.4)
	if quality < 0 {
		quality = 0
	}
	if quality > 1 {
		quality = 1
	}
	return quality
}

// CipherHinter is an optional structured-cipher-identification collaborator.
// When present, its TopCipher result reduces the heuristic for a candidate
// transformation matching its guess. This is a pure hook: decodex ships no
// statistical cipher identifier itself, but the heuristic honors one if the
// caller supplies it.
type CipherHinter interface {
	// TopCipher returns the name of the most likely cipher for text and a
	// confidence in [0,1], or ok=false if it has no opinion.
	TopCipher(text string) (name string, confidence float64, ok bool)
}

// heuristicParams bundles the inputs heuristic() needs beyond (text, chain)
// so that Engine can hold one small struct instead of passing five
// arguments through every call.
type heuristicParams struct {
	stats      *Stats
	cipherHint CipherHinter
}

// heuristic estimates the remaining cost to plaintext for candidateText,
// reached via chain. It composes:
//  1. normalized Shannon entropy (lower is better -> less remaining cost)
//  2. inverted string quality (lower quality -> more remaining cost)
//  3. a success-rate prior looked up per the chain's most recent
//     transformation (higher historical success -> multiplicative discount,
//     floor 0.8)
//  4. an optional cipher-identification hint reducing h when the next
//     candidate matches the hinted cipher — applied by rankCandidates,
//     since it is a property of a *candidate*, not of the text alone.
//
// The result is always finite and non-negative.
func heuristic(candidateText string, chain Chain, p heuristicParams) float64 {
	entropy := shannonEntropy(candidateText)
	quality := stringQuality(candidateText)

	base := entropy*2.0 + (1-quality)*3.0

	if p.stats != nil {
		if last, ok := chain.Last(); ok {
			rate := p.stats.SuccessRate(last.TransformationName)
			factor := 1.0 - rate*0.2 // higher success -> factor down to 0.8
			if factor < 0.8 {
				factor = 0.8
			}
			base *= factor
		}
	}

	if base < 0 {
		base = 0
	}
	return base
}

// RankedCandidate is one entry in rankCandidates' output: the candidate
// descriptor plus the estimated totalCost were it applied next.
type RankedCandidate struct {
	Descriptor        TransformationDescriptor
	EstimatedPathCost float64
	EstimatedHeur     float64
	EstimatedTotal    float64
}

// RankCandidates orders the supplied candidate transformations, given the
// current text and chain, by ascending
// estimated totalCost were each applied next. Encoders naturally rank
// before ciphers at low depth (their step cost is far lower until the
// cipher-escalation and depth-penalty terms catch up), and the
// same-repetition discount keeps nested encoder chains cheap.
func RankCandidates(ctx context.Context, candidateText string, chain Chain, candidates []TransformationDescriptor, depthPenalty float64, p heuristicParams) []RankedCandidate {
	_ = ctx
	out := make([]RankedCandidate, 0, len(candidates))
	h := heuristic(candidateText, chain, p)

	for _, d := range candidates {
		g := NextPathCost(chain, d, depthPenalty)
		hh := h
		if p.cipherHint != nil && !d.IsEncoder() {
			if name, confidence, ok := p.cipherHint.TopCipher(candidateText); ok && name == d.Name {
				hh = hh * (1 - confidence*0.5)
				if hh < 0 {
					hh = 0
				}
			}
		}
		out = append(out, RankedCandidate{
			Descriptor:        d,
			EstimatedPathCost: g,
			EstimatedHeur:     hh,
			EstimatedTotal:    g + hh,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EstimatedTotal < out[j].EstimatedTotal
	})
	return out
}
