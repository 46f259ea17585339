package catalog

import (
	"context"
	"strconv"

	"github.com/vantyr/decodex"
)

// caesarShift rotates every ASCII letter in s by n positions, wrapping
// within its case's alphabet and leaving every other rune untouched.
func caesarShift(s string, n int) string {
	n = ((n % 26) + 26) % 26
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, 'a'+(r-'a'+rune(n))%26)
		case r >= 'A' && r <= 'Z':
			out = append(out, 'A'+(r-'A'+rune(n))%26)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// NewCaesar builds the Caesar-cipher Transformation: all 25 non-trivial
// shifts are produced as candidates in a single Apply call, per the
// classical-cipher exception to "one output per call" — brute-forcing every
// shift is cheap enough that offering fewer than all 25 would only cost the
// search a chance at the right one.
func NewCaesar() decodex.Transformation {
	descriptor := decodex.NewDescriptor(
		"caesar", 0.6,
		"Brute-forces all 25 Caesar-cipher shifts",
		"https://en.wikipedia.org/wiki/Caesar_cipher",
	)
	return decodex.NewTransformationFunc(descriptor, func(ctx context.Context, input string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
		outputs := make([]string, 0, 25)
		keys := make([]string, 0, 25)
		for shift := 1; shift <= 25; shift++ {
			outputs = append(outputs, caesarShift(input, shift))
			keys = append(keys, strconv.Itoa(shift))
		}
		return confirmFirstKeyed(ctx, recognizer, outputs, keys)
	})
}

// NewROT13 builds the ROT13 Transformation as a distinct, self-inverse
// entry from the general Caesar brute-forcer: ROT13 is common enough in the
// wild (Usenet-era text obfuscation) to warrant its own low-cost, tagged
// reciprocal step rather than relying on Caesar's shift-13 candidate.
func NewROT13() decodex.Transformation {
	descriptor := decodex.NewDescriptor(
		"rot13", 0.5,
		"Applies ROT13, a Caesar shift of 13 that is its own inverse",
		"https://en.wikipedia.org/wiki/ROT13",
		decodex.TagReciprocal,
	)
	return decodex.NewTransformationFunc(descriptor, func(ctx context.Context, input string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
		output := caesarShift(input, 13)
		return confirmFirst(ctx, recognizer, []string{output}, "13")
	})
}
