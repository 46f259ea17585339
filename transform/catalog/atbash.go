package catalog

import (
	"context"

	"github.com/vantyr/decodex"
)

// atbash reverses each letter's position in its case's alphabet (a<->z,
// b<->y, …), leaving every other rune untouched. It is its own inverse.
func atbash(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, 'z'-(r-'a'))
		case r >= 'A' && r <= 'Z':
			out = append(out, 'Z'-(r-'A'))
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// NewAtbash builds the Atbash-cipher Transformation, tagged reciprocal
// since applying it twice returns the original text.
func NewAtbash() decodex.Transformation {
	descriptor := decodex.NewDescriptor(
		"atbash", 0.4,
		"Applies the Atbash substitution cipher (a<->z, b<->y, ...)",
		"https://en.wikipedia.org/wiki/Atbash",
		decodex.TagReciprocal,
	)
	return decodex.NewTransformationFunc(descriptor, func(ctx context.Context, input string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
		return confirmFirst(ctx, recognizer, []string{atbash(input)}, "")
	})
}
