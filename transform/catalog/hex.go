package catalog

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/vantyr/decodex"
)

// NewHex builds the hexadecimal-decode Transformation. Whitespace between
// byte pairs (a common pretty-printed form) is stripped before decoding.
func NewHex() decodex.Transformation {
	descriptor := decodex.NewDescriptor(
		"hex", 0.9,
		"Decodes hexadecimal-encoded bytes, tolerating whitespace between pairs",
		"https://en.wikipedia.org/wiki/Hexadecimal",
		decodex.TagIsEncoder,
	)
	return decodex.NewTransformationFunc(descriptor, func(ctx context.Context, input string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
		cleaned := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				return -1
			}
			return r
		}, input)
		if len(cleaned) < 2 || len(cleaned)%2 != 0 {
			return decodex.TransformationResult{}, nil
		}
		decoded, err := hex.DecodeString(cleaned)
		if err != nil {
			return decodex.TransformationResult{}, nil
		}
		candidate := string(decoded)
		if candidate == "" {
			return decodex.TransformationResult{}, nil
		}
		return confirmFirst(ctx, recognizer, []string{candidate}, "")
	})
}
