package catalog

import (
	"context"
	"net/url"

	"github.com/vantyr/decodex"
)

// NewURLEncoding builds the percent-decode Transformation.
func NewURLEncoding() decodex.Transformation {
	descriptor := decodex.NewDescriptor(
		"url-encoding", 0.7,
		"Decodes percent-encoded (application/x-www-form-urlencoded) text",
		"https://en.wikipedia.org/wiki/Percent-encoding",
		decodex.TagIsEncoder,
	)
	return decodex.NewTransformationFunc(descriptor, func(ctx context.Context, input string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
		decoded, err := url.QueryUnescape(input)
		if err != nil || decoded == input {
			return decodex.TransformationResult{}, nil
		}
		return confirmFirst(ctx, recognizer, []string{decoded}, "")
	})
}
