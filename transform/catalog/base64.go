// Package catalog provides the built-in set of Transformations: the
// encoders and classical ciphers decodex's engine chains together to reach
// plaintext. Each transformation is an opaque adapter around the engine's
// Transformation interface — the engine never inspects how a candidate
// output was produced, only its Descriptor and the outputs Apply returns.
package catalog

import (
	"context"
	"encoding/base64"

	"github.com/vantyr/decodex"
)

// base64Variants are tried in order; every variant that decodes without
// error to a non-empty string other than the input contributes that string
// as a separate candidate output (two variants decoding to the same text
// both contribute it) rather than a single guess, since standard and URL-safe
// alphabets (with or without padding) are all common in the wild.
var base64Variants = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// NewBase64 builds the Base64-decode Transformation.
func NewBase64() decodex.Transformation {
	descriptor := decodex.NewDescriptor(
		"base64", 0.95,
		"Decodes standard, URL-safe, and unpadded Base64",
		"https://datatracker.ietf.org/doc/html/rfc4648",
		decodex.TagIsEncoder,
	)
	return decodex.NewTransformationFunc(descriptor, func(ctx context.Context, input string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
		var outputs []string
		for _, enc := range base64Variants {
			decoded, err := enc.DecodeString(input)
			if err != nil {
				continue
			}
			candidate := string(decoded)
			if candidate == "" || candidate == input {
				continue
			}
			outputs = append(outputs, candidate)
		}
		if len(outputs) == 0 {
			return decodex.TransformationResult{}, nil
		}
		return confirmFirst(ctx, recognizer, outputs, "")
	})
}

// confirmFirst tries each candidate output against the recognizer in order
// and stops at the first confirmation. TransformationResult.Success is a
// single flag for the whole call, so on a confirmed hit CandidateOutputs is
// narrowed to just the winning output — leaving every raw guess in the
// slice would make the engine attribute success to unconfirmed siblings
// too, since it fans a TransformationResult's Success flag out across every
// entry in CandidateOutputs.
func confirmFirst(ctx context.Context, recognizer decodex.Recognizer, outputs []string, key string) (decodex.TransformationResult, error) {
	keys := make([]string, len(outputs))
	for i := range keys {
		keys[i] = key
	}
	return confirmFirstKeyed(ctx, recognizer, outputs, keys)
}

// confirmFirstKeyed is confirmFirst for transformations whose candidates
// carry distinct keys (each Caesar shift, each Vigenère guess, …): keys[i]
// is the key that produced outputs[i]. On confirmation, the winning
// candidate's own key is reported rather than a single shared one.
func confirmFirstKeyed(ctx context.Context, recognizer decodex.Recognizer, outputs []string, keys []string) (decodex.TransformationResult, error) {
	for i, output := range outputs {
		result, err := recognizer.Recognize(ctx, output)
		if err != nil {
			continue
		}
		if result.Confirmed {
			return decodex.TransformationResult{
				CandidateOutputs: []string{output},
				Key:              keys[i],
				Confirmation:     result,
				Success:          true,
			}, nil
		}
	}
	return decodex.TransformationResult{CandidateOutputs: outputs}, nil
}
