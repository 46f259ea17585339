package catalog

import "github.com/vantyr/decodex"

// All returns every built-in Transformation, in a fixed, popularity-ish
// order: cheap, unambiguous encoders first, then the classical ciphers.
// Callers register these into a decodex.Registry; the registry's own
// insertion order then drives rankCandidates' FIFO tie-break.
func All() []decodex.Transformation {
	return []decodex.Transformation{
		NewBase64(),
		NewHex(),
		NewURLEncoding(),
		NewROT13(),
		NewCaesar(),
		NewAtbash(),
		NewVigenere(),
	}
}

// RegisterAll registers every built-in Transformation into registry.
func RegisterAll(registry *decodex.Registry) {
	for _, t := range All() {
		registry.Register(t)
	}
}
