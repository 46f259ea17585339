package decodex

// Preset is a named, historically common transformation-chain starting
// point (e.g. "Base64 -> ROT13"), data rather than UI: the original picker
// this is drawn from let an operator jump straight to a familiar chain
// instead of waiting on search to rediscover it. decodex exposes the same
// idea as a bias on the search, not a shortcut around it — a preset step
// still has to be confirmed by a recognizer like any other.
type Preset struct {
	Name  string
	Steps []string
}

// SeedFrontier biases the engine toward the transformation names named in
// presets by crediting them with a favorable prior in Stats, the same
// decayed success-rate signal an actual successful decode would produce.
// It does not alter the frontier's structure or skip any recognizer step;
// a bad preset only costs a little search-order priority, never
// correctness.
func (e *Engine) SeedFrontier(presets []Preset) {
	for _, preset := range presets {
		for _, step := range preset.Steps {
			e.stats.RecordSuccess(step)
		}
	}
}
