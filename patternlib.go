package decodex

import "regexp"

// patternEntry pairs a compiled matcher with the human-facing description
// reported as RecognitionResult.Reason on a hit.
type patternEntry struct {
	description string
	re          *regexp.Regexp
}

// DefaultPatternLibrary recognizes a fixed set of structured formats
// commonly embedded in CTF-style plaintext: IPv4 addresses, URLs, email
// addresses, hex-looking API keys, and common cryptocurrency address
// shapes. It requires no configuration and no external resources, unlike
// the wordlist and classifier stages.
type DefaultPatternLibrary struct {
	entries []patternEntry
}

// NewDefaultPatternLibrary builds the built-in structured-format recognizer.
func NewDefaultPatternLibrary() *DefaultPatternLibrary {
	return &DefaultPatternLibrary{entries: []patternEntry{
		{"ipv4 address", regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`)},
		{"url", regexp.MustCompile(`\bhttps?://[^\s]+`)},
		{"email address", regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)},
		{"hex api key", regexp.MustCompile(`\b[0-9a-fA-F]{32,64}\b`)},
		{"bitcoin address", regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`)},
		{"ethereum address", regexp.MustCompile(`\b0x[0-9a-fA-F]{40}\b`)},
		{"ctf flag", regexp.MustCompile(`\b[A-Za-z0-9_]{2,20}\{[^{}]{1,200}\}`)},
	}}
}

// Match implements PatternLibrary: the first matching entry wins.
func (l *DefaultPatternLibrary) Match(text string) (string, bool) {
	for _, e := range l.entries {
		if e.re.MatchString(text) {
			return e.description, true
		}
	}
	return "", false
}
