// Package text provides Unicode-scalar-safe helpers shared by the cost
// model, the recognizers, and the search engine's diagnostics. Every
// operation here is defined over runes, never over byte offsets, so a
// multi-byte candidate output never causes a panic or a silently wrong
// length.
package text

import (
	"strings"
	"unicode"
)

// Runes returns the input as a scalar-value slice. Callers that need to
// measure "length" for search logic (acceptance filters, entropy, previews)
// should range over this instead of len(s) or byte slicing.
func Runes(s string) []rune {
	return []rune(s)
}

// Len returns the number of Unicode scalar values in s.
func Len(s string) int {
	return len([]rune(s))
}

// Truncate returns at most n scalar values of s, for diagnostic previews.
// It never splits a multi-byte rune.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// InvisibleFraction returns the fraction of scalar values in s that are
// non-printable or invisible (control characters, format characters,
// zero-width spaces, ...). Used by the acceptance filter and the
// string-quality score.
func InvisibleFraction(s string) float64 {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	var invisible int
	for _, c := range r {
		if isInvisible(c) {
			invisible++
		}
	}
	return float64(invisible) / float64(len(r))
}

// NonPrintableFraction returns the fraction of scalar values in s that are
// not printable per unicode.IsPrint.
func NonPrintableFraction(s string) float64 {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	var bad int
	for _, c := range r {
		if !unicode.IsPrint(c) {
			bad++
		}
	}
	return float64(bad) / float64(len(r))
}

func isInvisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff', '\u2060':
		return true
	}
	return unicode.Is(unicode.Cf, r) || (unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r')
}

// NormalizeForClassifier lowercases s and strips ASCII punctuation, the
// exact normalization the English classifier performs before judging.
func NormalizeForClassifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		lr := unicode.ToLower(r)
		if isASCIIPunct(lr) {
			continue
		}
		b.WriteRune(lr)
	}
	return b.String()
}

func isASCIIPunct(r rune) bool {
	return r < 128 && unicode.IsPunct(r)
}
