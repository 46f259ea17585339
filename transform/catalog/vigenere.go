package catalog

import (
	"context"

	"github.com/vantyr/decodex"
)

// expectedIOC is the index of coincidence expected of English text, used to
// pick the most likely Vigenère key length among a short range of guesses.
const expectedIOC = 0.0667

// englishFrequency holds the relative frequency of each letter in English
// text (a-z), used to recover each key-length-many subkey by finding the
// Caesar shift whose resulting letter distribution best matches English.
var englishFrequency = [26]float64{
	0.0817, 0.0149, 0.0278, 0.0425, 0.1270, 0.0223, 0.0202, 0.0609, 0.0697,
	0.0015, 0.0077, 0.0403, 0.0241, 0.0675, 0.0751, 0.0193, 0.0010, 0.0599,
	0.0633, 0.0906, 0.0276, 0.0098, 0.0236, 0.0015, 0.0197, 0.0007,
}

// NewVigenere builds the Vigenère-cipher Transformation. It automatically
// detects the key length via the index of coincidence across candidate
// lengths 1-20, then recovers each subkey letter by frequency analysis,
// producing exactly one best-guess decoding — an automatic break, not a
// brute force over the key space, which is what makes a polyalphabetic
// cipher tractable at all within a single expansion step.
func NewVigenere() decodex.Transformation {
	descriptor := decodex.NewDescriptor(
		"vigenere", 0.6,
		"Automatically detects key length via index of coincidence and breaks a Vigenere cipher by frequency analysis",
		"https://en.wikipedia.org/wiki/Vigen%C3%A8re_cipher",
	)
	return decodex.NewTransformationFunc(descriptor, func(ctx context.Context, input string, recognizer decodex.Recognizer) (decodex.TransformationResult, error) {
		letters := extractLetters(input)
		if len(letters) < 20 {
			return decodex.TransformationResult{}, nil
		}

		keyLength := bestKeyLength(letters)
		if keyLength == 0 {
			return decodex.TransformationResult{}, nil
		}

		key := recoverKey(letters, keyLength)
		output := vigenereDecode(input, key)
		return confirmFirst(ctx, recognizer, []string{output}, key)
	})
}

func extractLetters(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r-'A'+'a')
		}
	}
	return out
}

func bestKeyLength(letters []rune) int {
	bestLength := 0
	bestDelta := 1e9
	maxLength := 20
	if maxLength > len(letters)/2 {
		maxLength = len(letters) / 2
	}
	for length := 1; length <= maxLength; length++ {
		ioc := averageIOC(letters, length)
		delta := ioc - expectedIOC
		if delta < 0 {
			delta = -delta
		}
		if delta < bestDelta {
			bestDelta = delta
			bestLength = length
		}
	}
	return bestLength
}

func averageIOC(letters []rune, keyLength int) float64 {
	var total float64
	for offset := 0; offset < keyLength; offset++ {
		var counts [26]int
		n := 0
		for i := offset; i < len(letters); i += keyLength {
			counts[letters[i]-'a']++
			n++
		}
		if n < 2 {
			continue
		}
		var num float64
		for _, c := range counts {
			num += float64(c * (c - 1))
		}
		total += num / float64(n*(n-1))
	}
	return total / float64(keyLength)
}

// recoverKey finds, for each of keyLength subkeys, the Caesar shift that
// minimizes the chi-squared distance between the shifted letter
// distribution and English letter frequencies.
func recoverKey(letters []rune, keyLength int) string {
	key := make([]byte, keyLength)
	for offset := 0; offset < keyLength; offset++ {
		var counts [26]int
		n := 0
		for i := offset; i < len(letters); i += keyLength {
			counts[letters[i]-'a']++
			n++
		}
		if n == 0 {
			key[offset] = 'a'
			continue
		}

		bestShift := 0
		bestChi := 1e18
		for shift := 0; shift < 26; shift++ {
			var chi float64
			for i := 0; i < 26; i++ {
				observed := float64(counts[(i+shift)%26])
				expected := englishFrequency[i] * float64(n)
				if expected == 0 {
					continue
				}
				diff := observed - expected
				chi += diff * diff / expected
			}
			if chi < bestChi {
				bestChi = chi
				bestShift = shift
			}
		}
		key[offset] = byte('a' + bestShift)
	}
	return string(key)
}

// vigenereDecode reverses a Vigenère encryption with key, preserving case
// and passing non-letter runes through untouched.
func vigenereDecode(s string, key string) string {
	if key == "" {
		return s
	}
	keyRunes := []rune(key)
	out := make([]rune, 0, len(s))
	ki := 0
	for _, r := range s {
		var shift int
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			shift = int(keyRunes[ki%len(keyRunes)] - 'a')
			ki++
		default:
			out = append(out, r)
			continue
		}
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, 'a'+((r-'a'-rune(shift))%26+26)%26)
		case r >= 'A' && r <= 'Z':
			out = append(out, 'A'+((r-'A'-rune(shift))%26+26)%26)
		}
	}
	return string(out)
}
