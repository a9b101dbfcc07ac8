// Package simhash fingerprints pages so near-duplicates can be spotted
// cheaply. The radar uses it to notice alternate collection paths that
// silently serve the brand's base page (typically a redirect from a
// retired collection).
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint computes a 64-bit SimHash over tokens, hashing each with
// FNV-64a. No tokens yield 0.
func Fingerprint(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i, v := range vector {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// FingerprintText fingerprints the lower-cased words of text.
func FingerprintText(text string) uint64 {
	return Fingerprint(strings.Fields(strings.ToLower(text)))
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether a and b are within threshold bits of each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// shingles joins each run of n consecutive tokens. With fewer than n tokens
// the tokens themselves are returned.
func shingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return tokens
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}
