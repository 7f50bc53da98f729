// Package logpattern compresses console log sequences by detecting repeated
// and near-identical messages, so that agents see one "timeout 123ms ... x4"
// line with a variations footnote instead of four near-duplicate lines.
package logpattern

import (
	"fmt"
	"math"
	"strings"
)

// maxPatternLen bounds the repeating-block length the scanner will try.
const maxPatternLen = 20

// Log is the compressor's view of a console message. URL and Line locate the
// emitting source when known; Line is 1-based with 0 meaning unknown.
type Log struct {
	Level string
	Text  string
	URL   string
	Line  int
}

// Block is one element of the compressed sequence: a pattern of one or more
// logs repeated Count times starting at Start in the original sequence.
// Count 1 represents a singleton passed through uncompressed. Variations
// holds the de-duplicated concrete tokens that the similarity normalisation
// collapsed across the repetitions.
type Block struct {
	Pattern    []Log
	Count      int
	Start      int
	Variations []string
}

// Similarity thresholds by source-location knowledge. Messages from the same
// {url,line} tolerate more drift than messages whose locations differ.
const (
	thresholdSameLocation      = 0.85
	thresholdDifferentLocation = 0.96
	thresholdUnknownLocation   = 0.92
)

// Similar reports whether two logs are equal for compression purposes:
// matching levels and a Dice bigram score over normalised text at or above
// the location-dependent threshold. Exact normalised equality
// short-circuits.
func Similar(a, b Log) bool {
	if a.Level != b.Level {
		return false
	}
	na, nb := Normalize(a.Text), Normalize(b.Text)
	if na == nb {
		return true
	}

	threshold := thresholdUnknownLocation
	aKnown := a.URL != "" && a.Line > 0
	bKnown := b.URL != "" && b.Line > 0
	switch {
	case aKnown && bKnown && a.URL == b.URL && a.Line == b.Line:
		threshold = thresholdSameLocation
	case aKnown && bKnown:
		threshold = thresholdDifferentLocation
	}
	return diceCoefficient(na, nb) >= threshold
}

// Compress reduces logs to a sequence of blocks with a single greedy pass.
// At each position it tries pattern lengths 1..min(20, √remaining), counts
// how many consecutive windows stay pairwise-similar to the first, and takes
// the candidate covering the most logs (ties favour the shorter pattern).
// Positions with no repeat emit a singleton block. O(n·Lmax) ≤ O(n√n).
func Compress(logs []Log) []Block {
	var out []Block

	p := 0
	for p < len(logs) {
		remaining := len(logs) - p
		maxL := maxPatternLen
		if byRoot := int(math.Sqrt(float64(remaining))); byRoot < maxL {
			maxL = byRoot
		}
		if remaining < maxL {
			maxL = remaining
		}

		// Ascending search with strict improvement: on equal coverage the
		// shortest pattern wins, so four similar lines compress to one
		// pattern x4 rather than a two-line pattern x2.
		bestL, bestK := 0, 0
		for l := 1; l <= maxL; l++ {
			k := repeatCount(logs, p, l)
			if k >= 2 && l*k > bestL*bestK {
				bestL, bestK = l, k
			}
		}

		if bestK >= 2 {
			span := logs[p : p+bestL*bestK]
			out = append(out, Block{
				Pattern:    logs[p : p+bestL],
				Count:      bestK,
				Start:      p,
				Variations: variations(span),
			})
			p += bestL * bestK
			continue
		}

		out = append(out, Block{Pattern: logs[p : p+1], Count: 1, Start: p})
		p++
	}
	return out
}

// repeatCount counts how many consecutive windows of length l starting at p
// are pairwise-similar to the first window.
func repeatCount(logs []Log, p, l int) int {
	k := 1
	for {
		start := p + k*l
		if start+l > len(logs) {
			return k
		}
		for i := 0; i < l; i++ {
			if !Similar(logs[p+i], logs[start+i]) {
				return k
			}
		}
		k++
	}
}

// variations collects the concrete volatile tokens across every log in a
// compressed span, de-duplicated in first-seen order.
func variations(span []Log) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range span {
		for _, tok := range extractVariations(l.Text) {
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	return out
}

// Flatten expands blocks back into a log sequence, repeating each pattern
// Count times. Used to verify compression fidelity.
func Flatten(blocks []Block) []Log {
	var out []Log
	for _, b := range blocks {
		for i := 0; i < b.Count; i++ {
			out = append(out, b.Pattern...)
		}
	}
	return out
}

// FormatVariations renders a variations footnote, capped at four concrete
// values plus a remainder count.
func FormatVariations(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	shown := vs
	extra := 0
	if len(shown) > 4 {
		extra = len(shown) - 4
		shown = shown[:4]
	}
	s := "Variations: " + strings.Join(shown, ", ")
	if extra > 0 {
		s += fmt.Sprintf(" +%d more", extra)
	}
	return s
}
