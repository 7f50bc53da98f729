package logpattern

import (
	"regexp"
	"strings"
)

// Substitution regexes, applied in order. Text is lowercased and
// whitespace-collapsed before any of these run, so the patterns only need to
// match lowercase forms.
var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	uuidRe       = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	hexRe        = regexp.MustCompile(`0x[0-9a-f]+|\b[0-9a-f]{16,}\b`)
	timestampRe  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[t ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:z|[+-]\d{2}:?\d{2})?|\b\d{13}\b`)
	numberRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Normalize canonicalises a console message for similarity scoring:
// lowercase, collapsed whitespace, then volatile tokens replaced by
// placeholders — UUIDs, hex blobs, timestamps, remaining numbers, in that
// order.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	s = uuidRe.ReplaceAllString(s, "<uuid>")
	s = hexRe.ReplaceAllString(s, "<hex>")
	s = timestampRe.ReplaceAllString(s, "<ts>")
	s = numberRe.ReplaceAllString(s, "<n>")
	return s
}

// extractVariations re-runs the substitution regexes in order against raw
// text and returns the concrete substrings they would have replaced. Each
// match is blanked from the working copy so later regexes cannot re-match
// residue of an earlier token.
func extractVariations(raw string) []string {
	work := strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " ")))

	var tokens []string
	for _, re := range []*regexp.Regexp{uuidRe, hexRe, timestampRe, numberRe} {
		matches := re.FindAllString(work, -1)
		tokens = append(tokens, matches...)
		work = re.ReplaceAllString(work, "\x00")
	}
	return tokens
}

// diceCoefficient scores textual similarity as 2·|A∩B|/(|A|+|B|) over the
// character bigram sets of a and b. Identical strings score 1; strings too
// short to form a bigram score 0 unless identical.
func diceCoefficient(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	setA := bigrams(a)
	setB := bigrams(b)
	inter := 0
	for g := range setA {
		if setB[g] {
			inter++
		}
	}
	return 2 * float64(inter) / float64(len(setA)+len(setB))
}

func bigrams(s string) map[string]bool {
	set := make(map[string]bool, len(s))
	for i := 0; i+2 <= len(s); i++ {
		set[s[i:i+2]] = true
	}
	return set
}
