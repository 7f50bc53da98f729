package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

// Stability weights for selector ranking. Ids survive refactors best;
// structural selectors worst.
const (
	stabilityID         = 5
	stabilityTestID     = 4
	stabilityAriaLabel  = 3
	stabilityClass      = 2
	stabilityStructural = 1
)

// RankedSelector is one candidate produced by selector discovery.
type RankedSelector struct {
	Selector  string
	Stability int
	Matches   []string
}

// RankSelectors scores the page inventory against a free-text description
// and returns candidates ordered by term matches, then stability, then
// selector length. With strict on, class and structural candidates are
// excluded entirely.
func RankSelectors(inv *inspect.Inventory, description string, strict bool) []RankedSelector {
	terms := SearchTerms(description)
	if len(terms) == 0 {
		return nil
	}

	var out []RankedSelector
	consider := func(selector string, stability int, haystack string) {
		if strict && stability <= stabilityClass {
			return
		}
		var matched []string
		lower := strings.ToLower(haystack)
		for _, t := range terms {
			if strings.Contains(lower, t) {
				matched = append(matched, t)
			}
		}
		if len(matched) == 0 {
			return
		}
		out = append(out, RankedSelector{Selector: selector, Stability: stability, Matches: matched})
	}

	for _, id := range inv.IDs {
		consider("#"+id, stabilityID, id)
	}
	for _, tid := range inv.TestIDs {
		consider(fmt.Sprintf("[data-testid=%q]", tid), stabilityTestID, tid)
	}
	for _, label := range inv.AriaLabels {
		consider(fmt.Sprintf("[aria-label=%q]", label), stabilityAriaLabel, label)
	}
	for class := range inv.Classes {
		consider("."+class, stabilityClass, class)
	}
	for tag := range inv.Tags {
		consider(tag, stabilityStructural, tag)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if len(a.Matches) != len(b.Matches) {
			return len(a.Matches) > len(b.Matches)
		}
		if a.Stability != b.Stability {
			return a.Stability > b.Stability
		}
		if len(a.Selector) != len(b.Selector) {
			return len(a.Selector) < len(b.Selector)
		}
		return a.Selector < b.Selector
	})
	return out
}

// StabilityName renders the stability tier for display.
func StabilityName(stability int) string {
	switch stability {
	case stabilityID:
		return "id"
	case stabilityTestID:
		return "test-id"
	case stabilityAriaLabel:
		return "aria-label"
	case stabilityClass:
		return "class"
	default:
		return "structural"
	}
}
