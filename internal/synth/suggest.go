package synth

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

// Suggestion is one candidate selector for a query that matched nothing.
type Suggestion struct {
	Selector string
	Count    int
	Reason   string
}

var camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
var cssSyntaxRe = regexp.MustCompile(`[.#\[\]=>"'~+*:(),\s]+`)

// SearchTerms splits a selector into the fragments worth matching against a
// page inventory: CSS syntax is stripped, then each fragment splits on "-",
// "_" and camel-case boundaries. Fragments shorter than three characters are
// dropped.
func SearchTerms(selector string) []string {
	spaced := camelBoundaryRe.ReplaceAllString(selector, "$1 $2")
	spaced = strings.NewReplacer("-", " ", "_", " ").Replace(spaced)
	fields := cssSyntaxRe.Split(spaced, -1)

	seen := make(map[string]bool)
	var terms []string
	for _, f := range fields {
		for _, part := range strings.Fields(f) {
			part = strings.ToLower(part)
			if len(part) < 3 || seen[part] {
				continue
			}
			seen[part] = true
			terms = append(terms, part)
		}
	}
	return terms
}

// SuggestSelectors builds the zero-result response body: the selector that
// failed, up to five similar selectors that exist on the page (scored by how
// many search terms they contain), and a one-line page structure summary.
func SuggestSelectors(inv *inspect.Inventory, selector string) string {
	terms := SearchTerms(selector)

	type scored struct {
		Suggestion
		matches int
	}
	var candidates []scored

	consider := func(sel string, count int) {
		var matched []string
		lower := strings.ToLower(sel)
		for _, t := range terms {
			if strings.Contains(lower, t) {
				matched = append(matched, t)
			}
		}
		if len(matched) == 0 {
			return
		}
		candidates = append(candidates, scored{
			Suggestion: Suggestion{
				Selector: sel,
				Count:    count,
				Reason:   fmt.Sprintf("matches %q", strings.Join(matched, ", ")),
			},
			matches: len(matched),
		})
	}

	for class, count := range inv.Classes {
		consider("."+class, count)
	}
	for _, id := range inv.IDs {
		consider("#"+id, 1)
	}
	for tag, count := range inv.Tags {
		consider(tag, count)
	}
	for attr, count := range inv.DataAttrs {
		consider("["+attr+"]", count)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.matches != b.matches {
			return a.matches > b.matches
		}
		if len(a.Selector) != len(b.Selector) {
			return len(a.Selector) < len(b.Selector)
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Selector < b.Selector
	})
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "No elements found matching selector: %s\n", selector)
	if len(candidates) > 0 {
		b.WriteString("Similar selectors that exist:\n")
		for _, c := range candidates {
			fmt.Fprintf(&b, "  %s (%d %s) - %s\n", c.Selector, c.Count, plural(c.Count, "element"), c.Reason)
		}
	}
	b.WriteString(pageStructureLine(inv))
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// pageStructureLine summarises what the page offers so the agent can reframe
// its query instead of guessing again.
func pageStructureLine(inv *inspect.Inventory) string {
	total := 0
	for _, c := range inv.Tags {
		total += c
	}
	return fmt.Sprintf("Page structure: %d elements, %d distinct classes, %d ids, %d data attributes",
		total, len(inv.Classes), len(inv.IDs), len(inv.DataAttrs))
}
