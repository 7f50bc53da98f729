// Package respond formats tool responses and enforces the response size
// policy. Responses over the limit are rejected outright and replaced with a
// diagnostic — truncated payloads waste agent tokens on useless prefixes.
package respond

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultLimit is the maximum tool response size in characters, roughly 1250
// tokens.
const DefaultLimit = 5000

// ElementSummary is the slice of element facts the narrowing analyser needs.
// Handlers project their raw result data into this shape before guarding.
type ElementSummary struct {
	Tag     string
	ID      string
	Classes []string
}

// Guard applies the size policy to text. Within the limit, text passes
// through unchanged. Over the limit the response is replaced by a diagnostic
// explaining the overage and, when element data is available, advice on how
// to narrow the query.
func Guard(text string, elems []ElementSummary, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(text) <= limit {
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Result too large: %d characters (limit %d).\n", len(text), limit)
	b.WriteString("The response was rejected rather than truncated; narrow the query and retry.\n")
	if advice := NarrowingAdvice(elems); advice != "" {
		b.WriteString("\n")
		b.WriteString(advice)
	}
	return b.String()
}

// NarrowingAdvice analyses element data and suggests how to shrink a query:
// the most frequent classes, available ids, and the tag breakdown. Returns
// "" when there is nothing to analyse.
func NarrowingAdvice(elems []ElementSummary) string {
	if len(elems) == 0 {
		return ""
	}

	classCounts := map[string]int{}
	tagCounts := map[string]int{}
	var ids []string
	for _, e := range elems {
		if e.Tag != "" {
			tagCounts[e.Tag]++
		}
		if e.ID != "" && len(ids) < 5 {
			ids = append(ids, e.ID)
		}
		for _, c := range e.Classes {
			classCounts[c]++
		}
	}

	var b strings.Builder
	if top := topCounts(classCounts, 3); len(top) > 0 {
		fmt.Fprintf(&b, "Most common classes: %s\n", strings.Join(top, ", "))
	}
	if len(ids) > 0 {
		fmt.Fprintf(&b, "Ids available for exact matching: %s\n", "#"+strings.Join(ids, ", #"))
	}
	if top := topCounts(tagCounts, 5); len(top) > 0 {
		fmt.Fprintf(&b, "Tag breakdown: %s\n", strings.Join(top, ", "))
	}
	b.WriteString("Suggestion: add a class or id to the selector, use text_contains, or lower the limit.")
	return b.String()
}

// topCounts returns the n most frequent keys rendered as "key (count)",
// sorted by count descending then key ascending for stable output.
func topCounts(counts map[string]int, n int) []string {
	type kc struct {
		key   string
		count int
	}
	all := make([]kc, 0, len(counts))
	for k, c := range counts {
		all = append(all, kc{k, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].key < all[j].key
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = fmt.Sprintf("%s (%d)", e.key, e.count)
	}
	return out
}

// EscapeForScript makes a value safe to splice into a single-quoted string
// inside a browser-side script.
func EscapeForScript(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\n", `\n`,
		"\r", `\r`,
	)
	return r.Replace(s)
}
