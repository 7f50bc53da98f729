package synth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

// summarySections lists the extractor categories composed into a page
// summary, in display order with their item limits. Headings are not part
// of the summary; they add bulk without changing what an agent can act on.
var summarySections = []struct {
	category string
	limit    int
}{
	{"focused", 1},
	{"buttons", 10},
	{"inputs", 10},
	{"toggles", 10},
	{"landmarks", 10},
	{"tabs", 5},
	{"alerts", 10},
	{"modals", 10},
	{"errors", 10},
}

// NavigateContext composes the post-navigation context block: page title, up
// to ten recent console errors, then a page summary assembled from the
// extractors. recentErrors arrive newest-last and are truncated to 200
// characters each.
func NavigateContext(ctx context.Context, recentErrors []string) string {
	var b strings.Builder

	title, err := inspect.Title(ctx)
	if err == nil && title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}

	if len(recentErrors) > 0 {
		shown := recentErrors
		if len(shown) > 10 {
			shown = shown[len(shown)-10:]
		}
		b.WriteString("Console errors:\n")
		for _, e := range shown {
			fmt.Fprintf(&b, "  %s\n", TruncateMessage(e, 200))
		}
	}

	if summary := PageSummary(ctx); summary != "" {
		b.WriteString(summary)
	}
	return b.String()
}

// PageSummary runs the summary extractors and renders the non-empty
// sections. Individual extractor failures skip that section; a summary is
// advisory, not load-bearing.
func PageSummary(ctx context.Context) string {
	var b strings.Builder
	for _, section := range summarySections {
		res, err := inspect.Category(ctx, section.category, section.limit)
		if err != nil || len(res.Items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d):\n", capitalize(section.category), res.Total)
		for _, item := range res.Items {
			fmt.Fprintf(&b, "  %s\n", RenderItem(section.category, item))
		}
	}
	return b.String()
}

// RenderItem formats one extractor item on a single line, walking the
// category's field order and skipping empty fields.
func RenderItem(category string, item map[string]any) string {
	order, ok := inspect.CategoryFieldOrder[category]
	if !ok {
		order = sortedKeys(item)
	}
	var parts []string
	for _, key := range order {
		v, present := item[key]
		if !present || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%q", key, val))
		case bool:
			if val {
				parts = append(parts, key)
			}
		case float64:
			parts = append(parts, fmt.Sprintf("%s=%d", key, int(val)))
		case []any:
			if rendered := renderNested(val); rendered != "" {
				parts = append(parts, fmt.Sprintf("%s=[%s]", key, rendered))
			}
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", key, val))
		}
	}
	return strings.Join(parts, " ")
}

// renderNested flattens a list of sub-items (tab entries, form inputs) into
// a compact comma-separated run.
func renderNested(items []any) string {
	var parts []string
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			parts = append(parts, fmt.Sprintf("%v", raw))
			continue
		}
		var fields []string
		for _, key := range sortedKeys(m) {
			switch v := m[key].(type) {
			case string:
				if v != "" {
					fields = append(fields, v)
				}
			case bool:
				if v {
					fields = append(fields, key)
				}
			}
		}
		parts = append(parts, strings.Join(fields, " "))
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
