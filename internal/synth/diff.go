package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

// diffLimit caps each section of a DOM diff.
const diffLimit = 5

// DOMDiff renders the changes between two snapshots: additions, removals,
// per-element field changes, and the per-category count delta. Identical
// snapshots produce an empty string.
func DOMDiff(before, after *inspect.DOMSnapshot) string {
	if before == nil || after == nil {
		return ""
	}

	var added, removed, changed []string
	for key, el := range after.KeyElements {
		prev, ok := before.KeyElements[key]
		if !ok {
			added = append(added, fmt.Sprintf("+ %s %q", key, el.Text))
			continue
		}
		if fields := changedFields(prev, el); len(fields) > 0 {
			changed = append(changed, fmt.Sprintf("~ %s (%s)", key, strings.Join(fields, ", ")))
		}
	}
	for key, el := range before.KeyElements {
		if _, ok := after.KeyElements[key]; !ok {
			removed = append(removed, fmt.Sprintf("- %s %q", key, el.Text))
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)

	var b strings.Builder
	writeSection := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		total := len(lines)
		if total > diffLimit {
			lines = lines[:diffLimit]
		}
		fmt.Fprintf(&b, "%s (%d):\n", title, total)
		for _, l := range lines {
			b.WriteString("  " + l + "\n")
		}
	}
	writeSection("Added", added)
	writeSection("Removed", removed)
	writeSection("Changed", changed)

	if delta := countDelta(before.Counts, after.Counts); delta != "" {
		b.WriteString("Counts: " + delta + "\n")
	}
	return b.String()
}

// changedFields names the fields that differ between two element snapshots.
func changedFields(a, b inspect.ElementSnapshot) []string {
	var out []string
	if a.Text != b.Text {
		out = append(out, fmt.Sprintf("text %q -> %q", a.Text, b.Text))
	}
	if a.Visible != b.Visible {
		out = append(out, fmt.Sprintf("visible %t -> %t", a.Visible, b.Visible))
	}
	if a.Disabled != b.Disabled {
		out = append(out, fmt.Sprintf("disabled %t -> %t", a.Disabled, b.Disabled))
	}
	if a.Value != b.Value {
		out = append(out, fmt.Sprintf("value %q -> %q", a.Value, b.Value))
	}
	return out
}

func countDelta(a, b inspect.SnapshotCounts) string {
	var parts []string
	add := func(name string, before, after int) {
		if before != after {
			parts = append(parts, fmt.Sprintf("%s %+d", name, after-before))
		}
	}
	add("total", a.Total, b.Total)
	add("buttons", a.Buttons, b.Buttons)
	add("inputs", a.Inputs, b.Inputs)
	add("links", a.Links, b.Links)
	add("forms", a.Forms, b.Forms)
	add("visible", a.Visible, b.Visible)
	return strings.Join(parts, ", ")
}
