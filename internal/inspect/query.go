package inspect

import (
	"context"
	"fmt"

	"github.com/tomasbasham/chrome-mcp/internal/respond"
)

// ChildInfo summarises an element's subtree size.
type ChildInfo struct {
	DirectChildren   int `json:"directChildren"`
	TotalDescendants int `json:"totalDescendants"`
}

// Position is an element's viewport rectangle.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// QueriedElement is one match from a selector query, with enough detail for
// an agent to decide what to do next without a follow-up round trip.
type QueriedElement struct {
	Tag       string            `json:"tag"`
	ID        string            `json:"id,omitempty"`
	Classes   []string          `json:"classes,omitempty"`
	Selector  string            `json:"selector"`
	Text      string            `json:"text,omitempty"`
	Visible   bool              `json:"visible"`
	Disabled  bool              `json:"disabled,omitempty"`
	Value     string            `json:"value,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Position  Position          `json:"position"`
	ChildInfo ChildInfo         `json:"childInfo"`
}

// QueryResult reports each filtering stage so zero-result responses can say
// which filter removed the matches.
type QueryResult struct {
	Found                 int              `json:"found"`
	AfterVisibilityFilter int              `json:"afterVisibilityFilter"`
	AfterTextFilter       int              `json:"afterTextFilter"`
	Elements              []QueriedElement `json:"elements"`
}

const queryScript = `
	const sel = '%s';
	const limit = %d;
	const textContains = '%s';
	const includeHidden = %t;

	const all = __all(sel);
	let filtered = includeHidden ? all : all.filter(__visible);
	const afterVisibility = filtered.length;
	if (textContains) {
		const needle = textContains.toLowerCase();
		filtered = filtered.filter((el) => __text(el, 1000).toLowerCase().includes(needle));
	}
	const afterText = filtered.length;

	return {
		found: all.length,
		afterVisibilityFilter: afterVisibility,
		afterTextFilter: afterText,
		elements: filtered.slice(0, limit).map((el) => {
			const r = el.getBoundingClientRect();
			const attrs = {};
			for (const a of Array.from(el.attributes).slice(0, 5)) {
				attrs[a.name] = a.value.slice(0, 50);
			}
			return {
				tag: el.tagName.toLowerCase(),
				id: el.id || undefined,
				classes: Array.from(el.classList),
				selector: __selector(el),
				text: __text(el, 100),
				visible: __visible(el),
				disabled: el.disabled === true || el.getAttribute('aria-disabled') === 'true',
				value: el.value !== undefined ? String(el.value).slice(0, 50) : undefined,
				attrs: attrs,
				position: { x: r.x, y: r.y, width: r.width, height: r.height },
				childInfo: {
					directChildren: el.children.length,
					totalDescendants: el.querySelectorAll('*').length,
				},
			};
		}),
	};
`

// Query runs a selector query against the page with visibility and text
// filters applied browser-side.
func Query(ctx context.Context, selector string, limit int, textContains string, includeHidden bool) (*QueryResult, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}
	script := iife(fmt.Sprintf(queryScript,
		respond.EscapeForScript(selector),
		limit,
		respond.EscapeForScript(textContains),
		includeHidden,
	))
	var res QueryResult
	if err := evaluate(ctx, script, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Summaries projects query matches into the shape the size-guard narrowing
// analyser consumes.
func Summaries(elems []QueriedElement) []respond.ElementSummary {
	out := make([]respond.ElementSummary, len(elems))
	for i, e := range elems {
		out[i] = respond.ElementSummary{Tag: e.Tag, ID: e.ID, Classes: e.Classes}
	}
	return out
}
