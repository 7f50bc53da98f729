// Package inspect runs one-shot, read-only scripts inside the page and
// returns structured element inventories. Scripts use only HTML and ARIA
// semantics; there is no framework detection. Selector generation prefers
// #id, then [data-testid], then tag.class, then the bare tag.
package inspect

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// jsPrelude defines the helpers shared by every extractor script. Each
// script is a self-contained IIFE, so the prelude is spliced into all of
// them.
const jsPrelude = `
	const __visible = (el) => {
		const s = window.getComputedStyle(el);
		if (s.display === 'none' || s.visibility === 'hidden' || s.opacity === '0') return false;
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	};
	const __selector = (el) => {
		if (el.id) return '#' + el.id;
		const t = el.getAttribute('data-testid');
		if (t) return '[data-testid="' + t + '"]';
		const tag = el.tagName.toLowerCase();
		if (el.classList.length > 0) return tag + '.' + el.classList[0];
		return tag;
	};
	const __text = (el, n) => (el.innerText || el.textContent || '').trim().replace(/\s+/g, ' ').slice(0, n);
	const __collect = (els, limit, map) => {
		const vis = els.filter(__visible);
		return { items: vis.slice(0, limit).map(map), total: vis.length, truncated: vis.length > limit };
	};
	const __all = (sel) => Array.from(document.querySelectorAll(sel));
`

// evaluate runs script in the page and decodes the result into out,
// classifying any failure as an EXECUTION error.
func evaluate(ctx context.Context, script string, out any) error {
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, out)); err != nil {
		return toolerr.Execution(err, "page script")
	}
	return nil
}

// Title returns document.title.
func Title(ctx context.Context) (string, error) {
	var title string
	if err := evaluate(ctx, "document.title", &title); err != nil {
		return "", err
	}
	return title, nil
}

// iife wraps a script body (and the shared prelude) into an immediately
// invoked expression.
func iife(body string) string {
	return "(() => {" + jsPrelude + body + "})()"
}

// CategoryResult is the uniform shape every extractor category returns:
// the first `limit` visible matches, the total visible count, and whether
// the list was cut.
type CategoryResult struct {
	Items     []map[string]any `json:"items"`
	Total     int              `json:"total"`
	Truncated bool             `json:"truncated"`
}

// Category runs the named extractor with the given item limit.
func Category(ctx context.Context, name string, limit int) (*CategoryResult, error) {
	body, ok := categoryScripts[name]
	if !ok {
		return nil, toolerr.Newf(toolerr.KindExecution, "unknown extractor category: %s", name)
	}
	if limit <= 0 {
		limit = 10
	}
	var res CategoryResult
	if err := evaluate(ctx, iife(fmt.Sprintf(body, limit)), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CategoryFieldOrder gives the rendering order of item fields per category.
// Extractor scripts emit maps; renderers walk these keys so output stays
// stable.
var CategoryFieldOrder = map[string][]string{
	"focused":   {"tag", "id", "name", "type", "selector"},
	"buttons":   {"tag", "text", "hasHandler", "disabled", "selector"},
	"links":     {"text", "href", "selector"},
	"inputs":    {"type", "name", "id", "value", "placeholder", "selector"},
	"forms":     {"action", "method", "inputCount", "selector"},
	"toggles":   {"label", "checked", "selector"},
	"alerts":    {"role", "text", "selector"},
	"modals":    {"open", "title", "selector"},
	"errors":    {"element", "message", "selector"},
	"landmarks": {"type", "label", "selector"},
	"tabs":      {"tabs", "selector"},
	"headings":  {"level", "text", "selector"},
}
