package inspect

import (
	"context"
	"time"
)

// ElementSnapshot is the captured state of one key element.
type ElementSnapshot struct {
	Tag      string   `json:"tag"`
	Text     string   `json:"text"`
	Visible  bool     `json:"visible"`
	Disabled bool     `json:"disabled,omitempty"`
	Value    string   `json:"value,omitempty"`
	Classes  []string `json:"classes,omitempty"`
}

// SnapshotCounts is the per-category element census of a snapshot.
type SnapshotCounts struct {
	Total   int `json:"total"`
	Buttons int `json:"buttons"`
	Inputs  int `json:"inputs"`
	Links   int `json:"links"`
	Forms   int `json:"forms"`
	Visible int `json:"visible"`
}

// DOMSnapshot is a lightweight capture of the page's interactive elements,
// used to diff the page across an action. KeyElements is keyed by
// "selector[i]" so repeated selectors stay distinct.
type DOMSnapshot struct {
	Timestamp       time.Time                  `json:"-"`
	NavigationEpoch int                        `json:"-"`
	Counts          SnapshotCounts             `json:"counts"`
	KeyElements     map[string]ElementSnapshot `json:"keyElements"`
}

const snapshotScript = `
	const all = Array.from(document.querySelectorAll('*'));
	const counts = {
		total: all.length,
		buttons: document.querySelectorAll('button, [role="button"]').length,
		inputs: document.querySelectorAll('input, textarea, select').length,
		links: document.querySelectorAll('a[href]').length,
		forms: document.querySelectorAll('form').length,
		visible: all.filter(__visible).length,
	};

	const key = {};
	const interactive = __all('button, [role="button"], a[href], input, textarea, select');
	const seen = {};
	for (const el of interactive.slice(0, 40)) {
		const sel = __selector(el);
		const i = seen[sel] || 0;
		seen[sel] = i + 1;
		key[sel + '[' + i + ']'] = {
			tag: el.tagName.toLowerCase(),
			text: __text(el, 50),
			visible: __visible(el),
			disabled: el.disabled === true || undefined,
			value: el.value !== undefined ? String(el.value).slice(0, 50) : undefined,
			classes: Array.from(el.classList),
		};
	}
	return { counts: counts, keyElements: key };
`

// Snapshot captures the current DOM census. The caller stamps the
// navigation epoch; the timestamp is set here.
func Snapshot(ctx context.Context) (*DOMSnapshot, error) {
	var snap DOMSnapshot
	if err := evaluate(ctx, iife(snapshotScript), &snap); err != nil {
		return nil, err
	}
	snap.Timestamp = time.Now()
	if snap.KeyElements == nil {
		snap.KeyElements = map[string]ElementSnapshot{}
	}
	return &snap, nil
}
