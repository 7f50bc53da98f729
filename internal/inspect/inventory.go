package inspect

import (
	"context"
)

// Inventory is a compact census of the selectors a page offers, used for
// zero-result suggestions and selector ranking. Class, tag and data
// attribute maps carry element counts; IDs are unique by construction.
type Inventory struct {
	Classes    map[string]int `json:"classes"`
	IDs        []string       `json:"ids"`
	Tags       map[string]int `json:"tags"`
	DataAttrs  map[string]int `json:"dataAttrs"`
	TestIDs    []string       `json:"testIds"`
	AriaLabels []string       `json:"ariaLabels"`
}

const inventoryScript = `
	const classes = {};
	const tags = {};
	const dataAttrs = {};
	const ids = [];
	const testIds = [];
	const ariaLabels = [];
	for (const el of Array.from(document.querySelectorAll('*'))) {
		const tag = el.tagName.toLowerCase();
		tags[tag] = (tags[tag] || 0) + 1;
		if (el.id) ids.push(el.id);
		const testId = el.getAttribute('data-testid');
		if (testId) testIds.push(testId);
		const ariaLabel = el.getAttribute('aria-label');
		if (ariaLabel) ariaLabels.push(ariaLabel);
		for (const c of Array.from(el.classList)) {
			classes[c] = (classes[c] || 0) + 1;
		}
		for (const a of Array.from(el.attributes)) {
			if (a.name.indexOf('data-') === 0) {
				dataAttrs[a.name] = (dataAttrs[a.name] || 0) + 1;
			}
		}
	}
	return {
		classes: classes,
		ids: ids.slice(0, 200),
		tags: tags,
		dataAttrs: dataAttrs,
		testIds: testIds.slice(0, 100),
		ariaLabels: ariaLabels.slice(0, 100),
	};
`

// PageInventory collects the page's selector census in a single pass.
func PageInventory(ctx context.Context) (*Inventory, error) {
	var inv Inventory
	if err := evaluate(ctx, iife(inventoryScript), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}
