package inspect

// categoryScripts holds the body of each extractor, keyed by category name.
// Each body is spliced after the shared prelude and receives the item limit
// through a single %d verb. Match rules use HTML and ARIA only.
var categoryScripts = map[string]string{
	"focused": `
		const limit = %d;
		const el = document.activeElement;
		if (!el || el === document.body) return { items: [], total: 0, truncated: false };
		return { items: [{
			tag: el.tagName.toLowerCase(),
			id: el.id || undefined,
			name: el.getAttribute('name') || undefined,
			type: el.getAttribute('type') || undefined,
			selector: __selector(el),
		}], total: 1, truncated: false };
	`,

	"buttons": `
		return __collect(__all('button, [role="button"]'), %d, (el) => ({
			tag: el.outerHTML.slice(0, el.outerHTML.indexOf('>') + 1),
			text: __text(el, 50),
			hasHandler: el.onclick !== null || el.hasAttribute('onclick'),
			disabled: el.disabled === true || el.getAttribute('aria-disabled') === 'true',
			selector: __selector(el),
		}));
	`,

	"links": `
		return __collect(__all('a[href]'), %d, (el) => ({
			text: __text(el, 50),
			href: el.getAttribute('href'),
			selector: __selector(el),
		}));
	`,

	"inputs": `
		return __collect(__all('input, textarea, select'), %d, (el) => ({
			type: el.type || el.tagName.toLowerCase(),
			name: el.getAttribute('name') || undefined,
			id: el.id || undefined,
			value: (el.value || '').slice(0, 50) || undefined,
			placeholder: el.getAttribute('placeholder') || undefined,
			selector: __selector(el),
		}));
	`,

	"forms": `
		return __collect(__all('form'), %d, (el) => {
			const fields = Array.from(el.querySelectorAll('input, textarea, select'));
			return {
				action: el.getAttribute('action') || undefined,
				method: el.getAttribute('method') || undefined,
				inputCount: fields.length,
				selector: __selector(el),
				inputs: fields.slice(0, 5).map((f) => ({
					type: f.type || f.tagName.toLowerCase(),
					name: f.getAttribute('name') || undefined,
				})),
			};
		});
	`,

	"toggles": `
		return __collect(__all('input[type="checkbox"], [role="switch"]'), %d, (el) => {
			let label = el.getAttribute('aria-label') || undefined;
			if (!label) {
				const wrap = el.closest('label');
				if (wrap) label = __text(wrap, 50);
				else if (el.id) {
					const forLabel = document.querySelector('label[for="' + el.id + '"]');
					if (forLabel) label = __text(forLabel, 50);
				}
			}
			const checked = el.checked === true || el.getAttribute('aria-checked') === 'true';
			return { label: label, checked: checked, selector: __selector(el) };
		});
	`,

	"alerts": `
		return __collect(__all('[role="alert"], [role="status"]'), %d, (el) => ({
			role: el.getAttribute('role'),
			text: __text(el, 100),
			selector: __selector(el),
		}));
	`,

	"modals": `
		const limit = %d;
		const els = __all('[role="dialog"], [aria-modal="true"]');
		return { items: els.slice(0, limit).map((el) => {
			let title = el.getAttribute('aria-label') || undefined;
			const labelledBy = el.getAttribute('aria-labelledby');
			if (!title && labelledBy) {
				const ref = document.getElementById(labelledBy);
				if (ref) title = __text(ref, 50);
			}
			return { open: __visible(el) || el.hasAttribute('open'), title: title, selector: __selector(el) };
		}), total: els.length, truncated: els.length > limit };
	`,

	"errors": `
		return __collect(__all('[aria-invalid="true"], [aria-errormessage]'), %d, (el) => {
			let message;
			const ref = el.getAttribute('aria-errormessage');
			if (ref) {
				const target = document.getElementById(ref);
				if (target) message = __text(target, 100);
			}
			return { element: el.tagName.toLowerCase(), message: message, selector: __selector(el) };
		});
	`,

	"landmarks": `
		return __collect(__all('header, nav, main, aside, footer, section, [role="region"], [role="search"]'), %d, (el) => ({
			type: el.getAttribute('role') || el.tagName.toLowerCase(),
			label: el.getAttribute('aria-label') || undefined,
			selector: __selector(el),
		}));
	`,

	"tabs": `
		return __collect(__all('[role="tablist"]'), %d, (el) => ({
			tabs: Array.from(el.querySelectorAll('[role="tab"]')).map((tab) => ({
				label: __text(tab, 30),
				selected: tab.getAttribute('aria-selected') === 'true',
			})),
			selector: __selector(el),
		}));
	`,

	"headings": `
		return __collect(__all('h1, h2, h3, h4, h5, h6'), %d, (el) => ({
			level: Number(el.tagName.slice(1)),
			text: __text(el, 80),
			selector: __selector(el),
		}));
	`,
}
