package inspect

import (
	"context"
	"fmt"

	"github.com/tomasbasham/chrome-mcp/internal/respond"
	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// ElementState is the post-action state of an element.
type ElementState struct {
	Tag      string `json:"tag"`
	Visible  bool   `json:"visible"`
	Disabled bool   `json:"disabled,omitempty"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
}

const clickScript = `
	const sel = '%s';
	const index = %d;
	const matches = __all(sel);
	if (matches.length === 0) return { error: 'no elements match selector: ' + sel };
	if (index >= matches.length) return { error: 'index ' + index + ' out of range, only ' + matches.length + ' matches' };
	const el = matches[index];
	el.click();
	return {
		tag: el.tagName.toLowerCase(),
		visible: __visible(el),
		disabled: el.disabled === true || undefined,
		value: el.value !== undefined ? String(el.value).slice(0, 50) : undefined,
	};
`

const fillScript = `
	const sel = '%s';
	const index = %d;
	const value = '%s';
	const submit = %t;
	const matches = __all(sel);
	if (matches.length === 0) return { error: 'no elements match selector: ' + sel };
	if (index >= matches.length) return { error: 'index ' + index + ' out of range, only ' + matches.length + ' matches' };
	const el = matches[index];
	el.focus();
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	if (submit && el.form) el.form.submit();
	return {
		tag: el.tagName.toLowerCase(),
		visible: __visible(el),
		disabled: el.disabled === true || undefined,
		value: String(el.value).slice(0, 50),
	};
`

// Click clicks the index-th element matching selector and returns its state.
func Click(ctx context.Context, selector string, index int) (*ElementState, error) {
	script := iife(fmt.Sprintf(clickScript, respond.EscapeForScript(selector), index))
	return runElementOp(ctx, script)
}

// Fill sets the value of the index-th match, dispatches input and change
// events, optionally submits the enclosing form, and returns element state.
func Fill(ctx context.Context, selector string, index int, value string, submit bool) (*ElementState, error) {
	script := iife(fmt.Sprintf(fillScript,
		respond.EscapeForScript(selector), index, respond.EscapeForScript(value), submit))
	return runElementOp(ctx, script)
}

func runElementOp(ctx context.Context, script string) (*ElementState, error) {
	var state ElementState
	if err := evaluate(ctx, script, &state); err != nil {
		return nil, err
	}
	if state.Error != "" {
		return nil, toolerr.New(toolerr.KindExecution, state.Error)
	}
	return &state, nil
}
