package synth

import (
	"context"

	"github.com/chromedp/cdproto/debugger"
)

// StepContext composes the post-step context block. Each local variable is
// marked [CHANGED] when its displayed value differs from its value in prev
// (a variable absent from prev counts as changed). The returned map holds the
// post-step values, for the caller to store as the new cache.
func StepContext(ctx context.Context, reason string, frames []*debugger.CallFrame, prev map[string]string, recentConsole []string) (string, map[string]string) {
	vars, _ := topFrameVariables(ctx, frames)

	changed := make(map[string]bool, len(vars))
	next := make(map[string]string, len(vars))
	for _, v := range vars {
		if old, ok := prev[v.Name]; !ok || old != v.Value {
			changed[v.Name] = true
		}
		next[v.Name] = v.Value
	}

	return composePauseBlock(reason, frames, vars, changed, recentConsole), next
}

// SnapshotVariables captures the current top-frame variables as a displayed
// value map, taken before issuing a step and passed to StepContext as prev.
func SnapshotVariables(ctx context.Context, frames []*debugger.CallFrame) map[string]string {
	vars, _ := topFrameVariables(ctx, frames)
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		out[v.Name] = v.Value
	}
	return out
}
