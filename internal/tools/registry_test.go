package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/chrome-mcp/internal/devtools"
	"github.com/tomasbasham/chrome-mcp/internal/respond"
)

func newTestRegistry(t *testing.T, legacy bool) *Registry {
	t.Helper()
	r, err := NewRegistry(devtools.NewManager(zerolog.Nop()), zerolog.Nop(), legacy, respond.DefaultLimit)
	require.NoError(t, err)
	return r
}

func TestSmartSetComposition(t *testing.T) {
	r := newTestRegistry(t, false)

	names := make(map[string]bool)
	for _, h := range r.Tools() {
		names[h.Name] = true
	}

	shared := []string{
		"query_elements", "click_element", "fill_element", "navigate",
		"get_console_logs", "inspect_element", "chrome_list_connections",
		"chrome_switch_connection", "chrome_disconnect",
	}
	smart := []string{
		"chrome", "target", "enable_debug_tools", "breakpoint", "step",
		"execution", "call_stack", "evaluate", "pause_on_exceptions",
	}
	for _, n := range append(shared, smart...) {
		assert.True(t, names[n], "missing tool %s", n)
	}
	assert.Len(t, r.Tools(), len(shared)+len(smart))
	assert.False(t, names["chrome_connect"], "legacy tool leaked into smart set")
}

func TestLegacySetComposition(t *testing.T) {
	r := newTestRegistry(t, true)

	names := make(map[string]bool)
	for _, h := range r.Tools() {
		names[h.Name] = true
	}
	legacy := []string{
		"chrome_connect", "chrome_launch", "list_targets", "switch_target",
		"debugger_enable", "debugger_set_breakpoint", "debugger_remove_breakpoint",
		"debugger_get_call_stack", "debugger_evaluate_on_call_frame",
		"debugger_step_over", "debugger_step_into", "debugger_step_out",
		"debugger_resume", "debugger_pause", "debugger_set_pause_on_exceptions",
	}
	for _, n := range legacy {
		assert.True(t, names[n], "missing legacy tool %s", n)
	}
	assert.Len(t, r.Tools(), 9+len(legacy))
	assert.False(t, names["chrome"], "smart tool leaked into legacy set")
}

func TestEveryToolHasSchemaAndDescription(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		r := newTestRegistry(t, legacy)
		for _, h := range r.Tools() {
			assert.NotEmpty(t, h.Description, "%s has no description", h.Name)
			assert.True(t, strings.Contains(h.Schema, `"type"`), "%s has no schema", h.Name)
			assert.NotNil(t, h.Run, "%s has no handler", h.Name)
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := newTestRegistry(t, false)
	resp := r.Dispatch(context.Background(), "no_such_tool", nil)
	assert.True(t, resp.IsError)
	assert.Equal(t, "UNKNOWN", resp.ErrorType)
	assert.False(t, resp.Recoverable)
	assert.Contains(t, resp.Text, "unknown tool")
}

func TestDispatchClassifiesConnectionErrors(t *testing.T) {
	r := newTestRegistry(t, false)

	// Every connection-touching tool must fail with CONNECTION when no
	// connection exists.
	for _, call := range []struct {
		name string
		args map[string]any
	}{
		{"query_elements", map[string]any{"selector": ".x"}},
		{"click_element", map[string]any{"selector": ".x"}},
		{"fill_element", map[string]any{"selector": ".x", "value": "v"}},
		{"navigate", map[string]any{"url": "http://localhost/"}},
		{"get_console_logs", map[string]any{}},
		{"inspect_element", map[string]any{"description": "login button"}},
		{"chrome_disconnect", map[string]any{}},
		{"enable_debug_tools", map[string]any{}},
		{"breakpoint", map[string]any{"action": "set", "url": "main.js", "line": 1}},
		{"step", map[string]any{"direction": "over"}},
		{"execution", map[string]any{"action": "resume"}},
		{"call_stack", map[string]any{}},
		{"evaluate", map[string]any{"expression": "1+1"}},
		{"pause_on_exceptions", map[string]any{"state": "all"}},
		{"target", map[string]any{"action": "list"}},
	} {
		resp := r.Dispatch(context.Background(), call.name, call.args)
		require.True(t, resp.IsError, "%s should fail without a connection", call.name)
		assert.Equal(t, "CONNECTION", resp.ErrorType, "%s", call.name)
		assert.True(t, resp.Recoverable, "%s", call.name)
		assert.Contains(t, resp.Text, "Suggestion:", "%s carries a recovery hint", call.name)
	}
}

func TestDispatchRejectsInvalidEnums(t *testing.T) {
	r := newTestRegistry(t, false)

	for _, call := range []struct {
		name string
		args map[string]any
	}{
		{"chrome", map[string]any{"action": "restart"}},
		{"target", map[string]any{"action": "destroy"}},
		{"breakpoint", map[string]any{"action": "toggle"}},
		{"execution", map[string]any{"action": "stop"}},
		{"step", map[string]any{"direction": "sideways"}},
	} {
		resp := r.Dispatch(context.Background(), call.name, call.args)
		require.True(t, resp.IsError, "%s", call.name)
		assert.Equal(t, "EXECUTION", resp.ErrorType, "%s", call.name)
	}
}

func TestDispatchAppliesSizeGuard(t *testing.T) {
	m := devtools.NewManager(zerolog.Nop())
	r, err := NewRegistry(m, zerolog.Nop(), false, 100)
	require.NoError(t, err)

	// Replace a handler with one returning an oversize payload.
	r.handlers["query_elements"].Run = func(ctx context.Context, args Args) (string, error) {
		return strings.Repeat("z", 500), nil
	}

	resp := r.Dispatch(context.Background(), "query_elements", map[string]any{"selector": ".x"})
	assert.False(t, resp.IsError, "oversize responses are not errors")
	assert.Contains(t, resp.Text, "Result too large: 500 characters")
	assert.NotContains(t, resp.Text, "zzz")
}

func TestDispatchMetadata(t *testing.T) {
	r := newTestRegistry(t, false)
	resp := r.Dispatch(context.Background(), "chrome_list_connections", nil)
	assert.False(t, resp.IsError)
	assert.Equal(t, "chrome_list_connections", resp.ToolName)
	assert.Contains(t, resp.Text, "No browser connections")
}

func TestArgsHelpers(t *testing.T) {
	a := Args{
		"s":    "text",
		"n":    float64(7),
		"b":    true,
		"list": []any{"a", "b", 3},
		"obj":  map[string]any{"k": "v"},
	}
	assert.Equal(t, "text", a.String("s", "d"))
	assert.Equal(t, "d", a.String("missing", "d"))
	assert.Equal(t, 7, a.Int("n", 1))
	assert.Equal(t, 1, a.Int("missing", 1))
	assert.True(t, a.Bool("b", false))
	assert.Equal(t, []string{"a", "b"}, a.StringSlice("list"))
	require.NotNil(t, a.Object("obj"))
	assert.Equal(t, "v", a.Object("obj").String("k", ""))
	assert.Nil(t, a.Object("missing"))
}
