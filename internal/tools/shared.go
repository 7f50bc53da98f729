package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
	"github.com/tomasbasham/chrome-mcp/internal/respond"
	"github.com/tomasbasham/chrome-mcp/internal/synth"
	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// sharedHandlers returns the tools present in both the smart and legacy
// sets.
func (r *Registry) sharedHandlers() []*Handler {
	return []*Handler{
		{
			Name:        "query_elements",
			Description: "Query page elements by CSS selector with visibility and text filters. Returns element details, or similar-selector suggestions when nothing matches.",
			Schema: `{
				"type": "object",
				"properties": {
					"selector": {"type": "string", "description": "CSS selector to query"},
					"limit": {"type": "integer", "description": "Maximum elements to return (default 5, max 20)"},
					"text_contains": {"type": "string", "description": "Only keep elements whose text contains this substring"},
					"include_hidden": {"type": "boolean", "description": "Include elements that are not visible (default false)"},
					"connection_id": {"type": "string", "description": "Connection to use; defaults to the active one"}
				},
				"required": ["selector"]
			}`,
			Run: r.runQueryElements,
		},
		{
			Name:        "click_element",
			Description: "Click an element by CSS selector and report its state plus the DOM changes the click caused.",
			Schema: `{
				"type": "object",
				"properties": {
					"selector": {"type": "string", "description": "CSS selector of the element to click"},
					"index": {"type": "integer", "description": "Which match to click when several exist (default 0)"},
					"include_context": {"type": "boolean", "description": "Append element state and DOM diff (default true)"},
					"connection_id": {"type": "string"}
				},
				"required": ["selector"]
			}`,
			Run: r.runClickElement,
		},
		{
			Name:        "fill_element",
			Description: "Fill an input element with a value, dispatching input/change events, optionally submitting its form.",
			Schema: `{
				"type": "object",
				"properties": {
					"selector": {"type": "string", "description": "CSS selector of the input"},
					"value": {"type": "string", "description": "Value to set"},
					"index": {"type": "integer", "description": "Which match to fill (default 0)"},
					"submit": {"type": "boolean", "description": "Submit the enclosing form afterwards"},
					"include_context": {"type": "boolean", "description": "Append element state and DOM diff (default true)"},
					"connection_id": {"type": "string"}
				},
				"required": ["selector", "value"]
			}`,
			Run: r.runFillElement,
		},
		{
			Name:        "navigate",
			Description: "Navigate the active page to a URL, wait for it to settle, and summarise what the page offers.",
			Schema: `{
				"type": "object",
				"properties": {
					"url": {"type": "string", "description": "URL to open"},
					"include_context": {"type": "boolean", "description": "Append the page summary (default true)"},
					"connection_id": {"type": "string"}
				},
				"required": ["url"]
			}`,
			Run: r.runNavigate,
		},
		{
			Name:        "get_console_logs",
			Description: "Read captured console messages with repeat compression, plus a page freshness header (reloads, HMR updates).",
			Schema: `{
				"type": "object",
				"properties": {
					"filter_level": {"type": "string", "enum": ["all", "error", "warning", "info", "debug", "log"], "description": "Level filter (default all)"},
					"limit": {"type": "integer", "description": "Most recent entries to show after compression (default 3)"},
					"expand_errors": {"type": "boolean", "description": "Skip compression and show full stack traces for errors"},
					"connection_id": {"type": "string"}
				}
			}`,
			Run: r.runGetConsoleLogs,
		},
		{
			Name:        "inspect_element",
			Description: "Find a stable selector for an element described in words, ranked by stability (id, test id, aria label, class, structure).",
			Schema: `{
				"type": "object",
				"properties": {
					"description": {"type": "string", "description": "What to look for, e.g. 'login button' or 'email input'"},
					"strict_stability": {"type": "boolean", "description": "Only suggest id/test-id/aria selectors"},
					"near": {
						"type": "object",
						"properties": {
							"selector": {"type": "string"},
							"direction": {"type": "string", "enum": ["above", "below", "left", "right"]}
						},
						"description": "Constrain candidates to one side of a reference element"
					},
					"connection_id": {"type": "string"}
				},
				"required": ["description"]
			}`,
			Run: r.runInspectElement,
		},
		{
			Name:        "chrome_list_connections",
			Description: "List browser connections with their state; the active one is marked.",
			Schema:      `{"type": "object", "properties": {}}`,
			Run:         r.runListConnections,
		},
		{
			Name:        "chrome_switch_connection",
			Description: "Make another browser connection the active one.",
			Schema: `{
				"type": "object",
				"properties": {
					"connection_id": {"type": "string", "description": "Connection to activate"}
				},
				"required": ["connection_id"]
			}`,
			Run: r.runSwitchConnection,
		},
		{
			Name:        "chrome_disconnect",
			Description: "Detach from a browser. Chrome keeps running; only the DevTools session ends.",
			Schema: `{
				"type": "object",
				"properties": {
					"connection_id": {"type": "string", "description": "Connection to detach; defaults to the active one"}
				}
			}`,
			Run: r.runDisconnect,
		},
	}
}

func (r *Registry) runQueryElements(ctx context.Context, args Args) (string, error) {
	conn, err := r.manager.ConnectionOrThrow(args.connectionID())
	if err != nil {
		return "", err
	}
	selector := args.String("selector", "")
	limit := args.Int("limit", 5)

	opCtx, cancel := r.manager.OpContext(conn)
	defer cancel()

	res, err := inspect.Query(opCtx, selector, limit, args.String("text_contains", ""), args.Bool("include_hidden", false))
	if err != nil {
		return "", err
	}

	if res.Found == 0 {
		inv, invErr := inspect.PageInventory(opCtx)
		if invErr != nil {
			return fmt.Sprintf("No elements found matching selector: %s", selector), nil
		}
		return synth.SuggestSelectors(inv, selector), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d (showing %d)\n", res.Found, len(res.Elements))
	if res.AfterVisibilityFilter < res.Found {
		fmt.Fprintf(&b, "Visibility filter removed %d (pass include_hidden to keep them)\n", res.Found-res.AfterVisibilityFilter)
	}
	if res.AfterTextFilter < res.AfterVisibilityFilter {
		fmt.Fprintf(&b, "Text filter removed %d\n", res.AfterVisibilityFilter-res.AfterTextFilter)
	}
	for i, el := range res.Elements {
		fmt.Fprintf(&b, "%d. %s", i+1, renderQueried(el))
	}

	return respond.Guard(b.String(), inspect.Summaries(res.Elements), r.limit), nil
}

func renderQueried(el inspect.QueriedElement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s> %s", el.Tag, el.Selector)
	if !el.Visible {
		b.WriteString(" (hidden)")
	}
	if el.Disabled {
		b.WriteString(" (disabled)")
	}
	b.WriteString("\n")
	if el.Text != "" {
		fmt.Fprintf(&b, "   text: %q\n", el.Text)
	}
	if el.Value != "" {
		fmt.Fprintf(&b, "   value: %q\n", el.Value)
	}
	if len(el.Attrs) > 0 {
		var attrs []string
		for k, v := range el.Attrs {
			attrs = append(attrs, fmt.Sprintf("%s=%q", k, v))
		}
		fmt.Fprintf(&b, "   attrs: %s\n", strings.Join(attrs, " "))
	}
	fmt.Fprintf(&b, "   position: %.0f,%.0f %.0fx%.0f children: %d/%d\n",
		el.Position.X, el.Position.Y, el.Position.Width, el.Position.Height,
		el.ChildInfo.DirectChildren, el.ChildInfo.TotalDescendants)
	return b.String()
}

func (r *Registry) runClickElement(ctx context.Context, args Args) (string, error) {
	return r.runElementAction(args, "Clicked", func(opCtx context.Context, selector string, index int) (*inspect.ElementState, error) {
		return inspect.Click(opCtx, selector, index)
	})
}

func (r *Registry) runFillElement(ctx context.Context, args Args) (string, error) {
	value := args.String("value", "")
	submit := args.Bool("submit", false)
	return r.runElementAction(args, "Filled", func(opCtx context.Context, selector string, index int) (*inspect.ElementState, error) {
		return inspect.Fill(opCtx, selector, index, value, submit)
	})
}

// runElementAction is the common click/fill flow: consume any
// before-snapshot left by the previous tool call, act, then (when context is
// requested) capture an after-snapshot, render state plus diff, and leave
// the after-snapshot for the next action to diff against.
func (r *Registry) runElementAction(args Args, verb string, act func(context.Context, string, int) (*inspect.ElementState, error)) (string, error) {
	conn, err := r.manager.ConnectionOrThrow(args.connectionID())
	if err != nil {
		return "", err
	}
	selector := args.String("selector", "")
	index := args.Int("index", 0)

	opCtx, cancel := r.manager.OpContext(conn)
	defer cancel()

	includeContext := args.Bool("include_context", true)
	var before *inspect.DOMSnapshot
	if includeContext {
		before = conn.TakeSnapshot()
	}

	state, err := act(opCtx, selector, index)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", verb, selector)
	if index > 0 {
		fmt.Fprintf(&b, " [%d]", index)
	}
	b.WriteString("\n")

	if includeContext {
		after, snapErr := inspect.Snapshot(opCtx)
		if snapErr == nil {
			after.NavigationEpoch = conn.NavigationEpoch()
			conn.SetSnapshot(after)
		}
		b.WriteString(synth.ActionContext(state, before, after))
	}
	return b.String(), nil
}

func (r *Registry) runNavigate(ctx context.Context, args Args) (string, error) {
	conn, err := r.manager.ConnectionOrThrow(args.connectionID())
	if err != nil {
		return "", err
	}
	url := args.String("url", "")
	if url == "" {
		return "", errRequired("url")
	}

	if err := r.manager.Navigate(conn.ID, url); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Navigated to %s\n", url)

	if args.Bool("include_context", true) {
		opCtx, cancel := r.manager.OpContext(conn)
		defer cancel()

		var recentErrors []string
		for _, m := range conn.ConsoleMessages() {
			if m.Level == "error" {
				recentErrors = append(recentErrors, m.Text)
			}
		}
		b.WriteString(synth.NavigateContext(opCtx, recentErrors))
	}
	return b.String(), nil
}

func (r *Registry) runListConnections(ctx context.Context, args Args) (string, error) {
	conns := r.manager.List()
	if len(conns) == 0 {
		return "No browser connections. Use chrome with action 'connect' or 'launch' to create one.", nil
	}

	active := r.manager.ActiveID()
	var b strings.Builder
	fmt.Fprintf(&b, "Connections (%d):\n", len(conns))
	for _, c := range conns {
		marker := " "
		if c.ID == active {
			marker = "*"
		}
		flags := []string{}
		if c.DebuggerEnabled() {
			flags = append(flags, "debugger")
		}
		if c.Paused() != nil {
			flags = append(flags, "paused")
		}
		flagStr := ""
		if len(flags) > 0 {
			flagStr = " [" + strings.Join(flags, ", ") + "]"
		}
		fmt.Fprintf(&b, "%s %s  %s:%d  epoch %d, %d console messages%s\n",
			marker, c.ID, c.Host, c.Port, c.NavigationEpoch(), len(c.ConsoleMessages()), flagStr)
	}
	return b.String(), nil
}

func (r *Registry) runSwitchConnection(ctx context.Context, args Args) (string, error) {
	id := args.connectionID()
	if id == "" {
		return "", errRequired("connection_id")
	}
	if err := r.manager.SwitchActive(id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Active connection is now %q", id), nil
}

func (r *Registry) runDisconnect(ctx context.Context, args Args) (string, error) {
	conn, err := r.manager.ConnectionOrThrow(args.connectionID())
	if err != nil {
		return "", err
	}
	id := conn.ID
	if err := r.manager.Disconnect(id); err != nil {
		return "", err
	}
	text := fmt.Sprintf("Disconnected %q. Chrome keeps running.", id)
	if next := r.manager.ActiveID(); next != "" && next != id {
		text += fmt.Sprintf(" Active connection is now %q.", next)
	}
	return text, nil
}

func errRequired(field string) error {
	return toolerr.Newf(toolerr.KindExecution, "missing required argument %q", field)
}
