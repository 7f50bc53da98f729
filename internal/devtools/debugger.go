package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/debugger"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// stepSettleWait gives the debugger a moment to deliver the next paused
// event after a step command.
const stepSettleWait = 100 * time.Millisecond

// EnableDebugger turns on the Debugger domain for a connection.
// The paused/resumed handlers are part of the page listener, which is
// installed exactly once per page context, so enabling is idempotent.
func (m *Manager) EnableDebugger(id string) error {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return err
	}
	if conn.DebuggerEnabled() {
		return nil
	}

	ctx, cancel := m.OpContext(conn)
	defer cancel()
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := debugger.Enable().Do(ctx)
		return err
	}))
	if err != nil {
		return toolerr.Execution(err, "enable debugger")
	}

	conn.mu.Lock()
	conn.debuggerEnabled = true
	conn.mu.Unlock()
	m.log.Info().Str("connection", conn.ID).Msg("debugger enabled")
	return nil
}

// SetBreakpoint registers a breakpoint by URL. The tool surface is 1-based;
// CDP is 0-based in both directions, so the conversion happens here and the
// registry stores the tool-facing form.
func (m *Manager) SetBreakpoint(id string, info BreakpointInfo) (string, string, error) {
	conn, err := m.DebuggerOrThrow(id)
	if err != nil {
		return "", "", err
	}

	ctx, cancel := m.OpContext(conn)
	defer cancel()

	var breakpointID debugger.BreakpointID
	var resolved string
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := debugger.SetBreakpointByURL(info.LineNumber - 1).
			WithURL(info.URL)
		if info.ColumnNumber > 0 {
			params = params.WithColumnNumber(info.ColumnNumber - 1)
		}
		if info.Condition != "" {
			params = params.WithCondition(info.Condition)
		}
		bpID, locations, err := params.Do(ctx)
		if err != nil {
			return err
		}
		breakpointID = bpID
		if len(locations) > 0 {
			resolved = fmt.Sprintf("script %s line %d", locations[0].ScriptID, locations[0].LineNumber+1)
		}
		return nil
	}))
	if err != nil {
		return "", "", toolerr.Execution(err, "set breakpoint")
	}

	conn.rememberBreakpoint(string(breakpointID), info)
	return string(breakpointID), resolved, nil
}

// RemoveBreakpoint unregisters a breakpoint on both sides.
func (m *Manager) RemoveBreakpoint(id string, breakpointID string) error {
	conn, err := m.DebuggerOrThrow(id)
	if err != nil {
		return err
	}
	if !conn.forgetBreakpoint(breakpointID) {
		return toolerr.Newf(toolerr.KindExecution, "no breakpoint with id %q", breakpointID)
	}

	ctx, cancel := m.OpContext(conn)
	defer cancel()
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return debugger.RemoveBreakpoint(debugger.BreakpointID(breakpointID)).Do(ctx)
	}))
	if err != nil {
		return toolerr.Execution(err, "remove breakpoint")
	}
	return nil
}

// StepDirection selects the CDP step command.
type StepDirection string

const (
	StepOver StepDirection = "over"
	StepInto StepDirection = "into"
	StepOut  StepDirection = "out"
)

// Step issues a step command on a paused connection and waits briefly for
// the new paused event to land. Returns the fresh pause state, or nil when
// execution kept running.
func (m *Manager) Step(id string, direction StepDirection) (*PausedState, error) {
	conn, _, err := m.RequirePaused(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := m.OpContext(conn)
	defer cancel()
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		switch direction {
		case StepOver:
			return debugger.StepOver().Do(ctx)
		case StepInto:
			return debugger.StepInto().Do(ctx)
		case StepOut:
			return debugger.StepOut().Do(ctx)
		default:
			return fmt.Errorf("invalid step direction %q", direction)
		}
	}))
	if err != nil {
		return nil, toolerr.Execution(err, "step "+string(direction))
	}

	time.Sleep(stepSettleWait)
	return conn.Paused(), nil
}

// Resume continues a paused connection.
func (m *Manager) Resume(id string) error {
	conn, _, err := m.RequirePaused(id)
	if err != nil {
		return err
	}
	ctx, cancel := m.OpContext(conn)
	defer cancel()
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return debugger.Resume().Do(ctx)
	}))
	if err != nil {
		return toolerr.Execution(err, "resume")
	}
	return nil
}

// Pause stops a running connection at the next statement.
func (m *Manager) Pause(id string) error {
	conn, err := m.RequireNotPaused(id)
	if err != nil {
		return err
	}
	if !conn.DebuggerEnabled() {
		return toolerr.Newf(toolerr.KindDebugger, "debugger is not enabled on connection %q", conn.ID)
	}
	ctx, cancel := m.OpContext(conn)
	defer cancel()
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return debugger.Pause().Do(ctx)
	}))
	if err != nil {
		return toolerr.Execution(err, "pause")
	}
	return nil
}

// SetPauseOnExceptions configures exception breaks. The tool surface accepts
// none|uncaught|all; "all" maps to CDP's "caught" state.
func (m *Manager) SetPauseOnExceptions(id string, state string) error {
	conn, err := m.DebuggerOrThrow(id)
	if err != nil {
		return err
	}

	var cdpState string
	switch state {
	case "none":
		cdpState = "none"
	case "uncaught":
		cdpState = "uncaught"
	case "all":
		cdpState = "caught"
	default:
		return toolerr.Newf(toolerr.KindExecution, "invalid pause-on-exceptions state %q (use none, uncaught or all)", state)
	}

	ctx, cancel := m.OpContext(conn)
	defer cancel()
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return debugger.SetPauseOnExceptions(debugger.ExceptionsState(cdpState)).Do(ctx)
	}))
	if err != nil {
		return toolerr.Execution(err, "set pause on exceptions")
	}
	return nil
}

// EvaluateOnFrame evaluates an expression in the scope of a call frame of a
// paused connection and returns the JSON-rendered result.
func (m *Manager) EvaluateOnFrame(id string, callFrameID string, expression string) (string, error) {
	conn, _, err := m.RequirePaused(id)
	if err != nil {
		return "", err
	}

	ctx, cancel := m.OpContext(conn)
	defer cancel()

	var rendered string
	err = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, exc, err := debugger.EvaluateOnCallFrame(debugger.CallFrameID(callFrameID), expression).Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("%s", exc.Text)
		}
		rendered = renderRemoteObject(res)
		return nil
	}))
	if err != nil {
		return "", toolerr.Execution(err, "evaluate on call frame")
	}
	return rendered, nil
}

// Evaluate runs an expression in the page's global scope. Used when no call
// frame is supplied.
func (m *Manager) Evaluate(id string, expression string) (string, error) {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return "", err
	}

	ctx, cancel := m.OpContext(conn)
	defer cancel()

	var raw json.RawMessage
	if err := chromedp.Run(ctx, chromedp.Evaluate(expression, &raw)); err != nil {
		return "", toolerr.Execution(err, "evaluate")
	}
	if len(raw) == 0 {
		return "undefined", nil
	}
	return string(raw), nil
}

// renderRemoteObject produces the JSON-ish display form of a CDP value.
func renderRemoteObject(obj *cdpruntime.RemoteObject) string {
	switch {
	case obj == nil:
		return "undefined"
	case len(obj.Value) > 0:
		return string(obj.Value)
	case obj.UnserializableValue != "":
		return string(obj.UnserializableValue)
	case obj.Description != "":
		return obj.Description
	default:
		return string(obj.Type)
	}
}
