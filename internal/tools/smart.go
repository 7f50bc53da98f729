package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/devtools"
	"github.com/tomasbasham/chrome-mcp/internal/synth"
	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// smartHandlers returns the consolidated action-based tool set used by
// default.
func (r *Registry) smartHandlers() []*Handler {
	return []*Handler{
		{
			Name:        "chrome",
			Description: "Connect to a running Chrome (action 'connect') or launch a new one (action 'launch').",
			Schema: `{
				"type": "object",
				"properties": {
					"action": {"type": "string", "enum": ["connect", "launch"]},
					"connection_id": {"type": "string", "description": "Id for the new connection; auto-assigned when omitted"},
					"host": {"type": "string", "description": "Debug host (default localhost, connect only)"},
					"port": {"type": "integer", "description": "Debug port (default 9222)"},
					"headless": {"type": "boolean", "description": "Launch headless (launch only)"},
					"user_data_dir": {"type": "string", "description": "Profile directory (launch only; temporary when omitted)"},
					"extra_args": {"type": "array", "items": {"type": "string"}, "description": "Additional Chrome flags (launch only)"}
				},
				"required": ["action"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				switch args.String("action", "") {
				case "connect":
					return r.runConnect(args)
				case "launch":
					return r.runLaunch(args)
				default:
					return "", invalidEnum("action", args.String("action", ""), "connect, launch")
				}
			},
		},
		{
			Name:        "target",
			Description: "List the browser's page targets (action 'list') or switch the connection to one (action 'switch').",
			Schema: `{
				"type": "object",
				"properties": {
					"action": {"type": "string", "enum": ["list", "switch"]},
					"target_id": {"type": "string", "description": "Target to switch to (switch only)"},
					"connection_id": {"type": "string"}
				},
				"required": ["action"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				switch args.String("action", "") {
				case "list":
					return r.runListTargets(args)
				case "switch":
					return r.runSwitchTarget(args)
				default:
					return "", invalidEnum("action", args.String("action", ""), "list, switch")
				}
			},
		},
		{
			Name:        "enable_debug_tools",
			Description: "Enable the CDP debugger on a connection. Required before breakpoints, stepping or pausing.",
			Schema: `{
				"type": "object",
				"properties": {"connection_id": {"type": "string"}}
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				return r.runEnableDebug(args)
			},
		},
		{
			Name:        "breakpoint",
			Description: "Set (action 'set') or remove (action 'remove') a breakpoint by script URL and 1-based line.",
			Schema: `{
				"type": "object",
				"properties": {
					"action": {"type": "string", "enum": ["set", "remove"]},
					"url": {"type": "string", "description": "Script URL (set only)"},
					"line": {"type": "integer", "description": "1-based line number (set only)"},
					"column": {"type": "integer", "description": "1-based column (set only)"},
					"condition": {"type": "string", "description": "Only pause when this expression is truthy (set only)"},
					"breakpoint_id": {"type": "string", "description": "Id returned by set (remove only)"},
					"connection_id": {"type": "string"}
				},
				"required": ["action"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				switch args.String("action", "") {
				case "set":
					return r.runSetBreakpoint(args)
				case "remove":
					return r.runRemoveBreakpoint(args)
				default:
					return "", invalidEnum("action", args.String("action", ""), "set, remove")
				}
			},
		},
		{
			Name:        "step",
			Description: "Step the paused execution: 'over' the current line, 'into' the call, or 'out' of the function. Local variables changed by the step are marked.",
			Schema: `{
				"type": "object",
				"properties": {
					"direction": {"type": "string", "enum": ["over", "into", "out"]},
					"connection_id": {"type": "string"}
				},
				"required": ["direction"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				return r.runStep(args, args.String("direction", ""))
			},
		},
		{
			Name:        "execution",
			Description: "Resume paused execution (action 'resume') or pause a running page (action 'pause').",
			Schema: `{
				"type": "object",
				"properties": {
					"action": {"type": "string", "enum": ["resume", "pause"]},
					"connection_id": {"type": "string"}
				},
				"required": ["action"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				switch args.String("action", "") {
				case "resume":
					return r.runResume(args)
				case "pause":
					return r.runPause(args)
				default:
					return "", invalidEnum("action", args.String("action", ""), "resume, pause")
				}
			},
		},
		{
			Name:        "call_stack",
			Description: "Show the call stack of the paused execution with the current pause reason.",
			Schema: `{
				"type": "object",
				"properties": {"connection_id": {"type": "string"}}
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				return r.runCallStack(args)
			},
		},
		{
			Name:        "evaluate",
			Description: "Evaluate an expression — in a paused call frame when call_frame_id is given, otherwise in the page.",
			Schema: `{
				"type": "object",
				"properties": {
					"expression": {"type": "string"},
					"call_frame_id": {"type": "string", "description": "Frame id from call_stack; requires paused execution"},
					"connection_id": {"type": "string"}
				},
				"required": ["expression"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				return r.runEvaluate(args)
			},
		},
		{
			Name:        "pause_on_exceptions",
			Description: "Break on exceptions: 'none', 'uncaught', or 'all'.",
			Schema: `{
				"type": "object",
				"properties": {
					"state": {"type": "string", "enum": ["none", "uncaught", "all"]},
					"connection_id": {"type": "string"}
				},
				"required": ["state"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) {
				return r.runPauseOnExceptions(args)
			},
		},
	}
}

func invalidEnum(field, got, want string) error {
	return toolerr.Newf(toolerr.KindExecution, "invalid %s %q (use one of: %s)", field, got, want)
}

// --- Core flows shared by the smart and legacy sets ---

func (r *Registry) runConnect(args Args) (string, error) {
	conn, err := r.manager.Connect(devtools.ConnectOptions{
		ID:   args.connectionID(),
		Host: args.String("host", "localhost"),
		Port: args.Int("port", 9222),
	})
	if err != nil {
		return "", err
	}
	active := ""
	if r.manager.ActiveID() == conn.ID {
		active = " (active)"
	}
	return fmt.Sprintf("Connected to Chrome at %s:%d as %q%s", conn.Host, conn.Port, conn.ID, active), nil
}

func (r *Registry) runLaunch(args Args) (string, error) {
	conn, dataDir, err := r.manager.Launch(args.connectionID(), devtools.LaunchOptions{
		Port:        args.Int("port", 9222),
		Headless:    args.Bool("headless", false),
		UserDataDir: args.String("user_data_dir", ""),
		ExtraArgs:   args.StringSlice("extra_args"),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Launched Chrome on port %d (profile %s) and connected as %q", conn.Port, dataDir, conn.ID), nil
}

func (r *Registry) runListTargets(args Args) (string, error) {
	targets, conn, err := r.manager.Targets(args.connectionID())
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return "No debuggable targets.", nil
	}
	current := string(conn.TargetID())

	var b strings.Builder
	fmt.Fprintf(&b, "Targets (%d):\n", len(targets))
	for _, t := range targets {
		marker := " "
		if t.ID == current {
			marker = "*"
		}
		title := t.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "%s %s  [%s] %s — %s\n", marker, t.ID, t.Type, title, t.URL)
	}
	return b.String(), nil
}

func (r *Registry) runSwitchTarget(args Args) (string, error) {
	targetID := args.String("target_id", "")
	if targetID == "" {
		return "", errRequired("target_id")
	}
	if err := r.manager.SwitchTarget(args.connectionID(), targetID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Switched to target %s. Console cleared; navigation epoch advanced.", targetID), nil
}

func (r *Registry) runEnableDebug(args Args) (string, error) {
	if err := r.manager.EnableDebugger(args.connectionID()); err != nil {
		return "", err
	}
	return "Debug tools enabled. Breakpoints, stepping and pause are now available.", nil
}

func (r *Registry) runSetBreakpoint(args Args) (string, error) {
	url := args.String("url", "")
	line := args.Int("line", 0)
	if url == "" {
		return "", errRequired("url")
	}
	if line < 1 {
		return "", toolerr.New(toolerr.KindExecution, "line must be a 1-based line number")
	}

	id, resolved, err := r.manager.SetBreakpoint(args.connectionID(), devtools.BreakpointInfo{
		URL:          url,
		LineNumber:   int64(line),
		ColumnNumber: int64(args.Int("column", 0)),
		Condition:    args.String("condition", ""),
	})
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("Breakpoint %s set at %s:%d", id, url, line)
	if resolved != "" {
		text += " (resolved: " + resolved + ")"
	}
	return text, nil
}

func (r *Registry) runRemoveBreakpoint(args Args) (string, error) {
	id := args.String("breakpoint_id", "")
	if id == "" {
		return "", errRequired("breakpoint_id")
	}
	if err := r.manager.RemoveBreakpoint(args.connectionID(), id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Breakpoint %s removed", id), nil
}

func (r *Registry) runStep(args Args, direction string) (string, error) {
	var dir devtools.StepDirection
	switch direction {
	case "over":
		dir = devtools.StepOver
	case "into":
		dir = devtools.StepInto
	case "out":
		dir = devtools.StepOut
	default:
		return "", invalidEnum("direction", direction, "over, into, out")
	}

	conn, ps, err := r.manager.RequirePaused(args.connectionID())
	if err != nil {
		return "", err
	}

	// Capture the pre-step locals so the post-step context can mark what
	// changed.
	opCtx, cancel := r.manager.OpContext(conn)
	prev := synth.SnapshotVariables(opCtx, ps.CallFrames)
	cancel()

	next, err := r.manager.Step(conn.ID, dir)
	if err != nil {
		return "", err
	}
	if next == nil {
		conn.SetPrevStepVars(nil)
		return fmt.Sprintf("Stepped %s; execution resumed and did not pause again.", direction), nil
	}

	opCtx, cancel = r.manager.OpContext(conn)
	defer cancel()
	text, newVars := synth.StepContext(opCtx, next.Reason, next.CallFrames, prev, lastConsoleLines(conn, 3))
	conn.SetPrevStepVars(newVars)
	return fmt.Sprintf("Stepped %s\n%s", direction, text), nil
}

func (r *Registry) runResume(args Args) (string, error) {
	if err := r.manager.Resume(args.connectionID()); err != nil {
		return "", err
	}
	// The previous-step variable cache is left as it is across a resume. Step
	// markers are computed from a fresh pre-step snapshot, not from this cache.
	return "Execution resumed.", nil
}

func (r *Registry) runPause(args Args) (string, error) {
	if err := r.manager.Pause(args.connectionID()); err != nil {
		return "", err
	}
	return "Pause requested. Execution stops at the next statement.", nil
}

func (r *Registry) runCallStack(args Args) (string, error) {
	conn, ps, err := r.manager.RequirePaused(args.connectionID())
	if err != nil {
		return "", err
	}

	opCtx, cancel := r.manager.OpContext(conn)
	defer cancel()
	text := synth.PauseContext(opCtx, ps.Reason, ps.CallFrames, lastConsoleLines(conn, 3))

	if len(ps.HitBreakpoints) > 0 {
		text += fmt.Sprintf("\nHit breakpoints: %s\n", strings.Join(ps.HitBreakpoints, ", "))
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\nCall frame ids:\n")
	for i, f := range ps.CallFrames {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "  %d. %s\n", i+1, f.CallFrameID)
	}
	return b.String(), nil
}

func (r *Registry) runEvaluate(args Args) (string, error) {
	expression := args.String("expression", "")
	if expression == "" {
		return "", errRequired("expression")
	}

	if frameID := args.String("call_frame_id", ""); frameID != "" {
		result, err := r.manager.EvaluateOnFrame(args.connectionID(), frameID, expression)
		if err != nil {
			return "", err
		}
		return result, nil
	}

	result, err := r.manager.Evaluate(args.connectionID(), expression)
	if err != nil {
		return "", err
	}
	return result, nil
}

func (r *Registry) runPauseOnExceptions(args Args) (string, error) {
	state := args.String("state", "")
	if err := r.manager.SetPauseOnExceptions(args.connectionID(), state); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pause on exceptions: %s", state), nil
}

// lastConsoleLines renders the tail of the console ring for context blocks.
func lastConsoleLines(conn *devtools.Connection, n int) []string {
	msgs := conn.ConsoleMessages()
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = fmt.Sprintf("[%s] %s", m.Level, m.Text)
	}
	return out
}
