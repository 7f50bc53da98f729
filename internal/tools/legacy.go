package tools

import (
	"context"
)

// legacyHandlers returns the granular per-verb tool set selected by the
// USE_LEGACY_TOOLS toggle. Each tool delegates to the same core flow as its
// smart counterpart; only the surface differs.
func (r *Registry) legacyHandlers() []*Handler {
	connOnly := `{
		"type": "object",
		"properties": {"connection_id": {"type": "string"}}
	}`

	return []*Handler{
		{
			Name:        "chrome_connect",
			Description: "Connect to a running Chrome over its remote debugging port.",
			Schema: `{
				"type": "object",
				"properties": {
					"connection_id": {"type": "string"},
					"host": {"type": "string"},
					"port": {"type": "integer"}
				}
			}`,
			Run: func(ctx context.Context, args Args) (string, error) { return r.runConnect(args) },
		},
		{
			Name:        "chrome_launch",
			Description: "Launch a debuggable Chrome and connect to it.",
			Schema: `{
				"type": "object",
				"properties": {
					"connection_id": {"type": "string"},
					"port": {"type": "integer"},
					"headless": {"type": "boolean"},
					"user_data_dir": {"type": "string"},
					"extra_args": {"type": "array", "items": {"type": "string"}}
				}
			}`,
			Run: func(ctx context.Context, args Args) (string, error) { return r.runLaunch(args) },
		},
		{
			Name:        "list_targets",
			Description: "List the browser's debuggable targets.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runListTargets(args) },
		},
		{
			Name:        "switch_target",
			Description: "Point the connection at another page target.",
			Schema: `{
				"type": "object",
				"properties": {
					"target_id": {"type": "string"},
					"connection_id": {"type": "string"}
				},
				"required": ["target_id"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) { return r.runSwitchTarget(args) },
		},
		{
			Name:        "debugger_enable",
			Description: "Enable the CDP debugger on a connection.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runEnableDebug(args) },
		},
		{
			Name:        "debugger_set_breakpoint",
			Description: "Set a breakpoint by script URL and 1-based line.",
			Schema: `{
				"type": "object",
				"properties": {
					"url": {"type": "string"},
					"line": {"type": "integer"},
					"column": {"type": "integer"},
					"condition": {"type": "string"},
					"connection_id": {"type": "string"}
				},
				"required": ["url", "line"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) { return r.runSetBreakpoint(args) },
		},
		{
			Name:        "debugger_remove_breakpoint",
			Description: "Remove a breakpoint by id.",
			Schema: `{
				"type": "object",
				"properties": {
					"breakpoint_id": {"type": "string"},
					"connection_id": {"type": "string"}
				},
				"required": ["breakpoint_id"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) { return r.runRemoveBreakpoint(args) },
		},
		{
			Name:        "debugger_get_call_stack",
			Description: "Show the paused call stack.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runCallStack(args) },
		},
		{
			Name:        "debugger_evaluate_on_call_frame",
			Description: "Evaluate an expression in a paused call frame.",
			Schema: `{
				"type": "object",
				"properties": {
					"expression": {"type": "string"},
					"call_frame_id": {"type": "string"},
					"connection_id": {"type": "string"}
				},
				"required": ["expression", "call_frame_id"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) { return r.runEvaluate(args) },
		},
		{
			Name:        "debugger_step_over",
			Description: "Step over the current line.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runStep(args, "over") },
		},
		{
			Name:        "debugger_step_into",
			Description: "Step into the current call.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runStep(args, "into") },
		},
		{
			Name:        "debugger_step_out",
			Description: "Step out of the current function.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runStep(args, "out") },
		},
		{
			Name:        "debugger_resume",
			Description: "Resume paused execution.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runResume(args) },
		},
		{
			Name:        "debugger_pause",
			Description: "Pause execution at the next statement.",
			Schema:      connOnly,
			Run:         func(ctx context.Context, args Args) (string, error) { return r.runPause(args) },
		},
		{
			Name:        "debugger_set_pause_on_exceptions",
			Description: "Break on exceptions: none, uncaught, or all.",
			Schema: `{
				"type": "object",
				"properties": {
					"state": {"type": "string", "enum": ["none", "uncaught", "all"]},
					"connection_id": {"type": "string"}
				},
				"required": ["state"]
			}`,
			Run: func(ctx context.Context, args Args) (string, error) { return r.runPauseOnExceptions(args) },
		},
	}
}
