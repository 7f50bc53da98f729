package devtools

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/debugger"
	"github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// HMR console lines come from dev servers; an update line bumps the HMR
// counters without touching the navigation epoch.
var (
	hmrPrefixRe = regexp.MustCompile(`^\[(HMR|WDS|vite)\]`)
	hmrUpdateRe = regexp.MustCompile(`(?i)updat(e|ed|ing)`)
)

// installListeners hooks the connection's per-page event handlers onto a
// page context. A fresh page context carries no listeners, so re-attaching
// after a target switch starts clean; the old context's listeners die with
// its cancellation.
func (m *Manager) installListeners(conn *Connection, pageCtx context.Context) {
	chromedp.ListenTarget(pageCtx, func(ev any) {
		switch ev := ev.(type) {
		case *cdpruntime.EventConsoleAPICalled:
			m.handleConsoleEvent(conn, pageCtx, ev)
		case *cdpruntime.EventExceptionThrown:
			m.handleExceptionEvent(conn, ev)
		case *page.EventLoadEventFired:
			conn.bumpNavigation()
			m.log.Debug().Str("connection", conn.ID).Int("epoch", conn.NavigationEpoch()).Msg("page loaded")
		case *debugger.EventPaused:
			conn.setPaused(&PausedState{
				Reason:         string(ev.Reason),
				CallFrames:     ev.CallFrames,
				HitBreakpoints: ev.HitBreakpoints,
			})
			m.log.Info().Str("connection", conn.ID).Str("reason", string(ev.Reason)).Msg("execution paused")
		case *debugger.EventResumed:
			conn.setPaused(nil)
			m.log.Debug().Str("connection", conn.ID).Msg("execution resumed")
		}
	})
}

// handleConsoleEvent ingests a console message. Everything up to the append
// is synchronous so the ring preserves browser emission order; only the
// stack-trace enrichment for errors runs in the background, and it mutates
// a single optional field of the already-inserted record.
func (m *Manager) handleConsoleEvent(conn *Connection, pageCtx context.Context, ev *cdpruntime.EventConsoleAPICalled) {
	text := consoleText(ev.Args)

	if hmrPrefixRe.MatchString(text) && hmrUpdateRe.MatchString(text) {
		conn.recordHMR()
	}

	msg := &ConsoleMessage{
		Level:     consoleLevel(string(ev.Type)),
		Text:      text,
		Timestamp: time.Now(),
	}
	if ev.StackTrace != nil {
		for _, f := range ev.StackTrace.CallFrames {
			msg.StackLocations = append(msg.StackLocations, StackLocation{
				URL:      f.URL,
				Function: f.FunctionName,
				Line:     f.LineNumber + 1,
				Column:   f.ColumnNumber + 1,
			})
		}
		if len(msg.StackLocations) > 0 {
			msg.URL = msg.StackLocations[0].URL
			msg.LineNumber = msg.StackLocations[0].Line
		}
	}

	conn.appendConsole(msg)

	if msg.Level == "error" {
		go m.enrichErrorStack(conn, pageCtx, msg, ev.Args)
	}
}

// handleExceptionEvent records an uncaught exception as an error-level
// console message. The exception detail already carries its stack text, so
// no enrichment pass is needed.
func (m *Manager) handleExceptionEvent(conn *Connection, ev *cdpruntime.EventExceptionThrown) {
	if ev.ExceptionDetails == nil {
		return
	}
	d := ev.ExceptionDetails

	text := d.Text
	if d.Exception != nil && d.Exception.Description != "" {
		text = d.Exception.Description
	}

	msg := &ConsoleMessage{
		Level:      "error",
		Text:       text,
		Timestamp:  time.Now(),
		URL:        d.URL,
		LineNumber: d.LineNumber + 1,
	}
	if d.StackTrace != nil {
		for _, f := range d.StackTrace.CallFrames {
			msg.StackLocations = append(msg.StackLocations, StackLocation{
				URL:      f.URL,
				Function: f.FunctionName,
				Line:     f.LineNumber + 1,
				Column:   f.ColumnNumber + 1,
			})
		}
	}
	// The description of an Error object already embeds the stack text.
	if d.Exception != nil && strings.Contains(d.Exception.Description, "\n") {
		msg.StackTrace = d.Exception.Description
	}

	conn.appendConsole(msg)
}

// enrichErrorStack asks the page for each argument's .stack and attaches the
// first non-empty one to the already-appended message. Runs concurrently
// with further event delivery; attachStack writes the field at most once.
func (m *Manager) enrichErrorStack(conn *Connection, pageCtx context.Context, msg *ConsoleMessage, args []*cdpruntime.RemoteObject) {
	ctx, cancel := context.WithTimeout(pageCtx, m.cdpTimeout)
	defer cancel()

	for _, arg := range args {
		if arg == nil || arg.ObjectID == "" {
			continue
		}
		stack := fetchStack(ctx, arg.ObjectID)
		if stack != "" {
			conn.attachStack(msg, stack)
			return
		}
	}
}

// fetchStack evaluates `this.stack` against a remote object, tolerating
// objects with no stack at all.
func fetchStack(ctx context.Context, objectID cdpruntime.RemoteObjectID) string {
	const fn = `function() {
		if (this instanceof Error) return this.stack;
		return (this && this.stack) ? String(this.stack) : null;
	}`

	var stack string
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, _, err := cdpruntime.CallFunctionOn(fn).
			WithObjectID(objectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if res != nil && len(res.Value) > 0 {
			var s string
			if json.Unmarshal(res.Value, &s) == nil {
				stack = s
			}
		}
		return nil
	}))
	if err != nil {
		return ""
	}
	return stack
}

// consoleText renders the arguments of a console call the way DevTools
// would: primitive values verbatim, objects by description.
func consoleText(args []*cdpruntime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		switch {
		case len(arg.Value) > 0:
			var s string
			if json.Unmarshal(arg.Value, &s) == nil {
				parts = append(parts, s)
			} else {
				parts = append(parts, string(arg.Value))
			}
		case arg.Description != "":
			parts = append(parts, arg.Description)
		case arg.UnserializableValue != "":
			parts = append(parts, string(arg.UnserializableValue))
		default:
			parts = append(parts, string(arg.Type))
		}
	}
	return strings.Join(parts, " ")
}

// consoleLevel folds the CDP console API type onto the levels the tool
// surface exposes.
func consoleLevel(apiType string) string {
	switch apiType {
	case "error", "assert":
		return "error"
	case "warning":
		return "warning"
	case "info":
		return "info"
	case "debug", "trace":
		return "debug"
	default:
		return "log"
	}
}
