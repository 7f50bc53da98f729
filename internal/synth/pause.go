package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/debugger"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

const (
	maxFrames    = 5
	maxVariables = 10
	maxConsole   = 3
)

// Variable is one local-scope binding with its displayed value.
type Variable struct {
	Name  string
	Value string
}

// LocalVariables reads the local scope of a call frame via
// Runtime.getProperties, preserving property order and bounding the count.
func LocalVariables(ctx context.Context, frame *debugger.CallFrame, limit int) ([]Variable, error) {
	if frame == nil {
		return nil, nil
	}
	var objectID cdpruntime.RemoteObjectID
	for _, scope := range frame.ScopeChain {
		if string(scope.Type) == "local" && scope.Object != nil && scope.Object.ObjectID != "" {
			objectID = scope.Object.ObjectID
			break
		}
	}
	if objectID == "" {
		return nil, nil
	}

	var props []*cdpruntime.PropertyDescriptor
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		props, _, _, _, err = cdpruntime.GetProperties(objectID).WithOwnProperties(true).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, toolerr.Execution(err, "read local variables")
	}

	var vars []Variable
	for _, p := range props {
		if limit > 0 && len(vars) >= limit {
			break
		}
		vars = append(vars, Variable{Name: p.Name, Value: TruncateValue(DisplayValue(p.Value))})
	}
	return vars, nil
}

// DisplayValue renders a CDP remote object as a one-line value.
func DisplayValue(obj *cdpruntime.RemoteObject) string {
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

// PauseContext composes the context block shown when execution stops:
// location, reason, top call frames, top local variables of the first frame,
// and the last few console entries.
func PauseContext(ctx context.Context, reason string, frames []*debugger.CallFrame, recentConsole []string) string {
	vars, _ := topFrameVariables(ctx, frames)
	return composePauseBlock(reason, frames, vars, nil, recentConsole)
}

// topFrameVariables reads the local variables of the first frame; a read
// failure degrades to an empty list rather than failing the whole context.
func topFrameVariables(ctx context.Context, frames []*debugger.CallFrame) ([]Variable, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	return LocalVariables(ctx, frames[0], maxVariables)
}

// composePauseBlock renders the shared pause/step layout. changed marks
// variable names to flag; nil means no markers.
func composePauseBlock(reason string, frames []*debugger.CallFrame, vars []Variable, changed map[string]bool, recentConsole []string) string {
	var b strings.Builder

	if len(frames) > 0 {
		top := frames[0]
		fn := top.FunctionName
		if fn == "" {
			fn = "<anonymous>"
		}
		fmt.Fprintf(&b, "Paused at %s in %s\n", FrameLocation(top.URL, top.Location.LineNumber), fn)
	} else {
		b.WriteString("Paused\n")
	}
	fmt.Fprintf(&b, "Reason: %s\n", reason)

	if len(frames) > 0 {
		b.WriteString("\nCall stack:\n")
		shown := frames
		if len(shown) > maxFrames {
			shown = shown[:maxFrames]
		}
		for i, f := range shown {
			fn := f.FunctionName
			if fn == "" {
				fn = "<anonymous>"
			}
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, fn, FrameLocation(f.URL, f.Location.LineNumber))
		}
	}

	if len(vars) > 0 {
		b.WriteString("\nLocal variables:\n")
		for _, v := range vars {
			marker := ""
			if changed[v.Name] {
				marker = " [CHANGED]"
			}
			fmt.Fprintf(&b, "  %s = %s%s\n", v.Name, v.Value, marker)
		}
	}

	if len(recentConsole) > 0 {
		b.WriteString("\nRecent console:\n")
		shown := recentConsole
		if len(shown) > maxConsole {
			shown = shown[len(shown)-maxConsole:]
		}
		for _, line := range shown {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}
