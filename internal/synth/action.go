package synth

import (
	"fmt"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

// ActionContext renders the element state after a click or fill and, when a
// before-snapshot was taken, the DOM diff the action caused.
func ActionContext(state *inspect.ElementState, before, after *inspect.DOMSnapshot) string {
	var b strings.Builder

	if state != nil {
		b.WriteString("Element State:\n")
		fmt.Fprintf(&b, "  tag=%s visible=%t", state.Tag, state.Visible)
		if state.Disabled {
			b.WriteString(" disabled")
		}
		if state.Value != "" {
			fmt.Fprintf(&b, " value=%q", state.Value)
		}
		b.WriteString("\n")
	}

	if before != nil && after != nil {
		if diff := DOMDiff(before, after); diff != "" {
			b.WriteString("DOM Changes:\n")
			b.WriteString(diff)
		} else {
			b.WriteString("DOM Changes: none\n")
		}
	}
	return b.String()
}
