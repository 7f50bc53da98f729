package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomasbasham/chrome-mcp/internal/devtools"
	"github.com/tomasbasham/chrome-mcp/internal/logpattern"
	"github.com/tomasbasham/chrome-mcp/internal/synth"
)

func (r *Registry) runGetConsoleLogs(ctx context.Context, args Args) (string, error) {
	conn, err := r.manager.ConnectionOrThrow(args.connectionID())
	if err != nil {
		return "", err
	}

	level := args.String("filter_level", "all")
	limit := args.Int("limit", 3)
	expandErrors := args.Bool("expand_errors", false)

	msgs := filterLevel(conn.ConsoleMessages(), level)

	var b strings.Builder
	writePageState(&b, conn.PageStateForQuery())

	b.WriteString("CONSOLE MESSAGES\n")
	if len(msgs) == 0 {
		b.WriteString("(no messages)\n")
		return b.String(), nil
	}

	if expandErrors {
		renderExpanded(&b, tail(msgs, limit))
		return b.String(), nil
	}

	// Compress first, then slice: slicing raw logs would split repeat runs
	// and undercount them.
	blocks := logpattern.Compress(toLogs(msgs))
	shown := blocks
	if limit > 0 && len(shown) > limit {
		shown = shown[len(shown)-limit:]
		fmt.Fprintf(&b, "(showing last %d of %d entries)\n", len(shown), len(blocks))
	}
	for _, block := range shown {
		renderBlock(&b, block)
	}
	return b.String(), nil
}

// writePageState emits the freshness header. The change marker only appears
// when something happened since the previous query.
func writePageState(b *strings.Builder, state devtools.PageState) {
	b.WriteString("PAGE STATE\n")
	switch state.Status {
	case devtools.StatusReloaded:
		b.WriteString("[PAGE RELOADED since your last query]\n")
	case devtools.StatusHMRUpdated:
		b.WriteString("[HMR UPDATE since your last query]\n")
	}
	fmt.Fprintf(b, "Navigation epoch: %d\n", state.NavigationEpoch)
	if !state.LastNavigation.IsZero() {
		fmt.Fprintf(b, "Last navigation: %s\n", synth.Age(time.Since(state.LastNavigation)))
	}
	if state.HMRCount > 0 && !state.LastHMR.IsZero() {
		fmt.Fprintf(b, "HMR updates: %d, last %s\n", state.HMRCount, synth.Age(time.Since(state.LastHMR)))
	}
	b.WriteString("\n")
}

func filterLevel(msgs []*devtools.ConsoleMessage, level string) []*devtools.ConsoleMessage {
	if level == "" || level == "all" {
		return msgs
	}
	var out []*devtools.ConsoleMessage
	for _, m := range msgs {
		if m.Level == level {
			out = append(out, m)
		}
	}
	return out
}

func tail[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func toLogs(msgs []*devtools.ConsoleMessage) []logpattern.Log {
	out := make([]logpattern.Log, len(msgs))
	for i, m := range msgs {
		out[i] = logpattern.Log{
			Level: m.Level,
			Text:  m.Text,
			URL:   m.URL,
			Line:  int(m.LineNumber),
		}
	}
	return out
}

// renderBlock writes one compressed entry: singletons as plain lines,
// repeats with a repeat marker and variations footnote.
func renderBlock(b *strings.Builder, block logpattern.Block) {
	if block.Count == 1 && len(block.Pattern) == 1 {
		fmt.Fprintf(b, "[%s] %s\n", block.Pattern[0].Level, block.Pattern[0].Text)
		return
	}

	if len(block.Pattern) == 1 {
		fmt.Fprintf(b, "[%s] %s ... x%d\n", block.Pattern[0].Level, block.Pattern[0].Text, block.Count)
	} else {
		fmt.Fprintf(b, "Repeated x%d:\n", block.Count)
		for _, l := range block.Pattern {
			fmt.Fprintf(b, "  [%s] %s\n", l.Level, l.Text)
		}
	}
	if footnote := logpattern.FormatVariations(block.Variations); footnote != "" {
		fmt.Fprintf(b, "  %s\n", footnote)
	}
}

// renderExpanded writes raw messages with their full stack traces; used when
// the agent asks for error detail instead of compression.
func renderExpanded(b *strings.Builder, msgs []*devtools.ConsoleMessage) {
	for _, m := range msgs {
		fmt.Fprintf(b, "[%s] %s\n", m.Level, m.Text)
		if m.URL != "" {
			fmt.Fprintf(b, "  at %s\n", synth.FrameLocation(m.URL, m.LineNumber-1))
		}
		switch {
		case m.StackTrace != "":
			for _, line := range strings.Split(m.StackTrace, "\n") {
				fmt.Fprintf(b, "  %s\n", line)
			}
		case len(m.StackLocations) > 0:
			for _, loc := range m.StackLocations {
				fn := loc.Function
				if fn == "" {
					fn = "<anonymous>"
				}
				fmt.Fprintf(b, "  at %s (%s)\n", fn, synth.FrameLocation(loc.URL, loc.Line-1))
			}
		}
	}
}
