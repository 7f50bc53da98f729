package tools

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/chrome-mcp/internal/devtools"
	"github.com/tomasbasham/chrome-mcp/internal/logpattern"
)

func TestWritePageStateFirstQuery(t *testing.T) {
	var b strings.Builder
	writePageState(&b, devtools.PageState{
		Status:          devtools.StatusFirstQuery,
		NavigationEpoch: 2,
		LastNavigation:  time.Now().Add(-30 * time.Second),
	})
	out := b.String()
	assert.Contains(t, out, "PAGE STATE")
	assert.Contains(t, out, "Navigation epoch: 2")
	assert.NotContains(t, out, "RELOADED")
	assert.NotContains(t, out, "HMR UPDATE")
}

func TestWritePageStateReloaded(t *testing.T) {
	var b strings.Builder
	writePageState(&b, devtools.PageState{
		Status:          devtools.StatusReloaded,
		NavigationEpoch: 3,
	})
	assert.Contains(t, b.String(), "[PAGE RELOADED since your last query]")
}

func TestWritePageStateHMR(t *testing.T) {
	var b strings.Builder
	writePageState(&b, devtools.PageState{
		Status:          devtools.StatusHMRUpdated,
		NavigationEpoch: 1,
		HMRCount:        4,
		LastHMR:         time.Now().Add(-10 * time.Second),
	})
	out := b.String()
	assert.Contains(t, out, "[HMR UPDATE since your last query]")
	assert.Contains(t, out, "HMR updates: 4")
}

func TestRenderBlockCompressedRun(t *testing.T) {
	msgs := []*devtools.ConsoleMessage{
		{Level: "log", Text: "timeout 123ms"},
		{Level: "log", Text: "timeout 456ms"},
		{Level: "log", Text: "timeout 789ms"},
		{Level: "log", Text: "timeout 1011ms"},
	}
	blocks := logpattern.Compress(toLogs(msgs))
	require.Len(t, blocks, 1)

	var b strings.Builder
	renderBlock(&b, blocks[0])
	out := b.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "... x4"), "got %q", lines[0])
	assert.Equal(t, "Variations: 123, 456, 789, 1011", strings.TrimSpace(lines[1]))
}

func TestRenderBlockSingleton(t *testing.T) {
	var b strings.Builder
	renderBlock(&b, logpattern.Block{
		Pattern: []logpattern.Log{{Level: "error", Text: "boom"}},
		Count:   1,
	})
	assert.Equal(t, "[error] boom\n", b.String())
}

func TestRenderExpandedWithStack(t *testing.T) {
	msgs := []*devtools.ConsoleMessage{
		{
			Level:      "error",
			Text:       "TypeError: x is undefined",
			URL:        "http://localhost:3000/app.js",
			LineNumber: 12,
			StackTrace: "TypeError: x is undefined\n    at handler (app.js:12:5)",
		},
	}
	var b strings.Builder
	renderExpanded(&b, msgs)
	out := b.String()
	assert.Contains(t, out, "[error] TypeError: x is undefined")
	assert.Contains(t, out, "at app.js:12")
	assert.Contains(t, out, "at handler (app.js:12:5)")
}

func TestFilterLevel(t *testing.T) {
	msgs := []*devtools.ConsoleMessage{
		{Level: "log", Text: "a"},
		{Level: "error", Text: "b"},
		{Level: "warning", Text: "c"},
		{Level: "error", Text: "d"},
	}
	assert.Len(t, filterLevel(msgs, "all"), 4)
	errs := filterLevel(msgs, "error")
	require.Len(t, errs, 2)
	assert.Equal(t, "b", errs[0].Text)
	assert.Equal(t, "d", errs[1].Text)
}

func TestTail(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{4, 5}, tail(items, 2))
	assert.Equal(t, items, tail(items, 10))
	assert.Equal(t, items, tail(items, 0))
}
