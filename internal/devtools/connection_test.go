package devtools

import (
	"context"
	"fmt"
	"testing"

	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

func TestNavigationEpochMonotonic(t *testing.T) {
	c := newTestConn("a")
	assert.Equal(t, 0, c.NavigationEpoch())

	c.bumpNavigation()
	c.bumpNavigation()
	assert.Equal(t, 2, c.NavigationEpoch())
}

func TestConsoleMessagesStampEpochAtInsertion(t *testing.T) {
	c := newTestConn("a")
	c.bumpNavigation()

	early := &ConsoleMessage{Level: "log", Text: "before reload"}
	c.appendConsole(early)
	assert.Equal(t, 1, early.NavigationEpoch)

	c.bumpNavigation()
	late := &ConsoleMessage{Level: "log", Text: "after reload"}
	c.appendConsole(late)
	assert.Equal(t, 2, late.NavigationEpoch)

	// The early message keeps the epoch it was inserted under, and the
	// reload cleared the ring before the late append.
	msgs := c.ConsoleMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "after reload", msgs[0].Text)
}

func TestNavigationClearsConsoleAndHMR(t *testing.T) {
	c := newTestConn("a")
	c.appendConsole(&ConsoleMessage{Level: "log", Text: "x"})
	c.recordHMR()
	c.SetSnapshot(nil)

	c.bumpNavigation()
	assert.Empty(t, c.ConsoleMessages())

	state := c.PageStateForQuery()
	assert.Equal(t, 0, state.HMRCount)
	assert.True(t, state.LastHMR.IsZero())
}

func TestConsoleOrderingSurvivesEnrichment(t *testing.T) {
	c := newTestConn("a")
	var inserted []*ConsoleMessage
	for i := 0; i < 5; i++ {
		m := &ConsoleMessage{Level: "error", Text: fmt.Sprintf("err %d", i)}
		inserted = append(inserted, m)
		c.appendConsole(m)
	}

	// Enrich out of order, as the background tasks might.
	c.attachStack(inserted[3], "stack three")
	c.attachStack(inserted[0], "stack zero")
	// Second write to the same record must not take.
	c.attachStack(inserted[0], "stack zero again")

	msgs := c.ConsoleMessages()
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		assert.Equal(t, fmt.Sprintf("err %d", i), m.Text, "order preserved")
	}
	assert.Equal(t, "stack zero", msgs[0].StackTrace)
	assert.Equal(t, "stack three", msgs[3].StackTrace)
	assert.Empty(t, msgs[1].StackTrace)
}

func TestPageStateForQueryTransitions(t *testing.T) {
	c := newTestConn("a")

	state := c.PageStateForQuery()
	assert.Equal(t, StatusFirstQuery, state.Status)

	state = c.PageStateForQuery()
	assert.Equal(t, StatusUnchanged, state.Status)

	c.bumpNavigation()
	state = c.PageStateForQuery()
	assert.Equal(t, StatusReloaded, state.Status)
	assert.Equal(t, 1, state.NavigationEpoch)

	c.recordHMR()
	state = c.PageStateForQuery()
	assert.Equal(t, StatusHMRUpdated, state.Status)
	assert.Equal(t, 1, state.HMRCount)

	state = c.PageStateForQuery()
	assert.Equal(t, StatusUnchanged, state.Status)
}

func TestBreakpointRegistry(t *testing.T) {
	c := newTestConn("a")
	c.rememberBreakpoint("bp1", BreakpointInfo{URL: "main.js", LineNumber: 42})

	bps := c.Breakpoints()
	require.Len(t, bps, 1)
	assert.Equal(t, int64(42), bps["bp1"].LineNumber)

	assert.True(t, c.forgetBreakpoint("bp1"))
	assert.False(t, c.forgetBreakpoint("bp1"))
	assert.Empty(t, c.Breakpoints())
}

func TestSnapshotLivesOneCall(t *testing.T) {
	c := newTestConn("a")
	assert.Nil(t, c.TakeSnapshot())

	s := &inspect.DOMSnapshot{}
	c.SetSnapshot(s)
	assert.Same(t, s, c.TakeSnapshot())
	assert.Nil(t, c.TakeSnapshot(), "taking the snapshot consumes it")
}

func TestHandleConsoleEventSynchronousInsert(t *testing.T) {
	m := NewManager(zerolog.Nop())
	c := newTestConn("a")
	m.register(c)
	c.bumpNavigation()

	arg := func(s string) *cdpruntime.RemoteObject {
		return &cdpruntime.RemoteObject{Type: "string", Value: []byte(fmt.Sprintf("%q", s))}
	}

	m.handleConsoleEvent(c, context.Background(), &cdpruntime.EventConsoleAPICalled{
		Type: "log",
		Args: []*cdpruntime.RemoteObject{arg("[HMR] update applied")},
	})
	m.handleConsoleEvent(c, context.Background(), &cdpruntime.EventConsoleAPICalled{
		Type: "warning",
		Args: []*cdpruntime.RemoteObject{arg("slow frame"), arg("17ms")},
	})

	msgs := c.ConsoleMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "log", msgs[0].Level)
	assert.Equal(t, "[HMR] update applied", msgs[0].Text)
	assert.Equal(t, 1, msgs[0].NavigationEpoch)
	assert.Equal(t, "warning", msgs[1].Level)
	assert.Equal(t, "slow frame 17ms", msgs[1].Text)

	// The HMR line bumped the counters without touching the epoch.
	state := c.PageStateForQuery()
	assert.Equal(t, 1, state.HMRCount)
	assert.Equal(t, 1, state.NavigationEpoch)
}

func TestConsoleLevelMapping(t *testing.T) {
	assert.Equal(t, "error", consoleLevel("error"))
	assert.Equal(t, "error", consoleLevel("assert"))
	assert.Equal(t, "warning", consoleLevel("warning"))
	assert.Equal(t, "debug", consoleLevel("trace"))
	assert.Equal(t, "log", consoleLevel("log"))
	assert.Equal(t, "log", consoleLevel("table"))
}

func TestHMRClassification(t *testing.T) {
	assert.True(t, hmrPrefixRe.MatchString("[HMR] Updated modules"))
	assert.True(t, hmrPrefixRe.MatchString("[vite] hot updated: /src/App.vue"))
	assert.True(t, hmrPrefixRe.MatchString("[WDS] App updated. Recompiling..."))
	assert.False(t, hmrPrefixRe.MatchString("HMR update without brackets"))
	assert.True(t, hmrUpdateRe.MatchString("hot updating module"))
	assert.False(t, hmrUpdateRe.MatchString("[HMR] connected"))
}
