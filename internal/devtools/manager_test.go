package devtools

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// newTestConn builds a connection with no live browser behind it. The cancel
// funcs are no-ops so Disconnect can run.
func newTestConn(id string) *Connection {
	return &Connection{
		ID:            id,
		Host:          "localhost",
		Port:          9222,
		allocCancel:   func() {},
		browserCancel: func() {},
	}
}

func newTestManager(ids ...string) *Manager {
	m := NewManager(zerolog.Nop())
	for _, id := range ids {
		m.register(newTestConn(id))
	}
	return m
}

func kindOf(t *testing.T, err error) toolerr.Kind {
	t.Helper()
	var te *toolerr.Error
	require.True(t, errors.As(err, &te), "expected a typed error, got %v", err)
	return te.Kind
}

func TestFirstConnectionBecomesActive(t *testing.T) {
	m := newTestManager("a", "b")
	assert.Equal(t, "a", m.ActiveID())
}

func TestActivePromotionOldestRemaining(t *testing.T) {
	m := newTestManager("a", "b", "c")
	require.Equal(t, "a", m.ActiveID())

	require.NoError(t, m.Disconnect("a"))
	assert.Equal(t, "b", m.ActiveID())

	require.NoError(t, m.Disconnect("b"))
	assert.Equal(t, "c", m.ActiveID())

	require.NoError(t, m.Disconnect("c"))
	assert.Empty(t, m.ActiveID())
	assert.Empty(t, m.List())
}

func TestDisconnectNonActiveKeepsActive(t *testing.T) {
	m := newTestManager("a", "b", "c")
	require.NoError(t, m.Disconnect("b"))
	assert.Equal(t, "a", m.ActiveID())

	ids := make([]string, 0, 2)
	for _, c := range m.List() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestSwitchActive(t *testing.T) {
	m := newTestManager("a", "b")
	require.NoError(t, m.SwitchActive("b"))
	assert.Equal(t, "b", m.ActiveID())

	err := m.SwitchActive("nope")
	assert.Equal(t, toolerr.KindConnection, kindOf(t, err))
}

func TestConnectionOrThrowFallsBackToActive(t *testing.T) {
	m := newTestManager("a", "b")
	conn, err := m.ConnectionOrThrow("")
	require.NoError(t, err)
	assert.Equal(t, "a", conn.ID)

	conn, err = m.ConnectionOrThrow("b")
	require.NoError(t, err)
	assert.Equal(t, "b", conn.ID)
}

func TestEnforcerErrors(t *testing.T) {
	m := NewManager(zerolog.Nop())

	_, err := m.ConnectionOrThrow("")
	assert.Equal(t, toolerr.KindConnection, kindOf(t, err))

	_, err = m.ConnectionOrThrow("ghost")
	assert.Equal(t, toolerr.KindConnection, kindOf(t, err))

	m.register(newTestConn("a"))

	_, err = m.DebuggerOrThrow("a")
	assert.Equal(t, toolerr.KindDebugger, kindOf(t, err))

	conn, _ := m.ConnectionOrThrow("a")
	conn.mu.Lock()
	conn.debuggerEnabled = true
	conn.mu.Unlock()

	_, _, err = m.RequirePaused("a")
	assert.Equal(t, toolerr.KindStateRunning, kindOf(t, err))

	conn.setPaused(&PausedState{Reason: "breakpoint"})
	_, ps, err := m.RequirePaused("a")
	require.NoError(t, err)
	assert.Equal(t, "breakpoint", ps.Reason)

	_, err = m.RequireNotPaused("a")
	assert.Equal(t, toolerr.KindStatePaused, kindOf(t, err))
}

func TestConnectRejectsDuplicateID(t *testing.T) {
	m := newTestManager("dup")
	// Duplicate detection fires before any network activity.
	_, err := m.Connect(ConnectOptions{ID: "dup", Host: "localhost", Port: 1})
	assert.Equal(t, toolerr.KindConnection, kindOf(t, err))
}
