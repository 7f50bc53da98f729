// Package devtools owns the lifecycle and state of browser connections: the
// WebSocket attach to Chrome, active-target tracking, console capture,
// navigation epochs, and the debugger state machine. It is the single
// enforcer of connection/debugger/paused preconditions; tool handlers never
// re-check state themselves.
package devtools

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/debugger"
	"github.com/chromedp/cdproto/target"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

// StackLocation is one frame of the synchronous stack captured with a
// console message. Line is 1-based.
type StackLocation struct {
	URL      string
	Function string
	Line     int64
	Column   int64
}

// ConsoleMessage is one captured console entry. Messages are appended to the
// ring synchronously at event delivery; StackTrace may be attached later by
// the asynchronous enrichment task and is the only field that mutates after
// insertion.
type ConsoleMessage struct {
	Level           string
	Text            string
	Timestamp       time.Time
	NavigationEpoch int
	URL             string
	LineNumber      int64 // 1-based; 0 when unknown
	StackLocations  []StackLocation
	StackTrace      string
}

// BreakpointInfo records a registered breakpoint in tool-facing (1-based)
// coordinates.
type BreakpointInfo struct {
	URL          string
	LineNumber   int64
	ColumnNumber int64
	Condition    string
}

// PausedState is the captured Debugger.paused event a connection is stopped
// on. The call frames are CDP-owned handles; the connection holds them
// one-way with no reciprocal ownership.
type PausedState struct {
	Reason         string
	CallFrames     []*debugger.CallFrame
	HitBreakpoints []string
}

// Connection is one attached browser. All mutable state is guarded by mu;
// the CDP event handlers write paused state and the console ring, a target
// switch resets both, and tool handlers only read them.
type Connection struct {
	ID   string
	Host string
	Port int

	seq       int // registration order, drives oldest-remaining promotion
	createdAt time.Time

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	pageCtx      context.Context
	pageCancel   context.CancelFunc
	pageTargetID target.ID

	mu              sync.Mutex
	debuggerEnabled bool
	paused          *PausedState
	breakpoints     map[string]BreakpointInfo
	console         []*ConsoleMessage
	navigationEpoch int
	lastNavigation  time.Time
	hmrCount        int
	lastHMR         time.Time
	queried         bool
	lastQueryTime   time.Time
	lastQueryEpoch  int
	lastSnapshot    *inspect.DOMSnapshot
	prevStepVars    map[string]string
}

// PageContext returns the chromedp context of the active page target.
func (c *Connection) PageContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageCtx
}

// TargetID returns the id of the active page target.
func (c *Connection) TargetID() target.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageTargetID
}

// DebuggerEnabled reports whether the debugger domain is enabled.
func (c *Connection) DebuggerEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debuggerEnabled
}

// Paused returns the captured pause event, or nil when running.
func (c *Connection) Paused() *PausedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Connection) setPaused(ps *PausedState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = ps
}

// Breakpoints returns a copy of the breakpoint registry.
func (c *Connection) Breakpoints() map[string]BreakpointInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]BreakpointInfo, len(c.breakpoints))
	for id, info := range c.breakpoints {
		out[id] = info
	}
	return out
}

func (c *Connection) rememberBreakpoint(id string, info BreakpointInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.breakpoints == nil {
		c.breakpoints = make(map[string]BreakpointInfo)
	}
	c.breakpoints[id] = info
}

func (c *Connection) forgetBreakpoint(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.breakpoints[id]
	delete(c.breakpoints, id)
	return ok
}

// appendConsole inserts a message at the tail of the ring, stamping it with
// the connection's current navigation epoch. Called synchronously from the
// event handler so browser emission order is preserved.
func (c *Connection) appendConsole(msg *ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg.NavigationEpoch = c.navigationEpoch
	c.console = append(c.console, msg)
}

// attachStack writes the enriched stack trace onto an already-inserted
// message. First writer wins; the field is written at most once.
func (c *Connection) attachStack(msg *ConsoleMessage, stack string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.StackTrace == "" {
		msg.StackTrace = stack
	}
}

// ConsoleMessages returns a snapshot of the ring in insertion order.
func (c *Connection) ConsoleMessages() []*ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ConsoleMessage, len(c.console))
	copy(out, c.console)
	return out
}

// ClearConsole empties the ring.
func (c *Connection) ClearConsole() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.console = nil
}

// NavigationEpoch returns the current epoch.
func (c *Connection) NavigationEpoch() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.navigationEpoch
}

// bumpNavigation records a full page load: the epoch increases, HMR state
// resets, and the console ring and DOM snapshot are cleared.
func (c *Connection) bumpNavigation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigationEpoch++
	c.lastNavigation = time.Now()
	c.hmrCount = 0
	c.lastHMR = time.Time{}
	c.console = nil
	c.lastSnapshot = nil
}

// recordHMR counts a hot-module-reload update; it does not bump the epoch.
func (c *Connection) recordHMR() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hmrCount++
	c.lastHMR = time.Now()
}

// QueryStatus derives the change marker for a console-logs query: first
// query ever, reloaded since the last query, HMR-updated since, or
// unchanged.
type QueryStatus string

const (
	StatusFirstQuery QueryStatus = "first_query"
	StatusReloaded   QueryStatus = "reloaded"
	StatusHMRUpdated QueryStatus = "hmr_updated"
	StatusUnchanged  QueryStatus = "unchanged"
)

// PageState is the freshness header data for console-log responses.
type PageState struct {
	Status          QueryStatus
	NavigationEpoch int
	LastNavigation  time.Time
	HMRCount        int
	LastHMR         time.Time
}

// PageStateForQuery computes the freshness header and then records this
// query so the next call compares against it.
func (c *Connection) PageStateForQuery() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := StatusUnchanged
	switch {
	case !c.queried:
		status = StatusFirstQuery
	case c.lastQueryEpoch < c.navigationEpoch:
		status = StatusReloaded
	case !c.lastHMR.IsZero() && c.lastHMR.After(c.lastQueryTime):
		status = StatusHMRUpdated
	}

	state := PageState{
		Status:          status,
		NavigationEpoch: c.navigationEpoch,
		LastNavigation:  c.lastNavigation,
		HMRCount:        c.hmrCount,
		LastHMR:         c.lastHMR,
	}

	c.queried = true
	c.lastQueryTime = time.Now()
	c.lastQueryEpoch = c.navigationEpoch
	return state
}

// Snapshot accessors: the DOM snapshot lives for at most one tool-call
// duration — written by one invocation, consumed by the next that diffs.

func (c *Connection) SetSnapshot(s *inspect.DOMSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSnapshot = s
}

func (c *Connection) TakeSnapshot() *inspect.DOMSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.lastSnapshot
	c.lastSnapshot = nil
	return s
}

// Previous-step variable cache: the locals displayed after the most recent
// step. The step tool records it; [CHANGED] markers are computed from a fresh
// pre-step snapshot rather than read back from here.

func (c *Connection) SetPrevStepVars(vars map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prevStepVars = vars
}

func (c *Connection) PrevStepVars() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prevStepVars
}
