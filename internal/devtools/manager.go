package devtools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/debugger"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

const (
	// DefaultCDPTimeout bounds individual CDP command round trips.
	DefaultCDPTimeout = 10 * time.Second
	// attachTimeout bounds the initial protocol handshake on connect.
	attachTimeout = 5 * time.Second
)

// Manager owns every browser connection and the active-connection marker.
// It is the single enforcer of connection, debugger and paused-state
// preconditions; every tool handler goes through its *OrThrow helpers.
type Manager struct {
	log        zerolog.Logger
	cdpTimeout time.Duration

	mu     sync.Mutex
	conns  map[string]*Connection
	active string
	nextSeq int
}

// NewManager creates an empty connection manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:        log,
		cdpTimeout: DefaultCDPTimeout,
		conns:      make(map[string]*Connection),
	}
}

// SetCDPTimeout overrides the per-command CDP timeout.
func (m *Manager) SetCDPTimeout(d time.Duration) {
	if d > 0 {
		m.cdpTimeout = d
	}
}

// ConnectOptions identifies the browser to attach to. An empty ID is
// auto-assigned.
type ConnectOptions struct {
	ID   string
	Host string
	Port int
}

// Connect attaches to an already-running debuggable Chrome: discover the
// browser WebSocket URL, attach, adopt the first page target, and install
// the page listeners. The first connection becomes active.
func (m *Manager) Connect(opts ConnectOptions) (*Connection, error) {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.Port == 0 {
		opts.Port = 9222
	}
	if opts.ID == "" {
		opts.ID = "conn-" + uuid.NewString()[:8]
	}

	m.mu.Lock()
	if _, exists := m.conns[opts.ID]; exists {
		m.mu.Unlock()
		return nil, toolerr.Newf(toolerr.KindConnection, "connection %q already exists", opts.ID)
	}
	m.mu.Unlock()

	version, err := DiscoverVersion(opts.Host, opts.Port)
	if err != nil {
		return nil, toolerr.Wrap(err, toolerr.KindConnection, fmt.Sprintf("cannot reach chrome at %s:%d: %v", opts.Host, opts.Port, err))
	}

	targets, err := DiscoverTargets(opts.Host, opts.Port)
	if err != nil {
		return nil, toolerr.Wrap(err, toolerr.KindConnection, fmt.Sprintf("cannot list targets at %s:%d: %v", opts.Host, opts.Port, err))
	}
	var firstPage *TargetInfo
	for i := range targets {
		if targets[i].Type == "page" {
			firstPage = &targets[i]
			break
		}
	}
	if firstPage == nil {
		return nil, toolerr.New(toolerr.KindConnection, "browser has no page targets to attach to")
	}

	// The allocator derives from Background so the connection outlives the
	// tool call that created it.
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), version.WebSocketDebuggerURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...any) {}),
		chromedp.WithErrorf(func(string, ...any) {}),
	)

	conn := &Connection{
		ID:        opts.ID,
		Host:      opts.Host,
		Port:      opts.Port,
		createdAt: time.Now(),

		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}

	if err := m.attachPage(conn, target.ID(firstPage.ID)); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	m.register(conn)
	m.log.Info().Str("connection", conn.ID).Str("url", firstPage.URL).Msg("attached to browser")
	return conn, nil
}

// Launch spawns a debuggable Chrome, waits for its debug port, then
// delegates to Connect.
func (m *Manager) Launch(id string, opts LaunchOptions) (*Connection, string, error) {
	if opts.Port == 0 {
		opts.Port = 9222
	}
	dataDir, err := spawnChrome(opts)
	if err != nil {
		return nil, "", toolerr.Wrap(err, toolerr.KindConnection, err.Error())
	}
	conn, err := m.Connect(ConnectOptions{ID: id, Host: "localhost", Port: opts.Port})
	return conn, dataDir, err
}

// attachPage creates a page context bound to targetID, attaches with a
// bounded handshake, and installs the event listeners.
func (m *Manager) attachPage(conn *Connection, targetID target.ID) error {
	pageCtx, pageCancel := chromedp.NewContext(conn.browserCtx, chromedp.WithTargetID(targetID))

	attachCtx, cancel := context.WithTimeout(pageCtx, attachTimeout)
	defer cancel()
	if err := chromedp.Run(attachCtx); err != nil {
		pageCancel()
		return toolerr.Wrap(err, toolerr.KindConnection, fmt.Sprintf("failed to attach to target %s: %v", targetID, err))
	}

	conn.mu.Lock()
	conn.pageCtx = pageCtx
	conn.pageCancel = pageCancel
	conn.pageTargetID = targetID
	conn.mu.Unlock()

	m.installListeners(conn, pageCtx)
	return nil
}

// register adds a connection to the map and makes it active when it is the
// first.
func (m *Manager) register(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	conn.seq = m.nextSeq
	m.conns[conn.ID] = conn
	if m.active == "" {
		m.active = conn.ID
	}
}

// Disconnect detaches a connection. Chrome itself keeps running. When the
// active connection goes away the oldest remaining one is promoted.
func (m *Manager) Disconnect(id string) error {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return err
	}

	if conn.DebuggerEnabled() {
		// Best effort; the browser may already be gone.
		ctx, cancel := context.WithTimeout(conn.PageContext(), 2*time.Second)
		_ = chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return debugger.Disable().Do(ctx)
		}))
		cancel()
	}

	conn.mu.Lock()
	if conn.pageCancel != nil {
		conn.pageCancel()
	}
	conn.mu.Unlock()
	conn.browserCancel()
	conn.allocCancel()

	m.mu.Lock()
	delete(m.conns, conn.ID)
	if m.active == conn.ID {
		m.active = m.oldestLocked()
	}
	m.mu.Unlock()

	m.log.Info().Str("connection", conn.ID).Msg("disconnected")
	return nil
}

// oldestLocked returns the id of the earliest-registered remaining
// connection, or "".
func (m *Manager) oldestLocked() string {
	oldest := ""
	oldestSeq := 0
	for id, c := range m.conns {
		if oldest == "" || c.seq < oldestSeq {
			oldest = id
			oldestSeq = c.seq
		}
	}
	return oldest
}

// SwitchActive changes the active-connection marker.
func (m *Manager) SwitchActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[id]; !ok {
		return toolerr.Newf(toolerr.KindConnection, "no connection with id %q", id)
	}
	m.active = id
	return nil
}

// ActiveID returns the active connection id, or "".
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// List returns all connections in registration order.
func (m *Manager) List() []*Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Shutdown disconnects every connection, used at end of stream.
func (m *Manager) Shutdown() {
	for _, c := range m.List() {
		if err := m.Disconnect(c.ID); err != nil {
			m.log.Warn().Err(err).Str("connection", c.ID).Msg("disconnect during shutdown")
		}
	}
}

// ConnectionOrThrow resolves id (or the active connection when id is empty)
// or raises CONNECTION.
func (m *Manager) ConnectionOrThrow(id string) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = m.active
	}
	if id == "" {
		return nil, toolerr.New(toolerr.KindConnection, "no active browser connection")
	}
	conn, ok := m.conns[id]
	if !ok {
		return nil, toolerr.Newf(toolerr.KindConnection, "no connection with id %q", id)
	}
	return conn, nil
}

// PageOrThrow returns the active page context of the resolved connection.
func (m *Manager) PageOrThrow(id string) (context.Context, error) {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return nil, err
	}
	return conn.PageContext(), nil
}

// DebuggerOrThrow resolves the connection and checks the debugger session
// is up, raising CONNECTION or DEBUGGER as appropriate.
func (m *Manager) DebuggerOrThrow(id string) (*Connection, error) {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return nil, err
	}
	if !conn.DebuggerEnabled() {
		return nil, toolerr.Newf(toolerr.KindDebugger, "debugger is not enabled on connection %q", conn.ID)
	}
	return conn, nil
}

// RequirePaused ensures the debugger session is ready and execution is
// stopped, returning the captured pause event.
func (m *Manager) RequirePaused(id string) (*Connection, *PausedState, error) {
	conn, err := m.DebuggerOrThrow(id)
	if err != nil {
		return nil, nil, err
	}
	ps := conn.Paused()
	if ps == nil {
		return nil, nil, toolerr.New(toolerr.KindStateRunning, "execution is not paused")
	}
	return conn, ps, nil
}

// RequireNotPaused rejects operations that need a running page.
func (m *Manager) RequireNotPaused(id string) (*Connection, error) {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return nil, err
	}
	if conn.Paused() != nil {
		return nil, toolerr.New(toolerr.KindStatePaused, "execution is paused")
	}
	return conn, nil
}

// OpContext derives a command context from the connection's page with the
// manager's CDP timeout applied.
func (m *Manager) OpContext(conn *Connection) (context.Context, context.CancelFunc) {
	return context.WithTimeout(conn.PageContext(), m.cdpTimeout)
}

// SwitchTarget points a connection at another page target: fresh page
// context and listeners, navigation state reset, and the debugger re-enabled
// when it was on. Breakpoints stay registered in the connection map; CDP
// re-resolves them by URL on its own terms.
func (m *Manager) SwitchTarget(id string, targetID string) error {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return err
	}

	conn.mu.Lock()
	oldCancel := conn.pageCancel
	wasEnabled := conn.debuggerEnabled
	conn.debuggerEnabled = false
	conn.paused = nil
	conn.mu.Unlock()

	if err := m.attachPage(conn, target.ID(targetID)); err != nil {
		return err
	}
	if oldCancel != nil {
		oldCancel()
	}

	conn.bumpNavigation()

	if wasEnabled {
		if err := m.EnableDebugger(conn.ID); err != nil {
			return err
		}
	}
	m.log.Debug().Str("connection", conn.ID).Str("target", targetID).Msg("switched target")
	return nil
}

// Targets enumerates the connection's browser targets via the discovery
// endpoint.
func (m *Manager) Targets(id string) ([]TargetInfo, *Connection, error) {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return nil, nil, err
	}
	targets, err := DiscoverTargets(conn.Host, conn.Port)
	if err != nil {
		return nil, nil, toolerr.Execution(err, "list targets")
	}
	// Only debuggable page-like targets are useful to switch to.
	var out []TargetInfo
	for _, t := range targets {
		if t.Type == "page" || strings.Contains(t.Type, "worker") {
			out = append(out, t)
		}
	}
	return out, conn, nil
}
