package devtools

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/tomasbasham/chrome-mcp/internal/toolerr"
)

// networkIdleWait bounds how long navigation waits for the networkIdle
// lifecycle event after the load completes. Pages that never go idle are
// reported as loaded anyway.
const networkIdleWait = 3 * time.Second

// Navigate opens a URL on the connection's active page and waits for the
// page to reach networkIdle, or for the idle wait to lapse.
func (m *Manager) Navigate(id string, url string) error {
	conn, err := m.ConnectionOrThrow(id)
	if err != nil {
		return err
	}

	pageCtx := conn.PageContext()
	navCtx, cancel := context.WithTimeout(pageCtx, 2*m.cdpTimeout)
	defer cancel()

	// Subscribe before navigating so a fast idle is not missed. The listener
	// dies with navCtx.
	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(navCtx, func(ev any) {
		if lev, ok := ev.(*page.EventLifecycleEvent); ok && lev.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return toolerr.Execution(err, "navigate")
	}

	select {
	case <-idle:
	case <-time.After(networkIdleWait):
	case <-navCtx.Done():
	}
	return nil
}
