package devtools

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// discoveryTimeout bounds the HTTP endpoints used before the WebSocket
// attach.
const discoveryTimeout = 5 * time.Second

// VersionInfo is the response of Chrome's /json/version endpoint.
type VersionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// TargetInfo is one entry of Chrome's /json/list endpoint.
type TargetInfo struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// DiscoverVersion fetches the browser-level WebSocket URL from
// /json/version.
func DiscoverVersion(host string, port int) (*VersionInfo, error) {
	var info VersionInfo
	if err := getJSON(fmt.Sprintf("http://%s:%d/json/version", host, port), &info); err != nil {
		return nil, err
	}
	if info.WebSocketDebuggerURL == "" {
		return nil, errors.Errorf("chrome at %s:%d does not expose a browser WebSocket URL", host, port)
	}
	return &info, nil
}

// DiscoverTargets enumerates the browser's debuggable targets via
// /json/list.
func DiscoverTargets(host string, port int) ([]TargetInfo, error) {
	var targets []TargetInfo
	if err := getJSON(fmt.Sprintf("http://%s:%d/json/list", host, port), &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

func getJSON(url string, out any) error {
	client := &http.Client{Timeout: discoveryTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return errors.Wrapf(err, "failed to reach chrome debug endpoint %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading discovery response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "parsing discovery response")
	}
	return nil
}
