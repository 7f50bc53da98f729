package devtools

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// launchWait is how long a spawned Chrome gets to open its debug port
// before the connect attempt.
const launchWait = 2 * time.Second

// LaunchOptions configures a Chrome spawn.
type LaunchOptions struct {
	Port        int
	Headless    bool
	UserDataDir string
	ExtraArgs   []string
}

// chromePath returns the Chrome executable for the current platform.
func chromePath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	case "windows":
		return `C:\Program Files\Google\Chrome\Application\chrome.exe`
	default:
		return "google-chrome"
	}
}

// launchArgs assembles the flag set for a debuggable Chrome: the debug port,
// an isolated profile, and first-run/update/reporting suppression.
func launchArgs(opts LaunchOptions) []string {
	args := []string{
		"--remote-debugging-port=" + strconv.Itoa(opts.Port),
		"--user-data-dir=" + opts.UserDataDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-background-networking",
		"--disable-component-update",
		"--metrics-recording-only",
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	return append(args, opts.ExtraArgs...)
}

// spawnChrome starts Chrome detached and waits a fixed interval for the
// debug port to come up. The process is never killed by this server;
// disconnect only detaches the WebSocket.
func spawnChrome(opts LaunchOptions) (string, error) {
	dir := opts.UserDataDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "chrome-mcp-profile-")
		if err != nil {
			return "", errors.Wrap(err, "creating temporary user data dir")
		}
		opts.UserDataDir = dir
	}

	cmd := exec.Command(chromePath(), launchArgs(opts)...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return "", errors.Wrapf(err, "failed to launch chrome at %s", chromePath())
	}
	// Detach so the browser outlives this process.
	if err := cmd.Process.Release(); err != nil {
		return "", errors.Wrap(err, "detaching chrome process")
	}

	time.Sleep(launchWait)
	return dir, nil
}

