// Package synth composes the bounded text artifacts returned alongside raw
// tool results: navigate, pause, step and action context blocks, DOM diffs,
// and zero-result selector suggestions.
package synth

import (
	"fmt"
	"strings"
	"time"
)

// Age renders a duration since an event as a compact "N ago" marker.
func Age(since time.Duration) string {
	switch {
	case since < time.Minute:
		return fmt.Sprintf("%ds ago", int(since.Seconds()))
	case since < time.Hour:
		return fmt.Sprintf("%dm ago", int(since.Minutes()))
	case since < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(since.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(since.Hours()/24))
	}
}

// TruncateValue bounds a displayed variable value to 100 characters.
func TruncateValue(s string) string {
	const max = 100
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// TruncateMessage bounds a console message for context blocks.
func TruncateMessage(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// FrameLocation renders a script URL and 0-based CDP line as
// "basename:line" with the public 1-based line number.
func FrameLocation(url string, lineNumber int64) string {
	return fmt.Sprintf("%s:%d", basename(url), lineNumber+1)
}

// basename strips a URL or path down to its final segment.
func basename(url string) string {
	if url == "" {
		return "<anonymous>"
	}
	if i := strings.Index(url, "?"); i >= 0 {
		url = url[:i]
	}
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		url = url[i+1:]
	}
	if url == "" {
		return "<anonymous>"
	}
	return url
}
