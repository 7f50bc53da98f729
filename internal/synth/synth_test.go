package synth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
)

func TestAge(t *testing.T) {
	assert.Equal(t, "5s ago", Age(5*time.Second))
	assert.Equal(t, "3m ago", Age(3*time.Minute+20*time.Second))
	assert.Equal(t, "2h ago", Age(2*time.Hour+5*time.Minute))
	assert.Equal(t, "3d ago", Age(3*24*time.Hour))
}

func TestFrameLocation(t *testing.T) {
	// CDP lines are 0-based; the rendered line is 1-based.
	assert.Equal(t, "main.js:42", FrameLocation("http://localhost:3000/static/main.js", 41))
	assert.Equal(t, "app.js:1", FrameLocation("app.js?v=123", 0))
	assert.Equal(t, "<anonymous>:8", FrameLocation("", 7))
}

func TestTruncateValue(t *testing.T) {
	long := strings.Repeat("v", 150)
	got := TruncateValue(long)
	assert.Len(t, got, 103)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "short", TruncateValue("short"))
}

func snap(key map[string]inspect.ElementSnapshot, counts inspect.SnapshotCounts) *inspect.DOMSnapshot {
	return &inspect.DOMSnapshot{Counts: counts, KeyElements: key}
}

func TestDOMDiffIdentity(t *testing.T) {
	s := snap(map[string]inspect.ElementSnapshot{
		"#save[0]": {Tag: "button", Text: "Save", Visible: true},
	}, inspect.SnapshotCounts{Total: 10, Buttons: 1, Visible: 8})

	assert.Empty(t, DOMDiff(s, s))
}

func TestDOMDiffSections(t *testing.T) {
	before := snap(map[string]inspect.ElementSnapshot{
		"#save[0]":   {Tag: "button", Text: "Save", Visible: true},
		"#cancel[0]": {Tag: "button", Text: "Cancel", Visible: true},
	}, inspect.SnapshotCounts{Total: 10, Buttons: 2})
	after := snap(map[string]inspect.ElementSnapshot{
		"#save[0]":  {Tag: "button", Text: "Saving...", Visible: true, Disabled: true},
		"#toast[0]": {Tag: "button", Text: "Undo", Visible: true},
	}, inspect.SnapshotCounts{Total: 12, Buttons: 2})

	diff := DOMDiff(before, after)
	assert.Contains(t, diff, "Added (1):")
	assert.Contains(t, diff, "#toast[0]")
	assert.Contains(t, diff, "Removed (1):")
	assert.Contains(t, diff, "#cancel[0]")
	assert.Contains(t, diff, "Changed (1):")
	assert.Contains(t, diff, `text "Save" -> "Saving..."`)
	assert.Contains(t, diff, "disabled false -> true")
	assert.Contains(t, diff, "total +2")
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"login", "button"}, SearchTerms(".login-button"))
	assert.ElementsMatch(t, []string{"user", "name", "input"}, SearchTerms("#userName_input"))
	assert.Empty(t, SearchTerms(".ab"))
}

func TestSuggestSelectorsZeroResultScenario(t *testing.T) {
	inv := &inspect.Inventory{
		Classes: map[string]int{"login-btn": 2, "loginForm": 1, "nav-item": 6},
		IDs:     []string{"header"},
		Tags:    map[string]int{"div": 40, "button": 3, "form": 1},
	}

	out := SuggestSelectors(inv, ".login-button")
	require.True(t, strings.HasPrefix(out, "No elements found matching selector: .login-button"))
	assert.Contains(t, out, "Similar selectors that exist:")
	assert.Contains(t, out, ".login-btn (2 elements)")
	assert.Contains(t, out, ".loginForm (1 element)")
	assert.Contains(t, out, `"login"`)
	assert.NotContains(t, out, ".nav-item")
	assert.Contains(t, out, "Page structure:")

	// login-btn matches the same number of terms but more elements exist,
	// so it sorts first.
	assert.Less(t, strings.Index(out, ".login-btn"), strings.Index(out, ".loginForm"))
}

func TestSuggestSelectorsNoCandidates(t *testing.T) {
	inv := &inspect.Inventory{Tags: map[string]int{"div": 3}}
	out := SuggestSelectors(inv, ".xyzzy-widget")
	assert.Contains(t, out, "No elements found matching selector")
	assert.NotContains(t, out, "Similar selectors")
}

func TestRankSelectorsStabilityOrder(t *testing.T) {
	inv := &inspect.Inventory{
		IDs:        []string{"login-submit"},
		TestIDs:    []string{"login-form"},
		AriaLabels: []string{"Login to your account"},
		Classes:    map[string]int{"login-btn": 2},
		Tags:       map[string]int{"button": 3, "div": 40},
	}

	ranked := RankSelectors(inv, "login button", false)
	require.NotEmpty(t, ranked)

	// All login-matching candidates carry one term match; stability breaks
	// the tie, so the id candidate leads.
	assert.Equal(t, "#login-submit", ranked[0].Selector)
	assert.Equal(t, "id", StabilityName(ranked[0].Stability))

	strict := RankSelectors(inv, "login button", true)
	for _, c := range strict {
		assert.Greater(t, c.Stability, 2, "strict mode excludes class/structural: %s", c.Selector)
	}
}

func TestActionContext(t *testing.T) {
	state := &inspect.ElementState{Tag: "button", Visible: true, Disabled: true}
	out := ActionContext(state, nil, nil)
	assert.Contains(t, out, "Element State:")
	assert.Contains(t, out, "tag=button visible=true disabled")
	assert.NotContains(t, out, "DOM Changes")

	before := snap(map[string]inspect.ElementSnapshot{}, inspect.SnapshotCounts{})
	out = ActionContext(state, before, before)
	assert.Contains(t, out, "DOM Changes: none")
}

func TestRenderItem(t *testing.T) {
	line := RenderItem("buttons", map[string]any{
		"tag":        "<button class=\"btn\">",
		"text":       "Save",
		"hasHandler": true,
		"disabled":   false,
		"selector":   "#save",
	})
	assert.Contains(t, line, `text="Save"`)
	assert.Contains(t, line, "hasHandler")
	assert.NotContains(t, line, "disabled")
	assert.Contains(t, line, `selector="#save"`)
}

func TestComposePauseBlockChangeMarkers(t *testing.T) {
	vars := []Variable{{Name: "i", Value: "3"}, {Name: "total", Value: "10"}}
	changed := map[string]bool{"i": true}
	out := composePauseBlock("other", nil, vars, changed, []string{"log: tick"})
	assert.Contains(t, out, "i = 3 [CHANGED]")
	assert.Contains(t, out, "total = 10\n")
	assert.NotContains(t, out, "total = 10 [CHANGED]")
	assert.Contains(t, out, "Recent console:")
}
