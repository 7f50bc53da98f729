package respond

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardPassesSmallResponses(t *testing.T) {
	text := "Found 3 elements"
	assert.Equal(t, text, Guard(text, nil, DefaultLimit))
}

func TestGuardRejectsOversizeWithDiagnostic(t *testing.T) {
	big := strings.Repeat("x", DefaultLimit+1)
	elems := []ElementSummary{
		{Tag: "button", Classes: []string{"btn", "btn-primary"}},
		{Tag: "button", ID: "save", Classes: []string{"btn"}},
		{Tag: "a", Classes: []string{"nav-link"}},
	}

	out := Guard(big, elems, DefaultLimit)
	assert.NotContains(t, out, "xxx", "must not include any truncated payload")
	assert.Contains(t, out, "Result too large:")
	assert.Contains(t, out, "Most common classes: btn (2)")
	assert.Contains(t, out, "#save")
	assert.Contains(t, out, "Tag breakdown: button (2), a (1)")
	assert.Less(t, len(out), DefaultLimit)
}

func TestGuardOversizeWithoutElementData(t *testing.T) {
	out := Guard(strings.Repeat("y", 6000), nil, DefaultLimit)
	assert.Contains(t, out, "Result too large: 6000 characters")
	assert.NotContains(t, out, "Most common classes")
}

func TestNarrowingAdviceEmpty(t *testing.T) {
	assert.Empty(t, NarrowingAdvice(nil))
}

func TestNarrowingAdviceCapsIds(t *testing.T) {
	elems := make([]ElementSummary, 8)
	for i := range elems {
		elems[i] = ElementSummary{Tag: "input", ID: strings.Repeat("a", i+1)}
	}
	advice := NarrowingAdvice(elems)
	assert.Equal(t, 5, strings.Count(advice, "#"))
}

func TestEscapeForScript(t *testing.T) {
	assert.Equal(t, `it\'s a \\ test\nline`, EscapeForScript("it's a \\ test\nline"))
}
