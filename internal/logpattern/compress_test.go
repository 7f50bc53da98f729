package logpattern

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Timeout  123ms", "timeout <n>ms"},
		{"id 550e8400-e29b-41d4-a716-446655440000 ready", "id <uuid> ready"},
		{"ptr 0xDEADBEEF freed", "ptr <hex> freed"},
		{"at 2024-01-15T10:30:00Z retry", "at <ts> retry"},
		{"epoch 1705312200000 seen", "epoch <ts> seen"},
		{"digest deadbeefdeadbeefdeadbeef", "digest <hex>"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.in), c.in)
	}
}

func TestSimilarLevelsMustMatch(t *testing.T) {
	a := Log{Level: "error", Text: "timeout 123ms"}
	b := Log{Level: "warning", Text: "timeout 123ms"}
	assert.False(t, Similar(a, b))
}

func TestSimilarNormalizedEquality(t *testing.T) {
	a := Log{Level: "log", Text: "timeout 123ms"}
	b := Log{Level: "log", Text: "timeout 456ms"}
	assert.True(t, Similar(a, b))
}

func TestSimilarThresholdByLocation(t *testing.T) {
	// Drifting but related texts; the normalised forms differ, so the
	// location-dependent threshold decides the outcome.
	textA := "failed to fetch resource manifest from server node beta"
	textB := "failed to fetch resource manifest from server node gamma"
	score := diceCoefficient(Normalize(textA), Normalize(textB))
	require.Greater(t, score, 0.0)
	require.Less(t, score, 1.0)

	mk := func(url string, line int, text string) Log {
		return Log{Level: "log", Text: text, URL: url, Line: line}
	}

	assert.Equal(t, score >= thresholdSameLocation,
		Similar(mk("app.js", 10, textA), mk("app.js", 10, textB)),
		"same known location uses the lenient threshold")

	assert.Equal(t, score >= thresholdDifferentLocation,
		Similar(mk("app.js", 10, textA), mk("app.js", 99, textB)),
		"different known locations use the strict threshold")

	assert.Equal(t, score >= thresholdUnknownLocation,
		Similar(mk("", 0, textA), mk("app.js", 10, textB)),
		"unknown location uses the middle threshold")
}

func TestCompressRunOfSimilarLogs(t *testing.T) {
	logs := []Log{
		{Level: "log", Text: "timeout 123ms"},
		{Level: "log", Text: "timeout 456ms"},
		{Level: "log", Text: "timeout 789ms"},
		{Level: "log", Text: "timeout 1011ms"},
	}
	blocks := Compress(logs)
	require.Len(t, blocks, 1)
	assert.Equal(t, 4, blocks[0].Count)
	assert.Len(t, blocks[0].Pattern, 1)
	assert.Equal(t, []string{"123", "456", "789", "1011"}, blocks[0].Variations)
}

func TestCompressAlternatingBlock(t *testing.T) {
	logs := []Log{
		{Level: "log", Text: "tick"},
		{Level: "log", Text: "tock"},
		{Level: "log", Text: "tick"},
		{Level: "log", Text: "tock"},
		{Level: "log", Text: "tick"},
		{Level: "log", Text: "tock"},
	}
	blocks := Compress(logs)
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].Count)
	require.Len(t, blocks[0].Pattern, 2)
	assert.Equal(t, "tick", blocks[0].Pattern[0].Text)
	assert.Equal(t, "tock", blocks[0].Pattern[1].Text)
}

func TestCompressSingletonsPassThrough(t *testing.T) {
	logs := []Log{
		{Level: "log", Text: "app started"},
		{Level: "error", Text: "unhandled rejection"},
	}
	blocks := Compress(logs)
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		assert.Equal(t, 1, b.Count)
	}
}

func TestCompressPairCompresses(t *testing.T) {
	// Any k >= 2 compresses, including a bare pair.
	logs := []Log{
		{Level: "log", Text: "poll"},
		{Level: "log", Text: "poll"},
	}
	blocks := Compress(logs)
	require.Len(t, blocks, 1)
	assert.Equal(t, 2, blocks[0].Count)
}

func TestCompressFidelity(t *testing.T) {
	var logs []Log
	for i := 0; i < 9; i++ {
		logs = append(logs, Log{Level: "log", Text: fmt.Sprintf("request %d took %dms", i%3, 10+i)})
	}
	logs = append(logs, Log{Level: "error", Text: "boom"})

	blocks := Compress(logs)
	flat := Flatten(blocks)
	require.Len(t, flat, len(logs))
	for i := range flat {
		assert.True(t, Similar(flat[i], logs[i]), "position %d", i)
	}
}

func TestCompressIdempotence(t *testing.T) {
	logs := []Log{
		{Level: "log", Text: "timeout 1ms"},
		{Level: "log", Text: "timeout 2ms"},
		{Level: "log", Text: "timeout 3ms"},
		{Level: "warning", Text: "slow frame"},
		{Level: "warning", Text: "slow frame"},
	}
	first := Compress(logs)
	second := Compress(Flatten(first))
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Count, second[i].Count)
		assert.Len(t, second[i].Pattern, len(first[i].Pattern))
	}
}

func TestFormatVariationsCap(t *testing.T) {
	assert.Equal(t, "", FormatVariations(nil))
	assert.Equal(t, "Variations: 1, 2", FormatVariations([]string{"1", "2"}))
	assert.Equal(t, "Variations: 1, 2, 3, 4 +2 more", FormatVariations([]string{"1", "2", "3", "4", "5", "6"}))
}

func TestStartIndexes(t *testing.T) {
	logs := []Log{
		{Level: "log", Text: "boot"},
		{Level: "log", Text: "poll"},
		{Level: "log", Text: "poll"},
		{Level: "log", Text: "poll"},
	}
	blocks := Compress(logs)
	require.Len(t, blocks, 2)
	assert.Equal(t, 0, blocks[0].Start)
	assert.Equal(t, 1, blocks[1].Start)
}
