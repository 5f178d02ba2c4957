package rubric

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-audit-go/internal/types"
)

func TestFormatTranscript(t *testing.T) {
	segments := []types.TranscriptSegment{
		{Start: 0.0, End: 2.0, Speaker: "agent", Text: "Hello"},
		{Start: 2.0, End: 4.5, Speaker: "customer", Text: "Hi there"},
	}

	got := FormatTranscript(segments)

	assert.Equal(t, "[0.00-2.00] agent: Hello\n[2.00-4.50] customer: Hi there", got)
}

func TestFormatTranscriptEmpty(t *testing.T) {
	assert.Equal(t, "", FormatTranscript(nil))
}

// The rendered lines are the oracle's input contract; parsing them back
// must recover the original tuples.
func TestFormatTranscriptRoundTrip(t *testing.T) {
	segments := []types.TranscriptSegment{
		{Start: 0.0, End: 2.0, Speaker: "agent", Text: "Hello"},
		{Start: 2.0, End: 4.5, Speaker: "customer", Text: "Hi there: I need help"},
		{Start: 4.5, End: 7.0, Speaker: "agent", Text: "How can I help?"},
	}

	lines := strings.Split(FormatTranscript(segments), "\n")
	require.Len(t, lines, len(segments))

	for i, line := range lines {
		start, end, speaker, text := parseLine(t, line)
		assert.InDelta(t, segments[i].Start, start, 1e-9)
		assert.InDelta(t, segments[i].End, end, 1e-9)
		assert.Equal(t, segments[i].Speaker, speaker)
		assert.Equal(t, segments[i].Text, text)
	}
}

func parseLine(t *testing.T, line string) (start, end float64, speaker, text string) {
	t.Helper()

	require.True(t, strings.HasPrefix(line, "["), "line %q", line)
	closing := strings.Index(line, "] ")
	require.Positive(t, closing, "line %q", line)

	ts := line[1:closing]
	bounds := strings.SplitN(ts, "-", 2)
	require.Len(t, bounds, 2)
	start, err := strconv.ParseFloat(bounds[0], 64)
	require.NoError(t, err)
	end, err = strconv.ParseFloat(bounds[1], 64)
	require.NoError(t, err)

	rest := strings.SplitN(line[closing+2:], ": ", 2)
	require.Len(t, rest, 2)
	return start, end, rest[0], rest[1]
}
