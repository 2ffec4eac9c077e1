package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/recite/internal/scoring"
)

func ptr[T any](v T) *T { return &v }

func TestBuildAllFields(t *testing.T) {
	report := Build(scoring.Result{
		Score:          8.46,
		WordsPerMinute: ptr(142.7),
		Accuracy:       "91%",
		Transcript:     ptr("hello there"),
		Feedback:       []string{"first", "second", "third"},
	})

	require.Equal(t, "8.5 / 10", report.Score)
	require.Equal(t, "143", report.WordsPerMinute)
	require.Equal(t, "91%", report.Accuracy)
	require.Equal(t, "hello there", report.Transcript)
	require.Equal(t, []string{"first", "second", "third"}, report.Feedback)
}

func TestBuildMissingFieldsRenderNA(t *testing.T) {
	report := Build(scoring.Result{})

	require.Equal(t, Missing, report.Score)
	require.Equal(t, Missing, report.WordsPerMinute)
	require.Equal(t, Missing, report.Accuracy)
	require.Equal(t, Missing, report.Transcript)
	require.Equal(t, []string{Missing}, report.Feedback)
}

func TestBuildScenarioResponse(t *testing.T) {
	result := scoring.ParseResult([]byte(`{"score": 8.5, "wordsPerMinute": 142.7, "transcript": "hello"}`), nil)
	report := Build(result)

	require.Equal(t, "8.5 / 10", report.Score)
	require.Equal(t, "143", report.WordsPerMinute)
	require.Equal(t, "N/A", report.Accuracy)
	require.Equal(t, "hello", report.Transcript)
	require.Equal(t, []string{"N/A"}, report.Feedback)
}

func TestFormatScore(t *testing.T) {
	require.Equal(t, "7.0 / 10", formatScore(7.0))
	require.Equal(t, "6.3 / 10", formatScore("6.26"))
	require.Equal(t, "great / 10", formatScore("great"))
	require.Equal(t, Missing, formatScore("  "))
	require.Equal(t, "true / 10", formatScore(true))
}

func TestFormatValue(t *testing.T) {
	require.Equal(t, "0.92", formatValue(0.92))
	require.Equal(t, "88", formatValue(88.0))
	require.Equal(t, Missing, formatValue(""))
	require.Equal(t, "false", formatValue(false))
}

func TestReportString(t *testing.T) {
	text := Build(scoring.Result{Score: 5.0, Feedback: []string{"a", "b"}}).String()
	require.Contains(t, text, "Score: 5.0 / 10")
	require.Contains(t, text, "Words per minute: N/A")
	require.Contains(t, text, "Feedback:\n  - a\n  - b")
}

func TestBuildUnmeasuredWordsPerMinuteRendersNA(t *testing.T) {
	tests := []struct {
		name string
		wpm  *float64
		want string
	}{
		{name: "absent", wpm: nil, want: Missing},
		{name: "zero", wpm: ptr(0.0), want: Missing},
		{name: "nan", wpm: ptr(math.NaN()), want: Missing},
		{name: "slow reader", wpm: ptr(0.6), want: "1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Build(scoring.Result{WordsPerMinute: tc.wpm}).WordsPerMinute)
		})
	}
}
