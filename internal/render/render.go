// Package render formats score results for display.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rbright/recite/internal/scoring"
)

// Missing is shown for any field the service did not return.
const Missing = "N/A"

// Report is the display form of one score result.
type Report struct {
	Score          string
	WordsPerMinute string
	Accuracy       string
	Transcript     string
	Feedback       []string
}

// Build converts a result into display strings.
func Build(result scoring.Result) Report {
	report := Report{
		Score:          formatScore(result.Score),
		WordsPerMinute: Missing,
		Accuracy:       formatValue(result.Accuracy),
		Transcript:     Missing,
		Feedback:       []string{Missing},
	}
	// A zero or NaN rate means the service could not measure one.
	if wpm := result.WordsPerMinute; wpm != nil && *wpm != 0 && !math.IsNaN(*wpm) {
		report.WordsPerMinute = strconv.FormatFloat(math.Round(*wpm), 'f', 0, 64)
	}
	if result.Transcript != nil {
		report.Transcript = *result.Transcript
	}
	if len(result.Feedback) > 0 {
		report.Feedback = append([]string(nil), result.Feedback...)
	}
	return report
}

// Lines returns the labelled report rows in display order.
func (r Report) Lines() []string {
	lines := []string{
		"Score: " + r.Score,
		"Words per minute: " + r.WordsPerMinute,
		"Accuracy: " + r.Accuracy,
		"Transcript: " + r.Transcript,
		"Feedback:",
	}
	for _, item := range r.Feedback {
		lines = append(lines, "  - "+item)
	}
	return lines
}

func (r Report) String() string {
	return strings.Join(r.Lines(), "\n")
}

// formatScore shows numeric scores with one decimal out of ten.
func formatScore(v any) string {
	switch typed := v.(type) {
	case nil:
		return Missing
	case float64:
		return fmt.Sprintf("%.1f / 10", typed)
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return Missing
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return fmt.Sprintf("%.1f / 10", f)
		}
		return trimmed + " / 10"
	default:
		return fmt.Sprintf("%v / 10", typed)
	}
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return Missing
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case string:
		if strings.TrimSpace(typed) == "" {
			return Missing
		}
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
