package scoring

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
)

// Result is the assessment returned by the scoring service. Fields the
// service omitted, or sent with an unusable type, stay nil.
type Result struct {
	Score          any
	WordsPerMinute *float64
	Accuracy       any
	Transcript     *string
	Feedback       []string
}

// ParseResult decodes a response body field by field. It never fails: a
// malformed body yields an empty Result and a bad field is left absent.
func ParseResult(body []byte, logger *slog.Logger) Result {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		logDebug(logger, "score response is not a JSON object", "error", err.Error())
		return Result{}
	}

	var result Result
	if v, ok := raw["score"]; ok && isScalar(v) {
		result.Score = v
	}
	if v, ok := raw["accuracy"]; ok && isScalar(v) {
		result.Accuracy = v
	}

	var wpm float64
	if decodeField(raw, "wordsPerMinute", &wpm, logger) {
		result.WordsPerMinute = &wpm
	}
	var transcript string
	if decodeField(raw, "transcript", &transcript, logger) {
		result.Transcript = &transcript
	}
	result.Feedback = parseFeedback(raw["feedback"])
	return result
}

// parseFeedback keeps list order and turns a scalar into a one-item list.
func parseFeedback(v any) []string {
	switch typed := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(typed)}
	}
}

// decodeField weakly decodes raw[key] into target, reporting whether it succeeded.
func decodeField(raw map[string]any, key string, target any, logger *slog.Logger) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return false
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return false
	}
	if err := decoder.Decode(v); err != nil {
		logDebug(logger, "ignoring score response field", "field", key, "error", err.Error())
		return false
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, float64, bool:
		return true
	default:
		return false
	}
}

func stringify(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		return fmt.Sprintf("%g", typed)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	}
}

func logDebug(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Debug(msg, args...)
}
