package normalizer

import (
	"net/mail"
	"time"
)

// Epoch seconds outside this range are treated as malformed
// (1970-01-01 .. 9999-12-31).
const maxEpochSeconds = 253402300799

// parseISO8601 passes an already-ISO-8601 timestamp through unchanged
func parseISO8601(field string) func(raw map[string]any) *string {
	return func(raw map[string]any) *string {
		ts, ok := raw[field].(string)
		if !ok || ts == "" {
			return nil
		}
		return &ts
	}
}

// parseEpoch converts integer Unix epoch seconds to UTC ISO-8601. JSON
// decoding hands numbers over as float64, so both encodings are accepted.
func parseEpoch(field string) func(raw map[string]any) *string {
	return func(raw map[string]any) *string {
		var epoch int64
		switch v := raw[field].(type) {
		case int64:
			epoch = v
		case int:
			epoch = int64(v)
		case float64:
			epoch = int64(v)
		default:
			return nil
		}
		if epoch < 0 || epoch > maxEpochSeconds {
			return nil
		}
		iso := time.Unix(epoch, 0).UTC().Format(time.RFC3339)
		return &iso
	}
}

// parseDayFirst parses DD/MM/YYYY HH:MM:SS, tagging the result UTC
func parseDayFirst(field string) func(raw map[string]any) *string {
	return func(raw map[string]any) *string {
		ts, ok := raw[field].(string)
		if !ok || ts == "" {
			return nil
		}
		t, err := time.ParseInLocation("02/01/2006 15:04:05", ts, time.UTC)
		if err != nil {
			return nil
		}
		iso := t.Format(time.RFC3339)
		return &iso
	}
}

// parseRFC2822 parses an RFC-2822 date string and converts to UTC ISO-8601
func parseRFC2822(field string) func(raw map[string]any) *string {
	return func(raw map[string]any) *string {
		ts, ok := raw[field].(string)
		if !ok || ts == "" {
			return nil
		}
		t, err := mail.ParseDate(ts)
		if err != nil {
			return nil
		}
		iso := t.UTC().Format(time.RFC3339)
		return &iso
	}
}
