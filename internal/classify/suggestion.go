package classify

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mailendar/mailendar/internal/rules"
)

// Suggestion is the validated form of one external AI model response. Every
// field is optional; an all-zero Suggestion means the model said nothing
// usable. The core treats it as untrusted input throughout.
type Suggestion struct {
	Category    rules.Category
	Title       string
	Description string
	Location    string
	StartTime   string
	EndTime     string
	NeedsReview bool
}

// IsZero reports whether no usable field was extracted.
func (s Suggestion) IsZero() bool {
	return s.Category == "" && s.Title == "" && s.Description == "" &&
		s.Location == "" && s.StartTime == "" && s.EndTime == "" && !s.NeedsReview
}

// ParseSuggestion recovers a Suggestion from raw model output. Any level of
// malformation degrades to an empty Suggestion, never an error: prose around
// the JSON is stripped, broken JSON goes through a repair pass, and fields of
// the wrong type are treated as absent.
func ParseSuggestion(raw string) Suggestion {
	payload := extractJSON(raw)
	if payload == "" {
		return Suggestion{}
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(payload)
		if rerr != nil {
			return Suggestion{}
		}
		if err := json.Unmarshal([]byte(repaired), &m); err != nil {
			return Suggestion{}
		}
	}

	return Suggestion{
		Category:    rules.ParseCategory(stringField(m, "category")),
		Title:       stringField(m, "title"),
		Description: stringField(m, "description"),
		Location:    stringField(m, "location"),
		StartTime:   stringField(m, "startTime", "start_time"),
		EndTime:     stringField(m, "endTime", "end_time"),
		NeedsReview: boolField(m, "needs_review", "needsReview"),
	}
}

// extractJSON returns the outermost brace-delimited block, or "".
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func boolField(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := m[k].(bool); ok {
			return v
		}
	}
	return false
}
