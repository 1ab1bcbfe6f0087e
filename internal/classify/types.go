package classify

import "github.com/mailendar/mailendar/internal/rules"

// Undetermined marks a time intentionally left unresolved, distinct from
// empty/missing. Korean model output uses 미정 for the same thing.
const (
	Undetermined   = "undetermined"
	UndeterminedKo = "미정"
)

// Email is the raw input to one classification call.
type Email struct {
	Sender  string
	Subject string
	Snippet string
	Body    string
}

// Extracted carries the fields handed to calendar/task creation. StartTime
// and EndTime are RFC3339 strings or the Undetermined sentinel.
type Extracted struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	GuardrailReason string `json:"guardrailReason,omitempty"`
	DTSource        string `json:"dtSource,omitempty"`
}

// Classification is the final merged decision for one email.
type Classification struct {
	Category     rules.Category         `json:"category"`
	Urgency      int                    `json:"urgency"`
	RuleScores   map[rules.Category]int `json:"rule_scores"`
	Confidence   float64                `json:"confidence"`
	NeedsReview  bool                   `json:"needs_review"`
	Extracted    Extracted              `json:"extracted"`
	ReviewReason string                 `json:"review_reason,omitempty"`
}
