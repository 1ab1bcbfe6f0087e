package rules

import (
	"regexp"

	"github.com/mailendar/mailendar/internal/extract"
)

// Signals are boolean high-confidence hints derived from pattern matching.
// They break keyword-score ties and feed the category guardrails.
type Signals struct {
	Unsubscribe   bool `json:"unsubscribe"`
	MeetLink      bool `json:"meet_link"`
	DatetimeLabel bool `json:"datetime_label"`
	LocationLabel bool `json:"location_label"`
	TimeRange     bool `json:"time_range"`
	Deadline      bool `json:"deadline"`
}

// SignalDetector applies the signal patterns against raw and cleaned text.
type SignalDetector struct {
	unsubscribe   *regexp.Regexp
	meetLink      *regexp.Regexp
	datetimeLabel *regexp.Regexp
	locationLabel *regexp.Regexp
	deadline      *regexp.Regexp
}

// NewSignalDetector builds the default detector.
func NewSignalDetector() *SignalDetector {
	return &SignalDetector{
		unsubscribe:   regexp.MustCompile(`(?i)(\bunsubscribe\b|\bopt\s*out\b|수신\s*거부)`),
		meetLink:      regexp.MustCompile(`(?i)(meet\.google\.com|zoom\.us|teams\.microsoft\.com|webex\.com)`),
		datetimeLabel: regexp.MustCompile(`(?im)^\s*(일시|시간|when|date)\s*[:：]`),
		locationLabel: regexp.MustCompile(`(?im)^\s*(장소|위치|location)\s*[:：]`),
		// Deadline phrases like "오후 6시까지" / "18:00까지" / "12. 12.(금) 오후 6시까지".
		deadline: regexp.MustCompile(`(?i)(오늘|금일|내일|\d{1,2}\s*[./-]\s*\d{1,2}|\d{4}\s*[./-]\s*\d{1,2}\s*[./-]\s*\d{1,2})?\s*.*?(\b\d{1,2}:\d{2}\b|(?:오전|오후)?\s*\d{1,2}\s*시(?:\s*\d{1,2}\s*분)?).*?까지`),
	}
}

// Detect evaluates all signals. Label signals run against the cleaned text so
// forwarded headers cannot fake them; the timeRange signal requires a
// concrete extracted start AND end (an all-day window does not count).
func (d *SignalDetector) Detect(text, cleaned string, ev *extract.Event) Signals {
	return Signals{
		Unsubscribe:   d.unsubscribe.MatchString(text),
		MeetLink:      d.meetLink.MatchString(text),
		DatetimeLabel: d.datetimeLabel.MatchString(cleaned),
		LocationLabel: d.locationLabel.MatchString(cleaned),
		TimeRange:     ev != nil && !ev.AllDay,
		Deadline:      d.deadline.MatchString(text),
	}
}

// Boost applies the fixed per-signal point boosts before category picking.
func (s Signals) Boost(scores map[Category]int) {
	if s.Unsubscribe {
		scores[CategorySpam] += 15
	}
	if s.MeetLink {
		scores[CategorySchedule] += 15
	}
	if s.DatetimeLabel {
		scores[CategorySchedule] += 12
	}
	if s.LocationLabel {
		scores[CategorySchedule] += 6
	}
	if s.TimeRange {
		scores[CategorySchedule] += 25
	}
}
