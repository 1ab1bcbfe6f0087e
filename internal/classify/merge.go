package classify

import (
	"time"

	"github.com/mailendar/mailendar/internal/extract"
	"github.com/mailendar/mailendar/internal/rules"
)

// GuardrailVagueScheduleTime tags a SCHEDULE decision whose start time could
// not be pinned to a concrete clock time.
const GuardrailVagueScheduleTime = "vague_schedule_time"

// Merge reconciles the rule analysis with an (untrusted, possibly empty) AI
// suggestion into the final Classification. Precedence rules:
//   - a concrete rule-extracted (start,end) always wins over AI times;
//   - empty AI text fields are back-filled from subject/body heuristics;
//   - the vague-schedule guardrail and the spam override are not
//     overridable by the suggestion.
//
// Merge never fails; any input yields a well-formed Classification.
func Merge(email Email, rule rules.Analysis, sug Suggestion, now time.Time) Classification {
	ex := Extracted{
		Title:       sug.Title,
		Description: sug.Description,
		Location:    sug.Location,
		StartTime:   sug.StartTime,
		EndTime:     sug.EndTime,
	}

	if ex.Title == "" {
		ex.Title = CleanSubject(email.Subject)
	}
	if ex.Location == "" {
		ex.Location = Location(email.Body)
	}
	if ex.Description == "" {
		ex.Description = DescriptionBlock(email.Body)
	}

	// Time precedence: a concrete rule extraction always wins. Otherwise,
	// when the AI passed nothing or the sentinel, re-running the extractor
	// over the body is the last resort.
	allDay := false
	if rule.Event != nil && !rule.Event.AllDay {
		ex.StartTime = rule.Event.Start.Format(time.RFC3339)
		ex.EndTime = rule.Event.End.Format(time.RFC3339)
		ex.DTSource = rule.Event.Source
	} else if isUndetermined(ex.StartTime) {
		if ev := extract.EventTimes(email.Body, now); ev != nil {
			ex.StartTime = ev.Start.Format(time.RFC3339)
			ex.EndTime = ev.End.Format(time.RFC3339)
			ex.DTSource = ev.Source
			allDay = ev.AllDay
		}
	}

	category := sug.Category
	if !category.IsValid() {
		category = rule.Predicted
	}

	needsReview := sug.NeedsReview

	if category == rules.CategorySchedule {
		if !concreteTime(ex.StartTime) || allDay {
			needsReview = true
			ex.StartTime = Undetermined
			ex.GuardrailReason = GuardrailVagueScheduleTime
		}
	}

	// Spam override: a strong unsubscribe signal is final, whatever the
	// suggestion claimed.
	if rule.Signals.Unsubscribe && rule.Scores[rules.CategorySpam] >= 12 {
		category = rules.CategorySpam
		needsReview = false
	}

	conf := 0.6
	if sug.Category != "" && sug.Category == rule.Predicted {
		conf = 0.85
	}
	if rule.Signals.TimeRange {
		conf = max(conf, 0.9)
	}

	if ex.StartTime == UndeterminedKo {
		ex.StartTime = Undetermined
	}
	if ex.EndTime == UndeterminedKo {
		ex.EndTime = Undetermined
	}

	return Classification{
		Category:    category,
		Urgency:     rule.Urgency,
		RuleScores:  rule.Scores,
		Confidence:  conf,
		NeedsReview: needsReview,
		Extracted:   ex,
	}
}

func isUndetermined(v string) bool {
	return v == "" || v == Undetermined || v == UndeterminedKo
}

// concreteTime reports whether v is a well-formed RFC3339 timestamp with a
// time component.
func concreteTime(v string) bool {
	if v == "" || v == Undetermined || v == UndeterminedKo {
		return false
	}
	_, err := time.Parse(time.RFC3339, v)
	return err == nil
}
