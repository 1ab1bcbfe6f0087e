package rules

import (
	"regexp"
	"strings"
	"time"

	"github.com/mailendar/mailendar/internal/extract"
)

// UrgencyScorer computes a 0-100 urgency value from urgent/action wording,
// deadline phrasing and temporal proximity to a resolved start time.
type UrgencyScorer struct {
	urgentWords []KeywordWeight
	actionWords []KeywordWeight
	deadline    *regexp.Regexp
}

// NewUrgencyScorer returns a scorer with the default word tables.
func NewUrgencyScorer() *UrgencyScorer {
	return &UrgencyScorer{
		urgentWords: []KeywordWeight{
			{"긴급", 25}, {"asap", 25}, {"즉시", 20}, {"최대한 빨리", 20},
			{"중요", 10}, {"오늘까지", 25}, {"금일", 10}, {"내일", 10},
			{"마감", 15}, {"기한", 15}, {"eod", 15},
		},
		actionWords: []KeywordWeight{
			{"회신", 12}, {"확인", 10}, {"검토", 10}, {"승인", 10},
			{"제출", 15}, {"답변", 10}, {"수정", 8}, {"작성", 8},
		},
		deadline: regexp.MustCompile(`(?i)(오늘|금일|내일|\d{1,2}\s*[./-]\s*\d{1,2}|\d{4}\s*[./-]\s*\d{1,2}\s*[./-]\s*\d{1,2})?\s*.*?(\b\d{1,2}:\d{2}\b|(?:오전|오후)?\s*\d{1,2}\s*시(?:\s*\d{1,2}\s*분)?).*?까지`),
	}
}

// Score returns urgency in [0,100]. start is the extracted event start, nil
// when extraction found nothing. now is the caller-supplied reference time.
func (u *UrgencyScorer) Score(text string, start *time.Time, now time.Time) int {
	t := normalize(text)

	score := 0
	for _, w := range u.urgentWords {
		if strings.Contains(t, strings.ToLower(w.Keyword)) {
			score += w.Weight
		}
	}
	for _, w := range u.actionWords {
		if strings.Contains(t, strings.ToLower(w.Keyword)) {
			score += w.Weight
		}
	}

	m := u.deadline.FindStringSubmatch(text)
	if m != nil {
		score += 35
	}

	// Proximity: the event start wins; with no event, a time resolved from
	// the deadline phrase itself still counts (its date defaults to today).
	near := start
	if near == nil && m != nil {
		near = deadlineTime(m, now)
	}
	if near != nil {
		score += proximityBonus(near.Sub(now).Minutes())
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// proximityBonus applies exactly one band, tightest first.
func proximityBonus(minutes float64) int {
	switch {
	case minutes >= 0 && minutes <= 60:
		return 45
	case minutes >= 0 && minutes <= 120:
		return 35
	case minutes >= 0 && minutes <= 24*60:
		return 20
	default:
		return 0
	}
}

// deadlineTime resolves the date and time tokens captured by the deadline
// pattern against now. An absent or unrecognized date token means today.
func deadlineTime(m []string, now time.Time) *time.Time {
	mi, ok := extract.TimeOfDay(m[2])
	if !ok {
		return nil
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch tok := strings.TrimSpace(m[1]); tok {
	case "", "오늘", "금일":
		// today
	case "내일":
		day = day.AddDate(0, 0, 1)
	default:
		if d, ok := extract.DateToken(tok, now); ok {
			day = d
		}
	}

	t := day.Add(time.Duration(mi) * time.Minute)
	return &t
}
