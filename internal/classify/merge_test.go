package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mailendar/mailendar/internal/extract"
	"github.com/mailendar/mailendar/internal/rules"
)

var kst = time.FixedZone("KST", 9*60*60)

func mergeNow() time.Time {
	return time.Date(2026, 1, 16, 10, 0, 0, 0, kst)
}

func zeroScores() map[rules.Category]int {
	return map[rules.Category]int{rules.CategorySpam: 0, rules.CategorySchedule: 0, rules.CategoryTask: 0}
}

func TestMergeRuleTimeWinsOverSuggestion(t *testing.T) {
	ev := &extract.Event{
		Start:  time.Date(2026, 1, 16, 14, 0, 0, 0, kst),
		End:    time.Date(2026, 1, 16, 16, 0, 0, 0, kst),
		Source: "line_range24:회의 일시",
	}
	rule := rules.Analysis{
		Scores:    zeroScores(),
		Event:     ev,
		Predicted: rules.CategorySchedule,
		Signals:   rules.Signals{TimeRange: true},
	}
	sug := Suggestion{
		Category:  rules.CategorySchedule,
		Title:     "팀 미팅",
		StartTime: "2026-01-17T09:00:00+09:00",
		EndTime:   "2026-01-17T10:00:00+09:00",
	}

	got := Merge(Email{Subject: "회의 안내"}, rule, sug, mergeNow())

	assert.Equal(t, "2026-01-16T14:00:00+09:00", got.Extracted.StartTime)
	assert.Equal(t, "2026-01-16T16:00:00+09:00", got.Extracted.EndTime)
	assert.Equal(t, ev.Source, got.Extracted.DTSource)
	assert.Equal(t, rules.CategorySchedule, got.Category)
	assert.False(t, got.NeedsReview)
	assert.Equal(t, 0.9, got.Confidence)
}

func TestMergeBackfillsFromHeuristics(t *testing.T) {
	rule := rules.Analysis{Scores: zeroScores(), Predicted: rules.CategoryTask}
	email := Email{
		Subject: "RE: 보고서 검토 요청",
		Body:    "보고서 확인 부탁드립니다.\n장소: 본관 2층",
	}

	got := Merge(email, rule, Suggestion{}, mergeNow())

	assert.Equal(t, "보고서 검토 요청", got.Extracted.Title)
	assert.Equal(t, "본관 2층", got.Extracted.Location)
	assert.Equal(t, rules.CategoryTask, got.Category)
}

func TestMergeVagueScheduleTriggersGuardrail(t *testing.T) {
	rule := rules.Analysis{
		Scores:    zeroScores(),
		Predicted: rules.CategoryTask,
		Event: &extract.Event{
			Start:  time.Date(2026, 1, 17, 0, 0, 0, 0, kst),
			End:    time.Date(2026, 1, 18, 0, 0, 0, 0, kst),
			AllDay: true,
			Source: "date_only_all_day",
		},
	}
	sug := Suggestion{Category: rules.CategorySchedule, Title: "내일 점심", StartTime: "미정"}
	email := Email{Subject: "내일 점심 어때?", Body: "내일 점심 같이 먹을까? 시간 알려줘."}

	got := Merge(email, rule, sug, mergeNow())

	assert.Equal(t, rules.CategorySchedule, got.Category)
	assert.True(t, got.NeedsReview)
	assert.Equal(t, Undetermined, got.Extracted.StartTime)
	assert.Equal(t, GuardrailVagueScheduleTime, got.Extracted.GuardrailReason)
}

func TestMergeScheduleWithMalformedAITime(t *testing.T) {
	rule := rules.Analysis{Scores: zeroScores(), Predicted: rules.CategorySchedule}
	sug := Suggestion{Category: rules.CategorySchedule, StartTime: "내일TBD쯤"}

	got := Merge(Email{Subject: "일정"}, rule, sug, mergeNow())

	assert.True(t, got.NeedsReview)
	assert.Equal(t, Undetermined, got.Extracted.StartTime)
	assert.Equal(t, GuardrailVagueScheduleTime, got.Extracted.GuardrailReason)
}

func TestMergeSpamOverride(t *testing.T) {
	scores := zeroScores()
	scores[rules.CategorySpam] = 36
	rule := rules.Analysis{
		Scores:    scores,
		Predicted: rules.CategorySpam,
		Signals:   rules.Signals{Unsubscribe: true},
	}
	sug := Suggestion{Category: rules.CategoryTask, NeedsReview: true}

	got := Merge(Email{Subject: "(광고) 특가 안내"}, rule, sug, mergeNow())

	assert.Equal(t, rules.CategorySpam, got.Category)
	assert.False(t, got.NeedsReview)
}

func TestMergeConfidenceFloors(t *testing.T) {
	rule := rules.Analysis{Scores: zeroScores(), Predicted: rules.CategoryTask}

	disagree := Merge(Email{}, rule, Suggestion{Category: rules.CategorySchedule, StartTime: "2026-01-17T09:00:00+09:00"}, mergeNow())
	assert.Equal(t, 0.6, disagree.Confidence)

	agree := Merge(Email{}, rule, Suggestion{Category: rules.CategoryTask}, mergeNow())
	assert.Equal(t, 0.85, agree.Confidence)
}

func TestMergeNormalizesKoreanSentinel(t *testing.T) {
	rule := rules.Analysis{Scores: zeroScores(), Predicted: rules.CategoryTask}
	sug := Suggestion{Category: rules.CategoryTask, StartTime: "미정", EndTime: "미정"}

	got := Merge(Email{Subject: "확인 요청"}, rule, sug, mergeNow())

	assert.Equal(t, Undetermined, got.Extracted.StartTime)
	assert.Equal(t, Undetermined, got.Extracted.EndTime)
}

func TestMergeReextractsWhenAIUndetermined(t *testing.T) {
	rule := rules.Analysis{Scores: zeroScores(), Predicted: rules.CategorySchedule}
	sug := Suggestion{Category: rules.CategorySchedule, StartTime: "미정"}
	email := Email{Body: "일시: 2026-01-20 14:00 ~ 15:00"}

	got := Merge(email, rule, sug, mergeNow())

	assert.Equal(t, "2026-01-20T14:00:00+09:00", got.Extracted.StartTime)
	assert.Equal(t, "2026-01-20T15:00:00+09:00", got.Extracted.EndTime)
	assert.False(t, got.NeedsReview)
}
