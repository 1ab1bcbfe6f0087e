package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailendar/mailendar/internal/rules"
)

func TestParseSuggestionValid(t *testing.T) {
	raw := `{"category": "SCHEDULE", "title": "팀 미팅", "startTime": "2026-01-16T14:00:00+09:00", "endTime": "미정", "needs_review": true}`

	sug := ParseSuggestion(raw)
	assert.Equal(t, rules.CategorySchedule, sug.Category)
	assert.Equal(t, "팀 미팅", sug.Title)
	assert.Equal(t, "2026-01-16T14:00:00+09:00", sug.StartTime)
	assert.Equal(t, "미정", sug.EndTime)
	assert.True(t, sug.NeedsReview)
}

func TestParseSuggestionStripsProse(t *testing.T) {
	raw := "알겠습니다. 분석 결과입니다:\n```json\n{\"category\": \"TASK\", \"title\": \"보고서 제출\"}\n```\n이상입니다."

	sug := ParseSuggestion(raw)
	assert.Equal(t, rules.CategoryTask, sug.Category)
	assert.Equal(t, "보고서 제출", sug.Title)
}

func TestParseSuggestionRepairsBrokenJSON(t *testing.T) {
	raw := `{"category": "TASK", "title": "과제 확인", "needs_review": true,}`

	sug := ParseSuggestion(raw)
	assert.Equal(t, rules.CategoryTask, sug.Category)
	assert.Equal(t, "과제 확인", sug.Title)
	assert.True(t, sug.NeedsReview)
}

func TestParseSuggestionKeyAliases(t *testing.T) {
	raw := `{"category": "schedule", "start_time": "2026-01-16T10:00:00+09:00", "needsReview": true}`

	sug := ParseSuggestion(raw)
	assert.Equal(t, rules.CategorySchedule, sug.Category)
	assert.Equal(t, "2026-01-16T10:00:00+09:00", sug.StartTime)
	assert.True(t, sug.NeedsReview)
}

func TestParseSuggestionWrongTypesIgnored(t *testing.T) {
	raw := `{"category": 5, "title": ["x"], "needs_review": "yes"}`

	sug := ParseSuggestion(raw)
	assert.True(t, sug.IsZero())
}

func TestParseSuggestionGarbage(t *testing.T) {
	for _, raw := range []string{"", "죄송합니다, 판단할 수 없습니다.", "}{", "null"} {
		assert.True(t, ParseSuggestion(raw).IsZero(), "raw %q", raw)
	}
}
