package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/rules"
)

var kst = time.FixedZone("KST", 9*60*60)

func fixedNow() time.Time {
	return time.Date(2026, 1, 16, 10, 0, 0, 0, kst)
}

type stubRefiner struct {
	raw string
	err error
}

func (s stubRefiner) Refine(ctx context.Context, email classify.Email, rule *rules.Analysis) (string, error) {
	return s.raw, s.err
}

func TestClassifyWithSuggestion(t *testing.T) {
	raw := `{"category": "SCHEDULE", "title": "팀 회의", "startTime": "미정", "needs_review": false}`
	p := New(stubRefiner{raw: raw}, nil).WithNow(fixedNow)

	email := classify.Email{
		Subject: "회의 안내",
		Body:    "회의 일시: 2026-01-16 14:00 ~ 16:00, 장소: 3층 회의실",
	}
	got := p.Classify(context.Background(), email)

	assert.Equal(t, rules.CategorySchedule, got.Category)
	assert.Equal(t, "팀 회의", got.Extracted.Title)
	assert.Equal(t, "2026-01-16T14:00:00+09:00", got.Extracted.StartTime)
	assert.False(t, got.NeedsReview)
	assert.Equal(t, "llm_refine", got.ReviewReason)
}

func TestClassifyRefinerErrorDegrades(t *testing.T) {
	p := New(stubRefiner{err: errors.New("boom")}, nil).WithNow(fixedNow)

	email := classify.Email{
		Subject: "보고서 제출 요청",
		Body:    "금일 오후 6시까지 회신 부탁드립니다",
	}
	got := p.Classify(context.Background(), email)

	assert.Equal(t, rules.CategoryTask, got.Category)
	assert.True(t, got.NeedsReview)
	assert.GreaterOrEqual(t, got.Urgency, 70)
	assert.Equal(t, "llm_refine", got.ReviewReason)
}

func TestClassifyUnusableSuggestionDegrades(t *testing.T) {
	p := New(stubRefiner{raw: "판단할 수 없습니다."}, nil).WithNow(fixedNow)

	got := p.Classify(context.Background(), classify.Email{Subject: "확인 요청", Body: "자료 확인 부탁드립니다."})

	assert.Equal(t, rules.CategoryTask, got.Category)
	assert.True(t, got.NeedsReview)
}

func TestClassifyRuleOnly(t *testing.T) {
	p := New(nil, nil).WithNow(fixedNow)

	got := p.Classify(context.Background(), classify.Email{
		Subject: "회의 안내",
		Body:    "회의 일시: 2026-01-16 14:00 ~ 16:00",
	})

	assert.Equal(t, rules.CategorySchedule, got.Category)
	assert.True(t, got.NeedsReview)
	assert.Equal(t, "", got.ReviewReason)
}

func TestClassifyGuardrailReasonAppended(t *testing.T) {
	raw := `{"category": "SCHEDULE", "title": "내일 점심", "startTime": "미정", "needs_review": true}`
	p := New(stubRefiner{raw: raw}, nil).WithNow(fixedNow)

	got := p.Classify(context.Background(), classify.Email{
		Subject: "내일 점심 어때?",
		Body:    "내일 점심 같이 먹을까? 시간 알려줘.",
	})

	assert.Equal(t, rules.CategorySchedule, got.Category)
	assert.True(t, got.NeedsReview)
	assert.Equal(t, classify.Undetermined, got.Extracted.StartTime)
	assert.Equal(t, "llm_refine,vague_schedule_time", got.ReviewReason)
}

func TestClassifySpamOverrideClearsReview(t *testing.T) {
	p := New(nil, nil).WithNow(fixedNow)

	got := p.Classify(context.Background(), classify.Email{
		Subject: "(광고) 1월 뉴스레터",
		Body:    "특가 할인 쿠폰 프로모션 안내! 수신거부를 원하시면 클릭하세요.",
	})

	assert.Equal(t, rules.CategorySpam, got.Category)
	assert.False(t, got.NeedsReview)
}
