package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailendar/mailendar/internal/google"
)

type fakeChatter struct {
	system string
	user   string
	reply  string
}

func (f *fakeChatter) Chat(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.system = systemPrompt
	f.user = userPrompt
	return f.reply, nil
}

func TestDailyBriefEmbedsData(t *testing.T) {
	chatter := &fakeChatter{reply: "# 브리핑"}
	a := New(chatter)

	events := []google.Event{{ID: "e1", Summary: "팀 미팅", Start: "2026-01-16T14:00:00+09:00", End: "2026-01-16T15:00:00+09:00"}}
	tasks := []google.Task{{ID: "t1", Title: "보고서 제출"}}

	out, err := a.DailyBrief(t.Context(), events, tasks)
	require.NoError(t, err)
	assert.Equal(t, "# 브리핑", out)
	assert.Contains(t, chatter.user, `"summary":"팀 미팅"`)
	assert.Contains(t, chatter.user, `"title":"보고서 제출"`)
	assert.Contains(t, chatter.user, "[clean_events]")
}

func TestDailyBriefNilSlicesBecomeEmptyArrays(t *testing.T) {
	chatter := &fakeChatter{reply: "ok"}
	a := New(chatter)

	_, err := a.DailyBrief(t.Context(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, chatter.user, "[clean_events]\n[]")
	assert.Contains(t, chatter.user, "[clean_tasks]\n[]")
}

func TestReplyDraftIncludesHint(t *testing.T) {
	chatter := &fakeChatter{reply: "초안"}
	a := New(chatter)

	_, err := a.ReplyDraft(t.Context(), "[FROM]\nkim@example.com", "정중하게 거절해줘")
	require.NoError(t, err)
	assert.Contains(t, chatter.user, "[추가 요청]\n정중하게 거절해줘")
	assert.Contains(t, chatter.user, "[이메일]\n[FROM]\nkim@example.com")
}

func TestRefineReplyEmptyInstructionReturnsDraft(t *testing.T) {
	chatter := &fakeChatter{reply: "수정본"}
	a := New(chatter)

	out, err := a.RefineReply(t.Context(), "ctx", "현재 초안", "   ")
	require.NoError(t, err)
	assert.Equal(t, "현재 초안", out)
	assert.Empty(t, chatter.user)

	out, err = a.RefineReply(t.Context(), "ctx", "현재 초안", "더 짧게")
	require.NoError(t, err)
	assert.Equal(t, "수정본", out)
	assert.Contains(t, chatter.user, "[사용자 요청]\n더 짧게")
}
