package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTAGE_API_KEY")
}

func TestChat(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"category": "TASK"}`}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	content, err := c.Chat(t.Context(), "system text", "user text")
	require.NoError(t, err)
	assert.Equal(t, `{"category": "TASK"}`, content)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "solar-pro", gotReq.Model)
	assert.InDelta(t, 0.1, gotReq.Temperature, 0.001)
	assert.InDelta(t, 1.0, gotReq.TopP, 0.001)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user text", gotReq.Messages[1].Content)
}

func TestChatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Chat(t.Context(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Chat(t.Context(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestBuildEmailContext(t *testing.T) {
	ctx := BuildEmailContext("kim@example.com", "미팅 안내", "내일 오후 2시")
	assert.Contains(t, ctx, "[FROM]\nkim@example.com")
	assert.Contains(t, ctx, "[SUBJECT]\n미팅 안내")
	assert.Contains(t, ctx, "[BODY]\n내일 오후 2시")
}

func TestBuildEmailContextTruncatesLongBody(t *testing.T) {
	body := strings.Repeat("가", maxBodyContext+100)
	ctx := BuildEmailContext("a@b.c", "s", body)
	assert.Contains(t, ctx, "... (truncated)")
	// Truncation counts runes, so multibyte text is never split mid-character.
	assert.Equal(t, maxBodyContext, strings.Count(ctx, "가"))
}
