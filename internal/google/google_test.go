package google

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURLs(srv.Client(), nil, srv.URL, srv.URL, srv.URL)
}

func TestListMessageIDs(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/messages", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}},
		})
	}))

	ids, err := c.ListMessageIDs(t.Context(), "is:unread", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)
	assert.Equal(t, "is:unread", gotQuery)
}

func TestGetMessageDecodesBody(t *testing.T) {
	body := base64.RawURLEncoding.EncodeToString([]byte("일시: 1/20 오후 3시"))
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/messages/m1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "m1",
			"threadId": "t1",
			"snippet":  "일시: 1/20...",
			"payload": map[string]any{
				"mimeType": "multipart/alternative",
				"headers": []map[string]string{
					{"name": "From", "value": "kim@example.com"},
					{"name": "Subject", "value": "미팅 안내"},
				},
				"parts": []map[string]any{
					{
						"mimeType": "text/plain",
						"body":     map[string]string{"data": body},
					},
				},
			},
		})
	}))

	msg, err := c.GetMessage(t.Context(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "t1", msg.ThreadID)
	assert.Equal(t, "kim@example.com", msg.Sender)
	assert.Equal(t, "미팅 안내", msg.Subject)
	assert.Equal(t, "일시: 1/20 오후 3시", msg.Body)
}

func TestGetMessageFallsBackToSnippet(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "m1",
			"snippet": "짧은 요약",
			"payload": map[string]any{"mimeType": "text/html"},
		})
	}))

	msg, err := c.GetMessage(t.Context(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "짧은 요약", msg.Body)
}

func TestMarkRead(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/messages/batchModify", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.MarkRead(t.Context(), "m1", "m2"))
	assert.Equal(t, []any{"m1", "m2"}, gotBody["ids"])
	assert.Equal(t, []any{"UNREAD"}, gotBody["removeLabelIds"])

	// No IDs means no request at all.
	require.NoError(t, c.MarkRead(t.Context()))
}

func TestCoerceValidRange(t *testing.T) {
	start, end, fixed, err := CoerceValidRange("2026-01-16T14:00:00+09:00", "2026-01-16T16:00:00+09:00")
	require.NoError(t, err)
	assert.False(t, fixed)
	assert.Equal(t, "2026-01-16T14:00:00+09:00", start)
	assert.Equal(t, "2026-01-16T16:00:00+09:00", end)

	_, end, fixed, err = CoerceValidRange("2026-01-16T14:00:00+09:00", "2026-01-16T13:00:00+09:00")
	require.NoError(t, err)
	assert.True(t, fixed)
	assert.Equal(t, "2026-01-16T15:00:00+09:00", end)

	_, end, fixed, err = CoerceValidRange("2026-01-16T14:00:00+09:00", "미정")
	require.NoError(t, err)
	assert.True(t, fixed)
	assert.Equal(t, "2026-01-16T15:00:00+09:00", end)

	_, _, _, err = CoerceValidRange("미정", "")
	assert.Error(t, err)
}

func TestDateRangeToTimeMinMax(t *testing.T) {
	day := time.Date(2026, 1, 16, 15, 30, 0, 0, config.Seoul)

	timeMin, timeMax := DateRangeToTimeMinMax(day, day)
	assert.Equal(t, "2026-01-16T00:00:00+09:00", timeMin)
	assert.Equal(t, "2026-01-17T00:00:00+09:00", timeMax)

	// Reversed inputs are swapped.
	later := day.AddDate(0, 0, 3)
	timeMin, timeMax = DateRangeToTimeMinMax(later, day)
	assert.Equal(t, "2026-01-16T00:00:00+09:00", timeMin)
	assert.Equal(t, "2026-01-20T00:00:00+09:00", timeMax)
}

func TestCreateEventCoercesEnd(t *testing.T) {
	var gotBody calendarEventBody
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "ev1",
			"summary": gotBody.Summary,
			"start":   map[string]string{"dateTime": gotBody.Start.DateTime},
			"end":     map[string]string{"dateTime": gotBody.End.DateTime},
		})
	}))

	ev, err := c.CreateEvent(t.Context(), classify.Extracted{
		Title:     "팀 미팅",
		StartTime: "2026-01-16T14:00:00+09:00",
		EndTime:   classify.Undetermined,
	})
	require.NoError(t, err)
	assert.Equal(t, "ev1", ev.ID)
	assert.Equal(t, "2026-01-16T15:00:00+09:00", gotBody.End.DateTime)
	assert.Equal(t, "Asia/Seoul", gotBody.Start.TimeZone)
}

func TestListEventsFlattensStartEnd(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"id":      "e1",
					"summary": "스탠드업",
					"start":   map[string]string{"dateTime": "2026-01-16T10:00:00+09:00"},
					"end":     map[string]string{"dateTime": "2026-01-16T10:30:00+09:00"},
				},
				{
					"id":    "e2",
					"start": map[string]string{"date": "2026-01-16"},
					"end":   map[string]string{"date": "2026-01-17"},
				},
			},
		})
	}))

	events, err := c.ListEvents(t.Context(), "2026-01-16T00:00:00+09:00", "2026-01-17T00:00:00+09:00", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "2026-01-16T10:00:00+09:00", events[0].Start)
	assert.Equal(t, "(no title)", events[1].Summary)
	assert.Equal(t, "2026-01-16", events[1].Start)
}

func TestListPendingTasks(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/lists":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]string{{"id": "list1"}},
			})
		case "/lists/list1/tasks":
			assert.Equal(t, "false", r.URL.Query().Get("showCompleted"))
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]string{
					{"id": "t1", "title": "보고서 제출", "status": "needsAction"},
					{"id": "t2"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	tasks, err := c.ListPendingTasks(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "보고서 제출", tasks[0].Title)
	assert.Equal(t, "(no title)", tasks[1].Title)
}

func TestAPIErrorSurfaced(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 401}}`, http.StatusUnauthorized)
	}))

	_, err := c.ListMessageIDs(t.Context(), "is:unread", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}
