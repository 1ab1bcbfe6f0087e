package google

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/config"
)

type Event struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type calendarEventBody struct {
	Summary     string `json:"summary"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Start       struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone,omitempty"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone,omitempty"`
	} `json:"end"`
}

type calendarEventItem struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	HTMLLink    string `json:"htmlLink"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Start       struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"end"`
}

func (it calendarEventItem) toEvent() Event {
	start := it.Start.DateTime
	if start == "" {
		start = it.Start.Date
	}
	end := it.End.DateTime
	if end == "" {
		end = it.End.Date
	}
	summary := it.Summary
	if summary == "" {
		summary = "(no title)"
	}
	return Event{
		ID:          it.ID,
		Summary:     summary,
		HTMLLink:    it.HTMLLink,
		Location:    it.Location,
		Description: it.Description,
		Start:       start,
		End:         end,
	}
}

// CoerceValidRange repairs ranges the Calendar API rejects: when end is
// missing or not after start, end becomes start plus one hour.
func CoerceValidRange(startISO, endISO string) (string, string, bool, error) {
	start, err := time.Parse(time.RFC3339, startISO)
	if err != nil {
		return "", "", false, fmt.Errorf("startTime must be RFC3339 (e.g., 2026-01-16T10:00:00+09:00): %w", err)
	}

	end, err := time.Parse(time.RFC3339, endISO)
	if err != nil || !end.After(start) {
		return startISO, start.Add(time.Hour).Format(time.RFC3339), true, nil
	}
	return startISO, endISO, false, nil
}

// DateRangeToTimeMinMax converts a date range into an inclusive timeMin and
// an exclusive timeMax, so timeMax is always after timeMin.
func DateRangeToTimeMinMax(startDate, endDate time.Time) (string, string) {
	if endDate.Before(startDate) {
		startDate, endDate = endDate, startDate
	}

	y, m, d := startDate.In(config.Seoul).Date()
	timeMin := time.Date(y, m, d, 0, 0, 0, 0, config.Seoul)

	y, m, d = endDate.In(config.Seoul).Date()
	timeMax := time.Date(y, m, d, 0, 0, 0, 0, config.Seoul).AddDate(0, 0, 1)

	return timeMin.Format(time.RFC3339), timeMax.Format(time.RFC3339)
}

func (c *Client) CreateEvent(ctx context.Context, extracted classify.Extracted) (*Event, error) {
	startISO, endISO, fixed, err := CoerceValidRange(extracted.StartTime, extracted.EndTime)
	if err != nil {
		return nil, err
	}
	if fixed {
		c.logger.Debug("calendar event end coerced", "start", startISO, "end", endISO)
	}

	title := extracted.Title
	if title == "" {
		title = "(no title)"
	}

	body := calendarEventBody{
		Summary:     title,
		Location:    extracted.Location,
		Description: extracted.Description,
	}
	body.Start.DateTime = startISO
	body.Start.TimeZone = "Asia/Seoul"
	body.End.DateTime = endISO
	body.End.TimeZone = "Asia/Seoul"

	insertURL := fmt.Sprintf("%s/calendars/primary/events", c.calendarBase)

	var item calendarEventItem
	if err := c.doJSON(ctx, "POST", insertURL, body, &item); err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	ev := item.toEvent()
	c.logger.Info("calendar event created", "id", ev.ID, "summary", ev.Summary)
	return &ev, nil
}

func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax string, maxResults int) ([]Event, error) {
	if timeMin == "" || timeMax == "" {
		return nil, fmt.Errorf("timeMin/timeMax is required")
	}
	if maxResults <= 0 {
		maxResults = 50
	}

	listURL := fmt.Sprintf("%s/calendars/primary/events?timeMin=%s&timeMax=%s&singleEvents=true&orderBy=startTime&maxResults=%d",
		c.calendarBase, url.QueryEscape(timeMin), url.QueryEscape(timeMax), maxResults)

	var payload struct {
		Items []calendarEventItem `json:"items"`
	}
	if err := c.getJSON(ctx, listURL, &payload); err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]Event, 0, len(payload.Items))
	for _, it := range payload.Items {
		events = append(events, it.toEvent())
	}
	return events, nil
}

// TodayEvents lists events for the calendar day containing now.
func (c *Client) TodayEvents(ctx context.Context, now time.Time) ([]Event, error) {
	timeMin, timeMax := DateRangeToTimeMinMax(now, now)
	return c.ListEvents(ctx, timeMin, timeMax, 30)
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	deleteURL := fmt.Sprintf("%s/calendars/primary/events/%s", c.calendarBase, url.PathEscape(eventID))
	if err := c.doJSON(ctx, "DELETE", deleteURL, nil, nil); err != nil {
		return fmt.Errorf("failed to delete calendar event %s: %w", eventID, err)
	}
	return nil
}
