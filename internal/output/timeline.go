package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mailendar/mailendar/internal/google"
	"github.com/mailendar/mailendar/internal/rules"
)

// TimelineItem is one row of the shared today-view JSON consumed by the
// dashboard UI.
type TimelineItem struct {
	Category    rules.Category `json:"category"`
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	StartTime   string         `json:"startTime"`
	DisplayTime string         `json:"displayTime"`
}

// DisplayTime renders a start timestamp as HH:MM, or 종일 for date-only
// (all-day) values.
func DisplayTime(startTime string) string {
	if i := strings.IndexByte(startTime, 'T'); i >= 0 && len(startTime) >= i+6 {
		return startTime[i+1 : i+6]
	}
	return "종일"
}

func EventItem(ev google.Event) TimelineItem {
	return TimelineItem{
		Category:    rules.CategorySchedule,
		Source:      "Google",
		Title:       ev.Summary,
		StartTime:   ev.Start,
		DisplayTime: DisplayTime(ev.Start),
	}
}

// WriteTimeline sorts items by start time and writes them as indented JSON.
// Items without a start time sort last.
func WriteTimeline(path string, items []TimelineItem) error {
	if items == nil {
		items = []TimelineItem{}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i]) < sortKey(items[j])
	})

	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timeline file: %w", err)
	}
	return nil
}

func sortKey(item TimelineItem) string {
	if item.StartTime == "" {
		return "9999-12-31"
	}
	return item.StartTime
}
