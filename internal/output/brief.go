package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/mailendar/mailendar/internal/google"
)

type UrgentTask struct {
	Title   string
	Urgency int
}

type BriefData struct {
	Date   time.Time
	Events []google.Event
	Tasks  []google.Task
	Urgent []UrgentTask
}

// RenderBrief produces the local markdown briefing used when no AI client
// is configured.
func RenderBrief(data BriefData) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# 데일리 브리핑 (%s)\n\n", data.Date.Format("2006-01-02")))

	sb.WriteString("### 오늘의 일정\n\n")
	if len(data.Events) == 0 {
		sb.WriteString("* 오늘은 등록된 일정이 없습니다.\n")
	}
	for _, ev := range data.Events {
		sb.WriteString(fmt.Sprintf("* %s %s", DisplayTime(ev.Start), ev.Summary))
		if ev.Location != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", ev.Location))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n### 할 일\n\n")
	if len(data.Tasks) == 0 {
		sb.WriteString("* 대기 중인 할 일이 없습니다.\n")
	}
	for _, t := range data.Tasks {
		sb.WriteString(fmt.Sprintf("* %s", t.Title))
		if t.Notes != "" {
			sb.WriteString(fmt.Sprintf("\n    * %s", firstLine(t.Notes)))
		}
		sb.WriteString("\n")
	}

	if len(data.Urgent) > 0 {
		sb.WriteString("\n### 긴급 작업\n\n")
		for _, u := range data.Urgent {
			sb.WriteString(fmt.Sprintf("* [긴급도 %d] %s\n", u.Urgency, u.Title))
		}
	}

	return sb.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
