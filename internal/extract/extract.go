package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SourceNotFound tags the result of an extraction that found no usable date.
const SourceNotFound = "not_found"

// Event is a best-effort extracted time range. AllDay marks the date-only
// fallback window (midnight to next midnight), which is not a concrete time
// and must not confirm a schedule on its own.
type Event struct {
	Start  time.Time
	End    time.Time
	AllDay bool
	Source string
}

// Date patterns. Korean mail often writes dates with dots, spaces and a
// weekday in parentheses: "2025. 12. 19.(금) 14:00 ~ 17:00".
var (
	ymdRe     = regexp.MustCompile(`(\d{4})\s*[./-]\s*(\d{1,2})\s*[./-]\s*(\d{1,2})`)
	mdRe      = regexp.MustCompile(`(\d{1,2})\s*[./-]\s*(\d{1,2})(?:[^0-9]|$)`)
	koMdRe    = regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
	relRe     = regexp.MustCompile(`(오늘|내일|모레)`)
	weekdayRe = regexp.MustCompile(`(월|화|수|목|금|토|일)\s*요일`)
)

// Time tokens: 14:00, 9.30, 오후 2시, 오전10시반.
var (
	time24Re = regexp.MustCompile(`(\d{1,2})\s*[:.]\s*(\d{2})`)
	timeKoRe = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2})\s*시(?:\s*(\d{1,2})\s*분)?\s*(반)?`)
)

const timeToken = `(?:오전|오후)?\s*\d{1,2}(?:\s*[:.]\s*\d{2}|\s*시(?:\s*\d{1,2}\s*분)?\s*(?:반)?)?`

var (
	// The strict 24-hour range is tried first so a line that also carries a
	// YYYY-MM-DD date is not misread as a time range.
	range24Re = regexp.MustCompile(`(?i)(\b\d{1,2}\s*[:.]\s*\d{2}\b)\s*(?:~|〜|–|—|-|to|부터)\s*(\b\d{1,2}\s*[:.]\s*\d{2}\b)(?:\s*까지)?`)
	rangeRe   = regexp.MustCompile(`(?i)(` + timeToken + `)\s*(?:~|〜|–|—|-|to|부터)\s*(` + timeToken + `)(?:\s*까지)?`)

	labelRe       = regexp.MustCompile(`(?i)(일시\s*[:：]|시간\s*[:：]|일정\s*[:：]|\bwhen\b\s*[:：]|\bdate\b\s*[:：])`)
	globalTimesRe = regexp.MustCompile(`(오전\s*\d{1,2}\s*시(?:\s*\d{1,2}\s*분)?\s*(?:반)?|오후\s*\d{1,2}\s*시(?:\s*\d{1,2}\s*분)?\s*(?:반)?|\d{1,2}\s*[:.]\s*\d{2}|\d{1,2}\s*시(?:\s*\d{1,2}\s*분)?\s*(?:반)?)`)
)

// DateToken resolves the first date expression in token against base:
// absolute Y-M-D, Korean "M월 D일", bare M/D (base year), the relative terms
// 오늘/내일/모레, or a weekday resolved to the next occurrence on or after
// base. The returned time is midnight in base's location.
func DateToken(token string, base time.Time) (time.Time, bool) {
	token = strings.TrimSpace(token)
	loc := base.Location()

	if m := ymdRe.FindStringSubmatch(token); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), loc)
	}
	if m := koMdRe.FindStringSubmatch(token); m != nil {
		return makeDate(base.Year(), atoi(m[1]), atoi(m[2]), loc)
	}
	if m := mdRe.FindStringSubmatch(token); m != nil {
		return makeDate(base.Year(), atoi(m[1]), atoi(m[2]), loc)
	}
	if m := relRe.FindStringSubmatch(token); m != nil {
		days := map[string]int{"오늘": 0, "내일": 1, "모레": 2}[m[1]]
		return midnight(base.AddDate(0, 0, days)), true
	}
	if m := weekdayRe.FindStringSubmatch(token); m != nil {
		target := map[string]int{"월": 0, "화": 1, "수": 2, "목": 3, "금": 4, "토": 5, "일": 6}[m[1]]
		// time.Weekday counts from Sunday; the table counts from Monday.
		current := (int(base.Weekday()) + 6) % 7
		delta := ((target-current)%7 + 7) % 7
		return midnight(base.AddDate(0, 0, delta)), true
	}

	return time.Time{}, false
}

// TimeOfDay resolves the first time expression in token to minutes since
// midnight. 오후 adds 12 hours to hours below 12; 오전 12시 means 00:00;
// a trailing 반 with no minutes means :30.
func TimeOfDay(token string) (int, bool) {
	t := strings.TrimSpace(token)

	if m := time24Re.FindStringSubmatch(t); m != nil {
		h, mi := atoi(m[1]), atoi(m[2])
		if h >= 0 && h <= 23 && mi >= 0 && mi <= 59 {
			return h*60 + mi, true
		}
	}

	if m := timeKoRe.FindStringSubmatch(t); m != nil {
		ampm := m[1]
		h := atoi(m[2])
		mi := 0
		if m[3] != "" {
			mi = atoi(m[3])
		}
		if m[4] != "" && mi == 0 {
			mi = 30
		}
		if h >= 0 && h <= 23 && mi >= 0 && mi <= 59 {
			if ampm == "오후" && h < 12 {
				h += 12
			}
			if ampm == "오전" && h == 12 {
				h = 0
			}
			return h*60 + mi, true
		}
	}

	return 0, false
}

// EventTimes extracts a best-effort event start/end from text, using base for
// relative dates and the produced timezone. Returns nil when no date is found
// anywhere.
func EventTimes(text string, base time.Time) *Event {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := Clean(text)
	allLines := strings.Split(cleaned, "\n")

	// Explicitly labeled lines ("일시:", "when:") are scanned first so reply
	// metadata or response deadlines cannot shadow the actual event time.
	var labeled, others []string
	for _, ln := range allLines {
		if labelRe.MatchString(ln) {
			labeled = append(labeled, ln)
		} else {
			others = append(others, ln)
		}
	}

	var currentDate time.Time
	haveDate := false

	for _, line := range append(labeled, others...) {
		l := strings.TrimSpace(line)
		if l == "" {
			continue
		}

		if d, ok := DateToken(l, base); ok {
			currentDate = d
			haveDate = true
		}
		if !haveDate {
			continue
		}

		if m := range24Re.FindStringSubmatch(l); m != nil {
			if ev := rangeEvent(currentDate, m[1], m[2], "line_range24", l); ev != nil {
				return ev
			}
		}

		if m := rangeRe.FindStringSubmatch(l); m != nil {
			if ev := genericRangeEvent(currentDate, m[1], m[2], l); ev != nil {
				return ev
			}
		}

		if t, ok := TimeOfDay(l); ok {
			start := currentDate.Add(time.Duration(t) * time.Minute)
			return &Event{Start: start, End: start.Add(time.Hour), Source: "line_single:" + excerpt(l)}
		}
	}

	// Weak global search over the whole cleaned text.
	d, ok := DateToken(cleaned, base)
	if !ok {
		return nil
	}

	var times []int
	for _, tok := range globalTimesRe.FindAllString(cleaned, -1) {
		if mi, ok := TimeOfDay(tok); ok && !contains(times, mi) {
			times = append(times, mi)
		}
	}

	switch {
	case len(times) >= 2:
		start := d.Add(time.Duration(times[0]) * time.Minute)
		end := d.Add(time.Duration(times[1]) * time.Minute)
		if !end.After(start) {
			end = start.Add(time.Hour)
		}
		return &Event{Start: start, End: end, Source: "global_date_two_times"}
	case len(times) == 1:
		start := d.Add(time.Duration(times[0]) * time.Minute)
		return &Event{Start: start, End: start.Add(time.Hour), Source: "global_date_one_time"}
	default:
		return &Event{Start: d, End: d.AddDate(0, 0, 1), AllDay: true, Source: "date_only_all_day"}
	}
}

func rangeEvent(date time.Time, tok1, tok2, tag, line string) *Event {
	t1, ok1 := TimeOfDay(tok1)
	t2, ok2 := TimeOfDay(tok2)
	if !ok1 || !ok2 {
		return nil
	}

	start := date.Add(time.Duration(t1) * time.Minute)
	end := endFor(date, t1, t2)
	if !end.After(start) {
		end = start.Add(time.Hour)
	}
	return &Event{Start: start, End: end, Source: tag + ":" + excerpt(line)}
}

func genericRangeEvent(date time.Time, tok1, tok2, line string) *Event {
	t1, ok1 := TimeOfDay(tok1)
	t2raw, ok2 := TimeOfDay(tok2)
	if !ok1 || !ok2 {
		return nil
	}

	t2 := chooseRangeEnd(t1, t2raw, ampmHint(tok1), tok2)

	start := date.Add(time.Duration(t1) * time.Minute)
	end := endFor(date, t1, t2)
	if !end.After(start) {
		end = start.Add(time.Hour)
	}
	return &Event{Start: start, End: end, Source: "line_range:" + excerpt(line)}
}

// endFor moves the end minutes forward a day when they do not pass the start
// (a range that crosses midnight).
func endFor(date time.Time, startMin, endMin int) time.Time {
	if endMin <= startMin {
		endMin += 24 * 60
	}
	return date.Add(time.Duration(endMin) * time.Minute)
}

// chooseRangeEnd resolves ranges like "오후 6시~9시" where the end token has
// no AM/PM marker: both the literal end and end+12h are evaluated, keeping
// whichever yields a meeting-like forward duration (5 minutes to 10 hours)
// and preferring the shorter one.
func chooseRangeEnd(t1, t2raw int, ampm1, tok2 string) int {
	candidates := []int{t2raw}
	if ampm1 == "오후" && ampmHint(tok2) == "" && t2raw < 12*60 {
		candidates = append(candidates, t2raw+12*60)
	}

	best := candidates[0]
	bestDur := -1
	for _, cand := range candidates {
		end := cand
		for end <= t1 {
			end += 24 * 60
		}
		dur := end - t1
		if dur >= 5 && dur <= 600 {
			if bestDur < 0 || dur < bestDur {
				best = cand
				bestDur = dur
			}
		}
	}
	return best
}

func ampmHint(token string) string {
	if strings.Contains(token, "오후") {
		return "오후"
	}
	if strings.Contains(token, "오전") {
		return "오전"
	}
	return ""
}

func makeDate(y, mo, d int, loc *time.Location) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
	// time.Date normalizes out-of-range days (e.g. Feb 30); reject those.
	if t.Day() != d || t.Month() != time.Month(mo) {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func excerpt(line string) string {
	r := []rune(line)
	if len(r) > 120 {
		r = r[:120]
	}
	return string(r)
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
