package extract

import (
	"regexp"
	"strings"
)

// Forwarded/reply metadata lines. A forwarded "Sent: 2026-01-16 18:04" must
// never be read as the meeting time, so these lines are dropped before any
// datetime matching.
var (
	headerLineRe   = regexp.MustCompile(`(?i)^\s*(from|to|cc|bcc|sent|date|subject)\s*:\s*.+$`)
	koHeaderLineRe = regexp.MustCompile(`^\s*(보낸사람|받는사람|참조|숨은참조|제목|보낸\s*날짜|보낸날짜|날짜|발신|수신)\s*: ?\s*.+$`)
	separatorRe    = regexp.MustCompile(`(?i)^\s*(-{2,}\s*original message\s*-{2,}|-{2,}\s*원본\s*메시지\s*-{2,}|_{2,}|={2,})\s*$`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
)

// Clean removes forwarded-header lines and separators while keeping the
// actual content. Separators become blank lines so unrelated sentences are
// not glued together.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	var lines []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		line := strings.Trim(raw, "\uFEFF")
		if line == "" {
			lines = append(lines, "")
			continue
		}
		if separatorRe.MatchString(line) {
			lines = append(lines, "")
			continue
		}
		if headerLineRe.MatchString(line) || koHeaderLineRe.MatchString(line) {
			continue
		}
		lines = append(lines, raw)
	}

	cleaned := strings.Join(lines, "\n")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
