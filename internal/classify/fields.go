package classify

import (
	"regexp"
	"strings"
)

var (
	subjectPrefixRe = regexp.MustCompile(`(?i)^\s*(re|fw|fwd)\s*[:：]\s*`)
	// Also matches after a comma so inline labels like
	// "... 14:00 ~ 16:00, 장소: 3층 회의실" are caught.
	locationLineRe = regexp.MustCompile(`(?im)(?:^|[,，]\s*)(?:장소|위치|location)\s*[:：]\s*([^,，\n]+)`)
)

// CleanSubject strips stacked Re:/Fw:/Fwd: prefixes, up to six layers deep.
func CleanSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for i := 0; i < 6; i++ {
		ns := strings.TrimSpace(subjectPrefixRe.ReplaceAllString(s, ""))
		if ns == s {
			break
		}
		s = ns
	}
	if s == "" {
		return subject
	}
	return s
}

// Location returns the first labeled location value in body, or "".
func Location(body string) string {
	m := locationLineRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.Trim(strings.TrimSpace(m[1]), " \t;,")
}

var (
	descStartMarkers = []string{"심사", "발표", "안내", "일시", "장소", "회의", "미팅", "세미나", "워크샵"}
	descAnchors      = []string{"일시", "장소", "안내", "발표", "심사"}
	descEndMarkers   = []string{"회신", "문의", "연락", "담당", "문자", "전화", "감사"}
)

// DescriptionBlock heuristically extracts the announcement block of body:
// from the first line carrying both a start marker and an anchor word, up to
// 40 lines, stopping once at least 8 lines are collected and a closing line
// (회신/문의 plus any end marker) appears. Blocks under 20 characters are
// discarded as noise.
func DescriptionBlock(body string) string {
	if body == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(body, "\r", ""), "\n")

	startIdx := -1
	for i, ln := range lines {
		l := strings.TrimSpace(ln)
		if l == "" {
			continue
		}
		if containsAny(l, descStartMarkers) && containsAny(l, descAnchors) {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return ""
	}

	end := startIdx + 40
	if end > len(lines) {
		end = len(lines)
	}

	var block []string
	for _, ln := range lines[startIdx:end] {
		l := strings.TrimSpace(ln)
		if l == "" {
			if len(block) > 0 && block[len(block)-1] != "" {
				block = append(block, "")
			}
			continue
		}
		if len(block) >= 8 && containsAny(l, descEndMarkers) &&
			(strings.Contains(l, "회신") || strings.Contains(l, "문의")) {
			break
		}
		block = append(block, l)
	}

	desc := strings.TrimSpace(strings.Join(block, "\n"))
	if len([]rune(desc)) < 20 {
		return ""
	}
	return desc
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
