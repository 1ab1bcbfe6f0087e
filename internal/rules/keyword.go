package rules

import (
	"sort"
	"strings"
)

// Category is the final classification bucket.
type Category string

const (
	CategorySpam     Category = "SPAM"
	CategorySchedule Category = "SCHEDULE"
	CategoryTask     Category = "TASK"
)

// Categories lists all valid categories in scoring order.
var Categories = []Category{CategorySpam, CategorySchedule, CategoryTask}

// IsValid reports whether c is one of the three known categories.
func (c Category) IsValid() bool {
	return c == CategorySpam || c == CategorySchedule || c == CategoryTask
}

// ParseCategory normalizes an untrusted category value; invalid input yields
// the empty string.
func ParseCategory(v string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(v)))
	if c.IsValid() {
		return c
	}
	return ""
}

// KeywordWeight is one entry of an ordered keyword inventory.
type KeywordWeight struct {
	Keyword string
	Weight  int
}

// Match records one keyword hit for explainability.
type Match struct {
	Keyword string `json:"kw"`
	Count   int    `json:"count"`
	Weight  int    `json:"weight"`
	Points  int    `json:"points"`
}

// defaultKeywordTables is the tuned keyword inventory. Substring counting
// overcounts keywords embedded in longer words; downstream thresholds were
// tuned against that behavior, so it stays.
func defaultKeywordTables() map[Category][]KeywordWeight {
	return map[Category][]KeywordWeight{
		CategorySpam: {
			{"unsubscribe", 10}, {"수신거부", 10}, {"광고", 6}, {"홍보", 6},
			{"마케팅", 6}, {"뉴스레터", 6}, {"구독", 4}, {"할인", 5},
			{"특가", 5}, {"쿠폰", 5}, {"프로모션", 5}, {"이벤트", 3},
			{"무료", 2}, {"webinar", 4}, {"웨비나", 4},
		},
		CategorySchedule: {
			{"일정", 4}, {"회의", 4}, {"미팅", 4}, {"면접", 5},
			{"초대", 4}, {"참석", 3}, {"안내", 2}, {"발표", 3},
			{"심사", 3}, {"세미나", 3}, {"워크샵", 3}, {"오리엔테이션", 3},
			{"설명회", 3}, {"예약", 3}, {"zoom", 6}, {"google meet", 6},
			{"meet.google.com", 6}, {"teams", 5}, {"webex", 5},
		},
		CategoryTask: {
			{"회신", 6}, {"답신", 6}, {"답변", 5}, {"확인", 5},
			{"요청", 5}, {"부탁", 4}, {"검토", 5}, {"승인", 5},
			{"제출", 6}, {"피드백", 4}, {"수정", 4}, {"작성", 4},
			{"공유", 3}, {"전달", 3}, {"자료", 3}, {"문의", 3},
			{"조율", 4}, {"신청", 5}, {"등록", 4}, {"처리", 4},
			{"마감", 5},
		},
	}
}

// KeywordScorer scores text against immutable per-category keyword tables.
type KeywordScorer struct {
	tables map[Category][]KeywordWeight
}

// NewKeywordScorer returns a scorer with the default inventory.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{tables: defaultKeywordTables()}
}

// NewKeywordScorerWithTables injects custom inventories, mainly for tests.
func NewKeywordScorerWithTables(tables map[Category][]KeywordWeight) *KeywordScorer {
	return &KeywordScorer{tables: tables}
}

// Score returns weighted per-category scores plus match details sorted by
// points descending.
func (s *KeywordScorer) Score(text string) (map[Category]int, map[Category][]Match) {
	scores := map[Category]int{CategorySpam: 0, CategorySchedule: 0, CategoryTask: 0}
	matches := map[Category][]Match{CategorySpam: {}, CategorySchedule: {}, CategoryTask: {}}

	norm := normalize(text)
	for _, cat := range Categories {
		for _, kw := range s.tables[cat] {
			c := strings.Count(norm, strings.ToLower(kw.Keyword))
			if c <= 0 {
				continue
			}
			pts := c * kw.Weight
			scores[cat] += pts
			matches[cat] = append(matches[cat], Match{Keyword: kw.Keyword, Count: c, Weight: kw.Weight, Points: pts})
		}
		sort.SliceStable(matches[cat], func(i, j int) bool {
			return matches[cat][i].Points > matches[cat][j].Points
		})
	}

	return scores, matches
}

func normalize(text string) string {
	return strings.ToLower(strings.ReplaceAll(text, " ", " "))
}
