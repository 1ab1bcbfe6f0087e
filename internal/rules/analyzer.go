package rules

import (
	"strings"
	"time"

	"github.com/mailendar/mailendar/internal/extract"
)

// Analysis is the complete rule-only view of one email. It is produced fresh
// per input and never mutated afterwards.
type Analysis struct {
	Scores    map[Category]int
	Matches   map[Category][]Match
	Signals   Signals
	Urgency   int
	Event     *extract.Event
	Predicted Category
	RuleConf  float64
}

// DTSource returns the extraction source tag, or "not_found".
func (a Analysis) DTSource() string {
	if a.Event == nil {
		return extract.SourceNotFound
	}
	return a.Event.Source
}

// StartISO returns the extracted start as RFC3339, or "".
func (a Analysis) StartISO() string {
	if a.Event == nil {
		return ""
	}
	return a.Event.Start.Format(time.RFC3339)
}

// Analyzer orchestrates the keyword scorer, signal detector and urgency
// scorer into one pure analysis. Safe for concurrent use.
type Analyzer struct {
	keywords *KeywordScorer
	signals  *SignalDetector
	urgency  *UrgencyScorer
}

// NewAnalyzer returns an analyzer with the default tables.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		keywords: NewKeywordScorer(),
		signals:  NewSignalDetector(),
		urgency:  NewUrgencyScorer(),
	}
}

// Analyze scores subject+body, extracts a best-effort event time from the
// body and picks the rule-only category. now anchors relative dates and the
// urgency proximity bonus.
func (a *Analyzer) Analyze(subject, body string, now time.Time) Analysis {
	text := strings.TrimSpace(subject + "\n" + body)
	cleaned := extract.Clean(text)

	scores, matches := a.keywords.Score(text)

	ev := extract.EventTimes(body, now)
	sig := a.signals.Detect(text, cleaned, ev)
	sig.Boost(scores)

	predicted, conf := PickCategory(scores, sig)

	var start *time.Time
	if ev != nil {
		start = &ev.Start
	}
	urgency := a.urgency.Score(text, start, now)

	return Analysis{
		Scores:    scores,
		Matches:   matches,
		Signals:   sig,
		Urgency:   urgency,
		Event:     ev,
		Predicted: predicted,
		RuleConf:  conf,
	}
}
