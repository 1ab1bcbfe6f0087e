package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/rules"
)

const reasonRefined = "llm_refine"

type Refiner interface {
	Refine(ctx context.Context, email classify.Email, rule *rules.Analysis) (string, error)
}

// Pipeline runs the two-stage decision: rule analysis first, then an
// optional AI refinement pass whose output is merged under guardrails.
// A nil refiner runs rule-only.
type Pipeline struct {
	analyzer *rules.Analyzer
	refiner  Refiner
	logger   *slog.Logger
	now      func() time.Time
}

func New(refiner Refiner, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		analyzer: rules.NewAnalyzer(),
		refiner:  refiner,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the reference clock used for relative date resolution.
func (p *Pipeline) WithNow(now func() time.Time) *Pipeline {
	if now != nil {
		p.now = now
	}
	return p
}

func (p *Pipeline) Classify(ctx context.Context, email classify.Email) classify.Classification {
	now := p.now()
	rule := p.analyzer.Analyze(email.Subject, email.Body, now)

	var reasons []string
	sug := p.refine(ctx, email, &rule, &reasons)

	result := classify.Merge(email, rule, sug, now)

	if result.Extracted.GuardrailReason != "" {
		reasons = append(reasons, result.Extracted.GuardrailReason)
	}
	result.ReviewReason = strings.Join(reasons, ",")

	p.logger.Info("email classified",
		"category", result.Category,
		"urgency", result.Urgency,
		"confidence", result.Confidence,
		"needs_review", result.NeedsReview,
		"dt_source", result.Extracted.DTSource,
	)
	return result
}

// refine runs the AI pass when a refiner is configured. Any failure
// degrades to a rule-shaped suggestion flagged for manual review.
func (p *Pipeline) refine(ctx context.Context, email classify.Email, rule *rules.Analysis, reasons *[]string) classify.Suggestion {
	degraded := classify.Suggestion{Category: rule.Predicted, NeedsReview: true}

	if p.refiner == nil {
		return degraded
	}
	*reasons = append(*reasons, reasonRefined)

	raw, err := p.refiner.Refine(ctx, email, rule)
	if err != nil {
		p.logger.Warn("ai refinement failed, falling back to rule result", "error", err)
		return degraded
	}

	sug := classify.ParseSuggestion(raw)
	if sug.IsZero() {
		p.logger.Warn("ai refinement returned no usable suggestion")
		return degraded
	}
	return sug
}
