package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mailendar/mailendar/internal/classify"
	"github.com/mailendar/mailendar/internal/rules"
)

type Chatter interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Refiner struct {
	client Chatter
}

func NewRefiner(client Chatter) *Refiner {
	return &Refiner{client: client}
}

type ruleSummary struct {
	PredictedCategory rules.Category         `json:"predicted_category"`
	Scores            map[rules.Category]int `json:"scores"`
	Signals           rules.Signals          `json:"signals"`
	StartISO          string                 `json:"start_iso,omitempty"`
}

func (r *Refiner) Refine(ctx context.Context, email classify.Email, rule *rules.Analysis) (string, error) {
	summary := ruleSummary{
		PredictedCategory: rule.Predicted,
		Scores:            rule.Scores,
		Signals:           rule.Signals,
		StartISO:          rule.StartISO(),
	}

	blob, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rule summary: %w", err)
	}

	emailContext := BuildEmailContext(email.Sender, email.Subject, email.Body)
	user := fmt.Sprintf("[RULE_ANALYSIS_JSON]\n%s\n\n[EMAIL]\n%s", blob, classifyUserPrompt(emailContext))

	return r.client.Chat(ctx, classifySystemPrompt, user)
}
