package agent

import (
	"context"
	"fmt"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
)

// Generator is the single capability required from the generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const profilePrompt = `Analyze the following user input and extract key profile information:
%s

Provide a structured analysis including:
1. Financial goals
2. Risk tolerance
3. Time horizon
4. Current financial situation
5. Investment preferences

Response:`

// ProfileAgent derives a structured user profile from raw goal text.
type ProfileAgent struct {
	gen Generator
}

// NewProfileAgent creates a profile agent backed by the given generator.
func NewProfileAgent(gen Generator) *ProfileAgent {
	return &ProfileAgent{gen: gen}
}

// Extract performs a single-shot profile extraction. The backend output is
// parsed positionally into five fields; a short response yields empty
// fields, never an error.
func (a *ProfileAgent) Extract(ctx context.Context, text string) (*domain.Profile, error) {
	response, err := a.gen.Generate(ctx, fmt.Sprintf(profilePrompt, text))
	if err != nil {
		return nil, fmt.Errorf("extract profile: %w", err)
	}
	return parseProfile(response), nil
}

// parseProfile maps the response's line-sections onto the five profile
// fields in order.
func parseProfile(response string) *domain.Profile {
	secs := lines(response)
	return &domain.Profile{
		FinancialGoals:        fieldAt(secs, 0),
		RiskTolerance:         fieldAt(secs, 1),
		TimeHorizon:           fieldAt(secs, 2),
		CurrentSituation:      fieldAt(secs, 3),
		InvestmentPreferences: fieldAt(secs, 4),
	}
}
