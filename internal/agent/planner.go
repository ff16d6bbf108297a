package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
)

const planPrompt = `Based on the following information:

User Profile:
%s

Financial Goal:
%s

Relevant Context:
%s

Recent Conversation:
%s

Create a detailed financial plan including:
1. Main goal
2. Specific steps to achieve this goal
3. Timeline
4. Estimated costs
5. Potential risks
6. Recommendations

Response:`

// PlannerAgent turns a profile, goal, retrieved advice, and recent history
// into a structured financial plan.
type PlannerAgent struct {
	gen Generator
}

// NewPlannerAgent creates a planner agent backed by the given generator.
func NewPlannerAgent(gen Generator) *PlannerAgent {
	return &PlannerAgent{gen: gen}
}

// Generate composes a single prompt from all four inputs, invokes the
// backend once, and parses the response positionally into the six plan
// sections. Partial output degrades to partially empty fields.
func (a *PlannerAgent) Generate(ctx context.Context, profile *domain.Profile, goal string, advice []domain.Advice, history []domain.Message) (*domain.Plan, error) {
	prompt := fmt.Sprintf(planPrompt,
		formatProfile(profile),
		goal,
		formatAdvice(advice),
		formatHistory(history),
	)

	response, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	return parsePlan(response, advice), nil
}

// parsePlan maps line-sections onto the six plan fields. Steps, risks, and
// recommendations are sentence lists within their designated line.
// Retrieval provenance is carried over from the advice that fed the prompt.
func parsePlan(response string, advice []domain.Advice) *domain.Plan {
	secs := lines(response)
	plan := &domain.Plan{
		Goal:            fieldAt(secs, 0),
		Steps:           listAt(secs, 1),
		Timeline:        fieldAt(secs, 2),
		EstimatedCost:   fieldAt(secs, 3),
		Risks:           listAt(secs, 4),
		Recommendations: listAt(secs, 5),
	}
	for _, a := range advice {
		plan.TopicsUsed = append(plan.TopicsUsed, a.Topic)
		plan.CategoriesUsed = append(plan.CategoriesUsed, a.Category)
	}
	return plan
}

func formatProfile(p *domain.Profile) string {
	if p == nil {
		return ""
	}
	return strings.Join([]string{
		"Financial goals: " + p.FinancialGoals,
		"Risk tolerance: " + p.RiskTolerance,
		"Time horizon: " + p.TimeHorizon,
		"Current situation: " + p.CurrentSituation,
		"Investment preferences: " + p.InvestmentPreferences,
	}, "\n")
}

func formatAdvice(advice []domain.Advice) string {
	texts := make([]string, 0, len(advice))
	for _, a := range advice {
		texts = append(texts, a.Text)
	}
	return strings.Join(texts, "\n")
}

func formatHistory(history []domain.Message) string {
	entries := make([]string, 0, len(history))
	for _, m := range history {
		entries = append(entries, string(m.Role)+": "+m.Content)
	}
	return strings.Join(entries, "\n")
}
