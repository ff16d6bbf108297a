package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/store"
)

const (
	// recentHistoryLimit bounds the history slice fed to the planner and
	// returned in turn payloads.
	recentHistoryLimit = 5
	// retrievalK is the number of advice entries retrieved per turn.
	retrievalK = 3
)

// Request is one inbound turn: free-text goal plus an optional session id.
type Request struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// TurnData is the successful payload of a turn.
type TurnData struct {
	SessionID           string           `json:"session_id"`
	Profile             *domain.Profile  `json:"profile"`
	Context             []domain.Advice  `json:"context"`
	Plan                *domain.Plan     `json:"plan"`
	ConversationHistory []domain.Message `json:"conversation_history"`
}

// Response is the uniform turn envelope. Every stage failure is converted
// into this shape; raw errors never reach the transport.
type Response struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *TurnData `json:"data"`
	Error   string    `json:"error,omitempty"`
}

// Retriever is the capability the assistant needs from the knowledge layer.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.Advice, error)
}

// PersonalAssistant orchestrates one turn: resolve session, extract profile,
// retrieve context, generate plan, persist. It holds no per-session locks;
// concurrent turns against one session are last-writer-wins.
type PersonalAssistant struct {
	repo            store.Repository
	profiles        *ProfileAgent
	planner         *PlannerAgent
	retriever       Retriever
	upstreamTimeout time.Duration
}

// NewPersonalAssistant wires the turn pipeline. upstreamTimeout bounds each
// backend and retriever call; zero disables the bound.
func NewPersonalAssistant(repo store.Repository, profiles *ProfileAgent, planner *PlannerAgent, retriever Retriever, upstreamTimeout time.Duration) *PersonalAssistant {
	return &PersonalAssistant{
		repo:            repo,
		profiles:        profiles,
		planner:         planner,
		retriever:       retriever,
		upstreamTimeout: upstreamTimeout,
	}
}

// Process runs one full turn. The returned response is always well formed;
// on failure the user's message has already been persisted, so partial
// progress survives.
func (a *PersonalAssistant) Process(ctx context.Context, req Request) *Response {
	slog.Info("Processing user input", "session_id", req.SessionID, "text", req.Text)

	session, resp := a.resolveSession(ctx, req.SessionID)
	if resp != nil {
		return resp
	}

	if _, err := session.AddMessage(domain.RoleUser, req.Text, nil); err != nil {
		return failure("Invalid message", err)
	}
	// Commit the raw input now so it survives any later stage failure.
	if err := a.repo.Update(ctx, session); err != nil {
		return failure("Failed to persist session", err)
	}

	// Profile is sticky for the session lifetime. Commit it as soon as it
	// exists so a later stage failure cannot force re-extraction.
	if session.UserProfile == nil {
		profile, err := a.extractProfile(ctx, req.Text)
		if err != nil {
			return failure("Profile analysis failed", err)
		}
		session.UpdateProfile(profile)
		if err := a.repo.Update(ctx, session); err != nil {
			return failure("Failed to persist session", err)
		}
	}

	advice, err := a.retrieveContext(ctx, req.Text)
	if err != nil {
		return failure("Failed to retrieve financial context", err)
	}

	plan, err := a.generatePlan(ctx, session, req.Text, advice)
	if err != nil {
		return failure("Failed to generate financial plan", err)
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return failure("Failed to serialize financial plan", err)
	}
	if _, err := session.AddMessage(domain.RoleAssistant, string(planJSON), map[string]any{"plan": plan}); err != nil {
		return failure("Failed to record assistant message", err)
	}

	if err := a.repo.Update(ctx, session); err != nil {
		return failure("Failed to persist session", err)
	}

	return &Response{
		Success: true,
		Message: "Comprehensive financial plan generated successfully",
		Data: &TurnData{
			SessionID:           session.ID,
			Profile:             session.UserProfile,
			Context:             advice,
			Plan:                plan,
			ConversationHistory: session.RecentMessages(recentHistoryLimit),
		},
	}
}

// resolveSession loads the session by id, or creates a new one when the id
// is missing or does not resolve.
func (a *PersonalAssistant) resolveSession(ctx context.Context, sessionID string) (*domain.Session, *Response) {
	if sessionID != "" {
		session, err := a.repo.Get(ctx, sessionID)
		if err != nil {
			return nil, failure("Failed to load session", err)
		}
		if session != nil {
			return session, nil
		}
	}

	session, err := a.repo.Create(ctx)
	if err != nil {
		return nil, failure("Failed to create session", err)
	}
	return session, nil
}

func (a *PersonalAssistant) extractProfile(ctx context.Context, text string) (*domain.Profile, error) {
	ctx, cancel := a.boundUpstream(ctx)
	defer cancel()
	return a.profiles.Extract(ctx, text)
}

func (a *PersonalAssistant) retrieveContext(ctx context.Context, text string) ([]domain.Advice, error) {
	ctx, cancel := a.boundUpstream(ctx)
	defer cancel()
	return a.retriever.Query(ctx, text, retrievalK)
}

func (a *PersonalAssistant) generatePlan(ctx context.Context, session *domain.Session, goal string, advice []domain.Advice) (*domain.Plan, error) {
	ctx, cancel := a.boundUpstream(ctx)
	defer cancel()
	return a.planner.Generate(ctx, session.UserProfile, goal, advice, session.RecentMessages(recentHistoryLimit))
}

func (a *PersonalAssistant) boundUpstream(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.upstreamTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.upstreamTimeout)
}

func failure(message string, err error) *Response {
	slog.Error(message, "error", err)
	return &Response{
		Success: false,
		Message: message,
		Error:   err.Error(),
	}
}
