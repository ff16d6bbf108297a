package agent

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/domain"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/store"
)

// stubGenerator returns canned responses in order and counts invocations.
type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type stubRetriever struct {
	advice []domain.Advice
	err    error
	calls  int
}

func (r *stubRetriever) Query(_ context.Context, _ string, _ int) ([]domain.Advice, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.advice, nil
}

type fixture struct {
	assistant  *PersonalAssistant
	repo       store.Repository
	profileGen *stubGenerator
	planGen    *stubGenerator
	retriever  *stubRetriever
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	profileGen := &stubGenerator{response: "Retire comfortably\nModerate\n20 years\nStable income\nIndex funds"}
	planGen := &stubGenerator{response: "Retire in 20 years\nMax out 401k. Open an IRA.\n20 years\n$500 per month\nMarket downturns.\nStart today."}
	retriever := &stubRetriever{advice: []domain.Advice{
		{ID: "a1", Text: "retirement advice", Topic: "retirement", Category: "investing"},
	}}

	return &fixture{
		assistant: NewPersonalAssistant(
			repo,
			NewProfileAgent(profileGen),
			NewPlannerAgent(planGen),
			retriever,
			5*time.Second,
		),
		repo:       repo,
		profileGen: profileGen,
		planGen:    planGen,
		retriever:  retriever,
	}
}

func TestProcessFirstTurnCreatesSessionAndPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.assistant.Process(ctx, Request{Text: "I want to retire in 20 years"})

	if !resp.Success {
		t.Fatalf("Expected success, got failure: %s / %s", resp.Message, resp.Error)
	}
	if resp.Data == nil || resp.Data.SessionID == "" {
		t.Fatal("Expected a session id in the payload")
	}
	if resp.Data.Plan == nil || resp.Data.Plan.Goal != "Retire in 20 years" {
		t.Errorf("Unexpected plan: %+v", resp.Data.Plan)
	}
	if len(resp.Data.Plan.Steps) != 2 {
		t.Errorf("Expected 2 plan steps, got %v", resp.Data.Plan.Steps)
	}
	if resp.Data.Profile == nil || resp.Data.Profile.FinancialGoals != "Retire comfortably" {
		t.Errorf("Unexpected profile: %+v", resp.Data.Profile)
	}
	if got := resp.Data.Plan.TopicsUsed; len(got) != 1 || got[0] != "retirement" {
		t.Errorf("Unexpected provenance: %v", got)
	}

	session, err := f.repo.Get(ctx, resp.Data.SessionID)
	if err != nil || session == nil {
		t.Fatalf("Session not persisted: %v", err)
	}
	if len(session.ConversationHistory) != 2 {
		t.Fatalf("Expected user+assistant messages, got %d", len(session.ConversationHistory))
	}
	if session.ConversationHistory[0].Role != domain.RoleUser {
		t.Error("First message must be the user's")
	}
	assistantMsg := session.ConversationHistory[1]
	if assistantMsg.Role != domain.RoleAssistant {
		t.Error("Second message must be the assistant's")
	}
	if !strings.Contains(assistantMsg.Content, "Retire in 20 years") {
		t.Errorf("Assistant content must carry the serialized plan, got %q", assistantMsg.Content)
	}
	if assistantMsg.Metadata["plan"] == nil {
		t.Error("Assistant message must carry the plan object as metadata")
	}
}

func TestProcessSecondTurnSkipsProfileExtraction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.assistant.Process(ctx, Request{Text: "I want to retire in 20 years"})
	if !first.Success {
		t.Fatalf("First turn failed: %s", first.Error)
	}
	if f.profileGen.calls != 1 {
		t.Fatalf("Expected 1 profile extraction, got %d", f.profileGen.calls)
	}

	second := f.assistant.Process(ctx, Request{
		Text:      "What about a house too?",
		SessionID: first.Data.SessionID,
	})
	if !second.Success {
		t.Fatalf("Second turn failed: %s", second.Error)
	}

	// Sticky profile: no re-extraction, same profile object.
	if f.profileGen.calls != 1 {
		t.Errorf("Profile extracted again: %d calls", f.profileGen.calls)
	}
	if *second.Data.Profile != *first.Data.Profile {
		t.Errorf("Profile changed between turns: %+v vs %+v", second.Data.Profile, first.Data.Profile)
	}
	if second.Data.SessionID != first.Data.SessionID {
		t.Error("Second turn must reuse the session")
	}

	session, _ := f.repo.Get(ctx, first.Data.SessionID)
	if len(session.ConversationHistory) != 4 {
		t.Errorf("Expected 4 messages after two turns, got %d", len(session.ConversationHistory))
	}
}

func TestProcessUnresolvableSessionIDCreatesNew(t *testing.T) {
	f := newFixture(t)

	resp := f.assistant.Process(context.Background(), Request{
		Text:      "hello",
		SessionID: "gone-forever",
	})
	if !resp.Success {
		t.Fatalf("Turn failed: %s", resp.Error)
	}
	if resp.Data.SessionID == "gone-forever" {
		t.Error("Expected a freshly allocated session id")
	}
}

func TestProcessPlannerFailureKeepsUserMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.assistant.Process(ctx, Request{Text: "seed the session"})
	if !first.Success {
		t.Fatalf("Setup turn failed: %s", first.Error)
	}

	f.planGen.err = domain.ErrUpstreamFailure
	resp := f.assistant.Process(ctx, Request{
		Text:      "this turn will fail",
		SessionID: first.Data.SessionID,
	})

	if resp.Success {
		t.Fatal("Expected failure envelope")
	}
	if resp.Error == "" {
		t.Error("Failure envelope must carry the error")
	}
	if resp.Data != nil {
		t.Error("Failed turn must not carry data")
	}

	// Partial progress: the user's message survived the planner failure.
	session, _ := f.repo.Get(ctx, first.Data.SessionID)
	last := session.ConversationHistory[len(session.ConversationHistory)-1]
	if last.Role != domain.RoleUser || last.Content != "this turn will fail" {
		t.Errorf("User message lost; last message was %q (%s)", last.Content, last.Role)
	}
}

func TestProcessProfileSurvivesFailedTurn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.planGen.err = domain.ErrUpstreamFailure
	resp := f.assistant.Process(ctx, Request{Text: "I want to buy a house"})
	if resp.Success {
		t.Fatal("Expected failure envelope")
	}
	if f.profileGen.calls != 1 {
		t.Fatalf("Expected 1 profile extraction, got %d", f.profileGen.calls)
	}

	// The failure envelope carries no session id; find the session directly.
	sessions, err := f.repo.ListActive(ctx)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("Expected 1 persisted session, got %d (err=%v)", len(sessions), err)
	}
	if sessions[0].UserProfile == nil {
		t.Fatal("Extracted profile must be committed even when the planner fails")
	}

	// Sticky profile: the next turn on the same session must not re-extract.
	f.planGen.err = nil
	second := f.assistant.Process(ctx, Request{
		Text:      "let's try again",
		SessionID: sessions[0].ID,
	})
	if !second.Success {
		t.Fatalf("Second turn failed: %s", second.Error)
	}
	if f.profileGen.calls != 1 {
		t.Errorf("Profile extracted again after a failed turn: %d calls", f.profileGen.calls)
	}
}

func TestProcessProfileFailureShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.profileGen.err = domain.ErrUpstreamTimeout

	resp := f.assistant.Process(context.Background(), Request{Text: "hello"})

	if resp.Success {
		t.Fatal("Expected failure envelope")
	}
	if f.retriever.calls != 0 {
		t.Error("Retriever must not run after a profile failure")
	}
	if f.planGen.calls != 0 {
		t.Error("Planner must not run after a profile failure")
	}
}

func TestProcessRetrieverFailureShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.retriever.err = domain.ErrUpstreamFailure

	resp := f.assistant.Process(context.Background(), Request{Text: "hello"})

	if resp.Success {
		t.Fatal("Expected failure envelope")
	}
	if f.planGen.calls != 0 {
		t.Error("Planner must not run after a retrieval failure")
	}
}
