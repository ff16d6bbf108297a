// Package domain contains core domain types for the financial coach.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message sent by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the assistant.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is part of the closed enumeration.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single immutable entry in a session's conversation history.
// For assistant messages Content holds the serialized plan and Metadata
// carries the structured plan object.
type Message struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Profile is the structured extraction of a user's financial situation.
// Fields are best-effort, schema-shaped free text from the model backend.
type Profile struct {
	FinancialGoals        string `json:"financial_goals"`
	RiskTolerance         string `json:"risk_tolerance"`
	TimeHorizon           string `json:"time_horizon"`
	CurrentSituation      string `json:"current_situation"`
	InvestmentPreferences string `json:"investment_preferences"`
}

// Session is a durable, resumable conversation context.
type Session struct {
	ID                  string         `json:"id"`
	CreatedAt           time.Time      `json:"created_at"`
	LastActive          time.Time      `json:"last_active"`
	ConversationHistory []Message      `json:"conversation_history"`
	UserProfile         *Profile       `json:"user_profile,omitempty"`
	Preferences         map[string]any `json:"preferences,omitempty"`
}

// NewSession creates a session with a fresh id, empty history, and no
// profile or preferences.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastActive: now,
	}
}

// AddMessage appends a message with a fresh id and timestamp. The role must
// belong to the closed enumeration; anything else is a contract violation.
func (s *Session) AddMessage(role Role, content string, metadata map[string]any) (*Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown message role %q", ErrInvalidArgument, role)
	}
	msg := Message{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Role:      role,
		Content:   content,
		Metadata:  metadata,
	}
	s.ConversationHistory = append(s.ConversationHistory, msg)
	s.touch(msg.Timestamp)
	return &s.ConversationHistory[len(s.ConversationHistory)-1], nil
}

// RecentMessages returns the last limit messages in chronological order,
// fewer if the history is shorter. It does not mutate the session.
func (s *Session) RecentMessages(limit int) []Message {
	if limit <= 0 {
		return nil
	}
	if limit >= len(s.ConversationHistory) {
		return s.ConversationHistory
	}
	return s.ConversationHistory[len(s.ConversationHistory)-limit:]
}

// UpdateProfile unconditionally replaces the cached user profile.
func (s *Session) UpdateProfile(p *Profile) {
	s.UserProfile = p
	s.touch(time.Now().UTC())
}

// UpdatePreferences unconditionally replaces the cached preferences.
func (s *Session) UpdatePreferences(prefs map[string]any) {
	s.Preferences = prefs
	s.touch(time.Now().UTC())
}

// touch advances LastActive. It never moves backwards.
func (s *Session) touch(ts time.Time) {
	if ts.After(s.LastActive) {
		s.LastActive = ts
	}
}

// Clone returns a deep copy. The store hands out clones so callers work on
// a private copy and commit through Update.
func (s *Session) Clone() *Session {
	dup := *s
	if s.ConversationHistory != nil {
		dup.ConversationHistory = make([]Message, len(s.ConversationHistory))
		copy(dup.ConversationHistory, s.ConversationHistory)
		for i, msg := range s.ConversationHistory {
			if msg.Metadata != nil {
				md := make(map[string]any, len(msg.Metadata))
				for k, v := range msg.Metadata {
					md[k] = v
				}
				dup.ConversationHistory[i].Metadata = md
			}
		}
	}
	if s.UserProfile != nil {
		profile := *s.UserProfile
		dup.UserProfile = &profile
	}
	if s.Preferences != nil {
		prefs := make(map[string]any, len(s.Preferences))
		for k, v := range s.Preferences {
			prefs[k] = v
		}
		dup.Preferences = prefs
	}
	return &dup
}
