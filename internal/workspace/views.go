package workspace

import (
	"slices"
	"time"

	"github.com/tjfontaine/autodiag/internal/conversation"
	"github.com/tjfontaine/autodiag/internal/domain"
)

// Snapshot is a copy of a workspace's state.
type Snapshot struct {
	ID               string             `json:"id"`
	Vehicle          domain.VehicleInfo `json:"vehicle"`
	Issues           []domain.Issue     `json:"issues"`
	Symptoms         []domain.Symptom   `json:"symptoms"`
	SelectedSymptoms int                `json:"selectedSymptoms"`
	Suggestions      *Suggestions       `json:"suggestions,omitempty"`
	Conversation     *ConversationView  `json:"conversation,omitempty"`
	HistoryCount     int                `json:"historyCount"`
	CreatedAt        time.Time          `json:"createdAt"`
	LastUsedAt       time.Time          `json:"lastUsedAt"`
}

// ConversationView is the client-facing state of a guided conversation.
type ConversationView struct {
	ID           string                   `json:"id"`
	Description  string                   `json:"description"`
	Turn         domain.ConversationTurn  `json:"turn"`
	History      []domain.Exchange        `json:"history"`
	Step         int                      `json:"step"`
	TotalSteps   int                      `json:"totalSteps"`
	ReportedStep int                      `json:"reportedStep"`
	Done         bool                     `json:"done"`
	Forced       bool                     `json:"forced"`
	Fallback     bool                     `json:"fallback"`
	Result       *domain.DiagnosticResult `json:"result,omitempty"`
	// Entry is the recorded history entry once the conversation is done.
	Entry *domain.HistoryEntry `json:"entry,omitempty"`
}

func newConversationView(s *conversation.Session) ConversationView {
	return ConversationView{
		ID:           s.ID,
		Description:  s.Description,
		Turn:         s.Turn,
		History:      slices.Clone(s.History),
		Step:         s.DisplayStep(),
		TotalSteps:   s.TotalSteps,
		ReportedStep: s.ReportedStep,
		Done:         s.Done(),
		Forced:       s.Forced,
		Fallback:     s.Fallback,
		Result:       s.Result,
	}
}
