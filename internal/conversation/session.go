// Package conversation runs guided diagnostic conversations: a short series
// of multiple-choice questions asked by the oracle that ends in a diagnosis.
//
// The oracle reports its own step counter, but a Session keeps its own. The
// local step starts at 1, grows by exactly one per answer and the session is
// forced to finish once it passes the configured number of steps, whatever
// the oracle says.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/oracle"
)

var (
	// ErrUnknownOption is returned when an answer is not one of the current
	// turn's options.
	ErrUnknownOption = errors.New("unknown response option")
	// ErrSessionClosed is returned when answering a finished session.
	ErrSessionClosed = errors.New("conversation already finished")
)

// Oracle is the subset of the oracle client a session needs.
type Oracle interface {
	StartConversation(ctx context.Context, vehicle domain.VehicleInfo, description string) (domain.ConversationTurn, oracle.Outcome)
	ContinueConversation(ctx context.Context, vehicle domain.VehicleInfo, description string, history []domain.Exchange, step int) (domain.ConversationTurn, oracle.Outcome)
}

// Session is one guided conversation. It is not safe for concurrent use.
type Session struct {
	ID          string
	Vehicle     domain.VehicleInfo
	Description string
	History     []domain.Exchange
	// Step is the locally enforced step, starting at 1.
	Step       int
	TotalSteps int
	// ReportedStep is the step the oracle claimed for the current turn.
	ReportedStep int
	Turn         domain.ConversationTurn
	Result       *domain.DiagnosticResult
	// Forced is set when the session was ended by the step cap rather than
	// by a diagnosis from the oracle.
	Forced    bool
	Fallback  bool
	StartedAt time.Time

	lastAnalysis string
}

// Start asks the oracle for the opening question.
func Start(ctx context.Context, o Oracle, vehicle domain.VehicleInfo, description string, totalSteps int) (*Session, oracle.Outcome, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, oracle.Outcome{}, domain.NewValidationError("description", "", domain.ErrEmptyQuery)
	}
	if totalSteps <= 0 {
		totalSteps = oracle.DefaultTotalSteps
	}

	s := &Session{
		ID:          uuid.NewString(),
		Vehicle:     vehicle,
		Description: description,
		History:     []domain.Exchange{},
		Step:        1,
		TotalSteps:  totalSteps,
		StartedAt:   time.Now().UTC(),
	}
	turn, out := o.StartConversation(ctx, vehicle, description)
	s.apply(turn, out)
	return s, out, nil
}

// Done reports whether the session has a final result.
func (s *Session) Done() bool {
	return s.Result != nil
}

// Respond records the chosen option and asks the oracle for the next turn.
func (s *Session) Respond(ctx context.Context, o Oracle, optionID string) (oracle.Outcome, error) {
	if s.Done() {
		return oracle.Outcome{}, ErrSessionClosed
	}
	opt, ok := s.Turn.Option(optionID)
	if !ok {
		return oracle.Outcome{}, ErrUnknownOption
	}

	s.History = append(s.History, domain.Exchange{Question: s.Turn.Message, Answer: opt.Text})
	s.Step++

	turn, out := o.ContinueConversation(ctx, s.Vehicle, s.Description, s.History, s.Step)
	s.apply(turn, out)
	if !s.Done() && s.Step > s.TotalSteps {
		s.forceFinish()
	}
	return out, nil
}

// Answers returns the chosen answers in order.
func (s *Session) Answers() []string {
	out := make([]string, len(s.History))
	for i, e := range s.History {
		out[i] = e.Answer
	}
	return out
}

// DisplayStep is the step to show, never above TotalSteps.
func (s *Session) DisplayStep() int {
	return min(s.Step, s.TotalSteps)
}

func (s *Session) apply(turn domain.ConversationTurn, out oracle.Outcome) {
	s.ReportedStep = turn.CurrentStep
	turn.CurrentStep = s.DisplayStep()
	turn.TotalSteps = s.TotalSteps
	s.Turn = turn
	s.Fallback = out.Fallback
	if turn.Analysis != "" {
		s.lastAnalysis = turn.Analysis
	}
	if turn.Diagnosis != nil {
		d := *turn.Diagnosis
		s.Result = &d
		s.Turn.Options = nil
	}
}

func (s *Session) forceFinish() {
	result := oracle.FallbackDiagnosis()
	if s.lastAnalysis != "" {
		result = domain.DiagnosticResult{
			Analysis:           s.lastAnalysis,
			PossibleCauses:     []string{},
			RecommendedActions: []string{"Consult a professional mechanic"},
			Urgency:            domain.UrgencyMedium,
		}
	}
	s.Result = &result
	s.Forced = true
	s.Turn.Options = nil
	s.Turn.Diagnosis = &result
}
