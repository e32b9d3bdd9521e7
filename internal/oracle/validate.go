package oracle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tjfontaine/autodiag/internal/domain"
)

var (
	errMissingAnalysis = errors.New("missing analysis")
	errMissingUrgency  = errors.New("missing urgency")
	errMissingMessage  = errors.New("missing message")
	errNoOptions       = errors.New("no response options")
)

func validateResult(r *domain.DiagnosticResult) error {
	if strings.TrimSpace(r.Analysis) == "" {
		return errMissingAnalysis
	}
	if r.Urgency.Rank() == 0 {
		return errMissingUrgency
	}
	if r.PossibleCauses == nil {
		r.PossibleCauses = []string{}
	}
	if r.RecommendedActions == nil {
		r.RecommendedActions = []string{}
	}
	if c := r.EstimatedCost; c != nil {
		if c.Min < 0 || c.Max < c.Min {
			return fmt.Errorf("invalid cost range %v-%v", c.Min, c.Max)
		}
	}
	return nil
}

func validateFreeText(a *domain.FreeTextAnalysis) error {
	if strings.TrimSpace(a.Analysis) == "" {
		return errMissingAnalysis
	}
	for i, s := range a.SuggestedIssues {
		if strings.TrimSpace(s.Description) == "" {
			return fmt.Errorf("suggested issue %d: missing description", i)
		}
		if s.Severity.Rank() == 0 {
			return fmt.Errorf("suggested issue %d: missing severity", i)
		}
	}
	if a.SuggestedIssues == nil {
		a.SuggestedIssues = []domain.SuggestedIssue{}
	}
	if a.ClarifyingQuestions == nil {
		a.ClarifyingQuestions = []string{}
	}
	return nil
}

// validateTurn accepts either a terminal turn with a valid diagnosis or a
// question with at least one option. Missing option ids are filled in by
// position; duplicate ids are rejected.
func validateTurn(t *domain.ConversationTurn) error {
	if t.Diagnosis != nil {
		if err := validateResult(t.Diagnosis); err != nil {
			return fmt.Errorf("final diagnosis: %w", err)
		}
		return nil
	}
	if strings.TrimSpace(t.Message) == "" {
		return errMissingMessage
	}
	if len(t.Options) == 0 {
		return errNoOptions
	}
	seen := make(map[string]bool, len(t.Options))
	for i := range t.Options {
		o := &t.Options[i]
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("response option %d: missing text", i)
		}
		if o.ID == "" {
			o.ID = fmt.Sprintf("option-%d", i+1)
		}
		if seen[o.ID] {
			return fmt.Errorf("duplicate response option id %q", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}
