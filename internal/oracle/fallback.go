package oracle

import (
	"fmt"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// Fallback texts. Callers and tests compare against these.
const (
	FallbackIssuesAnalysis   = "Unable to analyze issues at this time. Please try again later."
	FallbackSymptomsAnalysis = "Unable to analyze symptoms at this time. Please try again later."
	FallbackFreeTextAnalysis = "I understand you're experiencing some issues with your vehicle. Could you provide more details?"
	FallbackStartMessage     = "Let's narrow the problem down. When do you notice it most?"
	FallbackGuidedAnalysis   = "Unable to complete the guided diagnosis at this time. Please try again later."
)

func retryActions() []string {
	return []string{"Retry analysis", "Consult a professional mechanic"}
}

func fallbackIssues() domain.DiagnosticResult {
	return domain.DiagnosticResult{
		Analysis:           FallbackIssuesAnalysis,
		PossibleCauses:     []string{"AI service temporarily unavailable"},
		RecommendedActions: retryActions(),
		Urgency:            domain.UrgencyMedium,
	}
}

func fallbackSymptoms() domain.DiagnosticResult {
	return domain.DiagnosticResult{
		Analysis:           FallbackSymptomsAnalysis,
		PossibleCauses:     []string{"API service temporarily unavailable"},
		RecommendedActions: retryActions(),
		Urgency:            domain.UrgencyMedium,
	}
}

func fallbackFreeText() domain.FreeTextAnalysis {
	return domain.FreeTextAnalysis{
		Analysis: FallbackFreeTextAnalysis,
		SuggestedIssues: []domain.SuggestedIssue{{
			Description: "General vehicle performance issue",
			Category:    "Engine",
			Severity:    domain.SeverityMedium,
			Reasoning:   "Based on your description, this could be related to engine performance",
		}},
		ClarifyingQuestions: []string{
			"When does this issue typically occur?",
			"Do you notice any unusual sounds, smells, or vibrations?",
			"Has this problem gotten worse over time?",
		},
	}
}

func fallbackStart(total int) domain.ConversationTurn {
	return domain.ConversationTurn{
		Message: FallbackStartMessage,
		Options: []domain.ResponseOption{
			{ID: "starting", Text: "When starting the car", Category: "Engine"},
			{ID: "driving", Text: "While driving or accelerating", Category: "Engine"},
			{ID: "braking", Text: "When braking", Category: "Brakes"},
			{ID: "turning", Text: "When turning or going over bumps", Category: "Suspension"},
		},
		CurrentStep: 1,
		TotalSteps:  total,
	}
}

// FallbackDiagnosis is the terminal diagnosis used when a guided conversation
// cannot continue.
func FallbackDiagnosis() domain.DiagnosticResult {
	return domain.DiagnosticResult{
		Analysis:           FallbackGuidedAnalysis,
		PossibleCauses:     []string{"AI service temporarily unavailable"},
		RecommendedActions: retryActions(),
		Urgency:            domain.UrgencyMedium,
	}
}

func fallbackContinue(total int) domain.ConversationTurn {
	d := FallbackDiagnosis()
	return domain.ConversationTurn{
		Message:     "I wasn't able to continue the guided diagnosis.",
		CurrentStep: total,
		TotalSteps:  total,
		Diagnosis:   &d,
	}
}

// FallbackExplanation is returned when a code cannot be explained.
func FallbackExplanation(code string) string {
	return fmt.Sprintf("Unable to explain code %s at this time. This is typically related to your vehicle's diagnostic system. Please consult a professional mechanic for detailed information.", code)
}
