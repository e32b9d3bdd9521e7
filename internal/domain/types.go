// Package domain defines the vehicle diagnostic types shared by the matcher,
// oracle client, conversation sessions and the HTTP API.
package domain

import "time"

// VehicleInfo describes the vehicle a diagnosis is about.
type VehicleInfo struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Year    int    `json:"year"`
	Engine  string `json:"engine,omitempty"`
	Mileage *int   `json:"mileage,omitempty"`
}

// Issue is a describable car problem, either canned or synthesized from an
// oracle suggestion.
type Issue struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Severity     Severity `json:"severity"`
	CommonCauses []string `json:"commonCauses"`
	Keywords     []string `json:"keywords"`
}

// Symptom is an entry of the symptom checklist.
type Symptom struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Selected    bool   `json:"selected"`
}

// DiagnosticCode is an OBD-II diagnostic trouble code.
type DiagnosticCode struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	System      string   `json:"system"`
}

// CostRange is an estimated repair cost in USD.
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DiagnosticResult is the structured analysis produced by the oracle.
type DiagnosticResult struct {
	Analysis           string     `json:"analysis"`
	PossibleCauses     []string   `json:"possibleCauses"`
	RecommendedActions []string   `json:"recommendedActions"`
	EstimatedCost      *CostRange `json:"estimatedCost,omitempty"`
	Urgency            Urgency    `json:"urgency"`
}

// SuggestedIssue is an issue proposed by the oracle for unmatched free text.
type SuggestedIssue struct {
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Reasoning   string   `json:"reasoning"`
}

// FreeTextAnalysis is the oracle's reading of a description that matched no
// canned issue.
type FreeTextAnalysis struct {
	Analysis            string           `json:"analysis"`
	SuggestedIssues     []SuggestedIssue `json:"suggestedIssues"`
	ClarifyingQuestions []string         `json:"clarifyingQuestions"`
}

// ResponseOption is one multiple-choice answer offered during a guided
// conversation.
type ResponseOption struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

// Exchange is one answered question of a guided conversation.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ConversationTurn is what the oracle returns for each step of a guided
// conversation. CurrentStep and TotalSteps are reported by the oracle and are
// advisory only.
type ConversationTurn struct {
	Message     string            `json:"message"`
	Options     []ResponseOption  `json:"responseOptions"`
	CurrentStep int               `json:"currentStep"`
	TotalSteps  int               `json:"totalSteps"`
	Analysis    string            `json:"analysis,omitempty"`
	Diagnosis   *DiagnosticResult `json:"finalDiagnosis,omitempty"`
}

// Terminal reports whether the turn carries a final diagnosis.
func (t ConversationTurn) Terminal() bool {
	return t.Diagnosis != nil
}

// Option returns the response option with the given id.
func (t ConversationTurn) Option(id string) (ResponseOption, bool) {
	for _, o := range t.Options {
		if o.ID == id {
			return o, true
		}
	}
	return ResponseOption{}, false
}

// HistoryEntry records one completed analysis.
type HistoryEntry struct {
	ID       string           `json:"id"`
	Date     time.Time        `json:"date"`
	Codes    []DiagnosticCode `json:"codes"`
	Symptoms []string         `json:"symptoms"`
	Result   DiagnosticResult `json:"result"`
	Vehicle  VehicleInfo      `json:"vehicleInfo"`
}
