package api

import (
	"time"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/matcher"
	"github.com/tjfontaine/autodiag/internal/workspace"
)

// The views below add display colour hints to domain values.

type issueView struct {
	domain.Issue
	SeverityColor string `json:"severityColor"`
}

func newIssueViews(issues []domain.Issue) []issueView {
	out := make([]issueView, len(issues))
	for i, is := range issues {
		out[i] = issueView{Issue: is, SeverityColor: is.Severity.Color()}
	}
	return out
}

type codeView struct {
	domain.DiagnosticCode
	SeverityColor string `json:"severityColor"`
}

func newCodeView(c domain.DiagnosticCode) codeView {
	return codeView{DiagnosticCode: c, SeverityColor: c.Severity.Color()}
}

type resultView struct {
	domain.DiagnosticResult
	UrgencyColor string `json:"urgencyColor"`
}

func newResultView(r *domain.DiagnosticResult) *resultView {
	if r == nil {
		return nil
	}
	return &resultView{DiagnosticResult: *r, UrgencyColor: r.Urgency.Color()}
}

type suggestedIssueView struct {
	domain.SuggestedIssue
	SeverityColor string `json:"severityColor"`
}

type suggestionsView struct {
	Query               string               `json:"query"`
	Analysis            string               `json:"analysis"`
	SuggestedIssues     []suggestedIssueView `json:"suggestedIssues"`
	ClarifyingQuestions []string             `json:"clarifyingQuestions"`
	Fallback            bool                 `json:"fallback"`
}

func newSuggestionsView(s *workspace.Suggestions) *suggestionsView {
	if s == nil {
		return nil
	}
	v := &suggestionsView{
		Query:               s.Query,
		Analysis:            s.Analysis.Analysis,
		SuggestedIssues:     make([]suggestedIssueView, len(s.Analysis.SuggestedIssues)),
		ClarifyingQuestions: s.Analysis.ClarifyingQuestions,
		Fallback:            s.Fallback,
	}
	if v.ClarifyingQuestions == nil {
		v.ClarifyingQuestions = []string{}
	}
	for i, si := range s.Analysis.SuggestedIssues {
		v.SuggestedIssues[i] = suggestedIssueView{SuggestedIssue: si, SeverityColor: si.Severity.Color()}
	}
	return v
}

type searchResponse struct {
	Mode        matcher.Mode     `json:"mode"`
	Added       []issueView      `json:"added"`
	Suggestions *suggestionsView `json:"suggestions,omitempty"`
}

type analysisResponse struct {
	Result   *resultView         `json:"result"`
	Fallback bool                `json:"fallback"`
	Entry    domain.HistoryEntry `json:"entry"`
}

func newAnalysisResponse(a workspace.Analysis) analysisResponse {
	return analysisResponse{Result: newResultView(&a.Result), Fallback: a.Fallback, Entry: a.Entry}
}

type conversationView struct {
	ID           string                  `json:"id"`
	Description  string                  `json:"description"`
	Message      string                  `json:"message"`
	Options      []domain.ResponseOption `json:"options"`
	Analysis     string                  `json:"analysis,omitempty"`
	History      []domain.Exchange       `json:"history"`
	Step         int                     `json:"step"`
	TotalSteps   int                     `json:"totalSteps"`
	ReportedStep int                     `json:"reportedStep"`
	Done         bool                    `json:"done"`
	Forced       bool                    `json:"forced"`
	Fallback     bool                    `json:"fallback"`
	Result       *resultView             `json:"result,omitempty"`
	Entry        *domain.HistoryEntry    `json:"entry,omitempty"`
}

func newConversationView(c *workspace.ConversationView) *conversationView {
	if c == nil {
		return nil
	}
	v := &conversationView{
		ID:           c.ID,
		Description:  c.Description,
		Message:      c.Turn.Message,
		Options:      c.Turn.Options,
		Analysis:     c.Turn.Analysis,
		History:      c.History,
		Step:         c.Step,
		TotalSteps:   c.TotalSteps,
		ReportedStep: c.ReportedStep,
		Done:         c.Done,
		Forced:       c.Forced,
		Fallback:     c.Fallback,
		Result:       newResultView(c.Result),
		Entry:        c.Entry,
	}
	if v.Options == nil {
		v.Options = []domain.ResponseOption{}
	}
	return v
}

type workspaceView struct {
	ID               string             `json:"id"`
	Vehicle          domain.VehicleInfo `json:"vehicle"`
	Issues           []issueView        `json:"issues"`
	Symptoms         []domain.Symptom   `json:"symptoms"`
	SelectedSymptoms int                `json:"selectedSymptoms"`
	Suggestions      *suggestionsView   `json:"suggestions,omitempty"`
	Conversation     *conversationView  `json:"conversation,omitempty"`
	HistoryCount     int                `json:"historyCount"`
	CreatedAt        time.Time          `json:"createdAt"`
	LastUsedAt       time.Time          `json:"lastUsedAt"`
}

func newWorkspaceView(s workspace.Snapshot) workspaceView {
	return workspaceView{
		ID:               s.ID,
		Vehicle:          s.Vehicle,
		Issues:           newIssueViews(s.Issues),
		Symptoms:         s.Symptoms,
		SelectedSymptoms: s.SelectedSymptoms,
		Suggestions:      newSuggestionsView(s.Suggestions),
		Conversation:     newConversationView(s.Conversation),
		HistoryCount:     s.HistoryCount,
		CreatedAt:        s.CreatedAt,
		LastUsedAt:       s.LastUsedAt,
	}
}

type explanationResponse struct {
	Code        string    `json:"code"`
	Known       *codeView `json:"known,omitempty"`
	Explanation string    `json:"explanation"`
	Fallback    bool      `json:"fallback"`
}
