// Package events publishes notifications about completed diagnoses.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// TypeDiagnosisCompleted is published after a history entry is recorded.
const TypeDiagnosisCompleted = "diagnosis.completed"

// Source names the path that produced a diagnosis.
type Source string

const (
	SourceIssues       Source = "issues"
	SourceSymptoms     Source = "symptoms"
	SourceConversation Source = "conversation"
)

// Event describes a completed diagnosis.
type Event struct {
	Type        string             `json:"type"`
	WorkspaceID string             `json:"workspace_id"`
	EntryID     string             `json:"entry_id"`
	Source      Source             `json:"source"`
	Urgency     domain.Urgency     `json:"urgency"`
	Fallback    bool               `json:"fallback"`
	Vehicle     domain.VehicleInfo `json:"vehicle"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Publisher delivers events. Publish failures must not fail the diagnosis
// that produced the event; callers log them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogPublisher writes events to a structured logger. It is the default when
// no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs to logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the event at info level.
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "event",
		slog.String("type", event.Type),
		slog.String("workspace_id", event.WorkspaceID),
		slog.String("entry_id", event.EntryID),
		slog.String("source", string(event.Source)),
		slog.String("urgency", string(event.Urgency)),
		slog.Bool("fallback", event.Fallback),
	)
	return nil
}

// Close is a no-op for the log publisher.
func (p *LogPublisher) Close() error {
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
func (Discard) Close() error                         { return nil }
