// Package oracle asks a generative language model for vehicle diagnoses.
//
// Every operation renders a fixed prompt, sends it through a Generator and
// decodes the reply. Failures never reach the caller as errors: each
// operation substitutes its fallback payload and reports the cause in the
// returned Outcome.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/tokens"
)

// DefaultTotalSteps bounds a guided conversation.
const DefaultTotalSteps = 5

// Operation names, used for logging and spans.
const (
	OpAnalyzeIssues        = "analyze_issues"
	OpAnalyzeSymptoms      = "analyze_symptoms"
	OpAnalyzeFreeText      = "analyze_free_text"
	OpStartConversation    = "start_conversation"
	OpContinueConversation = "continue_conversation"
	OpExplainCode          = "explain_code"
)

// Outcome describes how an operation was answered.
type Outcome struct {
	// Fallback is set when the payload is the operation's canned fallback.
	Fallback     bool
	Err          error
	PromptTokens int
	Duration     time.Duration
}

// Options configures a Client. Zero values disable the corresponding limit.
type Options struct {
	// Rate is the sustained number of oracle calls per second.
	Rate  float64
	Burst int
	// MaxPromptTokens rejects prompts larger than this many tokens.
	MaxPromptTokens int
	Counter         tokens.Counter
	// Timeout bounds a single oracle call.
	Timeout    time.Duration
	TotalSteps int
	Logger     *slog.Logger
}

// Client runs the diagnostic operations against a Generator.
type Client struct {
	gen        Generator
	limiter    *rate.Limiter
	budget     *tokens.Budget
	timeout    time.Duration
	totalSteps int
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewClient creates a client around gen.
func NewClient(gen Generator, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	counter := opts.Counter
	if counter == nil {
		counter = tokens.NewTiktokenCounter("")
	}
	total := opts.TotalSteps
	if total <= 0 {
		total = DefaultTotalSteps
	}
	return &Client{
		gen:        gen,
		limiter:    limiter,
		budget:     tokens.NewBudget(counter, opts.MaxPromptTokens),
		timeout:    opts.Timeout,
		totalSteps: total,
		logger:     logger.With("component", "oracle"),
		tracer:     otel.Tracer("github.com/tjfontaine/autodiag/internal/oracle"),
	}
}

// TotalSteps is the length of a guided conversation.
func (c *Client) TotalSteps() int { return c.totalSteps }

// AnalyzeIssues diagnoses a list of described issues.
func (c *Client) AnalyzeIssues(ctx context.Context, vehicle domain.VehicleInfo, issues []domain.Issue) (domain.DiagnosticResult, Outcome) {
	data := promptData{Vehicle: newVehicleView(vehicle), Issues: issues}
	return call(ctx, c, OpAnalyzeIssues, "issues", data, resultSchema, validateResult, fallbackIssues)
}

// AnalyzeSymptoms diagnoses the selected symptoms. Unselected symptoms are
// not sent.
func (c *Client) AnalyzeSymptoms(ctx context.Context, vehicle domain.VehicleInfo, symptoms []domain.Symptom) (domain.DiagnosticResult, Outcome) {
	selected := make([]domain.Symptom, 0, len(symptoms))
	for _, s := range symptoms {
		if s.Selected {
			selected = append(selected, s)
		}
	}
	data := promptData{Vehicle: newVehicleView(vehicle), Symptoms: selected}
	return call(ctx, c, OpAnalyzeSymptoms, "symptoms", data, resultSchema, validateResult, fallbackSymptoms)
}

// AnalyzeFreeText interprets a description that matched no canned issue.
func (c *Client) AnalyzeFreeText(ctx context.Context, vehicle domain.VehicleInfo, text string) (domain.FreeTextAnalysis, Outcome) {
	data := promptData{Vehicle: newVehicleView(vehicle), Text: text}
	return call(ctx, c, OpAnalyzeFreeText, "freetext", data, freeTextSchema, validateFreeText, fallbackFreeText)
}

// StartConversation asks the first question of a guided conversation.
func (c *Client) StartConversation(ctx context.Context, vehicle domain.VehicleInfo, description string) (domain.ConversationTurn, Outcome) {
	data := promptData{
		Vehicle:    newVehicleView(vehicle),
		Text:       description,
		Step:       1,
		TotalSteps: c.totalSteps,
	}
	fallback := func() domain.ConversationTurn { return fallbackStart(c.totalSteps) }
	return call(ctx, c, OpStartConversation, "start", data, turnSchema, validateTurn, fallback)
}

// ContinueConversation sends the answered questions so far and returns the
// next question or the final diagnosis. step is the number of the turn being
// requested. Steps past the end are rendered as the last step.
func (c *Client) ContinueConversation(ctx context.Context, vehicle domain.VehicleInfo, description string, history []domain.Exchange, step int) (domain.ConversationTurn, Outcome) {
	data := promptData{
		Vehicle:    newVehicleView(vehicle),
		Text:       description,
		History:    history,
		Step:       min(step, c.totalSteps),
		TotalSteps: c.totalSteps,
		Last:       step >= c.totalSteps,
	}
	fallback := func() domain.ConversationTurn { return fallbackContinue(c.totalSteps) }
	return call(ctx, c, OpContinueConversation, "continue", data, turnSchema, validateTurn, fallback)
}

// ExplainCode returns a plain-language explanation of a trouble code.
func (c *Client) ExplainCode(ctx context.Context, code string) (string, Outcome) {
	code = strings.ToUpper(strings.TrimSpace(code))
	data := promptData{Code: code}
	parse := func(op, text string, _ func(*string) error) (string, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return "", &ParseError{Op: op, Reason: "validate", Err: ErrEmptyResponse}
		}
		return text, nil
	}
	fallback := func() string { return FallbackExplanation(code) }
	return invoke(ctx, c, OpExplainCode, "explain", data, Request{Format: FormatText}, nil, parse, fallback)
}

func call[T any](ctx context.Context, c *Client, op, tmpl string, data promptData, schema *genai.Schema, validate func(*T) error, fallback func() T) (T, Outcome) {
	req := Request{Format: FormatJSON, Schema: schema}
	return invoke(ctx, c, op, tmpl, data, req, validate, Decode[T], fallback)
}

func invoke[T any](
	ctx context.Context,
	c *Client,
	op, tmpl string,
	data promptData,
	req Request,
	validate func(*T) error,
	parse func(op, text string, validate func(*T) error) (T, error),
	fallback func() T,
) (T, Outcome) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "oracle."+op, trace.WithAttributes(attribute.String("oracle.operation", op)))
	defer span.End()

	out, n, err := generate(ctx, c, op, tmpl, data, req, validate, parse)
	outcome := Outcome{PromptTokens: n, Duration: time.Since(start)}
	span.SetAttributes(attribute.Int("oracle.prompt_tokens", n))

	if err != nil {
		outcome.Fallback = true
		outcome.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback")
		c.logger.ErrorContext(ctx, "oracle call failed, using fallback",
			slog.String("operation", op),
			slog.Duration("duration", outcome.Duration),
			slog.String("error", err.Error()),
		)
		return fallback(), outcome
	}

	c.logger.DebugContext(ctx, "oracle call completed",
		slog.String("operation", op),
		slog.Int("prompt_tokens", n),
		slog.Duration("duration", outcome.Duration),
	)
	return out, outcome
}

func generate[T any](
	ctx context.Context,
	c *Client,
	op, tmpl string,
	data promptData,
	req Request,
	validate func(*T) error,
	parse func(op, text string, validate func(*T) error) (T, error),
) (T, int, error) {
	var zero T

	prompt, err := render(tmpl, data)
	if err != nil {
		return zero, 0, err
	}
	n, err := c.budget.Check(prompt)
	if err != nil {
		return zero, n, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, n, fmt.Errorf("rate limit wait: %w", err)
	}

	req.Prompt = prompt
	text, err := c.gen.Generate(ctx, req)
	if err != nil {
		return zero, n, err
	}
	out, err := parse(op, text, validate)
	if err != nil {
		return zero, n, err
	}
	return out, n, nil
}

// IsParseError reports whether err came from decoding a model reply.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
