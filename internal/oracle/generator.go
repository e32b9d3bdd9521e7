package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Format is the response format requested from the generator.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Request is a single text generation call.
type Request struct {
	Prompt string
	Format Format
	// Schema optionally constrains JSON output.
	Schema *genai.Schema
}

// Generator produces text for a prompt. It is the only part of the oracle
// client that talks to the network.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// ErrNoCredential is returned by the Unconfigured generator.
var ErrNoCredential = errors.New("no Gemini API key configured")

// Unconfigured returns a generator that fails every request, so each
// operation answers with its fallback.
func Unconfigured() Generator {
	return GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		return "", ErrNoCredential
	})
}

// GenAIConfig configures the Gemini generator.
type GenAIConfig struct {
	Model string
	// BaseURL overrides the Gemini endpoint, mainly for tests.
	BaseURL string
	// HTTPClient overrides the transport, mainly for recorded tests.
	HTTPClient  *http.Client
	Temperature *float32
}

// GenAIGenerator generates text with the Gemini API.
type GenAIGenerator struct {
	client      *genai.Client
	model       string
	temperature *float32
}

// NewGenAIGenerator creates a Gemini generator authenticated with cred.
func NewGenAIGenerator(ctx context.Context, cred Credential, cfg GenAIConfig) (*GenAIGenerator, error) {
	if cred.IsZero() {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cred.Value(),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the model name requests are sent to.
func (g *GenAIGenerator) Model() string { return g.model }

// Generate sends one generateContent request.
func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: g.temperature,
	}
	if req.Format == FormatJSON {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
