// Package gemini talks to the Gemini generative-language API and wraps it in
// the LifeSync dietitian, which always produces a reply.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/edgard/lifesync/internal/config"
)

// ErrEmptyResponse means the API answered OK without usable text.
var ErrEmptyResponse = errors.New("gemini returned no text")

// StatusError is a non-OK HTTP status from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini API status %d", e.Code)
	}
	return fmt.Sprintf("gemini API status %d: %s", e.Code, e.Message)
}

// Generator produces text for one prompt on one model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Model describes an available model.
type Model struct {
	Name        string
	DisplayName string
}

// Client is a Generator backed by the genai SDK.
type Client struct {
	genaiClient *genai.Client
	log         *slog.Logger
	temperature float32
	maxTokens   int32
}

// NewClient creates a genai-backed client. httpClient may be nil. The API
// key travels in the x-goog-api-key header set by the SDK.
func NewClient(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	gi, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "models", cfg.Models)
	return &Client{
		genaiClient: gi,
		log:         logger,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
	}, nil
}

// Generate implements Generator. Non-OK statuses come back as *StatusError.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	temperature := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.maxTokens,
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", asStatusError(err)
	}
	return extractText(resp)
}

// ListModels returns the models that support generateContent.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var out []Model
	for m, err := range c.genaiClient.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", asStatusError(err))
		}
		if !slices.Contains(m.SupportedActions, "generateContent") {
			continue
		}
		out = append(out, Model{
			Name:        strings.TrimPrefix(m.Name, "models/"),
			DisplayName: m.DisplayName,
		})
	}
	c.log.DebugContext(ctx, "Listed Gemini models", "count", len(out))
	return out, nil
}

func asStatusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Code: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return err
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			reason = fb.BlockReasonMessage
		}
		return "", fmt.Errorf("%w: blocked: %s", ErrEmptyResponse, reason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
