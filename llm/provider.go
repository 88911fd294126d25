// Package llm provides the text-generation collaborator used by the
// enrichment, deduplication, and hierarchy stages.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when the provider cannot be reached or
	// responds with a retryable server-side failure.
	ErrUnavailable = errors.New("llm: provider unavailable")

	// ErrRequestFailed is returned for non-retryable API failures
	// (bad request, auth, unknown model).
	ErrRequestFailed = errors.New("llm: request failed")

	// ErrBadResponse is returned when the provider's output cannot be
	// decoded into the requested shape.
	ErrBadResponse = errors.New("llm: malformed response")
)

// Provider is the interface for text completion.
type Provider interface {
	// Complete sends a completion request and returns the response text.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a single completion request.
type Request struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Response is the result of a completion request.
type Response struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	FinishReason     string `json:"finish_reason"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Config configures a provider endpoint.
type Config struct {
	Provider string `json:"provider" env:"PROVIDER"` // deepseek, openai, custom
	Model    string `json:"model" env:"MODEL"`
	BaseURL  string `json:"base_url" env:"BASE_URL"`
	APIKey   string `json:"api_key" env:"API_KEY"`
}

// NewProvider creates a provider from configuration. All supported
// providers speak the OpenAI-compatible chat completions protocol; the
// provider name selects defaults for base URL and model.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "deepseek":
		return NewDeepSeek(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "custom":
		return NewOpenAICompat(cfg), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// IsTransient reports whether err represents a transport-level failure
// worth retrying. Decode failures and non-retryable API errors are not.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
