// Package llm turns a safety checklist into a verdict by asking a generative
// model. Providers build the prompt, declare the response schema and decode the
// answer; none of them score risk on their own except the offline rules engine.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qaca/surakshapath/internal/config"
	"github.com/qaca/surakshapath/internal/safety"
)

// LLMProvider analyses one checklist per call.
type LLMProvider interface {
	Analyze(ctx context.Context, checklist safety.Checklist) (safety.Verdict, error)
	Name() string
}

var (
	ErrNoAPIKey          = errors.New("llm: api key not configured")
	ErrMalformedResponse = errors.New("llm: malformed response")
	ErrEmptyResponse     = errors.New("llm: empty response")
)

// NewProvider selects the provider named in cfg.
func NewProvider(cfg config.LLMConfig, apiKey string) (LLMProvider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiProvider(apiKey, cfg.Model, cfg.Timeout), nil
	case config.ProviderOpenAI:
		return NewOpenAIProvider(apiKey, cfg.Model, cfg.Timeout), nil
	case config.ProviderRules:
		return NewRulesProvider(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// withTimeout bounds a single model call. A zero timeout leaves ctx untouched.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
