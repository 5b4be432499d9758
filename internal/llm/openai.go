package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/qaca/surakshapath/internal/safety"
)

// OpenAIProvider uses chat completions with a strict JSON schema response format.
type OpenAIProvider struct {
	apiKey  string
	model   string
	timeout time.Duration
	baseURL string

	mu     sync.Mutex
	client *openai.Client
}

func NewOpenAIProvider(apiKey, model string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model), timeout: timeout}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) ensureClient() (*openai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if p.client == nil {
		// One outbound call per submission: the SDK's own retries are disabled.
		opts := []option.RequestOption{option.WithAPIKey(p.apiKey), option.WithMaxRetries(0)}
		if p.baseURL != "" {
			opts = append(opts, option.WithBaseURL(p.baseURL))
		}
		c := openai.NewClient(opts...)
		p.client = &c
	}
	return p.client, nil
}

func (p *OpenAIProvider) Analyze(ctx context.Context, checklist safety.Checklist) (safety.Verdict, error) {
	client, err := p.ensureClient()
	if err != nil {
		return safety.Verdict{}, err
	}
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	model := p.model
	if model == "" {
		model = "gpt-4o-mini"
	}
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(BuildPrompt(checklist)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "safety_verdict",
					Description: openai.String("Travel safety clearance verdict"),
					Schema:      VerdictJSONSchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return safety.Verdict{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return safety.Verdict{}, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	v, err := decodeVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return safety.Verdict{}, fmt.Errorf("openai: parse verdict: %w", err)
	}
	return v, nil
}
