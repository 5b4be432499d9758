package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/qaca/surakshapath/internal/safety"
)

// GeminiProvider calls the Gemini API with a JSON response schema.
type GeminiProvider struct {
	apiKey  string
	model   string
	timeout time.Duration
	baseURL string

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiProvider(apiKey, model string, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model), timeout: timeout}
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) ensureClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if g.client != nil {
		return g.client, nil
	}
	cc := &genai.ClientConfig{APIKey: g.apiKey, Backend: genai.BackendGeminiAPI}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	g.client = client
	return client, nil
}

// Analyze sends one generateContent request.
func (g *GeminiProvider) Analyze(ctx context.Context, checklist safety.Checklist) (safety.Verdict, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return safety.Verdict{}, err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	model := g.model
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(BuildPrompt(checklist)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiVerdictSchema(),
	})
	if err != nil {
		return safety.Verdict{}, fmt.Errorf("gemini: generate content: %w", err)
	}
	v, err := decodeVerdict(resp.Text())
	if err != nil {
		return safety.Verdict{}, fmt.Errorf("gemini: parse verdict: %w", err)
	}
	return v, nil
}

func geminiVerdictSchema() *genai.Schema {
	list := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			fieldVerdict:         {Type: genai.TypeString, Description: "SAFE, UNSAFE, or CAUTION", Enum: outcomeEnum()},
			fieldScore:           {Type: genai.TypeNumber, Description: "Safety score from 0 to 100"},
			fieldReasoning:       {Type: genai.TypeString, Description: "Explanation of the verdict"},
			fieldRiskFactors:     list("Identified risk factors, most severe first"),
			fieldRecommendations: list("Actions the staff member should take"),
		},
		Required:         append([]string(nil), requiredFields...),
		PropertyOrdering: append([]string(nil), requiredFields...),
	}
}
