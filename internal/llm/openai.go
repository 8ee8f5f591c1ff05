package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIProvider calls OpenAI's chat completions endpoint with a strict
// JSON-schema response format. Grounded on the teacher's
// internal/core/llm/openai.go client construction
// (github.com/sashabaranov/go-openai, golang.org/x/time/rate limiter)
// and original's registry.call_openai for the schema-wrapping shape,
// translated from the Python Responses API to go-openai's chat
// completions JSON-schema response format.
type OpenAIProvider struct {
	client      *openai.Client
	rateLimiter *rate.Limiter
	apiKey      string
}

// NewOpenAIProvider constructs a provider against apiKey, rate-limited to
// rps requests/sec with a burst of 5 (teacher's rateLimiterBurst).
func NewOpenAIProvider(apiKey string, rps float64) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 5),
		apiKey:      apiKey,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() ProviderName { return ProviderOpenAI }

// IsAvailable implements Provider.
func (p *OpenAIProvider) IsAvailable() bool { return p.apiKey != "" }

// Generate implements Provider.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt, model string, schema Schema, temperature float64) (map[string]any, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai rate limiter: %w", err)
	}

	adapted := ToOpenAI(schema)

	rawSchema, err := json.Marshal(adapted)
	if err != nil {
		return nil, fmt.Errorf("marshal openai schema: %w", err)
	}

	name, _ := schema["title"].(string)
	if name == "" {
		name = "Response"
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Strict: true,
				Schema: json.RawMessage(rawSchema),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai structured generation: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("decode openai structured response: %w", err)
	}

	return result, nil
}
