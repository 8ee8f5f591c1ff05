package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicProvider calls Claude via the Messages API. Anthropic's API
// has no native JSON-schema response-format mode (unlike OpenAI/Gemini,
// the only two providers original's registry.py wires), so the schema is
// rendered into the prompt as an instruction and the response is
// extracted as the first balanced JSON object in the reply, the way the
// teacher's internal/core/llm/anthropic.go extractJSON/extractTextFromResponse
// pair handles free-text Claude responses that are expected to carry
// embedded JSON.
type AnthropicProvider struct {
	client anthropic.Client
	apiKey string
}

// NewAnthropicProvider constructs a provider against apiKey.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		apiKey: apiKey,
	}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() ProviderName { return ProviderAnthropic }

// IsAvailable implements Provider.
func (p *AnthropicProvider) IsAvailable() bool { return p.apiKey != "" }

// Generate implements Provider.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt, model string, schema Schema, temperature float64) (map[string]any, error) {
	rawSchema, err := json.Marshal(ToOpenAI(schema))
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic schema: %w", err)
	}

	fullPrompt := prompt + "\n\nRespond with a single JSON object only, conforming exactly to this JSON Schema:\n" + string(rawSchema)

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fullPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic structured generation: %w", err)
	}

	text := extractTextFromResponse(resp)

	jsonText := extractJSONObject(text)

	var result map[string]any
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return nil, fmt.Errorf("decode anthropic structured response: %w", err)
	}

	return result, nil
}

func extractTextFromResponse(resp *anthropic.Message) string {
	var out strings.Builder

	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	return out.String()
}

// extractJSONObject scans text for the first balanced {...} substring
// that parses as valid JSON, falling back to the full text. Grounded on
// the teacher's extractJSON/extractValidJSONByBracket pair, simplified to
// the object-only case since every schema this pipeline calls Claude
// with is a JSON object.
func extractJSONObject(text string) string {
	depth := 0
	start := -1

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				start = i
			}

			depth++
		case '}':
			if depth == 0 {
				continue
			}

			depth--

			if depth == 0 && start != -1 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate
				}
			}
		}
	}

	return text
}
