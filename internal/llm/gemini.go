package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider calls Google's Gemini structured-output API. Grounded on
// original's registry.call_gemini (response_mime_type/response_schema)
// and promoted from the teacher's indirect google/generative-ai-go
// dependency (used directly by sibling pack repo rcliao-briefly) into a
// direct one here.
type GeminiProvider struct {
	apiKey string
}

// NewGeminiProvider constructs a provider against apiKey.
func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey}
}

// Name implements Provider.
func (p *GeminiProvider) Name() ProviderName { return ProviderGemini }

// IsAvailable implements Provider.
func (p *GeminiProvider) IsAvailable() bool { return p.apiKey != "" }

// Generate implements Provider.
func (p *GeminiProvider) Generate(ctx context.Context, prompt, model string, schema Schema, temperature float64) (map[string]any, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	gm := client.GenerativeModel(model)
	gm.GenerationConfig.ResponseMIMEType = "application/json"
	gm.GenerationConfig.Temperature = float32ptr(float32(temperature))
	gm.GenerationConfig.ResponseSchema = toGenaiSchema(ToGemini(schema))

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini structured generation: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("gemini returned non-text part")
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("decode gemini structured response: %w", err)
	}

	return result, nil
}

func float32ptr(f float32) *float32 { return &f }

// toGenaiSchema converts the generic Gemini-shaped schema map (already
// upper-cased/propertyOrdering-annotated by ToGemini) into the SDK's
// strongly-typed genai.Schema.
func toGenaiSchema(node any) *genai.Schema {
	m, ok := node.(Schema)
	if !ok {
		return nil
	}

	s := &genai.Schema{}

	if t, ok := m["type"].(string); ok {
		s.Type = genaiType(t)
	}

	if props, ok := m["properties"].(PropertyList); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for _, ns := range props {
			s.Properties[ns.Name] = toGenaiSchema(ns.Schema)
		}
	}

	if ordering, ok := m["propertyOrdering"].([]string); ok {
		s.PropertyOrdering = ordering
	}

	if items, ok := m["items"]; ok {
		s.Items = toGenaiSchema(items)
	}

	if required, ok := m["required"].([]string); ok {
		s.Required = required
	}

	return s
}

func genaiType(t string) genai.Type {
	switch t {
	case "OBJECT":
		return genai.TypeObject
	case "STRING":
		return genai.TypeString
	case "ARRAY":
		return genai.TypeArray
	case "NUMBER":
		return genai.TypeNumber
	case "INTEGER":
		return genai.TypeInteger
	case "BOOLEAN":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
