package llm

import "context"

// ProviderName identifies a structured-generation LLM provider.
type ProviderName string

// Provider name constants, grounded on the teacher's llm.ProviderName set
// restricted to the three providers this pipeline actually wires.
const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGemini    ProviderName = "gemini"
	ProviderMock      ProviderName = "mock"
)

// Provider performs one structured-generation call against a single
// backend, per spec.md §4.6's call(...) contract minus the
// retry/provider-selection concerns (handled by Invoke and Registry).
type Provider interface {
	Name() ProviderName
	IsAvailable() bool
	Generate(ctx context.Context, prompt, model string, schema Schema, temperature float64) (map[string]any, error)
}
