package llm

import "context"

// MockProvider returns a fixed response for every call, grounded on the
// teacher's internal/core/llm/mock.go. Used by stage tests to drive
// Scenario C (schema-violating LLM) style behavior without a network
// dependency: set Err to simulate a persistent schema violation.
type MockProvider struct {
	Response map[string]any
	Err      error
	Calls    int
}

// Name implements Provider.
func (m *MockProvider) Name() ProviderName { return ProviderMock }

// IsAvailable implements Provider.
func (m *MockProvider) IsAvailable() bool { return true }

// Generate implements Provider.
func (m *MockProvider) Generate(_ context.Context, _, _ string, _ Schema, _ float64) (map[string]any, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}

	return m.Response, nil
}
