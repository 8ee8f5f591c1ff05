package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
	"github.com/lueurxax/briefing-pipeline/internal/platform/observability"
)

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
)

// circuitBreaker is a minimal consecutive-failure breaker, grounded on
// the teacher's openaiClient checkCircuit/recordSuccess/recordFailure
// trio (internal/core/llm/openai.go), generalized out of the OpenAI
// client into a reusable per-provider wrapper since this registry fronts
// three providers instead of one.
type circuitBreaker struct {
	mu                  sync.Mutex
	consecutiveFailures int
	openUntil           time.Time
}

func (b *circuitBreaker) check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Now().Before(b.openUntil) {
		return fmt.Errorf("%w until %v", pipelineerrors.ErrCircuitBreakerOpen, b.openUntil)
	}

	return nil
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
}

func (b *circuitBreaker) recordFailure(logger *zerolog.Logger, name ProviderName) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	if b.consecutiveFailures >= circuitBreakerThreshold {
		b.openUntil = time.Now().Add(circuitBreakerTimeout)
		logger.Warn().
			Str("provider", string(name)).
			Int("consecutive_failures", b.consecutiveFailures).
			Time("open_until", b.openUntil).
			Msg("llm circuit breaker opened")
	}
}

// breakerProvider wraps a Provider with a circuit breaker, so Generate
// failures recorded by Invoke's retry loop also trip the breaker for
// subsequent calls.
type breakerProvider struct {
	Provider
	breaker *circuitBreaker
	logger  *zerolog.Logger
}

func (p *breakerProvider) Generate(ctx context.Context, prompt, model string, schema Schema, temperature float64) (map[string]any, error) {
	if err := p.breaker.check(); err != nil {
		return nil, err
	}

	result, err := p.Provider.Generate(ctx, prompt, model, schema, temperature)
	if err != nil {
		p.breaker.recordFailure(p.logger, p.Name())

		return nil, err
	}

	p.breaker.recordSuccess()

	return result, nil
}

// Registry holds the registered providers in registration order, each
// wrapped in its own circuit breaker, grounded on the teacher's
// internal/core/llm/registry.go Registry (simplified to this pipeline's
// single structured-generation call shape). Provider and Call reach only
// the provider named by the caller; there is no fallback to another
// registered provider when that one fails or its breaker is open.
type Registry struct {
	mu        sync.RWMutex
	providers map[ProviderName]*breakerProvider
	order     []ProviderName
	logger    *zerolog.Logger
}

// NewRegistry constructs an empty provider registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		providers: make(map[ProviderName]*breakerProvider),
		logger:    logger,
	}
}

// Register adds a provider under its Name, wrapped in a fresh (closed)
// circuit breaker, and appends it to the order Names reports.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	r.providers[name] = &breakerProvider{Provider: p, breaker: &circuitBreaker{}, logger: r.logger}
	r.order = append(r.order, name)

	observability.LLMCircuitBreakerState.WithLabelValues(string(name)).Set(0)

	r.logger.Info().Str("provider", string(name)).Msg("registered llm provider")
}

// Provider returns the named provider, wrapped with its circuit breaker, so
// callers that need to drive their own llm.Invoke call (e.g. the per-cluster
// stage pipeline, which logs each stage separately) can still benefit from
// circuit-breaker short-circuiting. The provider must already be registered.
func (r *Registry) Provider(name ProviderName) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s not registered", pipelineerrors.ErrNoProvidersAvailable, name)
	}

	return p, nil
}

// Call dispatches Request to the named provider through Invoke. The
// provider must already be registered.
func (r *Registry) Call(ctx context.Context, name ProviderName, req Request) (map[string]any, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s not registered", pipelineerrors.ErrNoProvidersAvailable, name)
	}

	return Invoke(ctx, p, req, r.logger)
}

// Names returns registered provider names in registration order.
func (r *Registry) Names() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderName, len(r.order))
	copy(out, r.order)

	return out
}
