package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
)

// Request bundles the parameters of a single structured-generation call,
// per spec.md §4.6's call(provider, prompt, model, schema, temperature,
// timeout, retries, options) contract.
type Request struct {
	Prompt      string
	Model       string
	Schema      Schema
	Temperature float64
	Timeout     time.Duration
	Retries     int
}

// Invoke runs Request against provider, attempting retries+1 times total
// with 0.5*2^attempt second backoff between attempts, grounded verbatim
// on original's registry.call_openai/call_gemini retry loop. A
// per-attempt timeout is enforced via a derived context. The final
// failure is wrapped in pipelineerrors.ErrSchemaViolation so callers can
// treat it as "this cluster's stage failed" rather than a fatal error,
// per spec.md §7.
func Invoke(ctx context.Context, provider Provider, req Request, logger *zerolog.Logger) (map[string]any, error) {
	if !provider.IsAvailable() {
		return nil, fmt.Errorf("%w: provider %s", pipelineerrors.ErrClientDisabled, provider.Name())
	}

	attempts := req.Retries + 1

	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		callCtx := ctx

		var cancel context.CancelFunc
		if req.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		}

		result, err := provider.Generate(callCtx, req.Prompt, req.Model, req.Schema, req.Temperature)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			return result, nil
		}

		lastErr = err

		if attempt == attempts-1 {
			break
		}

		logger.Warn().
			Err(err).
			Str("provider", string(provider.Name())).
			Int("attempt", attempt+1).
			Int("attempts", attempts).
			Msg("structured generation attempt failed, retrying")

		backoff := time.Duration(float64(500*time.Millisecond) * pow2(attempt))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", pipelineerrors.ErrSchemaViolation, provider.Name(), attempts, lastErr)
}

func pow2(n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= 2
	}

	return result
}
