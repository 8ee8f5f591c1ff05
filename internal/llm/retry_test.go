package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipelineerrors "github.com/lueurxax/briefing-pipeline/internal/core/errors"
)

func TestInvoke_SucceedsOnFirstAttempt(t *testing.T) {
	logger := zerolog.Nop()
	provider := &MockProvider{Response: map[string]any{"ok": true}}

	result, err := Invoke(context.Background(), provider, Request{Retries: 2}, &logger)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, result)
	assert.Equal(t, 1, provider.Calls)
}

func TestInvoke_ExhaustsRetriesAndWrapsSchemaViolation(t *testing.T) {
	logger := zerolog.Nop()
	provider := &MockProvider{Err: errors.New("malformed json")}

	_, err := Invoke(context.Background(), provider, Request{Retries: 2}, &logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipelineerrors.ErrSchemaViolation)
	assert.Equal(t, 3, provider.Calls, "retries+1 total attempts")
}

func TestInvoke_UnavailableProviderFailsImmediately(t *testing.T) {
	logger := zerolog.Nop()
	provider := &MockProvider{Response: map[string]any{}}

	fakeUnavailable := &unavailableProvider{MockProvider: provider}

	_, err := Invoke(context.Background(), fakeUnavailable, Request{Retries: 5}, &logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipelineerrors.ErrClientDisabled)
	assert.Equal(t, 0, provider.Calls)
}

type unavailableProvider struct {
	*MockProvider
}

func (u *unavailableProvider) IsAvailable() bool { return false }

func TestInvoke_RespectsContextCancellation(t *testing.T) {
	logger := zerolog.Nop()
	provider := &MockProvider{Err: errors.New("boom")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := Invoke(ctx, provider, Request{Retries: 10}, &logger)
	require.Error(t, err)
}
