package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaultsAndRequiredFields(t *testing.T) {
	t.Setenv("EMBEDDING_SERVICE_ORIGIN", "http://localhost:8081")
	t.Setenv("RERANKER_ORIGIN", "http://localhost:8082")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.InDelta(t, float32(0.92), cfg.Processing.SimNearDup, 1e-9)
	assert.Equal(t, 3, cfg.Processing.MinClusterSize)
	assert.Equal(t, 1000, cfg.Processing.InitialTopK)
	assert.Equal(t, "openai", cfg.Summarization.LLMProvider)
	assert.Equal(t, 2, cfg.Summarization.Retries)
}

func TestLoad_MissingRequiredFieldFails(t *testing.T) {
	t.Setenv("RERANKER_ORIGIN", "http://localhost:8082")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_OverridesDefaultsFromEnv(t *testing.T) {
	t.Setenv("EMBEDDING_SERVICE_ORIGIN", "http://localhost:8081")
	t.Setenv("RERANKER_ORIGIN", "http://localhost:8082")
	t.Setenv("PROCESSING_MIN_CLUSTER_SIZE", "5")
	t.Setenv("SUMMARIZATION_LLM_PROVIDER", "anthropic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Processing.MinClusterSize)
	assert.Equal(t, "anthropic", cfg.Summarization.LLMProvider)
}

func TestRedact_MasksKeyValueSecrets(t *testing.T) {
	out := Redact(`calling provider with api_key=sk-ant-12345 failed`)

	assert.NotContains(t, out, "sk-ant-12345")
	assert.Contains(t, out, "***REDACTED***")
}

func TestRedact_LeavesNonSecretTextAlone(t *testing.T) {
	out := Redact("cluster cluster-1 scored 8 points")

	assert.Equal(t, "cluster cluster-1 scored 8 points", out)
}
