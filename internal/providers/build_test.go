package providers

import (
	"context"
	"testing"

	"github.com/Trigerxx3/cyber/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_UnknownType(t *testing.T) {
	_, err := New(context.Background(), llm.ProviderConfig{Type: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestBuild_SkipsBrokenProviders(t *testing.T) {
	client, err := Build(context.Background(), []llm.ProviderConfig{
		{Type: llm.ProviderGroq}, // no key
		{Type: llm.ProviderOpenRouter, APIKey: "k", RequestsPerMinute: 30},
	}, 3, zap.NewNop())
	require.NoError(t, err)

	info := client.GetModelInfo()
	assert.Equal(t, "openrouter", info["provider"])
	assert.Equal(t, 1, info["total_providers"])
}

func TestBuild_NothingUsable(t *testing.T) {
	_, err := Build(context.Background(), []llm.ProviderConfig{{Type: llm.ProviderOpenAI}}, 3, zap.NewNop())
	assert.Error(t, err)
}
