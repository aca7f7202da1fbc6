package service

import (
	"context"
	"errors"
	"testing"

	"commandlayer/internal/intent"
	"commandlayer/internal/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLLMResolver struct {
	result      intent.ResolvedIntent
	err         error
	calls       int
	lastContext string
}

func (f *fakeLLMResolver) Resolve(_ context.Context, _ string, contextText string) (intent.ResolvedIntent, error) {
	f.calls++
	f.lastContext = contextText
	return f.result, f.err
}

type fakeRetriever struct {
	result rag.Context
	err    error
	calls  int
}

func (f *fakeRetriever) GetContext(_ context.Context, _ string) (rag.Context, error) {
	f.calls++
	return f.result, f.err
}

func llmIntent() intent.ResolvedIntent {
	return intent.ResolvedIntent{
		Action:     ActionAssignTask,
		Payload:    map[string]any{"asset_id": assetUUID, "task_id": taskUUID},
		Confidence: 0.9,
		Provider:   intent.ProviderOpenAI,
		Model:      "gpt-4o-mini",
	}
}

func TestPreAIModeNeverTouchesProviders(t *testing.T) {
	llmRes := &fakeLLMResolver{result: llmIntent()}
	retriever := &fakeRetriever{}
	resolver, err := NewIntentResolver(ResolverModePreAI, llmRes, retriever, zap.NewNop())
	require.NoError(t, err)

	resolved, ragCtx, err := resolver.Resolve(context.Background(), "no ids here at all", nil)
	require.NoError(t, err)

	assert.True(t, resolved.Failed(), "pattern cannot resolve this text")
	assert.Zero(t, llmRes.calls)
	assert.Zero(t, retriever.calls)
	assert.False(t, ragCtx.Enabled)
}

func TestLLMModeBuildsContextFirst(t *testing.T) {
	llmRes := &fakeLLMResolver{result: llmIntent()}
	retriever := &fakeRetriever{result: rag.Context{
		Enabled:     true,
		Mode:        rag.ModeLite,
		Sources:     []string{"policies.md"},
		ContextText: "SOURCE: policies.md\nassignment rules",
	}}
	resolver, err := NewIntentResolver(ResolverModeLLM, llmRes, retriever, zap.NewNop())
	require.NoError(t, err)

	resolved, ragCtx, err := resolver.Resolve(context.Background(), "assign task "+taskUUID+" to asset "+assetUUID, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.calls)
	assert.Equal(t, 1, llmRes.calls, "llm mode skips the pattern resolver entirely")
	assert.Equal(t, retriever.result.ContextText, llmRes.lastContext)
	assert.Equal(t, ActionAssignTask, resolved.Action)
	assert.True(t, ragCtx.Enabled)
}

func TestLLMModePropagatesProviderFailure(t *testing.T) {
	llmRes := &fakeLLMResolver{err: errors.New("provider exploded")}
	retriever := &fakeRetriever{result: rag.Disabled()}
	resolver, err := NewIntentResolver(ResolverModeLLM, llmRes, retriever, zap.NewNop())
	require.NoError(t, err)

	_, _, err = resolver.Resolve(context.Background(), "whatever", nil)
	assert.Error(t, err)
}

func TestHybridModePrefersPattern(t *testing.T) {
	llmRes := &fakeLLMResolver{result: llmIntent()}
	retriever := &fakeRetriever{}
	resolver, err := NewIntentResolver(ResolverModeHybrid, llmRes, retriever, zap.NewNop())
	require.NoError(t, err)

	resolved, ragCtx, err := resolver.Resolve(context.Background(), "assign task "+taskUUID+" to asset "+assetUUID, nil)
	require.NoError(t, err)

	assert.Equal(t, intent.ProviderPreAI, resolved.Provider)
	assert.Equal(t, 1.0, resolved.Confidence)
	assert.Zero(t, llmRes.calls, "deterministic path wins, model is never paid for")
	assert.False(t, ragCtx.Enabled)
}

func TestHybridModeFallsBackToModel(t *testing.T) {
	llmRes := &fakeLLMResolver{result: llmIntent()}
	retriever := &fakeRetriever{result: rag.Context{Enabled: true, Mode: rag.ModeVector, TopK: 5}}
	resolver, err := NewIntentResolver(ResolverModeHybrid, llmRes, retriever, zap.NewNop())
	require.NoError(t, err)

	resolved, ragCtx, err := resolver.Resolve(context.Background(), "move the thing to the other thing", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, llmRes.calls)
	assert.Equal(t, intent.ProviderOpenAI, resolved.Provider)
	assert.True(t, ragCtx.Enabled)
}

func TestUnknownModeIsRejectedAtStartup(t *testing.T) {
	_, err := NewIntentResolver(ResolverMode("psychic"), &fakeLLMResolver{}, &fakeRetriever{}, zap.NewNop())
	assert.Error(t, err)
}
