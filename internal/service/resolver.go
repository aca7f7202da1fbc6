package service

import (
	"context"
	"fmt"

	"commandlayer/internal/intent"
	"commandlayer/internal/rag"

	"go.uber.org/zap"
)

// ResolverMode selects how free text becomes a typed action. Configured at
// startup, never per request.
type ResolverMode string

const (
	ResolverModePreAI  ResolverMode = "pre_ai"
	ResolverModeLLM    ResolverMode = "llm"
	ResolverModeHybrid ResolverMode = "hybrid"
)

// LLMResolver is the language-model fallback path.
type LLMResolver interface {
	Resolve(ctx context.Context, rawText, contextText string) (intent.ResolvedIntent, error)
}

type resolveFunc func(ctx context.Context, rawText string, fallback map[string]any) (intent.ResolvedIntent, rag.Context, error)

// IntentResolver orchestrates pattern extraction, retrieval context and the
// language-model fallback into one ResolvedIntent.
type IntentResolver struct {
	strategy  resolveFunc
	llm       LLMResolver
	retriever rag.Retriever
	logger    *zap.Logger
}

// NewIntentResolver builds the strategy for the configured mode once, at
// startup.
func NewIntentResolver(mode ResolverMode, llmResolver LLMResolver, retriever rag.Retriever, logger *zap.Logger) (*IntentResolver, error) {
	r := &IntentResolver{llm: llmResolver, retriever: retriever, logger: logger}

	switch mode {
	case ResolverModePreAI:
		r.strategy = r.resolvePreAI
	case ResolverModeLLM:
		r.strategy = r.resolveLLM
	case ResolverModeHybrid:
		r.strategy = r.resolveHybrid
	default:
		return nil, fmt.Errorf("unsupported resolver mode: %q", mode)
	}
	return r, nil
}

// Resolve turns raw text into an intent plus the retrieval context that
// informed it (disabled on pattern-only paths).
func (r *IntentResolver) Resolve(ctx context.Context, rawText string, fallback map[string]any) (intent.ResolvedIntent, rag.Context, error) {
	return r.strategy(ctx, rawText, fallback)
}

func (r *IntentResolver) resolvePreAI(_ context.Context, rawText string, fallback map[string]any) (intent.ResolvedIntent, rag.Context, error) {
	return resolvePattern(rawText, fallback), rag.Disabled(), nil
}

func (r *IntentResolver) resolveLLM(ctx context.Context, rawText string, _ map[string]any) (intent.ResolvedIntent, rag.Context, error) {
	ragCtx, err := r.retriever.GetContext(ctx, rawText)
	if err != nil {
		return intent.ResolvedIntent{}, rag.Context{}, err
	}

	resolved, err := r.llm.Resolve(ctx, rawText, ragCtx.ContextText)
	if err != nil {
		return intent.ResolvedIntent{}, ragCtx, err
	}
	return resolved, ragCtx, nil
}

// resolveHybrid always pays the cheap deterministic path first and only
// falls back to the model when the pattern produced no usable action. The
// pattern's partial captures are not forwarded to the model: the prompt
// forbids invented ids and half-trusted captures could be echoed back.
func (r *IntentResolver) resolveHybrid(ctx context.Context, rawText string, fallback map[string]any) (intent.ResolvedIntent, rag.Context, error) {
	resolved := resolvePattern(rawText, fallback)
	if !resolved.Failed() {
		return resolved, rag.Disabled(), nil
	}

	r.logger.Debug("Pattern resolution failed, falling back to language model",
		zap.String("pattern_error", string(resolved.Err)),
	)
	return r.resolveLLM(ctx, rawText, nil)
}
