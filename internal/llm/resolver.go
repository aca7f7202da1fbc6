package llm

import (
	"context"
	"encoding/json"
	"strings"

	"commandlayer/internal/intent"

	"go.uber.org/zap"
)

const systemPrompt = `You are an intent extraction engine for a deterministic command execution API.

Return ONLY valid JSON (no markdown).
Schema:
{
  "action": string|null,
  "payload": object|null,
  "confidence": number,
  "error": string|null
}

Supported actions:
- "assign_task" with payload:
  { "asset_id": "<uuid>", "task_id": "<uuid>" }

Rules:
- If missing required fields, set action=null, payload=null, confidence=0, error="missing_fields"
- Never invent ids. Extract only from user text.`

type chatCompleter interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// IntentResolver extracts a typed intent from free text via the language
// model, optionally grounded by retrieved reference context.
type IntentResolver struct {
	client chatCompleter
	logger *zap.Logger
}

func NewIntentResolver(client *Client, logger *zap.Logger) *IntentResolver {
	return &IntentResolver{client: client, logger: logger}
}

type modelOutput struct {
	Action     *string        `json:"action"`
	Payload    map[string]any `json:"payload"`
	Confidence float64        `json:"confidence"`
	Error      *string        `json:"error"`
}

// Resolve submits rawText (plus contextText when present) and parses the
// single JSON object the model is constrained to emit. Non-JSON output is
// reported as invalid_json_from_llm with the raw output preserved for audit.
func (r *IntentResolver) Resolve(ctx context.Context, rawText, contextText string) (intent.ResolvedIntent, error) {
	userPrompt := rawText
	if contextText != "" {
		userPrompt = "Reference context:\n" + contextText + "\n\nUser request:\n" + rawText
	}

	content, err := r.client.Chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return intent.ResolvedIntent{}, err
	}

	base := intent.ResolvedIntent{
		Provider:  intent.ProviderOpenAI,
		Model:     r.client.Model(),
		RawOutput: content,
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		r.logger.Warn("Model output is not valid JSON", zap.String("raw_output", content))
		base.Err = intent.ErrInvalidJSONFromLLM
		return base, nil
	}

	if out.Error != nil && *out.Error != "" {
		base.Err = intent.ResolveError(*out.Error)
		return base, nil
	}
	if out.Action == nil || *out.Action == "" || out.Payload == nil {
		base.Err = intent.ErrMissingFields
		return base, nil
	}

	base.Action = *out.Action
	base.Payload = out.Payload
	base.Confidence = clamp01(out.Confidence)
	return base, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
