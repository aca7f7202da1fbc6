package llm

import (
	"context"
	"errors"
	"testing"

	"commandlayer/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedCompleter struct {
	output     string
	err        error
	lastSystem string
	lastUser   string
}

func (s *scriptedCompleter) Chat(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	return s.output, s.err
}

func (s *scriptedCompleter) Model() string { return "gpt-4o-mini" }

func newScriptedResolver(completer chatCompleter) *IntentResolver {
	return &IntentResolver{client: completer, logger: zap.NewNop()}
}

func TestResolveParsesModelOutput(t *testing.T) {
	completer := &scriptedCompleter{output: `{
		"action": "assign_task",
		"payload": {"asset_id": "11111111-1111-1111-1111-111111111111", "task_id": "22222222-2222-2222-2222-222222222222"},
		"confidence": 0.85,
		"error": null
	}`}
	resolver := newScriptedResolver(completer)

	resolved, err := resolver.Resolve(context.Background(), "assign the welding task to line 3", "")
	require.NoError(t, err)

	assert.False(t, resolved.Failed())
	assert.Equal(t, "assign_task", resolved.Action)
	assert.Equal(t, 0.85, resolved.Confidence)
	assert.Equal(t, intent.ProviderOpenAI, resolved.Provider)
	assert.Equal(t, "gpt-4o-mini", resolved.Model)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", resolved.Payload["asset_id"])
}

func TestResolveIncludesContextInUserPrompt(t *testing.T) {
	completer := &scriptedCompleter{output: `{"action":null,"payload":null,"confidence":0,"error":"missing_fields"}`}
	resolver := newScriptedResolver(completer)

	_, err := resolver.Resolve(context.Background(), "assign the thing", "SOURCE: policies.md\nassignment rules")
	require.NoError(t, err)

	assert.Contains(t, completer.lastUser, "Reference context:")
	assert.Contains(t, completer.lastUser, "SOURCE: policies.md")
	assert.Contains(t, completer.lastUser, "User request:\nassign the thing")
}

func TestResolveWithoutContextSendsRawTextOnly(t *testing.T) {
	completer := &scriptedCompleter{output: `{"action":null,"payload":null,"confidence":0,"error":"missing_fields"}`}
	resolver := newScriptedResolver(completer)

	_, err := resolver.Resolve(context.Background(), "assign the thing", "")
	require.NoError(t, err)

	assert.Equal(t, "assign the thing", completer.lastUser)
	assert.NotEmpty(t, completer.lastSystem)
}

func TestResolveNonJSONOutputKeepsRawForAudit(t *testing.T) {
	completer := &scriptedCompleter{output: "Sure! I'd be happy to assign that task for you."}
	resolver := newScriptedResolver(completer)

	resolved, err := resolver.Resolve(context.Background(), "assign the thing", "")
	require.NoError(t, err)

	assert.True(t, resolved.Failed())
	assert.Equal(t, intent.ErrInvalidJSONFromLLM, resolved.Err)
	assert.Equal(t, completer.output, resolved.RawOutput)
}

func TestResolveModelReportedErrorPassesThrough(t *testing.T) {
	completer := &scriptedCompleter{output: `{"action":null,"payload":null,"confidence":0,"error":"missing_fields"}`}
	resolver := newScriptedResolver(completer)

	resolved, err := resolver.Resolve(context.Background(), "assign something vague", "")
	require.NoError(t, err)

	assert.True(t, resolved.Failed())
	assert.Equal(t, intent.ErrMissingFields, resolved.Err)
}

func TestResolveNullActionWithoutErrorBecomesMissingFields(t *testing.T) {
	// A null action with no error would be an unreportable failure; it is
	// normalized instead of trusted.
	completer := &scriptedCompleter{output: `{"action":null,"payload":null,"confidence":0.4,"error":null}`}
	resolver := newScriptedResolver(completer)

	resolved, err := resolver.Resolve(context.Background(), "assign something", "")
	require.NoError(t, err)

	assert.True(t, resolved.Failed())
	assert.Equal(t, intent.ErrMissingFields, resolved.Err)
}

func TestResolveClampsConfidence(t *testing.T) {
	completer := &scriptedCompleter{output: `{
		"action": "assign_task",
		"payload": {"asset_id": "x", "task_id": "y"},
		"confidence": 4.2,
		"error": null
	}`}
	resolver := newScriptedResolver(completer)

	resolved, err := resolver.Resolve(context.Background(), "assign", "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, resolved.Confidence)
}

func TestResolvePropagatesProviderError(t *testing.T) {
	completer := &scriptedCompleter{err: newError(ErrKindTimeout, "provider call timed out", errors.New("deadline"))}
	resolver := newScriptedResolver(completer)

	_, err := resolver.Resolve(context.Background(), "assign", "")

	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrKindTimeout, provErr.Kind)
}
