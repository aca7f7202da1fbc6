package intent

// Provider identifies which resolution path produced an intent.
type Provider string

const (
	// ProviderPreAI marks the deterministic pattern resolver.
	ProviderPreAI Provider = "pre_ai"
	// ProviderOpenAI marks the language-model resolver.
	ProviderOpenAI Provider = "openai"
	// ProviderDirect marks commands that arrived with an explicit action.
	ProviderDirect Provider = "direct"
)

// ResolveError is the closed set of resolution failure kinds.
type ResolveError string

const (
	ErrNone               ResolveError = ""
	ErrMissingFields      ResolveError = "missing_fields"
	ErrInvalidJSONFromLLM ResolveError = "invalid_json_from_llm"
	ErrRawTextRequired    ResolveError = "raw_text_required"
)

// ResolvedIntent is the immutable result of one resolution attempt. Either
// Action and Payload are both set and Err is empty, or both are empty and
// Err names the failure.
type ResolvedIntent struct {
	Action     string
	Payload    map[string]any
	Confidence float64
	Provider   Provider
	Model      string
	RawOutput  string
	Err        ResolveError
}

// Failed reports whether the attempt produced no usable action.
func (r ResolvedIntent) Failed() bool {
	return r.Err != ErrNone
}
