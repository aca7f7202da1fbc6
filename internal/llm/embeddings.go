package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"commandlayer/pkg/config"

	"go.uber.org/zap"
)

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbeddingsClient is a thin adapter over the embeddings endpoint.
type EmbeddingsClient struct {
	client *Client
	model  string
	dim    int
	logger *zap.Logger
}

func NewEmbeddingsClient(cfg *config.OpenAIConfig, logger *zap.Logger) *EmbeddingsClient {
	return &EmbeddingsClient{
		client: NewClient(cfg, logger),
		model:  cfg.EmbeddingsModel,
		dim:    cfg.EmbeddingsDim,
		logger: logger,
	}
}

// EmbedTexts returns one fixed-dimension vector per input text, in input
// order. A count mismatch from the provider is a total failure.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if c.client.apiKey == "" {
		return nil, newError(ErrKindUnavailable, "api key is not configured", nil)
	}

	body := embeddingsRequest{
		Model:      c.model,
		Input:      texts,
		Dimensions: c.dim,
	}

	raw, err := c.client.post(ctx, c.client.baseURL+"/embeddings", body)
	if err != nil {
		return nil, err
	}

	var parsed embeddingsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, newError(ErrKindBadResponse, "embeddings response is not valid JSON", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, newError(ErrKindBadResponse,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(parsed.Data)), nil)
	}

	embeddings := make([][]float32, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		embeddings = append(embeddings, item.Embedding)
	}
	return embeddings, nil
}
