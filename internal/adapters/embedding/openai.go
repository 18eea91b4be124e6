package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements ports.EmbeddingService against any
// OpenAI-compatible embeddings endpoint.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIAdapter creates an OpenAI-compatible embedding adapter.
// baseURL may point at a non-OpenAI host that speaks the same API.
// dims > 0 asks the service to truncate embeddings to that dimension
// (supported by the text-embedding-3 family).
func NewOpenAIAdapter(baseURL, apiKey, model string, dims int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI embedding adapter requires an API key")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dims:   dims,
	}, nil
}

// Embed generates an embedding for a single text.
func (a *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds multiple texts in one API call.
func (a *OpenAIAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(a.model),
		Dimensions: a.dims,
	}

	resp, err := a.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calling embeddings API: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}
	return embeddings, nil
}
