// Package embedding provides embedding service adapters.
// Adapters implementing ports.EmbeddingService; they know provider API
// specifics so the domain layer doesn't have to.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OllamaAdapter implements ports.EmbeddingService against the Ollama API.
// Local Ollama needs no credential.
type OllamaAdapter struct {
	baseURL     string
	model       string
	concurrency int
	client      *http.Client
}

// NewOllamaAdapter creates an Ollama embedding adapter. concurrency bounds
// how many chunks EmbedBatch embeds in flight at once.
func NewOllamaAdapter(baseURL, model string, concurrency int) *OllamaAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &OllamaAdapter{
		baseURL:     baseURL,
		model:       model,
		concurrency: concurrency,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ollamaEmbedRequest is the Ollama API request format.
type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaEmbedResponse is the Ollama API response format.
type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates an embedding for a single text.
func (a *OllamaAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := ollamaEmbedRequest{
		Model:  a.model,
		Prompt: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/api/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return embedResp.Embedding, nil
}

// EmbedBatch embeds multiple texts, at most a.concurrency in flight at a
// time so a large document does not overwhelm the embedding service.
// Results keep input order. The first failure cancels the remaining calls.
func (a *OllamaAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	embeddings := make([][]float32, len(texts))
	sem := make(chan struct{}, a.concurrency)
	errs := make(chan error, len(texts))

	launched := 0
	for i, text := range texts {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		launched++

		go func(i int, text string) {
			defer func() { <-sem }()
			emb, err := a.Embed(ctx, text)
			if err != nil {
				errs <- fmt.Errorf("embedding text %d: %w", i, err)
				cancel()
				return
			}
			embeddings[i] = emb
			errs <- nil
		}(i, text)
	}

	var firstErr error
	for j := 0; j < launched; j++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return embeddings, nil
}
