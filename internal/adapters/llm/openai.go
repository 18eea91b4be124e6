package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements ports.CompletionService against any
// OpenAI-compatible chat completions endpoint.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
}

// NewOpenAIAdapter creates an OpenAI-compatible completion adapter.
func NewOpenAIAdapter(baseURL, apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI completion adapter requires an API key")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Complete generates an answer given the system preamble and prompt.
func (a *OpenAIAdapter) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("calling chat completions API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completions API returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
