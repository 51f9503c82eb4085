package generation

import (
	"context"

	"interviewai/internal/llm"
)

// LLMCompleter sends the prompt as a single user message through an
// OpenAI-compatible client.
type LLMCompleter struct {
	Client      llm.Client
	Temperature float32
	MaxTokens   int
}

func (c *LLMCompleter) Complete(ctx context.Context, model, apiKey, prompt string) (string, error) {
	resp, err := c.Client.ChatCompletion(ctx, &llm.ChatRequest{
		Model: model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		APIKey:      apiKey,
	})
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}
