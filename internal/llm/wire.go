package llm

// Request shape we send to upstream (OpenAI-style).
type providerChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type providerChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type providerUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type providerError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"`
}

// providerChatResponse also carries Error because OpenRouter can answer 200
// with an error object and no choices.
type providerChatResponse struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []providerChatChoice `json:"choices"`
	Usage   *providerUsage       `json:"usage,omitempty"`
	Error   *providerError       `json:"error,omitempty"`
}

type providerErrorResponse struct {
	Error providerError `json:"error"`
}

// code returns the numeric error code when the provider sent one.
func (e *providerError) code() int {
	switch v := e.Code.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
