package anthropic

import (
	"mercator-hq/ganymede/pkg/providers"
)

// Anthropic Messages API request/response types

// messagesRequest represents an Anthropic messages request.
type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
}

// message represents a single turn in Anthropic format.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse represents an Anthropic messages response.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

// contentBlock represents a content block in Anthropic format.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// usage represents token usage in Anthropic format.
type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// buildRequest transforms a provider-agnostic request to Anthropic format.
//
// The system message maps to Anthropic's native "system" field. Request
// context has no wire-level equivalent, so it is rendered as a JSON block
// appended to the user turn.
func buildRequest(req *providers.Request, model string) *messagesRequest {
	content := req.Prompt
	if block := providers.ContextBlock(req.Context); block != "" {
		content += "\n\nContext:\n" + block
	}

	wireReq := &messagesRequest{
		Model: model,
		Messages: []message{
			{Role: "user", Content: content},
		},
		System:      req.SystemMessage,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	// Anthropic requires max_tokens
	if wireReq.MaxTokens == 0 {
		wireReq.MaxTokens = defaultMaxTokens
	}

	return wireReq
}

// textContent concatenates the text blocks of a response.
func textContent(resp *messagesResponse) string {
	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content
}
