// Package llm wraps the OpenAI chat-completions API. Responses are requested
// in JSON object mode so callers can unmarshal them into typed structs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openaiURL = "https://api.openai.com/v1/chat/completions"

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("llm: api key not configured")

// ErrProvider is returned when the provider responds with a non-2xx status.
var ErrProvider = errors.New("llm: provider error")

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client talks to the OpenAI chat-completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty apiKey yields a client whose calls
// fail with ErrNotConfigured.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    openaiURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool { return c.apiKey != "" }

// CompleteJSON sends the messages and returns the raw JSON object the model
// produced. The system prompt should instruct the model on the exact schema.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, maxTokens int) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	reqBody := chatRequest{
		Model:       c.model,
		Temperature: 0.2,
		MaxTokens:   maxTokens,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrProvider, msg)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrProvider)
	}

	return json.RawMessage(parsed.Choices[0].Message.Content), nil
}
