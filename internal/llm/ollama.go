// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const ollamaChatPath = "/api/chat"

// OllamaBackend calls a local Ollama server's chat endpoint.
type OllamaBackend struct {
	Config types.LLMConfig
	Client *http.Client
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// Chat sends the conversation to /api/chat with streaming disabled.
func (b *OllamaBackend) Chat(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    b.Config.Model,
		Messages: messages,
		Options: ollamaOptions{
			Temperature: b.Config.Temperature,
			NumPredict:  b.Config.MaxTokens,
			Stop:        []string{StopObservation},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(b.Config.BaseURL, ollamaChatPath), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.Config.APIKey)
	}
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.client(), req, b.Config.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errorBody(resp.Body))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Message.Content, nil
}

func (b *OllamaBackend) client() *http.Client {
	if b.Client == nil {
		return http.DefaultClient
	}
	return b.Client
}
