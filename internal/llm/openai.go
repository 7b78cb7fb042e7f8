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

const openAIChatPath = "/v1/chat/completions"

// OpenAIBackend calls any server that speaks the OpenAI chat completions
// protocol (OpenAI, vLLM, LM Studio, llama.cpp server).
type OpenAIBackend struct {
	Config types.LLMConfig
	Client *http.Client
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Chat sends the conversation to /v1/chat/completions and returns the first choice.
func (b *OpenAIBackend) Chat(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       b.Config.Model,
		Messages:    messages,
		Temperature: b.Config.Temperature,
		MaxTokens:   b.Config.MaxTokens,
		Stop:        []string{StopObservation},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(b.Config.BaseURL, openAIChatPath), bytes.NewReader(body))
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

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, b.Config.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode, errorBody(resp.Body))
	}

	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding chat completions response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
