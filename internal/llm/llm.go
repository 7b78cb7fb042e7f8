// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm talks to the text-generation service behind the agent executor.
// Each Backend turns a conversation into the next assistant reply; model,
// address, credential, temperature, and reply length come from
// types.LLMConfig and are passed through unchanged.
package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StopObservation ends a reply before the model writes a tool result itself.
const StopObservation = "\nObservation:"

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Backend produces the next assistant reply for a conversation.
type Backend interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// NewBackend returns the Backend selected by cfg.Provider. An empty provider
// selects Ollama.
func NewBackend(cfg types.LLMConfig) (Backend, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model configured")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("no base URL configured for model %s", cfg.Model)
	}

	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case types.ProviderOllama, "":
		return &OllamaBackend{Config: cfg, Client: client}, nil
	case types.ProviderOpenAI:
		return &OpenAIBackend{Config: cfg, Client: client}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q: use ollama or openai", cfg.Provider)
	}
}

// endpoint joins the configured base URL and an API path.
func endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// errorBody reads a failed response body for inclusion in an error message.
func errorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return strings.TrimSpace(string(data))
}
