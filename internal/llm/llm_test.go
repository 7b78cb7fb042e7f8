// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func testConfig(provider types.LLMProvider, baseURL string) types.LLMConfig {
	return types.LLMConfig{
		Provider:    provider,
		Model:       "llama3",
		BaseURL:     baseURL,
		APIKey:      "ollama",
		Temperature: 0.7,
		MaxTokens:   2048,
		HTTPConfig:  types.HTTPConfig{UserAgent: "paper-digest/test"},
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LLMConfig
		want    string
		wantErr string
	}{
		{"default provider is ollama", testConfig("", "http://localhost:11434"), "*llm.OllamaBackend", ""},
		{"ollama", testConfig(types.ProviderOllama, "http://localhost:11434"), "*llm.OllamaBackend", ""},
		{"openai", testConfig(types.ProviderOpenAI, "https://api.openai.com"), "*llm.OpenAIBackend", ""},
		{"unknown provider", testConfig("gemini", "http://x"), "", "unsupported LLM provider"},
		{"missing model", types.LLMConfig{BaseURL: "http://x"}, "", "no model configured"},
		{"missing base url", types.LLMConfig{Model: "llama3"}, "", "no base URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fmt.Sprintf("%T", b))
		})
	}
}

func TestOllamaBackendChat(t *testing.T) {
	var got ollamaChatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ollamaChatPath, r.URL.Path)
		assert.Equal(t, "Bearer ollama", r.Header.Get("Authorization"))
		assert.Equal(t, "paper-digest/test", r.Header.Get("User-Agent"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"model":"llama3","message":{"role":"assistant","content":"Final Answer: 4"},"done":true}`)
	}))
	defer ts.Close()

	b := &OllamaBackend{Config: testConfig(types.ProviderOllama, ts.URL+"/"), Client: ts.Client()}
	reply, err := b.Chat(context.Background(), []Message{{Role: RoleUser, Content: "2+2?"}})
	require.NoError(t, err)

	assert.Equal(t, "Final Answer: 4", reply)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.7, got.Options.Temperature)
	assert.Equal(t, 2048, got.Options.NumPredict)
	assert.Equal(t, []string{StopObservation}, got.Options.Stop)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "2+2?", got.Messages[0].Content)
}

func TestOllamaBackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusNotFound, `{"error":"model \"llama3\" not found"}`, "status 404"},
		{"error field", http.StatusOK, `{"error":"out of memory"}`, "ollama: out of memory"},
		{"bad json", http.StatusOK, `not json`, "decoding ollama response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			b := &OllamaBackend{Config: testConfig(types.ProviderOllama, ts.URL), Client: ts.Client()}
			_, err := b.Chat(context.Background(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpenAIBackendChat(t *testing.T) {
	var got openAIChatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, openAIChatPath, r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "paper-digest/test", r.Header.Get("User-Agent"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`)
	}))
	defer ts.Close()

	cfg := testConfig(types.ProviderOpenAI, ts.URL)
	cfg.APIKey = "sk-test"
	cfg.MaxTokens = 512
	b := &OpenAIBackend{Config: cfg, Client: ts.Client()}

	reply, err := b.Chat(context.Background(), []Message{{Role: RoleSystem, Content: "be brief"}, {Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, 512, got.MaxTokens)
	assert.Len(t, got.Messages, 2)
}

func TestOpenAIBackendNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer ts.Close()

	b := &OpenAIBackend{Config: testConfig(types.ProviderOpenAI, ts.URL), Client: ts.Client()}
	_, err := b.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
