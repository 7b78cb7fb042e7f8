// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/agent"
	"github.com/pdiddy/paper-digest/internal/catalog"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const arxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>1</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/2403.10001v1</id>
    <title>Planning with
      Language Models</title>
    <summary>We plan.</summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
  </entry>
</feed>`

// scriptedOllama replies to successive /api/chat calls with replies[i].
type scriptedOllama struct {
	mu       sync.Mutex
	replies  []string
	requests [][]llm.Message
}

func (s *scriptedOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []llm.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	i := len(s.requests)
	s.requests = append(s.requests, req.Messages)
	s.mu.Unlock()

	if i >= len(s.replies) {
		http.Error(w, "script exhausted", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": map[string]string{"role": "assistant", "content": s.replies[i]},
		"done":    true,
	})
}

func (s *scriptedOllama) calls() [][]llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]llm.Message(nil), s.requests...)
}

func testConfig(arxivURL, llmURL string) types.Config {
	return types.Config{
		LLM: types.LLMConfig{
			Provider:    types.ProviderOllama,
			Model:       "llama3",
			BaseURL:     llmURL,
			APIKey:      "ollama",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		Catalog: types.CatalogConfig{
			BaseURL:  arxivURL,
			Category: "cs.AI",
			Limit:    3,
			PageSize: 25,
		},
		Agent: types.AgentConfig{MaxIterations: 5},
	}
}

func servers(t *testing.T, model *scriptedOllama) (arxiv *httptest.Server, ollama *httptest.Server, arxivHits *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	arxiv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "ascending", r.URL.Query().Get("sortOrder"))
		fmt.Fprint(w, arxivFeed)
	}))
	t.Cleanup(arxiv.Close)
	ollama = httptest.NewServer(model)
	t.Cleanup(ollama.Close)
	return arxiv, ollama, hits
}

func TestRunEndToEnd(t *testing.T) {
	model := &scriptedOllama{replies: []string{
		"Thought: I need the papers.\nAction: fetch_arxiv_papers\nAction Input: {\"target_date\": \"2024-03-15\"}",
		"Thought: I now know the final answer\nFinal Answer: ```json\n" +
			`[{'title': 'Planning with Language Models', 'authors': ['Ada Lovelace', 'Alan Turing'], 'summary': 'We plan.', 'url': 'http://arxiv.org/abs/2403.10001v1'}]` +
			"\n```",
	}}
	arxiv, ollama, hits := servers(t, model)

	out := filepath.Join(t.TempDir(), "report.html")
	var stdout, trace, warn bytes.Buffer
	res, err := Run(context.Background(), testConfig(arxiv.URL, ollama.URL), Options{
		Date:   "2024-03-15",
		Output: out,
		Trace:  &trace,
		Warn:   &warn,
	}, &stdout)
	require.NoError(t, err)

	assert.EqualValues(t, 1, hits.Load())
	calls := model.calls()
	require.Len(t, calls, 2)
	observation := calls[1][len(calls[1])-1].Content
	assert.True(t, strings.HasPrefix(observation, "Observation: "))
	assert.Contains(t, observation, "Planning with Language Models")

	assert.Equal(t, "quote-normalized-json", res.Strategy)
	require.Len(t, res.Papers, 1)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, res.Papers[0].Authors)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<a href="http://arxiv.org/abs/2403.10001v1" target="_blank">Planning with Language Models</a>`)
	assert.Contains(t, string(data), "<td>Ada Lovelace, Alan Turing</td>")

	assert.Equal(t, "Report successfully saved to: "+out+"\n", stdout.String())
	assert.Contains(t, trace.String(), "Raw agent output:")
	assert.Contains(t, trace.String(), "arxiv: cat:cs.AI AND submittedDate:[202403150000 TO 202403160000]")
	assert.Empty(t, warn.String())
}

func TestRunUnparseableAnswerWritesEmptyReport(t *testing.T) {
	model := &scriptedOllama{replies: []string{"Final Answer: I could not find any papers, sorry."}}
	arxiv, ollama, _ := servers(t, model)

	out := filepath.Join(t.TempDir(), "report.html")
	var stdout, warn bytes.Buffer
	res, err := Run(context.Background(), testConfig(arxiv.URL, ollama.URL), Options{
		Date: "2024-03-15", Output: out, Warn: &warn,
	}, &stdout)
	require.NoError(t, err)

	assert.Empty(t, res.Papers)
	assert.Empty(t, res.Strategy)
	assert.Contains(t, warn.String(), "warning: agent output could not be parsed")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "<tr>"))
	assert.Contains(t, stdout.String(), "Report successfully saved to:")
}

func TestRunCatalogFailureAborts(t *testing.T) {
	model := &scriptedOllama{replies: []string{
		"Action: fetch_arxiv_papers\nAction Input: {\"target_date\": \"2024-03-15\"}",
	}}
	arxiv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer arxiv.Close()
	ollama := httptest.NewServer(model)
	defer ollama.Close()

	out := filepath.Join(t.TempDir(), "report.html")
	var stdout bytes.Buffer
	_, err := Run(context.Background(), testConfig(arxiv.URL, ollama.URL), Options{Date: "2024-03-15", Output: out}, &stdout)
	require.Error(t, err)
	assert.True(t, agent.IsToolFailure(err))
	assert.Contains(t, err.Error(), "HTTP 503")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no report is written on failure")
	assert.Empty(t, stdout.String())
}

func TestRunModelFailureAborts(t *testing.T) {
	model := &scriptedOllama{}
	arxiv, ollama, hits := servers(t, model)

	_, err := Run(context.Background(), testConfig(arxiv.URL, ollama.URL), Options{
		Date: "2024-03-15", Output: filepath.Join(t.TempDir(), "r.html"),
	}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama returned status 500")
	assert.Zero(t, hits.Load())
}

func TestRunRejectsBadDate(t *testing.T) {
	model := &scriptedOllama{}
	arxiv, ollama, _ := servers(t, model)

	_, err := Run(context.Background(), testConfig(arxiv.URL, ollama.URL), Options{Date: "15/03/2024"}, &bytes.Buffer{})
	require.ErrorIs(t, err, catalog.ErrInvalidDate)
	assert.Empty(t, model.calls())
}

func TestNewTask(t *testing.T) {
	c := catalog.NewClient(types.CatalogConfig{})
	task := NewTask("2024-03-15", 3, catalog.NewTool(c, "cs.AI", 3))

	assert.Equal(t, "Use the fetch_arxiv_papers tool to get the top 3 papers from arXiv published on 2024-03-15. "+
		"For each paper, return a list in the format of PaperOutput, with fields: title, authors, summary, and url.", task.Description)
	assert.Equal(t, "List of PaperOutput models describing each paper.", task.ExpectedOutput)
	assert.Equal(t, PaperSchema, task.OutputSchema)
	require.Len(t, task.Tools, 1)
	assert.NotEmpty(t, task.ID)
}
