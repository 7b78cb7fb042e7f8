package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// newViper returns an isolated viper with defaults and the env binding used
// by initConfig.
func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PAPER_DIGEST")
	v.SetEnvKeyReplacer(envKeys)
	v.AutomaticEnv()
	return v
}

func withSecrets(t *testing.T, s secrets.Store) {
	t.Helper()
	prev := loadedSecrets
	loadedSecrets = s
	t.Cleanup(func() { loadedSecrets = prev })
}

func TestLoadConfigDefaults(t *testing.T) {
	withSecrets(t, nil)

	cfg, err := loadConfig(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, types.ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "ollama", cfg.LLM.APIKey)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Zero(t, cfg.LLM.Timeout)

	assert.Equal(t, "https://export.arxiv.org/api/query", cfg.Catalog.BaseURL)
	assert.Equal(t, "cs.AI", cfg.Catalog.Category)
	assert.Equal(t, 3, cfg.Catalog.Limit)
	assert.Equal(t, 25, cfg.Catalog.PageSize)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Delay)
	assert.Equal(t, "paper-digest/"+version, cfg.Catalog.UserAgent)
	assert.Equal(t, "paper-digest/"+version, cfg.LLM.UserAgent)

	assert.Equal(t, 10, cfg.Agent.MaxIterations)
}

func TestLoadConfigEnvironment(t *testing.T) {
	withSecrets(t, nil)
	t.Setenv("PAPER_DIGEST_LLM_PROVIDER", "openai")
	t.Setenv("PAPER_DIGEST_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("PAPER_DIGEST_LLM_TEMPERATURE", "0.2")
	t.Setenv("PAPER_DIGEST_CATALOG_DELAY", "500ms")
	t.Setenv("PAPER_DIGEST_CATALOG_LIMIT", "5")
	t.Setenv("PAPER_DIGEST_LLM_TIMEOUT", "90s")

	cfg, err := loadConfig(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, types.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 500*time.Millisecond, cfg.Catalog.Delay)
	assert.Equal(t, 5, cfg.Catalog.Limit)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Empty(t, cfg.LLM.APIKey, "the ollama placeholder is not sent to other providers")
}

func TestLoadConfigFile(t *testing.T) {
	withSecrets(t, nil)
	path := filepath.Join(t.TempDir(), "paper-digest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`llm:
  model: mistral
  max_tokens: 1024
catalog:
  category: cs.CL
  page_size: 50
agent:
  max_iterations: 4
`), 0o644))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, "cs.CL", cfg.Catalog.Category)
	assert.Equal(t, 50, cfg.Catalog.PageSize)
	assert.Equal(t, 4, cfg.Agent.MaxIterations)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL, "unset keys keep defaults")
}

func TestLoadConfigSecrets(t *testing.T) {
	withSecrets(t, secrets.Store{
		secrets.LLMAPIKey:      "sk-from-file",
		secrets.ArxivUserAgent: "digest-bot (ops@example.com)",
	})

	cfg, err := loadConfig(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.LLM.APIKey)
	assert.Equal(t, "digest-bot (ops@example.com)", cfg.Catalog.UserAgent)

	t.Setenv("PAPER_DIGEST_LLM_API_KEY", "sk-from-env")
	cfg, err = loadConfig(newViper(t))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey, "explicit configuration wins over the secrets directory")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "paper-digest dev\n", out.String())
}

func TestReportRequiresDate(t *testing.T) {
	flag := reportCmd.Flags().Lookup("date")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
	assert.Equal(t, "ai_papers_report.html", reportCmd.Flags().Lookup("output").DefValue)
}

func TestAskPersonaDefaults(t *testing.T) {
	assert.Equal(t, "Math Professor", askCmd.Flags().Lookup("role").DefValue)
	assert.Equal(t, "Solve simple math problems", askCmd.Flags().Lookup("goal").DefValue)
	assert.Equal(t, "A clear answer to the math question.", askCmd.Flags().Lookup("expected-output").DefValue)
	assert.Equal(t, "512", askCmd.Flags().Lookup("max-tokens").DefValue)
}
