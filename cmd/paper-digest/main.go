// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI: a batch report of
// one day's arXiv papers and an interactive question loop, both driven by an
// agent on a local or hosted language model.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/catalog"
	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// envKeys maps nested keys to environment names: llm.base_url is read from
// PAPER_DIGEST_LLM_BASE_URL.
var envKeys = strings.NewReplacer(".", "_")

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the paper-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "Summarize the day's AI papers from arXiv with a local LLM agent",
	Long: `paper-digest asks a language-model agent to fetch the first papers submitted
to an arXiv category on a given day and writes them to an HTML report. The
ask subcommand opens an interactive question loop with a single persona.

The model is reached through Ollama by default (llm.provider: ollama) or any
OpenAI-compatible endpoint (llm.provider: openai).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Names())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-digest.yaml or ~/.config/paper-digest/paper-digest.yaml)")
}

// setDefaults registers every configuration key so that environment
// variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", string(types.ProviderOllama))
	v.SetDefault("llm.model", "llama3")
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout", time.Duration(0))
	v.SetDefault("llm.user_agent", "paper-digest/"+version)
	v.SetDefault("llm.max_retries", 3)

	v.SetDefault("catalog.base_url", catalog.DefaultBaseURL)
	v.SetDefault("catalog.category", "cs.AI")
	v.SetDefault("catalog.limit", 3)
	v.SetDefault("catalog.page_size", 25)
	v.SetDefault("catalog.delay", 2*time.Second)
	v.SetDefault("catalog.timeout", time.Duration(0))
	v.SetDefault("catalog.user_agent", "paper-digest/"+version)

	v.SetDefault("agent.max_iterations", 10)
}

func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-digest"))
		}
	}

	viper.SetEnvPrefix("PAPER_DIGEST")
	viper.SetEnvKeyReplacer(envKeys)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged configuration and applies the secrets
// directory: llm-api-key fills an empty llm.api_key, and arxiv-user-agent
// replaces catalog.user_agent.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	cfg.LLM.APIKey = loadedSecrets.Or(secrets.LLMAPIKey, cfg.LLM.APIKey)
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider == types.ProviderOllama {
		// Ollama ignores the credential; send the conventional placeholder.
		cfg.LLM.APIKey = "ollama"
	}
	if ua := loadedSecrets[secrets.ArxivUserAgent]; ua != "" {
		cfg.Catalog.UserAgent = ua
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
