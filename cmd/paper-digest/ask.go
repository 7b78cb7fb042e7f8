package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/agent"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/qa"
)

const (
	defaultAskTokens = 512
	defaultPrompt    = "Ask your math question (or press Ctrl+C to quit): "
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer questions interactively until interrupted",
	Long: `Ask reads one question per line and answers each with a single persistent
persona (a math professor by default). Every question is a fresh task: no
conversation history is carried between questions. A failed answer is
reported and the loop continues. Press Ctrl+C to quit.

The prompt is shown only when stdin is a terminal, so questions can be piped in.`,
	Args: cobra.NoArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("role", "Math Professor", "persona role")
	askCmd.Flags().String("goal", "Solve simple math problems", "persona goal")
	askCmd.Flags().String("backstory", "A professor with a knack for numbers.", "persona backstory")
	askCmd.Flags().String("expected-output", "A clear answer to the math question.", "what each answer should look like")
	askCmd.Flags().String("prompt", defaultPrompt, "prompt shown before each question on a terminal")
	askCmd.Flags().Int("max-tokens", defaultAskTokens, "maximum reply length")
	askCmd.Flags().Bool("verbose", false, "print the agent trace to stderr")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.LLM.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")

	backend, err := llm.NewBackend(cfg.LLM)
	if err != nil {
		return err
	}

	role, _ := cmd.Flags().GetString("role")
	goal, _ := cmd.Flags().GetString("goal")
	backstory, _ := cmd.Flags().GetString("backstory")
	expected, _ := cmd.Flags().GetString("expected-output")
	verbose, _ := cmd.Flags().GetBool("verbose")

	exec := &agent.ReActExecutor{Backend: backend, MaxIterations: cfg.Agent.MaxIterations}
	if verbose {
		exec.Log = cmd.ErrOrStderr()
	}

	loop := &qa.Loop{
		Runner:         agent.NewRunner(exec, agent.Agent{Role: role, Goal: goal, Backstory: backstory}),
		In:             cmd.InOrStdin(),
		Out:            cmd.OutOrStdout(),
		ExpectedOutput: expected,
	}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		loop.Prompt, _ = cmd.Flags().GetString("prompt")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return loop.Run(ctx)
}
