package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/digest"
	"github.com/pdiddy/paper-digest/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an HTML report of the day's arXiv papers",
	Long: `Report asks the AI Researcher agent to fetch the first papers submitted to
an arXiv category on --date and to return them as structured records. The
records are recovered from the agent's answer and written to an HTML table.

An answer that cannot be parsed produces a report with no rows rather than an
error. Failures reaching arXiv or the model abort the run.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("date", "", "submission date to report on (YYYY-MM-DD)")
	reportCmd.Flags().String("output", report.DefaultOutput, "output HTML file path")
	reportCmd.Flags().String("category", "", "arXiv category (default from catalog.category, cs.AI)")
	reportCmd.Flags().Int("limit", 0, "number of papers to fetch (default from catalog.limit, 3)")
	reportCmd.Flags().Int("max-tokens", 0, "maximum reply length (default from llm.max_tokens, 2048)")
	reportCmd.Flags().Bool("verbose", false, "print the agent trace and raw answer to stderr")
	_ = reportCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	if category, _ := cmd.Flags().GetString("category"); category != "" {
		cfg.Catalog.Category = category
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Catalog.Limit = limit
	}
	if maxTokens, _ := cmd.Flags().GetInt("max-tokens"); maxTokens > 0 {
		cfg.LLM.MaxTokens = maxTokens
	}

	date, _ := cmd.Flags().GetString("date")
	output, _ := cmd.Flags().GetString("output")
	verbose, _ := cmd.Flags().GetBool("verbose")

	opts := digest.Options{
		Date:   date,
		Output: output,
		Warn:   cmd.ErrOrStderr(),
	}
	if verbose {
		opts.Trace = cmd.ErrOrStderr()
	}

	_, err = digest.Run(cmd.Context(), cfg, opts, cmd.OutOrStdout())
	return err
}
