// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest wires the batch report: an agent with the arXiv tool is
// asked for one day's papers, its answer is recovered into records, and the
// records are rendered to an HTML file.
package digest

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-digest/internal/agent"
	"github.com/pdiddy/paper-digest/internal/catalog"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/recovery"
	"github.com/pdiddy/paper-digest/internal/report"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Researcher is the persona that produces the report.
var Researcher = agent.Agent{
	Role:      "AI Researcher",
	Goal:      "Analyze and summarize top AI papers from arXiv.",
	Backstory: "A seasoned researcher with expertise in understanding research papers and formatting summaries.",
}

// PaperSchema is the answer shape requested from the researcher.
const PaperSchema = `A JSON array of objects, one per paper:
[{"title": "string", "authors": ["string"], "summary": "string", "url": "string"}]`

// Options controls one report run.
type Options struct {
	// Date is the submission day, YYYY-MM-DD.
	Date string

	// Output is the report path (default ai_papers_report.html).
	Output string

	// Trace receives the agent trace, catalog requests and the raw answer.
	// Nil discards them.
	Trace io.Writer

	// Warn receives recovery warnings. Nil discards them.
	Warn io.Writer
}

// Result describes a completed run.
type Result struct {
	Path     string
	Raw      string
	Papers   []types.Paper
	Strategy string
	Skipped  int
}

// NewTask builds the researcher's task for date. The tool is the only way
// the agent can reach the catalog.
func NewTask(date string, limit int, tool agent.Tool) agent.Task {
	t := agent.NewTask(
		fmt.Sprintf("Use the %s tool to get the top %d papers from arXiv published on %s. "+
			"For each paper, return a list in the format of PaperOutput, with fields: title, authors, summary, and url.",
			tool.Name(), limit, date),
		"List of PaperOutput models describing each paper.",
		tool,
	)
	t.OutputSchema = PaperSchema
	return t
}

// Run produces the report described by opts and prints the saved path to w.
// Retrieval and agent failures abort the run. An answer that cannot be
// recovered still yields a report, with no rows.
func Run(ctx context.Context, cfg types.Config, opts Options, w io.Writer) (*Result, error) {
	if _, err := catalog.NewWindow(opts.Date, cfg.Catalog.Category, cfg.Catalog.Limit); err != nil {
		return nil, err
	}
	output := opts.Output
	if output == "" {
		output = report.DefaultOutput
	}

	backend, err := llm.NewBackend(cfg.LLM)
	if err != nil {
		return nil, err
	}

	client := catalog.NewClient(cfg.Catalog)
	client.Log = opts.Trace
	tool := catalog.NewTool(client, cfg.Catalog.Category, cfg.Catalog.Limit)

	runner := agent.NewRunner(&agent.ReActExecutor{
		Backend:       backend,
		MaxIterations: cfg.Agent.MaxIterations,
		Log:           opts.Trace,
	}, Researcher)

	outputs, err := runner.RunAll(ctx, []agent.Task{NewTask(opts.Date, cfg.Catalog.Limit, tool)})
	if err != nil {
		return nil, err
	}
	raw := outputs[0]
	if opts.Trace != nil {
		fmt.Fprintf(opts.Trace, "\nRaw agent output:\n\n%s\n\n", raw)
	}

	rec := recovery.Default.Recover(raw)
	if opts.Warn != nil {
		if rec.Strategy == "" {
			fmt.Fprintln(opts.Warn, "warning: agent output could not be parsed; the report will be empty")
		}
		if rec.Skipped > 0 {
			fmt.Fprintf(opts.Warn, "warning: skipped %d unusable record(s) in agent output\n", rec.Skipped)
		}
	}

	doc, err := report.Render(rec.Records, opts.Date)
	if err != nil {
		return nil, err
	}
	if err := report.Write(output, doc); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Report successfully saved to: %s\n", output)

	return &Result{
		Path:     output,
		Raw:      raw,
		Papers:   rec.Records,
		Strategy: rec.Strategy,
		Skipped:  rec.Skipped,
	}, nil
}
