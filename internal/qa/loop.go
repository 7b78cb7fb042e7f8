// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa implements the interactive question loop: each line read from
// the operator becomes a one-off task for a single persistent agent, and the
// raw answer is printed back.
package qa

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/paper-digest/internal/agent"
)

// Farewell is printed when the loop ends.
const Farewell = "Exiting... Have a great day!"

// Loop reads questions from In and writes answers to Out.
type Loop struct {
	Runner *agent.Runner
	In     io.Reader
	Out    io.Writer

	// Prompt is written before each read. Empty disables prompting, which
	// suits piped input.
	Prompt string

	// ExpectedOutput is attached to every task.
	ExpectedOutput string
}

type styles struct {
	prompt lipgloss.Style
	result lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		prompt: r.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		result: r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		err:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Run blocks until ctx is cancelled or In is exhausted, then prints the
// farewell and returns nil. A failed task is reported and the loop carries
// on with the next line. Only read errors are returned.
//
// In is read on a separate goroutine. If ctx is cancelled while that
// goroutine is blocked in a read, Run returns without waiting for it and it
// keeps In until the read completes.
func (l *Loop) Run(ctx context.Context) error {
	st := newStyles(l.Out)
	lines, readErr := scanLines(ctx, l.In)

	for {
		if ctx.Err() != nil {
			l.farewell(st)
			return nil
		}
		if l.Prompt != "" {
			fmt.Fprintf(l.Out, "\n%s", st.prompt.Render(l.Prompt))
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			l.farewell(st)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			if err := <-readErr; err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			l.farewell(st)
			return nil
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}

		task := agent.NewTask(question, l.ExpectedOutput)
		answer, err := l.Runner.Run(ctx, task)
		if ctx.Err() != nil {
			l.farewell(st)
			return nil
		}
		if err != nil {
			fmt.Fprintf(l.Out, "\n%s %v\n", st.err.Render("Error:"), err)
			continue
		}
		fmt.Fprintf(l.Out, "\n%s %s\n", st.result.Render("Result:"), answer)
	}
}

func (l *Loop) farewell(st styles) {
	fmt.Fprintf(l.Out, "\n%s\n", st.muted.Render(Farewell))
}

// scanLines feeds r line by line into the returned channel so the caller can
// wait on it alongside a context. Lines have no length limit; a trailing
// "\r" is dropped. The channel is closed at EOF and the read error, if any,
// is then delivered on the second channel.
func scanLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				select {
				case lines <- strings.TrimRight(line, "\r\n"):
				case <-ctx.Done():
					errc <- nil
					return
				}
			}
			if err == io.EOF {
				errc <- nil
				return
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()
	return lines, errc
}
