// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent runs one-off tasks for a persona backed by a text-generation
// model. The engine is hidden behind Executor: a task goes in with its tools
// and output contract, and raw text comes out. The runner never retries,
// never times out on its own, and never inspects the text it returns.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Agent is a persona. It is built once and reused for every task it runs;
// it holds no memory between tasks.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
}

// Task is a single unit of work submitted to an agent.
type Task struct {
	// ID identifies the task in trace output.
	ID string

	// Description is the full goal text given to the model.
	Description string

	// ExpectedOutput describes what the final answer should look like.
	ExpectedOutput string

	// OutputSchema optionally describes the structure the answer should have.
	// It is advisory: the executor passes through whatever the model returns.
	OutputSchema string

	// Tools are the callables the model may invoke while working on the task.
	Tools []Tool
}

// NewTask returns a Task with a fresh ID.
func NewTask(description, expectedOutput string, tools ...Tool) Task {
	return Task{
		ID:             uuid.NewString(),
		Description:    description,
		ExpectedOutput: expectedOutput,
		Tools:          tools,
	}
}

// Executor is the agent/task engine: it carries a task to completion for an
// agent and returns the raw final text.
type Executor interface {
	Execute(ctx context.Context, a Agent, task Task) (string, error)
}

// Runner submits tasks for one persistent agent.
type Runner struct {
	Executor Executor
	Agent    Agent
}

// NewRunner returns a Runner for agent a.
func NewRunner(exec Executor, a Agent) *Runner {
	return &Runner{Executor: exec, Agent: a}
}

// Run executes task exactly once and returns its raw output unchanged.
func (r *Runner) Run(ctx context.Context, task Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	out, err := r.Executor.Execute(ctx, r.Agent, task)
	if err != nil {
		return "", fmt.Errorf("task %s: %w", task.ID, err)
	}
	return out, nil
}

// RunAll executes tasks in order and returns each raw output. It stops at
// the first failure.
func (r *Runner) RunAll(ctx context.Context, tasks []Task) ([]string, error) {
	outputs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out, err := r.Run(ctx, task)
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
