// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-digest/internal/llm"
)

const defaultMaxIterations = 10

const finalAnswerMarker = "Final Answer:"

var (
	actionRe      = regexp.MustCompile(`(?m)^[ \t]*Action:[ \t]*(.+?)[ \t]*$`)
	actionInputRe = regexp.MustCompile(`(?s)Action Input:[ \t]*(.*)`)
)

var systemPromptTmpl = template.Must(template.New("system").Parse(`You are {{.Role}}. {{.Backstory}}
Your personal goal is: {{.Goal}}
{{if .Tools}}
You can only use the tools listed below. Do not invent tools.

{{.ToolDescriptions}}

Answer in this format:

Thought: what you should do next
Action: the tool to use, exactly one of [{{.ToolNames}}]
Action Input: the tool arguments as a JSON object, e.g. {"name": "value"}

After each action you will receive an Observation with the tool's result.
Repeat Thought/Action/Action Input as needed. When you have everything you need:

Thought: I now know the final answer
Final Answer: the complete answer to the task
{{else}}
Answer in this format:

Thought: I now can give a great answer
Final Answer: the complete answer to the task
{{end}}`))

var taskPromptTmpl = template.Must(template.New("task").Parse(`Current Task: {{.Description}}
{{if .ExpectedOutput}}
This is the expected criteria for your final answer: {{.ExpectedOutput}}
{{end}}{{if .OutputSchema}}
Your final answer must follow this structure:
{{.OutputSchema}}
{{end}}
Begin!`))

const forceFinalPrompt = "You have reached the maximum number of tool calls. " +
	"Using only the observations above, reply now with your Final Answer."

// ReActExecutor drives a model through a Thought/Action/Observation loop.
// Each reply either names a tool, which is called and its result fed back as
// an Observation, or gives a Final Answer, which is returned. A reply with
// neither is returned as-is.
type ReActExecutor struct {
	Backend llm.Backend

	// MaxIterations bounds tool-use rounds per task (default 10). When it is
	// reached the model is asked once more for its final answer.
	MaxIterations int

	// Log receives trace lines. Nil discards them.
	Log io.Writer
}

// Execute runs task for agent a. Model and tool failures end the task with an
// error; unknown tools and malformed arguments are reported back to the model.
func (e *ReActExecutor) Execute(ctx context.Context, a Agent, task Task) (string, error) {
	system, err := renderSystemPrompt(a, task.Tools)
	if err != nil {
		return "", fmt.Errorf("rendering system prompt: %w", err)
	}
	prompt, err := render(taskPromptTmpl, task)
	if err != nil {
		return "", fmt.Errorf("rendering task prompt: %w", err)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: prompt},
	}

	maxIter := e.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	e.logf("task %s: started (%d tools)\n", task.ID, len(task.Tools))

	for i := 1; i <= maxIter; i++ {
		reply, err := e.Backend.Chat(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("calling model: %w", err)
		}
		e.logf("task %s: step %d reply:\n%s\n", task.ID, i, reply)

		s := parseReply(reply)
		switch s.kind {
		case stepFinal:
			e.logf("task %s: final answer after %d step(s)\n", task.ID, i)
			return s.answer, nil
		case stepText:
			return strings.TrimSpace(reply), nil
		}

		observation, err := e.callTool(ctx, task, s)
		if err != nil {
			return "", err
		}
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: strings.TrimSpace(reply)},
			llm.Message{Role: llm.RoleUser, Content: "Observation: " + observation},
		)
	}

	e.logf("task %s: reached %d iterations, requesting final answer\n", task.ID, maxIter)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: forceFinalPrompt})
	reply, err := e.Backend.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("calling model: %w", err)
	}
	if s := parseReply(reply); s.kind == stepFinal {
		return s.answer, nil
	}
	return strings.TrimSpace(reply), nil
}

// callTool resolves and invokes the tool named in s. The returned string is
// the observation for the model. A tool error yields an error unless it wraps
// ErrInvalidArguments, in which case the model is told and may try again.
func (e *ReActExecutor) callTool(ctx context.Context, task Task, s step) (string, error) {
	var tool Tool
	for _, t := range task.Tools {
		if t.Name() == s.tool {
			tool = t
			break
		}
	}
	if tool == nil {
		err := fmt.Errorf("%w %q", ErrUnknownTool, s.tool)
		e.logf("task %s: %v\n", task.ID, err)
		return fmt.Sprintf("Error: %v. Available tools: [%s].", err, toolNames(task.Tools)), nil
	}

	args, err := parseActionInput(s.input)
	if err == nil {
		err = ValidateArgs(tool.Parameters(), args)
	}
	if err != nil {
		e.logf("task %s: %s: %v\n", task.ID, tool.Name(), err)
		return fmt.Sprintf("Error: %v. Expected arguments: %s.", err, mustJSON(InputSchema(tool.Parameters()))), nil
	}

	e.logf("task %s: calling %s %s\n", task.ID, tool.Name(), mustJSON(args))
	result, err := tool.Call(ctx, args)
	if errors.Is(err, ErrInvalidArguments) {
		e.logf("task %s: %s: %v\n", task.ID, tool.Name(), err)
		return fmt.Sprintf("Error: %v.", err), nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolFailed, tool.Name(), err)
	}

	if str, ok := result.(string); ok {
		return str, nil
	}
	return mustJSON(result), nil
}

type stepKind int

const (
	stepText stepKind = iota
	stepAction
	stepFinal
)

type step struct {
	kind   stepKind
	tool   string
	input  string
	answer string
}

// parseReply classifies a model reply. When both an action and a final answer
// appear, whichever comes first wins.
func parseReply(reply string) step {
	finalIdx := strings.Index(reply, finalAnswerMarker)
	loc := actionRe.FindStringSubmatchIndex(reply)

	if loc != nil && (finalIdx < 0 || loc[0] < finalIdx) {
		name := strings.Trim(reply[loc[2]:loc[3]], "`\"' ")
		s := step{kind: stepAction, tool: name}
		if m := actionInputRe.FindStringSubmatch(reply[loc[1]:]); m != nil {
			s.input = m[1]
		}
		return s
	}
	if finalIdx >= 0 {
		return step{kind: stepFinal, answer: strings.TrimSpace(reply[finalIdx+len(finalAnswerMarker):])}
	}
	return step{kind: stepText}
}

// parseActionInput decodes the JSON object following "Action Input:". Text
// after a following Observation or Thought line is ignored; an empty input
// means no arguments.
func parseActionInput(input string) (map[string]any, error) {
	for _, marker := range []string{"\nObservation:", "\nThought:"} {
		if i := strings.Index(input, marker); i >= 0 {
			input = input[:i]
		}
	}
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.Trim(input, "`")
	input = strings.TrimSpace(input)
	if input == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil, fmt.Errorf("%w: action input is not a JSON object: %v", ErrInvalidArguments, err)
	}
	if args == nil {
		return nil, fmt.Errorf("%w: action input is null", ErrInvalidArguments)
	}
	return args, nil
}

func renderSystemPrompt(a Agent, tools []Tool) (string, error) {
	return render(systemPromptTmpl, struct {
		Agent
		Tools            []Tool
		ToolDescriptions string
		ToolNames        string
	}{a, tools, describeTools(tools), toolNames(tools)})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func (e *ReActExecutor) logf(format string, args ...any) {
	if e.Log == nil {
		return
	}
	fmt.Fprintf(e.Log, format, args...)
}

// IsToolFailure reports whether err came from a failing tool call.
func IsToolFailure(err error) bool {
	return errors.Is(err, ErrToolFailed)
}
