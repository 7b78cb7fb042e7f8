// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrUnknownTool is reported when the model names a tool the task does not carry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is reported when tool arguments do not match the tool's parameters.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrToolFailed wraps an error returned by a tool. It aborts the task.
	ErrToolFailed = errors.New("tool failed")
)

// Parameter describes one named argument of a tool. Type is a JSON schema
// type: string, integer, number, boolean, array, or object.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool is a callable the executor exposes to the model. Name, Description,
// and Parameters form the schema shown to the model; Call receives arguments
// that already passed ValidateArgs.
type Tool interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Call(ctx context.Context, args map[string]any) (any, error)
}

// FuncTool adapts a plain function to the Tool interface.
type FuncTool struct {
	ToolName        string
	ToolDescription string
	Params          []Parameter
	Fn              func(ctx context.Context, args map[string]any) (any, error)
}

func (t *FuncTool) Name() string            { return t.ToolName }
func (t *FuncTool) Description() string     { return t.ToolDescription }
func (t *FuncTool) Parameters() []Parameter { return t.Params }

// Call invokes the wrapped function.
func (t *FuncTool) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.Fn(ctx, args)
}

// ValidateArgs checks args against params: required arguments must be
// present, every argument must be declared, and values must match the
// declared JSON type.
func ValidateArgs(params []Parameter, args map[string]any) error {
	declared := make(map[string]Parameter, len(params))
	for _, p := range params {
		declared[p.Name] = p
		if _, ok := args[p.Name]; !ok && p.Required {
			return fmt.Errorf("%w: missing required argument %q", ErrInvalidArguments, p.Name)
		}
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, ok := declared[name]
		if !ok {
			return fmt.Errorf("%w: unexpected argument %q", ErrInvalidArguments, name)
		}
		if !matchesType(p.Type, args[name]) {
			return fmt.Errorf("%w: argument %q must be of type %s", ErrInvalidArguments, name, p.Type)
		}
	}
	return nil
}

// matchesType reports whether v, as decoded by encoding/json, has the JSON type typ.
func matchesType(typ string, v any) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		_, ok := v.(float64)
		return ok
	case "integer":
		f, ok := v.(float64)
		return ok && f == math.Trunc(f)
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

// InputSchema renders params as a JSON schema object.
func InputSchema(params []Parameter) map[string]any {
	props := make(map[string]any, len(params))
	required := []string{}
	for _, p := range params {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// describeTools formats the tool list for the system prompt.
func describeTools(tools []Tool) string {
	var b strings.Builder
	for _, t := range tools {
		schema, _ := json.Marshal(InputSchema(t.Parameters()))
		fmt.Fprintf(&b, "Tool Name: %s\nTool Description: %s\nTool Arguments: %s\n\n", t.Name(), t.Description(), schema)
	}
	return strings.TrimRight(b.String(), "\n")
}

// toolNames returns the comma-separated names of tools.
func toolNames(tools []Tool) string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return strings.Join(names, ", ")
}
