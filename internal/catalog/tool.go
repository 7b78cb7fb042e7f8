// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/paper-digest/internal/agent"
)

// ToolName is the name under which Fetch is offered to the agent.
const ToolName = "fetch_arxiv_papers"

// NewTool exposes c.Fetch to an agent. The agent supplies target_date; the
// category and limit are fixed by the caller.
func NewTool(c *Client, category string, limit int) agent.Tool {
	return &agent.FuncTool{
		ToolName:        ToolName,
		ToolDescription: fmt.Sprintf("Fetch the first %d %s papers from arXiv submitted on a given date", limit, category),
		Params: []agent.Parameter{
			{Name: "target_date", Type: "string", Description: "Date in YYYY-MM-DD", Required: true},
		},
		Fn: func(ctx context.Context, args map[string]any) (any, error) {
			date, _ := args["target_date"].(string)
			w, err := NewWindow(date, category, limit)
			if errors.Is(err, ErrInvalidDate) {
				return nil, fmt.Errorf("%w: %v", agent.ErrInvalidArguments, err)
			}
			if err != nil {
				return nil, err
			}
			return c.Fetch(ctx, w)
		},
	}
}
