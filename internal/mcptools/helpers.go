// Package mcptools implements the MCP tool handlers for the task
// hierarchy.
//
// Each tool is a struct holding its dependencies and exposing a
// Definition()/Handle() pair; one file groups the tools of one entity.
// The tools are thin adapters: argument parsing here, hierarchy rules
// in internal/todo, the same core the REST transport calls.
package mcptools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store"
)

// jsonResult renders any value as an indented-JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errResult maps domain errors to tool-level errors the agent can act
// on; anything else is a transport failure and bubbles up.
func errResult(err error) (*mcp.CallToolResult, error) {
	var ve *item.ValidationError
	if errors.As(err, &ve) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrConflict) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func withProject() mcp.ToolOption {
	return mcp.WithString("project",
		mcp.Required(),
		mcp.Description("Project name"),
	)
}

func epicStatusEnum() []string {
	return statusNames(item.EpicStatuses)
}

func itemStatusEnum() []string {
	return statusNames(item.ItemStatuses)
}

func statusNames(statuses []item.Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}
