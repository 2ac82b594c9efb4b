package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/todo"
)

// ProjectTreeTool handles the get_project_tree MCP tool.
type ProjectTreeTool struct {
	svc *todo.Service
}

func NewProjectTreeTool(svc *todo.Service) *ProjectTreeTool {
	return &ProjectTreeTool{svc: svc}
}

func (t *ProjectTreeTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project_tree",
		mcp.WithDescription("Get the full hierarchy of a project: epics with their features, "+
			"tasks and per-node progress."),
		withProject(),
	)
}

func (t *ProjectTreeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := t.svc.ProjectTree(ctx, req.GetString("project", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(tree)
}

// EpicTreeTool handles the get_epic_tree MCP tool.
type EpicTreeTool struct {
	svc *todo.Service
}

func NewEpicTreeTool(svc *todo.Service) *EpicTreeTool {
	return &EpicTreeTool{svc: svc}
}

func (t *EpicTreeTool) Definition() mcp.Tool {
	return mcp.NewTool("get_epic_tree",
		mcp.WithDescription("Get one epic's subtree: its features, their tasks and progress."),
		withProject(),
		mcp.WithString("epicId", mcp.Required(), mcp.Description("Epic ID")),
	)
}

func (t *EpicTreeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := t.svc.EpicTree(ctx, req.GetString("project", ""), req.GetString("epicId", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(tree)
}
