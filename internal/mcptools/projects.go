package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/todo"
)

// ListProjectsTool handles the list_projects MCP tool.
type ListProjectsTool struct {
	svc *todo.Service
}

func NewListProjectsTool(svc *todo.Service) *ListProjectsTool {
	return &ListProjectsTool{svc: svc}
}

func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects."),
	)
}

func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := t.svc.ListProjects(ctx)
	if err != nil {
		return errResult(err)
	}
	if names == nil {
		names = []string{}
	}
	return jsonResult(names)
}

// CreateProjectTool handles the create_project MCP tool.
type CreateProjectTool struct {
	svc *todo.Service
}

func NewCreateProjectTool(svc *todo.Service) *CreateProjectTool {
	return &CreateProjectTool{svc: svc}
}

func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project. The name is sanitized to lowercase with underscores."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name (sanitized to lowercase, underscores, alphanumerics)"),
		),
	)
}

func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := t.svc.CreateProject(ctx, req.GetString("name", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]string{"name": name})
}

// DeleteProjectTool handles the delete_project MCP tool.
type DeleteProjectTool struct {
	svc *todo.Service
}

func NewDeleteProjectTool(svc *todo.Service) *DeleteProjectTool {
	return &DeleteProjectTool{svc: svc}
}

func (t *DeleteProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project and ALL of its epics, features and tasks. Permanent."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name to delete"),
		),
	)
}

func (t *DeleteProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.svc.DeleteProject(ctx, req.GetString("name", "")); err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText("project deleted"), nil
}

// ProjectStatsTool handles the get_project_stats MCP tool.
type ProjectStatsTool struct {
	svc *todo.Service
}

func NewProjectStatsTool(svc *todo.Service) *ProjectStatsTool {
	return &ProjectStatsTool{svc: svc}
}

func (t *ProjectStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project_stats",
		mcp.WithDescription("Get counts of epics, features and tasks in a project, broken down by status."),
		withProject(),
	)
}

func (t *ProjectStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.svc.ProjectStats(ctx, req.GetString("project", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(stats)
}
