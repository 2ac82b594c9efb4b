package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/todo"
)

// ListEpicsTool handles the list_epics MCP tool.
type ListEpicsTool struct {
	svc *todo.Service
}

func NewListEpicsTool(svc *todo.Service) *ListEpicsTool {
	return &ListEpicsTool{svc: svc}
}

func (t *ListEpicsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_epics",
		mcp.WithDescription("List all epics in a project."),
		withProject(),
	)
}

func (t *ListEpicsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epics, err := t.svc.ListEpics(ctx, req.GetString("project", ""))
	if err != nil {
		return errResult(err)
	}
	if epics == nil {
		epics = []item.Item{}
	}
	return jsonResult(epics)
}

// GetEpicTool handles the get_epic MCP tool.
type GetEpicTool struct {
	svc *todo.Service
}

func NewGetEpicTool(svc *todo.Service) *GetEpicTool {
	return &GetEpicTool{svc: svc}
}

func (t *GetEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("get_epic",
		mcp.WithDescription("Get details of a specific epic."),
		withProject(),
		mcp.WithString("epicId", mcp.Required(), mcp.Description("Epic ID")),
	)
}

func (t *GetEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epic, err := t.svc.GetEpic(ctx, req.GetString("project", ""), req.GetString("epicId", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(epic)
}

// CreateEpicTool handles the create_epic MCP tool.
type CreateEpicTool struct {
	svc *todo.Service
}

func NewCreateEpicTool(svc *todo.Service) *CreateEpicTool {
	return &CreateEpicTool{svc: svc}
}

func (t *CreateEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("create_epic",
		mcp.WithDescription("Create a new epic in a project."),
		withProject(),
		mcp.WithString("title", mcp.Required(), mcp.Description("Epic title")),
		mcp.WithString("desc", mcp.Description("Epic description")),
		mcp.WithString("status",
			mcp.Description("Epic status (default: planning)"),
			mcp.Enum(epicStatusEnum()...),
		),
	)
}

func (t *CreateEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epic, err := t.svc.CreateEpic(ctx,
		req.GetString("project", ""),
		req.GetString("title", ""),
		req.GetString("desc", ""),
		item.Status(req.GetString("status", "")),
	)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(epic)
}

// UpdateEpicTool handles the update_epic MCP tool.
type UpdateEpicTool struct {
	svc *todo.Service
}

func NewUpdateEpicTool(svc *todo.Service) *UpdateEpicTool {
	return &UpdateEpicTool{svc: svc}
}

func (t *UpdateEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("update_epic",
		mcp.WithDescription("Update an epic's title, description or status."),
		withProject(),
		mcp.WithString("epicId", mcp.Required(), mcp.Description("Epic ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("desc", mcp.Description("New description")),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum(epicStatusEnum()...),
		),
	)
}

func (t *UpdateEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	epic, err := t.svc.UpdateEpic(ctx,
		req.GetString("project", ""),
		req.GetString("epicId", ""),
		updateFromArgs(req),
	)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(epic)
}

// DeleteEpicTool handles the delete_epic MCP tool.
type DeleteEpicTool struct {
	svc *todo.Service
}

func NewDeleteEpicTool(svc *todo.Service) *DeleteEpicTool {
	return &DeleteEpicTool{svc: svc}
}

func (t *DeleteEpicTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_epic",
		mcp.WithDescription("Delete an epic and all of its features and tasks (cascade)."),
		withProject(),
		mcp.WithString("epicId", mcp.Required(), mcp.Description("Epic ID")),
	)
}

func (t *DeleteEpicTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := t.svc.DeleteEpic(ctx, req.GetString("project", ""), req.GetString("epicId", ""))
	if err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText("epic and all related features and tasks deleted"), nil
}

// updateFromArgs builds a partial update from the optional mutable
// fields present in the request arguments.
func updateFromArgs(req mcp.CallToolRequest) todo.Update {
	var upd todo.Update
	args := req.GetArguments()
	if _, ok := args["title"]; ok {
		v := req.GetString("title", "")
		upd.Title = &v
	}
	if _, ok := args["desc"]; ok {
		v := req.GetString("desc", "")
		upd.Desc = &v
	}
	if _, ok := args["uat"]; ok {
		v := req.GetString("uat", "")
		upd.UAT = &v
	}
	if _, ok := args["status"]; ok {
		v := item.Status(req.GetString("status", ""))
		upd.Status = &v
	}
	if _, ok := args["referenceFile"]; ok {
		v := req.GetString("referenceFile", "")
		upd.ReferenceFile = &v
	}
	return upd
}
