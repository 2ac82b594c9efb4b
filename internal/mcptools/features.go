package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/todo"
)

// ListFeaturesTool handles the list_features MCP tool.
type ListFeaturesTool struct {
	svc *todo.Service
}

func NewListFeaturesTool(svc *todo.Service) *ListFeaturesTool {
	return &ListFeaturesTool{svc: svc}
}

func (t *ListFeaturesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_features",
		mcp.WithDescription("List features in a project, optionally filtered by epic."),
		withProject(),
		mcp.WithString("epicId", mcp.Description("Filter by epic ID")),
	)
}

func (t *ListFeaturesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	features, err := t.svc.ListFeatures(ctx, req.GetString("project", ""), req.GetString("epicId", ""))
	if err != nil {
		return errResult(err)
	}
	if features == nil {
		features = []item.Item{}
	}
	return jsonResult(features)
}

// GetFeatureTool handles the get_feature MCP tool.
type GetFeatureTool struct {
	svc *todo.Service
}

func NewGetFeatureTool(svc *todo.Service) *GetFeatureTool {
	return &GetFeatureTool{svc: svc}
}

func (t *GetFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("get_feature",
		mcp.WithDescription("Get details of a specific feature."),
		withProject(),
		mcp.WithString("featureId", mcp.Required(), mcp.Description("Feature ID")),
	)
}

func (t *GetFeatureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feature, err := t.svc.GetFeature(ctx, req.GetString("project", ""), req.GetString("featureId", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(feature)
}

// CreateFeatureTool handles the create_feature MCP tool.
type CreateFeatureTool struct {
	svc *todo.Service
}

func NewCreateFeatureTool(svc *todo.Service) *CreateFeatureTool {
	return &CreateFeatureTool{svc: svc}
}

func (t *CreateFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("create_feature",
		mcp.WithDescription("Create a new feature under an epic. The epic must exist."),
		withProject(),
		mcp.WithString("epicId", mcp.Required(), mcp.Description("Parent epic ID")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Feature title")),
		mcp.WithString("desc", mcp.Description("Feature description")),
		mcp.WithString("uat", mcp.Description("User acceptance test criteria")),
		mcp.WithString("status",
			mcp.Description("Feature status (default: todo)"),
			mcp.Enum(itemStatusEnum()...),
		),
		mcp.WithString("referenceFile", mcp.Description("Path to a related file")),
	)
}

func (t *CreateFeatureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feature, err := t.svc.CreateFeature(ctx,
		req.GetString("project", ""),
		req.GetString("epicId", ""),
		req.GetString("title", ""),
		req.GetString("desc", ""),
		req.GetString("uat", ""),
		item.Status(req.GetString("status", "")),
		req.GetString("referenceFile", ""),
	)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(feature)
}

// UpdateFeatureTool handles the update_feature MCP tool. A status
// change rolls up to the owning epic.
type UpdateFeatureTool struct {
	svc *todo.Service
}

func NewUpdateFeatureTool(svc *todo.Service) *UpdateFeatureTool {
	return &UpdateFeatureTool{svc: svc}
}

func (t *UpdateFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("update_feature",
		mcp.WithDescription("Update a feature. Changing its status may auto-update the owning epic."),
		withProject(),
		mcp.WithString("featureId", mcp.Required(), mcp.Description("Feature ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("desc", mcp.Description("New description")),
		mcp.WithString("uat", mcp.Description("New UAT criteria")),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum(itemStatusEnum()...),
		),
		mcp.WithString("referenceFile", mcp.Description("New reference file path")),
	)
}

func (t *UpdateFeatureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feature, err := t.svc.UpdateFeature(ctx,
		req.GetString("project", ""),
		req.GetString("featureId", ""),
		updateFromArgs(req),
	)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(feature)
}

// DeleteFeatureTool handles the delete_feature MCP tool.
type DeleteFeatureTool struct {
	svc *todo.Service
}

func NewDeleteFeatureTool(svc *todo.Service) *DeleteFeatureTool {
	return &DeleteFeatureTool{svc: svc}
}

func (t *DeleteFeatureTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_feature",
		mcp.WithDescription("Delete a feature and all of its tasks (cascade). The owning epic may auto-complete."),
		withProject(),
		mcp.WithString("featureId", mcp.Required(), mcp.Description("Feature ID")),
	)
}

func (t *DeleteFeatureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := t.svc.DeleteFeature(ctx, req.GetString("project", ""), req.GetString("featureId", ""))
	if err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText("feature and all related tasks deleted"), nil
}
