package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/todo"
)

// ListTasksTool handles the list_tasks MCP tool.
type ListTasksTool struct {
	svc *todo.Service
}

func NewListTasksTool(svc *todo.Service) *ListTasksTool {
	return &ListTasksTool{svc: svc}
}

func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks in a project, optionally filtered by feature."),
		withProject(),
		mcp.WithString("featureId", mcp.Description("Filter by feature ID")),
	)
}

func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := t.svc.ListTasks(ctx, req.GetString("project", ""), req.GetString("featureId", ""))
	if err != nil {
		return errResult(err)
	}
	if tasks == nil {
		tasks = []item.Item{}
	}
	return jsonResult(tasks)
}

// GetTaskTool handles the get_task MCP tool.
type GetTaskTool struct {
	svc *todo.Service
}

func NewGetTaskTool(svc *todo.Service) *GetTaskTool {
	return &GetTaskTool{svc: svc}
}

func (t *GetTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("get_task",
		mcp.WithDescription("Get details of a specific task."),
		withProject(),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("Task ID")),
	)
}

func (t *GetTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := t.svc.GetTask(ctx, req.GetString("project", ""), req.GetString("taskId", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(task)
}

// CreateTaskTool handles the create_task MCP tool.
type CreateTaskTool struct {
	svc *todo.Service
}

func NewCreateTaskTool(svc *todo.Service) *CreateTaskTool {
	return &CreateTaskTool{svc: svc}
}

func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task under a feature. The feature must exist."),
		withProject(),
		mcp.WithString("featureId", mcp.Required(), mcp.Description("Parent feature ID")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("desc", mcp.Description("Task description")),
		mcp.WithString("uat", mcp.Description("User acceptance test criteria")),
		mcp.WithString("status",
			mcp.Description("Task status (default: todo)"),
			mcp.Enum(itemStatusEnum()...),
		),
		mcp.WithString("referenceFile", mcp.Description("Path to a related file")),
	)
}

func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := t.svc.CreateTask(ctx,
		req.GetString("project", ""),
		req.GetString("featureId", ""),
		req.GetString("title", ""),
		req.GetString("desc", ""),
		req.GetString("uat", ""),
		item.Status(req.GetString("status", "")),
		req.GetString("referenceFile", ""),
	)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(task)
}

// UpdateTaskTool handles the update_task MCP tool. A status change
// rolls up to the owning feature and possibly its epic.
type UpdateTaskTool struct {
	svc *todo.Service
}

func NewUpdateTaskTool(svc *todo.Service) *UpdateTaskTool {
	return &UpdateTaskTool{svc: svc}
}

func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription("Update a task. Changing its status may auto-update the owning feature and epic."),
		withProject(),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("Task ID")),
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

func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := t.svc.UpdateTask(ctx,
		req.GetString("project", ""),
		req.GetString("taskId", ""),
		updateFromArgs(req),
	)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(task)
}

// DeleteTaskTool handles the delete_task MCP tool.
type DeleteTaskTool struct {
	svc *todo.Service
}

func NewDeleteTaskTool(svc *todo.Service) *DeleteTaskTool {
	return &DeleteTaskTool{svc: svc}
}

func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. The owning feature may auto-complete."),
		withProject(),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("Task ID")),
	)
}

func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := t.svc.DeleteTask(ctx, req.GetString("project", ""), req.GetString("taskId", ""))
	if err != nil {
		return errResult(err)
	}
	return mcp.NewToolResultText("task deleted"), nil
}

// markTaskTool factors the three convenience status setters; each is
// registered under its own name with a fixed target status.
type markTaskTool struct {
	svc    *todo.Service
	name   string
	desc   string
	status item.Status
}

// NewMarkTaskDoneTool handles mark_task_done.
func NewMarkTaskDoneTool(svc *todo.Service) *markTaskTool {
	return &markTaskTool{
		svc:    svc,
		name:   "mark_task_done",
		desc:   "Mark a task as done. May auto-complete the owning feature and epic.",
		status: item.StatusDone,
	}
}

// NewMarkTaskInProgressTool handles mark_task_in_progress.
func NewMarkTaskInProgressTool(svc *todo.Service) *markTaskTool {
	return &markTaskTool{
		svc:    svc,
		name:   "mark_task_in_progress",
		desc:   "Mark a task as in progress. May reopen a done feature and epic.",
		status: item.StatusInProgress,
	}
}

// NewMarkTaskBlockedTool handles mark_task_blocked.
func NewMarkTaskBlockedTool(svc *todo.Service) *markTaskTool {
	return &markTaskTool{
		svc:    svc,
		name:   "mark_task_blocked",
		desc:   "Mark a task as blocked.",
		status: item.StatusBlocked,
	}
}

func (t *markTaskTool) Definition() mcp.Tool {
	return mcp.NewTool(t.name,
		mcp.WithDescription(t.desc),
		withProject(),
		mcp.WithString("taskId", mcp.Required(), mcp.Description("Task ID")),
	)
}

func (t *markTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := t.svc.UpdateTask(ctx,
		req.GetString("project", ""),
		req.GetString("taskId", ""),
		todo.Update{Status: &t.status},
	)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(task)
}
