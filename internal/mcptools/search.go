package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/todo"
)

// SearchItemsTool handles the search_items MCP tool.
type SearchItemsTool struct {
	svc *todo.Service
}

func NewSearchItemsTool(svc *todo.Service) *SearchItemsTool {
	return &SearchItemsTool{svc: svc}
}

func (t *SearchItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_items",
		mcp.WithDescription("Search items by text across title, description, UAT and reference file, "+
			"optionally narrowed by type and status."),
		withProject(),
		mcp.WithString("query", mcp.Description("Case-insensitive text to search for")),
		mcp.WithString("type",
			mcp.Description("Restrict to one item type"),
			mcp.Enum("epic", "feature", "task"),
		),
		mcp.WithString("status",
			mcp.Description("Restrict to one status"),
			mcp.Enum("planning", "todo", "in_progress", "done", "blocked"),
		),
	)
}

func (t *SearchItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := t.svc.Search(ctx,
		req.GetString("project", ""),
		req.GetString("query", ""),
		item.Kind(req.GetString("type", "")),
		item.Status(req.GetString("status", "")),
	)
	if err != nil {
		return errResult(err)
	}
	return itemsResult(items)
}

// statusListTool factors get_blocked_items and get_in_progress_items,
// which differ only in the status they select.
type statusListTool struct {
	svc    *todo.Service
	name   string
	desc   string
	status item.Status
}

// NewBlockedItemsTool handles get_blocked_items.
func NewBlockedItemsTool(svc *todo.Service) *statusListTool {
	return &statusListTool{
		svc:    svc,
		name:   "get_blocked_items",
		desc:   "List every blocked item in a project, at any level.",
		status: item.StatusBlocked,
	}
}

// NewInProgressItemsTool handles get_in_progress_items.
func NewInProgressItemsTool(svc *todo.Service) *statusListTool {
	return &statusListTool{
		svc:    svc,
		name:   "get_in_progress_items",
		desc:   "List every in-progress item in a project, at any level.",
		status: item.StatusInProgress,
	}
}

func (t *statusListTool) Definition() mcp.Tool {
	return mcp.NewTool(t.name,
		mcp.WithDescription(t.desc),
		withProject(),
	)
}

func (t *statusListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := t.svc.ItemsByStatus(ctx, req.GetString("project", ""), t.status, "")
	if err != nil {
		return errResult(err)
	}
	return itemsResult(items)
}

// RecentlyUpdatedTool handles the get_recently_updated MCP tool.
type RecentlyUpdatedTool struct {
	svc *todo.Service
}

func NewRecentlyUpdatedTool(svc *todo.Service) *RecentlyUpdatedTool {
	return &RecentlyUpdatedTool{svc: svc}
}

func (t *RecentlyUpdatedTool) Definition() mcp.Tool {
	return mcp.NewTool("get_recently_updated",
		mcp.WithDescription("List the most recently updated items, newest first."),
		withProject(),
		mcp.WithNumber("limit", mcp.Description("Maximum number of items to return (default 10)")),
	)
}

func (t *RecentlyUpdatedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(req.GetFloat("limit", 10))
	items, err := t.svc.RecentlyUpdated(ctx, req.GetString("project", ""), limit)
	if err != nil {
		return errResult(err)
	}
	return itemsResult(items)
}

func itemsResult(items []item.Item) (*mcp.CallToolResult, error) {
	if items == nil {
		items = []item.Item{}
	}
	return jsonResult(items)
}
