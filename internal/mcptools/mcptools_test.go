package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/store/memstore"
	"github.com/vibetodo/vibetodo/internal/todo"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// newTestService returns a core service over an in-memory store with
// one project "p" created.
func newTestService(t *testing.T) *todo.Service {
	t.Helper()
	st := memstore.New()
	if err := st.CreateProject(context.Background(), "p"); err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return todo.NewService(st, nil)
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decodeItem parses the JSON body of a successful tool result.
func decodeItem(t *testing.T, r *mcp.CallToolResult) item.Item {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool returned error: %s", resultText(r))
	}
	var it item.Item
	if err := json.Unmarshal([]byte(resultText(r)), &it); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}
	return it
}

// seedTask creates epic→feature→task and returns all three.
func seedTask(t *testing.T, svc *todo.Service) (epic, feature, task *item.Item) {
	t.Helper()
	ctx := context.Background()
	epic, err := svc.CreateEpic(ctx, "p", "Epic", "", "")
	if err != nil {
		t.Fatalf("seed epic: %v", err)
	}
	feature, err = svc.CreateFeature(ctx, "p", epic.ID, "Feature", "", "", "", "")
	if err != nil {
		t.Fatalf("seed feature: %v", err)
	}
	task, err = svc.CreateTask(ctx, "p", feature.ID, "Task", "", "", "", "")
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return epic, feature, task
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestCreateEpicTool_Definition(t *testing.T) {
	tool := NewCreateEpicTool(newTestService(t))
	def := tool.Definition()

	if def.Name != "create_epic" {
		t.Errorf("tool name = %q, want %q", def.Name, "create_epic")
	}
	props := def.InputSchema.Properties
	for _, p := range []string{"project", "title", "desc", "status"} {
		if _, ok := props[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}

	required := map[string]bool{}
	for _, r := range def.InputSchema.Required {
		required[r] = true
	}
	if !required["project"] || !required["title"] {
		t.Errorf("project and title should be required, got %v", def.InputSchema.Required)
	}
}

func TestMarkTaskTools_Definitions(t *testing.T) {
	svc := newTestService(t)
	names := map[string]interface {
		Definition() mcp.Tool
	}{
		"mark_task_done":        NewMarkTaskDoneTool(svc),
		"mark_task_in_progress": NewMarkTaskInProgressTool(svc),
		"mark_task_blocked":     NewMarkTaskBlockedTool(svc),
	}
	for want, tool := range names {
		if got := tool.Definition().Name; got != want {
			t.Errorf("tool name = %q, want %q", got, want)
		}
	}
}

// ─── Project tools ───────────────────────────────────────────────────────────

func TestCreateProjectTool(t *testing.T) {
	svc := newTestService(t)
	tool := NewCreateProjectTool(svc)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name": "My Cool Project!!",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(resultText(res), "my_cool_project") {
		t.Errorf("result missing sanitized name: %s", resultText(res))
	}

	// Same sanitized name is a conflict, reported as a tool error.
	res, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name": "my cool project",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !res.IsError {
		t.Error("duplicate project should be a tool error")
	}
}

func TestListProjectsTool_Empty(t *testing.T) {
	tool := NewListProjectsTool(todo.NewService(memstore.New(), nil))
	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if got := strings.TrimSpace(resultText(res)); got != "[]" {
		t.Errorf("empty project list = %q, want []", got)
	}
}

// ─── CRUD through the tool surface ───────────────────────────────────────────

func TestEpicToolsRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	res, err := NewCreateEpicTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"title":   "  Launch  ",
		"desc":    "ship it",
	}))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	epic := decodeItem(t, res)
	if epic.Title != "Launch" {
		t.Errorf("title = %q, want trimmed", epic.Title)
	}
	if epic.Status != item.StatusPlanning {
		t.Errorf("status = %q, want planning", epic.Status)
	}

	res, err = NewUpdateEpicTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"epicId":  epic.ID,
		"status":  "in_progress",
	}))
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := decodeItem(t, res).Status; got != item.StatusInProgress {
		t.Errorf("status after update = %q", got)
	}

	res, err = NewDeleteEpicTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"epicId":  epic.ID,
	}))
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if res.IsError {
		t.Errorf("delete errored: %s", resultText(res))
	}

	res, err = NewGetEpicTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"epicId":  epic.ID,
	}))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !res.IsError {
		t.Error("getting a deleted epic should be a tool error")
	}
}

func TestCreateTaskTool_MissingFeature(t *testing.T) {
	svc := newTestService(t)
	res, err := NewCreateTaskTool(svc).Handle(context.Background(), makeReq(map[string]interface{}{
		"project":   "p",
		"featureId": "64a1f2c3d4e5f60718293a4b",
		"title":     "orphan",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !res.IsError {
		t.Error("creating a task under a missing feature should be a tool error")
	}
}

func TestCreateEpicTool_UnknownProject(t *testing.T) {
	svc := newTestService(t)
	res, err := NewCreateEpicTool(svc).Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "ghost",
		"title":   "Launch",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !res.IsError {
		t.Error("creating an epic in a never-created project should be a tool error")
	}

	// The write was rejected, not silently routed into a new project.
	projects, err := svc.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 || projects[0] != "p" {
		t.Errorf("projects = %v, want [p]", projects)
	}
}

func TestCreateEpicTool_EmptyTitle(t *testing.T) {
	svc := newTestService(t)
	res, err := NewCreateEpicTool(svc).Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "p",
		"title":   "   ",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !res.IsError {
		t.Error("empty title should be a tool error")
	}
}

// ─── Rollup through the tool surface ─────────────────────────────────────────

func TestMarkTaskDoneRollsUp(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	epic, feature, task := seedTask(t, svc)

	res, err := NewMarkTaskDoneTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"taskId":  task.ID,
	}))
	if err != nil {
		t.Fatalf("mark done failed: %v", err)
	}
	if got := decodeItem(t, res).Status; got != item.StatusDone {
		t.Errorf("task status = %q, want done", got)
	}

	// The only task is done, so both ancestors complete.
	ft, err := svc.GetFeature(ctx, "p", feature.ID)
	if err != nil {
		t.Fatalf("get feature: %v", err)
	}
	if ft.Status != item.StatusDone {
		t.Errorf("feature status = %q, want done", ft.Status)
	}
	ep, err := svc.GetEpic(ctx, "p", epic.ID)
	if err != nil {
		t.Fatalf("get epic: %v", err)
	}
	if ep.Status != item.StatusDone {
		t.Errorf("epic status = %q, want done", ep.Status)
	}
}

// ─── Tree and dashboard tools ────────────────────────────────────────────────

func TestProjectTreeTool(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedTask(t, svc)

	res, err := NewProjectTreeTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var tree []struct {
		Features []struct {
			Tasks    []item.Item `json:"tasks"`
			Progress struct {
				Total int `json:"total"`
			} `json:"progress"`
		} `json:"features"`
	}
	if err := json.Unmarshal([]byte(resultText(res)), &tree); err != nil {
		t.Fatalf("failed to decode tree: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Features) != 1 {
		t.Fatalf("unexpected tree shape: %s", resultText(res))
	}
	if got := tree[0].Features[0].Progress.Total; got != 1 {
		t.Errorf("feature progress total = %d, want 1", got)
	}
}

func TestSearchItemsTool(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedTask(t, svc)

	res, err := NewSearchItemsTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"query":   "epic",
		"type":    "epic",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var items []item.Item
	if err := json.Unmarshal([]byte(resultText(res)), &items); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	if len(items) != 1 || items[0].Type != item.KindEpic {
		t.Errorf("unexpected search result: %s", resultText(res))
	}

	// An unknown status is a tool error, not a transport failure.
	res, err = NewSearchItemsTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"status":  "shipped",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !res.IsError {
		t.Error("bogus status should be a tool error")
	}
}

func TestBlockedItemsTool(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, _, task := seedTask(t, svc)

	if _, err := svc.MarkTaskBlocked(ctx, "p", task.ID); err != nil {
		t.Fatalf("mark blocked: %v", err)
	}

	res, err := NewBlockedItemsTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var items []item.Item
	if err := json.Unmarshal([]byte(resultText(res)), &items); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	if len(items) != 1 || items[0].Status != item.StatusBlocked {
		t.Errorf("unexpected blocked list: %s", resultText(res))
	}
}

func TestRecentlyUpdatedTool_Limit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedTask(t, svc)

	res, err := NewRecentlyUpdatedTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
		"limit":   float64(2),
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var items []item.Item
	if err := json.Unmarshal([]byte(resultText(res)), &items); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestProjectStatsTool(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	seedTask(t, svc)

	res, err := NewProjectStatsTool(svc).Handle(ctx, makeReq(map[string]interface{}{
		"project": "p",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var stats struct {
		Epics    int `json:"epics"`
		Features int `json:"features"`
		Tasks    int `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(resultText(res)), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.Epics != 1 || stats.Features != 1 || stats.Tasks != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
