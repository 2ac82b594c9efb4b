// Package server wires the MCP tool surface and creates the server
// instance.
//
// This is the composition root: it receives the shared core service
// and registers every tool against it. No hierarchy logic lives here,
// only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/vibetodo/vibetodo/internal/mcptools"
	"github.com/vibetodo/vibetodo/internal/todo"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with every task-hierarchy
// tool registered. The caller owns the store behind svc and is
// responsible for closing it on shutdown.
func New(svc *todo.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"vibetodo",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Project tools ---

	listProjects := mcptools.NewListProjectsTool(svc)
	s.AddTool(listProjects.Definition(), listProjects.Handle)

	createProject := mcptools.NewCreateProjectTool(svc)
	s.AddTool(createProject.Definition(), createProject.Handle)

	deleteProject := mcptools.NewDeleteProjectTool(svc)
	s.AddTool(deleteProject.Definition(), deleteProject.Handle)

	projectStats := mcptools.NewProjectStatsTool(svc)
	s.AddTool(projectStats.Definition(), projectStats.Handle)

	// --- Epic tools ---

	listEpics := mcptools.NewListEpicsTool(svc)
	s.AddTool(listEpics.Definition(), listEpics.Handle)

	getEpic := mcptools.NewGetEpicTool(svc)
	s.AddTool(getEpic.Definition(), getEpic.Handle)

	createEpic := mcptools.NewCreateEpicTool(svc)
	s.AddTool(createEpic.Definition(), createEpic.Handle)

	updateEpic := mcptools.NewUpdateEpicTool(svc)
	s.AddTool(updateEpic.Definition(), updateEpic.Handle)

	deleteEpic := mcptools.NewDeleteEpicTool(svc)
	s.AddTool(deleteEpic.Definition(), deleteEpic.Handle)

	// --- Feature tools ---

	listFeatures := mcptools.NewListFeaturesTool(svc)
	s.AddTool(listFeatures.Definition(), listFeatures.Handle)

	getFeature := mcptools.NewGetFeatureTool(svc)
	s.AddTool(getFeature.Definition(), getFeature.Handle)

	createFeature := mcptools.NewCreateFeatureTool(svc)
	s.AddTool(createFeature.Definition(), createFeature.Handle)

	updateFeature := mcptools.NewUpdateFeatureTool(svc)
	s.AddTool(updateFeature.Definition(), updateFeature.Handle)

	deleteFeature := mcptools.NewDeleteFeatureTool(svc)
	s.AddTool(deleteFeature.Definition(), deleteFeature.Handle)

	// --- Task tools ---

	listTasks := mcptools.NewListTasksTool(svc)
	s.AddTool(listTasks.Definition(), listTasks.Handle)

	getTask := mcptools.NewGetTaskTool(svc)
	s.AddTool(getTask.Definition(), getTask.Handle)

	createTask := mcptools.NewCreateTaskTool(svc)
	s.AddTool(createTask.Definition(), createTask.Handle)

	updateTask := mcptools.NewUpdateTaskTool(svc)
	s.AddTool(updateTask.Definition(), updateTask.Handle)

	deleteTask := mcptools.NewDeleteTaskTool(svc)
	s.AddTool(deleteTask.Definition(), deleteTask.Handle)

	markDone := mcptools.NewMarkTaskDoneTool(svc)
	s.AddTool(markDone.Definition(), markDone.Handle)

	markInProgress := mcptools.NewMarkTaskInProgressTool(svc)
	s.AddTool(markInProgress.Definition(), markInProgress.Handle)

	markBlocked := mcptools.NewMarkTaskBlockedTool(svc)
	s.AddTool(markBlocked.Definition(), markBlocked.Handle)

	// --- Tree and dashboard tools ---

	projectTree := mcptools.NewProjectTreeTool(svc)
	s.AddTool(projectTree.Definition(), projectTree.Handle)

	epicTree := mcptools.NewEpicTreeTool(svc)
	s.AddTool(epicTree.Definition(), epicTree.Handle)

	searchItems := mcptools.NewSearchItemsTool(svc)
	s.AddTool(searchItems.Definition(), searchItems.Handle)

	blockedItems := mcptools.NewBlockedItemsTool(svc)
	s.AddTool(blockedItems.Definition(), blockedItems.Handle)

	inProgressItems := mcptools.NewInProgressItemsTool(svc)
	s.AddTool(inProgressItems.Definition(), inProgressItems.Handle)

	recentlyUpdated := mcptools.NewRecentlyUpdatedTool(svc)
	s.AddTool(recentlyUpdated.Definition(), recentlyUpdated.Handle)

	return s
}

// serverInstructions returns the system instructions that tell the
// agent how the hierarchy behaves.
func serverInstructions() string {
	return `You have access to vibetodo, a hierarchical task tracker.

Structure: Projects contain Epics, Epics contain Features, Features
contain Tasks. Statuses: epics use planning/in_progress/done/blocked,
features and tasks use todo/in_progress/done/blocked.

Status rolls up automatically: when every task of a feature is done,
the feature becomes done; when every feature of an epic is done, the
epic becomes done. Reverting a child reopens a done parent to
in_progress. Rollup happens on status changes and deletions, not when
a new child is created.

Deleting an epic or feature cascades to everything underneath it.
Use get_project_tree for the full picture with progress percentages.`
}
