package httpapi

import (
	"net/http"

	"github.com/vibetodo/vibetodo/internal/auth"
	"github.com/vibetodo/vibetodo/internal/todo"
)

// Server owns the REST routing table and the services it fronts.
type Server struct {
	todo        *todo.Service
	auth        *auth.Service
	authEnabled bool
	corsOrigin  string
}

// Options configures the optional parts of the REST surface.
type Options struct {
	// Auth, when non-nil together with AuthEnabled, activates the
	// /auth routes and the bearer-token check on project routes.
	Auth        *auth.Service
	AuthEnabled bool
	CORSOrigin  string
}

// NewServer builds the REST transport over the shared core service.
func NewServer(todoSvc *todo.Service, opts Options) *Server {
	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return &Server{
		todo:        todoSvc,
		auth:        opts.Auth,
		authEnabled: opts.AuthEnabled && opts.Auth != nil,
		corsOrigin:  origin,
	}
}

// Handler assembles the routing table. Project-scoped routes are
// wrapped with the existence guard and, when enabled, the token check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return withCORS(s.corsOrigin, withLogging(h))
	}
	project := func(h http.HandlerFunc) http.HandlerFunc {
		return wrap(s.requireAuth(s.requireProject(h)))
	}
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return wrap(s.requireAuth(h))
	}

	mux.HandleFunc("GET /health", wrap(s.handleHealth))

	// Project lifecycle.
	mux.HandleFunc("GET /projects", protected(s.handleListProjects))
	mux.HandleFunc("POST /projects", protected(s.handleCreateProject))
	mux.HandleFunc("DELETE /projects/{name}", protected(s.handleDeleteProject))

	// Auth. Registered only when enabled; otherwise the routes don't
	// exist and everything above stays open.
	if s.authEnabled {
		mux.HandleFunc("POST /auth/register", wrap(s.handleRegister))
		mux.HandleFunc("POST /auth/login", wrap(s.handleLogin))
		mux.HandleFunc("GET /auth/profile", wrap(s.requireAuth(s.handleProfile)))
		mux.HandleFunc("GET /auth/verify", wrap(s.requireAuth(s.handleVerify)))
	}

	// Epics.
	mux.HandleFunc("GET /{project}/epics", project(s.handleListEpics))
	mux.HandleFunc("POST /{project}/epics", project(s.handleCreateEpic))
	mux.HandleFunc("GET /{project}/epics/{id}", project(s.handleGetEpic))
	mux.HandleFunc("PUT /{project}/epics/{id}", project(s.handleUpdateEpic))
	mux.HandleFunc("DELETE /{project}/epics/{id}", project(s.handleDeleteEpic))

	// Features.
	mux.HandleFunc("GET /{project}/features/by-epic/{epicId}", project(s.handleListFeaturesByEpic))
	mux.HandleFunc("POST /{project}/features/by-epic/{epicId}", project(s.handleCreateFeature))
	mux.HandleFunc("GET /{project}/features/{id}", project(s.handleGetFeature))
	mux.HandleFunc("PUT /{project}/features/{id}", project(s.handleUpdateFeature))
	mux.HandleFunc("DELETE /{project}/features/{id}", project(s.handleDeleteFeature))

	// Tasks.
	mux.HandleFunc("GET /{project}/tasks/by-feature/{featureId}", project(s.handleListTasksByFeature))
	mux.HandleFunc("POST /{project}/tasks/by-feature/{featureId}", project(s.handleCreateTask))
	mux.HandleFunc("GET /{project}/tasks/{id}", project(s.handleGetTask))
	mux.HandleFunc("PUT /{project}/tasks/{id}", project(s.handleUpdateTask))
	mux.HandleFunc("DELETE /{project}/tasks/{id}", project(s.handleDeleteTask))

	// Tree and dashboards.
	mux.HandleFunc("GET /{project}/tree", project(s.handleProjectTree))
	mux.HandleFunc("GET /{project}/tree/epics/{id}", project(s.handleEpicTree))
	mux.HandleFunc("GET /{project}/search", project(s.handleSearch))
	mux.HandleFunc("GET /{project}/stats", project(s.handleStats))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"auth_enabled": s.authEnabled,
	})
}
