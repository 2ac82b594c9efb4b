package httpapi

import (
	"net/http"
	"strconv"

	"github.com/vibetodo/vibetodo/internal/item"
)

func (s *Server) handleProjectTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.todo.ProjectTree(r.Context(), r.PathValue("project"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, tree)
}

func (s *Server) handleEpicTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.todo.EpicTree(r.Context(), r.PathValue("project"), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, tree)
}

// handleSearch serves GET /{project}/search?q=...&type=...&status=...
// and the dashboard shortcuts via status=blocked / status=in_progress.
// recent=N returns the N most recently updated items instead.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	q := r.URL.Query()

	if recent := q.Get("recent"); recent != "" {
		limit, err := strconv.Atoi(recent)
		if err != nil {
			respondError(w, http.StatusBadRequest, "recent: must be an integer")
			return
		}
		items, err := s.todo.RecentlyUpdated(r.Context(), project, limit)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondItems(w, items)
		return
	}

	items, err := s.todo.Search(r.Context(), project,
		q.Get("q"), item.Kind(q.Get("type")), item.Status(q.Get("status")))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondItems(w, items)
}

func respondItems(w http.ResponseWriter, items []item.Item) {
	if items == nil {
		items = []item.Item{}
	}
	respondData(w, http.StatusOK, items)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.todo.ProjectStats(r.Context(), r.PathValue("project"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
