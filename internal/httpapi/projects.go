package httpapi

import "net/http"

type createProjectRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.todo.ListProjects(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondData(w, http.StatusOK, names)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	name, err := s.todo.CreateProject(r.Context(), req.Name)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{
		"name":         name,
		"originalName": req.Name,
	})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.todo.DeleteProject(r.Context(), r.PathValue("name")); err != nil {
		respondErr(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "project deleted")
}
