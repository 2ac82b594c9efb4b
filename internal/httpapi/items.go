package httpapi

import (
	"net/http"

	"github.com/vibetodo/vibetodo/internal/item"
	"github.com/vibetodo/vibetodo/internal/todo"
)

type createItemRequest struct {
	Title         string `json:"title"`
	Desc          string `json:"desc"`
	UAT           string `json:"uat"`
	Status        string `json:"status"`
	ReferenceFile string `json:"reference_file"`
}

// updateItemRequest uses pointers so an absent field and an empty
// string are distinguishable. Type and parent references are not
// accepted because they are immutable.
type updateItemRequest struct {
	Title         *string `json:"title"`
	Desc          *string `json:"desc"`
	UAT           *string `json:"uat"`
	Status        *string `json:"status"`
	ReferenceFile *string `json:"reference_file"`
}

func (r *updateItemRequest) toUpdate() todo.Update {
	upd := todo.Update{
		Title:         r.Title,
		Desc:          r.Desc,
		UAT:           r.UAT,
		ReferenceFile: r.ReferenceFile,
	}
	if r.Status != nil {
		status := item.Status(*r.Status)
		upd.Status = &status
	}
	return upd
}

// ─── Epics ───────────────────────────────────────────────────────────────────

func (s *Server) handleListEpics(w http.ResponseWriter, r *http.Request) {
	epics, err := s.todo.ListEpics(r.Context(), r.PathValue("project"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if epics == nil {
		epics = []item.Item{}
	}
	respondData(w, http.StatusOK, epics)
}

func (s *Server) handleGetEpic(w http.ResponseWriter, r *http.Request) {
	epic, err := s.todo.GetEpic(r.Context(), r.PathValue("project"), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, epic)
}

func (s *Server) handleCreateEpic(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	epic, err := s.todo.CreateEpic(r.Context(), r.PathValue("project"), req.Title, req.Desc, item.Status(req.Status))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, epic)
}

func (s *Server) handleUpdateEpic(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	epic, err := s.todo.UpdateEpic(r.Context(), r.PathValue("project"), r.PathValue("id"), req.toUpdate())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, epic)
}

func (s *Server) handleDeleteEpic(w http.ResponseWriter, r *http.Request) {
	if err := s.todo.DeleteEpic(r.Context(), r.PathValue("project"), r.PathValue("id")); err != nil {
		respondErr(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "epic and all related features and tasks deleted")
}

// ─── Features ────────────────────────────────────────────────────────────────

func (s *Server) handleListFeaturesByEpic(w http.ResponseWriter, r *http.Request) {
	features, err := s.todo.ListFeatures(r.Context(), r.PathValue("project"), r.PathValue("epicId"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if features == nil {
		features = []item.Item{}
	}
	respondData(w, http.StatusOK, features)
}

func (s *Server) handleGetFeature(w http.ResponseWriter, r *http.Request) {
	feature, err := s.todo.GetFeature(r.Context(), r.PathValue("project"), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, feature)
}

func (s *Server) handleCreateFeature(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	feature, err := s.todo.CreateFeature(r.Context(), r.PathValue("project"),
		r.PathValue("epicId"), req.Title, req.Desc, req.UAT, item.Status(req.Status), req.ReferenceFile)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, feature)
}

func (s *Server) handleUpdateFeature(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	feature, err := s.todo.UpdateFeature(r.Context(), r.PathValue("project"), r.PathValue("id"), req.toUpdate())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, feature)
}

func (s *Server) handleDeleteFeature(w http.ResponseWriter, r *http.Request) {
	if err := s.todo.DeleteFeature(r.Context(), r.PathValue("project"), r.PathValue("id")); err != nil {
		respondErr(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "feature and all related tasks deleted")
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

func (s *Server) handleListTasksByFeature(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.todo.ListTasks(r.Context(), r.PathValue("project"), r.PathValue("featureId"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if tasks == nil {
		tasks = []item.Item{}
	}
	respondData(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.todo.GetTask(r.Context(), r.PathValue("project"), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	task, err := s.todo.CreateTask(r.Context(), r.PathValue("project"),
		r.PathValue("featureId"), req.Title, req.Desc, req.UAT, item.Status(req.Status), req.ReferenceFile)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	task, err := s.todo.UpdateTask(r.Context(), r.PathValue("project"), r.PathValue("id"), req.toUpdate())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.todo.DeleteTask(r.Context(), r.PathValue("project"), r.PathValue("id")); err != nil {
		respondErr(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "task deleted")
}
