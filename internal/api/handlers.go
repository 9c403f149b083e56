package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/matcher"
	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNextLeads serves GET /api/users/{userID}/leads?count=N.
// A short or empty batch is a 200, never an error.
func (s *Server) handleNextLeads(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	count := s.defaultBatch
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, eris.Wrapf(model.ErrInvalidArgument, "api: count %q is not an integer", raw))
			return
		}
		count = n
	}

	batch, err := s.engine.NextLeads(r.Context(), userID, count)
	if err != nil {
		writeError(w, err)
		return
	}
	if batch == nil {
		batch = []matcher.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": batch})
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	leadID := chi.URLParam(r, "leadID")

	var req struct {
		Status model.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidArgument, "api: invalid request body"))
		return
	}

	if err := s.engine.SetStatus(r.Context(), userID, leadID, req.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var lead model.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidArgument, "api: invalid request body"))
		return
	}

	created, err := s.store.CreateLead(r.Context(), &lead)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidArgument, "api: invalid request body"))
		return
	}

	created, err := s.store.CreateUser(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var prefs model.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidArgument, "api: invalid request body"))
		return
	}

	if err := s.store.UpdateUserPreferences(r.Context(), userID, prefs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	allocs, err := s.store.ListAllocations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if allocs == nil {
		allocs = []model.Allocation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"allocations": allocs})
}

// helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case eris.Is(err, model.ErrInvalidArgument):
		status = http.StatusBadRequest
	case eris.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case eris.Is(err, model.ErrDuplicate):
		status = http.StatusConflict
	default:
		zap.L().Error("internal error", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
