package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tngrm/tngrm/internal/core/events/bus"
	"github.com/tngrm/tngrm/internal/core/observability/log"
	"github.com/tngrm/tngrm/internal/core/pieces"
	"github.com/tngrm/tngrm/internal/core/solver"
	"github.com/tngrm/tngrm/internal/core/validation"
	"github.com/tngrm/tngrm/internal/levels"
)

const (
	msgInvalidJSON  = "Invalid JSON"
	msgInvalidLevel = "Invalid level data: missing name or solution"
	msgTooLarge     = "Payload too large"
)

// readBody reads at most the configured body size. It writes the error
// response itself and reports false when the body cannot be used.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return nil, false
		}
		writeErrorDetails(w, http.StatusBadRequest, msgInvalidJSON, err)
		return nil, false
	}
	return body, true
}

// decodeLevel separates malformed JSON from well formed JSON that is not a
// level object.
func decodeLevel(body []byte) (levels.Level, string, error) {
	var level levels.Level
	err := json.Unmarshal(body, &level)
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return level, msgInvalidJSON, err
	case err != nil:
		return level, msgInvalidLevel, err
	}
	if err = level.Validate(); err != nil {
		return level, msgInvalidLevel, err
	}
	return level, "", nil
}

func (s *Server) handleSaveLevel(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	level, msg, err := decodeLevel(body)
	if err != nil {
		if msg == msgInvalidJSON {
			writeErrorDetails(w, http.StatusBadRequest, msg, err)
		} else {
			writeError(w, http.StatusBadRequest, msg)
		}
		return
	}

	if !authorized(r, s.config.AdminToken) {
		s.logger.Warn("Rejected level save", log.String("remote_addr", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err = s.store.Save(r.Context(), level); err != nil {
		s.logger.Error("Failed to save level", log.String("level", level.Name), log.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to save level", err)
		return
	}

	s.logger.Info("Level saved", log.String("level", level.Name))
	if err = s.bus.Publish(bus.NewEvent(EventLevelSaved, "server", LevelSaved{Name: level.Name})); err != nil {
		s.logger.Warn("Level event handler failed", log.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Level saved"})
}

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("Failed to list levels", log.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to read levels", err)
		return
	}

	tag, err := levels.ETag(all)
	if err != nil {
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to read levels", err)
		return
	}
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, levels.ErrLevelNotFound):
		writeError(w, http.StatusNotFound, "Level not found")
		return
	case err != nil:
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to read levels", err)
		return
	}
	writeJSON(w, http.StatusOK, level)
}

// CheckRequest is the body of POST /api/check.
type CheckRequest struct {
	Level  string                      `json:"level"`
	Pieces map[string]pieces.Placement `json:"pieces"`
}

// CheckResponse is the reply to POST /api/check.
type CheckResponse struct {
	Level string `json:"level"`
	validation.Result
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req CheckRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorDetails(w, http.StatusBadRequest, msgInvalidJSON, err)
		return
	}
	if req.Level == "" {
		writeError(w, http.StatusBadRequest, "Missing level name")
		return
	}

	level, err := s.store.Get(r.Context(), req.Level)
	switch {
	case errors.Is(err, levels.ErrLevelNotFound):
		writeError(w, http.StatusNotFound, "Level not found")
		return
	case err != nil:
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to read levels", err)
		return
	}

	sol, err := level.Placements()
	if err != nil {
		s.logger.Warn("Stored level has an unreadable solution", log.String("level", level.Name), log.Error(err))
		writeErrorDetails(w, http.StatusUnprocessableEntity, "Level solution is not checkable", err)
		return
	}

	res, err := s.checker.Check(solver.Arrangement(sol), solver.Arrangement(req.Pieces))
	if err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "Invalid arrangement", err)
		return
	}

	s.logger.Debug("Arrangement checked",
		log.String("level", level.Name),
		log.Float64("similarity", res.Similarity),
		log.Bool("solved", res.Solved))
	writeJSON(w, http.StatusOK, CheckResponse{Level: level.Name, Result: res})
}
