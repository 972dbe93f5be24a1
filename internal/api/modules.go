package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/modulo-iot/modulocore/internal/control"
	"github.com/modulo-iot/modulocore/internal/modulo"
	"github.com/modulo-iot/modulocore/internal/status"
)

// moduleResponse is a module with its derived connectivity state.
type moduleResponse struct {
	modulo.Module
	Status status.State `json:"status"`
}

// commandRequest is the body for POST /modules/{id}/command.
type commandRequest struct {
	Action string `json:"action"`
}

// commandResponse reports whether a command was accepted. On cooldown
// rejection, SecondsRemaining says when to retry.
type commandResponse struct {
	Accepted         bool   `json:"accepted"`
	SecondsRemaining *int64 `json:"secondsRemaining,omitempty"`
}

func (s *Server) moduleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// handleListModules returns all modules with their derived status.
func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := s.fleet.ListModules(r.Context())
	if err != nil {
		s.logger.Error("listing modules failed", "error", err)
		writeInternalError(w, "failed to list modules")
		return
	}

	response := make([]moduleResponse, 0, len(modules))
	for i := range modules {
		state, err := s.monitor.ClassifyModule(r.Context(), modules[i].ID)
		if err != nil {
			s.logger.Error("classifying module failed", "module_id", modules[i].ID, "error", err)
			state = status.StateOffline
		}
		response = append(response, moduleResponse{Module: modules[i], Status: state})
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetModule returns one module with its derived status.
func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.moduleID(r)
	if !ok {
		writeBadRequest(w, "invalid module id")
		return
	}

	module, err := s.fleet.GetModule(r.Context(), id)
	if err != nil {
		if errors.Is(err, modulo.ErrModuleNotFound) {
			writeNotFound(w, "module not found")
			return
		}
		s.logger.Error("loading module failed", "module_id", id, "error", err)
		writeInternalError(w, "failed to load module")
		return
	}

	state, err := s.monitor.ClassifyModule(r.Context(), id)
	if err != nil {
		s.logger.Error("classifying module failed", "module_id", id, "error", err)
		state = status.StateOffline
	}

	writeJSON(w, http.StatusOK, moduleResponse{Module: *module, Status: state})
}

// handleModuleStatus returns only the derived connectivity state.
func (s *Server) handleModuleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.moduleID(r)
	if !ok {
		writeBadRequest(w, "invalid module id")
		return
	}

	if _, err := s.fleet.GetModule(r.Context(), id); err != nil {
		if errors.Is(err, modulo.ErrModuleNotFound) {
			writeNotFound(w, "module not found")
			return
		}
		s.logger.Error("loading module failed", "module_id", id, "error", err)
		writeInternalError(w, "failed to load module")
		return
	}

	state, err := s.monitor.ClassifyModule(r.Context(), id)
	if err != nil {
		s.logger.Error("classifying module failed", "module_id", id, "error", err)
		writeInternalError(w, "failed to classify module")
		return
	}

	writeJSON(w, http.StatusOK, map[string]status.State{"status": state})
}

// handleIssueCommand dispatches a control command to a module.
//
// Responses:
//   - 200 accepted
//   - 429 cooldown active, with secondsRemaining
//   - 404 unknown module
func (s *Server) handleIssueCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := s.moduleID(r)
	if !ok {
		writeBadRequest(w, "invalid module id")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Action == "" {
		req.Action = control.ActionReset
	}

	_, err := s.dispatcher.IssueCommand(r.Context(), id, req.Action)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, commandResponse{Accepted: true})
	case errors.Is(err, control.ErrCooldownActive):
		var cooldownErr *control.CooldownError
		remaining := int64(1)
		if errors.As(err, &cooldownErr) {
			remaining = cooldownErr.SecondsRemaining()
		}
		writeJSON(w, http.StatusTooManyRequests, commandResponse{
			Accepted:         false,
			SecondsRemaining: &remaining,
		})
	case errors.Is(err, modulo.ErrModuleNotFound):
		writeNotFound(w, "module not found")
	case errors.Is(err, control.ErrEmptyAction):
		writeBadRequest(w, "action is required")
	default:
		s.logger.Error("command dispatch failed", "module_id", id, "error", err)
		writeInternalError(w, "failed to dispatch command")
	}
}
