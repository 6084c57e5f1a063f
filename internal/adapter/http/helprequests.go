package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/helpline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSubmitHelpRequest(w http.ResponseWriter, r *http.Request) {
	var form domain.HelpRequestForm
	if !decodeJSON(w, r, &form) {
		return
	}

	req, err := s.help.Submit(r.Context(), form)
	switch {
	case errors.Is(err, domain.ErrInvalidHelpRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("submit help request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not record help request")
	default:
		writeJSON(w, http.StatusCreated, req)
	}
}

func (s *Server) handleGetHelpRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid help request id")
		return
	}

	req, err := s.help.Get(r.Context(), id)
	switch {
	case errors.Is(err, helpline.ErrNotFound):
		writeError(w, http.StatusNotFound, "help request not found")
	case err != nil:
		s.logger.Error("get help request failed", "help_request_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load help request")
	default:
		writeJSON(w, http.StatusOK, req)
	}
}
