package http

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/flood-nova/internal/assistant"
	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/go-chi/chi/v5"
)

type sessionView struct {
	ID            string                   `json:"id"`
	Transcript    []domain.Message         `json:"transcript"`
	Location      domain.LocationContext   `json:"location"`
	Notifications []assistant.Notification `json:"notifications"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type optionRequest struct {
	Label string `json:"label"`
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Denied    bool     `json:"denied"`
}

type turnResponse struct {
	User         domain.Message `json:"user"`
	Intent       domain.Intent  `json:"intent"`
	Corrected    bool           `json:"corrected"`
	ReplyAfterMS int64          `json:"reply_after_ms"`
}

func viewOf(c *assistant.Conversation) sessionView {
	notes := c.Notifications.Entries()
	if notes == nil {
		notes = []assistant.Notification{}
	}
	return sessionView{
		ID:            c.ID(),
		Transcript:    c.Transcript(),
		Location:      c.Location(),
		Notifications: notes,
	}
}

func (s *Server) conversation(w http.ResponseWriter, r *http.Request) (*assistant.Conversation, bool) {
	c, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
	}
	return c, ok
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	c := s.sessions.Create()
	s.logger.Info("session created", "session_id", c.ID())
	writeJSON(w, http.StatusCreated, viewOf(c))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.conversation(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Close(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.conversation(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	turn, err := c.SubmitText(req.Text)
	s.writeTurn(w, turn, err)
}

func (s *Server) handlePostOption(w http.ResponseWriter, r *http.Request) {
	c, ok := s.conversation(w, r)
	if !ok {
		return
	}
	var req optionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	turn, err := c.SubmitOption(req.Label)
	s.writeTurn(w, turn, err)
}

func (s *Server) writeTurn(w http.ResponseWriter, turn *assistant.Turn, err error) {
	switch {
	case errors.Is(err, assistant.ErrBlankInput):
		writeError(w, http.StatusBadRequest, "message must not be blank")
	case errors.Is(err, assistant.ErrSessionClosed):
		writeError(w, http.StatusNotFound, "session not found")
	case err != nil:
		s.logger.Error("submit turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusAccepted, turnResponse{
			User:         turn.User,
			Intent:       turn.Intent,
			Corrected:    turn.Corrected,
			ReplyAfterMS: s.replyDelayMS(),
		})
	}
}

func (s *Server) replyDelayMS() int64 {
	return s.sessions.Engine().ReplyDelay().Milliseconds()
}

func (s *Server) handlePostPosition(w http.ResponseWriter, r *http.Request) {
	c, ok := s.conversation(w, r)
	if !ok {
		return
	}
	var req positionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	switch {
	case req.Denied:
		c.Position.Deny()
	case req.Latitude != nil && req.Longitude != nil:
		lat, lon := *req.Latitude, *req.Longitude
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			writeError(w, http.StatusBadRequest, "coordinates out of range")
			return
		}
		c.Position.Report(domain.Coordinates{Latitude: lat, Longitude: lon})
	default:
		writeError(w, http.StatusBadRequest, "latitude and longitude, or denied, are required")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
