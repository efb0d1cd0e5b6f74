package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dlsl-isg/reaction-ring/internal/api/request"
	"github.com/dlsl-isg/reaction-ring/internal/api/response"
	"github.com/dlsl-isg/reaction-ring/internal/services/scan"
	"github.com/dlsl-isg/reaction-ring/internal/services/session"
)

// SessionHandler handles the session state machine endpoints
type SessionHandler struct {
	controller *session.Controller
	buffer     *scan.Buffer
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller *session.Controller, buffer *scan.Buffer) *SessionHandler {
	return &SessionHandler{controller: controller, buffer: buffer}
}

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.controller.Current(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromModel(current))
}

// Scan handles POST /api/v1/scan. The candidate is resolved asynchronously;
// the displays learn the outcome through the event stream, the same way
// they would for a badge scanned at the booth.
func (h *SessionHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req request.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Candidate) == "" {
		WriteError(w, NewInvalidRequestError("candidate is required"))
		return
	}

	h.buffer.Submit(req.Candidate)
	response.JSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// BeginScoring handles POST /api/v1/session/scoring
func (h *SessionHandler) BeginScoring(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.BeginScoring(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Score handles POST /api/v1/session/score
func (h *SessionHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req request.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.controller.CommitScore(r.Context(), req.Caught); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Reset handles POST /api/v1/session/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Reset(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
