package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/form"
	"github.com/kyozo/waitlist/internal/gate"
	"github.com/kyozo/waitlist/internal/pipeline"
	"github.com/kyozo/waitlist/internal/pkg/httputil"
	"github.com/kyozo/waitlist/internal/waitlist"
)

// Handlers contains the waitlist HTTP handlers
type Handlers struct {
	svc           *waitlist.Service
	notifications *pipeline.NotificationLog
}

// NewHandlers creates a new Handlers instance. notifications may be nil.
func NewHandlers(svc *waitlist.Service, notifications *pipeline.NotificationLog) *Handlers {
	return &Handlers{svc: svc, notifications: notifications}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	httputil.JSON(w, status, data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	httputil.Error(w, status, message)
}

// sessionView is the session as the browser sees it.
type sessionView struct {
	*form.Session
	StepName   string `json:"stepName"`
	TotalSteps int    `json:"totalSteps"`
}

func viewOf(s *form.Session) *sessionView {
	if s == nil {
		return nil
	}
	return &sessionView{Session: s, StepName: s.Step.String(), TotalSteps: form.TotalSteps}
}

// respondSessionError maps form and store errors to status codes.
func respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, form.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Form session not found")
	case errors.Is(err, form.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "Submission already in progress")
	case errors.Is(err, form.ErrSubmitted):
		respondError(w, http.StatusConflict, "Form already submitted")
	case errors.Is(err, form.ErrLockTimeout):
		respondError(w, http.StatusServiceUnavailable, "Form session busy, please retry")
	default:
		respondInternal(w, err)
	}
}

// FormOptions returns the option catalogs the form renders.
//
//	GET /api/form/options
func (h *Handlers) FormOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.FormCatalog())
}

// CreateSession starts a form session.
//
//	POST /api/form/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.StartSession(r.Context())
	if err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewOf(sess))
}

// GetSession returns a form session.
//
//	GET /api/form/sessions/{id}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess))
}

// UpdateSession applies a field patch.
//
//	PATCH /api/form/sessions/{id}
func (h *Handlers) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var patch form.Patch
	if !httputil.Decode(w, r, &patch) {
		return
	}
	sess, err := h.svc.UpdateSession(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess))
}

type advanceResponse struct {
	Session   *sessionView `json:"session,omitempty"`
	Moved     bool         `json:"moved"`
	Submitted bool         `json:"submitted"`
	Error     string       `json:"error,omitempty"`
	Errors    form.Errors  `json:"errors,omitempty"`
}

// Advance validates the current step and moves forward or submits.
// 422 carries the field errors, 502 the alert for a failed submit.
//
//	POST /api/form/sessions/{id}/advance
func (h *Handlers) Advance(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Advance(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, advanceResponse{
			Session:   viewOf(out.Session),
			Moved:     out.Moved,
			Submitted: out.Submitted,
		})
	case errors.Is(err, form.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, advanceResponse{
			Session: viewOf(out.Session),
			Error:   "Please fix the highlighted fields",
			Errors:  out.Session.Errors,
		})
	case errors.Is(err, waitlist.ErrSubmitFailed):
		log.Printf("[api] submit failed for session %s: %v", chi.URLParam(r, "id"), err)
		respondJSON(w, http.StatusBadGateway, advanceResponse{
			Session: viewOf(out.Session),
			Error:   out.Alert,
		})
	default:
		respondSessionError(w, err)
	}
}

// Retreat moves the form back one step.
//
//	POST /api/form/sessions/{id}/retreat
func (h *Handlers) Retreat(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Retreat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess))
}

// RequestAccess records the request-access form.
//
//	POST /api/access-requests
func (h *Handlers) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req domain.AccessRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if errs := gate.ValidateAccessRequest(&req); errs != nil {
		httputil.ErrorWithDetails(w, http.StatusUnprocessableEntity, "Please fix the highlighted fields", "validation", errs)
		return
	}
	saved := h.svc.RequestAccess(r.Context(), req)
	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":    true,
		"receivedAt": saved.ReceivedAt,
	})
}
