package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kyozo/waitlist/internal/auth"
	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/notify"
	"github.com/kyozo/waitlist/internal/pkg/httputil"
	"github.com/kyozo/waitlist/internal/pkg/logger"
	"github.com/kyozo/waitlist/internal/store"
	"github.com/kyozo/waitlist/internal/waitlist"
)

// ListSubmissions serves the dashboard listing.
//
//	GET /api/admin/submissions?q=&segment=
func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.ListSubmissions(r.Context(), waitlist.ListFilter{
		Query:   r.URL.Query().Get("q"),
		Segment: r.URL.Query().Get("segment"),
	})
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to load submissions")
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// ExportSubmissions downloads every submission as CSV.
//
//	GET /api/admin/submissions/export
func (h *Handlers) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	export, err := h.svc.Export(r.Context())
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to export submissions")
		return
	}
	if s := auth.SessionFrom(r.Context()); s != nil {
		logger.Info("submissions exported", "operator_email", s.Email, "rows", export.Rows, "archive_key", export.ArchiveKey)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	if export.ArchiveKey != "" {
		w.Header().Set("X-Archive-Key", export.ArchiveKey)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}

type replyRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Reply emails an operator message. The compose state stays with the
// caller, so a failure only reports the alert.
//
//	POST /api/admin/reply
func (h *Handlers) Reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	err := h.svc.Reply(r.Context(), req.To, req.Message)
	switch {
	case err == nil:
		httputil.Success(w, "Reply sent successfully!")
	case errors.Is(err, waitlist.ErrInvalidInput):
		httputil.BadRequest(w, "Recipient and message are required")
	default:
		respondSafeError(w, http.StatusBadGateway, err, waitlist.MsgReplyFailed)
	}
}

// SendReply is the standalone reply endpoint. It keeps the single-route
// contract: POST only and a flat 500 on any failure.
//
//	POST /api/send-reply
func (h *Handlers) SendReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.svc.Reply(r.Context(), req.To, req.Message); err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to send reply")
		return
	}
	respondJSON(w, http.StatusOK, httputil.SuccessResponse{Success: true})
}

// DeleteSubmission removes a submission named in the body.
//
//	DELETE /api/delete-submission {id}
func (h *Handlers) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	err := h.svc.DeleteSubmission(r.Context(), req.ID)
	switch {
	case err == nil:
		httputil.Success(w, "Submission deleted successfully")
	case errors.Is(err, waitlist.ErrInvalidInput), errors.Is(err, store.ErrMissingID):
		httputil.BadRequest(w, "Missing submission ID")
	case errors.Is(err, store.ErrNotFound):
		httputil.NotFound(w, "Submission not found")
	default:
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to delete submission")
	}
}

// SendNotification emails the new-submission template for posted form
// data without storing it. Provider rejections come back as 400 with the
// provider's message.
//
//	POST /api/send-notification {formData}
func (h *Handlers) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FormData *domain.Submission `json:"formData"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.FormData == nil {
		httputil.BadRequest(w, "Form data is required")
		return
	}
	if err := h.svc.NotifySubmission(r.Context(), req.FormData); err != nil {
		if msg, ok := notify.ProviderMessage(err); ok {
			httputil.BadRequest(w, msg)
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err, "Internal server error")
		return
	}
	httputil.Success(w, "")
}

// NotificationAttempts lists recent new-submission email outcomes.
//
//	GET /api/admin/notifications
func (h *Handlers) NotificationAttempts(w http.ResponseWriter, r *http.Request) {
	if h.notifications == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"attempts": []interface{}{}, "failures": 0})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": h.notifications.Attempts(),
		"failures": h.notifications.Failures(),
	})
}
