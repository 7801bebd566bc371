package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

func (h *Handler) submissionListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		form, err := h.forms.LoadForm(ctx, slug)
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		subs, err := h.reviews.List(ctx, slug)
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		items := make([]submissionSummaryResponse, 0, len(subs))
		for _, sub := range subs {
			items = append(items, toSubmissionSummary(sub, form.Questions))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, submissionListResponse{Items: items})
	}
}

func (h *Handler) submissionDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		view, err := h.reviews.View(ctx, chi.URLParam(r, "id"))
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageNotFound)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toSubmissionDetail(*view))
	}
}

func (h *Handler) submissionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err, common.MessageInvalidBody)
			return
		}
		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		reviewer := identity.SessionFromContext(r.Context()).Actor()
		status, err := h.reviews.UpdateStatus(ctx, id, req.Status, reviewer)
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, statusResponse{ID: id, Status: string(status)})
	}
}

// submissionDeleteHandler requires ?confirm=true, the HTTP form of the
// confirmation prompt.
func (h *Handler) submissionDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmed := common.ParseBool(r.URL.Query().Get("confirm"))

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		if err := h.reviews.Delete(ctx, chi.URLParam(r, "id"), confirmed); err != nil {
			common.WriteError(h.logger, w, err, formsapp.MessageDeleteFailed)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
