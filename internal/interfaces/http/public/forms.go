package public

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

func (h *Handler) formListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		forms, err := h.forms.ListForms(ctx)
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		items := make([]formSummaryResponse, 0, len(forms))
		for _, form := range forms {
			items = append(items, formSummaryResponse{
				Slug:        form.Slug,
				Title:       form.Title,
				Description: form.Description,
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, formListResponse{Items: items})
	}
}

// formDetailHandler never answers 404: unknown slugs render the placeholder.
func (h *Handler) formDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		form, err := h.forms.LoadForm(ctx, slug)
		if err != nil {
			h.logger.Warn("form detail failed", zap.String("slug", slug), zap.Error(err))
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.ToFormResponse(form))
	}
}
