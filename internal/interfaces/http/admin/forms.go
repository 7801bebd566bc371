package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
	"github.com/crustntrust/site-api/internal/identity"
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
		items := make([]common.FormResponse, 0, len(forms))
		for _, form := range forms {
			items = append(items, common.ToFormResponse(form))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, formListResponse{Items: items})
	}
}

func (h *Handler) formCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err, common.MessageInvalidBody)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		form, err := h.forms.CreateForm(ctx, req.Slug, req.Title)
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		h.logger.Info("admin form created",
			zap.String("slug", form.Slug),
			zap.String("by", identity.SessionFromContext(r.Context()).Actor()),
		)
		common.WriteJSON(h.logger, w, http.StatusCreated, common.ToFormResponse(form))
	}
}

func (h *Handler) formDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		form, err := h.forms.LoadForm(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.ToFormResponse(form))
	}
}

func (h *Handler) formSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formSaveRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err, common.MessageInvalidBody)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		form, err := h.forms.SaveForm(ctx, formsapp.SaveFormCommand{
			Slug:        chi.URLParam(r, "slug"),
			Title:       req.Title,
			Description: req.Description,
			Questions:   formsdomain.NormalizeQuestions(req.Questions),
		})
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.ToFormResponse(form))
	}
}

func (h *Handler) formEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formEditRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err, common.MessageInvalidBody)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		form, err := h.forms.ApplyEdit(ctx, chi.URLParam(r, "slug"), formsapp.Edit{
			Op:        formsapp.EditOp(req.Op),
			Index:     req.Index,
			Direction: formsdomain.Direction(req.Direction),
			Type:      formsdomain.ParseQuestionType(req.Type),
			Value:     req.Value,
		})
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, common.ToFormResponse(form))
	}
}

func (h *Handler) formDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formDeleteRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err, common.MessageInvalidBody)
			return
		}
		slug := chi.URLParam(r, "slug")

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		if err := h.forms.DeleteForm(ctx, slug, req.Confirmation); err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		h.logger.Info("admin form deleted",
			zap.String("slug", slug),
			zap.String("by", identity.SessionFromContext(r.Context()).Actor()),
		)
		w.WriteHeader(http.StatusNoContent)
	}
}
