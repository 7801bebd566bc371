package admin

import (
	"context"
	"net/http"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

func (h *Handler) applicationsSettingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applicationsSettingRequest
		if err := decodeJSON(r, &req); err != nil {
			common.WriteError(h.logger, w, err, common.MessageInvalidBody)
			return
		}
		if req.AcceptingApplications == nil {
			common.WriteError(h.logger, w, apperr.Validation("set applications", common.MessageInvalidBody), "")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		session := identity.SessionFromContext(r.Context())
		if err := h.settings.Set(ctx, session, *req.AcceptingApplications); err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, applicationsSettingResponse{
			AcceptingApplications: *req.AcceptingApplications,
		})
	}
}
