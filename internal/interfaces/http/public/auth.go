package public

import (
	"net/http"

	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

func (h *Handler) sessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := identity.SessionFromContext(r.Context())
		common.WriteJSON(h.logger, w, http.StatusOK, session)
	}
}
