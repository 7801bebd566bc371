package public

import (
	"context"
	"net/http"

	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

func (h *Handler) publicationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		items, err := h.content.Publications(ctx, identity.SessionFromContext(r.Context()))
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		resp := publicationListResponse{Items: make([]common.PublicationResponse, 0, len(items))}
		for _, p := range items {
			resp.Items = append(resp.Items, common.ToPublicationResponse(p))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}

func (h *Handler) locationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		items, err := h.content.Locations(ctx)
		if err != nil {
			common.WriteError(h.logger, w, err, common.MessageUnavailable)
			return
		}
		resp := locationListResponse{Items: make([]common.LocationResponse, 0, len(items))}
		for _, l := range items {
			resp.Items = append(resp.Items, common.ToLocationResponse(l))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}
