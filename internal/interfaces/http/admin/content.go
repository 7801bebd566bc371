package admin

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crustntrust/site-api/internal/apperr"
	contentapp "github.com/crustntrust/site-api/internal/content/application"
	contentdomain "github.com/crustntrust/site-api/internal/content/domain"
	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

const imageField = "image"

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

func (h *Handler) publicationCreateHandler() http.HandlerFunc {
	return h.publicationWriteHandler(http.StatusCreated, contentapp.MessageCreatePublicationErr,
		func(ctx context.Context, session identity.Session, _ string, in contentdomain.PublicationInput, image *contentapp.Image) (*contentdomain.Publication, error) {
			return h.content.CreatePublication(ctx, session, in, image)
		})
}

func (h *Handler) publicationUpdateHandler() http.HandlerFunc {
	return h.publicationWriteHandler(http.StatusOK, contentapp.MessageUpdatePublicationErr,
		func(ctx context.Context, session identity.Session, id string, in contentdomain.PublicationInput, image *contentapp.Image) (*contentdomain.Publication, error) {
			return h.content.UpdatePublication(ctx, session, id, in, image)
		})
}

type publicationWrite func(ctx context.Context, session identity.Session, id string, in contentdomain.PublicationInput, image *contentapp.Image) (*contentdomain.Publication, error)

func (h *Handler) publicationWriteHandler(status int, fallback string, write publicationWrite) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image, ok := h.parseContentForm(w, r)
		if !ok {
			return
		}
		defer r.MultipartForm.RemoveAll()

		in := contentdomain.PublicationInput{
			Title:           r.FormValue("title"),
			Description:     r.FormValue("description"),
			ArticleURL:      r.FormValue("articleUrl"),
			PublicationDate: r.FormValue("publicationDate"),
			AccessType:      contentdomain.ResolveAccessType(r.FormValue("accessType"), nil),
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.UploadTimeout)
		defer cancel()

		p, err := write(ctx, identity.SessionFromContext(r.Context()), chi.URLParam(r, "id"), in, image)
		if err != nil {
			common.WriteError(h.logger, w, err, fallback)
			return
		}
		common.WriteJSON(h.logger, w, status, common.ToPublicationResponse(*p))
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

// locationSaveHandler creates on POST and updates on PUT /{id}.
func (h *Handler) locationSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image, ok := h.parseContentForm(w, r)
		if !ok {
			return
		}
		defer r.MultipartForm.RemoveAll()

		sortOrder, _ := common.ParseInt(r.FormValue("sortOrder"), 0)
		in := contentdomain.LocationInput{
			Name:         r.FormValue("name"),
			Neighborhood: r.FormValue("neighborhood"),
			WeekdayHours: r.FormValue("weekdayHours"),
			WeekendHours: r.FormValue("weekendHours"),
			MapsURL:      r.FormValue("mapsUrl"),
			SortOrder:    sortOrder,
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.UploadTimeout)
		defer cancel()

		id := chi.URLParam(r, "id")
		l, err := h.content.SaveLocation(ctx, identity.SessionFromContext(r.Context()), id, in, image)
		if err != nil {
			common.WriteError(h.logger, w, err, contentapp.MessageSaveLocationErr)
			return
		}
		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated
		}
		common.WriteJSON(h.logger, w, status, common.ToLocationResponse(*l))
	}
}

// parseContentForm parses a multipart body and returns its optional image.
// On failure it answers the request and reports false.
func (h *Handler) parseContentForm(w http.ResponseWriter, r *http.Request) (*contentapp.Image, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteMessage(h.logger, w, http.StatusRequestEntityTooLarge, "Bildet er for stort.")
			return nil, false
		}
		common.WriteError(h.logger, w, apperr.Wrap(apperr.KindValidation, "parse form", err), common.MessageInvalidBody)
		return nil, false
	}
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		common.WriteError(h.logger, w, apperr.Wrap(apperr.KindValidation, "parse form", err), common.MessageInvalidBody)
		return nil, false
	}
	return toImage(file, header), true
}

func toImage(file multipart.File, header *multipart.FileHeader) *contentapp.Image {
	return &contentapp.Image{
		FileName:    header.Filename,
		ContentType: strings.TrimSpace(header.Header.Get("Content-Type")),
		Size:        header.Size,
		Body:        file,
	}
}
