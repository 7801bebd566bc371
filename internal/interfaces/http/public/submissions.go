package public

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/apperr"
	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

const (
	answersField  = "answers"
	answerPrefix  = "answer."
	cameraPrefix  = "camera."
	imagesField   = "images"
	maxImageCount = 20

	messageTooLarge     = "Filene er for store."
	messageTooManyFiles = "For mange bilder."
)

func (h *Handler) submissionCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		draft, err := parseDraft(r, h.maxUploadBytes)
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				common.WriteMessage(h.logger, w, http.StatusRequestEntityTooLarge, messageTooLarge)
				return
			}
			common.WriteError(h.logger, w, err, common.MessageInvalidBody)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.UploadTimeout)
		defer cancel()

		form, err := h.forms.LoadForm(ctx, slug)
		if err != nil {
			common.WriteError(h.logger, w, err, formsapp.SubmitFailureMessage)
			return
		}
		if len(form.Questions) == 0 && form.Description == formsdomain.NotFoundDescription {
			common.WriteMessage(h.logger, w, http.StatusNotFound, formsdomain.NotFoundDescription)
			return
		}

		sub, err := h.submitter.Submit(ctx, form, draft)
		if err != nil {
			if apperr.Is(err, apperr.KindValidation) {
				common.WriteMessage(h.logger, w, http.StatusBadRequest, apperr.MessageOf(err, formsapp.SubmitFailureMessage))
				return
			}
			h.logger.Error("submission failed", zap.String("slug", form.Slug), zap.Error(err))
			common.WriteMessage(h.logger, w, common.StatusOf(apperr.KindOf(err)), formsapp.SubmitFailureMessage)
			return
		}

		if h.notifier != nil {
			go h.notifier.SubmissionReceived(context.Background(), form, *sub)
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, submissionCreatedResponse{
			ID:      sub.ID,
			Message: formsapp.SubmitSuccessMessage,
		})
	}
}

// parseDraft reads a multipart submission. Answers come from an "answers"
// JSON object and from "answer.<questionId>" fields, the latter winning.
// Camera files are "camera.<questionId>", general images "images".
func parseDraft(r *http.Request, maxMemory int64) (*formsapp.Draft, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindValidation, "parse submission", err)
	}
	draft := formsapp.NewDraft()
	form := r.MultipartForm

	if raw := strings.TrimSpace(firstValue(form.Value[answersField])); raw != "" {
		var answers map[string]any
		if err := json.Unmarshal([]byte(raw), &answers); err != nil {
			return nil, apperr.Validation("parse submission", common.MessageInvalidBody)
		}
		for id, value := range answers {
			draft.Answers[id] = answerString(value)
		}
	}
	for key, values := range form.Value {
		if id, ok := strings.CutPrefix(key, answerPrefix); ok && id != "" {
			draft.Answers[id] = firstValue(values)
		}
	}

	for key, files := range form.File {
		if id, ok := strings.CutPrefix(key, cameraPrefix); ok && id != "" && len(files) > 0 {
			draft.CameraFiles[id] = attachment(files[0])
		}
	}
	images := form.File[imagesField]
	if len(images) > maxImageCount {
		return nil, apperr.Validation("parse submission", messageTooManyFiles)
	}
	for _, fh := range images {
		draft.Images = append(draft.Images, attachment(fh))
	}
	return draft, nil
}

func attachment(fh *multipart.FileHeader) formsapp.Attachment {
	return formsapp.Attachment{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// answerString flattens a JSON answer the way a form input would hold it.
func answerString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, answerString(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
