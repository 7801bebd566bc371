package application

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/blobpath"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

const (
	SubmitSuccessMessage = "Takk! Skjemaet er sendt inn."
	SubmitFailureMessage = "Noe gikk galt ved innsending. Prøv igjen."
)

// Attachment is a file picked by the respondent. Open may be called more
// than once so a failed submit can be retried with the same draft.
type Attachment struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Draft is the in-progress state of one form fill.
type Draft struct {
	Answers     map[string]string
	CameraFiles map[string]Attachment
	Images      []Attachment
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{
		Answers:     map[string]string{},
		CameraFiles: map[string]Attachment{},
	}
}

// Clear drops every answer and attachment.
func (d *Draft) Clear() {
	d.Answers = map[string]string{}
	d.CameraFiles = map[string]Attachment{}
	d.Images = nil
}

// SubmitEngine validates drafts, uploads their images and stores submissions.
type SubmitEngine struct {
	submissions SubmissionRepository
	blobs       BlobStore
	logger      *zap.Logger
	newID       func() string
}

func NewSubmitEngine(submissions SubmissionRepository, blobs BlobStore, logger *zap.Logger) *SubmitEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitEngine{
		submissions: submissions,
		blobs:       blobs,
		logger:      logger,
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// Validate returns a *domain.MissingRequiredFieldError for the first required
// question without an answer. A camera question is satisfied by either a
// captured file or a text answer.
func Validate(form domain.FormDefinition, draft *Draft) error {
	for _, q := range form.Questions {
		if !q.Required {
			continue
		}
		answered := strings.TrimSpace(draft.Answers[q.ID]) != ""
		if q.Type == domain.QuestionCamera {
			if _, ok := draft.CameraFiles[q.ID]; ok {
				answered = true
			}
		}
		if !answered {
			return &domain.MissingRequiredFieldError{QuestionID: q.ID, Label: q.Label}
		}
	}
	return nil
}

// Submit stores draft as a new submission of form. On success the draft is
// cleared; on any failure it is left untouched. Images already uploaded when
// a later step fails are not removed.
func (e *SubmitEngine) Submit(ctx context.Context, form domain.FormDefinition, draft *Draft) (*domain.Submission, error) {
	if err := Validate(form, draft); err != nil {
		return nil, err
	}

	id := e.newID()
	answers := make(map[string]string, len(draft.Answers))
	for k, v := range draft.Answers {
		answers[k] = v
	}

	type upload struct {
		key        string
		questionID string
		file       Attachment
	}
	var uploads []upload
	for _, q := range form.Questions {
		if q.Type != domain.QuestionCamera {
			continue
		}
		file, ok := draft.CameraFiles[q.ID]
		if !ok {
			continue
		}
		uploads = append(uploads, upload{
			key:        blobpath.FormImage(form.Slug, id, q.ID, file.FileName),
			questionID: q.ID,
			file:       file,
		})
	}
	for i, file := range draft.Images {
		uploads = append(uploads, upload{
			key:  blobpath.FormImage(form.Slug, id, strconv.Itoa(i), file.FileName),
			file: file,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range uploads {
		u := u
		g.Go(func() error {
			return e.put(gctx, u.key, u.file)
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error("submission upload failed",
			zap.String("form", form.Slug),
			zap.String("submissionId", id),
			zap.Error(err),
		)
		return nil, apperr.Wrap(apperr.KindOf(err), "submit form", err)
	}

	imagePaths := make([]string, 0, len(uploads))
	for _, u := range uploads {
		imagePaths = append(imagePaths, u.key)
		if u.questionID != "" {
			answers[u.questionID] = u.key
		}
	}

	submission := domain.Submission{
		ID:              id,
		FormID:          form.ID,
		FormSlug:        form.Slug,
		Answers:         answers,
		ImagePaths:      imagePaths,
		Status:          domain.StatusAwaitingReview,
		StatusUpdatedBy: domain.SystemActor,
	}
	if err := e.submissions.Create(ctx, submission); err != nil {
		e.logger.Error("submission write failed",
			zap.String("form", form.Slug),
			zap.String("submissionId", id),
			zap.Int("uploaded", len(imagePaths)),
			zap.Error(err),
		)
		return nil, apperr.Wrap(apperr.KindOf(err), "submit form", err)
	}

	e.logger.Info("submission stored",
		zap.String("form", form.Slug),
		zap.String("submissionId", id),
		zap.Int("images", len(imagePaths)),
	)
	draft.Clear()
	return &submission, nil
}

func (e *SubmitEngine) put(ctx context.Context, key string, file Attachment) error {
	if file.Open == nil {
		return apperr.Validation("upload image", fmt.Sprintf("tom fil: %s", file.FileName))
	}
	body, err := file.Open()
	if err != nil {
		return apperr.Transient("open attachment", err)
	}
	defer body.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := e.blobs.Put(ctx, key, body, file.Size, contentType); err != nil {
		return apperr.Wrap(apperr.KindOf(err), "upload "+key, err)
	}
	return nil
}
