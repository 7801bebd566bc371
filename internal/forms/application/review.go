package application

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/blobpath"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

const (
	// DefaultReviewer is recorded when the session carries no email.
	DefaultReviewer = "admin"

	DeletePrompt          = "Slette denne innsendingen permanent?"
	MessageDeleteRequired = "Bekreft sletting av innsendingen."
	MessageDeleteFailed   = "Kunne ikke slette innsending."
	MessageInvalidStatus  = "Ugyldig status."
)

// ResolvedImage pairs a stored image key with a URL the browser can load.
type ResolvedImage struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// SubmissionView is a submission with its images resolved.
type SubmissionView struct {
	Submission domain.Submission
	Images     []ResolvedImage
}

// ReviewService is the privileged read/write surface over submissions.
type ReviewService struct {
	submissions SubmissionRepository
	blobs       BlobStore
	logger      *zap.Logger
}

func NewReviewService(submissions SubmissionRepository, blobs BlobStore, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{submissions: submissions, blobs: blobs, logger: logger}
}

// List returns the submissions of slug, newest first. Submissions without a
// timestamp sort last.
func (s *ReviewService) List(ctx context.Context, slug string) ([]domain.Submission, error) {
	subs, err := s.submissions.ListByFormSlug(ctx, domain.RouteSlug(slug))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOf(err), "list submissions", err)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].SubmittedUnix() > subs[j].SubmittedUnix()
	})
	return subs, nil
}

// View loads one submission and resolves its images. An image whose URL
// cannot be resolved is left out of the view.
func (s *ReviewService) View(ctx context.Context, id string) (*SubmissionView, error) {
	sub, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOf(err), "view submission", err)
	}

	paths := ImagePaths(*sub)
	urls := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			url, err := s.blobs.URL(gctx, path)
			if err != nil {
				s.logger.Warn("image resolution failed",
					zap.String("submissionId", sub.ID),
					zap.String("path", path),
					zap.Error(err),
				)
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()

	view := &SubmissionView{Submission: *sub, Images: []ResolvedImage{}}
	for i, path := range paths {
		if urls[i] == "" {
			continue
		}
		view.Images = append(view.Images, ResolvedImage{Path: path, URL: urls[i]})
	}
	return view, nil
}

// ImagePaths collects the stored image list plus every answer holding an
// image key, without duplicates. Answers are visited in key order.
func ImagePaths(sub domain.Submission) []string {
	seen := map[string]struct{}{}
	var paths []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, path := range sub.ImagePaths {
		add(path)
	}
	keys := make([]string, 0, len(sub.Answers))
	for k := range sub.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := sub.Answers[k]; blobpath.IsFormImage(v) {
			add(v)
		}
	}
	return paths
}

// UpdateStatus moves a submission to next on behalf of reviewer.
func (s *ReviewService) UpdateStatus(ctx context.Context, id, next, reviewer string) (domain.Status, error) {
	status, ok := domain.ParseStatus(next)
	if !ok {
		return "", apperr.Validation("update status", MessageInvalidStatus)
	}
	if reviewer == "" {
		reviewer = DefaultReviewer
	}
	if err := s.submissions.UpdateStatus(ctx, id, status, reviewer); err != nil {
		s.logger.Warn("status update failed",
			zap.String("submissionId", id),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		kind := apperr.KindOf(err)
		return "", &apperr.Error{Kind: kind, Op: "update status", Message: StatusErrorMessage(kind), Err: err}
	}
	return status, nil
}

// StatusErrorMessage is the row-level message shown when a status write fails.
func StatusErrorMessage(kind apperr.Kind) string {
	if kind == apperr.KindPermission {
		return fmt.Sprintf("Kunne ikke oppdatere status (%s). Mangler tilgang til å endre innsendinger.", kind)
	}
	return fmt.Sprintf("Kunne ikke oppdatere status (%s).", kind)
}

// Delete removes a submission permanently. confirmed must be true.
func (s *ReviewService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return apperr.Validation("delete submission", MessageDeleteRequired)
	}
	if err := s.submissions.Delete(ctx, id); err != nil {
		kind := apperr.KindOf(err)
		return &apperr.Error{Kind: kind, Op: "delete submission", Message: MessageDeleteFailed, Err: err}
	}
	s.logger.Info("submission deleted", zap.String("submissionId", id))
	return nil
}
