package application

import (
	"context"
	"io"

	"github.com/crustntrust/site-api/internal/forms/domain"
)

// FormRepository persists form definitions keyed by slug.
// FindBySlug and Delete report apperr.KindNotFound for unknown slugs,
// Create reports apperr.KindConflict when the slug is taken.
type FormRepository interface {
	List(ctx context.Context) ([]domain.FormDefinition, error)
	FindBySlug(ctx context.Context, slug string) (*domain.FormDefinition, error)
	Create(ctx context.Context, form domain.FormDefinition) error
	Upsert(ctx context.Context, form domain.FormDefinition) error
	Delete(ctx context.Context, slug string) error
}

// SubmissionRepository persists submissions. Create assigns the server-side
// submittedAt and statusUpdatedAt timestamps; UpdateStatus assigns
// statusUpdatedAt and reviewedAt and touches no other field.
type SubmissionRepository interface {
	Create(ctx context.Context, submission domain.Submission) error
	ListByFormSlug(ctx context.Context, slug string) ([]domain.Submission, error)
	FindByID(ctx context.Context, id string) (*domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, actor string) error
	Delete(ctx context.Context, id string) error
}

// BlobStore stores uploaded images and resolves their keys to URLs.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}
