package public

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	contentdomain "github.com/crustntrust/site-api/internal/content/domain"
	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
	"github.com/crustntrust/site-api/internal/identity"
	settingsdomain "github.com/crustntrust/site-api/internal/settings/domain"
)

// FormCatalogue resolves form definitions.
type FormCatalogue interface {
	ListForms(ctx context.Context) ([]formsdomain.FormDefinition, error)
	LoadForm(ctx context.Context, slug string) (formsdomain.FormDefinition, error)
}

// Submitter validates and stores one draft.
type Submitter interface {
	Submit(ctx context.Context, form formsdomain.FormDefinition, draft *formsapp.Draft) (*formsdomain.Submission, error)
}

// SettingsReader exposes the applications switch.
type SettingsReader interface {
	Accepting(ctx context.Context) bool
	Subscribe(ctx context.Context, fn func(settingsdomain.Snapshot)) (unsubscribe func())
}

// ContentReader lists publications and locations.
type ContentReader interface {
	Publications(ctx context.Context, session identity.Session) ([]contentdomain.Publication, error)
	Locations(ctx context.Context) ([]contentdomain.Location, error)
}

// SubmissionNotifier is told about every stored submission.
type SubmissionNotifier interface {
	SubmissionReceived(ctx context.Context, form formsdomain.FormDefinition, sub formsdomain.Submission)
}

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *zap.Logger
	forms          FormCatalogue
	submitter      Submitter
	settings       SettingsReader
	content        ContentReader
	notifier       SubmissionNotifier
	maxUploadBytes int64
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *zap.Logger
	Forms          FormCatalogue
	Submitter      Submitter
	Settings       SettingsReader
	Content        ContentReader
	Notifier       SubmissionNotifier
	MaxUploadBytes int64
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		logger:         logger,
		forms:          cfg.Forms,
		submitter:      cfg.Submitter,
		settings:       cfg.Settings,
		content:        cfg.Content,
		notifier:       cfg.Notifier,
		maxUploadBytes: maxUpload,
	}
}

// Register mounts all public routes onto the router. optionalAuth attaches a
// session when a token is sent; requireAuth rejects requests without one.
func (h *Handler) Register(r chi.Router, optionalAuth, requireAuth func(http.Handler) http.Handler) {
	r.Get("/forms", h.formListHandler())
	r.Get("/forms/{slug}", h.formDetailHandler())
	r.Post("/forms/{slug}/submissions", h.submissionCreateHandler())
	r.Get("/settings/applications", h.applicationsSettingHandler())
	r.Get("/settings/stream", h.settingsStreamHandler())
	r.With(optionalAuth).Get("/publications", h.publicationListHandler())
	r.Get("/locations", h.locationListHandler())
	r.With(requireAuth).Get("/auth/session", h.sessionHandler())
}
