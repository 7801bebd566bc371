package admin

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	contentapp "github.com/crustntrust/site-api/internal/content/application"
	contentdomain "github.com/crustntrust/site-api/internal/content/domain"
	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
	"github.com/crustntrust/site-api/internal/identity"
)

// FormAdmin is the privileged form catalogue.
type FormAdmin interface {
	ListForms(ctx context.Context) ([]formsdomain.FormDefinition, error)
	LoadForm(ctx context.Context, slug string) (formsdomain.FormDefinition, error)
	CreateForm(ctx context.Context, slug, title string) (formsdomain.FormDefinition, error)
	SaveForm(ctx context.Context, cmd formsapp.SaveFormCommand) (formsdomain.FormDefinition, error)
	ApplyEdit(ctx context.Context, slug string, edit formsapp.Edit) (formsdomain.FormDefinition, error)
	DeleteForm(ctx context.Context, slug, confirmation string) error
}

// SubmissionReviewer reads and moderates submissions.
type SubmissionReviewer interface {
	List(ctx context.Context, slug string) ([]formsdomain.Submission, error)
	View(ctx context.Context, id string) (*formsapp.SubmissionView, error)
	UpdateStatus(ctx context.Context, id, next, reviewer string) (formsdomain.Status, error)
	Delete(ctx context.Context, id string, confirmed bool) error
}

// SettingsWriter flips site settings.
type SettingsWriter interface {
	Accepting(ctx context.Context) bool
	Set(ctx context.Context, session identity.Session, accepting bool) error
}

// ContentEditor manages publications and locations.
type ContentEditor interface {
	Publications(ctx context.Context, session identity.Session) ([]contentdomain.Publication, error)
	CreatePublication(ctx context.Context, session identity.Session, in contentdomain.PublicationInput, image *contentapp.Image) (*contentdomain.Publication, error)
	UpdatePublication(ctx context.Context, session identity.Session, id string, in contentdomain.PublicationInput, image *contentapp.Image) (*contentdomain.Publication, error)
	Locations(ctx context.Context) ([]contentdomain.Location, error)
	SaveLocation(ctx context.Context, session identity.Session, id string, in contentdomain.LocationInput, image *contentapp.Image) (*contentdomain.Location, error)
}

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger         *zap.Logger
	forms          FormAdmin
	reviews        SubmissionReviewer
	settings       SettingsWriter
	content        ContentEditor
	maxUploadBytes int64
}

// Config provides dependencies for Handler.
type Config struct {
	Logger         *zap.Logger
	Forms          FormAdmin
	Reviews        SubmissionReviewer
	Settings       SettingsWriter
	Content        ContentEditor
	MaxUploadBytes int64
}

// NewHandler constructs an admin HTTP handler set.
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
		reviews:        cfg.Reviews,
		settings:       cfg.Settings,
		content:        cfg.Content,
		maxUploadBytes: maxUpload,
	}
}

// Register mounts admin routes onto router. Callers guard the router with
// an admin check.
func (h *Handler) Register(r chi.Router) {
	r.Get("/forms", h.formListHandler())
	r.Post("/forms", h.formCreateHandler())
	r.Get("/forms/{slug}", h.formDetailHandler())
	r.Put("/forms/{slug}", h.formSaveHandler())
	r.Post("/forms/{slug}/edits", h.formEditHandler())
	r.Delete("/forms/{slug}", h.formDeleteHandler())
	r.Get("/forms/{slug}/submissions", h.submissionListHandler())

	r.Get("/submissions/{id}", h.submissionDetailHandler())
	r.Patch("/submissions/{id}/status", h.submissionStatusHandler())
	r.Delete("/submissions/{id}", h.submissionDeleteHandler())

	r.Put("/settings/applications", h.applicationsSettingHandler())

	r.Get("/publications", h.publicationListHandler())
	r.Post("/publications", h.publicationCreateHandler())
	r.Put("/publications/{id}", h.publicationUpdateHandler())
	r.Get("/locations", h.locationListHandler())
	r.Post("/locations", h.locationSaveHandler())
	r.Put("/locations/{id}", h.locationSaveHandler())
}
