package application

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

const (
	MessageInvalidSlug   = "Oppgi en gyldig URL-del."
	MessageDuplicateSlug = "Et skjema med denne URL-en finnes allerede."
	MessageDeleteConfirm = "Skriv inn bekreftelsen for å slette skjemaet."
)

// Catalogue serves form definitions to visitors and lets admins manage them.
type Catalogue struct {
	forms  FormRepository
	logger *zap.Logger
}

func NewCatalogue(forms FormRepository, logger *zap.Logger) *Catalogue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalogue{forms: forms, logger: logger}
}

// ListForms returns the built-in form merged with every stored definition,
// sorted by title.
func (c *Catalogue) ListForms(ctx context.Context) ([]domain.FormDefinition, error) {
	stored, err := c.forms.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindOf(err), "list forms", err)
	}

	bySlug := map[string]domain.FormDefinition{}
	def := domain.DefaultForm()
	bySlug[def.Slug] = def
	for _, form := range stored {
		slug := domain.RouteSlug(form.Slug)
		if slug == "" {
			continue
		}
		form.Slug = slug
		if domain.IsDefaultSlug(slug) {
			form = mergeOverDefault(form)
		}
		bySlug[slug] = form
	}

	forms := make([]domain.FormDefinition, 0, len(bySlug))
	for _, form := range bySlug {
		forms = append(forms, form)
	}
	sort.SliceStable(forms, func(i, j int) bool {
		return strings.ToLower(titleOrSlug(forms[i])) < strings.ToLower(titleOrSlug(forms[j]))
	})
	return forms, nil
}

// LoadForm resolves slug to a render-safe definition. Unknown slugs degrade
// to the built-in form or the not-found placeholder; only transient store
// failures are returned.
func (c *Catalogue) LoadForm(ctx context.Context, slug string) (domain.FormDefinition, error) {
	slug = domain.RouteSlug(slug)
	stored, err := c.forms.FindBySlug(ctx, slug)
	switch {
	case err == nil:
		form := *stored
		form.Slug = slug
		if domain.IsDefaultSlug(slug) {
			form = mergeOverDefault(form)
		}
		return form, nil
	case apperr.Is(err, apperr.KindNotFound):
		if domain.IsDefaultSlug(slug) {
			return domain.DefaultForm(), nil
		}
		return domain.NotFoundForm(slug), nil
	default:
		c.logger.Warn("form lookup failed", zap.String("slug", slug), zap.Error(err))
		return domain.FormDefinition{}, apperr.Wrap(apperr.KindOf(err), "load form", err)
	}
}

// CreateForm registers an empty form under a normalized slug.
func (c *Catalogue) CreateForm(ctx context.Context, rawSlug, title string) (domain.FormDefinition, error) {
	slug := domain.NormalizeFormSlug(rawSlug)
	if !domain.IsValidFormSlug(slug) {
		return domain.FormDefinition{}, apperr.Validation("create form", MessageInvalidSlug)
	}
	if domain.IsDefaultSlug(slug) {
		return domain.FormDefinition{}, apperr.Conflict("create form", MessageDuplicateSlug)
	}
	if _, err := c.forms.FindBySlug(ctx, slug); err == nil {
		return domain.FormDefinition{}, apperr.Conflict("create form", MessageDuplicateSlug)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return domain.FormDefinition{}, apperr.Wrap(apperr.KindOf(err), "create form", err)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = slug
	}
	form := domain.FormDefinition{
		ID:        slug,
		Slug:      slug,
		Title:     title,
		Questions: domain.InitialQuestions(),
	}
	if err := c.forms.Create(ctx, form); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return domain.FormDefinition{}, apperr.Conflict("create form", MessageDuplicateSlug)
		}
		return domain.FormDefinition{}, apperr.Wrap(apperr.KindOf(err), "create form", err)
	}
	c.logger.Info("form created", zap.String("slug", slug))
	return form, nil
}

// SaveFormCommand is an edited schema as sent by the editor.
type SaveFormCommand struct {
	Slug        string
	Title       string
	Description string
	Questions   []domain.Question
}

// SaveForm normalizes and upserts an edited schema. Concurrent saves are not
// detected; the last one wins.
func (c *Catalogue) SaveForm(ctx context.Context, cmd SaveFormCommand) (domain.FormDefinition, error) {
	slug := domain.RouteSlug(cmd.Slug)
	if !domain.IsValidFormSlug(slug) {
		return domain.FormDefinition{}, apperr.Validation("save form", MessageInvalidSlug)
	}

	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		if domain.IsDefaultSlug(slug) {
			title = domain.DefaultForm().Title
		} else {
			title = slug
		}
	}
	form := domain.FormDefinition{
		ID:          slug,
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(cmd.Description),
		Questions:   domain.PrepareForSave(cmd.Questions),
	}
	if err := c.forms.Upsert(ctx, form); err != nil {
		return domain.FormDefinition{}, apperr.Wrap(apperr.KindOf(err), "save form", err)
	}
	return form, nil
}

// DeleteConfirmation is the text an admin must type to delete slug.
func DeleteConfirmation(slug string) string {
	return "SLETT " + slug
}

// DeleteForm removes a stored definition. Submissions are left in place.
func (c *Catalogue) DeleteForm(ctx context.Context, slug, confirmation string) error {
	slug = domain.RouteSlug(slug)
	if strings.TrimSpace(confirmation) != DeleteConfirmation(slug) {
		return apperr.Validation("delete form", MessageDeleteConfirm)
	}
	if err := c.forms.Delete(ctx, slug); err != nil {
		return apperr.Wrap(apperr.KindOf(err), "delete form", err)
	}
	c.logger.Info("form deleted", zap.String("slug", slug))
	return nil
}

// EditOp names a single editor action.
type EditOp string

const (
	EditAdd     EditOp = "add"
	EditRemove  EditOp = "remove"
	EditMove    EditOp = "move"
	EditRetype  EditOp = "retype"
	EditOptions EditOp = "options"
	EditLabel   EditOp = "label"
)

// Edit is one editor action applied to the question at Index.
type Edit struct {
	Op        EditOp
	Index     int
	Direction domain.Direction
	Type      domain.QuestionType
	Value     string
}

// ApplyEdit loads slug, applies edit to its questions and saves the result.
func (c *Catalogue) ApplyEdit(ctx context.Context, slug string, edit Edit) (domain.FormDefinition, error) {
	form, err := c.LoadForm(ctx, slug)
	if err != nil {
		return domain.FormDefinition{}, err
	}
	if form.Description == domain.NotFoundDescription && len(form.Questions) == 0 {
		return domain.FormDefinition{}, apperr.NotFound("edit form", domain.NotFoundDescription)
	}

	questions, err := applyEdit(form.Questions, edit)
	if err != nil {
		return domain.FormDefinition{}, err
	}
	return c.SaveForm(ctx, SaveFormCommand{
		Slug:        form.Slug,
		Title:       form.Title,
		Description: form.Description,
		Questions:   questions,
	})
}

func applyEdit(questions []domain.Question, edit Edit) ([]domain.Question, error) {
	if edit.Op == EditAdd {
		return domain.AddQuestion(questions), nil
	}
	if edit.Index < 0 || edit.Index >= len(questions) {
		return nil, apperr.Validation("edit form", "Ugyldig spørsmål.")
	}

	switch edit.Op {
	case EditRemove:
		return domain.RemoveQuestion(questions, edit.Index), nil
	case EditMove:
		if edit.Direction != domain.DirectionUp && edit.Direction != domain.DirectionDown {
			return nil, apperr.Validation("edit form", "Ugyldig retning.")
		}
		return domain.MoveQuestion(questions, edit.Index, edit.Direction), nil
	}

	next := append([]domain.Question(nil), questions...)
	switch edit.Op {
	case EditRetype:
		next[edit.Index] = domain.ChangeQuestionType(next[edit.Index], edit.Type)
	case EditOptions:
		next[edit.Index].Options = domain.ParseOptions(edit.Value)
	case EditLabel:
		next[edit.Index].Label = edit.Value
	default:
		return nil, apperr.Validation("edit form", "Ukjent endring.")
	}
	return next, nil
}

// mergeOverDefault fills the blanks of a stored built-in form with the
// embedded definition.
func mergeOverDefault(stored domain.FormDefinition) domain.FormDefinition {
	def := domain.DefaultForm()
	if stored.ID == "" {
		stored.ID = def.ID
	}
	if strings.TrimSpace(stored.Title) == "" {
		stored.Title = def.Title
	}
	if strings.TrimSpace(stored.Description) == "" {
		stored.Description = def.Description
	}
	if len(stored.Questions) == 0 {
		stored.Questions = def.Questions
	}
	return stored
}

func titleOrSlug(form domain.FormDefinition) string {
	if t := strings.TrimSpace(form.Title); t != "" {
		return t
	}
	return form.Slug
}
