package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/forms/domain"
)

func TestListFormsMergesDefaultAndSortsByTitle(t *testing.T) {
	repo := newMemForms(
		domain.FormDefinition{ID: "vaktrapport", Slug: "vaktrapport", Title: "Vaktrapport"},
		domain.FormDefinition{ID: "apning", Slug: "apning", Title: "åpning"},
		domain.FormDefinition{ID: "stengeskjema", Slug: "stengeskjema", Title: "Stenging (egen)"},
		domain.FormDefinition{ID: "broken", Slug: ""},
	)
	catalogue := NewCatalogue(repo, nil)

	forms, err := catalogue.ListForms(context.Background())
	require.NoError(t, err)

	slugs := make([]string, 0, len(forms))
	for _, f := range forms {
		slugs = append(slugs, f.Slug)
	}
	assert.Equal(t, []string{"stengeskjema", "vaktrapport", "apning"}, slugs)
	assert.Equal(t, "Stenging (egen)", forms[0].Title)
	assert.Len(t, forms[0].Questions, 5, "stored built-in form without questions inherits the defaults")
}

func TestListFormsWithEmptyStore(t *testing.T) {
	forms, err := NewCatalogue(newMemForms(), nil).ListForms(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, domain.DefaultFormSlug, forms[0].Slug)
}

func TestLoadFormDegradesWhenMissing(t *testing.T) {
	catalogue := NewCatalogue(newMemForms(), nil)

	form, err := catalogue.LoadForm(context.Background(), "Stengeskjema")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultForm(), form)

	form, err = catalogue.LoadForm(context.Background(), "ukjent")
	require.NoError(t, err)
	assert.Equal(t, domain.NotFoundForm("ukjent"), form)
}

func TestLoadFormSurfacesTransientFailure(t *testing.T) {
	repo := newMemForms()
	repo.findErr = errors.New("server selection timeout")
	_, err := NewCatalogue(repo, nil).LoadForm(context.Background(), "x")
	assert.True(t, apperr.Is(err, apperr.KindTransient))
}

func TestCreateForm(t *testing.T) {
	repo := newMemForms(domain.FormDefinition{ID: "vakt", Slug: "vakt"})
	catalogue := NewCatalogue(repo, nil)

	form, err := catalogue.CreateForm(context.Background(), "  Ny Rapport!! ", "")
	require.NoError(t, err)
	assert.Equal(t, "ny-rapport", form.Slug)
	assert.Equal(t, "ny-rapport", form.ID)
	assert.Equal(t, "ny-rapport", form.Title)
	assert.Equal(t, domain.InitialQuestions(), form.Questions)

	_, err = catalogue.CreateForm(context.Background(), "???", "x")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, MessageInvalidSlug, apperr.MessageOf(err, ""))

	for _, dup := range []string{"vakt", "Stengeskjema", "ny rapport"} {
		_, err = catalogue.CreateForm(context.Background(), dup, "x")
		assert.True(t, apperr.Is(err, apperr.KindConflict), dup)
		assert.Equal(t, MessageDuplicateSlug, apperr.MessageOf(err, ""))
	}
}

func TestSaveFormNormalizesQuestions(t *testing.T) {
	repo := newMemForms()
	catalogue := NewCatalogue(repo, nil)

	saved, err := catalogue.SaveForm(context.Background(), SaveFormCommand{
		Slug:  "stengeskjema",
		Title: " ",
		Questions: []domain.Question{
			{Label: "Hvem stengte?", Type: domain.QuestionName, Required: true},
			{ID: "farge", Label: "Farge", Type: "rainbow", Options: []string{"rød"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Stengeskjema", saved.Title)
	require.Len(t, saved.Questions, 2)
	assert.Equal(t, "hvem-stengte", saved.Questions[0].ID)
	assert.Equal(t, domain.QuestionText, saved.Questions[1].Type)
	assert.Empty(t, saved.Questions[1].Options)

	stored, err := repo.FindBySlug(context.Background(), "stengeskjema")
	require.NoError(t, err)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestDeleteFormRequiresTypedConfirmation(t *testing.T) {
	repo := newMemForms(domain.FormDefinition{ID: "vakt", Slug: "vakt"})
	catalogue := NewCatalogue(repo, nil)

	err := catalogue.DeleteForm(context.Background(), "vakt", "slett vakt")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, catalogue.DeleteForm(context.Background(), "vakt", DeleteConfirmation("vakt")))
	err = catalogue.DeleteForm(context.Background(), "vakt", "SLETT vakt")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestApplyEdit(t *testing.T) {
	repo := newMemForms(domain.FormDefinition{
		ID: "vakt", Slug: "vakt", Title: "Vakt", Questions: domain.InitialQuestions(),
	})
	catalogue := NewCatalogue(repo, nil)
	ctx := context.Background()

	form, err := catalogue.ApplyEdit(ctx, "vakt", Edit{Op: EditAdd})
	require.NoError(t, err)
	require.Len(t, form.Questions, 2)

	form, err = catalogue.ApplyEdit(ctx, "vakt", Edit{Op: EditRetype, Index: 1, Type: domain.QuestionSelect})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ja", "Nei"}, form.Questions[1].Options)

	form, err = catalogue.ApplyEdit(ctx, "vakt", Edit{Op: EditOptions, Index: 1, Value: "Morgen, Kveld"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Morgen", "Kveld"}, form.Questions[1].Options)

	form, err = catalogue.ApplyEdit(ctx, "vakt", Edit{Op: EditMove, Index: 1, Direction: domain.DirectionUp})
	require.NoError(t, err)
	assert.Equal(t, "new-question-2", form.Questions[0].ID)

	form, err = catalogue.ApplyEdit(ctx, "vakt", Edit{Op: EditRemove, Index: 1})
	require.NoError(t, err)
	require.Len(t, form.Questions, 1)

	_, err = catalogue.ApplyEdit(ctx, "vakt", Edit{Op: EditRemove, Index: 7})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = catalogue.ApplyEdit(ctx, "ukjent", Edit{Op: EditAdd})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
