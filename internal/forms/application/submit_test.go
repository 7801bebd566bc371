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

func newTestEngine(subs *memSubmissions, blobs *memBlobs) *SubmitEngine {
	e := NewSubmitEngine(subs, blobs, nil)
	e.newID = func() string { return "sub1" }
	return e
}

func TestSubmitRejectsFirstMissingRequiredBeforeAnyWrite(t *testing.T) {
	form := domain.FormDefinition{
		ID:   "rapport",
		Slug: "rapport",
		Questions: []domain.Question{
			{ID: "location", Label: "Lokasjon", Type: domain.QuestionText, Required: true},
			{ID: "note", Label: "Notat", Type: domain.QuestionTextarea},
		},
	}
	subs := newMemSubmissions()
	blobs := newMemBlobs()
	engine := newTestEngine(subs, blobs)

	draft := NewDraft()
	draft.Answers["note"] = "alt ok"
	draft.Images = []Attachment{attachment("a.jpg", "x")}

	_, err := engine.Submit(context.Background(), form, draft)
	require.Error(t, err)

	var missing *domain.MissingRequiredFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Lokasjon", missing.Label)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Manglende svar: Lokasjon", apperr.MessageOf(err, SubmitFailureMessage))

	assert.Zero(t, subs.writes)
	assert.Empty(t, blobs.keys())
	assert.Equal(t, "alt ok", draft.Answers["note"], "draft must survive a failed submit")
	assert.Len(t, draft.Images, 1)
}

func TestValidateReportsOnlyTheFirstMissingQuestion(t *testing.T) {
	form := domain.FormDefinition{Questions: []domain.Question{
		{ID: "a", Label: "A", Required: true},
		{ID: "b", Label: "B", Required: true},
	}}
	err := Validate(form, NewDraft())
	var missing *domain.MissingRequiredFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "a", missing.QuestionID)

	draft := NewDraft()
	draft.Answers["a"] = "   "
	draft.Answers["b"] = "ok"
	require.True(t, errors.As(Validate(form, draft), &missing))
	assert.Equal(t, "A", missing.Label)
}

func TestSubmitAcceptsCameraQuestionWithTextFallback(t *testing.T) {
	form := domain.FormDefinition{
		ID:   "bilder",
		Slug: "bilder",
		Questions: []domain.Question{
			{ID: "photo", Label: "Bilde", Type: domain.QuestionCamera, Required: true},
		},
	}
	subs := newMemSubmissions()
	engine := newTestEngine(subs, newMemBlobs())

	draft := NewDraft()
	draft.Answers["photo"] = "kamera virket ikke"
	sub, err := engine.Submit(context.Background(), form, draft)
	require.NoError(t, err)
	assert.Equal(t, "kamera virket ikke", subs.get(sub.ID).Answers["photo"])

	err = Validate(form, NewDraft())
	assert.Error(t, err, "neither file nor text must still fail")
}

func TestSubmitRoundTripWithoutImages(t *testing.T) {
	form := domain.DefaultForm()
	form.Questions = []domain.Question{
		{ID: "location", Label: "Lokasjon", Required: true},
		{ID: "cleaningdone", Label: "Ryddet?", Type: domain.QuestionSelect, Options: []string{"Ja", "Nei"}},
	}
	subs := newMemSubmissions()
	engine := newTestEngine(subs, newMemBlobs())

	draft := NewDraft()
	draft.Answers["location"] = "Sognsvann"
	draft.Answers["cleaningdone"] = "Ja"

	sub, err := engine.Submit(context.Background(), form, draft)
	require.NoError(t, err)

	stored := subs.get(sub.ID)
	assert.Equal(t, []string{}, stored.ImagePaths)
	assert.Equal(t, map[string]string{"location": "Sognsvann", "cleaningdone": "Ja"}, stored.Answers)
	assert.Equal(t, domain.StatusAwaitingReview, stored.Status)
	assert.Equal(t, domain.SystemActor, stored.StatusUpdatedBy)
	assert.Equal(t, "stengeskjema", stored.FormSlug)
	assert.Equal(t, "stengeskjema", stored.FormID)
	require.NotNil(t, stored.SubmittedAt)
	require.NotNil(t, stored.StatusUpdatedAt)

	assert.Empty(t, draft.Answers, "successful submit clears the draft")
	assert.Empty(t, draft.CameraFiles)
	assert.Empty(t, draft.Images)
}

func TestSubmitUploadsCameraAndGeneralImages(t *testing.T) {
	form := domain.FormDefinition{
		ID:   "stengeskjema",
		Slug: "stengeskjema",
		Questions: []domain.Question{
			{ID: "disk", Label: "Disk", Type: domain.QuestionCamera, Required: true},
			{ID: "location", Label: "Lokasjon", Required: true},
			{ID: "ovn", Label: "Ovn", Type: domain.QuestionCamera},
		},
	}
	subs := newMemSubmissions()
	blobs := newMemBlobs()
	engine := newTestEngine(subs, blobs)

	draft := NewDraft()
	draft.Answers["location"] = "Sognsvann"
	draft.CameraFiles["disk"] = attachment("Disk Foto.JPG", "disk")
	draft.CameraFiles["ovn"] = attachment("ovn.png", "ovn")
	draft.Images = []Attachment{attachment("a.jpg", "a"), attachment("b.jpg", "b")}

	sub, err := engine.Submit(context.Background(), form, draft)
	require.NoError(t, err)

	want := []string{
		"forms/images/stengeskjema/sub1-disk-disk-foto.jpg",
		"forms/images/stengeskjema/sub1-ovn-ovn.png",
		"forms/images/stengeskjema/sub1-0-a.jpg",
		"forms/images/stengeskjema/sub1-1-b.jpg",
	}
	stored := subs.get(sub.ID)
	assert.Equal(t, want, stored.ImagePaths)
	assert.Equal(t, want[0], stored.Answers["disk"])
	assert.Equal(t, want[1], stored.Answers["ovn"])
	assert.Equal(t, "Sognsvann", stored.Answers["location"])
	assert.ElementsMatch(t, want, blobs.keys())
}

func TestSubmitUploadFailureKeepsDraftAndSkipsWrite(t *testing.T) {
	form := domain.FormDefinition{ID: "f", Slug: "f"}
	subs := newMemSubmissions()
	blobs := newMemBlobs()
	blobs.failPut["forms/images/f/sub1-1-b.jpg"] = true
	engine := newTestEngine(subs, blobs)

	draft := NewDraft()
	draft.Answers["x"] = "y"
	draft.Images = []Attachment{attachment("a.jpg", "a"), attachment("b.jpg", "b")}

	_, err := engine.Submit(context.Background(), form, draft)
	require.Error(t, err)
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
	assert.Equal(t, SubmitFailureMessage, apperr.MessageOf(err, SubmitFailureMessage))
	assert.Zero(t, subs.writes)
	assert.Len(t, draft.Images, 2)
	assert.Equal(t, "y", draft.Answers["x"])
}

func TestSubmitWriteFailureLeavesUploadedImages(t *testing.T) {
	form := domain.FormDefinition{ID: "f", Slug: "f"}
	subs := newMemSubmissions()
	subs.createErr = errors.New("connection reset")
	blobs := newMemBlobs()
	engine := newTestEngine(subs, blobs)

	draft := NewDraft()
	draft.Images = []Attachment{attachment("a.jpg", "a")}

	_, err := engine.Submit(context.Background(), form, draft)
	require.Error(t, err)
	assert.Equal(t, []string{"forms/images/f/sub1-0-a.jpg"}, blobs.keys())
	assert.Len(t, draft.Images, 1)
}
