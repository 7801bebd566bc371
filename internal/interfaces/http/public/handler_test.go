package public

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/config"
	contentdomain "github.com/crustntrust/site-api/internal/content/domain"
	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	formsdomain "github.com/crustntrust/site-api/internal/forms/domain"
	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
	settingsdomain "github.com/crustntrust/site-api/internal/settings/domain"
)

var testForm = formsdomain.FormDefinition{
	ID:    "test",
	Slug:  "test",
	Title: "Test",
	Questions: []formsdomain.Question{
		{ID: "navn", Label: "Navn", Type: formsdomain.QuestionName, Required: true},
		{ID: "bilde", Label: "Bilde", Type: formsdomain.QuestionCamera},
	},
}

type fakeCatalogue struct {
	err error
}

func (f *fakeCatalogue) ListForms(context.Context) ([]formsdomain.FormDefinition, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []formsdomain.FormDefinition{formsdomain.DefaultForm(), testForm}, nil
}

func (f *fakeCatalogue) LoadForm(_ context.Context, slug string) (formsdomain.FormDefinition, error) {
	if f.err != nil {
		return formsdomain.FormDefinition{}, f.err
	}
	if slug == testForm.Slug {
		return testForm, nil
	}
	return formsdomain.NotFoundForm(slug), nil
}

type fakeSubmitter struct {
	mu     sync.Mutex
	drafts []*formsapp.Draft
	bodies map[string]string
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, form formsdomain.FormDefinition, draft *formsapp.Draft) (*formsdomain.Submission, error) {
	if err := formsapp.Validate(form, draft); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = map[string]string{}
	for id, file := range draft.CameraFiles {
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		f.bodies[id] = string(data)
	}
	f.drafts = append(f.drafts, draft)
	return &formsdomain.Submission{ID: "sub-1", FormSlug: form.Slug, Answers: draft.Answers}, nil
}

type fakeNotifier struct {
	done chan formsdomain.Submission
}

func (f *fakeNotifier) SubmissionReceived(_ context.Context, _ formsdomain.FormDefinition, sub formsdomain.Submission) {
	f.done <- sub
}

type fakeSettings struct {
	accepting bool
	updates   chan bool
}

func (f *fakeSettings) Accepting(context.Context) bool { return f.accepting }

func (f *fakeSettings) Subscribe(ctx context.Context, fn func(settingsdomain.Snapshot)) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		seq := uint64(1)
		fn(settingsdomain.Snapshot{Seq: seq, AcceptingApplications: f.accepting})
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-f.updates:
				seq++
				fn(settingsdomain.Snapshot{Seq: seq, AcceptingApplications: v})
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

type fakeContent struct {
	sessions []identity.Session
}

func (f *fakeContent) Publications(_ context.Context, session identity.Session) ([]contentdomain.Publication, error) {
	f.sessions = append(f.sessions, session)
	items := []contentdomain.Publication{{ID: "p1", Title: "Avis", AccessType: contentdomain.AccessPublic}}
	if session.IsAdmin {
		items = append(items, contentdomain.Publication{ID: "p2", AccessType: contentdomain.AccessInternal})
	}
	return items, nil
}

func (f *fakeContent) Locations(context.Context) ([]contentdomain.Location, error) {
	return []contentdomain.Location{{ID: "l1", Name: "Crust", Neighborhood: "Sentrum"}}, nil
}

var secret = []byte("test-secret")

type harness struct {
	router    http.Handler
	catalogue *fakeCatalogue
	submitter *fakeSubmitter
	notifier  *fakeNotifier
	settings  *fakeSettings
	content   *fakeContent
}

func newHarness() *harness {
	h := &harness{
		catalogue: &fakeCatalogue{},
		submitter: &fakeSubmitter{},
		notifier:  &fakeNotifier{done: make(chan formsdomain.Submission, 1)},
		settings:  &fakeSettings{accepting: true, updates: make(chan bool)},
		content:   &fakeContent{},
	}
	auth := identity.NewAuthenticator([]config.JWTConfig{{Issuer: "crust-sso", Secret: secret}}, "", "crust.no")
	handler := NewHandler(Config{
		Forms:          h.catalogue,
		Submitter:      h.submitter,
		Settings:       h.settings,
		Content:        h.content,
		Notifier:       h.notifier,
		MaxUploadBytes: 1 << 20,
	})
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handler.Register(r, common.OptionalSession(auth), common.RequireSession(auth, nil))
	})
	h.router = r
	return h
}

func token(t *testing.T, email string) string {
	t.Helper()
	claims := identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "crust-sso",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestFormList(t *testing.T) {
	h := newHarness()
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/forms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[formListResponse](t, rec)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "test", body.Items[1].Slug)
}

func TestFormDetailPlaceholderForUnknownSlug(t *testing.T) {
	h := newHarness()
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/forms/ukjent", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[common.FormResponse](t, rec)
	assert.Equal(t, formsdomain.NotFoundDescription, body.Description)
	assert.NotNil(t, body.Questions)
	assert.Empty(t, body.Questions)
}

func TestFormDetailStoreFailure(t *testing.T) {
	h := newHarness()
	h.catalogue.err = apperr.Transient("forms.FindBySlug", errors.New("timeout"))
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/forms/test", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for k, content := range files {
		fw, err := mw.CreateFormFile(k, k+".jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmissionCreate(t *testing.T) {
	h := newHarness()
	req := multipartRequest(t, "/api/forms/test/submissions",
		map[string]string{"answers": `{"navn":"Kari","antall":3}`, "answer.sted": "Løkka"},
		map[string]string{"camera.bilde": "jpegdata"},
	)
	rec := h.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[submissionCreatedResponse](t, rec)
	assert.Equal(t, "sub-1", body.ID)
	assert.Equal(t, formsapp.SubmitSuccessMessage, body.Message)

	require.Len(t, h.submitter.drafts, 1)
	draft := h.submitter.drafts[0]
	assert.Equal(t, map[string]string{"navn": "Kari", "antall": "3", "sted": "Løkka"}, draft.Answers)
	assert.Equal(t, "jpegdata", h.submitter.bodies["bilde"])

	select {
	case sub := <-h.notifier.done:
		assert.Equal(t, "sub-1", sub.ID)
	case <-time.After(time.Second):
		t.Fatal("notification not sent")
	}
}

func TestSubmissionCreateMissingRequired(t *testing.T) {
	h := newHarness()
	req := multipartRequest(t, "/api/forms/test/submissions", map[string]string{"answer.navn": "  "}, nil)
	rec := h.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Manglende svar: Navn", decode[common.ErrorResponse](t, rec).Error)
	assert.Empty(t, h.submitter.drafts)
}

func TestSubmissionCreateRejectsUnknownForm(t *testing.T) {
	h := newHarness()
	req := multipartRequest(t, "/api/forms/ukjent/submissions", map[string]string{"answer.navn": "Kari"}, nil)
	rec := h.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmissionCreateStoreFailure(t *testing.T) {
	h := newHarness()
	h.submitter.err = apperr.Transient("submissions.Create", errors.New("down"))
	req := multipartRequest(t, "/api/forms/test/submissions", map[string]string{"answer.navn": "Kari"}, nil)
	rec := h.do(req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, formsapp.SubmitFailureMessage, decode[common.ErrorResponse](t, rec).Error)
}

func TestSubmissionCreateRejectsNonMultipart(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodPost, "/api/forms/test/submissions", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, h.do(req).Code)
}

func TestApplicationsSetting(t *testing.T) {
	h := newHarness()
	h.settings.accepting = false
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/settings/applications", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[applicationsSettingResponse](t, rec).AcceptingApplications)
}

func TestSettingsStream(t *testing.T) {
	h := newHarness()
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/settings/stream", nil)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	reader := bufio.NewReader(res.Body)
	next := func() settingsdomain.Snapshot {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var s settingsdomain.Snapshot
				require.NoError(t, json.Unmarshal([]byte(data), &s))
				return s
			}
		}
	}

	first := next()
	assert.True(t, first.AcceptingApplications)
	h.settings.updates <- false
	second := next()
	assert.False(t, second.AcceptingApplications)
	assert.Greater(t, second.Seq, first.Seq)
}

func TestPublicationsUseOptionalSession(t *testing.T) {
	h := newHarness()

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/publications", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[publicationListResponse](t, rec).Items, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/publications", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "kari@crust.no"))
	rec = h.do(req)
	assert.Len(t, decode[publicationListResponse](t, rec).Items, 2)

	req = httptest.NewRequest(http.MethodGet, "/api/publications", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, h.content.sessions[2].IsAdmin)
}

func TestLocations(t *testing.T) {
	h := newHarness()
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/locations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[locationListResponse](t, rec).Items
	require.Len(t, items, 1)
	assert.Contains(t, items[0].MapsURL, "Crust+Sentrum")
}

func TestSession(t *testing.T) {
	h := newHarness()

	assert.Equal(t, http.StatusUnauthorized, h.do(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "kari@crust.no"))
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[identity.Session](t, rec)
	assert.True(t, session.IsAdmin)
	assert.Equal(t, "kari@crust.no", session.User.Email)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "kari@gmail.com"))
	rec = h.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Kun @crust.no-kontoer har admin-tilgang.", decode[common.ErrorResponse](t, rec).Error)
}
