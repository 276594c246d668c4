package patient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniqor/cliniqor-api/internal/middleware"
	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
	patientsvc "github.com/cliniqor/cliniqor-api/internal/service/patient"
	"github.com/cliniqor/cliniqor-api/pkg/token"
)

// fakePatientRepo backs the real service so the handler test exercises the
// full request path below the router.
type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) List(_ context.Context, doctorID uuid.UUID, category string) ([]*model.Patient, error) {
	out := []*model.Patient{}
	for _, p := range r.patients {
		if p.DoctorID == doctorID && p.Category == category {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	if _, ok := r.patients[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	repo     *fakePatientRepo
	tokenSvc token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	tokenSvc := token.NewJWTService("test-secret", time.Hour)
	h := NewHandler(patientsvc.NewService(repo))

	r := gin.New()
	api := r.Group("/api", middleware.NewAuthMiddleware(tokenSvc).Authenticate())
	h.RegisterRoutes(api)

	return &testEnv{router: r, repo: repo, tokenSvc: tokenSvc}
}

func (e *testEnv) request(t *testing.T, doctorID uuid.UUID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := e.tokenSvc.Generate(doctorID)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.HeaderAuthToken, tok)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCreatePatientEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doctorID := uuid.New()

	w := env.request(t, doctorID, http.MethodPost, "/api/patients",
		`{"name":"Jane Doe","caseSummary":"fever","category":"opd"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"Jane Doe"`)
	assert.Len(t, env.repo.patients, 1)
}

func TestCreatePatientValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, uuid.New(), http.MethodPost, "/api/patients",
		`{"name":"Jane Doe","caseSummary":"fever","category":"icu"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "category")
	assert.Empty(t, env.repo.patients)
}

func TestCreatePatientWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/patients",
		strings.NewReader(`{"name":"Jane Doe","caseSummary":"fever","category":"opd"}`))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"msg":"No token, authorization denied"}`, w.Body.String())
}

func TestGetPatientFromAnotherDoctor(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()

	created := env.request(t, owner, http.MethodPost, "/api/patients",
		`{"name":"Jane Doe","caseSummary":"fever","category":"opd"}`)
	require.Equal(t, http.StatusCreated, created.Code)

	var id uuid.UUID
	for pid := range env.repo.patients {
		id = pid
	}

	w := env.request(t, uuid.New(), http.MethodGet, "/api/patients/details/"+id.String(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPatientBadID(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, uuid.New(), http.MethodGet, "/api/patients/details/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid patient ID")
}

func TestListPatientsByCategory(t *testing.T) {
	env := newTestEnv(t)
	doctorID := uuid.New()

	for _, body := range []string{
		`{"name":"A","caseSummary":"x","category":"opd"}`,
		`{"name":"B","caseSummary":"y","category":"ward"}`,
	} {
		w := env.request(t, doctorID, http.MethodPost, "/api/patients", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.request(t, doctorID, http.MethodGet, "/api/patients/ward", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"B"`)
	assert.NotContains(t, w.Body.String(), `"A"`)
}

func TestDeletePatientEndpoint(t *testing.T) {
	env := newTestEnv(t)
	doctorID := uuid.New()

	created := env.request(t, doctorID, http.MethodPost, "/api/patients",
		`{"name":"Jane Doe","caseSummary":"fever","category":"opd"}`)
	require.Equal(t, http.StatusCreated, created.Code)

	var id uuid.UUID
	for pid := range env.repo.patients {
		id = pid
	}

	w := env.request(t, doctorID, http.MethodDelete, "/api/patients/"+id.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"msg":"Patient removed"}`, w.Body.String())
	assert.Empty(t, env.repo.patients)
}
