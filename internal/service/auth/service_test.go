package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
	apperrors "github.com/cliniqor/cliniqor-api/pkg/errors"
	"github.com/cliniqor/cliniqor-api/pkg/token"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.Email != nil {
		for _, u := range r.users {
			if u.Email != nil && *u.Email == *user.Email {
				return repository.ErrDuplicateEmail
			}
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		switch provider {
		case model.ProviderGoogle:
			if u.GoogleID != nil && *u.GoogleID == providerID {
				cp := *u
				return &cp, nil
			}
		case model.ProviderFacebook:
			if u.FacebookID != nil && *u.FacebookID == providerID {
				cp := *u
				return &cp, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) LinkProvider(_ context.Context, id uuid.UUID, provider, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch provider {
	case model.ProviderGoogle:
		u.GoogleID = &providerID
	case model.ProviderFacebook:
		u.FacebookID = &providerID
	}
	return nil
}

type noopEmail struct{}

func (noopEmail) SendWelcome(string) error { return nil }

func newTestService(repo repository.UserRepository) (Service, token.Service) {
	tokenSvc := token.NewJWTService("test-secret", time.Hour)
	return NewService(repo, tokenSvc, noopEmail{}), tokenSvc
}

func TestSignupThenLogin(t *testing.T) {
	svc, tokenSvc := newTestService(newFakeUserRepo())
	ctx := context.Background()

	user, err := svc.Signup(ctx, "d@x.com", "pw123456")
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "d@x.com", *user.Email)
	assert.True(t, user.HasLocalLogin())

	resp, err := svc.Login(ctx, "d@x.com", "pw123456")
	require.NoError(t, err)

	got, err := tokenSvc.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "d@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "d@x.com", "other-pw1")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "email", appErr.Fields[0].Field)
}

func TestSignupShortPassword(t *testing.T) {
	svc, _ := newTestService(newFakeUserRepo())

	_, err := svc.Signup(context.Background(), "d@x.com", "pw")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "d@x.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "d@x.com", "wrong-password")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
	assert.Equal(t, "invalid credentials", appErr.Message)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), "nobody@x.com", "pw123456")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
	// Unknown email and wrong password read the same to the caller.
	assert.Equal(t, "invalid credentials", appErr.Message)
}

func TestLoginProviderOnlyAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	email := "oauth-only@x.com"
	googleID := "google-123"
	require.NoError(t, repo.Create(ctx, &model.User{
		Base:     model.Base{ID: uuid.New()},
		Email:    &email,
		GoogleID: &googleID,
	}))

	_, err := svc.Login(ctx, email, "any-password")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestMe(t *testing.T) {
	svc, _ := newTestService(newFakeUserRepo())
	ctx := context.Background()

	user, err := svc.Signup(ctx, "d@x.com", "pw123456")
	require.NoError(t, err)

	got, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Me(ctx, uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
