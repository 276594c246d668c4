package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/cliniqor/cliniqor-api/internal/model"
	apperrors "github.com/cliniqor/cliniqor-api/pkg/errors"
	"github.com/cliniqor/cliniqor-api/pkg/token"
)

// fakeProviderServer stands in for the OAuth provider: a token endpoint
// plus a userinfo endpoint returning the given profile.
func fakeProviderServer(t *testing.T, providerID, email string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-access-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%q,"email":%q}`, providerID, email)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAuthenticator(srv *httptest.Server, users *fakeUserRepo) *Authenticator {
	return &Authenticator{
		providers: map[string]*Provider{
			model.ProviderGoogle: {
				Name: model.ProviderGoogle,
				Config: &oauth2.Config{
					ClientID:     "client-id",
					ClientSecret: "client-secret",
					RedirectURL:  "http://localhost:5000/api/auth/google/callback",
					Endpoint: oauth2.Endpoint{
						AuthURL:  srv.URL + "/auth",
						TokenURL: srv.URL + "/token",
					},
				},
				UserInfoURL: srv.URL + "/userinfo",
			},
		},
		states:   NewMemoryStateStore(time.Minute),
		users:    users,
		tokenSvc: token.NewJWTService("test-secret", time.Hour),
	}
}

func callbackState(t *testing.T, a *Authenticator) string {
	t.Helper()
	authURL, err := a.AuthCodeURL(context.Background(), model.ProviderGoogle)
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestOAuthCallbackCreatesProviderOnlyUser(t *testing.T) {
	srv := fakeProviderServer(t, "g-123", "new-doc@x.com")
	users := newFakeUserRepo()
	a := newTestAuthenticator(srv, users)
	ctx := context.Background()

	state := callbackState(t, a)
	signed, err := a.HandleCallback(ctx, model.ProviderGoogle, state, "any-code")
	require.NoError(t, err)

	userID, err := a.tokenSvc.Verify(signed)
	require.NoError(t, err)

	created, err := users.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, created.GoogleID)
	assert.Equal(t, "g-123", *created.GoogleID)
	require.NotNil(t, created.Email)
	assert.Equal(t, "new-doc@x.com", *created.Email)
	assert.False(t, created.HasLocalLogin())
}

func TestOAuthCallbackLinksExistingEmail(t *testing.T) {
	srv := fakeProviderServer(t, "g-456", "doc@x.com")
	users := newFakeUserRepo()
	a := newTestAuthenticator(srv, users)
	ctx := context.Background()

	email := "doc@x.com"
	hash := "some-bcrypt-hash"
	local := &model.User{Base: model.Base{ID: uuid.New()}, Email: &email, PasswordHash: &hash}
	require.NoError(t, users.Create(ctx, local))

	state := callbackState(t, a)
	signed, err := a.HandleCallback(ctx, model.ProviderGoogle, state, "any-code")
	require.NoError(t, err)

	userID, err := a.tokenSvc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, local.ID, userID, "callback must resolve to the existing account")

	linked, err := users.Get(ctx, local.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "g-456", *linked.GoogleID)
}

func TestOAuthCallbackExistingProviderUser(t *testing.T) {
	srv := fakeProviderServer(t, "g-789", "doc@x.com")
	users := newFakeUserRepo()
	a := newTestAuthenticator(srv, users)
	ctx := context.Background()

	googleID := "g-789"
	existing := &model.User{Base: model.Base{ID: uuid.New()}, GoogleID: &googleID}
	require.NoError(t, users.Create(ctx, existing))

	state := callbackState(t, a)
	signed, err := a.HandleCallback(ctx, model.ProviderGoogle, state, "any-code")
	require.NoError(t, err)

	userID, err := a.tokenSvc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, userID)
	assert.Len(t, users.users, 1, "no duplicate account may be created")
}

func TestOAuthCallbackRejectsUnknownState(t *testing.T) {
	srv := fakeProviderServer(t, "g-1", "doc@x.com")
	a := newTestAuthenticator(srv, newFakeUserRepo())

	_, err := a.HandleCallback(context.Background(), model.ProviderGoogle, "forged-state", "any-code")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestOAuthCallbackStateIsSingleUse(t *testing.T) {
	srv := fakeProviderServer(t, "g-1", "doc@x.com")
	a := newTestAuthenticator(srv, newFakeUserRepo())
	ctx := context.Background()

	state := callbackState(t, a)
	_, err := a.HandleCallback(ctx, model.ProviderGoogle, state, "any-code")
	require.NoError(t, err)

	_, err = a.HandleCallback(ctx, model.ProviderGoogle, state, "any-code")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestAuthCodeURLUnknownProvider(t *testing.T) {
	srv := fakeProviderServer(t, "g-1", "doc@x.com")
	a := newTestAuthenticator(srv, newFakeUserRepo())

	_, err := a.AuthCodeURL(context.Background(), "github")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestMemoryStateStoreExpiry(t *testing.T) {
	store := NewMemoryStateStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", model.ProviderGoogle))
	time.Sleep(30 * time.Millisecond)

	_, err := store.Consume(ctx, "s1")
	assert.ErrorIs(t, err, ErrStateNotFound)
}
