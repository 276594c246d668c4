package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/cliniqor/cliniqor-api/internal/config"
	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
	apperrors "github.com/cliniqor/cliniqor-api/pkg/errors"
	"github.com/cliniqor/cliniqor-api/pkg/token"
)

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,email"
)

// Provider bundles an oauth2 client config with the userinfo endpoint used
// to read the authenticated profile.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

// Authenticator runs the OAuth login flow for the configured providers. It
// is an explicit instance constructed from configuration; nothing is
// registered process-wide.
type Authenticator struct {
	providers map[string]*Provider
	states    StateStore
	users     repository.UserRepository
	tokenSvc  token.Service
}

func NewAuthenticator(cfg config.OAuthConfig, states StateStore, users repository.UserRepository, tokenSvc token.Service) *Authenticator {
	providers := map[string]*Provider{}

	if cfg.Google.ClientID != "" {
		providers[model.ProviderGoogle] = &Provider{
			Name: model.ProviderGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Google.RedirectURL,
				Scopes:       []string{"profile", "email"},
				Endpoint:     endpoints.Google,
			},
			UserInfoURL: googleUserInfoURL,
		}
	}

	if cfg.Facebook.ClientID != "" {
		providers[model.ProviderFacebook] = &Provider{
			Name: model.ProviderFacebook,
			Config: &oauth2.Config{
				ClientID:     cfg.Facebook.ClientID,
				ClientSecret: cfg.Facebook.ClientSecret,
				RedirectURL:  cfg.Facebook.RedirectURL,
				Scopes:       []string{"email"},
				Endpoint:     endpoints.Facebook,
			},
			UserInfoURL: facebookUserInfoURL,
		}
	}

	return &Authenticator{
		providers: providers,
		states:    states,
		users:     users,
		tokenSvc:  tokenSvc,
	}
}

// AuthCodeURL issues a fresh state nonce and returns the provider's consent
// page URL.
func (a *Authenticator) AuthCodeURL(ctx context.Context, provider string) (string, error) {
	p, ok := a.providers[provider]
	if !ok {
		return "", apperrors.NotFound("provider", nil)
	}

	state := uuid.New().String()
	if err := a.states.Put(ctx, state, provider); err != nil {
		return "", apperrors.Internal(err)
	}
	return p.Config.AuthCodeURL(state), nil
}

// HandleCallback validates the state, exchanges the code, reads the
// provider profile and resolves it to a user: by provider id first, then by
// email (linking the provider to the existing account), else a new
// provider-only account. Returns a signed bearer token.
func (a *Authenticator) HandleCallback(ctx context.Context, provider, state, code string) (string, error) {
	p, ok := a.providers[provider]
	if !ok {
		return "", apperrors.NotFound("provider", nil)
	}

	issuedFor, err := a.states.Consume(ctx, state)
	if err != nil || issuedFor != provider {
		return "", apperrors.Unauthorized("invalid oauth state")
	}

	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return "", apperrors.Unauthorized("oauth code exchange failed")
	}

	profile, err := a.fetchProfile(ctx, p, tok)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	user, err := a.resolveUser(ctx, provider, profile)
	if err != nil {
		return "", err
	}

	signed, err := a.tokenSvc.Generate(user.ID)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return signed, nil
}

func (a *Authenticator) fetchProfile(ctx context.Context, p *Provider, tok *oauth2.Token) (*model.OAuthProfile, error) {
	client := p.Config.Client(ctx, tok)
	resp, err := client.Get(p.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s profile: %w", p.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s userinfo returned status %d", p.Name, resp.StatusCode)
	}

	var body struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode %s profile: %w", p.Name, err)
	}
	if body.ID == "" {
		return nil, fmt.Errorf("%s profile has no id", p.Name)
	}

	return &model.OAuthProfile{ProviderID: body.ID, Email: body.Email}, nil
}

func (a *Authenticator) resolveUser(ctx context.Context, provider string, profile *model.OAuthProfile) (*model.User, error) {
	user, err := a.users.GetByProviderID(ctx, provider, profile.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	if profile.Email != "" {
		existing, err := a.users.GetByEmail(ctx, profile.Email)
		if err == nil {
			if err := a.users.LinkProvider(ctx, existing.ID, provider, profile.ProviderID); err != nil {
				return nil, apperrors.Internal(err)
			}
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
	}

	user = &model.User{Base: model.Base{ID: uuid.New()}}
	if profile.Email != "" {
		email := profile.Email
		user.Email = &email
	}
	providerID := profile.ProviderID
	switch provider {
	case model.ProviderGoogle:
		user.GoogleID = &providerID
	case model.ProviderFacebook:
		user.FacebookID = &providerID
	}

	if err := a.users.Create(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
