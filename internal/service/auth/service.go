package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cliniqor/cliniqor-api/internal/email"
	"github.com/cliniqor/cliniqor-api/internal/model"
	"github.com/cliniqor/cliniqor-api/internal/repository"
	apperrors "github.com/cliniqor/cliniqor-api/pkg/errors"
	"github.com/cliniqor/cliniqor-api/pkg/security"
	"github.com/cliniqor/cliniqor-api/pkg/token"
)

const bcryptCost = 12

// Service exposes local authentication operations.
type Service interface {
	Signup(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	VerifyToken(tokenStr string) (uuid.UUID, error)
}

type service struct {
	users    repository.UserRepository
	hasher   security.PasswordHasher
	tokenSvc token.Service
	emailSvc email.Service
}

func NewService(users repository.UserRepository, tokenSvc token.Service, emailSvc email.Service) Service {
	return &service{
		users:    users,
		hasher:   security.NewBcryptHasher(bcryptCost),
		tokenSvc: tokenSvc,
		emailSvc: emailSvc,
	}
}

func (s *service) Signup(ctx context.Context, emailAddr, password string) (*model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooMin) {
			return nil, apperrors.Validation("validation failed", apperrors.FieldError{
				Field:   "password",
				Message: fmt.Sprintf("password must be at least %d characters long", security.MinPasswordLen),
			})
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        &emailAddr,
		PasswordHash: &hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("validation failed", apperrors.FieldError{
				Field:   "email",
				Message: "email already registered",
			})
		}
		return nil, apperrors.Internal(err)
	}

	// Welcome mail is best effort and must not delay the response.
	go func(to string) {
		if err := s.emailSvc.SendWelcome(to); err != nil {
			log.Warn().Err(err).Str("email", to).Msg("welcome email failed")
		}
	}(emailAddr)

	return user, nil
}

func (s *service) Login(ctx context.Context, emailAddr, password string) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Internal(err)
	}

	// Provider-only accounts have no hash; they fail the same way a wrong
	// password does.
	if !user.HasLocalLogin() {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	if err := s.hasher.Compare(*user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	signed, err := s.tokenSvc.Generate(user.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	return &model.TokenResponse{Token: signed}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *service) VerifyToken(tokenStr string) (uuid.UUID, error) {
	return s.tokenSvc.Verify(tokenStr)
}
