package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("token is not valid")
)

// Service issues and verifies signed bearer tokens.
type Service interface {
	Generate(userID uuid.UUID) (string, error)
	Verify(token string) (uuid.UUID, error)
}

// UserClaim is the identity embedded in a token.
type UserClaim struct {
	ID string `json:"id"`
}

// Claims keeps the `{"user":{"id":...}}` payload shape the web client
// already decodes.
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService returns an HS256 token service. Tokens expire after the
// given duration; there is no refresh mechanism.
func NewJWTService(secret string, expiry time.Duration) Service {
	return &jwtService{
		secret: []byte(secret),
		expiry: expiry,
	}
}

func (s *jwtService) Generate(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		User: UserClaim{ID: userID.String()},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) Verify(tokenStr string) (uuid.UUID, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.User.ID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
