// Package service implements the application's business rules on top of the repositories.
package service

import (
	"errors"
	"time"

	"agora/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "agora-api"
	tokenAudience = "agora-client"
)

// ErrInvalidToken is returned for every token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims are the claims carried by access and refresh tokens.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair is the credential pair handed to a client on login or reissue.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenConfig holds signing secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// TokenService signs and verifies HS256 tokens.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{cfg: cfg, now: time.Now}
}

// RefreshConfigured reports whether refresh tokens can be issued and verified.
func (s *TokenService) RefreshConfigured() bool {
	return s.cfg.RefreshSecret != ""
}

// IssuePair signs a fresh access and refresh token for the user.
func (s *TokenService) IssuePair(userID, email string) (TokenPair, error) {
	access, err := s.sign(userID, email, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if !s.RefreshConfigured() {
		return TokenPair{}, models.NewConfigurationError("refresh token secret is not configured")
	}
	refresh, err := s.sign(userID, email, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccess(token string) (*TokenClaims, error) {
	return s.verify(token, s.cfg.AccessSecret)
}

func (s *TokenService) VerifyRefresh(token string) (*TokenClaims, error) {
	if !s.RefreshConfigured() {
		return nil, models.NewConfigurationError("refresh token secret is not configured")
	}
	return s.verify(token, s.cfg.RefreshSecret)
}

// VerifyAccessIdentity verifies an access token and returns the identity it names.
func (s *TokenService) VerifyAccessIdentity(token string) (models.AuthenticatedIdentity, error) {
	claims, err := s.VerifyAccess(token)
	if err != nil {
		return models.AuthenticatedIdentity{}, err
	}
	return models.AuthenticatedIdentity{UserID: claims.Subject, Email: claims.Email}, nil
}

func (s *TokenService) sign(userID, email, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", models.NewConfigurationError("token secret is not configured")
	}
	now := s.now()
	claims := TokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

func (s *TokenService) verify(token, secret string) (*TokenClaims, error) {
	if token == "" || secret == "" {
		return nil, ErrInvalidToken
	}
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
