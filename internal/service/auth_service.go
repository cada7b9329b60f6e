package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// MessageResponse is the body of operations that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthService manages accounts and the refresh token session of each user.
type AuthService struct {
	users      repository.UserRepository
	tokens     *TokenService
	bcryptCost int
}

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Nickname string
}

type LoginInput struct {
	Email    string
	Password string
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// SignUp registers a new account. A deleted account with the same email is revived
// with the new credentials.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (resp MessageResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "SignUp")
	defer func() {
		observability.RecordAuthEvent("signup", err)
		observability.EndSpan(span, err)
	}()

	email := strings.TrimSpace(in.Email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return MessageResponse{}, err
	}
	if existing != nil && existing.State.IsActive() {
		return MessageResponse{}, models.NewConflictError("email already in use")
	}

	holder, err := s.users.GetByNickname(ctx, in.Nickname)
	if err != nil {
		return MessageResponse{}, err
	}
	if holder != nil && (existing == nil || holder.ID != existing.ID) {
		return MessageResponse{}, models.NewConflictError("nickname already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return MessageResponse{}, models.NewInternalError(err)
	}

	if existing != nil {
		existing.State = models.StateActive
		existing.Name = in.Name
		existing.Nickname = in.Nickname
		existing.Password = string(hash)
		existing.RefreshToken = nil
		if err := s.users.Update(ctx, existing); err != nil {
			return MessageResponse{}, err
		}
		return MessageResponse{Message: "account restored"}, nil
	}

	user := &models.User{
		Email:    email,
		Name:     in.Name,
		Nickname: in.Nickname,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return MessageResponse{}, err
	}
	return MessageResponse{Message: "signup successful"}, nil
}

// Login checks the credentials and stores a freshly issued refresh token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (pair TokenPair, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Login")
	defer func() {
		observability.RecordAuthEvent("login", err)
		observability.EndSpan(span, err)
	}()

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return TokenPair{}, err
	}
	if user == nil || !user.State.IsActive() {
		return TokenPair{}, models.NewUnauthorizedError("email mismatch")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return TokenPair{}, models.NewUnauthorizedError("password mismatch")
	}

	pair, err = s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Logout clears the stored refresh token. Logging out twice is an error.
func (s *AuthService) Logout(ctx context.Context, identity models.AuthenticatedIdentity) (resp MessageResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Logout")
	defer func() {
		observability.RecordAuthEvent("logout", err)
		observability.EndSpan(span, err)
	}()

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return MessageResponse{}, err
	}
	if user == nil || !user.State.IsActive() {
		return MessageResponse{}, models.NewUnauthorizedError("user does not exist")
	}
	if !user.LoggedIn() {
		return MessageResponse{}, models.NewValidationError("already logged out")
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, nil); err != nil {
		return MessageResponse{}, err
	}
	return MessageResponse{Message: "logged out"}, nil
}

// ReissueToken rotates the session: the presented refresh token must be the one
// currently stored for its user.
func (s *AuthService) ReissueToken(ctx context.Context, refreshToken string) (pair TokenPair, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "ReissueToken")
	defer func() {
		observability.RecordAuthEvent("reissue", err)
		observability.EndSpan(span, err)
	}()

	if !s.tokens.RefreshConfigured() {
		return TokenPair{}, models.NewConfigurationError("refresh token secret is not configured")
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, models.NewUnauthorizedError("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return TokenPair{}, err
	}
	if user == nil || !user.State.IsActive() {
		return TokenPair{}, models.NewUnauthorizedError("user does not exist")
	}
	if !user.LoggedIn() || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return TokenPair{}, models.NewUnauthorizedError("refresh token mismatch")
	}

	pair, err = s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}
