package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ticket-pesa/ticket_pesa/internal/config"
	"github.com/ticket-pesa/ticket_pesa/internal/identity"
)

// ErrInvalidToken is returned for malformed, expired or revoked tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenPair carries an access token and the refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service issues and refreshes JWT pairs for authenticated users.
type Service struct {
	users identity.Repository
	cfg   *config.Config
	now   func() time.Time
}

// NewService creates an auth service bound to the user store.
func NewService(users identity.Repository, cfg *config.Config) *Service {
	return &Service{users: users, cfg: cfg, now: time.Now}
}

// IssuePair mints access and refresh tokens for a user.
func (s *Service) IssuePair(user identity.User) (TokenPair, error) {
	access, err := s.sign(user, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(user, []byte(s.cfg.RefreshSecret), s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token and mints a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	user, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return TokenPair{}, err
	}
	return s.IssuePair(user)
}

// Logout bumps the user's token version so outstanding tokens stop verifying.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.UpdateTokenVersion(ctx, userID, user.TokenVersion+1)
}

// VerifyAccess checks an access token and returns the owning user.
func (s *Service) VerifyAccess(ctx context.Context, accessToken string) (identity.User, error) {
	claims, err := ParseAndVerifyHS256(accessToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return identity.User{}, ErrInvalidToken
	}
	return s.userFromClaims(ctx, claims)
}

func (s *Service) sign(user identity.User, secret []byte, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"ver":   user.TokenVersion,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return SignHS256(claims, secret)
}

func (s *Service) userFromClaims(ctx context.Context, claims map[string]any) (identity.User, error) {
	exp, ok := claims["exp"].(float64)
	if !ok || s.now().UTC().Unix() >= int64(exp) {
		return identity.User{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return identity.User{}, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, sub)
	if err != nil {
		return identity.User{}, ErrInvalidToken
	}
	ver, ok := claims["ver"].(float64)
	if !ok || int(ver) != user.TokenVersion {
		return identity.User{}, ErrInvalidToken
	}
	return user, nil
}
