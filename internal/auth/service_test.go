package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ticket-pesa/ticket_pesa/internal/config"
	"github.com/ticket-pesa/ticket_pesa/internal/identity"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func registerUser(t *testing.T, repo identity.Repository) identity.User {
	t.Helper()
	user, err := identity.NewService(repo).Register(context.Background(), identity.Credentials{
		Name: "Asha", Email: "asha@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestIssueAndVerify(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registerUser(t, repo)
	svc := NewService(repo, testConfig())

	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	got, err := svc.VerifyAccess(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}

	if _, err := svc.VerifyAccess(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not verify as access token, got %v", err)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registerUser(t, repo)
	svc := NewService(repo, testConfig())

	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.VerifyAccess(context.Background(), next.AccessToken); err != nil {
		t.Fatalf("verify refreshed access: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
}

func TestLogoutInvalidatesTokens(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registerUser(t, repo)
	svc := NewService(repo, testConfig())

	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if err := svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.VerifyAccess(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token after logout, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid refresh after logout, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	repo := identity.NewMemoryRepository()
	user := registerUser(t, repo)
	svc := NewService(repo, testConfig())

	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.VerifyAccess(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}
