package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeAuthenticator struct {
	grant Grant
	err   error
}

func (f *fakeAuthenticator) Register(_ context.Context, _, _, _ string) (Grant, error) {
	return f.grant, f.err
}

func (f *fakeAuthenticator) Login(_ context.Context, _, _ string) (Grant, error) {
	return f.grant, f.err
}

func TestManagerLoginPersistsSession(t *testing.T) {
	store := NewMemoryStore()
	auth := &fakeAuthenticator{grant: Grant{
		Token:  "opaque-token",
		UserID: 42,
		Email:  "ana@example.com",
		Role:   "USER",
	}}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager := NewManager(store, auth, nil).WithNowFunc(func() time.Time { return now })

	if err := manager.Login(context.Background(), "ana", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	id := manager.Identity(context.Background())
	if !id.LoggedIn() {
		t.Fatal("expected logged-in identity")
	}
	if id.UserID != 42 || id.Username != "ana" || id.Email != "ana@example.com" || id.Role != "USER" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if id.Token != "opaque-token" {
		t.Fatalf("unexpected token %q", id.Token)
	}

	wantExpiry := now.Add(DefaultTokenTTL)
	if got := id.ExpiresOn; got.Unix() != wantExpiry.Unix() {
		t.Fatalf("expected expiry %v got %v", wantExpiry, got)
	}
}

func TestManagerUsesTokenExpiryWhenPresent(t *testing.T) {
	exp := time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	store := NewMemoryStore()
	auth := &fakeAuthenticator{grant: Grant{Token: token, UserID: 42}}
	manager := NewManager(store, auth, nil)

	if err := manager.Login(context.Background(), "ana", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	id := manager.Identity(context.Background())
	if id.ExpiresOn.Unix() != exp.Unix() {
		t.Fatalf("expected token exp %v got %v", exp, id.ExpiresOn)
	}
}

func TestManagerIdentityCollapsesWithoutToken(t *testing.T) {
	store := NewMemoryStore()
	// Stale metadata without a token must never imply authentication.
	if err := store.Set(context.Background(), KeySession, `{"userId":7,"username":"ghost","role":"ADMIN"}`); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	manager := NewManager(store, &fakeAuthenticator{}, nil)

	id := manager.Identity(context.Background())
	if id.LoggedIn() {
		t.Fatal("expected logged-out identity")
	}
	if id.UserID != 0 || id.Username != "" || id.Role != "" {
		t.Fatalf("expected collapsed identity, got %+v", id)
	}
}

func TestManagerLogoutLeavesNoTrace(t *testing.T) {
	store := NewMemoryStore()
	auth := &fakeAuthenticator{grant: Grant{Token: "tok", UserID: 1}}
	manager := NewManager(store, auth, nil)

	if err := manager.Login(context.Background(), "ana", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := manager.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if id := manager.Identity(context.Background()); id.LoggedIn() {
		t.Fatalf("expected empty identity after logout, got %+v", id)
	}

	// A fresh manager over the same store simulates a page reload.
	reloaded := NewManager(store, auth, nil)
	if id := reloaded.Identity(context.Background()); id.LoggedIn() || id.UserID != 0 {
		t.Fatalf("expected no persisted state after logout, got %+v", id)
	}
	for _, key := range []string{KeyToken, KeySession, KeyExpiresOn} {
		if store.Has(key) {
			t.Fatalf("expected key %q to be deleted", key)
		}
	}
}

func TestManagerUpdateSessionMergesPatch(t *testing.T) {
	store := NewMemoryStore()
	auth := &fakeAuthenticator{grant: Grant{Token: "tok", UserID: 9, Email: "bo@example.com", Role: "USER"}}
	manager := NewManager(store, auth, nil)

	if err := manager.Login(context.Background(), "bo", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.UpdateSession(context.Background(), Patch{ProfilePictureURL: "https://cdn.lienzo.app/a.png"}); err != nil {
		t.Fatalf("update session: %v", err)
	}

	id := manager.Identity(context.Background())
	if id.ProfilePictureURL != "https://cdn.lienzo.app/a.png" {
		t.Fatalf("expected avatar url, got %q", id.ProfilePictureURL)
	}
	if id.Username != "bo" || id.UserID != 9 {
		t.Fatalf("patch clobbered unrelated fields: %+v", id)
	}
}

func TestManagerUpdateSessionToleratesCorruptBlob(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set(context.Background(), KeySession, "{definitely not json"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := store.Set(context.Background(), KeyToken, "tok"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	manager := NewManager(store, &fakeAuthenticator{}, nil)
	if err := manager.UpdateSession(context.Background(), Patch{Username: "fixed"}); err != nil {
		t.Fatalf("update session: %v", err)
	}

	id := manager.Identity(context.Background())
	if id.Username != "fixed" {
		t.Fatalf("expected patched username, got %+v", id)
	}
}

func TestManagerLoginWithToken(t *testing.T) {
	store := NewMemoryStore()
	manager := NewManager(store, &fakeAuthenticator{}, nil)

	if err := manager.LoginWithToken(context.Background(), "redirect-token"); err != nil {
		t.Fatalf("login with token: %v", err)
	}

	id := manager.Identity(context.Background())
	if !id.LoggedIn() || id.Token != "redirect-token" {
		t.Fatalf("expected token-only identity, got %+v", id)
	}
	if id.UserID != 0 || id.Username != "" {
		t.Fatalf("expected empty metadata, got %+v", id)
	}

	if err := manager.LoginWithToken(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestManagerLoginFailureStoresNothing(t *testing.T) {
	store := NewMemoryStore()
	auth := &fakeAuthenticator{err: errors.New("invalid credentials")}
	manager := NewManager(store, auth, nil)

	if err := manager.Login(context.Background(), "ana", "wrong"); err == nil {
		t.Fatal("expected login error")
	}
	if store.Has(KeyToken) || store.Has(KeySession) {
		t.Fatal("expected no session state after failed login")
	}
}
