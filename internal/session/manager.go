package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lienzo/lienzo-go/internal/logging"
	"github.com/lienzo/lienzo-go/internal/models"
)

// DefaultTokenTTL is the client-side expiry estimate applied when the issued
// token does not carry a parseable expiry of its own.
const DefaultTokenTTL = 15 * time.Minute

// Authenticator performs the credential round trips backing Login and Register.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (Grant, error)
	Login(ctx context.Context, username, password string) (Grant, error)
}

// ProfileFetcher resolves full user details, used to back-fill the avatar URL.
type ProfileFetcher interface {
	UserByID(ctx context.Context, id int64) (models.UserDetails, error)
}

// Manager is the single source of truth for "who is logged in". Every
// mutating operation writes through to the Store before returning, so a
// process restart immediately afterwards observes the same logical state.
type Manager struct {
	store    Store
	auth     Authenticator
	profiles ProfileFetcher
	ttl      time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewManager constructs a Manager over the given store. auth is required;
// profiles may be nil when avatar back-fill is not needed.
func NewManager(store Store, auth Authenticator, profiles ProfileFetcher) *Manager {
	if store == nil {
		panic("session: store must not be nil")
	}
	return &Manager{
		store:    store,
		auth:     auth,
		profiles: profiles,
		ttl:      DefaultTokenTTL,
		now:      time.Now,
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (m *Manager) WithNowFunc(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Register creates an account and persists the resulting session. Transport
// and validation errors propagate unchanged so callers can distinguish them.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	if m.auth == nil {
		return errors.New("session: authenticator not configured")
	}
	grant, err := m.auth.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	return m.adopt(ctx, username, grant)
}

// Login verifies credentials and persists the resulting session. An invalid
// credential failure surfaces as the transport layer's sentinel so callers
// can present a targeted message.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if m.auth == nil {
		return errors.New("session: authenticator not configured")
	}
	grant, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return m.adopt(ctx, username, grant)
}

// LoginWithToken stores a pre-issued token from the identity-provider
// redirect flow. No session metadata is available at this point; derived
// fields stay empty until the profile is synced.
func (m *Manager) LoginWithToken(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session: token must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeToken(ctx, token)
}

// Logout clears the token, session metadata, and expiry. The resulting state
// is indistinguishable from never having logged in.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ClearStore(ctx, m.store)
}

// UpdateSession merges a partial patch into the stored session blob without
// touching the token. It is safe against an empty or corrupt stored blob.
func (m *Manager) UpdateSession(ctx context.Context, patch Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.store.Get(ctx, KeySession)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	blob := decodeBlob(raw)

	if patch.Username != "" {
		blob.Username = patch.Username
	}
	if patch.Email != "" {
		blob.Email = patch.Email
	}
	if patch.ProfilePictureURL != "" {
		blob.ProfilePictureURL = patch.ProfilePictureURL
	}

	encoded, err := blob.encode()
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.Set(ctx, KeySession, encoded)
}

// Identity returns the derived view of the current session. Whenever the
// stored token is empty or absent, every field reads as zero regardless of
// any metadata still present in the store.
func (m *Manager) Identity(ctx context.Context) Identity {
	token, err := m.store.Get(ctx, KeyToken)
	if err != nil || token == "" {
		return Identity{}
	}

	blob := Blob{}
	if raw, err := m.store.Get(ctx, KeySession); err == nil {
		blob = decodeBlob(raw)
	}

	id := Identity{
		UserID:            blob.UserID,
		Username:          blob.Username,
		Email:             blob.Email,
		Role:              blob.Role,
		ProfilePictureURL: blob.ProfilePictureURL,
		Token:             token,
	}

	if raw, err := m.store.Get(ctx, KeyExpiresOn); err == nil {
		if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
			id.ExpiresOn = time.UnixMilli(millis)
		}
	}

	return id
}

// Token returns the current bearer token, or empty when unauthenticated.
func (m *Manager) Token(ctx context.Context) string {
	token, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return ""
	}
	return token
}

// SyncProfilePicture lazily back-fills the avatar URL into the session blob
// when the stored snapshot predates an avatar upload. It is a no-op when
// unauthenticated, when the avatar is already known, or when no profile
// fetcher is configured.
func (m *Manager) SyncProfilePicture(ctx context.Context) error {
	if m.profiles == nil {
		return nil
	}

	id := m.Identity(ctx)
	if !id.LoggedIn() || id.UserID == 0 || id.ProfilePictureURL != "" {
		return nil
	}

	details, err := m.profiles.UserByID(ctx, id.UserID)
	if err != nil {
		logging.FromContext(ctx).Warn("profile picture sync failed", "userId", id.UserID, "error", err)
		return err
	}
	if details.ProfilePictureURL == "" {
		return nil
	}
	return m.UpdateSession(ctx, Patch{ProfilePictureURL: details.ProfilePictureURL})
}

func (m *Manager) adopt(ctx context.Context, username string, grant Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob := Blob{
		UserID:   grant.UserID,
		Username: username,
		Email:    grant.Email,
		Role:     grant.Role,
	}
	encoded, err := blob.encode()
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, KeySession, encoded); err != nil {
		return err
	}
	return m.storeToken(ctx, grant.Token)
}

func (m *Manager) storeToken(ctx context.Context, token string) error {
	if err := m.store.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	expiresOn := m.expiryFor(token)
	return m.store.Set(ctx, KeyExpiresOn, strconv.FormatInt(expiresOn.UnixMilli(), 10))
}

// expiryFor prefers the token's own exp claim over the fixed client-side
// estimate. The token is parsed without signature verification; the client
// holds no keys and the server remains the authority either way.
func (m *Manager) expiryFor(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && !exp.IsZero() {
			return exp.Time
		}
	}
	return m.now().Add(m.ttl)
}

// ClearStore removes every session key from the store. It backs both Logout
// and the transport's forced-logout path after a failed refresh.
func ClearStore(ctx context.Context, store Store) error {
	var firstErr error
	for _, key := range []string{KeyToken, KeySession, KeyExpiresOn} {
		if err := store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
