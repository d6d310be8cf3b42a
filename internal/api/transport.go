package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/lienzo/lienzo-go/internal/logging"
	"github.com/lienzo/lienzo-go/internal/session"
)

// ErrSessionExpired is returned to the original caller when a silent refresh
// fails; the session has already been cleared by the time it surfaces.
var ErrSessionExpired = errors.New("session expired")

// authTransport attaches the current bearer token to every outgoing request
// and transparently recovers from a single class of failure: an expired
// token. A 401 on a non-auth endpoint triggers exactly one silent refresh
// and one resend; a second 401 propagates untouched because it indicates a
// revoked session, not a transient expiry.
type authTransport struct {
	base          http.RoundTripper
	store         session.Store
	refreshURL    string
	refreshClient *http.Client
	limiter       *rate.Limiter
	onExpired     func()

	// refreshes deduplicates concurrent refresh attempts: every caller that
	// hits a 401 during one expiry event awaits the same refresh call.
	refreshes singleflight.Group
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := time.Now()
	logger := logging.FromContext(ctx).With(
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
	)

	// The token is re-read from the store on every request so that a refresh
	// completed by a concurrent caller is picked up immediately.
	out, err := t.authorize(req, t.token(ctx))
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		logger.Warn("request failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isAuthEndpoint(req.URL.Path) || !replayable(req) {
		logger.Debug("request completed", "status", resp.StatusCode, "duration", time.Since(start))
		return resp, nil
	}

	// Token expired mid-session. Drop the 401 response and refresh once.
	_ = resp.Body.Close()

	token, err := t.refresh(ctx, t.tokenUsed(out))
	if err != nil {
		logger.Warn("silent refresh failed", "error", err)
		t.expire(ctx)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	retry, err := t.authorize(req, token)
	if err != nil {
		return nil, err
	}

	resp, err = t.base.RoundTrip(retry)
	if err != nil {
		logger.Warn("retried request failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	logger.Debug("request completed after refresh", "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

func (t *authTransport) token(ctx context.Context) string {
	token, err := t.store.Get(ctx, session.KeyToken)
	if err != nil {
		return ""
	}
	return token
}

// authorize clones req with the given bearer token attached. Requests with
// no token go out unauthenticated.
func (t *authTransport) authorize(req *http.Request, token string) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replay request body: %w", err)
		}
		clone.Body = body
	}
	if token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	} else {
		clone.Header.Del("Authorization")
	}
	return clone, nil
}

// tokenUsed recovers the bearer token a request went out with.
func (t *authTransport) tokenUsed(req *http.Request) string {
	return strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
}

// refresh performs the single-flight silent refresh against the dedicated
// endpoint. The call carries the ambient session cookie, never the expired
// bearer token. The new token is persisted before any caller resends.
func (t *authTransport) refresh(ctx context.Context, stale string) (string, error) {
	value, err, _ := t.refreshes.Do("refresh", func() (any, error) {
		// A concurrent caller may have refreshed while this request was in
		// flight; one refresh per expiry event is enough.
		if current := t.token(ctx); current != "" && current != stale {
			return current, nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build refresh request: %w", err)
		}

		resp, err := t.refreshClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("refresh request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, decodeError(resp)
		}

		var payload struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Token == "" {
			return nil, fmt.Errorf("%w: refresh response missing token", ErrMalformedResponse)
		}

		if err := t.store.Set(ctx, session.KeyToken, payload.Token); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}
		return payload.Token, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// expire clears every session key and notifies the front end. After this
// the process state is indistinguishable from never having logged in.
func (t *authTransport) expire(ctx context.Context) {
	if err := session.ClearStore(ctx, t.store); err != nil {
		logging.FromContext(ctx).Error("clear session after failed refresh", "error", err)
	}
	if t.onExpired != nil {
		t.onExpired()
	}
}

// isAuthEndpoint reports whether path belongs to the credential endpoints,
// where a 401 means "wrong credentials" and must never trigger a refresh.
func isAuthEndpoint(path string) bool {
	for _, suffix := range []string{"/auth/login", "/auth/register", "/auth/refresh"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// replayable reports whether the request body can be rewound for a resend.
func replayable(req *http.Request) bool {
	return req.Body == nil || req.GetBody != nil
}
