package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lienzo/lienzo-go/internal/session"
)

// AuthService wraps the credential endpoints.
type AuthService struct {
	client *Client
}

// NewAuthService constructs an AuthService over the shared client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Register creates an account. Validation failures (400) propagate as *Error
// with any field detail the server included.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (session.Grant, error) {
	var resp authResponse
	err := s.client.doJSON(ctx, http.MethodPost, "/auth/register", nil,
		registerRequest{Username: username, Email: email, Password: password}, &resp)
	if err != nil {
		return session.Grant{}, err
	}
	return grantFrom(resp), nil
}

// Login verifies credentials. A 401 surfaces as ErrInvalidCredentials so the
// caller can present a targeted message instead of a generic failure.
func (s *AuthService) Login(ctx context.Context, username, password string) (session.Grant, error) {
	var resp authResponse
	err := s.client.doJSON(ctx, http.MethodPost, "/auth/login", nil,
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			return session.Grant{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return session.Grant{}, err
	}
	return grantFrom(resp), nil
}

// ForgotPassword requests a password-recovery email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.client.doJSON(ctx, http.MethodPost, "/auth/forgot-password", nil,
		map[string]string{"email": email}, nil)
}

// ResetPassword redeems a recovery token for a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.client.doJSON(ctx, http.MethodPost, "/auth/reset-password", nil,
		map[string]string{"token": token, "newPassword": newPassword}, nil)
}

func grantFrom(resp authResponse) session.Grant {
	return session.Grant{
		Token:  resp.Token,
		UserID: resp.UserID,
		Email:  resp.Email,
		Role:   resp.Role,
	}
}
