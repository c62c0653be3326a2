package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider is the hosted auth service that owns admin credentials.
// The back office never stores passwords itself; sign-in, invites and
// password changes all round-trip through this API.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResponse, error)
	GetUser(ctx context.Context, providerUserID string) (*User, error)
	InviteByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, providerUserID, newPassword string) error
	DeleteUser(ctx context.Context, providerUserID string) error
}

type providerClient struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	InvitedAt        *time.Time `json:"invited_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

type apiError struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Code    int    `json:"code"`
}

// Error is returned for non-2xx provider responses.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity provider: %s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	pe, ok := err.(*Error)
	return ok && pe.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a provider 400/401, which is
// what bad credentials come back as.
func IsUnauthorized(err error) bool {
	pe, ok := err.(*Error)
	return ok && (pe.StatusCode == http.StatusBadRequest || pe.StatusCode == http.StatusUnauthorized)
}

func NewProviderClient(baseURL, serviceKey string) Provider {
	return &providerClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *providerClient) SignInWithPassword(ctx context.Context, email, password string) (*SignInResponse, error) {
	body, err := c.makeRequest(ctx, http.MethodPost, "/token?grant_type=password", SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var resp SignInResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse sign-in response: %w", err)
	}
	return &resp, nil
}

func (c *providerClient) GetUser(ctx context.Context, providerUserID string) (*User, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, "/admin/users/"+providerUserID, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	return &user, nil
}

// InviteByEmail creates the account on the provider side and triggers its
// invitation email. The returned user carries the provider user ID we link
// to our admin_accounts row.
func (c *providerClient) InviteByEmail(ctx context.Context, email string) (*User, error) {
	body, err := c.makeRequest(ctx, http.MethodPost, "/admin/invite", inviteRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse invite response: %w", err)
	}
	return &user, nil
}

func (c *providerClient) UpdatePassword(ctx context.Context, providerUserID, newPassword string) error {
	_, err := c.makeRequest(ctx, http.MethodPut, "/admin/users/"+providerUserID, updatePasswordRequest{Password: newPassword})
	return err
}

func (c *providerClient) DeleteUser(ctx context.Context, providerUserID string) error {
	_, err := c.makeRequest(ctx, http.MethodDelete, "/admin/users/"+providerUserID, nil)
	return err
}

func (c *providerClient) makeRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		message := "request failed"
		if json.Unmarshal(respBytes, &apiErr) == nil {
			if apiErr.Message != "" {
				message = apiErr.Message
			} else if apiErr.Msg != "" {
				message = apiErr.Msg
			}
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: message}
	}

	return respBytes, nil
}
