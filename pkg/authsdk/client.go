package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the chat authentication service.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// RefreshBuffer is how long before expiry a Session refreshes its token.
	// Default: 30s
	RefreshBuffer time.Duration
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		RefreshBuffer: 30 * time.Second,
	}
}

// Register creates an account and returns its first access token.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", "", req)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for an access token.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges accessToken, which may already be expired, for a new
// one. The old token stops working.
func (c *SDKClient) Refresh(ctx context.Context, accessToken string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthenticateWithPassword logs in and wraps the token in a Session.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	auth, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromToken(auth.AccessToken, auth.ExpiresIn), nil
}

// RegisterAndAuthenticate registers an account and returns a Session for it.
func (c *SDKClient) RegisterAndAuthenticate(ctx context.Context, req RegisterRequest) (*Session, error) {
	auth, err := c.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromToken(auth.AccessToken, auth.ExpiresIn), nil
}

// NewSessionFromToken creates a Session from a token obtained elsewhere.
// The session still refreshes the token when it nears expiry.
func (c *SDKClient) NewSessionFromToken(accessToken string, expiresIn int) *Session {
	return &Session{
		client:      c,
		accessToken: accessToken,
		expiresAt:   c.expiry(expiresIn),
		now:         time.Now,
	}
}

func (c *SDKClient) expiry(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn)*time.Second - c.RefreshBuffer)
}
