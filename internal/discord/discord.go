// internal/discord/discord.go
//
// Minimal Discord OAuth2 client for the embedded activity.
//
// The activity iframe obtains an authorization code from the Discord client and posts
// it to /api/token. The server exchanges the code for an access token (the client
// secret never leaves the server) and looks up the user the token belongs to.

package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultAPIBase is Discord's REST root.
const DefaultAPIBase = "https://discord.com/api"

// ErrExchange is returned when Discord rejects an authorization code.
var ErrExchange = errors.New("token exchange failed")

// User is the subset of /users/@me the server needs.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
}

// DisplayName prefers the global display name.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

type Client struct {
	ClientID     string
	ClientSecret string
	APIBase      string
	HTTP         *http.Client
}

// NewClient returns a client with a bounded HTTP timeout.
func NewClient(clientID, clientSecret, apiBase string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		APIBase:      strings.TrimRight(apiBase, "/"),
		HTTP:         &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	status, err := c.do(req, &tr)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || tr.Error != "" || tr.AccessToken == "" {
		reason := tr.Error
		if reason == "" {
			reason = http.StatusText(status)
		}
		return "", fmt.Errorf("%w: %s", ErrExchange, reason)
	}
	return tr.AccessToken, nil
}

// CurrentUser returns the user an access token belongs to.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/users/@me", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var u User
	status, err := c.do(req, &u)
	if err != nil {
		return User{}, err
	}
	if status != http.StatusOK || u.ID == "" {
		return User{}, fmt.Errorf("%w: users/@me returned %d", ErrExchange, status)
	}
	return u, nil
}

// do executes req and decodes a JSON body into out regardless of status.
func (c *Client) do(req *http.Request, out any) (int, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("discord %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, err
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("discord %s: decode: %w", req.URL.Path, err)
		}
	}
	return resp.StatusCode, nil
}
