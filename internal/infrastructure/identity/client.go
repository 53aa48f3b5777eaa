// Package identity resolves bearer tokens against an external identity
// service. The service is the single authority on who a token belongs
// to; this client never inspects token contents.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// UserForToken exchanges a bearer token for the user it identifies. An
// unknown or expired token is reported as domain.ErrUnauthorized; any
// other failure is temporary from the caller's point of view.
func (c *Client) UserForToken(ctx context.Context, token string) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, domain.WrapError(domain.ErrUnauthorized, "resolve token", errors.New("empty token"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/users/me", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.User{}, domain.WrapError(domain.ErrTemporary, "resolve token", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return domain.User{}, domain.WrapError(domain.ErrUnauthorized, "resolve token", fmt.Errorf("identity status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return domain.User{}, domain.WrapError(domain.ErrTemporary, "resolve token", fmt.Errorf("identity status %d", resp.StatusCode))
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.User{}, domain.WrapError(domain.ErrTemporary, "resolve token", fmt.Errorf("decode user: %w", err))
	}
	if payload.ID == "" {
		return domain.User{}, domain.WrapError(domain.ErrUnauthorized, "resolve token", errors.New("identity returned no user id"))
	}
	return domain.User{ID: payload.ID}, nil
}
