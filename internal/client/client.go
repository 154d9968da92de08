// Package client talks to the content API over its {ok, data, error} envelope.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/session"
)

const DefaultTimeout = 20 * time.Second

// ErrNotOK matches every request the API rejected or that never completed.
var ErrNotOK = errors.New("request failed")

// Error carries the server's message for a rejected request. Status is 0
// when the body said ok:false on a 2xx.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == ErrNotOK }

// Message returns a short user-facing description of err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return "Request failed"
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type Client struct {
	baseURL string
	client  *http.Client
	session *session.Session
}

// New returns a client for baseURL (e.g. https://example.org/api). Requests
// carry the session's bearer token when there is one.
func New(baseURL string, sess *session.Session) *Client {
	if sess == nil {
		sess = session.New()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		session: sess,
	}
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

func (c *Client) Session() *session.Session { return c.session }

// do issues one request. It reports whether the envelope carried data.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %s %s: %v", ErrNotOK, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: failed to read response body: %v", ErrNotOK, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return false, &Error{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return false, &Error{Message: "invalid response body"}
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = "Request failed"
		}
		return false, &Error{Message: msg}
	}

	hasData := len(env.Data) > 0 && string(env.Data) != "null"
	if hasData && out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return false, fmt.Errorf("failed to decode %s %s data: %w", method, path, err)
		}
	}
	return hasData, nil
}

type loginResponse struct {
	Token string         `json:"token"`
	User  model.AuthUser `json:"user"`
}

// Login exchanges credentials for a bearer token. It does not touch the session.
func (c *Client) Login(ctx context.Context, email, password string) (string, model.AuthUser, error) {
	var out loginResponse
	ok, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return "", model.AuthUser{}, err
	}
	if !ok || out.Token == "" {
		return "", model.AuthUser{}, &Error{Message: "Login failed"}
	}
	return out.Token, out.User, nil
}

// GetSite reports ok=false when the server has no site document yet.
func (c *Client) GetSite(ctx context.Context) (model.SiteConfig, bool, error) {
	var out model.SiteConfig
	ok, err := c.do(ctx, http.MethodGet, "/content/site", nil, &out)
	return out, ok, err
}

func (c *Client) PutSite(ctx context.Context, patch map[string]any) (model.SiteConfig, error) {
	var out model.SiteConfig
	ok, err := c.do(ctx, http.MethodPut, "/content/site", patch, &out)
	if err != nil {
		return model.SiteConfig{}, err
	}
	if !ok {
		return model.SiteConfig{}, &Error{Message: "Save failed"}
	}
	return out, nil
}

// List decodes the full collection at resource (e.g. "events") into out.
func (c *Client) List(ctx context.Context, resource string, out any) error {
	_, err := c.do(ctx, http.MethodGet, "/"+resource, nil, out)
	return err
}

// Create reports whether the server returned the created row into out.
func (c *Client) Create(ctx context.Context, resource string, payload, out any) (bool, error) {
	return c.do(ctx, http.MethodPost, "/"+resource, payload, out)
}

func (c *Client) Update(ctx context.Context, resource, id string, payload, out any) (bool, error) {
	return c.do(ctx, http.MethodPut, "/"+resource+"/"+url.PathEscape(id), payload, out)
}

func (c *Client) Delete(ctx context.Context, resource, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/"+resource+"/"+url.PathEscape(id), nil, nil)
	return err
}
