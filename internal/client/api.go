// Package client is the contact-management front end: an HTTP client for the
// contacts API, a reducer-style form/list state, and the App controller that
// ties them to a user interface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tbourn/go-contacts-backend/internal/domain"
	"github.com/tbourn/go-contacts-backend/internal/validate"
)

// DefaultBaseURL is the contacts collection URL used when none is configured.
const DefaultBaseURL = "http://localhost:5000/api/contacts"

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// APIError captures a non-2xx response from the contacts API.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Code       string // machine-readable code from the error envelope, if any
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("contacts api: %s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

// HTTPClient calls the contacts REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewHTTPClient returns a client for the collection at baseURL (for example
// http://localhost:5000/api/contacts). An empty baseURL means DefaultBaseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("contacts api: invalid base url %q", baseURL)
	}
	c := &HTTPClient{baseURL: baseURL, httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the collection URL.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

type contactBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func bodyOf(f validate.Form) contactBody {
	return contactBody{Name: f.Name, Email: f.Email, Phone: f.Phone, Message: f.Message}
}

// List fetches every contact, newest first.
func (c *HTTPClient) List(ctx context.Context) ([]domain.Contact, error) {
	var out []domain.Contact
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Contact{}
	}
	return out, nil
}

// Create submits a new contact and returns the stored record.
func (c *HTTPClient) Create(ctx context.Context, f validate.Form) (*domain.Contact, error) {
	var out domain.Contact
	if err := c.do(ctx, http.MethodPost, c.baseURL, bodyOf(f), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces every field of contact id.
func (c *HTTPClient) Update(ctx context.Context, id string, f validate.Form) (*domain.Contact, error) {
	var out domain.Contact
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), bodyOf(f), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes contact id.
func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *HTTPClient) itemURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// do sends one JSON request and decodes a 2xx body into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("contacts api: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("contacts api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacts api: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, URL: target}
		var env struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Code, apiErr.Message = env.Code, env.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("contacts api: decode response: %w", err)
	}
	return nil
}
