// ABOUTME: HTTP client for the Botino backend with cookie and CSRF handling
// ABOUTME: Single outbound point; emits an unauthenticated signal on any 401

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// CSRFCookieName is the cookie the backend sets on GET /api/csrf.
const CSRFCookieName = "csrf_token"

// CSRFHeaderName is the header state-changing requests must carry.
const CSRFHeaderName = "X-CSRF-Token"

// Client talks to the Botino backend. It owns a cookie jar so the backend
// session cookie and the CSRF cookie persist across calls, the client-side
// analog of a browser sending credentials with every request.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger

	mu              sync.Mutex
	unauthenticated func()
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http(s)", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger: slog.Default().With("component", "api"),
	}, nil
}

// SetUnauthenticatedHandler registers the callback invoked when any request
// receives a 401. The transport layer never navigates or touches session
// state itself; the one registered listener owns that policy.
func (c *Client) SetUnauthenticatedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthenticated = fn
}

// FetchCSRF obtains a fresh CSRF cookie from the backend. Called once during
// session bootstrap and again before login/signup.
func (c *Client) FetchCSRF(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/csrf", nil, nil)
}

// CSRFToken returns the current CSRF cookie value, or "" if none is held.
// The jar is queried with the URL the cookie was set against: a Set-Cookie
// without an explicit Path on GET /api/csrf default-scopes the cookie to
// /api, so a lookup against the bare base URL would not path-match it.
func (c *Client) CSRFToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.baseURL.JoinPath("api", "csrf")) {
		if cookie.Name == CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

// do performs a request against the backend. A non-nil body is sent as JSON.
// On 2xx, a non-nil out is decoded from the response body. All error statuses
// come back as *Error; a 401 additionally fires the unauthenticated handler.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// State-changing calls carry the CSRF token read back from the cookie.
	if isStateChanging(method) {
		req.Header.Set(CSRFHeaderName, c.CSRFToken())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("request rejected as unauthenticated", "method", method, "path", path)
		c.fireUnauthenticated()
		return parseError(resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("parsing response from %s %s: %w", method, path, err)
		}
	}
	return nil
}

// fireUnauthenticated invokes the registered handler, if any.
func (c *Client) fireUnauthenticated() {
	c.mu.Lock()
	fn := c.unauthenticated
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// parseError builds an *Error from a non-2xx response, preserving any
// structured validation detail the backend included.
func parseError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return apiErr
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return apiErr
	}

	if envelope.Error != "" {
		apiErr.Detail = envelope.Error
	}
	if len(envelope.Detail) > 0 {
		var fields []FieldError
		if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
			apiErr.Fields = fields
		} else {
			var detail string
			if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
				apiErr.Detail = detail
			}
		}
	}
	return apiErr
}
