// Package rpc is the HTTP client for the remote logbook backend.
// The backend speaks a tRPC-flavored protocol: every procedure lives at
// POST|GET {base}/api/trpc/{procedure}, mutation inputs ride a {"json": ...}
// envelope, successes come back as {"result": {"data": ...}} and failures as
// {"error": {"message": ...}}.
//
// The backend owns all durable state and session validity. This package does
// no retries, no caching, and no token management. The session credential is
// a cookie the backend sets on register/login, held in the client's jar and
// forwarded on every call.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// RemoteError is a non-success response from the backend.
// Message is the backend-supplied human-readable message when present,
// otherwise the per-operation fallback string.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client issues procedures against one backend origin.
// It is safe for concurrent use; the cookie jar is shared across all calls
// so an authenticated session applies to every subsequent procedure.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New constructs a Client for the backend at baseURL (scheme + host, no
// trailing slash). The client carries its own cookie jar so the session
// cookie set by auth.register / auth.login is forwarded automatically.
func New(baseURL string, log *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("rpc.New: cookie jar: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
		log:     log,
	}, nil
}

// envelope is the request body wrapper the backend expects for mutations.
type envelope struct {
	JSON any `json:"json"`
}

// resultBody is the success response wrapper.
type resultBody struct {
	Result struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
}

// errorBody is the failure response wrapper.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// post calls a mutation procedure. input is wrapped in the {"json": ...}
// envelope; the result data is decoded into out when out is non-nil.
// fallback becomes the RemoteError message when the backend supplies none.
func (c *Client) post(ctx context.Context, procedure string, input, out any, fallback string) error {
	body, err := json.Marshal(envelope{JSON: input})
	if err != nil {
		return fmt.Errorf("rpc.Client.post: %s: encode: %w", procedure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.procURL(procedure), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc.Client.post: %s: %w", procedure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, procedure, out, fallback)
}

// get calls a query procedure (no input).
func (c *Client) get(ctx context.Context, procedure string, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.procURL(procedure), nil)
	if err != nil {
		return fmt.Errorf("rpc.Client.get: %s: %w", procedure, err)
	}
	return c.do(req, procedure, out, fallback)
}

// do executes one request (exactly one attempt, no retry, no backoff)
// and maps the response envelopes.
func (c *Client) do(req *http.Request, procedure string, out any, fallback string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpc: %s: %w", procedure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rpc: %s: read response: %w", procedure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		// A malformed error body still yields the fallback message.
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Error.Message
		if msg == "" {
			msg = fallback
		}
		return &RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	var rb resultBody
	if err := json.Unmarshal(raw, &rb); err != nil {
		return fmt.Errorf("rpc: %s: decode envelope: %w", procedure, err)
	}
	if err := json.Unmarshal(rb.Result.Data, out); err != nil {
		return fmt.Errorf("rpc: %s: decode result: %w", procedure, err)
	}
	return nil
}

func (c *Client) procURL(procedure string) string {
	return c.baseURL + "/api/trpc/" + procedure
}
