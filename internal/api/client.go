// Package api is the portal's client for the exam REST API.
//
// Every call goes through Client.Do, which attaches the JSON headers and the
// tier's bearer token, parses the JSON body and turns any non-2xx answer into
// an *Error. There are no retries; a failed call is returned to the page that
// made it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TokenSource yields the bearer token of the calling tier, if any.
type TokenSource interface {
	Get(ctx context.Context) (string, bool, error)
}

// TokenStore is a TokenSource that login and register can write to.
type TokenStore interface {
	TokenSource
	Set(ctx context.Context, token string) error
}

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *Error carrying the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Request describes one API call. Path is relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Body   any
	Header map[string]string

	// NoAuth leaves the Authorization header off even if a token exists.
	NoAuth bool
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New builds a client for baseURL. tokens may be nil for public calls.
func New(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

// Do performs the call and decodes a 2xx JSON body into out (when out is
// non-nil and the body is not empty).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("api.Do: encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, body)
	if err != nil {
		return fmt.Errorf("api.Do: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	if !req.NoAuth && c.tokens != nil {
		tok, ok, err := c.tokens.Get(ctx)
		if err != nil {
			return fmt.Errorf("api.Do: read token: %w", err)
		}
		if ok {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("api.Do: %s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api.Do: read body: %w", err)
	}
	data = bytes.TrimSpace(data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, data)
	}
	if len(data) == 0 {
		return nil
	}
	if out == nil {
		if !json.Valid(data) {
			return fmt.Errorf("api.Do: decode %s %s: invalid JSON body", method, req.Path)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api.Do: decode %s %s: %w", method, req.Path, err)
	}
	return nil
}

type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func newError(status int, data []byte) *Error {
	apiErr := &Error{
		Status: status,
		Errors: map[string][]string{},
	}

	var body errorBody
	if len(data) > 0 && json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		for field, raw := range body.Errors {
			var list []string
			if json.Unmarshal(raw, &list) == nil {
				apiErr.Errors[field] = list
				continue
			}
			var single string
			if json.Unmarshal(raw, &single) == nil {
				apiErr.Errors[field] = []string{single}
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Request failed with status %d", status)
	}
	return apiErr
}
