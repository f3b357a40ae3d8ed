// Package api implements the service.Service interface over the task
// backend's REST API.
package api

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

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskpad/internal/config"
	"taskpad/internal/logging"
	"taskpad/internal/service"
	"taskpad/internal/session"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	// ChatTimeout is the timeout for assistant calls, which wait on a model.
	ChatTimeout = 60 * time.Second

	// RequestIDHeader carries a per-request id for backend log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	store   *session.Store
	anon    *http.Client
	authed  *http.Client
}

var _ service.Service = (*Client)(nil)

// New creates a client for cfg.APIURL using the credentials file in cfg.Dir.
func New(cfg *config.Config) *Client {
	return NewWithHTTPClient(cfg.APIURL, session.NewStore(cfg.CredentialsPath()), nil)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Authenticated calls wrap httpClient's transport with a bearer token read
// from store on every request.
func NewWithHTTPClient(baseURL string, store *session.Store, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	authed := *httpClient
	authed.Transport = &oauth2.Transport{
		Source: store,
		Base:   httpClient.Transport,
	}
	return &Client{
		baseURL: config.NormalizeURL(baseURL),
		store:   store,
		anon:    httpClient,
		authed:  &authed,
	}
}

// call describes one HTTP round trip.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	anon   bool
}

func (c *Client) do(ctx context.Context, r call) error {
	reqID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, reqID)
	log := logging.FromContext(ctx)

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, reqID)

	hc := c.authed
	if r.anon {
		hc = c.anon
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		log.Debug("api request failed", "method", r.method, "path", r.path, "error", err)
		return wrapError(err)
	}
	defer resp.Body.Close()

	log.Debug("api request", "method", r.method, "path", r.path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && !r.anon {
		if err := c.store.Clear(); err != nil {
			log.Debug("failed to clear credentials", "error", err)
		}
		return service.ErrUnauthorized
	}

	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapError(err)
	}

	if r.out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// Error is a non-2xx response with the backend's detail message.
type Error struct {
	Code   int
	Detail string
	err    *googleapi.Error
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error {
	if e.err == nil {
		return nil
	}
	return e.err
}

// StatusCode returns the HTTP status of the response.
func (e *Error) StatusCode() int { return e.Code }

// Is lets callers match 404 responses with service.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == service.ErrNotFound && e.Code == http.StatusNotFound
}

// wrapError converts transport and API errors to user-friendly errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.New("request timed out")
	}
	if errors.Is(err, session.ErrNoCredentials) || errors.Is(err, session.ErrExpired) {
		return service.ErrNotLoggedIn
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &Error{
			Code:   apiErr.Code,
			Detail: detailMessage(apiErr.Code, apiErr.Body),
			err:    apiErr,
		}
	}

	return err
}

// detailMessage extracts FastAPI's "detail" field. Validation failures carry
// a list of {loc, msg} objects instead of a string.
func detailMessage(code int, body string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			var msgs []string
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return fmt.Sprintf("API error: %s", http.StatusText(code))
}
