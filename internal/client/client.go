// ABOUTME: Authenticated HTTP client for the changex API
// ABOUTME: Attaches bearer tokens, renews expired sessions and replays the call once

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/changexio/changex-console/internal/session"
)

// maxResponseBytes caps how much of a response body is buffered.
const maxResponseBytes = 8 << 20

// Client is the API client for the changex admin backend. It is safe for
// concurrent use; concurrent renewals are coalesced into one refresh call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *session.Store
	gate       *session.Gate
	requestID  func() string

	renewals singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRequestIDs overrides the X-Request-Id generator.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		if next != nil {
			c.requestID = next
		}
	}
}

// New creates a client for the API at baseURL. Tokens are read from and
// written to store; gate is opened on login and closed on logout.
func New(baseURL string, store *session.Store, gate *session.Gate, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewHTTPClient(TransportConfig{}),
		store:      store,
		gate:       gate,
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API host the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one API call. Method defaults to POST and a nil Body is
// sent as an empty JSON object.
type Request struct {
	Method string
	Route  string
	Body   any
}

// RawBody is a pre-encoded request payload, used for multipart uploads.
type RawBody struct {
	ContentType string
	Data        []byte
}

// Response is a successful (2xx) API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("invalid response from backend: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// encodedRequest is a request with its payload serialized once, so a replay
// after renewal sends byte-identical content.
type encodedRequest struct {
	method      string
	route       string
	payload     []byte
	contentType string
}

func encode(req Request) (*encodedRequest, error) {
	enc := &encodedRequest{
		method:      req.Method,
		route:       req.Route,
		contentType: "application/json",
	}
	if enc.method == "" {
		enc.method = http.MethodPost
	}
	if !strings.HasPrefix(enc.route, "/") {
		enc.route = "/" + enc.route
	}
	if enc.method == http.MethodGet {
		return enc, nil
	}

	switch body := req.Body.(type) {
	case nil:
		enc.payload = []byte("{}")
	case RawBody:
		enc.payload = body.Data
		enc.contentType = body.ContentType
	case *RawBody:
		enc.payload = body.Data
		enc.contentType = body.ContentType
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request for %s: %w", req.Route, err)
		}
		enc.payload = data
	}
	return enc, nil
}

// Send performs an authenticated call. When the API rejects the access
// token and a refresh token is stored, the session is renewed and the same
// payload is replayed exactly once. If the session cannot be renewed the
// error wraps ErrUnauthenticated.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	enc, err := encode(req)
	if err != nil {
		return nil, err
	}

	bearer := c.bearerFor(ctx, enc.route)
	resp, err := c.dispatch(ctx, enc, bearer)
	if err == nil || !IsSessionExpired(err) {
		return resp, err
	}

	stale := bearer
	if enc.route == RefreshRoute {
		stale = ""
	}

	slog.Debug("Access token rejected, renewing session", "route", enc.route, "code", ErrorCode(err))
	if _, rerr := c.renewAfter(ctx, stale); rerr != nil {
		if isAuthFailure(rerr) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, rerr)
		}
		return nil, fmt.Errorf("session renewal failed: %w", rerr)
	}

	return c.dispatch(ctx, enc, c.bearerFor(ctx, enc.route))
}

// SendPublic performs a call without any Authorization header and without
// renewal.
func (c *Client) SendPublic(ctx context.Context, req Request) (*Response, error) {
	enc, err := encode(req)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, enc, "")
}

// bearerFor selects the token for a route: the refresh token for the
// renewal route, the access token for everything else.
func (c *Client) bearerFor(ctx context.Context, route string) string {
	var (
		token string
		err   error
	)
	if route == RefreshRoute {
		token, err = c.store.RefreshToken(ctx)
	} else {
		token, err = c.store.AccessToken(ctx)
	}
	if err != nil {
		slog.Warn("Failed to read session token", "route", route, "error", err)
		return ""
	}
	return token
}

func (c *Client) dispatch(ctx context.Context, enc *encodedRequest, bearer string) (*Response, error) {
	var body io.Reader
	if enc.payload != nil {
		body = bytes.NewReader(enc.payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, enc.method, c.baseURL+enc.route, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := c.requestID()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)
	if enc.payload != nil {
		httpReq.Header.Set("Content-Type", enc.contentType)
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", enc.route, err)
	}

	slog.Debug("API request completed",
		"method", enc.method,
		"route", enc.route,
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, decodeAPIError(enc.route, httpResp.StatusCode, data)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}

// decodeAPIError builds an APIError from a failed response. The body may
// carry the code under "code" and a message under "message" or "error".
func decodeAPIError(route string, status int, data []byte) error {
	apiErr := &APIError{StatusCode: status, Route: route}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}

// handleRequestError converts transport errors into user-friendly messages.
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", context.Canceled)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", context.DeadlineExceeded)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}
