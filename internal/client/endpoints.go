// ABOUTME: Shared helpers for resource route methods
// ABOUTME: Authenticated POST with typed decoding and route path building

package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// post sends an authenticated POST to route and decodes the response.
func post[T any](ctx context.Context, c *Client, route string, body any) (*T, error) {
	resp, err := c.Send(ctx, Request{Method: http.MethodPost, Route: route, Body: body})
	if err != nil {
		return nil, err
	}
	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// exec sends an authenticated POST whose response body is not needed.
func exec(ctx context.Context, c *Client, route string, body any) error {
	_, err := c.Send(ctx, Request{Method: http.MethodPost, Route: route, Body: body})
	return err
}

// list fetches one page from a list route.
func list[T any](ctx context.Context, c *Client, route string, opts ListOptions) (*Page[T], error) {
	page, err := post[Page[T]](ctx, c, route, opts)
	if err != nil {
		return nil, err
	}
	if page.List == nil {
		page.List = []T{}
	}
	return page, nil
}

// getPublic sends an unauthenticated GET and decodes the response.
func getPublic[T any](ctx context.Context, c *Client, route string) (*T, error) {
	resp, err := c.SendPublic(ctx, Request{Method: http.MethodGet, Route: route})
	if err != nil {
		return nil, err
	}
	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// path joins route segments, escaping each one.
func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// multipartFile encodes a single file field as a multipart/form-data body.
func multipartFile(field, filename string, content []byte) (RawBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return RawBody{}, fmt.Errorf("failed to build %s upload: %w", field, err)
	}
	if _, err := part.Write(content); err != nil {
		return RawBody{}, fmt.Errorf("failed to build %s upload: %w", field, err)
	}
	if err := w.Close(); err != nil {
		return RawBody{}, fmt.Errorf("failed to build %s upload: %w", field, err)
	}
	return RawBody{ContentType: w.FormDataContentType(), Data: buf.Bytes()}, nil
}
