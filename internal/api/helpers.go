package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Get sends a GET with params encoded as a query string; nil values are skipped.
func Get[T any](ctx context.Context, c *Client, endpoint string, params map[string]any) (T, error) {
	return decode[T](c.Send(ctx, http.MethodGet, endpoint+Query(params), nil))
}

// Post sends a POST with body encoded as JSON. A nil body sends no payload.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return decode[T](c.Send(ctx, http.MethodPost, endpoint, body))
}

// Patch sends a PATCH with body encoded as JSON. A nil body sends no payload.
func Patch[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return decode[T](c.Send(ctx, http.MethodPatch, endpoint, body))
}

// Delete sends a DELETE.
func Delete[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	return decode[T](c.Send(ctx, http.MethodDelete, endpoint, nil))
}

// Query renders params as "?k=v&..." in key order, skipping nil values.
// It returns "" when nothing remains.
func Query(params map[string]any) string {
	values := url.Values{}
	for key, value := range params {
		if value == nil {
			continue
		}
		values.Set(key, fmt.Sprint(value))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func decode[T any](out Outcome, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if out.Kind != Success {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(out.Payload, &v); err != nil {
		return zero, &ParseError{Status: out.StatusCode, Cause: err}
	}
	return v, nil
}
