// Package api is the single request pathway to the dashboard backend. Every
// call resolves the live credential at dispatch time, classifies the response
// into an Outcome and, on a server-reported failure, raises exactly one
// advisory notification before handing the typed failure back to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/hongminglow/all-in-dash/internal/models/dto"
	"github.com/hongminglow/all-in-dash/internal/notify"
)

// DefaultMaxBodyBytes caps how much of a response body Send reads.
const DefaultMaxBodyBytes = 32 << 20

// ErrResponseTooLarge is wrapped by the TransportError returned when a body
// exceeds the client's limit.
var ErrResponseTooLarge = errors.New("response body too large")

// OutcomeKind classifies a finished call.
type OutcomeKind int

const (
	// Success carries a JSON payload.
	Success OutcomeKind = iota
	// EmptyOK is a success with no body or a non-JSON body.
	EmptyOK
	// ServerError is a non-success status; Envelope is set.
	ServerError
	// TransportFailure means no response was received.
	TransportFailure
	// ParseFailure is a success status whose JSON body could not be parsed.
	ParseFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case EmptyOK:
		return "empty"
	case ServerError:
		return "server-error"
	case TransportFailure:
		return "transport-error"
	case ParseFailure:
		return "parse-error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of Send. Credential is the credential the
// call was sent with, "" when it went out anonymous.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Payload    json.RawMessage
	Envelope   *dto.ErrorBody
	Credential string
}

// OK reports whether the call succeeded, with or without payload.
func (o Outcome) OK() bool {
	return o.Kind == Success || o.Kind == EmptyOK
}

// CredentialSource yields the credential to attach to a call.
type CredentialSource interface {
	CurrentCredential() string
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func() string

func (f CredentialFunc) CurrentCredential() string { return f() }

// Client sends requests to the backend rooted at baseURL.
type Client struct {
	baseURL   string
	http      *http.Client
	creds     CredentialSource
	notifier  notify.Notifier
	logger    *log.Logger
	headers   http.Header
	requestID func() string
	maxBody   int64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNotifier sets the advisory notification surface. Defaults to notify.Nop.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLogger routes transport diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHeader adds a base header sent on every call.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithLocale sends tag as Accept-Language on every call.
func WithLocale(tag language.Tag) Option {
	return func(c *Client) { c.headers.Set("Accept-Language", tag.String()) }
}

// WithRequestIDs overrides the X-Request-ID generator. A nil fn disables the header.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.requestID = fn }
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes. Non-positive values are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// New builds a client. creds is consulted on every call.
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		creds:     creds,
		notifier:  notify.Nop{},
		logger:    log.Default(),
		headers:   http.Header{},
		requestID: uuid.NewString,
		maxBody:   DefaultMaxBodyBytes,
	}
	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestConfig struct {
	headers http.Header
}

// RequestOption customizes a single call.
type RequestOption func(*requestConfig)

// Header overrides a header for one call. It cannot replace the credential.
func Header(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.headers.Set(key, value) }
}

// Send performs one call. The returned error is nil for Success and EmptyOK,
// *APIError for ServerError, *TransportError for TransportFailure and
// *ParseError for ParseFailure. A body larger than the client's limit is a
// TransportFailure wrapping ErrResponseTooLarge.
func (c *Client) Send(ctx context.Context, method, endpoint string, body any, opts ...RequestOption) (Outcome, error) {
	req, credential, err := c.newRequest(ctx, method, endpoint, body, opts)
	if err != nil {
		return Outcome{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("api: %s %s: %v", method, endpoint, err)
		return Outcome{Kind: TransportFailure, Credential: credential}, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	data, readErr := c.readBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		envelope := parseEnvelope(resp, data, readErr)
		c.notifyFailure(ctx, resp.StatusCode, envelope)
		return Outcome{Kind: ServerError, StatusCode: resp.StatusCode, Envelope: &envelope, Credential: credential},
			&APIError{Status: resp.StatusCode, Envelope: envelope, Credential: credential}
	}

	if readErr != nil {
		c.logger.Printf("api: %s %s: read body: %v", method, endpoint, readErr)
		return Outcome{Kind: TransportFailure, StatusCode: resp.StatusCode, Credential: credential}, &TransportError{Cause: readErr}
	}
	if len(bytes.TrimSpace(data)) == 0 || !isJSON(resp.Header.Get("Content-Type")) {
		return Outcome{Kind: EmptyOK, StatusCode: resp.StatusCode, Credential: credential}, nil
	}
	if !json.Valid(data) {
		return Outcome{Kind: ParseFailure, StatusCode: resp.StatusCode, Credential: credential},
			&ParseError{Status: resp.StatusCode, Cause: errors.New("invalid JSON body")}
	}
	return Outcome{Kind: Success, StatusCode: resp.StatusCode, Payload: json.RawMessage(data), Credential: credential}, nil
}

// readBody reads at most maxBody bytes and fails rather than truncating.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any, opts []RequestOption) (*http.Request, string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	if c.requestID != nil {
		req.Header.Set("X-Request-ID", c.requestID())
	}
	rc := requestConfig{headers: http.Header{}}
	for _, opt := range opts {
		opt(&rc)
	}
	for key, values := range rc.headers {
		req.Header[key] = values
	}
	// Resolved here, per call, so a logout or re-login is honoured by the next request.
	var credential string
	if c.creds != nil {
		credential = c.creds.CurrentCredential()
		if credential != "" {
			req.Header.Set("Authorization", "Bearer "+credential)
		}
	}
	return req, credential, nil
}

// parseEnvelope returns the server's error object when the body carries one
// and a synthesized UNKNOWN_ERROR envelope otherwise.
func parseEnvelope(resp *http.Response, data []byte, readErr error) dto.ErrorBody {
	if readErr == nil {
		var env dto.ErrorEnvelope
		if err := json.Unmarshal(data, &env); err == nil && env.Error != nil {
			return *env.Error
		}
	}
	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = "An unknown error occurred"
	}
	return dto.ErrorBody{
		Code:       dto.UnknownErrorCode,
		Message:    message,
		StatusCode: resp.StatusCode,
	}
}

func (c *Client) notifyFailure(ctx context.Context, status int, envelope dto.ErrorBody) {
	if envelope.StatusCode != 0 {
		status = envelope.StatusCode
	}
	category := notify.Categorize(status)
	message := envelope.PreferredMessage()
	switch {
	case message != "":
	case category == notify.CategoryServer:
		message = "An error occurred on the server"
	default:
		message = "An error occurred"
	}
	notify.Safe(ctx, c.logger, c.notifier, notify.Notification{
		Kind:     notify.KindError,
		Category: category,
		Title:    category.Title(),
		Message:  message,
	})
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
