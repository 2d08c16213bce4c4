package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/language"

	"github.com/hongminglow/all-in-dash/internal/models/dto"
	"github.com/hongminglow/all-in-dash/internal/notify"
)

type mutableToken struct {
	mu    sync.Mutex
	value string
}

func (m *mutableToken) CurrentCredential() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *mutableToken) set(v string) {
	m.mu.Lock()
	m.value = v
	m.mu.Unlock()
}

func newTestClient(t *testing.T, h http.HandlerFunc, creds CredentialSource) (*Client, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := &notify.Recorder{}
	c := New(srv.URL, creds,
		WithNotifier(rec),
		WithLogger(log.New(io.Discard, "", 0)),
		WithHTTPClient(srv.Client()),
	)
	return c, rec
}

func TestSendForbiddenUsesDisplayMessage(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":"FORBIDDEN","message":"nope","status_code":403,"display_messages":[{"value":"Access denied"}]}}`)
	}, nil)

	out, err := c.Send(context.Background(), http.MethodGet, "/admin/users", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != 403 || apiErr.Envelope.Code != "FORBIDDEN" || apiErr.Envelope.Message != "nope" {
		t.Fatalf("api error = %+v", apiErr)
	}
	if out.Kind != ServerError || out.StatusCode != 403 || out.Envelope == nil || out.Envelope.Code != "FORBIDDEN" {
		t.Fatalf("outcome = %+v", out)
	}
	if !IsForbidden(err) {
		t.Fatal("IsForbidden should be true")
	}

	notes := rec.All()
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(notes))
	}
	if notes[0].Message != "Access denied" || notes[0].Category != notify.CategoryDenied || notes[0].Kind != notify.KindError {
		t.Fatalf("notification = %+v", notes[0])
	}
}

func TestSendSynthesizesEnvelope(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		ctype  string
		cat    notify.Category
	}{
		{"html body", http.StatusBadGateway, "<html>bad gateway</html>", "text/html", notify.CategoryServer},
		{"json without error", http.StatusNotFound, `{"detail":"missing"}`, "application/json", notify.CategoryNotFound},
		{"empty body", http.StatusUnauthorized, "", "", notify.CategoryAuth},
		{"truncated json", http.StatusConflict, `{"error":`, "application/json", notify.CategoryGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.ctype != "" {
					w.Header().Set("Content-Type", tc.ctype)
				}
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, nil)

			out, err := c.Send(context.Background(), http.MethodGet, "/x", nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v", err)
			}
			want := dto.ErrorBody{Code: dto.UnknownErrorCode, Message: http.StatusText(tc.status), StatusCode: tc.status}
			if apiErr.Status != tc.status || apiErr.Envelope.Code != want.Code || apiErr.Envelope.Message != want.Message || apiErr.Envelope.StatusCode != want.StatusCode {
				t.Fatalf("envelope = %+v, want %+v", apiErr.Envelope, want)
			}
			if out.Kind != ServerError {
				t.Fatalf("kind = %v", out.Kind)
			}
			notes := rec.All()
			if len(notes) != 1 || notes[0].Category != tc.cat {
				t.Fatalf("notifications = %+v", notes)
			}
		})
	}
}

func TestSendServerErrorFallbackMessage(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":"BOOM","message":"","status_code":500}}`)
	}, nil)

	_, err := c.Send(context.Background(), http.MethodGet, "/x", nil)
	if StatusOf(err) != 500 {
		t.Fatalf("status = %d", StatusOf(err))
	}
	notes := rec.All()
	if len(notes) != 1 || notes[0].Message != "An error occurred on the server" || notes[0].Title != "Server error" {
		t.Fatalf("notifications = %+v", notes)
	}
}

func TestSendNoContentIsEmptyOK(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	out, err := c.Send(context.Background(), http.MethodDelete, "/users/1", nil)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if out.Kind != EmptyOK || !out.OK() || out.StatusCode != 204 {
		t.Fatalf("outcome = %+v", out)
	}
	if len(rec.All()) != 0 {
		t.Fatal("success must not notify")
	}
}

func TestSendNonJSONSuccessIsEmptyOK(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	}, nil)

	out, err := c.Send(context.Background(), http.MethodGet, "/ping", nil)
	if err != nil || out.Kind != EmptyOK {
		t.Fatalf("outcome = %+v err = %v", out, err)
	}
}

func TestSendJSONSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, `{"id":"1"}`)
	}, nil)

	out, err := c.Send(context.Background(), http.MethodGet, "/users/me", nil)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if out.Kind != Success || string(out.Payload) != `{"id":"1"}` {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestSendMalformedJSONSuccessIsParseError(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":`)
	}, nil)

	out, err := c.Send(context.Background(), http.MethodGet, "/users/me", nil)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if out.Kind != ParseFailure || out.OK() {
		t.Fatalf("outcome = %+v", out)
	}
	if len(rec.All()) != 0 {
		t.Fatal("parse failure is not a server failure and must not notify")
	}
}

func TestSendTransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	rec := &notify.Recorder{}
	c := New("http://"+addr, nil, WithNotifier(rec), WithLogger(log.New(io.Discard, "", 0)))
	out, err := c.Send(context.Background(), http.MethodGet, "/users/me", nil)

	if !IsTransport(err) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if out.Kind != TransportFailure || out.Envelope != nil || out.StatusCode != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if len(rec.All()) != 0 {
		t.Fatal("transport failures must not notify")
	}
}

func TestSendResolvesCredentialPerCall(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	token := &mutableToken{value: "first"}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}, token)

	ctx := context.Background()
	_, _ = c.Send(ctx, http.MethodGet, "/a", nil)
	token.set("second")
	_, _ = c.Send(ctx, http.MethodGet, "/a", nil)
	token.set("")
	_, _ = c.Send(ctx, http.MethodGet, "/a", nil)

	want := []string{"Bearer first", "Bearer second", ""}
	mu.Lock()
	defer mu.Unlock()
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("call %d Authorization = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestSendHeaderMerging(t *testing.T) {
	var got http.Header
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, CredentialFunc(func() string { return "live" }),
		WithHTTPClient(srv.Client()),
		WithLocale(language.French),
		WithHeader("X-Client", "dashboard"),
		WithRequestIDs(func() string { return "req-1" }),
	)
	_, err := c.Send(context.Background(), http.MethodPost, "/transfers", map[string]int{"amount": 5},
		Header("Authorization", "Bearer forged"),
		Header("X-Client", "override"),
	)
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	if got.Get("Authorization") != "Bearer live" {
		t.Fatalf("Authorization = %q, override must not replace credential", got.Get("Authorization"))
	}
	if got.Get("X-Client") != "override" {
		t.Fatalf("X-Client = %q", got.Get("X-Client"))
	}
	if got.Get("Content-Type") != "application/json" || got.Get("Accept-Language") != "fr" || got.Get("X-Request-ID") != "req-1" {
		t.Fatalf("base headers = %v", got)
	}
	if strings.TrimSpace(body) != `{"amount":5}` {
		t.Fatalf("body = %q", body)
	}
}

func TestSendWithoutPresentationSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	panicky := notify.Func(func(context.Context, notify.Notification) { panic("no window") })
	var logs bytes.Buffer
	c := New(srv.URL, nil, WithHTTPClient(srv.Client()), WithNotifier(panicky), WithLogger(log.New(&logs, "", 0)))
	_, err := c.Send(context.Background(), http.MethodGet, "/users/me", nil)
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(logs.String(), "notifier panicked: no window") {
		t.Fatalf("panic not logged through the client logger: %q", logs.String())
	}

	c = New(srv.URL, nil, WithHTTPClient(srv.Client()), WithNotifier(nil))
	if _, err := c.Send(context.Background(), http.MethodGet, "/users/me", nil); !IsUnauthorized(err) {
		t.Fatalf("nil notifier err = %v", err)
	}
}

func TestSendLargeJSONBodyWithinDefaultLimit(t *testing.T) {
	big := `{"blob":"` + strings.Repeat("a", 5<<20) + `"}`
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, big)
	}, nil)

	out, err := c.Send(context.Background(), http.MethodGet, "/export", nil)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if out.Kind != Success || len(out.Payload) != len(big) {
		t.Fatalf("kind = %v payload = %d bytes", out.Kind, len(out.Payload))
	}
}

func TestSendBodyOverLimitIsNotParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"blob":"`+strings.Repeat("a", 2048)+`"}`)
	}))
	defer srv.Close()

	rec := &notify.Recorder{}
	c := New(srv.URL, nil, WithHTTPClient(srv.Client()), WithNotifier(rec),
		WithLogger(log.New(io.Discard, "", 0)), WithMaxBodyBytes(1024))
	out, err := c.Send(context.Background(), http.MethodGet, "/export", nil)

	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("err = %v, want ErrResponseTooLarge", err)
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		t.Fatal("an oversized body must not be reported as malformed JSON")
	}
	if out.Kind != TransportFailure || out.StatusCode != http.StatusOK {
		t.Fatalf("outcome = %+v", out)
	}
	if len(rec.All()) != 0 {
		t.Fatal("client-side limits must not notify")
	}
}

func TestSendRecordsCredentialOnRejection(t *testing.T) {
	token := &mutableToken{value: "old"}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, token)

	out, err := c.Send(context.Background(), http.MethodGet, "/users/me", nil)
	token.set("fresh")

	rejected, ok := RejectedCredential(err)
	if !ok || rejected != "old" || out.Credential != "old" {
		t.Fatalf("rejected = %q ok = %v outcome credential = %q", rejected, ok, out.Credential)
	}
	if _, ok := RejectedCredential(&APIError{Status: http.StatusForbidden, Credential: "old"}); ok {
		t.Fatal("only a 401 rejects a credential")
	}
}
