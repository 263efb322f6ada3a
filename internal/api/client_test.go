package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"

	"fitcoach-client/internal/apierr"
	"fitcoach-client/internal/domain"
)

type staticTokens string

func (t staticTokens) Token() string { return string(t) }

func newTestClient(t *testing.T, baseURL string, tokens TokenSource, onUnauthorized func()) *Client {
	t.Helper()
	c, err := NewClient(baseURL, http.DefaultClient, tokens, onUnauthorized, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/only"} {
		_, err := NewClient(raw, http.DefaultClient, staticTokens(""), nil, zap.NewNop().Sugar())
		if !apierr.IsKind(err, apierr.KindInvalidURL) {
			t.Errorf("NewClient(%q) err = %v, want InvalidURL", raw, err)
		}
	}
}

func TestRequestCarriesAuthHeaders(t *testing.T) {
	var gotAuth, gotContentType, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, staticTokens("tok-9"), nil)
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.Get(context.Background(), "trainer/exercises", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if gotAuth != "Bearer tok-9" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID missing")
	}
	if !out.OK {
		t.Error("response not decoded")
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		out        bool // decode into a struct
		wantKind   apierr.Kind
		wantStatus int
		wantMsg    string
		wantAuthCB bool
	}{
		{name: "200 empty body no content expected", status: 200, body: "", out: false},
		{name: "204 no content", status: 204, body: "", out: false},
		{name: "200 empty body but content expected", status: 200, body: "", out: true,
			wantKind: apierr.KindNoData},
		{name: "200 malformed body", status: 200, body: "{broken", out: true,
			wantKind: apierr.KindDecodingFailed},
		{name: "401 unauthorized", status: 401, body: `{"error":"expired"}`, out: true,
			wantKind: apierr.KindUnauthorized, wantAuthCB: true},
		{name: "403 forbidden", status: 403, body: "", out: true,
			wantKind: apierr.KindForbidden},
		{name: "409 with message", status: 409, body: `{"error":"email taken"}`, out: true,
			wantKind: apierr.KindConflict, wantMsg: "email taken"},
		{name: "409 unparseable body", status: 409, body: "<html>", out: true,
			wantKind: apierr.KindConflict, wantMsg: "conflict"},
		{name: "500 with message", status: 500, body: `{"error":"boom"}`, out: true,
			wantKind: apierr.KindServerError, wantStatus: 500, wantMsg: "boom"},
		{name: "500 unparseable body", status: 500, body: "<html>", out: true,
			wantKind: apierr.KindServerError, wantStatus: 500, wantMsg: ""},
		{name: "503 service down", status: 503, body: "", out: true,
			wantKind: apierr.KindServerError, wantStatus: 503},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			var authCalls int
			c := newTestClient(t, srv.URL, staticTokens("tok"), func() { authCalls++ })

			var out any
			if tc.out {
				out = &map[string]any{}
			}
			err := c.Get(context.Background(), "x", out)

			if tc.wantKind == 0 && err != nil {
				t.Fatalf("err = %v, want nil", err)
			}
			if tc.wantKind != 0 {
				var apiErr *apierr.Error
				if !errors.As(err, &apiErr) {
					t.Fatalf("err = %v, want *apierr.Error", err)
				}
				if apiErr.Kind != tc.wantKind {
					t.Errorf("kind = %v, want %v", apiErr.Kind, tc.wantKind)
				}
				if tc.wantStatus != 0 && apiErr.StatusCode != tc.wantStatus {
					t.Errorf("status = %d, want %d", apiErr.StatusCode, tc.wantStatus)
				}
				if tc.wantMsg != "" && apiErr.Message != tc.wantMsg {
					t.Errorf("message = %q, want %q", apiErr.Message, tc.wantMsg)
				}
				if tc.wantKind == apierr.KindServerError && tc.wantMsg == "" && apiErr.Message != "" {
					t.Errorf("message = %q, want empty", apiErr.Message)
				}
			}
			if got := authCalls > 0; got != tc.wantAuthCB {
				t.Errorf("unauthorized callback fired = %v, want %v", got, tc.wantAuthCB)
			}
		})
	}
}

func TestMissingTokenShortCircuits(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	var authCalls int
	c := newTestClient(t, srv.URL, staticTokens(""), func() { authCalls++ })

	err := c.Get(context.Background(), "trainer/clients", nil)
	if !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("err = %v, want Unauthorized", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("network call issued despite missing token")
	}
	if authCalls != 1 {
		t.Errorf("unauthorized callback fired %d times, want 1", authCalls)
	}
}

func TestWithoutAuthSkipsTokenCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("Authorization header set on unauthenticated call")
		}
		io.WriteString(w, `{"token":"t","user":{"id":"u1","name":"n","email":"e","roles":["client"],"createdAt":"2024-01-02T03:04:05.000Z"}}`)
	}))
	defer srv.Close()

	var authCalls int
	c := newTestClient(t, srv.URL, staticTokens(""), func() { authCalls++ })

	result, err := NewAuthService(c).Login(context.Background(), "e", "p")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token != "t" || result.User.ID != "u1" {
		t.Errorf("result = %+v", result)
	}
	if !result.User.HasRole(domain.RoleClient) {
		t.Error("role not decoded")
	}
	if authCalls != 0 {
		t.Error("unauthorized callback fired on public endpoint")
	}
}

func TestQueryParametersEncoded(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, staticTokens("tok"), nil)
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewClientService(c).Progress(context.Background(), since); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if gotQuery != "since=2024-05-01T00%3A00%3A00.000Z" {
		t.Errorf("query = %q", gotQuery)
	}
}

type failingDoer struct {
	err error
}

func (d failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, d.err
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestTransportErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apierr.Kind
	}{
		{"timeout", &net.OpError{Op: "read", Err: timeoutError{}}, apierr.KindRequestTimeout},
		{"context deadline", context.DeadlineExceeded, apierr.KindRequestTimeout},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.fitcoach.app"}, apierr.KindServerUnavailable},
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, apierr.KindServerUnavailable},
		{"connection reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, apierr.KindNetworkUnavailable},
		{"network down", &net.OpError{Op: "write", Err: syscall.ENETDOWN}, apierr.KindNetworkUnavailable},
		{"something else", errors.New("weird failure"), apierr.KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewClient("https://api.example.com", failingDoer{err: tc.err},
				staticTokens("tok"), nil, zap.NewNop().Sugar())
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}

			callErr := c.Get(context.Background(), "x", nil)
			if !apierr.IsKind(callErr, tc.want) {
				t.Errorf("kind = %v (%v), want %v", apierr.FromError(callErr).Kind, callErr, tc.want)
			}
		})
	}
}
