// Package api performs authenticated JSON round trips against the
// platform's REST API. Every failure leaving this package is a
// classified *apierr.Error; the only implicit side effect of any call
// is the unauthorized event fired on a 401 or a missing token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitcoach-client/internal/apierr"
)

// Doer is the transport seam; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the current bearer token. An empty string means
// no session; session.Manager satisfies this.
type TokenSource interface {
	Token() string
}

// errorBody is the platform's error envelope for non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	doer           Doer
	baseURL        *url.URL
	tokens         TokenSource
	onUnauthorized func()
	log            *zap.SugaredLogger
}

// NewClient builds an executor against baseURL. onUnauthorized fires
// whenever a request cannot or could not be authenticated; wiring it
// to the session manager's Clear keeps the 401-to-logout cascade an
// explicit event rather than a hidden dependency.
func NewClient(baseURL string, doer Doer, tokens TokenSource, onUnauthorized func(), log *zap.SugaredLogger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, apierr.NewInvalidURL(baseURL)
	}
	if onUnauthorized == nil {
		onUnauthorized = func() {}
	}
	return &Client{
		doer:           doer,
		baseURL:        parsed,
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
		log:            log,
	}, nil
}

type requestOptions struct {
	query  url.Values
	noAuth bool
}

type RequestOption func(*requestOptions)

// WithQuery appends query parameters to the request URL.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

// WithoutAuth skips the bearer header and the missing-token check.
// Only the auth endpoints use it.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPatch, path, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts)
}

// do performs one round trip. out == nil means no response body is
// expected; a 2xx returns without touching the body.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts []RequestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var token string
	if !o.noAuth {
		token = c.tokens.Token()
		if token == "" {
			// A missing token mid-session means memory and storage
			// have drifted; clear both sides before reporting.
			c.log.Warnw("request without token, forcing logout",
				"method", method, "path", path)
			c.onUnauthorized()
			return apierr.NewUnauthorized()
		}
	}

	reqURL := c.baseURL.JoinPath(strings.TrimPrefix(path, "/"))
	if o.query != nil {
		reqURL.RawQuery = o.query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apierr.NewEncodingFailed(err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reqBody)
	if err != nil {
		return apierr.NewInvalidURL(reqURL.String())
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		classified := classifyTransportError(err)
		c.log.Debugw("request transport failure",
			"method", method, "path", path, "error", err)
		return classified
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.NewNetworkUnavailable(err)
	}

	return c.classifyResponse(resp.StatusCode, respBody, out)
}

func (c *Client) classifyResponse(status int, body []byte, out any) error {
	switch {
	case status >= 200 && status < 300:
		if out == nil {
			return nil
		}
		if len(body) == 0 {
			return apierr.NewNoData()
		}
		if err := json.Unmarshal(body, out); err != nil {
			return apierr.NewDecodingFailed(err)
		}
		return nil

	case status == http.StatusUnauthorized:
		c.log.Infow("server rejected credentials, forcing logout")
		c.onUnauthorized()
		return apierr.NewUnauthorized()

	case status == http.StatusForbidden:
		return apierr.NewForbidden()

	case status == http.StatusConflict:
		return apierr.NewConflict(serverMessage(body))

	default:
		return apierr.NewServerError(status, serverMessage(body))
	}
}

// serverMessage extracts the {"error": "..."} envelope, returning ""
// when the body does not match.
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Error
}

// String renders the executor target for diagnostics.
func (c *Client) String() string {
	return fmt.Sprintf("api.Client(%s)", c.baseURL)
}
