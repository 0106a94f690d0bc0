package livy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// RequestedByHeader is the CSRF guard header Livy requires on
	// modifying requests. The client sends it on every request.
	RequestedByHeader = "X-Requested-By"

	// DefaultRequestedBy is the identity sent in RequestedByHeader when
	// none is configured.
	DefaultRequestedBy = "livy-go-client"
)

// RequestOption allows for functional overrides on individual requests.
// Options configured on the client via WithRequestOptions run on every
// request; this is the hook the livyauth packages plug into.
type RequestOption func(*http.Request)

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// Client is an Apache Livy REST API client. It is immutable after
// construction and safe for concurrent use; each call performs exactly one
// request/response round trip.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	requestedBy string
	requestOpts []RequestOption
}

// NewClient constructs a Client for the Livy server at baseURL. Exactly one
// trailing slash is stripped from baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("livy: invalid base URL: %w", err)
	}

	c := &Client{
		httpClient:  &http.Client{},
		baseURL:     removeTrailingSlash(baseURL),
		requestedBy: DefaultRequestedBy,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// WithHTTPClient sets the underlying HTTP client. Use this to configure
// timeouts or transport settings; the livy client itself enforces none.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestedBy overrides the identity sent in the X-Requested-By header.
func WithRequestedBy(identity string) ClientOption {
	return func(c *Client) {
		c.requestedBy = identity
	}
}

// WithBasicAuth sends the given credentials with every request.
func WithBasicAuth(username, password string) ClientOption {
	return WithRequestOptions(func(req *http.Request) {
		req.SetBasicAuth(username, password)
	})
}

// WithRequestOptions registers options applied to every request, ahead of
// any per-call options.
func WithRequestOptions(opts ...RequestOption) ClientOption {
	return func(c *Client) {
		c.requestOpts = append(c.requestOpts, opts...)
	}
}

// BaseURL returns the normalized base URL the client was constructed with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// removeTrailingSlash strips exactly one trailing slash from s.
func removeTrailingSlash(s string) string {
	return strings.TrimSuffix(s, "/")
}

// NewRequest builds an http.Request for the given path relative to the base
// URL. A non-nil body is JSON-encoded and sent as application/json.
func (c *Client) NewRequest(method, path string, body any, opts ...RequestOption) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("livy: failed to encode request body: %w", err)
		}
		bodyReader = buf
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set(RequestedByHeader, c.requestedBy)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, opt := range c.requestOpts {
		opt(req)
	}
	for _, opt := range opts {
		opt(req)
	}

	return req, nil
}

// Do executes the request and decodes a 200 response body into v. A non-200
// status is returned as *StatusError, a body that does not decode into v as
// *DecodeError. There is no retry; the caller owns that policy.
func (c *Client) Do(ctx context.Context, req *http.Request, v any) (*http.Response, error) {
	return c.do(ctx, req, v, false)
}

// doBodiless is Do for operations that may legally answer 200 with an empty
// or unparseable body (kill and cancel calls).
func (c *Client) doBodiless(ctx context.Context, req *http.Request, v any) (*http.Response, error) {
	return c.do(ctx, req, v, true)
}

func (c *Client) do(ctx context.Context, req *http.Request, v any, allowEmptyBody bool) (*http.Response, error) {
	req = req.WithContext(ctx)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("livy: request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return resp, newStatusError(resp)
	}

	err = c.decodeResponseBody(resp, v, allowEmptyBody)
	return resp, err
}

func (c *Client) decodeResponseBody(resp *http.Response, v any, allowEmptyBody bool) (err error) {
	defer func() {
		closeErr := resp.Body.Close()
		if err == nil {
			err = closeErr
		}
	}()

	if v == nil {
		return nil
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(v); decodeErr != nil {
		if allowEmptyBody {
			log.Debug().Err(decodeErr).Msg("ignoring undecodable body on bodiless operation")
			return nil
		}
		return &DecodeError{Err: decodeErr}
	}

	return nil
}

// get, post and delete are the method-keyed dispatch helpers the typed
// operations are built on.

func (c *Client) get(ctx context.Context, path string, v any, opts []RequestOption) (*http.Response, error) {
	req, err := c.NewRequest(http.MethodGet, path, nil, opts...)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req, v)
}

func (c *Client) post(ctx context.Context, path string, body, v any, opts []RequestOption) (*http.Response, error) {
	req, err := c.NewRequest(http.MethodPost, path, body, opts...)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req, v)
}

func (c *Client) postBodiless(ctx context.Context, path string, v any, opts []RequestOption) (*http.Response, error) {
	req, err := c.NewRequest(http.MethodPost, path, nil, opts...)
	if err != nil {
		return nil, err
	}
	return c.doBodiless(ctx, req, v)
}

func (c *Client) delete(ctx context.Context, path string, v any, opts []RequestOption) (*http.Response, error) {
	req, err := c.NewRequest(http.MethodDelete, path, nil, opts...)
	if err != nil {
		return nil, err
	}
	return c.doBodiless(ctx, req, v)
}
