package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client issues API calls described by Request values through an HTTP
// transport. Without options it creates and owns a default transport; a
// caller-supplied one is never closed by the client. A Client is safe for
// concurrent use: its only state is the configuration captured at
// construction.
type Client struct {
	httpClient *http.Client
	test       bool
	owned      bool
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        DefaultMaxIdleConns,
				MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
				IdleConnTimeout:     DefaultIdleConnTimeout,
			},
		}
		c.owned = true
	}

	return c
}

// WithHTTPClient supplies the transport, typically for mocking. A supplied
// client is left open by Close.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTest switches built URLs to the "http" scheme for calls against
// local or mock servers. The scheme comes only from this flag, never from
// the Request.
func WithTest(test bool) ClientOption {
	return func(c *Client) {
		c.test = test
	}
}

// BuildURL assembles a host, an already-encoded endpoint path and query
// parameters into an absolute URL. The endpoint is inserted without
// re-encoding; each query pair is percent-encoded independently. Failures
// are reported as *URLError.
func (c *Client) BuildURL(baseURL, endpoint string, queryParams map[string]string) (string, error) {
	scheme := "https"
	if c.test {
		scheme = "http"
	}

	raw := scheme + "://" + baseURL + endpoint
	if len(queryParams) > 0 {
		q := url.Values{}
		for k, v := range queryParams {
			q.Set(k, v)
		}
		raw += "?" + q.Encode()
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &URLError{Input: raw, Err: err}
	}
	if u.Host == "" {
		return "", &URLError{Input: raw, Err: errors.New("missing host")}
	}

	return u.String(), nil
}

// assemble converts a routed request and its resolved URL into a transport
// request. Headers use set semantics: a later entry for the same name
// replaces the earlier one. Body-bearing methods always attach a body,
// empty or not, with a fixed application/json content type.
func (c *Client) assemble(ctx context.Context, req *Request, rawURL string) (*http.Request, error) {
	var body io.Reader
	if req.Method != MethodGet {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), rawURL, body)
	if err != nil {
		return nil, &URLError{Input: rawURL, Err: err}
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	// Fixed content type for body-bearing methods, overriding any
	// Content-Type carried in the request headers.
	if req.Method != MethodGet {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

// executeAPICall sends the assembled request and normalizes the reply. The
// transport response body is closed on every exit path, including
// normalization failures.
func (c *Client) executeAPICall(httpReq *http.Request) (Reply, error) {
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Reply{}, err
	}
	if httpResp.Body != nil {
		defer httpResp.Body.Close()
	}

	return normalize(httpResp)
}

// normalize converts a transport response into a Reply. A response whose
// transport declares no body (nil or http.NoBody, as net/http reports for
// status codes like 204 and zero Content-Length) short-circuits to the
// empty reply before status or headers are read. A readable body of zero
// length is an ordinary Response with an empty Body string.
func normalize(httpResp *http.Response) (Reply, error) {
	if httpResp.Body == nil || httpResp.Body == http.NoBody {
		return Reply{Empty: true}, nil
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read response body: %w", err)
	}

	headers := make(map[string]string)
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}

	return Reply{Response: &Response{
		StatusCode: httpResp.StatusCode,
		Body:       string(body),
		Headers:    headers,
	}}, nil
}

// API routes the request by method and performs the call. All failures,
// URL construction included, surface through the single error return.
func (c *Client) API(req *Request) (Reply, error) {
	switch req.Method {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
	default:
		return Reply{}, ErrUnsupportedMethod
	}

	rawURL, err := c.BuildURL(req.BaseURL, req.Endpoint, req.QueryParams)
	if err != nil {
		return Reply{}, fmt.Errorf("build url: %w", err)
	}

	ctx := context.Background()
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := c.assemble(ctx, req, rawURL)
	if err != nil {
		return Reply{}, fmt.Errorf("assemble request: %w", err)
	}

	return c.executeAPICall(httpReq)
}

// call performs req with the method forced to m, on a copy so the original
// descriptor stays untouched.
func (c *Client) call(m Method, req *Request) (Reply, error) {
	r := *req
	r.Method = m
	return c.API(&r)
}

// Get performs req as a GET call. No body is attached even when req.Body
// is set.
func (c *Client) Get(req *Request) (Reply, error) {
	return c.call(MethodGet, req)
}

func (c *Client) Post(req *Request) (Reply, error) {
	return c.call(MethodPost, req)
}

func (c *Client) Put(req *Request) (Reply, error) {
	return c.call(MethodPut, req)
}

func (c *Client) Patch(req *Request) (Reply, error) {
	return c.call(MethodPatch, req)
}

// Delete performs req as a DELETE call. Like the other body-bearing
// methods it attaches req.Body, which may be empty.
func (c *Client) Delete(req *Request) (Reply, error) {
	return c.call(MethodDelete, req)
}

// Close releases idle connections held by a transport the client created
// itself. It is a no-op for caller-supplied transports and safe to call
// any number of times.
func (c *Client) Close() {
	if !c.owned {
		return
	}
	c.httpClient.CloseIdleConnections()
}
