package rest

import "time"

// Method identifies the HTTP method of a Request. The set is closed: the
// client dispatches only the methods enumerated below and rejects anything
// else, including the zero value, before any network I/O happens.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Request describes one logical API call before it is bound to a URL and a
// transport. Build it with the chainable setters; once passed to a call it
// is read-only, the client never mutates it.
type Request struct {
	Method      Method
	BaseURL     string // host only, no scheme (e.g. "api.example.com")
	Endpoint    string // already percent-encoded path (e.g. "/v1/widgets")
	Headers     map[string]string
	QueryParams map[string]string
	Body        []byte
	Timeout     time.Duration // 0 means no per-call timeout
}

func NewRequest(method Method, baseURL, endpoint string) *Request {
	return &Request{
		Method:      method,
		BaseURL:     baseURL,
		Endpoint:    endpoint,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams[key] = value
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}
