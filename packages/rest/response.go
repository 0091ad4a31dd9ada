package rest

import "strings"

// Response is the normalized outcome of a completed call.
type Response struct {
	StatusCode int
	Body       string
	// Headers holds one value per header name. Multi-valued headers are
	// flattened to the single value the transport reports for that name.
	Headers map[string]string
}

// Reply is the two-case result of a call: either a normalized Response, or
// an empty reply when the server sent no body at all. When Empty is true
// the transport declared no body and nothing else was captured, so
// Response is nil; check Empty before using Response.
type Reply struct {
	Response *Response
	Empty    bool
}

// Header returns the value for key, matching the name case-insensitively.
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}
