// Package extract pulls values out of normalized responses using gjson
// path expressions.
package extract

import (
	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

type Extractor struct {
	response *rest.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *rest.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if resp.IsJSON() {
		e.bodyJSON = gjson.Parse(resp.Body)
	}
	return e
}

// Body extracts a value from the response body. An empty path returns the
// whole body: the parsed document for JSON responses, the raw string
// otherwise.
func (e *Extractor) Body(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.Body, true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// Header extracts a response header value, matching case-insensitively.
func (e *Extractor) Header(name string) (string, bool) {
	v := e.response.Header(name)
	return v, v != ""
}

// Status returns the response status code.
func (e *Extractor) Status() int {
	return e.response.StatusCode
}
