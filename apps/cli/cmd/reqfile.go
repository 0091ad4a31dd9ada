package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/restcall/packages/config"
	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

// RequestFile is the YAML description of one call.
type RequestFile struct {
	Method   string            `yaml:"method"`
	BaseURL  string            `yaml:"baseUrl"`
	Endpoint string            `yaml:"endpoint"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Query    map[string]string `yaml:"query,omitempty"`
	Body     string            `yaml:"body,omitempty"`
	Timeout  int               `yaml:"timeout,omitempty"` // milliseconds
}

func loadRequestFile(path string) (*RequestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var rf RequestFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse request file %s: %w", path, err)
	}
	return &rf, nil
}

// toRequest converts the file into a Request, filling gaps from the
// config: base URL, default headers and timeout.
func (rf *RequestFile) toRequest(cfg *config.Config) *rest.Request {
	method := rest.Method(strings.ToUpper(rf.Method))
	baseURL := rf.BaseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}

	req := rest.NewRequest(method, baseURL, rf.Endpoint)

	for k, v := range cfg.Headers {
		req.SetHeader(k, v)
	}
	for k, v := range rf.Headers {
		req.SetHeader(k, v)
	}
	for k, v := range rf.Query {
		req.SetQueryParam(k, v)
	}

	if rf.Body != "" {
		req.SetBody([]byte(rf.Body))
	}

	timeout := rf.Timeout
	if timeout == 0 {
		timeout = cfg.Timeout
	}
	if timeout > 0 {
		req.SetTimeout(time.Duration(timeout) * time.Millisecond)
	}

	return req
}
