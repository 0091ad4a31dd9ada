package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/restcall/packages/config"
	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

func resetCallFlags(t *testing.T) {
	t.Helper()
	callFileFlag = ""
	callMethodFlag = ""
	callBaseFlag = ""
	callHeaderFlags = nil
	callQueryFlags = nil
	callDataFlag = ""
	callTimeoutFlag = 0
}

func TestBuildCallRequest_FromFlags(t *testing.T) {
	resetCallFlags(t)
	callMethodFlag = "post"
	callBaseFlag = "api.example.com"
	callHeaderFlags = []string{"Authorization: Bearer token"}
	callQueryFlags = []string{"limit=10"}
	callDataFlag = `{"name":"gear"}`
	callTimeoutFlag = 2000

	req, err := buildCallRequest(&config.Config{}, []string{"/v1/widgets"})

	require.NoError(t, err)
	assert.Equal(t, rest.MethodPost, req.Method)
	assert.Equal(t, "api.example.com", req.BaseURL)
	assert.Equal(t, "/v1/widgets", req.Endpoint)
	assert.Equal(t, "Bearer token", req.Headers["Authorization"])
	assert.Equal(t, "10", req.QueryParams["limit"])
	assert.Equal(t, `{"name":"gear"}`, string(req.Body))
	assert.Equal(t, 2*time.Second, req.Timeout)
}

func TestBuildCallRequest_DefaultsToGet(t *testing.T) {
	resetCallFlags(t)

	req, err := buildCallRequest(&config.Config{BaseURL: "api.example.com"}, []string{"/"})

	require.NoError(t, err)
	assert.Equal(t, rest.MethodGet, req.Method)
	assert.Equal(t, "api.example.com", req.BaseURL)
}

func TestBuildCallRequest_BadHeader(t *testing.T) {
	resetCallFlags(t)
	callHeaderFlags = []string{"no-separator"}

	_, err := buildCallRequest(&config.Config{}, nil)

	assert.Error(t, err)
}

func TestBuildCallRequest_BadQuery(t *testing.T) {
	resetCallFlags(t)
	callQueryFlags = []string{"missing-value"}

	_, err := buildCallRequest(&config.Config{}, nil)

	assert.Error(t, err)
}

func TestBuildCallRequest_FileWithFlagOverrides(t *testing.T) {
	resetCallFlags(t)
	callFileFlag = writeRequestFile(t, `
method: get
baseUrl: api.example.com
endpoint: /v1/widgets
`)
	callMethodFlag = "DELETE"

	req, err := buildCallRequest(&config.Config{}, nil)

	require.NoError(t, err)
	assert.Equal(t, rest.MethodDelete, req.Method)
	assert.Equal(t, "/v1/widgets", req.Endpoint)
}
