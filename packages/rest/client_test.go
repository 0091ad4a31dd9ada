package rest

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// testHost strips the scheme from an httptest server URL so it can be used
// as a Request base URL.
func testHost(t *testing.T, server *httptest.Server) string {
	t.Helper()
	return strings.TrimPrefix(server.URL, "http://")
}

func TestClient_BuildURL(t *testing.T) {
	client := NewClient()

	url, err := client.BuildURL("api.example.com", "/v1/widgets", map[string]string{"limit": "10"})

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/widgets?limit=10", url)
}

func TestClient_BuildURL_TestScheme(t *testing.T) {
	client := NewClient(WithTest(true))

	url, err := client.BuildURL("localhost:8080", "/v1/widgets", nil)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v1/widgets", url)
}

func TestClient_BuildURL_NoQueryParams(t *testing.T) {
	client := NewClient()

	url, err := client.BuildURL("api.example.com", "/v1/widgets", map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/widgets", url)
}

func TestClient_BuildURL_EncodesQueryParams(t *testing.T) {
	client := NewClient()

	url, err := client.BuildURL("api.example.com", "/search", map[string]string{
		"q": "a b&c",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/search?q=a+b%26c", url)
}

func TestClient_BuildURL_KeepsEncodedPath(t *testing.T) {
	client := NewClient()

	url, err := client.BuildURL("api.example.com", "/v1/widgets%2Fall", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/widgets%2Fall", url)
}

func TestClient_BuildURL_InvalidHost(t *testing.T) {
	client := NewClient()

	_, err := client.BuildURL("exa mple.com", "/v1", nil)

	var urlErr *URLError
	require.ErrorAs(t, err, &urlErr)
	assert.Contains(t, urlErr.Input, "exa mple.com")
}

func TestClient_BuildURL_MissingHost(t *testing.T) {
	client := NewClient()

	_, err := client.BuildURL("", "/v1", nil)

	var urlErr *URLError
	require.ErrorAs(t, err, &urlErr)
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1/widgets", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Header().Set("X-Id", "42")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(WithTest(true))
	req := NewRequest(MethodGet, testHost(t, server), "/v1/widgets").
		SetQueryParam("limit", "10")

	reply, err := client.API(req)

	require.NoError(t, err)
	require.False(t, reply.Empty)
	assert.Equal(t, 200, reply.Response.StatusCode)
	assert.Equal(t, `{"ok":true}`, reply.Response.Body)
	assert.Equal(t, "42", reply.Response.Header("X-Id"))
}

func TestClient_Get_NoBodyAttached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Empty(t, body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	client := NewClient(WithTest(true))
	req := NewRequest(MethodGet, testHost(t, server), "/").
		SetBody([]byte(`{"ignored":true}`))

	reply, err := client.Get(req)

	require.NoError(t, err)
	assert.Equal(t, 200, reply.Response.StatusCode)
}

func TestClient_Post_FixedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Len(t, r.Header.Values("Content-Type"), 1)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"name":"test"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":123}`))
	}))
	defer server.Close()

	client := NewClient(WithTest(true))
	req := NewRequest(MethodPost, testHost(t, server), "/v1/widgets").
		SetHeader("Content-Type", "text/plain").
		SetBody([]byte(`{"name":"test"}`))

	reply, err := client.API(req)

	require.NoError(t, err)
	assert.Equal(t, 201, reply.Response.StatusCode)
}

func TestClient_Delete_EmptyBodyStillJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(WithTest(true))
	req := NewRequest(MethodDelete, testHost(t, server), "/v1/widgets/1")

	reply, err := client.Delete(req)

	require.NoError(t, err)
	assert.Equal(t, 200, reply.Response.StatusCode)
}

func TestClient_PutAndPatch(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(WithTest(true))
	req := NewRequest("", testHost(t, server), "/v1/widgets/1").
		SetBody([]byte(`{"name":"renamed"}`))

	_, err := client.Put(req)
	require.NoError(t, err)
	_, err = client.Patch(req)
	require.NoError(t, err)

	assert.Equal(t, []string{"PUT", "PATCH"}, seen)
	// The helpers work on a copy, the descriptor keeps its method.
	assert.Equal(t, Method(""), req.Method)
}

func TestClient_HeaderSetSemantics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Accept"))
		assert.Len(t, r.Header.Values("Accept"), 1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(WithTest(true))
	req := NewRequest(MethodGet, testHost(t, server), "/").
		SetHeader("Accept", "application/json").
		SetHeader("Accept", "application/xml")

	_, err := client.API(req)

	require.NoError(t, err)
}

func TestClient_UnsupportedMethod(t *testing.T) {
	calls := 0
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("should not be reached")
	})}

	client := NewClient(WithHTTPClient(hc))

	_, err := client.API(NewRequest("", "api.example.com", "/v1"))
	require.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.EqualError(t, err, "unsupported method")

	_, err = client.API(NewRequest("TRACE", "api.example.com", "/v1"))
	require.ErrorIs(t, err, ErrUnsupportedMethod)

	assert.Zero(t, calls, "no network I/O for unsupported methods")
}

func TestClient_API_WrapsURLError(t *testing.T) {
	client := NewClient()

	_, err := client.API(NewRequest(MethodGet, "exa mple.com", "/v1"))

	require.Error(t, err)
	var urlErr *URLError
	assert.ErrorAs(t, err, &urlErr, "cause survives the merge into the single error channel")
}

func TestClient_TransportFailure(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}

	client := NewClient(WithHTTPClient(hc))
	req := NewRequest(MethodPost, "api.example.com", "/v1").SetBody([]byte(`{}`))

	reply, err := client.API(req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, reply.Response)
	assert.False(t, reply.Empty)
}

func TestClient_EmptyReply(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 204,
			Header:     http.Header{"X-Id": {"42"}},
			Body:       nil,
		}, nil
	})}

	client := NewClient(WithHTTPClient(hc))

	reply, err := client.API(NewRequest(MethodGet, "api.example.com", "/v1"))

	require.NoError(t, err)
	assert.True(t, reply.Empty)
	assert.Nil(t, reply.Response, "status and headers are not captured for an empty reply")
}

func TestClient_EmptyReply_NoContentStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(WithTest(true))

	// net/http reports a 204 as having no body, so the call yields the
	// empty reply, not a Response with status 204.
	reply, err := client.API(NewRequest(MethodGet, testHost(t, server), "/"))

	require.NoError(t, err)
	assert.True(t, reply.Empty)
	assert.Nil(t, reply.Response)
}

func TestClient_EmptyBodyIsNotEmptyReply(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode:    200,
			Header:        http.Header{"X-Id": {"42"}},
			ContentLength: -1,
			Body:          io.NopCloser(strings.NewReader("")),
		}, nil
	})}

	client := NewClient(WithHTTPClient(hc))

	reply, err := client.API(NewRequest(MethodGet, "api.example.com", "/v1"))

	require.NoError(t, err)
	require.False(t, reply.Empty)
	assert.Equal(t, 200, reply.Response.StatusCode)
	assert.Empty(t, reply.Response.Body)
	assert.Equal(t, "42", reply.Response.Headers["X-Id"])
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTest(true))
	req := NewRequest(MethodGet, testHost(t, server), "/").
		SetTimeout(50 * time.Millisecond)

	_, err := client.API(req)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

func TestClient_Close(t *testing.T) {
	client := NewClient()
	client.Close()
	client.Close() // idempotent

	hc := &http.Client{}
	supplied := NewClient(WithHTTPClient(hc))
	supplied.Close() // no-op for a caller-supplied transport
}

func TestNormalize_Idempotent(t *testing.T) {
	build := func() *http.Response {
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"X-Id": {"42"}, "Set-Cookie": {"a=1", "b=2"}},
			Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
		}
	}

	first, err := normalize(build())
	require.NoError(t, err)
	second, err := normalize(build())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalize_FlattensMultiValuedHeaders(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Set-Cookie": {"a=1", "b=2"}},
		Body:       io.NopCloser(strings.NewReader(``)),
	}

	reply, err := normalize(resp)

	require.NoError(t, err)
	assert.Equal(t, "a=1", reply.Response.Headers["Set-Cookie"])
}
