package jira

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/jira-bridge/internal/config"
)

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Header  http.Header
	Body    []byte
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

// fakeJira answers every request with status and body, recording what it saw.
func fakeJira(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			RawPath: r.URL.EscapedPath(),
			Header:  r.Header.Clone(),
			Body:    b,
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(&config.Connection{BaseURL: baseURL, Token: "tok"})
	require.NoError(t, err)
	return c
}

func TestNew_NilConnection(t *testing.T) {
	t.Parallel()
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira connection cannot be nil")
}

func TestGetIssue_RequestShape(t *testing.T) {
	t.Parallel()
	srv, seen := fakeJira(t, http.StatusOK, `{"key":"ABC-1"}`)
	c := newTestClient(t, srv.URL)

	got, err := c.GetIssue(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"key": "ABC-1"}, got)

	require.Len(t, seen.all(), 1)
	req := seen.all()[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/api/2/issue/ABC-1", req.Path)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Empty(t, req.Body)
}

func TestGetIssue_NotFound(t *testing.T) {
	t.Parallel()
	srv, _ := fakeJira(t, http.StatusNotFound, `"not found"`)
	c := newTestClient(t, srv.URL)

	_, err := c.GetIssue(context.Background(), "ABC-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, `Jira API error: 404 - "not found"`, err.Error())
}

func TestSearchIssues_RequestBody(t *testing.T) {
	t.Parallel()
	srv, seen := fakeJira(t, http.StatusOK, `{"issues":[],"total":0}`)
	c := newTestClient(t, srv.URL)

	_, err := c.SearchIssues(context.Background(), "project = ABC")
	require.NoError(t, err)

	require.Len(t, seen.all(), 1)
	req := seen.all()[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/api/2/search", req.Path)
	assert.JSONEq(t, `{"jql":"project = ABC","maxResults":50}`, string(req.Body))
}

func TestNamedOperations_Paths(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		call func(context.Context, *Client) (any, error)
		path string
	}{
		{"transitions", func(ctx context.Context, c *Client) (any, error) { return c.GetIssueTransitions(ctx, "ABC-1") }, "/rest/api/2/issue/ABC-1/transitions"},
		{"changelog", func(ctx context.Context, c *Client) (any, error) { return c.GetIssueChangelog(ctx, "ABC-1") }, "/rest/api/2/issue/ABC-1/changelog"},
		{"myself", func(ctx context.Context, c *Client) (any, error) { return c.GetMyself(ctx) }, "/rest/api/2/myself"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, seen := fakeJira(t, http.StatusOK, `{}`)
			c := newTestClient(t, srv.URL)

			_, err := tt.call(context.Background(), c)
			require.NoError(t, err)
			require.Len(t, seen.all(), 1)
			assert.Equal(t, http.MethodGet, seen.all()[0].Method)
			assert.Equal(t, tt.path, seen.all()[0].Path)
		})
	}
}

func TestRequest_BaseURLWithPath(t *testing.T) {
	t.Parallel()
	srv, seen := fakeJira(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL+"/jira/")

	_, err := c.GetMyself(context.Background())
	require.NoError(t, err)
	require.Len(t, seen.all(), 1)
	assert.Equal(t, "/jira/rest/api/2/myself", seen.all()[0].Path)
}

func TestRequest_IssueKeyIsEscaped(t *testing.T) {
	t.Parallel()
	srv, seen := fakeJira(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.GetIssue(context.Background(), "ABC-1/../myself")
	require.NoError(t, err)
	require.Len(t, seen.all(), 1)
	assert.Equal(t, "/rest/api/2/issue/ABC-1%2F..%2Fmyself", seen.all()[0].RawPath)
}

func TestRequest_DotIssueKeysStayInPlace(t *testing.T) {
	t.Parallel()
	tests := []struct {
		key  string
		want string
	}{
		{"..", "/rest/api/2/issue/%2E%2E/transitions"},
		{".", "/rest/api/2/issue/%2E/transitions"},
		{"...", "/rest/api/2/issue/.../transitions"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			srv, seen := fakeJira(t, http.StatusOK, `{}`)
			c := newTestClient(t, srv.URL)

			_, err := c.GetIssueTransitions(context.Background(), tt.key)
			require.NoError(t, err)
			require.Len(t, seen.all(), 1)
			assert.Equal(t, tt.want, seen.all()[0].RawPath)
		})
	}
}

// countingTransport counts round trips before delegating.
type countingTransport struct {
	mu   sync.Mutex
	n    int
	next http.RoundTripper
}

func (ct *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ct.mu.Lock()
	ct.n++
	ct.mu.Unlock()
	return ct.next.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()
	srv, _ := fakeJira(t, http.StatusOK, `{"name":"alice"}`)
	ct := &countingTransport{next: srv.Client().Transport}

	c, err := New(&config.Connection{BaseURL: srv.URL, Token: "tok"}, WithHTTPClient(&http.Client{Transport: ct}))
	require.NoError(t, err)

	got, err := c.GetMyself(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "alice"}, got)
	ct.mu.Lock()
	defer ct.mu.Unlock()
	assert.Equal(t, 1, ct.n)
}

func TestRequest_CallerHeadersOverride(t *testing.T) {
	t.Parallel()
	srv, seen := fakeJira(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Request(context.Background(), "/rest/api/2/myself",
		WithHeader("Accept", "application/xml"),
		WithHeader("X-Atlassian-Token", "no-check"),
	)
	require.NoError(t, err)
	require.Len(t, seen.all(), 1)
	assert.Equal(t, "application/xml", seen.all()[0].Header.Get("Accept"))
	assert.Equal(t, "no-check", seen.all()[0].Header.Get("X-Atlassian-Token"))
	assert.Equal(t, "Bearer tok", seen.all()[0].Header.Get("Authorization"))
}

func TestRequest_PayloadRoundTrip(t *testing.T) {
	t.Parallel()
	body := `{"id":"10001","big":12345678901234567890,"nested":{"list":[1,"two",null,true]},"empty":{}}`
	srv, _ := fakeJira(t, http.StatusOK, body)
	c := newTestClient(t, srv.URL)

	got, err := c.GetIssue(context.Background(), "ABC-1")
	require.NoError(t, err)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))
	assert.Contains(t, string(out), "12345678901234567890")
}

func TestRequest_InvalidJSON(t *testing.T) {
	t.Parallel()
	srv, _ := fakeJira(t, http.StatusOK, `<html>login</html>`)
	c := newTestClient(t, srv.URL)

	_, err := c.GetIssue(context.Background(), "ABC-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse jira response")
}

func TestRequest_TrailingDataAfterJSON(t *testing.T) {
	t.Parallel()
	srv, _ := fakeJira(t, http.StatusOK, `{"key":"ABC-1"} <html>oops</html>`)
	c := newTestClient(t, srv.URL)

	got, err := c.GetIssue(context.Background(), "ABC-1")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "failed to parse jira response")
}

func TestRequest_TrailingWhitespaceIsFine(t *testing.T) {
	t.Parallel()
	srv, _ := fakeJira(t, http.StatusOK, "{\"key\":\"ABC-1\"}\n\n")
	c := newTestClient(t, srv.URL)

	got, err := c.GetIssue(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"key": "ABC-1"}, got)
}

func TestRequest_EmptyBody(t *testing.T) {
	t.Parallel()
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		srv, _ := fakeJira(t, status, ``)
		c := newTestClient(t, srv.URL)

		got, err := c.Request(context.Background(), "/rest/api/2/myself")
		require.Error(t, err, "status %d", status)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "failed to parse jira response")
	}
}

func TestRequest_TransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	_, err := c.GetMyself(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch from jira")
}

func TestRequest_CancelledContext(t *testing.T) {
	t.Parallel()
	srv, seen := fakeJira(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetMyself(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, seen.all())
}
