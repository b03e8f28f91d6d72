/*
PURPOSE:
  HTTP client for the Jira REST API (v2).
  One generic Request method plus the five named operations the bridge needs.

REQUIREMENTS:
  User-specified:
  - Bearer token auth, JSON in and out.
  - Non-2xx responses fail with the status code and the body text.
  - Search is capped at 50 results, no pagination.

  Implementation-discovered:
  - oauth2.StaticTokenSource gives us the Authorization header for free and
    keeps the credential out of the request-building code.
  - Caller headers are applied last so they can override the defaults.
  - UseNumber keeps large ids and timestamps exactly as Jira sent them.
  - A 2xx body must be exactly one JSON value; empty or trailing data fails.

ARCHITECTURE INTEGRATION:
  - Called by: internal/dispatch
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - *APIError for remote status failures.
  - Transport and decode errors are logged and returned wrapped (%w).
  - No retries and no client timeout: the request lives as long as ctx.

IMPLEMENTATION RULES:
  - Use net/http.
  - Join paths with url.JoinPath; escape issue keys.

USAGE:
  c, err := jira.New(conn)
  issue, err := c.GetIssue(ctx, "ABC-1")

SELF-HEALING INSTRUCTIONS:
  - If Atlassian retires /rest/api/2/search, update searchPath only.

RELATED FILES:
  - internal/config/config.go
  - internal/dispatch/dispatch.go

MAINTENANCE:
  - Add new endpoints as thin wrappers over Request.
*/

package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/daryltucker/jira-bridge/internal/config"
	"github.com/daryltucker/jira-bridge/internal/output"
)

// SearchMaxResults is the fixed page size for SearchIssues.
const SearchMaxResults = 50

const (
	apiPrefix  = "/rest/api/2"
	searchPath = apiPrefix + "/search"
	myselfPath = apiPrefix + "/myself"
)

// APIError is returned when Jira answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Jira API error: %d - %s", e.StatusCode, e.Body)
}

// Client talks to a single Jira instance.
type Client struct {
	baseURL *url.URL
	tokens  oauth2.TokenSource
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client from a resolved connection.
func New(conn *config.Connection, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, errors.New("jira connection cannot be nil")
	}
	u, err := url.Parse(conn.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		baseURL: u,
		tokens:  oauth2.StaticTokenSource(&oauth2.Token{AccessToken: conn.Token, TokenType: "Bearer"}),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type requestOptions struct {
	method  string
	body    any
	headers http.Header
}

// RequestOption customises a single Request call.
type RequestOption func(*requestOptions)

// WithMethod sets the HTTP method (default GET).
func WithMethod(method string) RequestOption {
	return func(o *requestOptions) {
		o.method = method
	}
}

// WithBody sets a value to be JSON-encoded as the request body.
func WithBody(v any) RequestOption {
	return func(o *requestOptions) {
		o.body = v
	}
}

// WithHeader sets an extra header, overriding any default of the same name.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// Request performs an authenticated call against endpoint (relative to the
// base URL) and returns the decoded JSON response.
func (c *Client) Request(ctx context.Context, endpoint string, opts ...RequestOption) (any, error) {
	o := requestOptions{method: http.MethodGet, headers: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}

	target := c.baseURL.JoinPath(endpoint)

	var body io.Reader
	if o.body != nil {
		b, err := json.Marshal(o.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal jira request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, o.method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira request: %w", err)
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain jira token: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range o.headers {
		req.Header[k] = vs
	}

	output.Logger.Debug("Jira request", "method", o.method, "url", target.String())

	resp, err := c.http.Do(req)
	if err != nil {
		output.Logger.Debug("Jira request failed", "method", o.method, "url", target.String(), "error", err)
		return nil, fmt.Errorf("failed to fetch from jira: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		output.Logger.Debug("Reading jira response failed", "url", target.String(), "error", err)
		return nil, fmt.Errorf("failed to read jira response: %w", err)
	}

	output.Logger.Debug("Jira response", "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	payload, err := decodeJSON(respBody)
	if err != nil {
		output.Logger.Debug("Jira returned invalid JSON", "url", target.String(), "error", err)
		return nil, fmt.Errorf("failed to parse jira response: %w", err)
	}
	return payload, nil
}

// decodeJSON parses body as exactly one JSON value. Empty bodies and
// trailing data are errors.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty response body")
		}
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return payload, nil
}

// GetIssue fetches a single issue by key.
func (c *Client) GetIssue(ctx context.Context, issueKey string) (any, error) {
	return c.Request(ctx, issuePath(issueKey))
}

type searchRequest struct {
	JQL        string `json:"jql"`
	MaxResults int    `json:"maxResults"`
}

// SearchIssues runs a JQL search, returning at most SearchMaxResults issues.
func (c *Client) SearchIssues(ctx context.Context, jql string) (any, error) {
	return c.Request(ctx, searchPath,
		WithMethod(http.MethodPost),
		WithBody(searchRequest{JQL: jql, MaxResults: SearchMaxResults}),
	)
}

// GetIssueTransitions lists the workflow transitions available for an issue.
func (c *Client) GetIssueTransitions(ctx context.Context, issueKey string) (any, error) {
	return c.Request(ctx, issuePath(issueKey)+"/transitions")
}

// GetIssueChangelog fetches an issue's change history.
func (c *Client) GetIssueChangelog(ctx context.Context, issueKey string) (any, error) {
	return c.Request(ctx, issuePath(issueKey)+"/changelog")
}

// GetMyself returns the user the token authenticates as.
func (c *Client) GetMyself(ctx context.Context) (any, error) {
	return c.Request(ctx, myselfPath)
}

// issuePath escapes the key as a single segment. "." and ".." are
// percent-encoded too, otherwise JoinPath would resolve them.
func issuePath(issueKey string) string {
	seg := url.PathEscape(issueKey)
	if seg == "." || seg == ".." {
		seg = strings.ReplaceAll(seg, ".", "%2E")
	}
	return apiPrefix + "/issue/" + seg
}
