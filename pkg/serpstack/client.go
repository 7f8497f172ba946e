// Package serpstack provides a client for the serpstack web search API.
package serpstack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.serpstack.com"

// ErrUsageLimit is returned when the access key is throttled: the provider
// reported a usage or rate limit (in-body error codes 104/106, or HTTP 429).
// Callers must treat it as "stop searching with this key", not as an empty
// result.
var ErrUsageLimit = eris.New("serpstack: usage limit reached")

// Serpstack in-body error codes that indicate a throttled access key.
const (
	errCodeUsageLimit = 104
	errCodeRateLimit  = 106
)

// Client performs serpstack search operations.
type Client interface {
	Search(ctx context.Context, query string, count int) (*SearchResponse, error)
}

// SearchResponse is the response from GET /search.
type SearchResponse struct {
	Request        RequestInfo     `json:"request"`
	OrganicResults []OrganicResult `json:"organic_results"`
}

// RequestInfo echoes the processed request.
type RequestInfo struct {
	ProcessedAt string `json:"processed_timestamp,omitempty"`
	SearchURL   string `json:"search_url,omitempty"`
}

// OrganicResult is a single organic web result.
type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Domain   string `json:"domain"`
	Snippet  string `json:"snippet"`
}

// errorEnvelope is the apilayer failure shape, delivered either with a
// non-2xx status or inside an HTTP 200 body with success=false.
type errorEnvelope struct {
	Success *bool `json:"success,omitempty"`
	Error   struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	accessKey string
	baseURL   string
	http      *http.Client
}

// NewClient creates a serpstack API client.
func NewClient(accessKey string, opts ...Option) Client {
	c := &httpClient{
		accessKey: accessKey,
		baseURL:   defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, count int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("access_key", c.accessKey)
	q.Set("query", query)
	q.Set("num", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpstack: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serpstack: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpstack: read response")
	}

	if throttled(resp.StatusCode, respBody) {
		return nil, ErrUsageLimit
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serpstack: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	// The provider reports some failures inside an HTTP 200 body.
	var env errorEnvelope
	if err := json.Unmarshal(respBody, &env); err == nil && env.Success != nil && !*env.Success {
		return nil, eris.Errorf("serpstack: api error %d (%s): %s", env.Error.Code, env.Error.Type, env.Error.Info)
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "serpstack: unmarshal response")
	}

	return &result, nil
}

// throttled reports whether the response signals a throttled access key:
// an explicit 429, or the in-body error envelope carrying a usage/rate
// limit code regardless of HTTP status.
func throttled(statusCode int, body []byte) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	if env.Success != nil && *env.Success {
		return false
	}
	return env.Error.Code == errCodeUsageLimit || env.Error.Code == errCodeRateLimit
}
