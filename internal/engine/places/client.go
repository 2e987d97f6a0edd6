// Package places adapts the Places nearby-search HTTP API to the engine's
// SearchPort. All provider response shapes stop here; the engine only sees
// normalized model.Place values.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/rcanales/brewscout/internal/engine/discovery"
)

const (
	nearbyBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

	// The provider returns at most pageSize results per call and paginates
	// up to maxPages; a full final page means the area is likely truncated.
	pageSize = 20
	maxPages = 3

	maxRetries   = 3
	baseBackoff  = 2 * time.Second
	maxBackoff   = 30 * time.Second
	jitterFactor = 0.5

	// A freshly issued page token takes a moment to become valid upstream.
	pageTokenDelay = 2 * time.Second
)

// RateLimitError indicates the provider is throttling us; the call is worth
// retrying after a backoff.
type RateLimitError struct {
	StatusCode int
	Status     string
}

func (e *RateLimitError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("rate limited (%s)", e.Status)
	}
	return fmt.Sprintf("rate limited (http %d)", e.StatusCode)
}

// Client is a SearchPort backed by the nearby-search endpoint.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
}

// Option mutates a Client at construction.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBaseURL points the client at an alternative endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		baseURL: nearbyBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ discovery.SearchPort = (*Client)(nil)

// Search pages through nearby results for one grid point. APICallsUsed is
// the number of pages actually fetched; PossiblyTruncated is set when the
// final page was full or a further page token was left unconsumed.
func (c *Client) Search(ctx context.Context, lat, lng float64, radiusMeters int, keyword string) (discovery.SearchResult, error) {
	var out discovery.SearchResult

	token := ""
	lastPageCount := 0
	for page := 0; page < maxPages; page++ {
		if page > 0 {
			select {
			case <-time.After(pageTokenDelay):
			case <-ctx.Done():
				return discovery.SearchResult{}, ctx.Err()
			}
		}

		resp, err := c.fetchPage(ctx, lat, lng, radiusMeters, keyword, token)
		if err != nil {
			return discovery.SearchResult{}, err
		}
		out.APICallsUsed++
		lastPageCount = len(resp.Results)

		for _, raw := range resp.Results {
			out.Places = append(out.Places, normalize(raw))
		}

		token = resp.NextPageToken
		if token == "" {
			break
		}
	}

	out.PossiblyTruncated = token != "" || lastPageCount >= pageSize
	return out, nil
}

// fetchPage performs one paged call with retry and exponential backoff on
// throttling, mirroring the provider's documented retryable statuses.
func (c *Client) fetchPage(ctx context.Context, lat, lng float64, radiusMeters int, keyword, pageToken string) (*nearbyResponse, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("key", c.apiKey)
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}
	reqURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := range maxRetries {
		resp, err := c.doRequest(ctx, reqURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if _, ok := err.(*RateLimitError); !ok {
			return nil, err
		}

		backoff := baseBackoff * time.Duration(1<<uint(attempt))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		jitter := time.Duration(float64(backoff) * jitterFactor * rand.Float64())
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*nearbyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, &RateLimitError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var parsed nearbyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch parsed.Status {
	case "OK", "ZERO_RESULTS":
		return &parsed, nil
	case "OVER_QUERY_LIMIT", "RESOURCE_EXHAUSTED":
		return nil, &RateLimitError{Status: parsed.Status}
	default:
		return nil, fmt.Errorf("provider status %s: %s", parsed.Status, parsed.ErrorMessage)
	}
}
