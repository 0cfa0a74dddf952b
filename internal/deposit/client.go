// Package deposit reconciles publication metadata with depositions already
// uploaded to Zenodo.
package deposit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Zenodo REST API base URL.
	BaseURL = "https://zenodo.org/api"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit stays under Zenodo's per-token request limit.
	RateLimit = 1.0

	// DefaultPageSize is the number of depositions requested in one listing.
	DefaultPageSize = 200

	// TokenEnv names the environment variable holding the access token.
	TokenEnv = "ZENODO_TOKEN"
)

// Client is a rate-limited HTTP client for the Zenodo deposit API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	token      string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the access token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing or the sandbox).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit overrides the request rate.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a Zenodo client. The token defaults to $ZENODO_TOKEN.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		token:      os.Getenv(TokenEnv),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deposition is the subset of a Zenodo deposition the pipeline reads.
type Deposition struct {
	ID       int    `json:"id"`
	DOI      string `json:"doi"`
	Created  string `json:"created"`
	Metadata struct {
		Title string `json:"title"`
	} `json:"metadata"`
	Files []struct {
		Filename string `json:"filename"`
	} `json:"files"`
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	}
	if resp.StatusCode == 429 {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return nil
}

// ListDepositions fetches the token owner's depositions, up to size entries.
func (c *Client) ListDepositions(ctx context.Context, size int) ([]Deposition, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: no token (set %s)", ErrAuthError, TokenEnv)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + "/deposit/depositions?" + url.Values{"size": {strconv.Itoa(size)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	var deps []Deposition
	if err := json.NewDecoder(resp.Body).Decode(&deps); err != nil {
		return nil, fmt.Errorf("%w: parsing depositions: %v", ErrInvalidResponse, err)
	}
	return deps, nil
}
