package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/catalog-image-sync/internal/repository"
)

const (
	DefaultBaseURL = "https://api.pexels.com"
	// PlaceholderAPIKey is the value shipped in sample configuration. It is
	// treated the same as an empty key.
	PlaceholderAPIKey = "YOUR_PEXELS_API_KEY_HERE"

	searchPath = "/v1/search"
)

// HTTPDoer is a minimal interface for HTTP clients
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPError wraps non-2xx search responses
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Client searches the Pexels photo API. It implements repository.ImageFinder.
type Client struct {
	httpClient  HTTPDoer
	baseURL     string
	apiKey      string
	orientation string
	size        string
}

// Option configures a Client
type Option func(*Client)

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithOrientation sets the orientation hint: square, landscape or portrait.
func WithOrientation(orientation string) Option {
	return func(c *Client) {
		c.orientation = orientation
	}
}

// WithImageSize selects which entry of a photo's "src" map is returned.
func WithImageSize(size string) Option {
	return func(c *Client) {
		c.size = size
	}
}

// NewClient creates a search client. Defaults: square orientation, medium size.
func NewClient(apiKey string, options ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		orientation: "square",
		size:        "medium",
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// HasUsableKey reports whether key looks like a real credential.
func HasUsableKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

// CheckCredentials returns ErrMissingAPIKey when the client has no usable key.
func (c *Client) CheckCredentials() error {
	if !HasUsableKey(c.apiKey) {
		return repository.ErrMissingAPIKey
	}
	return nil
}

type searchResponse struct {
	TotalResults int     `json:"total_results"`
	Photos       []photo `json:"photos"`
}

type photo struct {
	ID           int64             `json:"id"`
	URL          string            `json:"url"`
	Photographer string            `json:"photographer"`
	Src          map[string]string `json:"src"`
}

// FindImage requests a single result for query and returns the URL of the
// configured size of the first photo.
func (c *Client) FindImage(ctx context.Context, query string) (string, error) {
	if err := c.CheckCredentials(); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", c.orientation)
	params.Set("per_page", "1")
	endpoint := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", repository.ErrSearchFailed, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", repository.ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %w", repository.ErrSearchFailed, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", repository.ErrSearchFailed, err)
	}

	if len(body.Photos) == 0 {
		return "", repository.ErrNoImageFound
	}
	imageURL := body.Photos[0].Src[c.size]
	if imageURL == "" {
		return "", fmt.Errorf("%w: first photo has no %q source", repository.ErrNoImageFound, c.size)
	}
	return imageURL, nil
}
