// Package remote is the HTTP client for the live facility search service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/pkg/utils"
)

const (
	// DefaultTimeout bounds a single search call.
	DefaultTimeout = 5 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20

	statusSuccess = "success"
)

var (
	// ErrUnsuccessful is returned when the service answers without status "success".
	ErrUnsuccessful = errors.New("remote search unsuccessful")
	// ErrEmptyResult is returned when the service succeeds with no facilities.
	ErrEmptyResult = errors.New("remote search returned no facilities")
)

// Client calls the remote search service. It never retries.
type Client struct {
	url        string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client posting queries to url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the service endpoint.
func (c *Client) URL() string {
	return c.url
}

type searchRequest struct {
	Crop     string `json:"crop"`
	Quantity string `json:"quantity"`
	Location string `json:"location"`
}

type searchResponse struct {
	Status     string             `json:"status"`
	Message    string             `json:"message,omitempty"`
	Facilities []*models.Facility `json:"facilities"`
	Count      int                `json:"count"`
}

// Search sends q to the service and returns its facilities in the order received.
// Transport failures, non-200 responses, a status other than "success" and an empty
// facility list are all reported as errors.
func (c *Client) Search(ctx context.Context, q *models.Query) ([]*models.Facility, error) {
	body, err := json.Marshal(searchRequest{Crop: q.Crop, Quantity: q.Quantity, Location: q.Location})
	if err != nil {
		return nil, fmt.Errorf("remote: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: http: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("remote: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote: status %d: %s", resp.StatusCode, utils.Truncate(string(respBytes), 200))
	}

	var out searchResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, fmt.Errorf("remote: unmarshal response: %w", err)
	}
	if out.Status != statusSuccess {
		return nil, fmt.Errorf("%w: status %q %s", ErrUnsuccessful, out.Status, out.Message)
	}
	facilities := out.Facilities[:0]
	for _, f := range out.Facilities {
		if f != nil {
			facilities = append(facilities, f)
		}
	}
	if len(facilities) == 0 {
		return nil, ErrEmptyResult
	}
	return facilities, nil
}
