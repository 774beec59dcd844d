// Package api is the stateless HTTP transport for the Graph RAG backend.
// It issues exactly two kinds of calls (stats fetch, query submission),
// normalizes partially populated responses, and maps every failure into
// the TransportError / MalformedResponseError taxonomy. No caching, no
// retries, no de-duplication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL matches the backend's uvicorn default plus its
	// versioned route prefix.
	DefaultBaseURL = "http://localhost:8000/api/v1"

	// DefaultTopK is the number of entities the backend retrieves when
	// the caller does not say otherwise.
	DefaultTopK = 15

	// DefaultTimeout bounds a single round trip. Generation on the
	// backend can take a while; a timeout surfaces as a TransportError
	// like any other network failure.
	DefaultTimeout = 60 * time.Second

	// FallbackAnswer replaces an absent answer field so the controller
	// never sees a half-populated result.
	FallbackAnswer = "No answer found."
)

// StatsSnapshot is a point-in-time copy of the backend's aggregate
// counters. It is fetched once at session start and never refreshed.
type StatsSnapshot struct {
	EntityCount int
	FactCount   int
}

// QueryResult is a fully normalized answer to one query. Every field is
// populated by the time it leaves SubmitQuery.
type QueryResult struct {
	Answer        string
	EntitiesFound []string
	NumTriplets   int
}

// HealthStatus reports backend component readiness from /health.
type HealthStatus struct {
	Status     string
	Components map[string]bool
}

// Client talks to one backend. Safe for concurrent use; holds no state
// beyond the base URL and the underlying http.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client for the given base URL
// ({scheme}://{host}:{port}/api/v1). Empty baseURL and non-positive
// timeout fall back to the defaults.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// BaseURL returns the normalized base URL the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

type statsResponse struct {
	Entities int `json:"entities"`
	Triplets int `json:"triplets"`
}

// GetStats fetches the aggregate graph counters. Any network or parse
// failure is a *TransportError; there is no retry.
func (c *Client) GetStats(ctx context.Context) (StatsSnapshot, error) {
	const op = "get stats"

	body, err := c.get(ctx, op, "/stats")
	if err != nil {
		return StatsSnapshot{}, err
	}

	var sr statsResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		// The stats payload has no per-field tolerance story; a body we
		// cannot read is as good as an unreachable backend.
		return StatsSnapshot{}, &TransportError{Op: op, Err: err}
	}

	return StatsSnapshot{EntityCount: sr.Entities, FactCount: sr.Triplets}, nil
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResponse struct {
	Answer        *string  `json:"answer"`
	EntitiesFound []string `json:"entities_found"`
	NumTriplets   int      `json:"num_triplets"`
	Status        string   `json:"status"`
}

// SubmitQuery sends one natural-language query and returns the normalized
// result. text must be non-empty; topK defaults to DefaultTopK when it is
// not positive. Network failures and non-2xx statuses are
// *TransportError; a 2xx body that is not JSON is *MalformedResponseError.
func (c *Client) SubmitQuery(ctx context.Context, text string, topK int) (QueryResult, error) {
	const op = "submit query"

	if strings.TrimSpace(text) == "" {
		return QueryResult{}, fmt.Errorf("%s: empty query text", op)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	payload, err := json.Marshal(queryRequest{Query: text, TopK: topK})
	if err != nil {
		return QueryResult{}, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	started := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(payload))
	if err != nil {
		return QueryResult{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return QueryResult{}, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return QueryResult{}, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return QueryResult{}, &TransportError{Op: op, Status: resp.StatusCode}
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return QueryResult{}, &MalformedResponseError{Op: op, Err: err}
	}

	result := normalize(qr)
	c.log.Debug("query round trip",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("entities", len(result.EntitiesFound)),
		zap.Int("triplets", result.NumTriplets))
	return result, nil
}

// normalize fills in defaults for absent fields so downstream code never
// branches on nil. The status field is deliberately ignored.
func normalize(qr queryResponse) QueryResult {
	result := QueryResult{
		Answer:        FallbackAnswer,
		EntitiesFound: []string{},
		NumTriplets:   qr.NumTriplets,
	}
	if qr.Answer != nil && *qr.Answer != "" {
		result.Answer = *qr.Answer
	}
	if qr.EntitiesFound != nil {
		result.EntitiesFound = qr.EntitiesFound
	}
	if result.NumTriplets < 0 {
		result.NumTriplets = 0
	}
	return result
}

type healthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}

// GetHealth probes the backend's health endpoint. Used only by the stats
// subcommand; the session core never calls it.
func (c *Client) GetHealth(ctx context.Context) (HealthStatus, error) {
	const op = "get health"

	body, err := c.get(ctx, op, "/health")
	if err != nil {
		return HealthStatus{}, err
	}

	var hr healthResponse
	if err := json.Unmarshal(body, &hr); err != nil {
		return HealthStatus{}, &TransportError{Op: op, Err: err}
	}
	return HealthStatus{Status: hr.Status, Components: hr.Components}, nil
}

// get issues one GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, Status: resp.StatusCode}
	}
	return body, nil
}
