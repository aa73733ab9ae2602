package violations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lister reads the newest page of the violation collection.
type Lister interface {
	List(ctx context.Context) ([]Violation, error)
}

// StatusUpdater writes the status of a single violation.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id ID, status Status) error
}

// Ensure Client implements both interfaces at compile time.
var (
	_ Lister        = (*Client)(nil)
	_ StatusUpdater = (*Client)(nil)
)

var (
	// ErrFetch classifies failures of the List operation.
	ErrFetch = errors.New("fetch failed")
	// ErrMutation classifies failures of the Update operation.
	ErrMutation = errors.New("mutation failed")
)

// APIError reports a non-2xx response from the collection endpoint.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

const (
	defaultUserAgent = "patrol/0.1"
	// DefaultRequestTimeout bounds every request to the collection.
	DefaultRequestTimeout = 10 * time.Second
	maxErrorBody          = 512
)

// Options configure a Client.
type Options struct {
	BaseURL    string // collection endpoint, e.g. https://x.example.co/rest/v1/violations
	APIKey     string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client // optional, overrides Timeout
}

// Client talks to the remote violation collection.
type Client struct {
	baseURL   *url.URL
	baseErr   error
	apiKey    string
	http      *http.Client
	userAgent string
}

// NewClient builds a Client. Connection parameters are not validated here: a
// missing or malformed URL or key surfaces as a failure of each request.
func NewClient(opts Options) *Client {
	base, err := parseBaseURL(opts.BaseURL)
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:   base,
		baseErr:   err,
		apiKey:    strings.TrimSpace(opts.APIKey),
		http:      httpClient,
		userAgent: ua,
	}
}

// List fetches the newest PageSize violations ordered by timestamp descending.
func (c *Client) List(ctx context.Context) ([]Violation, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrFetch)
	}
	values := url.Values{}
	values.Set("select", "*")
	values.Set("order", "timestamp.desc")
	values.Set("limit", strconv.Itoa(PageSize))

	req, err := c.newRequest(ctx, http.MethodGet, values, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	var payload []Violation
	if err := c.do(req, "list", &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if len(payload) > PageSize {
		payload = payload[:PageSize]
	}
	return payload, nil
}

// UpdateStatus sets the status of the violation identified by id.
func (c *Client) UpdateStatus(ctx context.Context, id ID, status Status) error {
	if c == nil {
		return fmt.Errorf("%w: client is nil", ErrMutation)
	}
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("%w: id required", ErrMutation)
	}
	body, err := json.Marshal(map[string]Status{"status": status})
	if err != nil {
		return fmt.Errorf("%w: encode body: %w", ErrMutation, err)
	}
	values := url.Values{}
	values.Set("id", "eq."+string(id))

	req, err := c.newRequest(ctx, http.MethodPatch, values, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMutation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	if err := c.do(req, "update", nil); err != nil {
		return fmt.Errorf("%w: %w", ErrMutation, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, query url.Values, body io.Reader) (*http.Request, error) {
	if c.baseErr != nil {
		return nil, c.baseErr
	}
	u := *c.baseURL
	u.RawQuery = query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, op string, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("collection url is not configured")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse collection url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("collection url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("collection url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
