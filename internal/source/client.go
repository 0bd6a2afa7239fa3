// Package source holds the HTTP plumbing shared by the external data source
// clients (place documents, weather forecasts, airports and flights).
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alexivanou/gans/internal/model"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Options configure a Client
type Options struct {
	Timeout time.Duration
	// BreakerFailures consecutive failures open the circuit; 0 or less disables tripping
	BreakerFailures int
	// Header is sent with every request
	Header http.Header
	// HTTPClient overrides the default client, mostly for tests
	HTTPClient *http.Client
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 200 response
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Client performs GET requests against one external source. Transport errors
// and 5xx responses count against a circuit breaker; while it is open calls
// fail fast with a LookupError. Requests are never retried.
type Client struct {
	name    string
	http    *http.Client
	header  http.Header
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error: %d", e.code)
}

// NewClient creates a client for the source called name
func NewClient(name string, opts Options, logger *zap.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var failures uint32
	if opts.BreakerFailures > 0 {
		failures = uint32(opts.BreakerFailures)
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("source circuit breaker changed state",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		name:    name,
		http:    httpClient,
		header:  opts.Header,
		breaker: breaker,
		logger:  logger,
	}
}

// Name returns the source name used in errors and logs
func (c *Client) Name() string {
	return c.name
}

// Get fetches rawURL with query appended. Any response below 500 is returned
// as is; deciding what a 204 or 404 means is up to the caller.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	target := rawURL
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &model.LookupError{Source: c.name, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &statusError{code: resp.StatusCode}
		}
		return &Response{StatusCode: resp.StatusCode, Body: body}, nil
	})
	if err != nil {
		lookupErr := &model.LookupError{Source: c.name, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			lookupErr.StatusCode = se.code
		}
		c.logger.Debug("source request failed",
			zap.String("source", c.name),
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return nil, lookupErr
	}

	resp := result.(*Response)
	c.logger.Debug("source request done",
		zap.String("source", c.name),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// GetJSON fetches rawURL and decodes a 200 response into v. Any other status
// is a LookupError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, v interface{}) error {
	resp, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &model.LookupError{
			Source:     c.name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &model.ParseError{Source: c.name, Field: "response body", Err: err}
	}
	return nil
}
