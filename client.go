package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrStatus marks a response whose status code was not 200.
var ErrStatus = errors.New("unexpected status")

// Client wraps the outbound requests of a run: User-Agent, per request
// timeout and optional pacing between requests.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient builds a client from the server and task config. A timedelay of
// zero disables pacing.
func NewClient(httpClient *http.Client, c *Conf) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cl := &Client{
		httpClient: httpClient,
		userAgent:  c.Server.UserAgent,
		timeout:    c.Task.Timeout,
	}
	if c.Task.Timedelay > 0 {
		every := time.Duration(c.Task.Timedelay) * time.Millisecond
		cl.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
	return cl
}

// Get performs a GET and returns the body. Non-200 responses are errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// RetryPolicy 重试策略. MaxAttempts counts the first try.
type RetryPolicy struct {
	MaxAttempts int
	Cooldown    time.Duration
	Exponent    float64
}

func NewRetryPolicy(c *Conf) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.Task.Retries,
		Cooldown:    c.Task.RetryCooldown,
		Exponent:    c.Task.RetryExponent,
	}
}

// Backoff is the wait after the given zero based failed try.
func (p RetryPolicy) Backoff(try int) time.Duration {
	exp := p.Exponent
	if exp < 1 {
		exp = 1
	}
	return time.Duration(float64(p.Cooldown) * math.Pow(exp, float64(try)))
}

// Do runs fn until it succeeds or attempts run out, returning the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for try := 0; try < attempts; try++ {
		if err = fn(); err == nil {
			return nil
		}
		if try == attempts-1 {
			break
		}
		log.Debugf("attempt %d/%d failed: %s", try+1, attempts, err)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(p.Backoff(try)):
		}
	}
	return err
}
