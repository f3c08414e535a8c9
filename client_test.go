package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	hc, mt := newMockClient(t)
	var userAgent string
	mt.RegisterResponder(http.MethodGet, testHost+"/ok", func(req *http.Request) (*http.Response, error) {
		userAgent = req.Header.Get("User-Agent")
		return httpmock.NewStringResponse(http.StatusOK, "body"), nil
	})
	mt.RegisterResponder(http.MethodGet, testHost+"/missing", httpmock.NewStringResponder(http.StatusNotFound, ""))
	c := NewClient(hc, newTestConf(t))

	body, err := c.Get(context.Background(), testHost+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))
	assert.Equal(t, "gigapan-tiler/0.1", userAgent)

	_, err = c.Get(context.Background(), testHost+"/missing")
	assert.ErrorIs(t, err, ErrStatus)
}

func TestClient_Timedelay(t *testing.T) {
	hc, mt := newMockClient(t)
	mt.RegisterResponder(http.MethodGet, testHost+"/ok", httpmock.NewStringResponder(http.StatusOK, "body"))
	c := NewClient(hc, newTestConf(t, func(c *Conf) {
		c.Task.Timedelay = 50
	}))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), testHost+"/ok")
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Cooldown: 10 * time.Millisecond, Exponent: 2}
	assert.Equal(t, 10*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 40*time.Millisecond, p.Backoff(2))

	p.Cooldown = 0
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("fail")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryPolicy{}.Do(context.Background(), func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
