package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/alexivanou/gans/internal/model"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			w.Write([]byte(`{"value": 42}`))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("X-Api-Key", "secret")
	c := NewClient("test", Options{Header: header}, zap.NewNop())
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		resp, err := c.Get(ctx, srv.URL+"/ok", url.Values{"units": {"metric"}})
		require.NoError(t, err)
		assert.True(t, resp.OK())
		assert.JSONEq(t, `{"value": 42}`, string(resp.Body))
	})

	t.Run("no content is not an error", func(t *testing.T) {
		resp, err := c.Get(ctx, srv.URL+"/empty", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("server error is a lookup error", func(t *testing.T) {
		_, err := c.Get(ctx, srv.URL+"/broken", nil)
		var lookupErr *model.LookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.Equal(t, http.StatusInternalServerError, lookupErr.StatusCode)
		assert.Equal(t, "test", lookupErr.Source)
	})
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"value": 42}`))
		case "/garbage":
			w.Write([]byte(`<html>`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := NewClient("test", Options{}, zap.NewNop())
	ctx := context.Background()

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, c.GetJSON(ctx, srv.URL+"/ok", nil, &out))
	assert.Equal(t, 42, out.Value)

	err := c.GetJSON(ctx, srv.URL+"/garbage", nil, &out)
	var parseErr *model.ParseError
	assert.True(t, errors.As(err, &parseErr))

	err = c.GetJSON(ctx, srv.URL+"/denied", nil, &out)
	var lookupErr *model.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, http.StatusUnauthorized, lookupErr.StatusCode)
}

func TestClient_BreakerOpensWithoutRetrying(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("flaky", Options{BreakerFailures: 2}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := c.Get(ctx, srv.URL, nil)
		assert.Error(t, err)
	}

	// two real requests trip the breaker, the rest fail fast
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	_, err := c.Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestClient_NonPositiveBreakerNeverTrips(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	for _, failures := range []int{0, -1} {
		atomic.StoreInt32(&hits, 0)
		c := NewClient("flaky", Options{BreakerFailures: failures}, zap.NewNop())
		for i := 0; i < 6; i++ {
			_, err := c.Get(context.Background(), srv.URL, nil)
			assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
		}
		assert.Equal(t, int32(6), atomic.LoadInt32(&hits), "failures=%d", failures)
	}
}
