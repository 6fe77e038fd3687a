package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) ObserveProvider(_, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestGetJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/sui", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("community_data"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("x-cg-demo-api-key"))
		w.Write([]byte(`{"id":"sui"}`))
	}))
	defer srv.Close()

	rec := &outcomeRecorder{}
	c := New(Options{
		Name:     "coingecko",
		BaseURL:  srv.URL + "/",
		Headers:  map[string]string{"x-cg-demo-api-key": "secret"},
		Recorder: rec,
	})

	var out struct {
		ID string `json:"id"`
	}
	err := c.GetJSON(context.Background(), "/coins/sui", url.Values{"community_data": {"true"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "sui", out.ID)
	assert.Equal(t, []string{"ok"}, rec.outcomes)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{}`, ErrNotFound},
		{"server error", http.StatusBadGateway, `{}`, ErrUnavailable},
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrUnavailable},
		{"bad json", http.StatusOK, `{"id":`, ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := New(Options{Name: "test", BaseURL: srv.URL})
			var out map[string]any
			err := c.GetJSON(context.Background(), "/x", nil, &out)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Options{Name: "slow", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	var out map[string]any
	err := c.GetJSON(context.Background(), "/", nil, &out)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Options{Name: "flaky", BaseURL: srv.URL, BreakerFailures: 2, BreakerCooldown: time.Minute})
	var out map[string]any
	for i := 0; i < 2; i++ {
		require.ErrorIs(t, c.GetJSON(context.Background(), "/", nil, &out), ErrUnavailable)
	}

	err := c.GetJSON(context.Background(), "/", nil, &out)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Options{Name: "sparse", BaseURL: srv.URL, BreakerFailures: 1})
	var out map[string]any
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, c.GetJSON(context.Background(), "/", nil, &out), ErrNotFound)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"result":7}`))
	}))
	defer srv.Close()

	c := New(Options{Name: "rpc", BaseURL: srv.URL})
	var out struct {
		Result int `json:"result"`
	}
	require.NoError(t, c.PostJSON(context.Background(), "", map[string]any{"method": "ping"}, &out))
	assert.Equal(t, 7, out.Result)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(ErrNotFound))
	assert.Equal(t, "malformed", Outcome(ErrMalformed))
	assert.Equal(t, "unavailable", Outcome(errors.New("boom")))
}
