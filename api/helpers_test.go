package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// testServer fakes both Steamlytics hosts. hits counts every request
// except the account probe.
type testServer struct {
	t    *testing.T
	srv  *httptest.Server
	mux  *http.ServeMux
	hits atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{t: t, mux: http.NewServeMux()}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/account" {
			ts.hits.Add(1)
		}
		ts.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

// withPlan registers an account endpoint reporting the given API level.
func (ts *testServer) withPlan(level int) *testServer {
	ts.handle("/v1/account", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"success":              true,
			"api_plan":             level,
			"subscription_ends_at": 1700000000,
			"calls_this_minute":    1,
			"calls_today":          42,
		})
	})
	return ts
}

func (ts *testServer) handle(pattern string, h http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, h)
}

func (ts *testServer) host() string {
	return strings.TrimPrefix(ts.srv.URL, "http://")
}

func (ts *testServer) options(extra ...ClientOption) []ClientOption {
	return append([]ClientOption{
		WithHosts(ts.host(), ts.host()),
		WithLogger(slog.New(slog.DiscardHandler)),
	}, extra...)
}

// dial returns a ready client pointed at the server.
func (ts *testServer) dial(extra ...ClientOption) *Client {
	ts.t.Helper()
	c, _, err := Dial(context.Background(), "test-key", ts.options(extra...)...)
	require.NoError(ts.t, err)
	require.Equal(ts.t, StateReady, c.State())
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

// roundTripFunc lets a function stand in for the HTTP transport.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
