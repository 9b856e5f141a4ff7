// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/internal/logging"
)

func newTestServer(t *testing.T) (*Server, string) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := New(logging.NewNoop(), listener, HTTPConfig{ReadHeaderTimeout: time.Second}, []string{"*"}, time.Second)
	return s, "http://" + listener.Addr().String()
}

func TestServer(t *testing.T) {
	require := require.New(t)

	s, uri := newTestServer(t)
	body := strings.Repeat("vault", 1_000)
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}), "/large"))
	require.ErrorIs(s.AddRoute(http.NotFoundHandler(), "/large"), ErrDuplicateRoute)

	r := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "test_counter",
		Help:      "counter used by tests",
	})
	require.NoError(r.Register(counter))
	counter.Inc()
	require.NoError(s.AddMetrics(r))

	done := make(chan error, 1)
	go func() {
		done <- s.Dispatch()
	}()

	req, err := http.NewRequest(http.MethodGet, uri+"/large", nil)
	require.NoError(err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Equal("gzip", resp.Header.Get("Content-Encoding"))

	resp, err = http.Get(uri + MetricsEndpoint)
	require.NoError(err)
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Contains(string(metrics), "vault_test_counter 1")

	resp, err = http.Get(uri + "/missing")
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusNotFound, resp.StatusCode)

	require.NoError(s.Shutdown())
	require.ErrorIs(<-done, http.ErrServerClosed)
}
