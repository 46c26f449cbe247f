package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daypilot/backend/config"
	"github.com/daypilot/backend/internal/testhelpers"
)

func TestNew(t *testing.T) {
	log, _ := testhelpers.Logger()
	srv := New(&config.Config{ServerHost: "localhost", ServerPort: "8080"}, http.NotFoundHandler(), log)
	assert.Equal(t, "localhost:8080", srv.http.Addr)
}

func TestServeAndShutdown(t *testing.T) {
	log, _ := testhelpers.Logger()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := New(&config.Config{ServerHost: "127.0.0.1", ServerPort: "0"}, handler, log)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStartReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	log, _ := testhelpers.Logger()
	srv := New(&config.Config{ServerHost: host, ServerPort: port}, http.NotFoundHandler(), log)

	assert.Error(t, srv.Start(context.Background()))
}
