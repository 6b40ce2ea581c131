package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/event-api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"
	cfg.Server.Port = "0"

	var logs syncBuffer
	logger := zerolog.New(&logs)

	s := &Server{Config: cfg, Logger: &logger}
	s.SetupHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, logs.String(), "server is running on port 0")

	resp, err := http.Get("http://" + s.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	assert.True(t, errors.Is(<-errCh, http.ErrServerClosed))
}

func TestServer_StartWithoutSetup(t *testing.T) {
	s := &Server{Config: config.DefaultConfig()}
	assert.EqualError(t, s.Start(), "HTTP server not initialized")
}
