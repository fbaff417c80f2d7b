package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyShutdown(t *testing.T) {
	t.Parallel()

	type call struct{ auth, text string }
	calls := make(chan call, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls <- call{auth: r.Header.Get("Authorization"), text: body["text"]}
	}))
	defer hook.Close()

	require.NoError(t, notifyShutdown(context.Background(), hook.URL, "s3cret"))
	got := <-calls
	assert.Equal(t, "Bearer s3cret", got.auth)
	assert.Contains(t, got.text, "shut down")
}

func TestNotifyShutdown_NoURL(t *testing.T) {
	t.Parallel()
	assert.NoError(t, notifyShutdown(context.Background(), "", ""))
}

func TestNotifyShutdown_BadStatus(t *testing.T) {
	t.Parallel()

	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer hook.Close()

	assert.Error(t, notifyShutdown(context.Background(), hook.URL, ""))
}

func TestAwaitGames_NoActiveGames(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	assert.Zero(t, s.awaitGames(ctx, time.Hour))
	assert.Less(t, time.Since(start), time.Second)
}

func TestShutdown_Idempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	s.Shutdown()
	assert.NotPanics(t, s.Shutdown)
}
