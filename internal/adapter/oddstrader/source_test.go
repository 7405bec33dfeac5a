package oddstrader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"SavantGrader/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_FetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odds.md")
	require.NoError(t, os.WriteFile(path, []byte("| markdown |"), 0o600))

	src := NewSource(&config.FeedConfig{Path: path}, quietLogger())
	body, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "| markdown |", body)
}

func TestSource_FetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("| remote |"))
	}))
	defer srv.Close()

	src := NewSource(&config.FeedConfig{URL: srv.URL, Timeout: 5}, quietLogger())
	body, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "| remote |", body)
}

func TestSource_BreakerOpensAfterFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewSource(&config.FeedConfig{URL: srv.URL, MaxFailures: 2}, quietLogger())
	for i := 0; i < 4; i++ {
		_, err := src.Fetch(context.Background())
		assert.Error(t, err)
	}
	assert.Equal(t, 2, hits)
}

func TestSource_NotConfigured(t *testing.T) {
	_, err := NewSource(&config.FeedConfig{}, quietLogger()).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoFeedConfigured)
}
