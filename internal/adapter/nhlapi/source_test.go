package nhlapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SavantGrader/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_FetchesScheduleFromYesterday(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(scheduleWeek))
	}))
	defer srv.Close()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	src := NewSource(&config.FeedConfig{URL: srv.URL + "/v1/", Timeout: 5}, ny, quietLogger())
	// 03:00 UTC on the 25th is the evening of the 24th in New York
	src.now = func() time.Time { return time.Date(2025, 11, 25, 3, 0, 0, 0, time.UTC) }

	body, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/v1/schedule/2025-11-23", gotPath)
	assert.Len(t, testExtractor().ExtractResults(body), 2)
}

func TestSource_BreakerOpensAfterFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewSource(&config.FeedConfig{URL: srv.URL, MaxFailures: 2}, nil, quietLogger())
	for i := 0; i < 3; i++ {
		_, err := src.Fetch(context.Background())
		assert.Error(t, err)
	}
	assert.Equal(t, 2, hits)
}

func TestSource_NotConfigured(t *testing.T) {
	_, err := NewSource(&config.FeedConfig{}, nil, quietLogger()).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoScoresConfigured)
}
