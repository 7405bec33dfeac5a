package nhlapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"SavantGrader/internal/config"
	"SavantGrader/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrNoScoresConfigured neither scores.path nor scores.url is set
var ErrNoScoresConfigured = errors.New("no score feed configured (scores.path or scores.url)")

const maxBodyBytes = 8 << 20

// Source pulls the schedule week starting yesterday, so late games from last night are included
type Source struct {
	cfg        *config.FeedConfig
	loc        *time.Location
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
	now        func() time.Time
}

// NewSource loc is the game-date timezone; cfg.URL is the API base, e.g. https://api-web.nhle.com/v1
func NewSource(cfg *config.FeedConfig, loc *time.Location, logger *logrus.Logger) *Source {
	if loc == nil {
		loc = time.UTC
	}
	return &Source{
		cfg:        cfg,
		loc:        loc,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		breaker:    httpclient.NewBreaker("score-feed", cfg.MaxFailures, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// ScheduleURL endpoint for the week starting the day before now
func (s *Source) ScheduleURL() string {
	date := s.now().In(s.loc).AddDate(0, 0, -1).Format("2006-01-02")
	return strings.TrimRight(s.cfg.URL, "/") + "/schedule/" + date
}

// Fetch raw schedule JSON
func (s *Source) Fetch(ctx context.Context) (string, error) {
	switch {
	case s.cfg.Path != "":
		raw, err := os.ReadFile(s.cfg.Path)
		if err != nil {
			return "", fmt.Errorf("read score feed %s: %w", s.cfg.Path, err)
		}
		return string(raw), nil
	case s.cfg.URL != "":
		body, err := s.breaker.Execute(func() (interface{}, error) {
			return s.download(ctx, s.ScheduleURL())
		})
		if err != nil {
			return "", fmt.Errorf("fetch score feed: %w", err)
		}
		return body.(string), nil
	default:
		return "", ErrNoScoresConfigured
	}
}

func (s *Source) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.WithError(err).Warn("close score response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("NHL API returned %d for %s", resp.StatusCode, url)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	s.logger.WithFields(logrus.Fields{"url": url, "bytes": len(raw)}).Info("score feed downloaded")
	return string(raw), nil
}
