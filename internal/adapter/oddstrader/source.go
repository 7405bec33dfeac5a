package oddstrader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"SavantGrader/internal/config"
	"SavantGrader/internal/interfaces"
	"SavantGrader/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrNoFeedConfigured neither feed.path nor feed.url is set
var ErrNoFeedConfigured = errors.New("no results feed configured (feed.path or feed.url)")

const maxFeedBytes = 32 << 20

// Source reads the markdown export from a local file, or from a URL behind a circuit breaker
type Source struct {
	cfg        *config.FeedConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewSource Path wins over URL when both are configured
func NewSource(cfg *config.FeedConfig, logger *logrus.Logger) interfaces.FeedSource {
	return &Source{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		breaker:    httpclient.NewBreaker("results-feed", cfg.MaxFailures, logger),
		logger:     logger,
	}
}

// Fetch whole document as a string
func (s *Source) Fetch(ctx context.Context) (string, error) {
	switch {
	case s.cfg.Path != "":
		return s.readFile()
	case s.cfg.URL != "":
		body, err := s.breaker.Execute(func() (interface{}, error) {
			return s.download(ctx)
		})
		if err != nil {
			return "", fmt.Errorf("fetch results feed: %w", err)
		}
		return body.(string), nil
	default:
		return "", ErrNoFeedConfigured
	}
}

func (s *Source) readFile() (string, error) {
	raw, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		return "", fmt.Errorf("read results feed %s: %w", s.cfg.Path, err)
	}
	s.logger.WithFields(logrus.Fields{"path": s.cfg.Path, "bytes": len(raw)}).Info("results feed loaded from file")
	return string(raw), nil
}

func (s *Source) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/markdown, text/plain, */*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.WithError(err).Warn("close feed response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, s.cfg.URL)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", err
	}
	s.logger.WithFields(logrus.Fields{"url": s.cfg.URL, "bytes": len(raw)}).Info("results feed downloaded")
	return string(raw), nil
}
