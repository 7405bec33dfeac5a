package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SavantGrader/internal/config"
	"SavantGrader/internal/repository"

	"github.com/sirupsen/logrus"
)

// BookmarkSyncSummary counters of one bookmark result sync
type BookmarkSyncSummary struct {
	Bookmarks  int `json:"bookmarks"`
	Candidates int `json:"candidates"`
	Updated    int `json:"updated"`
	Pending    int `json:"pending"` // no graded bet matched yet
	AlreadySet int `json:"alreadySet"`
	Errors     int `json:"errors"`
}

// BookmarkSyncService copies graded bet results onto bookmarks of yesterday's and today's games
type BookmarkSyncService struct {
	bookmarkRepo repository.BookmarkRepository
	betRepo      repository.BetRepository
	cfg          *config.BookmarksConfig
	loc          *time.Location
	logger       *logrus.Logger
	now          func() time.Time
}

// NewBookmarkSyncService loc is the game-date timezone
func NewBookmarkSyncService(bookmarkRepo repository.BookmarkRepository, betRepo repository.BetRepository, cfg *config.BookmarksConfig, loc *time.Location, logger *logrus.Logger) *BookmarkSyncService {
	return &BookmarkSyncService{
		bookmarkRepo: bookmarkRepo,
		betRepo:      betRepo,
		cfg:          cfg,
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}
}

// Run a bookmark's result is written at most once
func (s *BookmarkSyncService) Run(ctx context.Context) (*BookmarkSyncSummary, error) {
	summary := &BookmarkSyncSummary{}
	dates := GameDates(s.now(), s.loc, 1)

	bookmarks, err := s.bookmarkRepo.ListWithoutResult(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks without result: %w", err)
	}
	summary.Bookmarks = len(bookmarks)
	if len(bookmarks) == 0 {
		s.logger.Info("no bookmarks waiting for a result")
		return summary, nil
	}

	candidates, err := s.betRepo.ListRecentCompleted(ctx, s.cfg.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("list graded bets: %w", err)
	}
	summary.Candidates = len(candidates)

	for _, bm := range bookmarks {
		bet := MatchBookmark(bm, candidates)
		if bet == nil || bet.ResultOutcome == nil {
			summary.Pending++
			continue
		}
		err := s.bookmarkRepo.ApplyResult(ctx, bm.BookmarkID, *bet.ResultOutcome, bet.ResultProfit, s.now())
		switch {
		case errors.Is(err, repository.ErrAlreadyGraded):
			summary.AlreadySet++
		case err != nil:
			summary.Errors++
			s.logger.WithError(err).WithField("bookmark_id", bm.BookmarkID).Warn("bookmark result not written")
		default:
			summary.Updated++
			s.logger.WithFields(logrus.Fields{
				"bookmark_id": bm.BookmarkID,
				"bet_key":     bet.BetKey,
				"outcome":     *bet.ResultOutcome,
			}).Info("bookmark result written")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"updated": summary.Updated,
		"pending": summary.Pending,
		"errors":  summary.Errors,
	}).Info("bookmark sync finished")
	return summary, nil
}
