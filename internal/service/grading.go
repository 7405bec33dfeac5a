package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SavantGrader/internal/config"
	"SavantGrader/internal/interfaces"
	"SavantGrader/internal/lock"
	"SavantGrader/internal/model"
	"SavantGrader/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const gradingLockKey = "grading:run"

// RunSummary counters of one grading pass
type RunSummary struct {
	RunID          string        `json:"runId"`
	CompletedGames int           `json:"completedGames"`
	ScoredGames    int           `json:"scoredGames"` // completed games carrying final scores
	PendingBets    int           `json:"pendingBets"`
	Graded         int           `json:"graded"`
	AlreadyGraded  int           `json:"alreadyGraded"`
	Unmatched      int           `json:"unmatched"` // completed games without a pending bet
	Skipped        int           `json:"skipped"`   // matched but not gradable from this feed
	Failed         int           `json:"failed"`
	Wins           int           `json:"wins"`
	Losses         int           `json:"losses"`
	Pushes         int           `json:"pushes"`
	Profit         float64       `json:"profit"`
	Duration       time.Duration `json:"duration"`
}

// GradingService Extract -> Match -> Grade -> Persist
type GradingService struct {
	source    interfaces.FeedSource
	extractor interfaces.ResultExtractor
	scores    interfaces.FeedSource // optional final-score feed
	scoresExt interfaces.ResultExtractor
	betRepo   repository.BetRepository
	locker    lock.Locker
	cfg       *config.GradingConfig
	lockTTL   time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

// NewGradingService locker may be nil (no cross-process lock)
func NewGradingService(
	source interfaces.FeedSource,
	extractor interfaces.ResultExtractor,
	betRepo repository.BetRepository,
	locker lock.Locker,
	cfg *config.GradingConfig,
	lockTTL time.Duration,
	logger *logrus.Logger,
) *GradingService {
	if locker == nil {
		locker = lock.Noop{}
	}
	return &GradingService{
		source:    source,
		extractor: extractor,
		betRepo:   betRepo,
		locker:    locker,
		cfg:       cfg,
		lockTTL:   lockTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// WithScores adds a final-score feed merged into the results feed each run
func (s *GradingService) WithScores(source interfaces.FeedSource, extractor interfaces.ResultExtractor) *GradingService {
	s.scores, s.scoresExt = source, extractor
	return s
}

// Run one pass. Feed and store-listing failures fail the run; a single bet's failure never does.
func (s *GradingService) Run(ctx context.Context) (*RunSummary, error) {
	started := s.now()
	summary := &RunSummary{RunID: uuid.NewString()}
	log := s.logger.WithField("run_id", summary.RunID)

	release, err := s.locker.Acquire(ctx, gradingLockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire grading lock: %w", err)
	}
	defer release()

	markdown, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	results := s.extractor.ExtractResults(markdown)
	results = s.mergeScores(ctx, log, results)
	summary.CompletedGames = len(results)
	for _, r := range results {
		if r.HasScores() {
			summary.ScoredGames++
		}
	}
	if len(results) == 0 {
		log.Info("no completed games in feed")
		summary.Duration = s.now().Sub(started)
		return summary, nil
	}

	dates := GameDates(s.now(), s.cfg.Location(), s.cfg.LookbackDays)
	pending, err := s.betRepo.ListPending(ctx, s.cfg.Sport, dates)
	if err != nil {
		return nil, fmt.Errorf("list pending bets: %w", err)
	}
	summary.PendingBets = len(pending)
	log.WithFields(logrus.Fields{
		"completed_games": len(results),
		"pending_bets":    len(pending),
		"dates":           dates,
	}).Info("grading started")

	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		matched := MatchPendingBets(result, pending)
		if len(matched) == 0 {
			summary.Unmatched++
			log.WithFields(logrus.Fields{
				"away_team": result.AwayTeam,
				"home_team": result.HomeTeam,
			}).Info("no bet found for completed game")
			continue
		}
		for _, bet := range matched {
			s.gradeOne(ctx, log, bet, result, summary)
		}
	}

	summary.Duration = s.now().Sub(started)
	log.WithFields(logrus.Fields{
		"scored_games":   summary.ScoredGames,
		"graded":         summary.Graded,
		"already_graded": summary.AlreadyGraded,
		"unmatched":      summary.Unmatched,
		"skipped":        summary.Skipped,
		"failed":         summary.Failed,
		"profit":         summary.Profit,
	}).Info("grading finished")
	return summary, nil
}

// mergeScores a score feed failure is logged, never fatal: moneyline still grades from the results feed
func (s *GradingService) mergeScores(ctx context.Context, log *logrus.Entry, results []*model.CompletedGameResult) []*model.CompletedGameResult {
	if s.scores == nil || s.scoresExt == nil {
		return results
	}
	doc, err := s.scores.Fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("score feed unavailable, grading without scores")
		return results
	}
	merged, sum := MergeScores(results, s.scoresExt.ExtractResults(doc), log)
	log.WithFields(logrus.Fields{
		"scored":    sum.Scored,
		"added":     sum.Added,
		"conflicts": sum.Conflicts,
	}).Info("scores merged")
	return merged
}

func (s *GradingService) gradeOne(ctx context.Context, log *logrus.Entry, bet *model.Bet, result *model.CompletedGameResult, summary *RunSummary) {
	entry := log.WithFields(logrus.Fields{"bet_key": bet.BetKey, "market": bet.Market})

	g, err := Grade(bet, result, s.cfg.DefaultUnits)
	if err != nil {
		if errors.Is(err, ErrNoScore) {
			summary.Skipped++
			entry.Info("no score for total, bet stays pending")
			return
		}
		summary.Failed++
		entry.WithError(err).Warn("bet not gradable, skipped")
		return
	}

	err = s.betRepo.ApplyResult(ctx, bet.BetKey, &repository.BetResult{
		Outcome:    g.Outcome,
		Profit:     g.Profit,
		Units:      g.Units,
		Winner:     result.Winner,
		WinnerTeam: result.WinnerTeam,
		AwayScore:  result.AwayScore,
		HomeScore:  result.HomeScore,
		Source:     result.Source,
		FetchedAt:  s.now(),
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyGraded):
		summary.AlreadyGraded++
		entry.Info("already graded")
		return
	case err != nil:
		summary.Failed++
		entry.WithError(err).Warn("write result failed")
		return
	}

	summary.Graded++
	summary.Profit += g.Profit
	switch g.Outcome {
	case model.OutcomeWin:
		summary.Wins++
	case model.OutcomeLoss:
		summary.Losses++
	case model.OutcomePush:
		summary.Pushes++
	}
	entry.WithFields(logrus.Fields{"outcome": g.Outcome, "profit": g.Profit}).Info("bet graded")
}

// GameDates today and the lookbackDays before it in loc, newest first, formatted YYYY-MM-DD
func GameDates(now time.Time, loc *time.Location, lookbackDays int) []string {
	if loc == nil {
		loc = time.UTC
	}
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	local := now.In(loc)
	dates := make([]string, 0, lookbackDays+1)
	for i := 0; i <= lookbackDays; i++ {
		dates = append(dates, local.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}
