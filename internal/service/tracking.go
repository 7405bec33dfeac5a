package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"SavantGrader/internal/config"
	"SavantGrader/internal/model"
	"SavantGrader/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ActionDuplicate key already recorded earlier in the same batch; the store was not touched
const ActionDuplicate repository.RecordAction = "duplicate"

// Observation one quote of a recommended bet as produced by the odds poller
type Observation struct {
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
	Sport     string   `json:"sport" validate:"omitempty,oneof=NHL BASKETBALL"`
	AwayTeam  string   `json:"awayTeam" validate:"required"`
	HomeTeam  string   `json:"homeTeam" validate:"required,nefield=AwayTeam"`
	GameTime  string   `json:"gameTime"`
	Market    string   `json:"market" validate:"required"`
	Pick      string   `json:"pick" validate:"required"`
	Team      string   `json:"team"`
	Odds      int      `json:"odds" validate:"required,americanodds"`
	Line      *float64 `json:"line"`
	Side      string   `json:"side" validate:"omitempty,oneof=HOME AWAY OVER UNDER"`
	ModelProb float64  `json:"modelProb" validate:"gte=0,lte=1"`
	EVPercent float64  `json:"evPercent"`
	Grade     string   `json:"grade"`
	Tier      string   `json:"tier"`
	Units     float64  `json:"units" validate:"gte=0"`
}

// TrackingSummary counters of one RecordBatch
type TrackingSummary struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Completed int `json:"completed"`
	Duplicate int `json:"duplicate"`
	Invalid   int `json:"invalid"`
	Failed    int `json:"failed"`
}

// seenKeys bet keys written earlier in one batch; each batch builds its own
type seenKeys map[string]struct{}

func (k seenKeys) has(key string) bool {
	_, ok := k[key]
	return ok
}

func (k seenKeys) mark(key string) {
	k[key] = struct{}{}
}

// BetTrackingService records recommended bets and their material moves
type BetTrackingService struct {
	betRepo  repository.BetRepository
	cfg      *config.TrackingConfig
	validate *validator.Validate
	logger   *logrus.Logger
	now      func() time.Time
}

// NewBetTrackingService creates a BetTrackingService
func NewBetTrackingService(betRepo repository.BetRepository, cfg *config.TrackingConfig, logger *logrus.Logger) *BetTrackingService {
	v := validator.New()
	if err := v.RegisterValidation("americanodds", func(fl validator.FieldLevel) bool {
		return math.Abs(float64(fl.Field().Int())) >= 100
	}); err != nil {
		panic(fmt.Sprintf("register americanodds validation: %v", err))
	}
	return &BetTrackingService{
		betRepo:  betRepo,
		cfg:      cfg,
		validate: v,
		logger:   logger,
		now:      time.Now,
	}
}

// Validate checks an observation without recording it
func (s *BetTrackingService) Validate(obs *Observation) error {
	if err := s.validate.Struct(obs); err != nil {
		return err
	}
	if _, ok := model.ParseMarket(strings.ToUpper(obs.Market)); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMarket, obs.Market)
	}
	return nil
}

// Record create, append history, or nothing
func (s *BetTrackingService) Record(ctx context.Context, obs *Observation) (repository.RecordAction, string, error) {
	return s.record(ctx, obs, nil)
}

// record a key already in seen returns ActionDuplicate; a key is only marked once its write succeeded
func (s *BetTrackingService) record(ctx context.Context, obs *Observation, seen seenKeys) (repository.RecordAction, string, error) {
	if err := s.Validate(obs); err != nil {
		return "", "", err
	}
	bet := s.toBet(obs)
	if seen != nil && seen.has(bet.BetKey) {
		return ActionDuplicate, bet.BetKey, nil
	}

	action, err := s.betRepo.RecordObservation(ctx, bet, s.now(), func(cur *model.Bet) bool {
		return MateriallyMoved(cur, bet, s.cfg)
	})
	if err != nil {
		return "", bet.BetKey, err
	}
	if seen != nil {
		seen.mark(bet.BetKey)
	}
	s.logger.WithFields(logrus.Fields{"bet_key": bet.BetKey, "action": action}).Debug("observation recorded")
	return action, bet.BetKey, nil
}

// RecordBatch one polling run with its own dedup cache; one bad observation never aborts the batch
func (s *BetTrackingService) RecordBatch(ctx context.Context, list []*Observation) *TrackingSummary {
	seen := make(seenKeys, len(list))
	summary := &TrackingSummary{}
	for _, obs := range list {
		action, key, err := s.record(ctx, obs, seen)
		if err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) || errors.Is(err, ErrUnknownMarket) {
				summary.Invalid++
			} else {
				summary.Failed++
			}
			s.logger.WithError(err).WithField("bet_key", key).Warn("observation not recorded")
			continue
		}
		switch action {
		case repository.ActionCreated:
			summary.Created++
		case repository.ActionUpdated:
			summary.Updated++
		case repository.ActionUnchanged:
			summary.Unchanged++
		case repository.ActionCompleted:
			summary.Completed++
		case ActionDuplicate:
			summary.Duplicate++
		}
	}
	s.logger.WithFields(logrus.Fields{
		"created":   summary.Created,
		"updated":   summary.Updated,
		"unchanged": summary.Unchanged,
		"duplicate": summary.Duplicate,
		"invalid":   summary.Invalid,
		"failed":    summary.Failed,
	}).Info("observations recorded")
	return summary
}

func (s *BetTrackingService) toBet(obs *Observation) *model.Bet {
	market, _ := model.ParseMarket(strings.ToUpper(obs.Market))
	sport := obs.Sport
	if sport == "" {
		sport = "NHL"
	}
	side := model.Side(obs.Side)
	if side == "" {
		side = ExtractSide(market, obs.Pick)
	}
	grade := obs.Grade
	if grade == "" {
		grade = Rating(obs.EVPercent)
	}
	tier := obs.Tier
	if tier == "" {
		tier = Tier(obs.EVPercent)
	}
	units := obs.Units
	if units == 0 {
		units = 1
	}
	return &model.Bet{
		BetKey:     model.BuildBetKey(obs.AwayTeam, obs.HomeTeam, market, obs.Pick),
		Date:       obs.Date,
		Sport:      sport,
		AwayTeam:   strings.TrimSpace(obs.AwayTeam),
		HomeTeam:   strings.TrimSpace(obs.HomeTeam),
		GameTime:   obs.GameTime,
		Market:     market,
		Pick:       strings.TrimSpace(obs.Pick),
		Team:       strings.TrimSpace(obs.Team),
		Odds:       obs.Odds,
		Line:       obs.Line,
		Side:       side,
		ModelProb:  obs.ModelProb,
		MarketProb: MarketProb(obs.Odds),
		EVPercent:  obs.EVPercent,
		Grade:      grade,
		Tier:       tier,
		Units:      units,
	}
}

// MateriallyMoved odds moved >= OddsThreshold, EV >= EVThreshold, line >= LineThreshold, or the grade changed
// Unset thresholds fall back to 5 / 1.0 / 0.5.
func MateriallyMoved(cur, next *model.Bet, th *config.TrackingConfig) bool {
	oddsTh, evTh, lineTh := 5.0, 1.0, 0.5
	if th != nil {
		if th.OddsThreshold > 0 {
			oddsTh = th.OddsThreshold
		}
		if th.EVThreshold > 0 {
			evTh = th.EVThreshold
		}
		if th.LineThreshold > 0 {
			lineTh = th.LineThreshold
		}
	}
	if math.Abs(float64(next.Odds-cur.Odds)) >= oddsTh {
		return true
	}
	if math.Abs(next.EVPercent-cur.EVPercent) >= evTh {
		return true
	}
	if lineMoved(cur.Line, next.Line, lineTh) {
		return true
	}
	return cur.Grade != next.Grade
}

func lineMoved(a, b *float64, threshold float64) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil || b == nil:
		return true
	}
	return math.Abs(*a-*b) >= threshold
}
