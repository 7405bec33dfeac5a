package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SavantGrader/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BetFilter list / stats filter; empty fields are ignored
type BetFilter struct {
	Sport    string
	Status   string
	Market   string
	Date     string // exact game date
	DateFrom string // inclusive, YYYY-MM-DD
	DateTo   string // inclusive, YYYY-MM-DD
}

// BetResult everything written to a bet when it is graded
type BetResult struct {
	Outcome    model.Outcome
	Profit     float64
	Units      float64
	Winner     model.Winner
	WinnerTeam string
	AwayScore  *int
	HomeScore  *int
	Source     string
	FetchedAt  time.Time
}

// RecordAction what RecordObservation did
type RecordAction string

const (
	ActionCreated   RecordAction = "created"
	ActionUpdated   RecordAction = "updated"   // history appended, current fields replaced
	ActionUnchanged RecordAction = "unchanged" // not materially different, nothing written
	ActionCompleted RecordAction = "completed" // bet already graded, nothing written
)

// MovedFunc reports whether an observation differs materially from the stored bet
type MovedFunc func(current *model.Bet) bool

// BetRepository bets + bet_history storage
type BetRepository interface {
	// ListPending PENDING bets of a sport on the given dates, oldest recommendation first
	ListPending(ctx context.Context, sport string, dates []string) ([]*model.Bet, error)
	// ApplyResult grades one bet at most once; ErrAlreadyGraded when it was already COMPLETED
	ApplyResult(ctx context.Context, betKey string, result *BetResult) error
	// RecordObservation creates the bet, appends history when moved, or does nothing
	RecordObservation(ctx context.Context, obs *model.Bet, observedAt time.Time, moved MovedFunc) (RecordAction, error)
	// GetByKey bet with its history
	GetByKey(ctx context.Context, betKey string) (*model.Bet, error)
	// List paginated, newest game date first
	List(ctx context.Context, filter BetFilter, page, pageSize int) ([]*model.Bet, int64, error)
	// ListCompleted every COMPLETED bet matching filter
	ListCompleted(ctx context.Context, filter BetFilter) ([]*model.Bet, error)
	// ListRecentCompleted most recently graded bets, newest first
	ListRecentCompleted(ctx context.Context, limit int) ([]*model.Bet, error)
}

type betRepository struct {
	db *gorm.DB
}

// NewBetRepository creates a BetRepository
func NewBetRepository(db *gorm.DB) BetRepository {
	return &betRepository{db: db}
}

func (r *betRepository) ListPending(ctx context.Context, sport string, dates []string) ([]*model.Bet, error) {
	db := r.db.WithContext(ctx).Model(&model.Bet{}).Where("status = ?", model.StatusPending)
	if sport != "" {
		db = db.Where("sport = ?", sport)
	}
	if len(dates) > 0 {
		db = db.Where("date IN ?", dates)
	}
	var bets []*model.Bet
	if err := db.Order("first_recommended_at ASC").Order("id ASC").Find(&bets).Error; err != nil {
		return nil, err
	}
	return bets, nil
}

func (r *betRepository) ApplyResult(ctx context.Context, betKey string, result *BetResult) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	var bet model.Bet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("bet_key = ?", betKey).First(&bet).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBetNotFound
		}
		return fmt.Errorf("load bet %s: %w", betKey, err)
	}
	if bet.IsGraded() {
		tx.Rollback()
		return ErrAlreadyGraded
	}

	fetchedAt := result.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	updates := map[string]interface{}{
		"result_outcome":     result.Outcome,
		"result_profit":      result.Profit,
		"result_units":       result.Units,
		"result_winner":      result.Winner,
		"result_winner_team": result.WinnerTeam,
		"result_away_score":  result.AwayScore,
		"result_home_score":  result.HomeScore,
		"result_fetched":     true,
		"result_fetched_at":  fetchedAt,
		"result_source":      result.Source,
		"status":             model.StatusCompleted,
	}
	res := tx.Model(&model.Bet{}).
		Where("id = ? AND status = ?", bet.ID, model.StatusPending).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return fmt.Errorf("write result %s: %w", betKey, res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrAlreadyGraded
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit result %s: %w", betKey, err)
	}
	return nil
}

func (r *betRepository) RecordObservation(ctx context.Context, obs *model.Bet, observedAt time.Time, moved MovedFunc) (RecordAction, error) {
	var action RecordAction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.Bet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("bet_key = ?", obs.BetKey).First(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			action = ActionCreated
			return createBet(tx, obs, observedAt)
		case err != nil:
			return fmt.Errorf("load bet %s: %w", obs.BetKey, err)
		}

		if cur.IsGraded() {
			action = ActionCompleted
			return nil
		}
		if moved != nil && !moved(&cur) {
			action = ActionUnchanged
			return nil
		}

		if err := tx.Create(historyOf(cur.ID, obs, observedAt)).Error; err != nil {
			return fmt.Errorf("append history %s: %w", obs.BetKey, err)
		}
		if err := tx.Model(&model.Bet{}).Where("id = ?", cur.ID).Updates(map[string]interface{}{
			"odds":        obs.Odds,
			"line":        obs.Line,
			"model_prob":  obs.ModelProb,
			"market_prob": obs.MarketProb,
			"ev_percent":  obs.EVPercent,
			"grade":       obs.Grade,
			"tier":        obs.Tier,
			"units":       obs.Units,
			"game_time":   obs.GameTime,
		}).Error; err != nil {
			return fmt.Errorf("update bet %s: %w", obs.BetKey, err)
		}
		action = ActionUpdated
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

func createBet(tx *gorm.DB, obs *model.Bet, observedAt time.Time) error {
	obs.Status = model.StatusPending
	obs.FirstRecommendedAt = observedAt
	obs.InitialOdds = obs.Odds
	obs.InitialEV = obs.EVPercent
	obs.History = nil
	if err := tx.Create(obs).Error; err != nil {
		return fmt.Errorf("create bet %s: %w", obs.BetKey, err)
	}
	if err := tx.Create(historyOf(obs.ID, obs, observedAt)).Error; err != nil {
		return fmt.Errorf("first history %s: %w", obs.BetKey, err)
	}
	return nil
}

func historyOf(betID uint64, obs *model.Bet, at time.Time) *model.BetHistory {
	return &model.BetHistory{
		BetID:      betID,
		ObservedAt: at,
		Odds:       obs.Odds,
		Line:       obs.Line,
		EVPercent:  obs.EVPercent,
		ModelProb:  obs.ModelProb,
		MarketProb: obs.MarketProb,
		Grade:      obs.Grade,
	}
}

func (r *betRepository) GetByKey(ctx context.Context, betKey string) (*model.Bet, error) {
	var bet model.Bet
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("observed_at ASC").Order("id ASC") }).
		Where("bet_key = ?", betKey).
		First(&bet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBetNotFound
		}
		return nil, err
	}
	return &bet, nil
}

func (r *betRepository) List(ctx context.Context, filter BetFilter, page, pageSize int) ([]*model.Bet, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := applyFilter(r.db.WithContext(ctx).Model(&model.Bet{}), filter)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bets []*model.Bet
	if err := db.
		Order("date DESC").
		Order("first_recommended_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&bets).Error; err != nil {
		return nil, 0, err
	}
	return bets, total, nil
}

func (r *betRepository) ListCompleted(ctx context.Context, filter BetFilter) ([]*model.Bet, error) {
	filter.Status = string(model.StatusCompleted)
	var bets []*model.Bet
	if err := applyFilter(r.db.WithContext(ctx).Model(&model.Bet{}), filter).
		Order("date ASC").
		Find(&bets).Error; err != nil {
		return nil, err
	}
	return bets, nil
}

func (r *betRepository) ListRecentCompleted(ctx context.Context, limit int) ([]*model.Bet, error) {
	if limit <= 0 {
		limit = 200
	}
	var bets []*model.Bet
	if err := r.db.WithContext(ctx).Model(&model.Bet{}).
		Where("status = ?", model.StatusCompleted).
		Order("result_fetched_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&bets).Error; err != nil {
		return nil, err
	}
	return bets, nil
}

func applyFilter(db *gorm.DB, f BetFilter) *gorm.DB {
	if f.Sport != "" {
		db = db.Where("sport = ?", f.Sport)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Market != "" {
		db = db.Where("market = ?", f.Market)
	}
	if f.Date != "" {
		db = db.Where("date = ?", f.Date)
	}
	if f.DateFrom != "" {
		db = db.Where("date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("date <= ?", f.DateTo)
	}
	return db
}
