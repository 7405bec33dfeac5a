package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Bet a recommended bet tracked from first recommendation until graded.
// BetKey is derived from fixture + market + pick and deliberately excludes the date,
// so re-scrapes of the same fixture on a later day land on the same row.
type Bet struct {
	ID     uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:surrogate id"`
	BetKey string    `gorm:"column:bet_key;type:varchar(256);uniqueIndex;not null;comment:deterministic bet key"`
	Date   string    `gorm:"column:date;type:varchar(10);index;not null;comment:game date YYYY-MM-DD"`
	Sport  string    `gorm:"column:sport;type:varchar(16);default:NHL;comment:NHL/BASKETBALL"`
	Status BetStatus `gorm:"column:status;type:varchar(16);index;default:PENDING;comment:PENDING/COMPLETED"`

	// game
	AwayTeam string `gorm:"column:away_team;type:varchar(128);not null"`
	HomeTeam string `gorm:"column:home_team;type:varchar(128);not null"`
	GameTime string `gorm:"column:game_time;type:varchar(32)"`

	// bet
	Market Market   `gorm:"column:market;type:varchar(16);not null"`
	Pick   string   `gorm:"column:pick;type:varchar(128);not null"`
	Team   string   `gorm:"column:team;type:varchar(128)"`
	Odds   int      `gorm:"column:odds;type:int;not null;comment:American odds"`
	Line   *float64 `gorm:"column:line;type:numeric(6,2);comment:total/spread line"`
	Side   Side     `gorm:"column:side;type:varchar(8)"`

	// prediction, current view; every prior quote lives in bet_history
	ModelProb  float64 `gorm:"column:model_prob;type:numeric(8,6);default:0"`
	MarketProb float64 `gorm:"column:market_prob;type:numeric(8,6);default:0"`
	EVPercent  float64 `gorm:"column:ev_percent;type:numeric(8,3);default:0"`
	Grade      string  `gorm:"column:grade;type:varchar(4)"`
	Tier       string  `gorm:"column:tier;type:varchar(16)"`
	Units      float64 `gorm:"column:units;type:numeric(6,2);default:1;comment:recommended stake in units"`

	FirstRecommendedAt time.Time `gorm:"column:first_recommended_at;type:timestamp;not null"`
	InitialOdds        int       `gorm:"column:initial_odds;type:int"`
	InitialEV          float64   `gorm:"column:initial_ev;type:numeric(8,3)"`

	// result, empty until graded
	ResultOutcome    *Outcome   `gorm:"column:result_outcome;type:varchar(8)"`
	ResultProfit     *float64   `gorm:"column:result_profit;type:double precision"`
	ResultUnits      *float64   `gorm:"column:result_units;type:numeric(6,2)"`
	ResultWinner     *Winner    `gorm:"column:result_winner;type:varchar(8)"`
	ResultWinnerTeam *string    `gorm:"column:result_winner_team;type:varchar(128)"`
	ResultAwayScore  *int       `gorm:"column:result_away_score"`
	ResultHomeScore  *int       `gorm:"column:result_home_score"`
	ResultFetched    bool       `gorm:"column:result_fetched;type:boolean;default:false"`
	ResultFetchedAt  *time.Time `gorm:"column:result_fetched_at;type:timestamp"`
	ResultSource     *string    `gorm:"column:result_source;type:varchar(64)"`

	History []BetHistory `gorm:"foreignKey:BetID;references:ID" json:"history,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BetHistory one quote of a pending bet; rows are append-only
type BetHistory struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	BetID      uint64    `gorm:"column:bet_id;type:bigint;index;not null"`
	ObservedAt time.Time `gorm:"column:observed_at;type:timestamp;not null"`
	Odds       int       `gorm:"column:odds;type:int;not null"`
	Line       *float64  `gorm:"column:line;type:numeric(6,2)"`
	EVPercent  float64   `gorm:"column:ev_percent;type:numeric(8,3)"`
	ModelProb  float64   `gorm:"column:model_prob;type:numeric(8,6)"`
	MarketProb float64   `gorm:"column:market_prob;type:numeric(8,6)"`
	Grade      string    `gorm:"column:grade;type:varchar(4)"`
}

func (Bet) TableName() string        { return "bets" }
func (BetHistory) TableName() string { return "bet_history" }

// IsGraded result already written
func (b *Bet) IsGraded() bool {
	return b.Status == StatusCompleted || b.ResultOutcome != nil
}

// StakeUnits recommended stake, falling back to def when unset
func (b *Bet) StakeUnits(def float64) float64 {
	if b.Units > 0 {
		return b.Units
	}
	if def > 0 {
		return def
	}
	return 1
}

var whitespace = regexp.MustCompile(`\s+`)

// BuildBetKey AWAY_HOME_MARKET_PICK, upper-cased with whitespace collapsed to "_".
// The game date is not part of the key.
func BuildBetKey(awayTeam, homeTeam string, market Market, pick string) string {
	part := func(s string) string {
		return strings.ToUpper(whitespace.ReplaceAllString(strings.TrimSpace(s), "_"))
	}
	return fmt.Sprintf("%s_%s_%s_%s", part(awayTeam), part(homeTeam), market, part(pick))
}
