package model

import (
	"time"

	"gorm.io/datatypes"
)

// Bookmark a user's saved pick. Game/bet fields are a snapshot taken at bookmark time;
// only the Result* columns are written afterwards, by the bookmark result sync job.
type Bookmark struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	BookmarkID   string    `gorm:"column:bookmark_id;type:varchar(320);uniqueIndex;not null;comment:userId_betId"`
	UserID       string    `gorm:"column:user_id;type:varchar(64);index;not null;comment:anonymous user id"`
	BetID        string    `gorm:"column:bet_id;type:varchar(256);not null;comment:bets.bet_key"`
	BookmarkedAt time.Time `gorm:"column:bookmarked_at;type:timestamp;not null"`

	AwayTeam string `gorm:"column:away_team;type:varchar(128);not null"`
	HomeTeam string `gorm:"column:home_team;type:varchar(128);not null"`
	GameTime string `gorm:"column:game_time;type:varchar(32)"`
	GameDate string `gorm:"column:game_date;type:varchar(10);index"`

	Market    Market  `gorm:"column:market;type:varchar(16);not null"`
	Pick      string  `gorm:"column:pick;type:varchar(128)"`
	Team      string  `gorm:"column:team;type:varchar(128)"`
	Odds      int     `gorm:"column:odds;type:int"`
	EVPercent float64 `gorm:"column:ev_percent;type:numeric(8,3)"`
	Rating    string  `gorm:"column:rating;type:varchar(4)"`

	Snapshot datatypes.JSON `gorm:"column:snapshot;type:jsonb;comment:raw display payload at bookmark time"`

	ResultOutcome   *Outcome   `gorm:"column:result_outcome;type:varchar(8)"`
	ResultProfit    *float64   `gorm:"column:result_profit;type:double precision"`
	ResultUpdatedAt *time.Time `gorm:"column:result_updated_at;type:timestamp"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Bookmark) TableName() string { return "user_bookmarks" }

// HasResult result overlay already written
func (b *Bookmark) HasResult() bool {
	return b.ResultOutcome != nil
}
