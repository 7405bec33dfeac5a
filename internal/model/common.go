package model

import "time"

// BetStatus lifecycle of a tracked bet: PENDING -> COMPLETED, once
type BetStatus string

const (
	StatusPending   BetStatus = "PENDING"
	StatusCompleted BetStatus = "COMPLETED"
)

// Market bet market type
type Market string

const (
	MarketMoneyline Market = "MONEYLINE"
	MarketTotal     Market = "TOTAL"
	MarketPuckLine  Market = "PUCK_LINE"
	MarketTeamTotal Market = "TEAM_TOTAL"
)

// ParseMarket accepts the aliases seen in stored bets (PUCKLINE, SPREAD)
func ParseMarket(s string) (Market, bool) {
	switch s {
	case "MONEYLINE", "ML":
		return MarketMoneyline, true
	case "TOTAL":
		return MarketTotal, true
	case "PUCK_LINE", "PUCKLINE", "SPREAD":
		return MarketPuckLine, true
	case "TEAM_TOTAL":
		return MarketTeamTotal, true
	}
	return "", false
}

// Side which side of a market the bet is on
type Side string

const (
	SideHome  Side = "HOME"
	SideAway  Side = "AWAY"
	SideOver  Side = "OVER"
	SideUnder Side = "UNDER"
)

// Outcome graded result of a bet
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
	OutcomePush Outcome = "PUSH"
)

// Winner which side of a fixture won
type Winner string

const (
	WinnerAway Winner = "AWAY"
	WinnerHome Winner = "HOME"
)

// provider tags stamped on extracted results and graded bets
const (
	SourceOddsTrader = "OddsTrader"
	SourceNHLAPI     = "NHL_API"
)

// CompletedGameResult one finished game found in a results feed.
// AwayWinPct/HomeWinPct are always 0/100 or 100/0; the extractor never builds anything else.
type CompletedGameResult struct {
	AwayTeam   string    `json:"awayTeam"`   // vendor name, not normalized
	HomeTeam   string    `json:"homeTeam"`   // vendor name, not normalized
	Winner     Winner    `json:"winner"`     // AWAY / HOME
	WinnerTeam string    `json:"winnerTeam"` // copied from AwayTeam/HomeTeam
	LoserTeam  string    `json:"loserTeam"`
	AwayWinPct int       `json:"awayWinPct"`
	HomeWinPct int       `json:"homeWinPct"`
	AwayScore  *int      `json:"awayScore,omitempty"` // nil when the source carries no score
	HomeScore  *int      `json:"homeScore,omitempty"`
	Source     string    `json:"source"`
	ScrapedAt  time.Time `json:"scrapedAt"`
}

// HasScores both final scores are known
func (r *CompletedGameResult) HasScores() bool {
	return r.AwayScore != nil && r.HomeScore != nil
}

// Total combined final score; only meaningful when HasScores
func (r *CompletedGameResult) Total() int {
	if !r.HasScores() {
		return 0
	}
	return *r.AwayScore + *r.HomeScore
}
