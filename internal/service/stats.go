package service

import (
	"context"

	"SavantGrader/internal/model"
	"SavantGrader/internal/repository"

	"github.com/shopspring/decimal"
)

// BetStats record over graded bets. Units are summed exactly and rounded to 4 places for display.
type BetStats struct {
	Total       int                  `json:"total"`
	Wins        int                  `json:"wins"`
	Losses      int                  `json:"losses"`
	Pushes      int                  `json:"pushes"`
	WinRate     float64              `json:"winRate"` // wins / (wins + losses), pushes excluded
	UnitsStaked float64              `json:"unitsStaked"`
	UnitsWon    float64              `json:"unitsWon"`
	ROI         float64              `json:"roi"` // percent of units staked
	ByMarket    map[string]*BetStats `json:"byMarket,omitempty"`
}

// StatsService aggregates graded bets
type StatsService struct {
	betRepo repository.BetRepository
}

func NewStatsService(betRepo repository.BetRepository) *StatsService {
	return &StatsService{betRepo: betRepo}
}

// Summary overall record plus a per-market breakdown
func (s *StatsService) Summary(ctx context.Context, filter repository.BetFilter) (*BetStats, error) {
	bets, err := s.betRepo.ListCompleted(ctx, filter)
	if err != nil {
		return nil, err
	}
	overall := newTally()
	markets := make(map[string]*tally)
	for _, b := range bets {
		overall.add(b)
		key := string(b.Market)
		if markets[key] == nil {
			markets[key] = newTally()
		}
		markets[key].add(b)
	}

	stats := overall.stats()
	if len(markets) > 0 {
		stats.ByMarket = make(map[string]*BetStats, len(markets))
		for m, t := range markets {
			stats.ByMarket[m] = t.stats()
		}
	}
	return stats, nil
}

type tally struct {
	wins, losses, pushes int
	staked, won          decimal.Decimal
}

func newTally() *tally {
	return &tally{staked: decimal.Zero, won: decimal.Zero}
}

func (t *tally) add(b *model.Bet) {
	if b.ResultOutcome == nil {
		return
	}
	switch *b.ResultOutcome {
	case model.OutcomeWin:
		t.wins++
	case model.OutcomeLoss:
		t.losses++
	case model.OutcomePush:
		t.pushes++
	}
	units := b.StakeUnits(1)
	if b.ResultUnits != nil && *b.ResultUnits > 0 {
		units = *b.ResultUnits
	}
	t.staked = t.staked.Add(decimal.NewFromFloat(units))
	if b.ResultProfit != nil {
		t.won = t.won.Add(decimal.NewFromFloat(*b.ResultProfit))
	}
}

func (t *tally) stats() *BetStats {
	st := &BetStats{
		Total:  t.wins + t.losses + t.pushes,
		Wins:   t.wins,
		Losses: t.losses,
		Pushes: t.pushes,
	}
	if decided := t.wins + t.losses; decided > 0 {
		st.WinRate, _ = decimal.NewFromInt(int64(t.wins)).
			Div(decimal.NewFromInt(int64(decided))).Round(4).Float64()
	}
	st.UnitsStaked, _ = t.staked.Round(4).Float64()
	st.UnitsWon, _ = t.won.Round(4).Float64()
	if !t.staked.IsZero() {
		st.ROI, _ = t.won.Div(t.staked).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}
	return st
}
