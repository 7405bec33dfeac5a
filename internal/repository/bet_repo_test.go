package repository

import (
	"context"
	"testing"
	"time"

	"SavantGrader/internal/model"
	"SavantGrader/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBet(away, home string, market model.Market, pick, team string, odds int, date string) *model.Bet {
	return &model.Bet{
		BetKey:    model.BuildBetKey(away, home, market, pick),
		Date:      date,
		Sport:     "NHL",
		AwayTeam:  away,
		HomeTeam:  home,
		Market:    market,
		Pick:      pick,
		Team:      team,
		Odds:      odds,
		EVPercent: 4.2,
		Grade:     "B",
		Units:     1,
	}
}

func TestRecordObservation_CreateThenUnchangedThenUpdated(t *testing.T) {
	ctx := context.Background()
	repo := NewBetRepository(testutil.NewDB(t))
	t0 := time.Date(2025, 11, 24, 15, 0, 0, 0, time.UTC)

	action, err := repo.RecordObservation(ctx, newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketMoneyline, "Boston Bruins", "Boston Bruins", -120, "2025-11-24"), t0, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, action)

	never := func(*model.Bet) bool { return false }
	action, err = repo.RecordObservation(ctx, newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketMoneyline, "Boston Bruins", "Boston Bruins", -122, "2025-11-24"), t0.Add(time.Minute), never)
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, action)

	always := func(*model.Bet) bool { return true }
	action, err = repo.RecordObservation(ctx, newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketMoneyline, "Boston Bruins", "Boston Bruins", -130, "2025-11-24"), t0.Add(time.Hour), always)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, action)

	bet, err := repo.GetByKey(ctx, "BOSTON_BRUINS_TORONTO_MAPLE_LEAFS_MONEYLINE_BOSTON_BRUINS")
	require.NoError(t, err)
	assert.Equal(t, -130, bet.Odds)
	assert.Equal(t, -120, bet.InitialOdds)
	assert.True(t, bet.FirstRecommendedAt.Equal(t0))
	assert.Equal(t, model.StatusPending, bet.Status)
	require.Len(t, bet.History, 2)
	assert.Equal(t, -120, bet.History[0].Odds)
	assert.Equal(t, -130, bet.History[1].Odds)
}

func TestApplyResult_AtMostOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewBetRepository(testutil.NewDB(t))
	bet := newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketMoneyline, "Boston Bruins", "Boston Bruins", -120, "2025-11-24")
	_, err := repo.RecordObservation(ctx, bet, time.Now(), nil)
	require.NoError(t, err)

	first := &BetResult{Outcome: model.OutcomeWin, Profit: 0.8333, Units: 1, Winner: model.WinnerAway, WinnerTeam: "Boston Bruins", Source: model.SourceOddsTrader}
	require.NoError(t, repo.ApplyResult(ctx, bet.BetKey, first))

	second := &BetResult{Outcome: model.OutcomeLoss, Profit: -1, Units: 1, Winner: model.WinnerHome, Source: model.SourceOddsTrader}
	assert.ErrorIs(t, repo.ApplyResult(ctx, bet.BetKey, second), ErrAlreadyGraded)

	got, err := repo.GetByKey(ctx, bet.BetKey)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.ResultOutcome)
	assert.Equal(t, model.OutcomeWin, *got.ResultOutcome)
	assert.InDelta(t, 0.8333, *got.ResultProfit, 1e-9)
	assert.True(t, got.ResultFetched)
	require.NotNil(t, got.ResultSource)
	assert.Equal(t, "OddsTrader", *got.ResultSource)
	assert.NotNil(t, got.ResultFetchedAt)
}

func TestApplyResult_UnknownBet(t *testing.T) {
	repo := NewBetRepository(testutil.NewDB(t))
	err := repo.ApplyResult(context.Background(), "NOPE", &BetResult{Outcome: model.OutcomeWin})
	assert.ErrorIs(t, err, ErrBetNotFound)
}

func TestRecordObservation_CompletedIsFrozen(t *testing.T) {
	ctx := context.Background()
	repo := NewBetRepository(testutil.NewDB(t))
	bet := newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketMoneyline, "Boston Bruins", "Boston Bruins", -120, "2025-11-24")
	_, err := repo.RecordObservation(ctx, bet, time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyResult(ctx, bet.BetKey, &BetResult{Outcome: model.OutcomeLoss, Profit: -1, Units: 1}))

	action, err := repo.RecordObservation(ctx, newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketMoneyline, "Boston Bruins", "Boston Bruins", +150, "2025-11-24"), time.Now(), func(*model.Bet) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, ActionCompleted, action)

	got, err := repo.GetByKey(ctx, bet.BetKey)
	require.NoError(t, err)
	assert.Equal(t, -120, got.Odds)
	assert.Len(t, got.History, 1)
}

func TestListPending_OrderedByFirstRecommendation(t *testing.T) {
	ctx := context.Background()
	repo := NewBetRepository(testutil.NewDB(t))
	base := time.Date(2025, 11, 24, 12, 0, 0, 0, time.UTC)

	later := newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketTotal, "OVER 6.5", "", -110, "2025-11-24")
	earlier := newBet("Boston Bruins", "Toronto Maple Leafs", model.MarketMoneyline, "Boston Bruins", "Boston Bruins", -120, "2025-11-24")
	otherDay := newBet("Colorado Avalanche", "Vegas Golden Knights", model.MarketMoneyline, "Vegas Golden Knights", "Vegas Golden Knights", 105, "2025-11-20")
	_, err := repo.RecordObservation(ctx, later, base.Add(time.Hour), nil)
	require.NoError(t, err)
	_, err = repo.RecordObservation(ctx, earlier, base, nil)
	require.NoError(t, err)
	_, err = repo.RecordObservation(ctx, otherDay, base, nil)
	require.NoError(t, err)

	pending, err := repo.ListPending(ctx, "NHL", []string{"2025-11-24", "2025-11-23"})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, earlier.BetKey, pending[0].BetKey)
	assert.Equal(t, later.BetKey, pending[1].BetKey)

	all, err := repo.ListPending(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListAndCompleted(t *testing.T) {
	ctx := context.Background()
	repo := NewBetRepository(testutil.NewDB(t))
	seed := []struct {
		pick string
		odds int
		date string
	}{
		{"Team A", -110, "2025-11-21"},
		{"Team B", 120, "2025-11-22"},
		{"Team C", 140, "2025-11-23"},
	}
	for _, s := range seed {
		_, err := repo.RecordObservation(ctx, newBet("Team A", "Team B", model.MarketMoneyline, s.pick, "", s.odds, s.date), time.Now(), nil)
		require.NoError(t, err)
	}
	require.NoError(t, repo.ApplyResult(ctx, model.BuildBetKey("Team A", "Team B", model.MarketMoneyline, "Team B"), &BetResult{Outcome: model.OutcomeWin, Profit: 1.2, Units: 1}))

	list, total, err := repo.List(ctx, BetFilter{}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 2)
	assert.Equal(t, "2025-11-23", list[0].Date)

	done, err := repo.ListCompleted(ctx, BetFilter{DateFrom: "2025-11-21", DateTo: "2025-11-22"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Team B", done[0].Pick)

	recent, err := repo.ListRecentCompleted(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	_, err = repo.GetByKey(ctx, "missing")
	assert.ErrorIs(t, err, ErrBetNotFound)
}
