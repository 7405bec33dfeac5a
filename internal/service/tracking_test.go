package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"SavantGrader/internal/config"
	"SavantGrader/internal/model"
	"SavantGrader/internal/repository"
	"SavantGrader/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackingFixture(t *testing.T) (*BetTrackingService, repository.BetRepository) {
	t.Helper()
	repo := repository.NewBetRepository(testutil.NewDB(t))
	cfg := &config.TrackingConfig{OddsThreshold: 5, EVThreshold: 1.0, LineThreshold: 0.5}
	svc := NewBetTrackingService(repo, cfg, testutil.QuietLogger())
	clock := time.Date(2025, 11, 24, 14, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, repo
}

func bruinsML(odds int, ev float64) *Observation {
	return &Observation{
		Date:      "2025-11-24",
		AwayTeam:  "Boston Bruins",
		HomeTeam:  "Toronto Maple Leafs",
		Market:    "MONEYLINE",
		Pick:      "Boston Bruins",
		Team:      "Boston Bruins",
		Odds:      odds,
		ModelProb: 0.58,
		EVPercent: ev,
	}
}

func TestRecord_HistoryThresholds(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTrackingFixture(t)

	steps := []struct {
		name string
		obs  *Observation
		want repository.RecordAction
	}{
		{"first sight creates", bruinsML(-120, 4), repository.ActionCreated},
		{"odds moved by 4 is quiet", bruinsML(-124, 4), repository.ActionUnchanged},
		{"odds moved by 5 appends", bruinsML(-125, 4), repository.ActionUpdated},
		{"ev moved by half a point is quiet", bruinsML(-125, 4.5), repository.ActionUnchanged},
		{"ev moved by a point appends", bruinsML(-125, 5), repository.ActionUpdated},
		{"grade change appends", func() *Observation { o := bruinsML(-125, 5); o.Grade = "A"; return o }(), repository.ActionUpdated},
	}
	for _, st := range steps {
		action, key, err := svc.Record(ctx, st.obs)
		require.NoError(t, err, st.name)
		assert.Equal(t, st.want, action, st.name)
		assert.Equal(t, "BOSTON_BRUINS_TORONTO_MAPLE_LEAFS_MONEYLINE_BOSTON_BRUINS", key)
	}

	bet, err := repo.GetByKey(ctx, "BOSTON_BRUINS_TORONTO_MAPLE_LEAFS_MONEYLINE_BOSTON_BRUINS")
	require.NoError(t, err)
	assert.Len(t, bet.History, 4)
	assert.Equal(t, -125, bet.Odds)
	assert.Equal(t, "A", bet.Grade)
	assert.Equal(t, -120, bet.InitialOdds)
	assert.Equal(t, model.SideAway, bet.Side)
	assert.InDelta(t, 125.0/225.0, bet.MarketProb, 1e-9)
}

func TestRecord_LineMove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTrackingFixture(t)
	obs := func(line float64) *Observation {
		return &Observation{Date: "2025-11-24", AwayTeam: "Boston Bruins", HomeTeam: "Toronto Maple Leafs", Market: "TOTAL", Pick: "OVER", Odds: -110, Line: floatp(line), EVPercent: 3}
	}
	for _, st := range []struct {
		line float64
		want repository.RecordAction
	}{{6.0, repository.ActionCreated}, {6.25, repository.ActionUnchanged}, {6.5, repository.ActionUpdated}} {
		action, _, err := svc.Record(ctx, obs(st.line))
		require.NoError(t, err)
		assert.Equal(t, st.want, action)
	}
}

func TestRecordBatch_DedupWithinRun(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTrackingFixture(t)

	summary := svc.RecordBatch(ctx, []*Observation{bruinsML(-120, 4), bruinsML(-150, 9), bruinsML(-160, 9)})
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 2, summary.Duplicate)

	bet, err := repo.GetByKey(ctx, "BOSTON_BRUINS_TORONTO_MAPLE_LEAFS_MONEYLINE_BOSTON_BRUINS")
	require.NoError(t, err)
	assert.Equal(t, -120, bet.Odds)

	// a new run starts with a clean cache
	summary = svc.RecordBatch(ctx, []*Observation{bruinsML(-150, 9)})
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Duplicate)
}

func TestRecord_RepeatedKeyOutsideBatchIsRecorded(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTrackingFixture(t)

	summary := svc.RecordBatch(ctx, []*Observation{bruinsML(-120, 4)})
	assert.Equal(t, 1, summary.Created)

	action, key, err := svc.Record(ctx, bruinsML(-140, 4))
	require.NoError(t, err)
	assert.Equal(t, repository.ActionUpdated, action)

	action, _, err = svc.Record(ctx, bruinsML(-150, 4))
	require.NoError(t, err)
	assert.Equal(t, repository.ActionUpdated, action)

	bet, err := repo.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, -150, bet.Odds)
	assert.Len(t, bet.History, 3)
}

// flakyBetRepo fails the first RecordObservation
type flakyBetRepo struct {
	repository.BetRepository
	calls int
}

func (r *flakyBetRepo) RecordObservation(ctx context.Context, obs *model.Bet, at time.Time, moved repository.MovedFunc) (repository.RecordAction, error) {
	r.calls++
	if r.calls == 1 {
		return "", errors.New("deadlock detected")
	}
	return r.BetRepository.RecordObservation(ctx, obs, at, moved)
}

func TestRecordBatch_FailedWriteIsRetriedInSameBatch(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTrackingFixture(t)
	svc.betRepo = &flakyBetRepo{BetRepository: repo}

	summary := svc.RecordBatch(ctx, []*Observation{bruinsML(-120, 4), bruinsML(-120, 4), bruinsML(-150, 9)})
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Duplicate)

	bet, err := repo.GetByKey(ctx, "BOSTON_BRUINS_TORONTO_MAPLE_LEAFS_MONEYLINE_BOSTON_BRUINS")
	require.NoError(t, err)
	assert.Equal(t, -120, bet.Odds)
}

func TestRecordBatch_InvalidObservations(t *testing.T) {
	svc, _ := newTrackingFixture(t)
	bad := []*Observation{
		{Date: "24/11/2025", AwayTeam: "A", HomeTeam: "B", Market: "MONEYLINE", Pick: "A", Odds: -110},
		{Date: "2025-11-24", AwayTeam: "A", HomeTeam: "A", Market: "MONEYLINE", Pick: "A", Odds: -110},
		{Date: "2025-11-24", AwayTeam: "A", HomeTeam: "B", Market: "MONEYLINE", Pick: "A", Odds: 50},
		{Date: "2025-11-24", AwayTeam: "A", HomeTeam: "B", Market: "PARLAY", Pick: "A", Odds: -110},
		{Date: "2025-11-24", AwayTeam: "A", HomeTeam: "B", Market: "MONEYLINE", Pick: "A", Odds: -110, ModelProb: 1.5},
	}
	summary := svc.RecordBatch(context.Background(), bad)
	assert.Equal(t, len(bad), summary.Invalid)
	assert.Equal(t, 0, summary.Created)
}

func TestRecord_CompletedBetUntouched(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTrackingFixture(t)
	_, key, err := svc.Record(ctx, bruinsML(-120, 4))
	require.NoError(t, err)
	require.NoError(t, repo.ApplyResult(ctx, key, &repository.BetResult{Outcome: model.OutcomeWin, Profit: 0.83, Units: 1}))

	action, _, err := svc.Record(ctx, bruinsML(-200, 12))
	require.NoError(t, err)
	assert.Equal(t, repository.ActionCompleted, action)
}

func TestMateriallyMoved_DefaultsWhenUnset(t *testing.T) {
	cur := &model.Bet{Odds: -110, EVPercent: 3, Grade: "B"}
	assert.False(t, MateriallyMoved(cur, &model.Bet{Odds: -114, EVPercent: 3.5, Grade: "B"}, nil))
	assert.True(t, MateriallyMoved(cur, &model.Bet{Odds: -115, EVPercent: 3, Grade: "B"}, &config.TrackingConfig{}))
	assert.True(t, MateriallyMoved(cur, &model.Bet{Odds: -110, EVPercent: 3, Grade: "B", Line: floatp(5.5)}, nil))
}

func TestNewBetTrackingService_AmericanOddsRule(t *testing.T) {
	var svc *BetTrackingService
	require.NotPanics(t, func() {
		svc = NewBetTrackingService(nil, nil, testutil.QuietLogger())
	})
	assert.NoError(t, svc.Validate(bruinsML(-100, 2)))
	assert.NoError(t, svc.Validate(bruinsML(135, 2)))
	assert.Error(t, svc.Validate(bruinsML(-99, 2)))
}
