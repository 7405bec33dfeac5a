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

func newBookmark(user, betID, date string) *model.Bookmark {
	return &model.Bookmark{
		BookmarkID:   user + "_" + betID,
		UserID:       user,
		BetID:        betID,
		BookmarkedAt: time.Now(),
		AwayTeam:     "Boston Bruins",
		HomeTeam:     "Toronto Maple Leafs",
		GameDate:     date,
		Market:       model.MarketMoneyline,
		Pick:         "Boston Bruins",
		Odds:         -120,
	}
}

func TestBookmarkRepository_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewBookmarkRepository(testutil.NewDB(t))

	require.NoError(t, repo.Save(ctx, newBookmark("anon_1", "BET_A", "2025-11-24")))
	again := newBookmark("anon_1", "BET_A", "2025-11-24")
	again.Odds = -140
	require.NoError(t, repo.Save(ctx, again))
	require.NoError(t, repo.Save(ctx, newBookmark("anon_2", "BET_A", "2025-11-24")))

	list, err := repo.ListByUser(ctx, "anon_1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, -140, list[0].Odds)

	require.NoError(t, repo.Delete(ctx, "anon_1", "BET_A"))
	assert.ErrorIs(t, repo.Delete(ctx, "anon_1", "BET_A"), ErrBookmarkNotFound)
}

func TestBookmarkRepository_ResultWrittenOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewBookmarkRepository(testutil.NewDB(t))
	require.NoError(t, repo.Save(ctx, newBookmark("anon_1", "BET_A", "2025-11-24")))
	require.NoError(t, repo.Save(ctx, newBookmark("anon_1", "BET_OLD", "2025-11-01")))

	pending, err := repo.ListWithoutResult(ctx, []string{"2025-11-23", "2025-11-24"})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	profit := 0.8333
	require.NoError(t, repo.ApplyResult(ctx, "anon_1_BET_A", model.OutcomeWin, &profit, time.Now()))
	loss := -1.0
	assert.ErrorIs(t, repo.ApplyResult(ctx, "anon_1_BET_A", model.OutcomeLoss, &loss, time.Now()), ErrAlreadyGraded)

	pending, err = repo.ListWithoutResult(ctx, []string{"2025-11-23", "2025-11-24"})
	require.NoError(t, err)
	assert.Empty(t, pending)

	list, err := repo.ListByUser(ctx, "anon_1")
	require.NoError(t, err)
	for _, b := range list {
		if b.BetID == "BET_A" {
			require.NotNil(t, b.ResultOutcome)
			assert.Equal(t, model.OutcomeWin, *b.ResultOutcome)
		}
	}
}
