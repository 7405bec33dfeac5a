package service

import (
	"strings"

	"SavantGrader/internal/model"
)

// MatchPendingBet first bet in pending (already ordered oldest recommendation first) on the result's fixture.
// Several bets on one fixture resolve to the earliest; nil when none matches.
func MatchPendingBet(result *model.CompletedGameResult, pending []*model.Bet) *model.Bet {
	if m := MatchPendingBets(result, pending); len(m) > 0 {
		return m[0]
	}
	return nil
}

// MatchPendingBets every bet on the result's fixture, in the order of pending
func MatchPendingBets(result *model.CompletedGameResult, pending []*model.Bet) []*model.Bet {
	away, home := NormalizeTeam(result.AwayTeam), NormalizeTeam(result.HomeTeam)
	if away == "" || home == "" {
		return nil
	}
	var matched []*model.Bet
	for _, b := range pending {
		if NormalizeTeam(b.AwayTeam) == away && NormalizeTeam(b.HomeTeam) == home {
			matched = append(matched, b)
		}
	}
	return matched
}

// MatchBookmark graded bet a bookmark refers to: exact bet key first,
// then same fixture + market + (pick or team). Candidates keep their order; first hit wins.
func MatchBookmark(bm *model.Bookmark, candidates []*model.Bet) *model.Bet {
	if bm.BetID != "" {
		for _, b := range candidates {
			if b.BetKey == bm.BetID {
				return b
			}
		}
	}
	for _, b := range candidates {
		if !sameTeam(b.AwayTeam, bm.AwayTeam) || !sameTeam(b.HomeTeam, bm.HomeTeam) {
			continue
		}
		if !sameMarket(b.Market, bm.Market) {
			continue
		}
		if (bm.Pick != "" && strings.EqualFold(strings.TrimSpace(b.Pick), strings.TrimSpace(bm.Pick))) ||
			sameTeam(b.Team, bm.Team) {
			return b
		}
	}
	return nil
}

func sameMarket(a, b model.Market) bool {
	ma, okA := model.ParseMarket(strings.ToUpper(string(a)))
	mb, okB := model.ParseMarket(strings.ToUpper(string(b)))
	if okA && okB {
		return ma == mb
	}
	return strings.EqualFold(string(a), string(b))
}
