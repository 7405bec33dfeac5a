package service

import (
	"SavantGrader/internal/model"

	"github.com/sirupsen/logrus"
)

// MergeSummary what a score merge did
type MergeSummary struct {
	Scored    int // feed results that received scores
	Added     int // games only the score feed knew about
	Conflicts int // same fixture, different winner; scores not applied
}

// MergeScores copies final scores onto results of the same fixture (normalized team names).
// A scored game whose winner disagrees with the result is left out. Scored games with no
// counterpart are appended, so the score feed alone can still grade them.
func MergeScores(results, scored []*model.CompletedGameResult, log logrus.FieldLogger) ([]*model.CompletedGameResult, MergeSummary) {
	var sum MergeSummary
	used := make([]bool, len(scored))

	for _, r := range results {
		for i, sc := range scored {
			if used[i] || !sameTeam(r.AwayTeam, sc.AwayTeam) || !sameTeam(r.HomeTeam, sc.HomeTeam) {
				continue
			}
			used[i] = true
			if sc.Winner != r.Winner {
				sum.Conflicts++
				log.WithFields(logrus.Fields{
					"away_team":    r.AwayTeam,
					"home_team":    r.HomeTeam,
					"feed_winner":  r.Winner,
					"score_winner": sc.Winner,
				}).Warn("score feed disagrees on winner, scores not applied")
				break
			}
			if !r.HasScores() {
				r.AwayScore, r.HomeScore = sc.AwayScore, sc.HomeScore
				sum.Scored++
			}
			break
		}
	}

	for i, sc := range scored {
		if !used[i] {
			results = append(results, sc)
			sum.Added++
		}
	}
	return results, sum
}
