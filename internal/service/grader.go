package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"SavantGrader/internal/model"
)

var (
	ErrUnknownMarket = errors.New("unknown market")
	ErrInvalidOdds   = errors.New("invalid american odds")
	ErrNoScore       = errors.New("no score for total")
	ErrNoLine        = errors.New("bet has no line")
	ErrNoSide        = errors.New("cannot determine bet side")
)

// defaultPuckLine margin the side must beat when a puck line bet carries no line
const defaultPuckLine = 1.5

// Grading calculator output
type Grading struct {
	Outcome model.Outcome
	Profit  float64
	Units   float64
}

// Grade outcome and unit profit of bet against a completed game. Pure; no I/O.
// defaultUnits is the stake when the bet carries none.
func Grade(bet *model.Bet, result *model.CompletedGameResult, defaultUnits float64) (*Grading, error) {
	if bet.Odds == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOdds, bet.Odds)
	}
	market, ok := model.ParseMarket(strings.ToUpper(string(bet.Market)))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarket, bet.Market)
	}

	var (
		outcome model.Outcome
		err     error
	)
	switch market {
	case model.MarketMoneyline:
		outcome, err = gradeMoneyline(bet, result)
	case model.MarketTotal:
		outcome, err = gradeTotal(bet, result)
	case model.MarketTeamTotal:
		outcome, err = gradeTeamTotal(bet, result)
	case model.MarketPuckLine:
		outcome, err = gradePuckLine(bet, result)
	}
	if err != nil {
		return nil, err
	}

	units := bet.StakeUnits(defaultUnits)
	return &Grading{Outcome: outcome, Profit: Profit(outcome, bet.Odds, units), Units: units}, nil
}

// Profit unit profit for an outcome at American odds. Not rounded.
func Profit(outcome model.Outcome, odds int, units float64) float64 {
	switch outcome {
	case model.OutcomePush:
		return 0
	case model.OutcomeLoss:
		return -units
	}
	if odds < 0 {
		return 100 / math.Abs(float64(odds)) * units
	}
	return float64(odds) / 100 * units
}

func gradeMoneyline(bet *model.Bet, result *model.CompletedGameResult) (model.Outcome, error) {
	side, err := teamSide(bet, result)
	if err != nil {
		return "", err
	}
	if side == result.Winner {
		return model.OutcomeWin, nil
	}
	return model.OutcomeLoss, nil
}

func gradeTotal(bet *model.Bet, result *model.CompletedGameResult) (model.Outcome, error) {
	if !result.HasScores() {
		return "", ErrNoScore
	}
	return overUnder(bet, float64(result.Total()))
}

func gradeTeamTotal(bet *model.Bet, result *model.CompletedGameResult) (model.Outcome, error) {
	if !result.HasScores() {
		return "", ErrNoScore
	}
	var score int
	switch {
	case sameTeam(bet.Team, result.AwayTeam):
		score = *result.AwayScore
	case sameTeam(bet.Team, result.HomeTeam):
		score = *result.HomeScore
	default:
		return "", fmt.Errorf("%w: team total for %q", ErrNoSide, bet.Team)
	}
	return overUnder(bet, float64(score))
}

// gradePuckLine goal margin of the bet's side against the line: above WIN, below LOSS, equal PUSH
func gradePuckLine(bet *model.Bet, result *model.CompletedGameResult) (model.Outcome, error) {
	if !result.HasScores() {
		return "", ErrNoScore
	}
	side, err := teamSide(bet, result)
	if err != nil {
		return "", err
	}
	line := defaultPuckLine
	if bet.Line != nil && *bet.Line != 0 {
		line = *bet.Line
	}
	margin := float64(*result.HomeScore - *result.AwayScore)
	if side == model.WinnerAway {
		margin = -margin
	}
	return compare(margin - line), nil
}

func overUnder(bet *model.Bet, actual float64) (model.Outcome, error) {
	if bet.Line == nil {
		return "", ErrNoLine
	}
	side := bet.Side
	if side != model.SideOver && side != model.SideUnder {
		side = ExtractSide(bet.Market, bet.Pick)
	}
	diff := actual - *bet.Line
	if side == model.SideUnder {
		diff = -diff
	}
	return compare(diff), nil
}

func compare(v float64) model.Outcome {
	switch {
	case v > 0:
		return model.OutcomeWin
	case v < 0:
		return model.OutcomeLoss
	default:
		return model.OutcomePush
	}
}

// teamSide which side of the fixture the bet backs: explicit Side first, then Team, then Pick
func teamSide(bet *model.Bet, result *model.CompletedGameResult) (model.Winner, error) {
	switch bet.Side {
	case model.SideHome:
		return model.WinnerHome, nil
	case model.SideAway:
		return model.WinnerAway, nil
	}
	for _, name := range []string{bet.Team, bet.Pick} {
		switch {
		case sameTeam(name, result.AwayTeam), sameTeam(name, bet.AwayTeam):
			return model.WinnerAway, nil
		case sameTeam(name, result.HomeTeam), sameTeam(name, bet.HomeTeam):
			return model.WinnerHome, nil
		}
	}
	return "", fmt.Errorf("%w: team=%q pick=%q", ErrNoSide, bet.Team, bet.Pick)
}

// ExtractSide side implied by a pick label: OVER/UNDER for totals, "(HOME)" suffix for team markets
func ExtractSide(market model.Market, pick string) model.Side {
	p := strings.ToUpper(pick)
	switch m, _ := model.ParseMarket(strings.ToUpper(string(market))); m {
	case model.MarketTotal, model.MarketTeamTotal:
		if strings.Contains(p, "OVER") {
			return model.SideOver
		}
		return model.SideUnder
	case model.MarketMoneyline, model.MarketPuckLine:
		if strings.Contains(p, "(HOME)") {
			return model.SideHome
		}
		return model.SideAway
	}
	return ""
}

// MarketProb implied probability of American odds
func MarketProb(odds int) float64 {
	if odds == 0 {
		return 0
	}
	if odds < 0 {
		a := math.Abs(float64(odds))
		return a / (a + 100)
	}
	return 100 / (float64(odds) + 100)
}

// Rating letter grade for an EV percentage
func Rating(evPercent float64) string {
	switch {
	case evPercent >= 10:
		return "A+"
	case evPercent >= 7:
		return "A"
	case evPercent >= 5:
		return "B+"
	case evPercent >= 3:
		return "B"
	default:
		return "C"
	}
}

// Tier confidence label for an EV percentage
func Tier(evPercent float64) string {
	switch {
	case evPercent >= 10:
		return "ELITE"
	case evPercent >= 7:
		return "EXCELLENT"
	case evPercent >= 5:
		return "STRONG"
	case evPercent >= 3:
		return "GOOD"
	default:
		return "VALUE"
	}
}
