package nhlapi

import (
	"encoding/json"
	"strings"
	"time"

	"SavantGrader/internal/config"
	"SavantGrader/internal/interfaces"
	"SavantGrader/internal/model"

	"github.com/sirupsen/logrus"
)

const ProviderName = "nhlapi"

// game states the NHL API uses once a game is over
var finalStates = map[string]bool{"OFF": true, "FINAL": true}

type localized struct {
	Default string `json:"default"`
}

type teamScore struct {
	Abbrev     string    `json:"abbrev"`
	PlaceName  localized `json:"placeName"`
	CommonName localized `json:"commonName"`
	Score      *int      `json:"score"`
}

type game struct {
	ID        int64     `json:"id"`
	GameState string    `json:"gameState"`
	AwayTeam  teamScore `json:"awayTeam"`
	HomeTeam  teamScore `json:"homeTeam"`
}

// schedule covers both /schedule/{date} (gameWeek) and /score/{date} (games)
type schedule struct {
	GameWeek []struct {
		Date  string `json:"date"`
		Games []game `json:"games"`
	} `json:"gameWeek"`
	Games []game `json:"games"`
}

// Extractor reads final scores out of NHL API schedule/score JSON
type Extractor struct {
	logger *logrus.Logger
	now    func() time.Time
}

// NewExtractor cfg is unused; the signature matches the registry
func NewExtractor(_ *config.FeedConfig, logger *logrus.Logger) interfaces.ResultExtractor {
	return newExtractor(logger)
}

func newExtractor(logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Extractor{logger: logger, now: time.Now}
}

func (e *Extractor) GetName() string {
	return model.SourceNHLAPI
}

// ExtractResults final games with both scores and a decided winner, in document order
func (e *Extractor) ExtractResults(document string) []*model.CompletedGameResult {
	results := make([]*model.CompletedGameResult, 0)
	if strings.TrimSpace(document) == "" {
		e.logger.Warn("empty document passed to score extractor")
		return results
	}

	var doc schedule
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		e.logger.WithError(err).Warn("score feed is not valid schedule json")
		return results
	}

	games := doc.Games
	for _, day := range doc.GameWeek {
		games = append(games, day.Games...)
	}

	scrapedAt := e.now()
	for _, g := range games {
		if !finalStates[strings.ToUpper(g.GameState)] {
			continue
		}
		if g.AwayTeam.Score == nil || g.HomeTeam.Score == nil {
			e.logger.WithField("game_id", g.ID).Warn("final game without score, skipped")
			continue
		}
		away, home := *g.AwayTeam.Score, *g.HomeTeam.Score
		if away == home {
			e.logger.WithField("game_id", g.ID).Warn("final game tied, skipped")
			continue
		}
		results = append(results, buildResult(g, away, home, scrapedAt))
	}

	e.logger.WithFields(logrus.Fields{"games": len(games), "final": len(results)}).Debug("scores extracted")
	return results
}

func buildResult(g game, away, home int, scrapedAt time.Time) *model.CompletedGameResult {
	r := &model.CompletedGameResult{
		AwayTeam:  teamName(g.AwayTeam),
		HomeTeam:  teamName(g.HomeTeam),
		AwayScore: &away,
		HomeScore: &home,
		Source:    model.SourceNHLAPI,
		ScrapedAt: scrapedAt,
	}
	if away > home {
		r.Winner, r.WinnerTeam, r.LoserTeam = model.WinnerAway, r.AwayTeam, r.HomeTeam
		r.AwayWinPct, r.HomeWinPct = 100, 0
	} else {
		r.Winner, r.WinnerTeam, r.LoserTeam = model.WinnerHome, r.HomeTeam, r.AwayTeam
		r.AwayWinPct, r.HomeWinPct = 0, 100
	}
	return r
}

// teamName "Boston Bruins" from place + common name, abbreviation when either is missing
func teamName(t teamScore) string {
	place := strings.TrimSpace(t.PlaceName.Default)
	common := strings.TrimSpace(t.CommonName.Default)
	if place == "" || common == "" {
		return t.Abbrev
	}
	return place + " " + common
}
