package oddstrader

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"SavantGrader/internal/config"
	"SavantGrader/internal/interfaces"
	"SavantGrader/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	ProviderName    = "oddstrader"
	defaultLogoHost = "logos.oddstrader.com"
	brToken         = "<br>"
	pctToken        = "%<br>"
)

var (
	// team name sits between the logo image and the next <br>
	teamPattern = regexp.MustCompile(`\.(?:png|PNG)\?d=100x100\)<br>([^<]+)<br>`)
	pctPattern  = regexp.MustCompile(`<br>(\d+)%<br>`)
	rankPrefix  = regexp.MustCompile(`^#\d+`)
)

// Extractor scans OddsTrader markdown tables for games whose win probability has settled at 100/0
type Extractor struct {
	logoHost string
	markers  []string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewExtractor logo host / markers fall back to the OddsTrader defaults when unset
func NewExtractor(cfg *config.FeedConfig, logger *logrus.Logger) interfaces.ResultExtractor {
	return newExtractor(cfg, logger)
}

func newExtractor(cfg *config.FeedConfig, logger *logrus.Logger) *Extractor {
	e := &Extractor{
		logoHost: defaultLogoHost,
		markers:  []string{"STARTS IN"},
		logger:   logger,
		now:      time.Now,
	}
	if cfg != nil {
		if cfg.LogoHost != "" {
			e.logoHost = cfg.LogoHost
		}
		if len(cfg.Markers) > 0 {
			e.markers = cfg.Markers
		}
	}
	if e.logger == nil {
		e.logger = logrus.StandardLogger()
	}
	return e
}

func (e *Extractor) GetName() string {
	return model.SourceOddsTrader
}

// teamRow one parsed team cell
type teamRow struct {
	team   string
	pct    int
	hasPct bool
}

// ExtractResults away row first, home row on the very next line
func (e *Extractor) ExtractResults(markdown string) []*model.CompletedGameResult {
	results := make([]*model.CompletedGameResult, 0)
	if strings.TrimSpace(markdown) == "" {
		e.logger.Warn("empty markdown passed to result extractor")
		return results
	}

	lines := strings.Split(markdown, "\n")
	scraped := e.now()
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !e.qualifies(line) {
			continue
		}
		away, ok := parseTeamRow(line)
		if !ok {
			continue
		}

		var next string
		if i+1 < len(lines) {
			next = strings.TrimSpace(lines[i+1])
		}
		home, homeOK := parseTeamRow(next)
		if homeOK {
			// the paired row is consumed whether or not the game is final
			i++
		}

		if !away.hasPct || (away.pct != 0 && away.pct != 100) {
			continue
		}
		if !homeOK || !home.hasPct {
			e.logger.WithField("away_team", away.team).Debug("final away row without a paired home row, skipped")
			continue
		}
		if home.pct != 100-away.pct {
			e.logger.WithFields(logrus.Fields{
				"away_team": away.team,
				"away_pct":  away.pct,
				"home_team": home.team,
				"home_pct":  home.pct,
			}).Debug("home percentage is not the complement of away, skipped")
			continue
		}

		results = append(results, buildResult(away, home, scraped))
	}

	e.logger.WithField("count", len(results)).Info("completed games extracted")
	return results
}

// qualifies a table line carrying a team logo and either a marker or a percentage token
func (e *Extractor) qualifies(line string) bool {
	if line == "" || !strings.HasPrefix(line, "|") {
		return false
	}
	if !strings.Contains(line, e.logoHost) || !strings.Contains(line, brToken) {
		return false
	}
	if strings.Contains(line, pctToken) {
		return true
	}
	for _, m := range e.markers {
		if m != "" && strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func parseTeamRow(line string) (teamRow, bool) {
	if line == "" || !strings.HasPrefix(line, "|") {
		return teamRow{}, false
	}
	m := teamPattern.FindStringSubmatch(line)
	if m == nil {
		return teamRow{}, false
	}
	team := strings.TrimSpace(rankPrefix.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	if team == "" {
		return teamRow{}, false
	}
	row := teamRow{team: team}
	if p := pctPattern.FindStringSubmatch(line); p != nil {
		if v, err := strconv.Atoi(p[1]); err == nil {
			row.pct = v
			row.hasPct = true
		}
	}
	return row, true
}

func buildResult(away, home teamRow, scraped time.Time) *model.CompletedGameResult {
	r := &model.CompletedGameResult{
		AwayTeam:   away.team,
		HomeTeam:   home.team,
		AwayWinPct: away.pct,
		HomeWinPct: home.pct,
		Source:     model.SourceOddsTrader,
		ScrapedAt:  scraped,
	}
	if away.pct == 100 {
		r.Winner, r.WinnerTeam, r.LoserTeam = model.WinnerAway, away.team, home.team
	} else {
		r.Winner, r.WinnerTeam, r.LoserTeam = model.WinnerHome, home.team, away.team
	}
	return r
}
