package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"SavantGrader/internal/model"
	"SavantGrader/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrBookmarkIncomplete the bet is unknown and the request carries no usable game snapshot
var ErrBookmarkIncomplete = errors.New("bookmark needs a known bet id or a game snapshot with teams, market and gameDate (YYYY-MM-DD)")

// BookmarkRequest body of POST /api/bookmarks; game fields are only needed when the bet is not stored yet
type BookmarkRequest struct {
	UserID    string                 `json:"userId"`
	BetID     string                 `json:"betId" binding:"required"`
	AwayTeam  string                 `json:"awayTeam"`
	HomeTeam  string                 `json:"homeTeam"`
	GameTime  string                 `json:"gameTime"`
	GameDate  string                 `json:"gameDate"`
	Market    string                 `json:"market"`
	Pick      string                 `json:"pick"`
	Team      string                 `json:"team"`
	Odds      int                    `json:"odds"`
	EVPercent float64                `json:"evPercent"`
	Rating    string                 `json:"rating"`
	Snapshot  map[string]interface{} `json:"snapshot"`
}

// BookmarkService per-user saved picks
type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	betRepo      repository.BetRepository
	logger       *logrus.Logger
	now          func() time.Time
}

// NewBookmarkService creates a BookmarkService
func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, betRepo repository.BetRepository, logger *logrus.Logger) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo, betRepo: betRepo, logger: logger, now: time.Now}
}

// NewAnonymousUserID id handed to visitors without an account
func NewAnonymousUserID() string {
	return "anon_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create snapshot is taken from the stored bet when there is one, otherwise from the request
func (s *BookmarkService) Create(ctx context.Context, req *BookmarkRequest) (*model.Bookmark, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = NewAnonymousUserID()
	}
	bm := &model.Bookmark{
		BookmarkID:   userID + "_" + req.BetID,
		UserID:       userID,
		BetID:        req.BetID,
		BookmarkedAt: s.now(),
	}

	bet, err := s.betRepo.GetByKey(ctx, req.BetID)
	switch {
	case err == nil:
		bm.AwayTeam, bm.HomeTeam, bm.GameTime, bm.GameDate = bet.AwayTeam, bet.HomeTeam, bet.GameTime, bet.Date
		bm.Market, bm.Pick, bm.Team = bet.Market, bet.Pick, bet.Team
		bm.Odds, bm.EVPercent, bm.Rating = bet.Odds, bet.EVPercent, bet.Grade
	case errors.Is(err, repository.ErrBetNotFound):
		if req.AwayTeam == "" || req.HomeTeam == "" || req.Market == "" {
			return nil, ErrBookmarkIncomplete
		}
		// the result sync selects bookmarks by game date; one without it would never resolve
		if _, err := time.Parse("2006-01-02", req.GameDate); err != nil {
			return nil, ErrBookmarkIncomplete
		}
		market, ok := model.ParseMarket(strings.ToUpper(req.Market))
		if !ok {
			market = model.Market(strings.ToUpper(req.Market))
		}
		bm.AwayTeam, bm.HomeTeam, bm.GameTime, bm.GameDate = req.AwayTeam, req.HomeTeam, req.GameTime, req.GameDate
		bm.Market, bm.Pick, bm.Team = market, req.Pick, req.Team
		bm.Odds, bm.EVPercent, bm.Rating = req.Odds, req.EVPercent, req.Rating
	default:
		return nil, fmt.Errorf("load bet %s: %w", req.BetID, err)
	}

	snapshot := req.Snapshot
	if snapshot == nil {
		snapshot = map[string]interface{}{
			"awayTeam": bm.AwayTeam, "homeTeam": bm.HomeTeam, "gameTime": bm.GameTime,
			"market": bm.Market, "pick": bm.Pick, "odds": bm.Odds, "evPercent": bm.EVPercent, "rating": bm.Rating,
		}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	bm.Snapshot = datatypes.JSON(raw)

	if err := s.bookmarkRepo.Save(ctx, bm); err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"bookmark_id": bm.BookmarkID}).Info("bookmark saved")
	return bm, nil
}

func (s *BookmarkService) Delete(ctx context.Context, userID, betID string) error {
	return s.bookmarkRepo.Delete(ctx, userID, betID)
}

func (s *BookmarkService) List(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	return s.bookmarkRepo.ListByUser(ctx, userID)
}
