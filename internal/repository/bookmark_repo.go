package repository

import (
	"context"
	"fmt"
	"time"

	"SavantGrader/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkRepository user_bookmarks storage
type BookmarkRepository interface {
	// Save inserts, or refreshes the snapshot of an existing bookmark; a written result is kept
	Save(ctx context.Context, b *model.Bookmark) error
	Delete(ctx context.Context, userID, betID string) error
	ListByUser(ctx context.Context, userID string) ([]*model.Bookmark, error)
	// ListWithoutResult bookmarks with no result whose game date is one of dates
	ListWithoutResult(ctx context.Context, dates []string) ([]*model.Bookmark, error)
	// ApplyResult writes the result once; ErrAlreadyGraded when one is already present
	ApplyResult(ctx context.Context, bookmarkID string, outcome model.Outcome, profit *float64, at time.Time) error
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository creates a BookmarkRepository
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Save(ctx context.Context, b *model.Bookmark) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bookmark_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bookmarked_at", "away_team", "home_team", "game_time", "game_date",
			"market", "pick", "team", "odds", "ev_percent", "rating", "snapshot", "updated_at",
		}),
	}).Create(b).Error
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, betID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND bet_id = ?", userID, betID).
		Delete(&model.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	var list []*model.Bookmark
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("bookmarked_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *bookmarkRepository) ListWithoutResult(ctx context.Context, dates []string) ([]*model.Bookmark, error) {
	db := r.db.WithContext(ctx).Model(&model.Bookmark{}).Where("result_outcome IS NULL")
	if len(dates) > 0 {
		db = db.Where("game_date IN ?", dates)
	}
	var list []*model.Bookmark
	if err := db.Order("bookmarked_at ASC").Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *bookmarkRepository) ApplyResult(ctx context.Context, bookmarkID string, outcome model.Outcome, profit *float64, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Bookmark{}).
			Where("bookmark_id = ? AND result_outcome IS NULL", bookmarkID).
			Updates(map[string]interface{}{
				"result_outcome":    outcome,
				"result_profit":     profit,
				"result_updated_at": at,
			})
		if res.Error != nil {
			return fmt.Errorf("write bookmark result %s: %w", bookmarkID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyGraded
		}
		return nil
	})
}
