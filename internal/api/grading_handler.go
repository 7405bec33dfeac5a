package api

import (
	"errors"
	"net/http"

	"SavantGrader/internal/lock"
	"SavantGrader/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GradingHandler manual triggers for the scheduled jobs
type GradingHandler struct {
	grading      *service.GradingService
	bookmarkSync *service.BookmarkSyncService
	logger       *logrus.Logger
}

func NewGradingHandler(grading *service.GradingService, bookmarkSync *service.BookmarkSyncService, logger *logrus.Logger) *GradingHandler {
	return &GradingHandler{grading: grading, bookmarkSync: bookmarkSync, logger: logger}
}

// RunGrading POST /grading/run
func (h *GradingHandler) RunGrading(c *gin.Context) {
	summary, err := h.grading.Run(c.Request.Context())
	if errors.Is(err, lock.ErrNotAcquired) {
		c.JSON(http.StatusConflict, gin.H{"error": "grading already running"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("manual grading failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RunBookmarkSync POST /grading/bookmarks/run
func (h *GradingHandler) RunBookmarkSync(c *gin.Context) {
	summary, err := h.bookmarkSync.Run(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("manual bookmark sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
