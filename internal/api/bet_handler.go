package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"SavantGrader/internal/repository"
	"SavantGrader/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BetHandler tracked bets for the dashboard and the odds poller
type BetHandler struct {
	betRepo  repository.BetRepository
	tracking *service.BetTrackingService
	stats    *service.StatsService
	logger   *logrus.Logger
}

// NewBetHandler creates BetHandler
func NewBetHandler(betRepo repository.BetRepository, tracking *service.BetTrackingService, stats *service.StatsService, logger *logrus.Logger) *BetHandler {
	return &BetHandler{betRepo: betRepo, tracking: tracking, stats: stats, logger: logger}
}

// ListBets GET /api/bets?status=PENDING&date=2025-11-24&market=TOTAL&page=1&page_size=20
func (h *BetHandler) ListBets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := repository.BetFilter{
		Sport:  strings.ToUpper(c.Query("sport")),
		Status: strings.ToUpper(c.Query("status")),
		Market: strings.ToUpper(c.Query("market")),
		Date:   c.Query("date"),
	}

	bets, total, err := h.betRepo.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListBets failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": bets, "total": total, "page": page, "page_size": pageSize})
}

// GetBet GET /api/bets/:bet_key, history included
func (h *BetHandler) GetBet(c *gin.Context) {
	bet, err := h.betRepo.GetByKey(c.Request.Context(), c.Param("bet_key"))
	if errors.Is(err, repository.ErrBetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("GetBet failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bet)
}

// Stats GET /api/bets/stats?date_from=&date_to=&sport=
func (h *BetHandler) Stats(c *gin.Context) {
	filter := repository.BetFilter{
		Sport:    strings.ToUpper(c.Query("sport")),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	stats, err := h.stats.Summary(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RecordObservations POST /api/bets/observations, body is a JSON array of observations
func (h *BetHandler) RecordObservations(c *gin.Context) {
	var list []*service.Observation
	if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(list) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no observations"})
		return
	}
	summary := h.tracking.RecordBatch(c.Request.Context(), list)
	c.JSON(http.StatusOK, summary)
}
