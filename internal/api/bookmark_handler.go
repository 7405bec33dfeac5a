package api

import (
	"errors"
	"net/http"

	"SavantGrader/internal/repository"
	"SavantGrader/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BookmarkHandler per-user bookmarks
type BookmarkHandler struct {
	bookmarks *service.BookmarkService
	logger    *logrus.Logger
}

func NewBookmarkHandler(bookmarks *service.BookmarkService, logger *logrus.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks, logger: logger}
}

// CreateBookmark POST /api/bookmarks; userId is generated when missing and returned
func (h *BookmarkHandler) CreateBookmark(c *gin.Context) {
	var req service.BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bm, err := h.bookmarks.Create(c.Request.Context(), &req)
	if errors.Is(err, service.ErrBookmarkIncomplete) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("CreateBookmark failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, bm)
}

// DeleteBookmark DELETE /api/bookmarks/:user_id/:bet_id
func (h *BookmarkHandler) DeleteBookmark(c *gin.Context) {
	err := h.bookmarks.Delete(c.Request.Context(), c.Param("user_id"), c.Param("bet_id"))
	if errors.Is(err, repository.ErrBookmarkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("DeleteBookmark failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBookmarks GET /api/bookmarks/:user_id
func (h *BookmarkHandler) ListBookmarks(c *gin.Context) {
	list, err := h.bookmarks.List(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.logger.WithError(err).Error("ListBookmarks failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list, "total": len(list)})
}
