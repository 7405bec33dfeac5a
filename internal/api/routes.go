package api

import "github.com/gin-gonic/gin"

// Handlers everything RegisterRoutes wires
type Handlers struct {
	Bets      *BetHandler
	Bookmarks *BookmarkHandler
	Grading   *GradingHandler
}

// RegisterRoutes mounts the public API and the manual job triggers
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	bets := r.Group("/api/bets")
	bets.GET("", h.Bets.ListBets)
	bets.GET("/stats", h.Bets.Stats)
	bets.POST("/observations", h.Bets.RecordObservations)
	bets.GET("/:bet_key", h.Bets.GetBet)

	bookmarks := r.Group("/api/bookmarks")
	bookmarks.POST("", h.Bookmarks.CreateBookmark)
	bookmarks.GET("/:user_id", h.Bookmarks.ListBookmarks)
	bookmarks.DELETE("/:user_id/:bet_id", h.Bookmarks.DeleteBookmark)

	grading := r.Group("/grading")
	grading.POST("/run", h.Grading.RunGrading)
	grading.POST("/bookmarks/run", h.Grading.RunBookmarkSync)
}
