package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketpulse/internal/services"
)

// NewsHandler handles news-article requests.
type NewsHandler struct {
	analysisService services.AnalysisServicer
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(analysisService services.AnalysisServicer) *NewsHandler {
	return &NewsHandler{analysisService: analysisService}
}

// AnalyzeArticle handles running the on-demand scoring pass over one
// stored article.
func (h *NewsHandler) AnalyzeArticle(c *gin.Context) {
	article, err := h.analysisService.AnalyzeArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analyzed",
		"article": article,
	})
}
