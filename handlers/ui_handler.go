package handlers

import (
	"net/http"
	"strings"

	"lexlens-backend/models"
	"lexlens-backend/service"

	"github.com/gin-gonic/gin"
)

// UIHandler handles HTTP requests for adaptive UI generation
type UIHandler struct {
	analysisService *service.AnalysisService
}

// NewUIHandler creates a new UI handler
func NewUIHandler(analysisService *service.AnalysisService) *UIHandler {
	return &UIHandler{analysisService: analysisService}
}

// GenerateUIRequest is the request body for UI generation. Content carries
// the analysis text the components are built from; jsonData the structured
// clause data.
type GenerateUIRequest struct {
	Content      string            `json:"content"`
	Category     string            `json:"category"`
	DocumentType string            `json:"documentType"`
	JSONData     models.JSONMap    `json:"jsonData"`
	Dates        models.DateEvents `json:"dates"`
}

// GenerateUI handles POST /api/ui/generate. Empty content is rejected before
// any model call is made.
func (h *UIHandler) GenerateUI(c *gin.Context) {
	var req GenerateUIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_CONTENT",
				"message": "content is required for UI generation",
			},
		})
		return
	}

	result := &models.AnalysisResult{
		Summary:      req.Content,
		JSONData:     req.JSONData,
		DocumentType: req.DocumentType,
		Category:     models.ParseCategory(req.Category),
		Dates:        req.Dates,
	}
	if result.JSONData == nil {
		result.JSONData = make(models.JSONMap)
	}

	payload := h.analysisService.GenerateUI(c.Request.Context(), result)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payload,
	})
}
