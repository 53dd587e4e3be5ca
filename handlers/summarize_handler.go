package handlers

import (
	"net/http"

	"lawgpt-backend/service"

	"github.com/gin-gonic/gin"
)

// SummarizeHandler handles HTTP requests for case summarization
type SummarizeHandler struct {
	summarizerService *service.SummarizerService
}

// NewSummarizeHandler creates a new summarize handler
func NewSummarizeHandler(summarizerService *service.SummarizerService) *SummarizeHandler {
	return &SummarizeHandler{summarizerService: summarizerService}
}

// SummarizeRequest represents the request body for summarizing a case
type SummarizeRequest struct {
	CaseDetails string `json:"case_details" binding:"required"`
}

// SummarizeResponse represents the response body for a case summary
type SummarizeResponse struct {
	CaseSummary string `json:"case_summary"`
}

// Summarize handles POST /api/v1/summarize
func (h *SummarizeHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
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

	serviceReq := service.SummarizeRequest{
		CaseDetails: req.CaseDetails,
	}

	result, err := h.summarizerService.SummarizeCase(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SUMMARIZE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, SummarizeResponse{CaseSummary: result.CaseSummary})
}
