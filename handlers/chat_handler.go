package handlers

import (
	"errors"
	"net/http"

	"lawgpt-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for the chat endpoint
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the request body for one chat turn
type ChatRequest struct {
	Message    string `json:"message" binding:"required"`
	LLMModelID string `json:"llm_model_id" binding:"required"`
	IsCaseRAG  bool   `json:"is_case_rag"`
	IsLawRAG   bool   `json:"is_law_rag"`
}

// ChatResponse represents the response body for one chat turn
type ChatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
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

	serviceReq := service.ChatRequest{
		Message:    req.Message,
		ModelID:    req.LLMModelID,
		UseCaseRAG: req.IsCaseRAG,
		UseLawRAG:  req.IsLawRAG,
	}

	result, err := h.chatService.Chat(c.Request.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedModel) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNSUPPORTED_MODEL",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: result.Response})
}
