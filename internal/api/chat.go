package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nutricoach/backend/internal/middleware"
	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/types"
)

type ChatHandler struct {
	chatService service.IChatService
	limiter     *middleware.RateLimiter
}

func NewChatHandler(chatService service.IChatService, limiter *middleware.RateLimiter) *ChatHandler {
	return &ChatHandler{chatService: chatService, limiter: limiter}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	chat := router.Group("/chat")
	chat.Use(requireAuth)
	{
		chat.POST("", h.limiter.RateLimitMiddleware(), h.Chat)
		chat.DELETE("/history", h.ClearHistory)
	}
}

// Chat answers one user message with speech bubbles and, when the coach
// produced one, a parsed diet plan
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), userID, message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) ClearHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.chatService.ClearHistory(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
