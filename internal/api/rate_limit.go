package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutricoach/backend/internal/middleware"
	"github.com/nutricoach/backend/internal/types"
)

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc, chatLimiter, planLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	rateLimits.Use(requireAuth)
	if chatLimiter != nil {
		rateLimits.GET("/chat", rateLimitStatus(chatLimiter))
	}
	if planLimiter != nil {
		rateLimits.GET("/plan-generation", rateLimitStatus(planLimiter))
	}
}

func rateLimitStatus(limiter *middleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		remaining, resetTime, err := limiter.GetRemainingRequests(c.Request.Context(), userID.String())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
			return
		}

		c.JSON(http.StatusOK, types.RateLimitStatus{
			Limit:     limiter.Limit(),
			Remaining: remaining,
			ResetInS:  int64(time.Until(resetTime).Seconds()),
		})
	}
}
