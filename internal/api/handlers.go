package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nutricoach/backend/internal/database"
	"github.com/nutricoach/backend/internal/middleware"
	"github.com/nutricoach/backend/internal/service"
)

const healthCheckTimeout = 2 * time.Second

// Dependencies are the services the HTTP handlers call into. DB, Exporter and
// the limiters are optional.
type Dependencies struct {
	DB          *gorm.DB
	Auth        service.IAuthService
	Profiles    service.IDietProfileService
	Plans       service.IPlanService
	Chat        service.IChatService
	Exporter    service.IPlanExporter
	ChatLimiter *middleware.RateLimiter
	PlanLimiter *middleware.RateLimiter
}

// HealthHandler reports liveness, and database reachability when a DB is set
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()
			if err := database.HealthCheck(ctx, db); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "unreachable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "NutriCoach API is running",
			"version": "v1.0.0",
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthHandler(deps.DB))
	router.GET("/api/health", HealthHandler(deps.DB))

	requireAuth := middleware.AuthMiddleware(deps.Auth)

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth).RegisterRoutes(v1, requireAuth)
	NewProfileHandler(deps.Profiles).RegisterRoutes(v1, requireAuth)
	NewPlanHandler(deps.Plans, deps.Exporter, deps.PlanLimiter).RegisterRoutes(v1, requireAuth)
	NewChatHandler(deps.Chat, deps.ChatLimiter).RegisterRoutes(v1, requireAuth)

	// Rate limit status endpoint
	if deps.ChatLimiter != nil || deps.PlanLimiter != nil {
		RegisterRateLimitRoutes(v1, requireAuth, deps.ChatLimiter, deps.PlanLimiter)
	}
}

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLLMUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "the coach is unavailable, please try again later"})
	default:
		// logged by middleware.ErrorHandler
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}
