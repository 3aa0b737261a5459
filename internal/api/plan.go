package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutricoach/backend/internal/middleware"
	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/types"
)

const defaultListLimit = 20

// PlanHandler serves weekly plan generation, history and export
type PlanHandler struct {
	planService service.IPlanService
	exporter    service.IPlanExporter
	limiter     *middleware.RateLimiter
}

// NewPlanHandler creates a PlanHandler. exporter and limiter may be nil.
func NewPlanHandler(planService service.IPlanService, exporter service.IPlanExporter, limiter *middleware.RateLimiter) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		exporter:    exporter,
		limiter:     limiter,
	}
}

func (h *PlanHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	plans := router.Group("/plans")
	plans.Use(requireAuth)
	{
		plans.POST("/generate", h.limiter.RateLimitMiddleware(), h.GeneratePlan)
		plans.GET("", h.ListPlans)
		plans.GET("/latest", h.LatestPlan)
		plans.GET("/:id", h.GetPlan)
		plans.POST("/:id/export", h.ExportPlan)
	}
}

// GeneratePlan builds a new weekly plan. The body is optional and overrides
// stored profile fields for this plan only.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	plan, err := h.planService.GeneratePlan(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

func (h *PlanHandler) LatestPlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	plan, err := h.planService.LatestPlan(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, planID, ok := planParams(c)
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ExportPlan uploads the plan to object storage and returns a download link
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	userID, planID, ok := planParams(c)
	if !ok {
		return
	}
	if h.exporter == nil {
		respondError(c, service.ErrExportDisabled)
		return
	}

	resp, err := h.exporter.Export(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func planParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, planID, true
}
