package handler

import (
	"context"
	"errors"
	"io"
	"maps"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/kitchenops/backend/internal/application/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/scheduler"
	"github.com/kitchenops/backend/internal/interfaces/http/middleware"
)

// MenuEngineeringQuerier answers the classification query
type MenuEngineeringQuerier interface {
	GetMenuEngineering(ctx context.Context, q analyticsapp.MenuEngineeringQuery) ([]analyticsapp.DishAnalyticsResponse, error)
}

// SnapshotManager reads persisted snapshots and queues background jobs
type SnapshotManager interface {
	GetLatestSnapshot(ctx context.Context, outletID string) (*analyticsapp.SnapshotResponse, error)
	RequestSnapshot(ctx context.Context, req analyticsapp.TriggerSnapshotRequest) (*analyticsapp.JobAcceptedResponse, error)
	RequestCostingRun(ctx context.Context, req analyticsapp.TriggerCostingRequest) (*analyticsapp.JobAcceptedResponse, error)
}

// NightlyRunController exposes the nightly analytics cron
type NightlyRunController interface {
	GetStatus() map[string]any
	TriggerManualRun() error
}

// NightlyRunResponse acknowledges a manually triggered nightly run
type NightlyRunResponse struct {
	Message string `json:"message"`
}

// MenuAnalyticsHandler serves the menu engineering endpoints
type MenuAnalyticsHandler struct {
	BaseHandler
	querier   MenuEngineeringQuerier
	snapshots SnapshotManager
	nightly   NightlyRunController
}

// NewMenuAnalyticsHandler creates a new MenuAnalyticsHandler
func NewMenuAnalyticsHandler(querier MenuEngineeringQuerier, snapshots SnapshotManager) *MenuAnalyticsHandler {
	return &MenuAnalyticsHandler{
		querier:   querier,
		snapshots: snapshots,
	}
}

// SetCronScheduler attaches the nightly run for status and manual triggers
func (h *MenuAnalyticsHandler) SetCronScheduler(nightly NightlyRunController) {
	h.nightly = nightly
}

// RegisterRoutes mounts the handler under rg, which must already be behind
// the JWT middleware.
func (h *MenuAnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/analytics")
	g.GET("/menu-engineering", h.GetMenuEngineering)
	g.GET("/menu-engineering/snapshots/latest", h.GetLatestSnapshot)
	g.POST("/menu-engineering/snapshots", h.TriggerSnapshot)
	g.POST("/recipe-costing/recalculate", h.TriggerCostRecalculation)
	g.GET("/scheduler/status", h.GetSchedulerStatus)
	g.POST("/scheduler/trigger", h.TriggerNightlyRun)
}

// authenticated rejects requests that reached the handler without a subject
func (h *MenuAnalyticsHandler) authenticated(c *gin.Context) bool {
	if middleware.GetJWTUserID(c) == "" {
		h.Unauthorized(c, "Authentication required")
		return false
	}
	return true
}

// GetMenuEngineering godoc
// @Summary      Classify dishes for a period
// @Description  Aggregates sales in [start_date, end_date] and classifies each dish as star, cash-cow, puzzle or dog
// @Tags         analytics
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Param        outlet_id query string false "Restrict to one outlet"
// @Success      200 {object} dto.Response{data=[]analyticsapp.DishAnalyticsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /analytics/menu-engineering [get]
func (h *MenuAnalyticsHandler) GetMenuEngineering(c *gin.Context) {
	if !h.authenticated(c) {
		return
	}

	var q analyticsapp.MenuEngineeringQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rows, err := h.querier.GetMenuEngineering(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, rows, len(rows))
}

// GetLatestSnapshot godoc
// @Summary      Latest persisted snapshot
// @Tags         analytics
// @Produce      json
// @Param        outlet_id query string false "Outlet; empty selects the all-outlet snapshot"
// @Success      200 {object} dto.Response{data=analyticsapp.SnapshotResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /analytics/menu-engineering/snapshots/latest [get]
func (h *MenuAnalyticsHandler) GetLatestSnapshot(c *gin.Context) {
	if !h.authenticated(c) {
		return
	}

	snap, err := h.snapshots.GetLatestSnapshot(c.Request.Context(), c.Query("outlet_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snap)
}

// TriggerSnapshot godoc
// @Summary      Queue a snapshot job
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        request body analyticsapp.TriggerSnapshotRequest false "Outlet and period; empty uses the trailing window"
// @Success      202 {object} dto.Response{data=analyticsapp.JobAcceptedResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /analytics/menu-engineering/snapshots [post]
func (h *MenuAnalyticsHandler) TriggerSnapshot(c *gin.Context) {
	if !h.authenticated(c) {
		return
	}

	var req analyticsapp.TriggerSnapshotRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	accepted, err := h.snapshots.RequestSnapshot(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, accepted)
}

// TriggerCostRecalculation godoc
// @Summary      Queue a recipe cost rollup
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        request body analyticsapp.TriggerCostingRequest false "Outlet; empty covers every recipe"
// @Success      202 {object} dto.Response{data=analyticsapp.JobAcceptedResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /analytics/recipe-costing/recalculate [post]
func (h *MenuAnalyticsHandler) TriggerCostRecalculation(c *gin.Context) {
	if !h.authenticated(c) {
		return
	}

	var req analyticsapp.TriggerCostingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	accepted, err := h.snapshots.RequestCostingRun(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, accepted)
}

// bindOptionalJSON binds a JSON body when one is sent. An empty body leaves
// obj at its zero value.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	middleware.HandleValidationError(c, err)
	return false
}

// GetSchedulerStatus godoc
// @Summary      Nightly analytics scheduler status
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=map[string]interface{}}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/scheduler/status [get]
func (h *MenuAnalyticsHandler) GetSchedulerStatus(c *gin.Context) {
	if !h.authenticated(c) {
		return
	}

	status := map[string]any{
		"enabled":            false,
		"available_types":    scheduler.AllJobTypes(),
		"supported_schedule": "Daily",
	}
	if h.nightly != nil {
		maps.Copy(status, h.nightly.GetStatus())
	}
	h.Success(c, status)
}

// TriggerNightlyRun godoc
// @Summary      Run the nightly analytics now
// @Description  Queues the cost rollup and snapshot jobs for every outlet over the trailing window
// @Tags         analytics
// @Produce      json
// @Success      202 {object} dto.Response{data=NightlyRunResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/scheduler/trigger [post]
func (h *MenuAnalyticsHandler) TriggerNightlyRun(c *gin.Context) {
	if !h.authenticated(c) {
		return
	}

	if h.nightly == nil {
		h.HandleError(c, analyticsapp.ErrJobsUnavailable)
		return
	}
	if err := h.nightly.TriggerManualRun(); err != nil {
		h.HandleError(c, analyticsapp.ErrJobsUnavailable.WithCause(err))
		return
	}
	h.Accepted(c, NightlyRunResponse{Message: "Nightly analytics run triggered for all outlets"})
}
