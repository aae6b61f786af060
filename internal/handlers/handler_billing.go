package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// billingHandler handles the plan catalogue and agency subscriptions.
type billingHandler struct {
	billingSvc portssvc.BillingSvcFacade
}

// registerPlanRoutes mounts the plan catalogue. Reading the catalogue is
// public; creating plans is platform administration and stays behind auth.
func registerPlanRoutes(r *gin.Engine, v1 *gin.RouterGroup, billingSvc portssvc.BillingSvcFacade) {
	h := &billingHandler{billingSvc: billingSvc}

	r.GET("/api/v1/plans", h.listPlans)
	v1.POST("/plans", h.createPlan)
}

// registerBillingRoutes mounts the agency-scoped subscription endpoints.
func registerBillingRoutes(rg *gin.RouterGroup, billingSvc portssvc.BillingSvcFacade) {
	h := &billingHandler{billingSvc: billingSvc}

	billing := rg.Group("/billing")
	{
		billing.GET("/subscription", h.getSubscription)
		billing.POST("/subscription/preview-change", h.previewPlanChange)
		billing.POST("/subscription/change-plan", h.changePlan)
		billing.GET("/events", h.listBillingEvents)
	}
}

// listPlans godoc
// @Summary List subscription plans
// @Tags billing
// @Produce json
// @Success 200 {array} dto.PlanResponse
// @Security BearerAuth
// @Router /plans [get]
func (h *billingHandler) listPlans(c *gin.Context) {
	plans, err := h.billingSvc.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListPlanResponse(plans))
}

// createPlan godoc
// @Summary Create subscription plan
// @Tags billing
// @Accept json
// @Produce json
// @Param plan body dto.CreatePlanRequest true "Plan details"
// @Success 201 {object} dto.PlanResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /plans [post]
func (h *billingHandler) createPlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	plan, err := h.billingSvc.CreatePlan(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToPlanResponse(plan))
}

// getSubscription godoc
// @Summary Get agency subscription
// @Tags billing
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/billing/subscription [get]
func (h *billingHandler) getSubscription(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sub, err := h.billingSvc.GetSubscription(c.Request.Context(), c.Param("agency_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(sub))
}

// previewPlanChange godoc
// @Summary Preview plan change
// @Description Computes the day-prorated cost of switching to the given plan
// today without changing anything. Downgrades return a confirmation token the
// change-plan call must echo back.
// @Tags billing
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param preview body dto.PlanChangePreviewRequest true "Target plan"
// @Success 200 {object} dto.PlanChangePreviewResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/billing/subscription/preview-change [post]
func (h *billingHandler) previewPlanChange(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.PlanChangePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	preview, err := h.billingSvc.PreviewPlanChange(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// changePlan godoc
// @Summary Change subscription plan
// @Description Moves the subscription to the new plan, recording the change
// and any prorated charge as billing events. Downgrades require the
// confirmation token from a preceding preview.
// @Tags billing
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param change body dto.ChangePlanRequest true "Target plan and confirmation"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/billing/subscription/change-plan [post]
func (h *billingHandler) changePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	sub, err := h.billingSvc.ChangePlan(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(sub))
}

// listBillingEvents godoc
// @Summary List billing events
// @Tags billing
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.BillingEventResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/billing/events [get]
func (h *billingHandler) listBillingEvents(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, offset := paginationParams(c)
	events, err := h.billingSvc.ListBillingEvents(c.Request.Context(), c.Param("agency_id"), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListBillingEventResponse(events))
}
