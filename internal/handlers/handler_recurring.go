package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// recurringHandler handles recurring operator payment schedules.
type recurringHandler struct {
	recurringSvc portssvc.RecurringSvcFacade
}

func registerRecurringRoutes(rg *gin.RouterGroup, recurringSvc portssvc.RecurringSvcFacade) {
	h := &recurringHandler{recurringSvc: recurringSvc}

	recurring := rg.Group("/recurring-payments")
	{
		recurring.POST("", h.createRecurring)
		recurring.GET("", h.listRecurring)
		recurring.GET("/:recurring_id", h.getRecurring)
		recurring.PUT("/:recurring_id", h.updateRecurring)
		recurring.DELETE("/:recurring_id", h.deleteRecurring)
		recurring.POST("/run-due", h.runDue)
	}
}

// createRecurring godoc
// @Summary Create recurring payment schedule
// @Tags recurring
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param schedule body dto.CreateRecurringPaymentRequest true "Schedule details"
// @Success 201 {object} dto.RecurringPaymentResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/recurring-payments [post]
func (h *recurringHandler) createRecurring(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateRecurringPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	rec, err := h.recurringSvc.CreateRecurring(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToRecurringPaymentResponse(rec))
}

// listRecurring godoc
// @Summary List recurring payment schedules
// @Tags recurring
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Success 200 {array} dto.RecurringPaymentResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/recurring-payments [get]
func (h *recurringHandler) listRecurring(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	recs, err := h.recurringSvc.ListRecurring(c.Request.Context(), c.Param("agency_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListRecurringPaymentResponse(recs))
}

// getRecurring godoc
// @Summary Get recurring payment schedule
// @Tags recurring
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param recurring_id path string true "Schedule ID"
// @Success 200 {object} dto.RecurringPaymentResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/recurring-payments/{recurring_id} [get]
func (h *recurringHandler) getRecurring(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rec, err := h.recurringSvc.GetRecurringByID(c.Request.Context(), c.Param("agency_id"), c.Param("recurring_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringPaymentResponse(rec))
}

// updateRecurring godoc
// @Summary Update recurring payment schedule
// @Tags recurring
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param recurring_id path string true "Schedule ID"
// @Param schedule body dto.UpdateRecurringPaymentRequest true "Fields to update"
// @Success 200 {object} dto.RecurringPaymentResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/recurring-payments/{recurring_id} [put]
func (h *recurringHandler) updateRecurring(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateRecurringPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	rec, err := h.recurringSvc.UpdateRecurring(c.Request.Context(), c.Param("agency_id"), c.Param("recurring_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringPaymentResponse(rec))
}

// deleteRecurring godoc
// @Summary Delete recurring payment schedule
// @Description Removes the schedule. Already-generated payments remain.
// @Tags recurring
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param recurring_id path string true "Schedule ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/recurring-payments/{recurring_id} [delete]
func (h *recurringHandler) deleteRecurring(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.recurringSvc.DeleteRecurring(c.Request.Context(), c.Param("agency_id"), c.Param("recurring_id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// runDue godoc
// @Summary Generate due recurring payments
// @Description Generates the operator EXPENSE payments for every schedule
// due on or before today and advances the schedules, all in one locked
// transaction. Intended for an external daily scheduler; retries are safe.
// @Tags recurring
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param asOf query string false "Run as of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.RunDueResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/recurring-payments/run-due [post]
func (h *recurringHandler) runDue(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	today := time.Now().UTC()
	if v := c.Query("asOf"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid asOf date, expected YYYY-MM-DD"})
			return
		}
		today = parsed
	}
	resp, err := h.recurringSvc.RunDue(c.Request.Context(), c.Param("agency_id"), userID, today)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
