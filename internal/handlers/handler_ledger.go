package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// ledgerHandler handles ledger movement requests within an agency.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := &ledgerHandler{ledgerService: ledgerService}

	movements := rg.Group("/movements")
	{
		movements.POST("", h.createMovement)
		movements.GET("/:movement_id", h.getMovement)
	}
}

// createMovement godoc
// @Summary Register ledger movement
// @Description Registers an INCOME or EXPENSE movement. ARS movements
// without an explicit rate resolve one through the fallback chain; the USD
// equivalent is always computed server-side.
// @Tags ledger
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param movement body dto.CreateMovementRequest true "Movement details"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent modification"
// @Security BearerAuth
// @Router /agencies/{agency_id}/movements [post]
func (h *ledgerHandler) createMovement(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	movement, err := h.ledgerService.CreateMovement(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

// getMovement godoc
// @Summary Get ledger movement
// @Tags ledger
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param movement_id path string true "Movement ID"
// @Success 200 {object} dto.MovementResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/movements/{movement_id} [get]
func (h *ledgerHandler) getMovement(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	movement, err := h.ledgerService.GetMovementByID(c.Request.Context(), c.Param("agency_id"), c.Param("movement_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}
