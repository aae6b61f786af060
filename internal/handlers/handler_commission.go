package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// commissionHandler handles commission rules and seller payout records.
type commissionHandler struct {
	commissionSvc portssvc.CommissionSvcFacade
}

func registerCommissionRoutes(rg *gin.RouterGroup, commissionSvc portssvc.CommissionSvcFacade) {
	h := &commissionHandler{commissionSvc: commissionSvc}

	rules := rg.Group("/commission-rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.PUT("/:rule_id", h.updateRule)
		rules.DELETE("/:rule_id", h.deleteRule)
	}
	rg.GET("/sellers/:seller_id/commissions", h.listSellerCommissions)
}

// createRule godoc
// @Summary Create commission rule
// @Description Creates a dated, optionally region-scoped payout rule. Admin only.
// @Tags commissions
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param rule body dto.CreateCommissionRuleRequest true "Rule details"
// @Success 201 {object} dto.CommissionRuleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/commission-rules [post]
func (h *commissionHandler) createRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCommissionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	rule, err := h.commissionSvc.CreateRule(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCommissionRuleResponse(rule))
}

// listRules godoc
// @Summary List commission rules
// @Tags commissions
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Success 200 {array} dto.CommissionRuleResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/commission-rules [get]
func (h *commissionHandler) listRules(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rules, err := h.commissionSvc.ListRules(c.Request.Context(), c.Param("agency_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListCommissionRuleResponse(rules))
}

// updateRule godoc
// @Summary Update commission rule
// @Tags commissions
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param rule_id path string true "Rule ID"
// @Param rule body dto.UpdateCommissionRuleRequest true "Fields to update"
// @Success 200 {object} dto.CommissionRuleResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/commission-rules/{rule_id} [put]
func (h *commissionHandler) updateRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateCommissionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	rule, err := h.commissionSvc.UpdateRule(c.Request.Context(), c.Param("agency_id"), c.Param("rule_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCommissionRuleResponse(rule))
}

// deleteRule godoc
// @Summary Delete commission rule
// @Tags commissions
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param rule_id path string true "Rule ID"
// @Success 204 "No content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/commission-rules/{rule_id} [delete]
func (h *commissionHandler) deleteRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.commissionSvc.DeleteRule(c.Request.Context(), c.Param("agency_id"), c.Param("rule_id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listSellerCommissions godoc
// @Summary List a seller's commission records
// @Tags commissions
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param seller_id path string true "Seller ID"
// @Success 200 {array} dto.CommissionRecordResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/sellers/{seller_id}/commissions [get]
func (h *commissionHandler) listSellerCommissions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	records, err := h.commissionSvc.ListRecordsBySeller(c.Request.Context(), c.Param("agency_id"), c.Param("seller_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListCommissionRecordResponse(records))
}
