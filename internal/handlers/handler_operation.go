package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// operationHandler handles sale operations, their payments and their linked
// ledger movements.
type operationHandler struct {
	operationService portssvc.OperationSvcFacade
	ledgerService    portssvc.LedgerSvcFacade
	commissionSvc    portssvc.CommissionSvcFacade
}

func registerOperationRoutes(rg *gin.RouterGroup, operationService portssvc.OperationSvcFacade, ledgerService portssvc.LedgerSvcFacade, commissionSvc portssvc.CommissionSvcFacade) {
	h := &operationHandler{
		operationService: operationService,
		ledgerService:    ledgerService,
		commissionSvc:    commissionSvc,
	}

	operations := rg.Group("/operations")
	{
		operations.POST("", h.createOperation)
		operations.GET("", h.listOperations)
		operations.GET("/:operation_id", h.getOperation)
		operations.PUT("/:operation_id", h.updateOperation)
		operations.POST("/:operation_id/confirm", h.confirmOperation)
		operations.POST("/:operation_id/cancel", h.cancelOperation)
		operations.POST("/:operation_id/payments", h.createPayment)
		operations.GET("/:operation_id/payments", h.listOperationPayments)
		operations.GET("/:operation_id/movements", h.listOperationMovements)
		operations.GET("/:operation_id/commissions", h.listOperationCommissions)
		operations.GET("/:operation_id/commissions/preview", h.previewCommission)
		operations.POST("/:operation_id/commissions/recalculate", h.recalculateCommissions)
	}

	payments := rg.Group("/payments")
	{
		payments.GET("", h.listPayments)
		payments.PUT("/:payment_id/status", h.updatePaymentStatus)
	}
}

// createOperation godoc
// @Summary Create operation
// @Description Creates a DRAFT sale operation; margin is derived as sale minus cost.
// @Tags operations
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation body dto.CreateOperationRequest true "Operation details"
// @Success 201 {object} dto.OperationResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations [post]
func (h *operationHandler) createOperation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	op, err := h.operationService.CreateOperation(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOperationResponse(op))
}

// listOperations godoc
// @Summary List operations
// @Tags operations
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.OperationResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations [get]
func (h *operationHandler) listOperations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, offset := paginationParams(c)
	ops, err := h.operationService.ListOperations(c.Request.Context(), c.Param("agency_id"), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListOperationResponse(ops))
}

// getOperation godoc
// @Summary Get operation
// @Tags operations
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id} [get]
func (h *operationHandler) getOperation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	op, err := h.operationService.GetOperationByID(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// updateOperation godoc
// @Summary Update operation
// @Description Updates a DRAFT operation and re-derives its margin.
// @Tags operations
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Param operation body dto.UpdateOperationRequest true "Fields to update"
// @Success 200 {object} dto.OperationResponse
// @Failure 400 {object} ErrorResponse "Not editable"
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id} [put]
func (h *operationHandler) updateOperation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	op, err := h.operationService.UpdateOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// confirmOperation godoc
// @Summary Confirm operation
// @Description Moves a DRAFT operation to CONFIRMED and recalculates its commissions.
// @Tags operations
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/confirm [post]
func (h *operationHandler) confirmOperation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	op, err := h.operationService.ConfirmOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// cancelOperation godoc
// @Summary Cancel operation
// @Tags operations
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/cancel [post]
func (h *operationHandler) cancelOperation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	op, err := h.operationService.CancelOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// createPayment godoc
// @Summary Add payment to operation
// @Tags payments
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Param payment body dto.CreatePaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/payments [post]
func (h *operationHandler) createPayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	payment, err := h.operationService.CreatePayment(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// listOperationPayments godoc
// @Summary List operation payments
// @Tags payments
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {array} dto.PaymentResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/payments [get]
func (h *operationHandler) listOperationPayments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	payments, err := h.operationService.ListPaymentsByOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListPaymentResponse(payments))
}

// listPayments godoc
// @Summary List agency payments
// @Description Lists payments across operations, including ones generated by
// recurring schedules. Filter by status with ?status=.
// @Tags payments
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param status query string false "PENDING, PAID or CANCELLED"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.PaymentResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/payments [get]
func (h *operationHandler) listPayments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var status *domain.PaymentStatus
	if v := c.Query("status"); v != "" {
		s := domain.PaymentStatus(v)
		if s != domain.PaymentPending && s != domain.PaymentPaid && s != domain.PaymentCancelled {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid status filter"})
			return
		}
		status = &s
	}
	limit, offset := paginationParams(c)
	payments, err := h.operationService.ListPayments(c.Request.Context(), c.Param("agency_id"), userID, status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListPaymentResponse(payments))
}

// updatePaymentStatus godoc
// @Summary Update payment status
// @Description Changes a payment's settlement state. Marking PAID posts the
// ledger movement against the given account in the same transaction and
// recalculates the operation's commissions.
// @Tags payments
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param payment_id path string true "Payment ID"
// @Param status body dto.UpdatePaymentStatusRequest true "New status"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent modification"
// @Security BearerAuth
// @Router /agencies/{agency_id}/payments/{payment_id}/status [put]
func (h *operationHandler) updatePaymentStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	payment, err := h.operationService.UpdatePaymentStatus(c.Request.Context(), c.Param("agency_id"), c.Param("payment_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// listOperationMovements godoc
// @Summary List operation movements
// @Tags ledger
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {array} dto.MovementResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/movements [get]
func (h *operationHandler) listOperationMovements(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	movements, err := h.ledgerService.ListMovementsByOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListMovementResponse(movements))
}

// listOperationCommissions godoc
// @Summary List operation commission records
// @Tags commissions
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {array} dto.CommissionRecordResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/commissions [get]
func (h *operationHandler) listOperationCommissions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	records, err := h.commissionSvc.ListRecordsByOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListCommissionRecordResponse(records))
}

// previewCommission godoc
// @Summary Preview operation commission
// @Description Computes the commission without persisting records. Zero when
// preconditions fail or no rule matches.
// @Tags commissions
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {object} domain.CommissionResult
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/commissions/preview [get]
func (h *operationHandler) previewCommission(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	result, err := h.commissionSvc.CalculateForOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// recalculateCommissions godoc
// @Summary Recalculate operation commissions
// @Description Recomputes the operation's commission and replaces its stored
// records. Useful after editing commission rules.
// @Tags commissions
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param operation_id path string true "Operation ID"
// @Success 200 {array} dto.CommissionRecordResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/operations/{operation_id}/commissions/recalculate [post]
func (h *operationHandler) recalculateCommissions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	records, err := h.commissionSvc.RecalculateForOperation(c.Request.Context(), c.Param("agency_id"), c.Param("operation_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListCommissionRecordResponse(records))
}
