package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// accountHandler handles financial account requests within an agency.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := &accountHandler{accountService: accountService, ledgerService: ledgerService}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/balances", h.listBalances)
		accounts.POST("/transfer", h.transfer)
		accounts.GET("/:account_id", h.getAccount)
		accounts.PUT("/:account_id", h.updateAccount)
		accounts.DELETE("/:account_id", h.deleteAccount)
		accounts.GET("/:account_id/balance", h.getBalance)
		accounts.GET("/:account_id/movements", h.listMovements)
	}
}

// createAccount godoc
// @Summary Create financial account
// @Tags accounts
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	account, err := h.accountService.CreateAccount(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List financial accounts
// @Tags accounts
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param includeInactive query bool false "Include inactive accounts"
// @Success 200 {array} dto.AccountResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	includeInactive := c.Query("includeInactive") == "true"
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), c.Param("agency_id"), userID, includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// getAccount godoc
// @Summary Get financial account
// @Tags accounts
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("agency_id"), c.Param("account_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update financial account
// @Tags accounts
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param account_id path string true "Account ID"
// @Param account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} ErrorResponse "Concurrent modification"
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("agency_id"), c.Param("account_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete financial account
// @Description Deletes an account. A non-zero balance requires ?transferTo=.
// Deleting the last account requires a confirmation token: the first call
// returns requiresConfirmation plus the token, the second call with
// ?confirmationToken= executes the hard delete.
// @Tags accounts
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param account_id path string true "Account ID"
// @Param transferTo query string false "Account to transfer the balance to"
// @Param confirmationToken query string false "Token confirming the last-account delete"
// @Success 200 {object} dto.DeleteAccountResult
// @Failure 400 {object} dto.DeleteAccountResult "Confirmation required"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts/{account_id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	result, err := h.accountService.DeleteAccount(c.Request.Context(),
		c.Param("agency_id"), c.Param("account_id"), userID,
		c.Query("transferTo"), c.Query("confirmationToken"))
	if err != nil {
		respondError(c, err)
		return
	}
	if result.RequiresConfirmation {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getBalance godoc
// @Summary Get account balance
// @Description Balance is derived as initial balance plus the signed sum of movements.
// @Tags accounts
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param account_id path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts/{account_id}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	agencyID := c.Param("agency_id")
	accountID := c.Param("account_id")
	account, err := h.accountService.GetAccountByID(c.Request.Context(), agencyID, accountID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	balance, err := h.accountService.CalculateAccountBalance(c.Request.Context(), agencyID, accountID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		AccountID: accountID,
		Currency:  account.Currency,
		Balance:   balance,
	})
}

// listBalances godoc
// @Summary List all account balances
// @Tags accounts
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Success 200 {array} dto.AccountBalanceResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts/balances [get]
func (h *accountHandler) listBalances(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	agencyID := c.Param("agency_id")
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), agencyID, userID, true)
	if err != nil {
		respondError(c, err)
		return
	}
	balances, err := h.accountService.CalculateAccountBalances(c.Request.Context(), agencyID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.AccountBalanceResponse, len(accounts))
	for i, acc := range accounts {
		resp[i] = dto.AccountBalanceResponse{
			AccountID: acc.AccountID,
			Currency:  acc.Currency,
			Balance:   balances[acc.AccountID],
		}
	}
	c.JSON(http.StatusOK, resp)
}

// transfer godoc
// @Summary Transfer between accounts
// @Description Posts an EXPENSE leg on the source and an INCOME leg on the
// destination. Cross-currency transfers convert through the rate resolver
// and add an FX leg when the two sides diverge past tolerance.
// @Tags accounts
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Concurrent modification"
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts/transfer [post]
func (h *accountHandler) transfer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	resp, err := h.accountService.Transfer(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// listMovements godoc
// @Summary List account movements
// @Tags ledger
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param account_id path string true "Account ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {array} dto.MovementResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/accounts/{account_id}/movements [get]
func (h *accountHandler) listMovements(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, offset := paginationParams(c)
	movements, err := h.ledgerService.ListMovementsByAccount(c.Request.Context(),
		c.Param("agency_id"), c.Param("account_id"), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListMovementResponse(movements))
}
