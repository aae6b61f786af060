package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// exchangeRateHandler handles daily ARS/USD rates and rate resolution.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
	authorizer  portssvc.AgencyAuthorizerSvc
}

func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade, authorizer portssvc.AgencyAuthorizerSvc) {
	h := &exchangeRateHandler{rateService: rateService, authorizer: authorizer}

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.createRate)
		rates.GET("", h.listRates)
		rates.GET("/resolve", h.resolveRate)
	}
}

// createRate godoc
// @Summary Record exchange rate
// @Description Records the ARS/USD rate for a date. One rate per day.
// @Tags exchange-rates
// @Accept json
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param rate body dto.CreateExchangeRateRequest true "Rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Rate already recorded for that date"
// @Security BearerAuth
// @Router /agencies/{agency_id}/exchange-rates [post]
func (h *exchangeRateHandler) createRate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	rate, err := h.rateService.CreateExchangeRate(c.Request.Context(), c.Param("agency_id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// listRates godoc
// @Summary List exchange rates
// @Tags exchange-rates
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} dto.ExchangeRateResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/exchange-rates [get]
func (h *exchangeRateHandler) listRates(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid from date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid to date, expected YYYY-MM-DD"})
		return
	}
	rates, err := h.rateService.ListRates(c.Request.Context(), c.Param("agency_id"), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}

// resolveRate godoc
// @Summary Resolve rate for a date
// @Description Resolves through exact match, nearest prior, latest known and
// configured fallback. The response carries the source of the rate.
// @Tags exchange-rates
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ResolvedRateResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/exchange-rates/resolve [get]
func (h *exchangeRateHandler) resolveRate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	agencyID := c.Param("agency_id")
	if _, err := h.authorizer.AuthorizeUserAction(c.Request.Context(), agencyID, userID,
		domain.RoleAdmin, domain.RoleMember, domain.RoleReadOnly); err != nil {
		respondError(c, err)
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid date, expected YYYY-MM-DD"})
		return
	}
	resolved, err := h.rateService.ResolveRate(c.Request.Context(), agencyID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToResolvedRateResponse(resolved))
}
