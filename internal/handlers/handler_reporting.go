package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// reportingHandler handles aggregate reports.
type reportingHandler struct {
	reportingSvc portssvc.ReportingSvcFacade
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingSvc portssvc.ReportingSvcFacade) {
	h := &reportingHandler{reportingSvc: reportingSvc}

	rg.GET("/reports/margins", h.marginsReport)
}

// marginsReport godoc
// @Summary Margins report
// @Description Aggregates CONFIRMED operations in the date range, grouped by
// seller or by month, with all amounts normalized to USD.
// @Tags reporting
// @Produce json
// @Param agency_id path string true "Agency ID"
// @Param dateFrom query string true "Range start (YYYY-MM-DD)"
// @Param dateTo query string true "Range end (YYYY-MM-DD)"
// @Param sellerId query string false "Filter to one seller"
// @Param viewType query string false "Grouping: seller or monthly" default(seller)
// @Success 200 {object} dto.MarginsReportResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agencies/{agency_id}/reports/margins [get]
func (h *reportingHandler) marginsReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var query dto.MarginsReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	from, err := time.Parse("2006-01-02", query.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid dateFrom, expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", query.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid dateTo, expected YYYY-MM-DD"})
		return
	}
	rows, err := h.reportingSvc.MarginsReport(c.Request.Context(), c.Param("agency_id"), userID,
		from, to, query.SellerID, portssvc.MarginsView(query.ViewType))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMarginsReportResponse(rows))
}
