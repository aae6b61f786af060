package dto

import (
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// MarginsReportQuery defines the filters of the margins report.
type MarginsReportQuery struct {
	DateFrom string `form:"dateFrom" binding:"required"`
	DateTo   string `form:"dateTo" binding:"required"`
	SellerID string `form:"sellerId"`
	ViewType string `form:"viewType" binding:"omitempty,oneof=seller monthly"`
}

// MarginRowResponse is one aggregated line of the margins report.
type MarginRowResponse struct {
	Group          string          `json:"group"`
	OperationCount int             `json:"operationCount"`
	SaleUSD        decimal.Decimal `json:"saleUSD"`
	CostUSD        decimal.Decimal `json:"costUSD"`
	MarginUSD      decimal.Decimal `json:"marginUSD"`
}

// MarginsReportResponse is the full margins report with totals.
type MarginsReportResponse struct {
	Rows           []MarginRowResponse `json:"rows"`
	TotalSaleUSD   decimal.Decimal     `json:"totalSaleUSD"`
	TotalCostUSD   decimal.Decimal     `json:"totalCostUSD"`
	TotalMarginUSD decimal.Decimal     `json:"totalMarginUSD"`
}

// ToMarginsReportResponse converts report rows to the response DTO,
// accumulating totals.
func ToMarginsReportResponse(rows []domain.MarginRow) MarginsReportResponse {
	res := MarginsReportResponse{
		Rows:           make([]MarginRowResponse, len(rows)),
		TotalSaleUSD:   decimal.Zero,
		TotalCostUSD:   decimal.Zero,
		TotalMarginUSD: decimal.Zero,
	}
	for i, r := range rows {
		res.Rows[i] = MarginRowResponse{
			Group:          r.Group,
			OperationCount: r.OperationCount,
			SaleUSD:        r.SaleUSD,
			CostUSD:        r.CostUSD,
			MarginUSD:      r.MarginUSD,
		}
		res.TotalSaleUSD = res.TotalSaleUSD.Add(r.SaleUSD)
		res.TotalCostUSD = res.TotalCostUSD.Add(r.CostUSD)
		res.TotalMarginUSD = res.TotalMarginUSD.Add(r.MarginUSD)
	}
	return res
}
