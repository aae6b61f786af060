package domain

import "github.com/shopspring/decimal"

// MarginRow is one aggregated line of the margins report. Group is a seller
// ID or a YYYY-MM month depending on the requested view.
type MarginRow struct {
	Group          string          `json:"group"`
	OperationCount int             `json:"operationCount"`
	SaleUSD        decimal.Decimal `json:"saleUSD"`
	CostUSD        decimal.Decimal `json:"costUSD"`
	MarginUSD      decimal.Decimal `json:"marginUSD"`
}
