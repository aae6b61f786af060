package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationStatus is the lifecycle state of a sale operation.
type OperationStatus string

const (
	OperationDraft     OperationStatus = "DRAFT"
	OperationConfirmed OperationStatus = "CONFIRMED"
	OperationCancelled OperationStatus = "CANCELLED"
)

// Operation is the central business entity: one sale with its cost and margin
// in a given currency. Both the ledger and the commission calculator read
// from it.
type Operation struct {
	OperationID       string          `json:"operationID"` // Primary Key (UUID)
	AgencyID          string          `json:"agencyID"`
	LeadID            *string         `json:"leadID,omitempty"`
	Status            OperationStatus `json:"status"`
	Currency          Currency        `json:"currency"`
	SaleAmount        decimal.Decimal `json:"saleAmount"`
	CostAmount        decimal.Decimal `json:"costAmount"`
	MarginAmount      decimal.Decimal `json:"marginAmount"`
	Region            string          `json:"region"` // destination region, scopes commission rules
	SellerID          string          `json:"sellerID"`
	SecondarySellerID *string         `json:"secondarySellerID,omitempty"`
	OperationDate     time.Time       `json:"operationDate"`
	AuditFields
}

// PaymentDirection distinguishes money coming in from money going out.
type PaymentDirection string

const (
	PaymentIncome  PaymentDirection = "INCOME"
	PaymentExpense PaymentDirection = "EXPENSE"
)

// PaymentCounterparty identifies who the payment is settled with.
type PaymentCounterparty string

const (
	CounterpartyCustomer PaymentCounterparty = "CUSTOMER"
	CounterpartyOperator PaymentCounterparty = "OPERATOR"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Payment is one expected or settled money flow, usually attached to an
// operation. Recurring operator payments generate rows with no operation.
// Commission payout requires every CUSTOMER-direction INCOME payment of the
// operation to be PAID.
type Payment struct {
	PaymentID    string              `json:"paymentID"` // Primary Key (UUID)
	AgencyID     string              `json:"agencyID"`
	OperationID  *string             `json:"operationID,omitempty"`
	Direction    PaymentDirection    `json:"direction"`
	Counterparty PaymentCounterparty `json:"counterparty"`
	Status       PaymentStatus       `json:"status"`
	Currency     Currency            `json:"currency"`
	Amount       decimal.Decimal     `json:"amount"`
	DueDate      time.Time           `json:"dueDate"`
	PaidAt       *time.Time          `json:"paidAt,omitempty"`
	AccountID    *string             `json:"accountID,omitempty"` // account the money settled into/out of
	AuditFields
}
