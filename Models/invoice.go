package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice kinds.
const (
	InvoiceKindCash        = "cash"
	InvoiceKindInstallment = "installment"
)

// Invoice statuses. Cash invoices are settled in the same transaction that
// creates them; installment invoices move open -> partially_paid -> settled
// and only an explicit edit can move them back.
const (
	InvoiceStatusOpen          = "open"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusSettled       = "settled"
)

// Invoice is identified everywhere by UUID. The customer-facing "display
// number" is derived from the invoice's position in the customer's list at
// read time and is never stored.
type Invoice struct {
	gorm.Model
	UUID       string `json:"uuid" gorm:"type:varchar(36);not null;uniqueIndex"`
	CustomerID uint   `json:"customer_id" gorm:"not null;index"`
	Kind       string `json:"kind" gorm:"size:20;not null"`
	Status     string `json:"status" gorm:"size:20;not null"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	TotalUSD     decimal.Decimal `json:"total_usd" gorm:"type:decimal(18,2);not null"`
	TotalLBP     decimal.Decimal `json:"total_lbp" gorm:"type:decimal(18,2);not null"`
	PaidUSD      decimal.Decimal `json:"paid_usd" gorm:"type:decimal(18,2);not null"`
	RemainingUSD decimal.Decimal `json:"remaining_usd" gorm:"type:decimal(18,2);not null"`

	// Rate captured when the invoice was created. Later rate changes update
	// TotalLBP for open installment invoices but never this field or any USD
	// figure.
	ExchangeRate decimal.Decimal `json:"exchange_rate" gorm:"type:decimal(18,4);not null"`

	Date    time.Time `json:"date" gorm:"not null"`
	Address string    `json:"address" gorm:"size:500"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:InvoiceUUID;references:UUID"`
}

// InvoiceItem is one invoice line. Prices are fixed at creation time in both
// currencies.
type InvoiceItem struct {
	gorm.Model
	InvoiceID    uint            `json:"invoice_id" gorm:"not null;index"`
	ItemID       uint            `json:"item_id" gorm:"not null;index"`
	ItemName     string          `json:"item_name" gorm:"size:255;not null"`
	SellUnit     string          `json:"sell_unit" gorm:"size:50"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);not null"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd" gorm:"type:decimal(18,4);not null"`
	UnitPriceLBP decimal.Decimal `json:"unit_price_lbp" gorm:"type:decimal(18,2);not null"`
	TotalUSD     decimal.Decimal `json:"total_usd" gorm:"type:decimal(18,2);not null"`
	TotalLBP     decimal.Decimal `json:"total_lbp" gorm:"type:decimal(18,2);not null"`
}
