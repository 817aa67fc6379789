package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is an append-only record against an installment invoice. It is
// keyed to its invoice by UUID, never by display number. AmountLBP is fixed
// at the exchange rate in effect when the payment was applied.
type Payment struct {
	gorm.Model
	UUID        string          `json:"uuid" gorm:"type:varchar(36);not null;uniqueIndex"`
	InvoiceUUID string          `json:"invoice_uuid" gorm:"type:varchar(36);not null;index"`
	AmountUSD   decimal.Decimal `json:"amount_usd" gorm:"type:decimal(18,2);not null"`
	AmountLBP   decimal.Decimal `json:"amount_lbp" gorm:"type:decimal(18,2);not null"`
	Rate        decimal.Decimal `json:"rate" gorm:"type:decimal(18,4);not null"`
	Date        time.Time       `json:"date" gorm:"not null"`
}
