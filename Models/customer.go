package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer carries rollup fields that must always equal the sums over the
// customer's invoices and payments. The ledger maintains them with exact
// deltas on every mutation; they are never recomputed from scratch on read.
type Customer struct {
	gorm.Model
	Name    string `json:"name" gorm:"size:255;not null;uniqueIndex:idx_customers_name_phone"`
	Phone   string `json:"phone" gorm:"size:50;not null;uniqueIndex:idx_customers_name_phone"`
	Address string `json:"address" gorm:"size:500"`

	Invoices []Invoice `json:"invoices,omitempty" gorm:"foreignKey:CustomerID"`

	TotalInvoices  int             `json:"total_invoices" gorm:"not null;default:0"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(18,2);not null"`
	TotalPaid      decimal.Decimal `json:"total_paid" gorm:"type:decimal(18,2);not null"`
	TotalRemaining decimal.Decimal `json:"total_remaining" gorm:"type:decimal(18,2);not null"`
}
