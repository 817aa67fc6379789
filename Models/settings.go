package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Settings is a single-row table holding process-wide configuration. The
// exchange rate lives here so every call site reads the same value; changing
// it goes through the ledger's SetExchangeRate, never a raw update.
type Settings struct {
	gorm.Model
	USDToLBP decimal.Decimal `json:"usd_to_lbp" gorm:"type:decimal(18,4);not null"`
}
