package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reservation holds quantities for a customer without touching item stock.
// Reservations are looked up by customer name; they do not require a full
// Customer record. Archived is set once every line is fully consumed.
type Reservation struct {
	gorm.Model
	CustomerName string            `json:"customer_name" gorm:"size:255;not null;index"`
	Seq          int               `json:"seq" gorm:"not null"`
	Date         time.Time         `json:"date" gorm:"not null"`
	ExchangeRate decimal.Decimal   `json:"exchange_rate" gorm:"type:decimal(18,4);not null"`
	Items        []ReservationItem `json:"items" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	Archived     bool              `json:"archived" gorm:"not null;default:false"`
}

// ReservationItem is one held line. AvailableQuantity starts equal to
// Quantity and only ever shrinks through withdrawals (or grows back through
// withdrawal reversals); it never exceeds Quantity and never goes negative.
type ReservationItem struct {
	gorm.Model
	ReservationID     uint            `json:"reservation_id" gorm:"not null;index"`
	ItemID            uint            `json:"item_id" gorm:"not null;index"`
	ItemName          string          `json:"item_name" gorm:"size:255;not null"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);not null"`
	AvailableQuantity decimal.Decimal `json:"available_quantity" gorm:"type:decimal(18,4);not null"`
	UnitPriceUSD      decimal.Decimal `json:"unit_price_usd" gorm:"type:decimal(18,4);not null"`
}

// Withdrawal converts part of a reservation hold into a real sale. When the
// sale was recorded as a standalone invoice, InvoiceUUID points at it and
// stock reversal is the invoice's business; otherwise the withdrawal itself
// carried the stock deduction.
type Withdrawal struct {
	gorm.Model
	UUID              string          `json:"uuid" gorm:"type:varchar(36);not null;uniqueIndex"`
	ReservationItemID uint            `json:"reservation_item_id" gorm:"not null;index"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);not null"`
	UnitPriceUSD      decimal.Decimal `json:"unit_price_usd" gorm:"type:decimal(18,4);not null"`
	TotalUSD          decimal.Decimal `json:"total_usd" gorm:"type:decimal(18,2);not null"`
	TotalLBP          decimal.Decimal `json:"total_lbp" gorm:"type:decimal(18,2);not null"`
	Rate              decimal.Decimal `json:"rate" gorm:"type:decimal(18,4);not null"`
	InvoiceUUID       string          `json:"invoice_uuid,omitempty" gorm:"type:varchar(36);index"`
	Reversed          bool            `json:"reversed" gorm:"not null;default:false"`
	Date              time.Time       `json:"date" gorm:"not null"`
}
