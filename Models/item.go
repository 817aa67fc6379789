package Models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Item is a catalog entry. Quantity and CapitalValueLBP are maintained by the
// ledger; CapitalValueLBP is a presentation aggregate recomputed from quantity,
// buy price and the current exchange rate.
type Item struct {
	gorm.Model
	Name            string          `json:"name" gorm:"not null;uniqueIndex"`
	PurchaseUnit    string          `json:"purchase_unit" gorm:"size:50"`
	JSONSellUnits   datatypes.JSON  `json:"-" gorm:"column:sell_units"`
	SellUnits       []string        `json:"sell_units" gorm:"-"`
	BuyPrice        decimal.Decimal `json:"buy_price" gorm:"type:decimal(18,4);not null"`
	SellPrice       decimal.Decimal `json:"sell_price" gorm:"type:decimal(18,4);not null"`
	Currency        string          `json:"currency" gorm:"size:3;not null;default:'USD'"` // USD or LBP
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:decimal(18,4);not null"`
	CapitalValueLBP decimal.Decimal `json:"capital_value_lbp" gorm:"type:decimal(18,2);not null"`
}

func (i *Item) BeforeSave(tx *gorm.DB) error {
	if i.SellUnits == nil {
		i.SellUnits = []string{}
	}
	units, err := json.Marshal(i.SellUnits)
	if err != nil {
		return err
	}
	i.JSONSellUnits = units
	return nil
}

func (i *Item) AfterFind(tx *gorm.DB) error {
	if len(i.JSONSellUnits) == 0 {
		i.SellUnits = []string{}
		return nil
	}
	return json.Unmarshal(i.JSONSellUnits, &i.SellUnits)
}
