package Ledger

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Mizan/Models"
)

// AdjustQuantity applies a signed quantity delta to an item. Negative deltas
// (sales) fail with ErrInsufficientStock when they would drive the quantity
// below zero, unless the caller explicitly opted in with allowNegative, in
// which case the quantity clamps at zero. Positive deltas (restock, reversal)
// never fail the check. Capital value is recomputed in the same transaction.
func (s *Service) AdjustQuantity(itemID uint, delta decimal.Decimal, allowNegative bool) (*Models.Item, error) {
	var item *Models.Item
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		item, txErr = adjustQuantityTx(tx, itemID, delta, allowNegative)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func adjustQuantityTx(tx *gorm.DB, itemID uint, delta decimal.Decimal, allowNegative bool) (*Models.Item, error) {
	var item Models.Item
	if err := tx.First(&item, itemID).Error; err != nil {
		return nil, notFoundOr(err)
	}

	newQty := item.Quantity.Add(delta)
	if newQty.IsNegative() {
		if !allowNegative {
			return nil, ErrInsufficientStock
		}
		// Caller confirmed the oversell; the ledger floor is still zero.
		newQty = decimal.Zero
	}

	rate, err := currentRate(tx)
	if err != nil {
		return nil, err
	}

	item.Quantity = newQty
	item.CapitalValueLBP = capitalValueLBP(&item, rate)
	if err := tx.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// restockQuantityTx returns quantity to an item on a reversal path. The
// lookup is unscoped: a soft-removed item must still take its stock back,
// or historic invoices referencing it could never be deleted or edited.
func restockQuantityTx(tx *gorm.DB, itemID uint, qty decimal.Decimal) (*Models.Item, error) {
	var item Models.Item
	if err := tx.Unscoped().First(&item, itemID).Error; err != nil {
		return nil, notFoundOr(err)
	}

	rate, err := currentRate(tx)
	if err != nil {
		return nil, err
	}

	item.Quantity = item.Quantity.Add(qty)
	item.CapitalValueLBP = capitalValueLBP(&item, rate)
	if err := tx.Unscoped().Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// capitalValueLBP = quantity x buy price, in local currency at the given
// rate. A presentation aggregate; quantity and price stay the sources of
// truth.
func capitalValueLBP(item *Models.Item, rate decimal.Decimal) decimal.Decimal {
	value := item.BuyPrice.Mul(item.Quantity)
	if item.Currency == "USD" {
		value = ToLBP(value, rate)
	}
	return RoundCurrency(value)
}

// RecomputeCapitalValue refreshes one item's capital value at the current
// rate.
func (s *Service) RecomputeCapitalValue(itemID uint) (*Models.Item, error) {
	var item Models.Item
	if err := s.DB.First(&item, itemID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	rate, _, err := s.GetExchangeRate()
	if err != nil {
		return nil, err
	}
	item.CapitalValueLBP = capitalValueLBP(&item, rate)
	if err := s.DB.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SetExchangeRate changes the global rate and runs the recompute pass: every
// item's capital value and every unsettled installment invoice's LBP total
// are refreshed at the new rate. Recorded USD totals and payment USD amounts
// are never touched; only the local-currency presentation of fixed USD
// figures moves.
func (s *Service) SetExchangeRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fieldErr("rate", "must be positive")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var settings Models.Settings
		if err := tx.First(&settings).Error; err != nil {
			return err
		}
		settings.USDToLBP = rate
		if err := tx.Save(&settings).Error; err != nil {
			return err
		}

		var items []Models.Item
		if err := tx.Find(&items).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].CapitalValueLBP = capitalValueLBP(&items[i], rate)
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}

		var invoices []Models.Invoice
		if err := tx.Where("kind = ? AND status <> ?", Models.InvoiceKindInstallment, Models.InvoiceStatusSettled).
			Find(&invoices).Error; err != nil {
			return err
		}
		for i := range invoices {
			invoices[i].TotalLBP = RoundCurrency(ToLBP(invoices[i].TotalUSD, rate))
			if err := tx.Save(&invoices[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListItems returns the catalog, soft-deleted entries excluded.
func (s *Service) ListItems() ([]Models.Item, error) {
	var items []Models.Item
	if err := s.DB.Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) GetItem(itemID uint) (*Models.Item, error) {
	var item Models.Item
	if err := s.DB.First(&item, itemID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &item, nil
}

// CreateItem adds a catalog entry with its capital value computed up front.
func (s *Service) CreateItem(item *Models.Item) error {
	if item.Name == "" {
		return fieldErr("name", "is required")
	}
	if item.Currency != "USD" && item.Currency != "LBP" {
		return fieldErr("currency", "must be USD or LBP")
	}
	if item.Quantity.IsNegative() {
		return fieldErr("quantity", "must not be negative")
	}
	if item.BuyPrice.IsNegative() || item.SellPrice.IsNegative() {
		return fieldErr("price", "must not be negative")
	}

	rate, _, err := s.GetExchangeRate()
	if err != nil {
		return err
	}
	item.CapitalValueLBP = capitalValueLBP(item, rate)
	return s.DB.Create(item).Error
}

// UpdateItem saves catalog edits and refreshes the capital value.
func (s *Service) UpdateItem(item *Models.Item) error {
	if item.Quantity.IsNegative() {
		return fieldErr("quantity", "must not be negative")
	}
	rate, _, err := s.GetExchangeRate()
	if err != nil {
		return err
	}
	item.CapitalValueLBP = capitalValueLBP(item, rate)
	return s.DB.Save(item).Error
}

// DeleteItem soft-removes a catalog entry. Historic invoice lines keep their
// copied name and prices, so references survive the removal.
func (s *Service) DeleteItem(itemID uint) error {
	var item Models.Item
	if err := s.DB.First(&item, itemID).Error; err != nil {
		return notFoundOr(err)
	}
	return s.DB.Delete(&item).Error
}

// TotalCapital sums every item's capital value in LBP.
func (s *Service) TotalCapital() (decimal.Decimal, error) {
	var items []Models.Item
	if err := s.DB.Find(&items).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].CapitalValueLBP)
	}
	return total, nil
}
