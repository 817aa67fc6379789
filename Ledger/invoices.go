package Ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Mizan/Models"
)

// InvoiceLineInput is one requested invoice line. The USD unit price is
// authoritative; the LBP price is derived at the invoice's rate.
type InvoiceLineInput struct {
	ItemID       uint
	SellUnit     string
	Quantity     decimal.Decimal
	UnitPriceUSD decimal.Decimal
}

type CreateInvoiceInput struct {
	CustomerID     uint
	Kind           string
	Date           time.Time
	Address        string
	Lines          []InvoiceLineInput
	PaidAtCreation decimal.Decimal
	// AllowNegativeStock is the explicit oversell confirmation; without it a
	// line that would drive stock negative fails with ErrInsufficientStock.
	AllowNegativeStock bool
}

type EditInvoiceInput struct {
	Date               time.Time
	Address            string
	Lines              []InvoiceLineInput
	AllowNegativeStock bool
}

func validateLines(lines []InvoiceLineInput) error {
	if len(lines) == 0 {
		return fieldErr("lines", "at least one line is required")
	}
	for _, line := range lines {
		if line.ItemID == 0 {
			return fieldErr("item_id", "is required")
		}
		if !line.Quantity.IsPositive() {
			return fieldErr("quantity", "must be positive")
		}
		if line.UnitPriceUSD.IsNegative() {
			return fieldErr("unit_price_usd", "must not be negative")
		}
	}
	return nil
}

// CreateInvoice books a sale: deducts stock per line, fixes totals in both
// currencies at the current rate, and applies the matching deltas to the
// customer rollups. An installment invoice paid partially at creation gets a
// synthesized Payment record so the payment history always explains the full
// paid amount.
func (s *Service) CreateInvoice(in CreateInvoiceInput) (*Models.Invoice, error) {
	if in.Kind != Models.InvoiceKindCash && in.Kind != Models.InvoiceKindInstallment {
		return nil, fieldErr("kind", "must be cash or installment")
	}
	if in.PaidAtCreation.IsNegative() {
		return nil, fieldErr("paid_at_creation", "must not be negative")
	}
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var invoice *Models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var customer Models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			return notFoundOr(err)
		}

		rate, err := currentRate(tx)
		if err != nil {
			return err
		}

		items, totalUSD, err := buildLines(tx, in.Lines, rate, in.AllowNegativeStock)
		if err != nil {
			return err
		}
		total := RoundCurrency(totalUSD)

		inv := Models.Invoice{
			UUID:         uuid.NewString(),
			CustomerID:   customer.ID,
			Kind:         in.Kind,
			TotalUSD:     total,
			TotalLBP:     RoundCurrency(ToLBP(totalUSD, rate)),
			ExchangeRate: rate,
			Date:         in.Date,
			Address:      in.Address,
		}

		if in.Kind == Models.InvoiceKindCash {
			inv.PaidUSD = total
			inv.RemainingUSD = decimal.Zero
			inv.Status = Models.InvoiceStatusSettled
		} else {
			if in.PaidAtCreation.GreaterThan(total.Add(Tolerance)) {
				return ErrOverpaymentAtCreation
			}
			inv.PaidUSD = RoundCurrency(in.PaidAtCreation)
			inv.RemainingUSD = SnapZero(total.Sub(inv.PaidUSD))
			inv.Status = installmentStatus(inv.PaidUSD, inv.RemainingUSD)
		}

		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		inv.Items = items

		if in.Kind == Models.InvoiceKindInstallment && inv.PaidUSD.IsPositive() {
			payment := Models.Payment{
				UUID:        uuid.NewString(),
				InvoiceUUID: inv.UUID,
				AmountUSD:   inv.PaidUSD,
				AmountLBP:   RoundCurrency(ToLBP(inv.PaidUSD, rate)),
				Rate:        rate,
				Date:        in.Date,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		if err := applyRollupTx(tx, &customer, 1, inv.TotalUSD, inv.PaidUSD, inv.RemainingUSD); err != nil {
			return err
		}

		invoice = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// buildLines deducts stock for each requested line and returns the persisted
// line records plus the unrounded USD total.
func buildLines(tx *gorm.DB, lines []InvoiceLineInput, rate decimal.Decimal, allowNegative bool) ([]Models.InvoiceItem, decimal.Decimal, error) {
	items := make([]Models.InvoiceItem, 0, len(lines))
	totalUSD := decimal.Zero
	for _, line := range lines {
		item, err := adjustQuantityTx(tx, line.ItemID, line.Quantity.Neg(), allowNegative)
		if err != nil {
			return nil, decimal.Zero, err
		}
		lineUSD := line.UnitPriceUSD.Mul(line.Quantity)
		items = append(items, Models.InvoiceItem{
			ItemID:       item.ID,
			ItemName:     item.Name,
			SellUnit:     line.SellUnit,
			Quantity:     line.Quantity,
			UnitPriceUSD: line.UnitPriceUSD,
			UnitPriceLBP: RoundCurrency(ToLBP(line.UnitPriceUSD, rate)),
			TotalUSD:     RoundCurrency(lineUSD),
			TotalLBP:     RoundCurrency(ToLBP(lineUSD, rate)),
		})
		totalUSD = totalUSD.Add(lineUSD)
	}
	return items, totalUSD, nil
}

func installmentStatus(paid, remaining decimal.Decimal) string {
	switch {
	case remaining.IsZero():
		return Models.InvoiceStatusSettled
	case paid.IsPositive():
		return Models.InvoiceStatusPartiallyPaid
	default:
		return Models.InvoiceStatusOpen
	}
}

// EditInvoice replaces an invoice's lines and header. The old lines' stock
// effect is reversed before the new lines are deducted, totals are
// recomputed at the invoice's creation rate, and only the resulting deltas
// reach the customer rollups, so repeated edits cannot drift them.
func (s *Service) EditInvoice(invoiceUUID string, in EditInvoiceInput) (*Models.Invoice, error) {
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}

	var invoice *Models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inv Models.Invoice
		if err := tx.Preload("Items").Where("uuid = ?", invoiceUUID).First(&inv).Error; err != nil {
			return notFoundOr(err)
		}
		var customer Models.Customer
		if err := tx.First(&customer, inv.CustomerID).Error; err != nil {
			return notFoundOr(err)
		}

		oldTotal, oldPaid, oldRemaining := inv.TotalUSD, inv.PaidUSD, inv.RemainingUSD

		// Restock the old lines first; reversals never fail the stock check
		// and reach items the catalog has since soft-removed.
		for _, line := range inv.Items {
			if _, err := restockQuantityTx(tx, line.ItemID, line.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&Models.InvoiceItem{}).Error; err != nil {
			return err
		}

		items, totalUSD, err := buildLines(tx, in.Lines, inv.ExchangeRate, in.AllowNegativeStock)
		if err != nil {
			return err
		}
		total := RoundCurrency(totalUSD)

		inv.TotalUSD = total
		inv.TotalLBP = RoundCurrency(ToLBP(totalUSD, inv.ExchangeRate))
		if !in.Date.IsZero() {
			inv.Date = in.Date
		}
		inv.Address = in.Address

		if inv.Kind == Models.InvoiceKindCash {
			inv.PaidUSD = total
			inv.RemainingUSD = decimal.Zero
			inv.Status = Models.InvoiceStatusSettled
		} else {
			// Paid stays whatever the payment history says.
			if total.LessThan(inv.PaidUSD.Sub(Tolerance)) {
				return ErrOverpayment
			}
			inv.RemainingUSD = SnapZero(total.Sub(inv.PaidUSD))
			inv.Status = installmentStatus(inv.PaidUSD, inv.RemainingUSD)
		}

		if err := tx.Save(&inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		inv.Items = items

		err = applyRollupTx(tx, &customer, 0,
			inv.TotalUSD.Sub(oldTotal),
			inv.PaidUSD.Sub(oldPaid),
			inv.RemainingUSD.Sub(oldRemaining))
		if err != nil {
			return err
		}

		invoice = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// DeleteInvoice restocks every line, subtracts the invoice's contribution
// from the customer rollups, and removes every payment that references it so
// no orphaned payment survives.
func (s *Service) DeleteInvoice(invoiceUUID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var inv Models.Invoice
		if err := tx.Preload("Items").Where("uuid = ?", invoiceUUID).First(&inv).Error; err != nil {
			return notFoundOr(err)
		}
		return deleteInvoiceTx(tx, &inv)
	})
}

func deleteInvoiceTx(tx *gorm.DB, inv *Models.Invoice) error {
	var customer Models.Customer
	if err := tx.First(&customer, inv.CustomerID).Error; err != nil {
		return notFoundOr(err)
	}

	for _, line := range inv.Items {
		if _, err := restockQuantityTx(tx, line.ItemID, line.Quantity); err != nil {
			return err
		}
	}
	if err := tx.Where("invoice_id = ?", inv.ID).Delete(&Models.InvoiceItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("invoice_uuid = ?", inv.UUID).Delete(&Models.Payment{}).Error; err != nil {
		return err
	}
	if err := applyRollupTx(tx, &customer, -1,
		inv.TotalUSD.Neg(), inv.PaidUSD.Neg(), inv.RemainingUSD.Neg()); err != nil {
		return err
	}
	return tx.Delete(inv).Error
}

// ConvertToCash settles an installment invoice's remainder as a synthesized
// payment at the current rate and flips the kind to cash.
func (s *Service) ConvertToCash(invoiceUUID string) (*Models.Invoice, error) {
	var invoice *Models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inv Models.Invoice
		if err := tx.Where("uuid = ?", invoiceUUID).First(&inv).Error; err != nil {
			return notFoundOr(err)
		}
		if inv.Kind != Models.InvoiceKindInstallment {
			return ErrNotInstallment
		}
		var customer Models.Customer
		if err := tx.First(&customer, inv.CustomerID).Error; err != nil {
			return notFoundOr(err)
		}

		remaining := inv.RemainingUSD
		if remaining.IsPositive() {
			rate, err := currentRate(tx)
			if err != nil {
				return err
			}
			payment := Models.Payment{
				UUID:        uuid.NewString(),
				InvoiceUUID: inv.UUID,
				AmountUSD:   remaining,
				AmountLBP:   RoundCurrency(ToLBP(remaining, rate)),
				Rate:        rate,
				Date:        time.Now(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		inv.Kind = Models.InvoiceKindCash
		inv.PaidUSD = inv.TotalUSD
		inv.RemainingUSD = decimal.Zero
		inv.Status = Models.InvoiceStatusSettled
		if err := tx.Save(&inv).Error; err != nil {
			return err
		}

		if err := applyRollupTx(tx, &customer, 0, decimal.Zero, remaining, remaining.Neg()); err != nil {
			return err
		}
		invoice = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) GetInvoice(invoiceUUID string) (*Models.Invoice, error) {
	var inv Models.Invoice
	err := s.DB.Preload("Items").Preload("Payments").Where("uuid = ?", invoiceUUID).First(&inv).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &inv, nil
}

// ListInvoices returns a customer's invoices in creation order, the order
// display numbers are derived from.
func (s *Service) ListInvoices(customerID uint) ([]Models.Invoice, error) {
	var invoices []Models.Invoice
	err := s.DB.Preload("Items").Where("customer_id = ?", customerID).Order("id").Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// ResolveDisplayNumber maps an invoice UUID to its 1-based position in the
// customer's current invoice list. The result shifts when a sibling is
// deleted, so callers must not cache it across deletes.
func (s *Service) ResolveDisplayNumber(customerID uint, invoiceUUID string) (int, error) {
	var uuids []string
	err := s.DB.Model(&Models.Invoice{}).
		Where("customer_id = ?", customerID).
		Order("id").
		Pluck("uuid", &uuids).Error
	if err != nil {
		return 0, err
	}
	for i, u := range uuids {
		if u == invoiceUUID {
			return i + 1, nil
		}
	}
	return 0, ErrNotFound
}

// SalesStats is derived from invoice rows on demand rather than kept as a
// separately mutated counter.
type SalesStats struct {
	MonthInvoices int             `json:"month_invoices"`
	MonthTotalUSD decimal.Decimal `json:"month_total_usd"`
	TotalInvoices int             `json:"total_invoices"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
}

func (s *Service) GetSalesStats(now time.Time) (*SalesStats, error) {
	var invoices []Models.Invoice
	if err := s.DB.Find(&invoices).Error; err != nil {
		return nil, err
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	stats := SalesStats{MonthTotalUSD: decimal.Zero, TotalUSD: decimal.Zero}
	for i := range invoices {
		stats.TotalInvoices++
		stats.TotalUSD = stats.TotalUSD.Add(invoices[i].TotalUSD)
		if !invoices[i].Date.Before(monthStart) {
			stats.MonthInvoices++
			stats.MonthTotalUSD = stats.MonthTotalUSD.Add(invoices[i].TotalUSD)
		}
	}
	return &stats, nil
}
