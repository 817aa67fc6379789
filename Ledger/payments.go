package Ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Mizan/Models"
)

// ApplyPayment posts a payment against an installment invoice. The local
// amount converts at the current rate, not the invoice's creation rate.
// paymentUUID may be supplied by the caller to make a retry of the same user
// action detectable; an empty string gets a fresh UUID. Two payments of the
// same amount on the same day are both legitimate, only an exact UUID replay
// is rejected.
func (s *Service) ApplyPayment(invoiceUUID string, amountUSD decimal.Decimal, date time.Time, paymentUUID string) (*Models.Payment, error) {
	if !amountUSD.IsPositive() {
		return nil, fieldErr("amount_usd", "must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}
	if paymentUUID == "" {
		paymentUUID = uuid.NewString()
	}

	var payment *Models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inv Models.Invoice
		if err := tx.Where("uuid = ?", invoiceUUID).First(&inv).Error; err != nil {
			return notFoundOr(err)
		}
		if inv.Kind != Models.InvoiceKindInstallment {
			return ErrNotInstallment
		}

		var replay int64
		if err := tx.Model(&Models.Payment{}).Where("uuid = ?", paymentUUID).Count(&replay).Error; err != nil {
			return err
		}
		if replay > 0 {
			return ErrDuplicatePayment
		}

		amount := RoundCurrency(amountUSD)
		if amount.GreaterThan(inv.RemainingUSD.Add(Tolerance)) {
			return ErrOverpayment
		}

		rate, err := currentRate(tx)
		if err != nil {
			return err
		}

		p := Models.Payment{
			UUID:        paymentUUID,
			InvoiceUUID: inv.UUID,
			AmountUSD:   amount,
			AmountLBP:   RoundCurrency(ToLBP(amount, rate)),
			Rate:        rate,
			Date:        date,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		oldRemaining := inv.RemainingUSD
		inv.PaidUSD = inv.PaidUSD.Add(amount)
		inv.RemainingUSD = SnapZero(maxZero(RoundCurrency(inv.TotalUSD.Sub(inv.PaidUSD))))
		inv.Status = installmentStatus(inv.PaidUSD, inv.RemainingUSD)
		if err := tx.Save(&inv).Error; err != nil {
			return err
		}

		var customer Models.Customer
		if err := tx.First(&customer, inv.CustomerID).Error; err != nil {
			return notFoundOr(err)
		}
		// Remaining moves by the invoice's actual delta (snapping included)
		// so the rollup keeps matching the sum over invoices exactly.
		if err := applyRollupTx(tx, &customer, 0, decimal.Zero, amount,
			inv.RemainingUSD.Sub(oldRemaining)); err != nil {
			return err
		}

		payment = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RemovePayment is the exact inverse of ApplyPayment for one specific
// payment, however many other payments the invoice has. The owning invoice
// is located by the payment's stored invoice UUID. Payments on a cash
// invoice (the history of one converted from installment) cannot be
// removed: paid must stay equal to total.
func (s *Service) RemovePayment(paymentUUID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var p Models.Payment
		if err := tx.Where("uuid = ?", paymentUUID).First(&p).Error; err != nil {
			return notFoundOr(err)
		}
		var inv Models.Invoice
		if err := tx.Where("uuid = ?", p.InvoiceUUID).First(&inv).Error; err != nil {
			return notFoundOr(err)
		}
		if inv.Kind != Models.InvoiceKindInstallment {
			return ErrNotInstallment
		}
		var customer Models.Customer
		if err := tx.First(&customer, inv.CustomerID).Error; err != nil {
			return notFoundOr(err)
		}

		oldRemaining := inv.RemainingUSD
		inv.PaidUSD = maxZero(inv.PaidUSD.Sub(p.AmountUSD))
		inv.RemainingUSD = SnapZero(maxZero(RoundCurrency(inv.TotalUSD.Sub(inv.PaidUSD))))
		inv.Status = installmentStatus(inv.PaidUSD, inv.RemainingUSD)
		if err := tx.Save(&inv).Error; err != nil {
			return err
		}

		if err := applyRollupTx(tx, &customer, 0, decimal.Zero, p.AmountUSD.Neg(),
			inv.RemainingUSD.Sub(oldRemaining)); err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

// ListPayments returns an invoice's payments in application order.
func (s *Service) ListPayments(invoiceUUID string) ([]Models.Payment, error) {
	var inv Models.Invoice
	if err := s.DB.Where("uuid = ?", invoiceUUID).First(&inv).Error; err != nil {
		return nil, notFoundOr(err)
	}
	var payments []Models.Payment
	if err := s.DB.Where("invoice_uuid = ?", invoiceUUID).Order("id").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
