package Ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Mizan/Models"
)

type ReservationLineInput struct {
	ItemID       uint
	Quantity     decimal.Decimal
	UnitPriceUSD decimal.Decimal
}

// CreateReservation stores a virtual hold for a customer by name. Each line
// starts with available_quantity equal to the reserved quantity. Item stock
// is not touched; the hold becomes real only through withdrawals.
func (s *Service) CreateReservation(customerName string, date time.Time, lines []ReservationLineInput) (*Models.Reservation, error) {
	if customerName == "" {
		return nil, fieldErr("customer_name", "is required")
	}
	if len(lines) == 0 {
		return nil, fieldErr("lines", "at least one line is required")
	}
	for _, line := range lines {
		if line.ItemID == 0 {
			return nil, fieldErr("item_id", "is required")
		}
		if !line.Quantity.IsPositive() {
			return nil, fieldErr("quantity", "must be positive")
		}
		if line.UnitPriceUSD.IsNegative() {
			return nil, fieldErr("unit_price_usd", "must not be negative")
		}
	}
	if date.IsZero() {
		date = time.Now()
	}

	var reservation *Models.Reservation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		rate, err := currentRate(tx)
		if err != nil {
			return err
		}

		var seq int64
		if err := tx.Model(&Models.Reservation{}).Where("customer_name = ?", customerName).Count(&seq).Error; err != nil {
			return err
		}

		res := Models.Reservation{
			CustomerName: customerName,
			Seq:          int(seq) + 1,
			Date:         date,
			ExchangeRate: rate,
		}
		if err := tx.Create(&res).Error; err != nil {
			return err
		}

		for _, line := range lines {
			var item Models.Item
			if err := tx.First(&item, line.ItemID).Error; err != nil {
				return notFoundOr(err)
			}
			ri := Models.ReservationItem{
				ReservationID:     res.ID,
				ItemID:            item.ID,
				ItemName:          item.Name,
				Quantity:          line.Quantity,
				AvailableQuantity: line.Quantity,
				UnitPriceUSD:      line.UnitPriceUSD,
			}
			if err := tx.Create(&ri).Error; err != nil {
				return err
			}
			res.Items = append(res.Items, ri)
		}

		reservation = &res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

type WithdrawInput struct {
	ReservationItemID uint
	Quantity          decimal.Decimal
	// SellUnit labels the invoice line when the withdrawal produces one;
	// empty falls back to the item's first listed unit.
	SellUnit string
	Date     time.Time
	// CustomerID, when set, records the sale as a standalone installment
	// invoice for that customer; the invoice carries the stock deduction and
	// must be deleted through the invoice ledger to restock. When zero, the
	// withdrawal itself deducts stock.
	CustomerID         uint
	AllowNegativeStock bool
}

// Withdraw consumes available quantity from a reservation line and turns it
// into a real sale: stock is decremented and totals are fixed at the current
// rate from the line's stored unit price.
func (s *Service) Withdraw(in WithdrawInput) (*Models.Withdrawal, error) {
	if !in.Quantity.IsPositive() {
		return nil, fieldErr("quantity", "must be positive")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var withdrawal *Models.Withdrawal
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var line Models.ReservationItem
		if err := tx.First(&line, in.ReservationItemID).Error; err != nil {
			return notFoundOr(err)
		}
		if in.Quantity.GreaterThan(line.AvailableQuantity) {
			return ErrExceedsAvailable
		}

		rate, err := currentRate(tx)
		if err != nil {
			return err
		}

		line.AvailableQuantity = line.AvailableQuantity.Sub(in.Quantity)
		if err := tx.Save(&line).Error; err != nil {
			return err
		}

		totalUSD := line.UnitPriceUSD.Mul(in.Quantity)
		w := Models.Withdrawal{
			UUID:              uuid.NewString(),
			ReservationItemID: line.ID,
			Quantity:          in.Quantity,
			UnitPriceUSD:      line.UnitPriceUSD,
			TotalUSD:          RoundCurrency(totalUSD),
			TotalLBP:          RoundCurrency(ToLBP(totalUSD, rate)),
			Rate:              rate,
			Date:              in.Date,
		}

		if in.CustomerID != 0 {
			// The produced invoice deducts the stock itself.
			inv, err := createWithdrawalInvoiceTx(tx, in, &line, rate)
			if err != nil {
				return err
			}
			w.InvoiceUUID = inv.UUID
		} else {
			if _, err := adjustQuantityTx(tx, line.ItemID, in.Quantity.Neg(), in.AllowNegativeStock); err != nil {
				return err
			}
		}

		if err := tx.Create(&w).Error; err != nil {
			return err
		}

		if err := archiveIfConsumedTx(tx, line.ReservationID); err != nil {
			return err
		}

		withdrawal = &w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func createWithdrawalInvoiceTx(tx *gorm.DB, in WithdrawInput, line *Models.ReservationItem, rate decimal.Decimal) (*Models.Invoice, error) {
	var customer Models.Customer
	if err := tx.First(&customer, in.CustomerID).Error; err != nil {
		return nil, notFoundOr(err)
	}

	unit := in.SellUnit
	if unit == "" {
		var item Models.Item
		if err := tx.First(&item, line.ItemID).Error; err == nil && len(item.SellUnits) > 0 {
			unit = item.SellUnits[0]
		}
	}

	items, totalUSD, err := buildLines(tx, []InvoiceLineInput{{
		ItemID:       line.ItemID,
		SellUnit:     unit,
		Quantity:     in.Quantity,
		UnitPriceUSD: line.UnitPriceUSD,
	}}, rate, in.AllowNegativeStock)
	if err != nil {
		return nil, err
	}
	total := RoundCurrency(totalUSD)

	inv := Models.Invoice{
		UUID:         uuid.NewString(),
		CustomerID:   customer.ID,
		Kind:         Models.InvoiceKindInstallment,
		Status:       Models.InvoiceStatusOpen,
		TotalUSD:     total,
		TotalLBP:     RoundCurrency(ToLBP(totalUSD, rate)),
		PaidUSD:      decimal.Zero,
		RemainingUSD: total,
		ExchangeRate: rate,
		Date:         in.Date,
	}
	if err := tx.Create(&inv).Error; err != nil {
		return nil, err
	}
	for i := range items {
		items[i].InvoiceID = inv.ID
		if err := tx.Create(&items[i]).Error; err != nil {
			return nil, err
		}
	}
	if err := applyRollupTx(tx, &customer, 1, inv.TotalUSD, decimal.Zero, inv.RemainingUSD); err != nil {
		return nil, err
	}
	return &inv, nil
}

// archiveIfConsumedTx flags a reservation whose lines are all fully
// consumed. The rows stay so reversals can restore them.
func archiveIfConsumedTx(tx *gorm.DB, reservationID uint) error {
	var res Models.Reservation
	if err := tx.Preload("Items").First(&res, reservationID).Error; err != nil {
		return notFoundOr(err)
	}
	consumed := true
	for _, line := range res.Items {
		if line.AvailableQuantity.IsPositive() {
			consumed = false
			break
		}
	}
	if res.Archived != consumed {
		res.Archived = consumed
		return tx.Save(&res).Error
	}
	return nil
}

// ReverseWithdrawal restores the withdrawn quantity to the reservation line.
// Stock is restocked only when the withdrawal carried the deduction itself;
// a withdrawal that produced a standalone invoice restocks through that
// invoice's deletion, never here, so stock cannot be restored twice.
func (s *Service) ReverseWithdrawal(withdrawalUUID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var w Models.Withdrawal
		if err := tx.Where("uuid = ?", withdrawalUUID).First(&w).Error; err != nil {
			return notFoundOr(err)
		}
		if w.Reversed {
			return fieldErr("withdrawal", "already reversed")
		}
		var line Models.ReservationItem
		if err := tx.First(&line, w.ReservationItemID).Error; err != nil {
			return notFoundOr(err)
		}

		line.AvailableQuantity = line.AvailableQuantity.Add(w.Quantity)
		if line.AvailableQuantity.GreaterThan(line.Quantity) {
			line.AvailableQuantity = line.Quantity
		}
		if err := tx.Save(&line).Error; err != nil {
			return err
		}

		if w.InvoiceUUID == "" {
			if _, err := restockQuantityTx(tx, line.ItemID, w.Quantity); err != nil {
				return err
			}
		}

		w.Reversed = true
		if err := tx.Save(&w).Error; err != nil {
			return err
		}
		return archiveIfConsumedTx(tx, line.ReservationID)
	})
}

// ListReservations returns a customer's unarchived reservations with lines.
func (s *Service) ListReservations(customerName string) ([]Models.Reservation, error) {
	var reservations []Models.Reservation
	err := s.DB.Preload("Items").
		Where("customer_name = ? AND archived = ?", customerName, false).
		Order("id").Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// ReservationBalance sums the USD value still held for a customer.
func (s *Service) ReservationBalance(customerName string) (decimal.Decimal, error) {
	reservations, err := s.ListReservations(customerName)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, res := range reservations {
		for _, line := range res.Items {
			total = total.Add(line.UnitPriceUSD.Mul(line.AvailableQuantity))
		}
	}
	return RoundCurrency(total), nil
}

// DeleteReservation drops a hold and its withdrawal history. Stock is not
// touched: the hold was virtual, and completed withdrawals already had their
// real effect recorded elsewhere.
func (s *Service) DeleteReservation(reservationID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var res Models.Reservation
		if err := tx.Preload("Items").First(&res, reservationID).Error; err != nil {
			return notFoundOr(err)
		}
		return deleteReservationTx(tx, &res)
	})
}

func deleteReservationTx(tx *gorm.DB, res *Models.Reservation) error {
	for _, line := range res.Items {
		if err := tx.Where("reservation_item_id = ?", line.ID).Delete(&Models.Withdrawal{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("reservation_id = ?", res.ID).Delete(&Models.ReservationItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(res).Error
}

// EditReservationLine changes a line's reserved quantity. The new quantity
// cannot undercut what withdrawals already consumed; available quantity
// moves by the same delta.
func (s *Service) EditReservationLine(reservationItemID uint, quantity decimal.Decimal) (*Models.ReservationItem, error) {
	if !quantity.IsPositive() {
		return nil, fieldErr("quantity", "must be positive")
	}

	var updated *Models.ReservationItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var line Models.ReservationItem
		if err := tx.First(&line, reservationItemID).Error; err != nil {
			return notFoundOr(err)
		}
		consumed := line.Quantity.Sub(line.AvailableQuantity)
		if quantity.LessThan(consumed) {
			return ErrExceedsAvailable
		}
		line.AvailableQuantity = quantity.Sub(consumed)
		line.Quantity = quantity
		if err := tx.Save(&line).Error; err != nil {
			return err
		}
		if err := archiveIfConsumedTx(tx, line.ReservationID); err != nil {
			return err
		}
		updated = &line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
