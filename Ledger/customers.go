package Ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Mizan/Models"
)

// applyRollupTx moves the customer rollups by exact deltas, never absolute
// values, so the rollups stay equal to the sums over the customer's records
// no matter how many mutations have run.
func applyRollupTx(tx *gorm.DB, customer *Models.Customer, dInvoices int, dAmount, dPaid, dRemaining decimal.Decimal) error {
	customer.TotalInvoices += dInvoices
	customer.TotalAmount = customer.TotalAmount.Add(dAmount)
	customer.TotalPaid = customer.TotalPaid.Add(dPaid)
	customer.TotalRemaining = maxZero(customer.TotalRemaining.Add(dRemaining))
	return tx.Save(customer).Error
}

// CreateCustomer registers a customer. Name+phone is the natural key used
// for lookups and must be unique.
func (s *Service) CreateCustomer(name, phone, address string) (*Models.Customer, error) {
	if name == "" {
		return nil, fieldErr("name", "is required")
	}
	if phone == "" {
		return nil, fieldErr("phone", "is required")
	}

	var count int64
	if err := s.DB.Model(&Models.Customer{}).
		Where("name = ? AND phone = ?", name, phone).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fieldErr("name", "a customer with this name and phone already exists")
	}

	customer := Models.Customer{
		Name:           name,
		Phone:          phone,
		Address:        address,
		TotalAmount:    decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
	}
	if err := s.DB.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Service) GetCustomer(customerID uint) (*Models.Customer, error) {
	var customer Models.Customer
	if err := s.DB.First(&customer, customerID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &customer, nil
}

// FindCustomer looks a customer up by the name+phone natural key.
func (s *Service) FindCustomer(name, phone string) (*Models.Customer, error) {
	var customer Models.Customer
	if err := s.DB.Where("name = ? AND phone = ?", name, phone).First(&customer).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &customer, nil
}

// ListCustomers returns customers, optionally filtered by a name/phone
// substring.
func (s *Service) ListCustomers(search string) ([]Models.Customer, error) {
	var customers []Models.Customer
	query := s.DB.Order("name")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// GetBalance returns the rollup pair (total paid, total remaining) in USD.
func (s *Service) GetBalance(customerID uint) (decimal.Decimal, decimal.Decimal, error) {
	customer, err := s.GetCustomer(customerID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return customer.TotalPaid, customer.TotalRemaining, nil
}

// DeleteCustomer cascades through the invariant-preserving delete paths:
// every invoice goes through the invoice ledger (restocking lines and
// sweeping payments), reservations are dropped by name, and only then is the
// customer record removed. No raw record filtering anywhere, so stock and
// rollups cannot be left half-updated.
func (s *Service) DeleteCustomer(customerID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var customer Models.Customer
		if err := tx.First(&customer, customerID).Error; err != nil {
			return notFoundOr(err)
		}

		var invoices []Models.Invoice
		if err := tx.Preload("Items").Where("customer_id = ?", customer.ID).Find(&invoices).Error; err != nil {
			return err
		}
		for i := range invoices {
			if err := deleteInvoiceTx(tx, &invoices[i]); err != nil {
				return err
			}
		}

		var reservations []Models.Reservation
		if err := tx.Preload("Items").Where("customer_name = ?", customer.Name).Find(&reservations).Error; err != nil {
			return err
		}
		for i := range reservations {
			if err := deleteReservationTx(tx, &reservations[i]); err != nil {
				return err
			}
		}

		return tx.Delete(&customer).Error
	})
}

// CheckAggregate recomputes a customer's rollups from their invoice rows and
// reports any divergence. Divergence is a bug, not a runtime condition; this
// exists for tests and audits.
func (s *Service) CheckAggregate(customerID uint) error {
	customer, err := s.GetCustomer(customerID)
	if err != nil {
		return err
	}
	invoices, err := s.ListInvoices(customerID)
	if err != nil {
		return err
	}

	paid, remaining, amount := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range invoices {
		paid = paid.Add(invoices[i].PaidUSD)
		remaining = remaining.Add(invoices[i].RemainingUSD)
		amount = amount.Add(invoices[i].TotalUSD)
	}

	if customer.TotalInvoices != len(invoices) {
		return fmt.Errorf("aggregate divergence: total_invoices %d, have %d invoices", customer.TotalInvoices, len(invoices))
	}
	if !WithinTolerance(customer.TotalAmount, amount) {
		return fmt.Errorf("aggregate divergence: total_amount %s, invoices sum to %s", customer.TotalAmount, amount)
	}
	if !WithinTolerance(customer.TotalPaid, paid) {
		return fmt.Errorf("aggregate divergence: total_paid %s, invoices sum to %s", customer.TotalPaid, paid)
	}
	if !WithinTolerance(customer.TotalRemaining, remaining) {
		return fmt.Errorf("aggregate divergence: total_remaining %s, invoices sum to %s", customer.TotalRemaining, remaining)
	}
	return nil
}
