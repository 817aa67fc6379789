package Ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Mizan/Models"
)

// Service is the ledger and inventory reconciliation core. Every compound
// operation (invoice create/edit/delete, payment apply/remove, withdrawal)
// runs in a single transaction so its fan-out writes to items, invoices,
// payments and customer rollups land together or not at all. The service
// assumes a single active writer, matching the one-session deployment.
type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// GetExchangeRate returns the current global rate and when it was last set.
func (s *Service) GetExchangeRate() (decimal.Decimal, time.Time, error) {
	var settings Models.Settings
	if err := s.DB.First(&settings).Error; err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return settings.USDToLBP, settings.UpdatedAt, nil
}

func currentRate(tx *gorm.DB) (decimal.Decimal, error) {
	var settings Models.Settings
	if err := tx.First(&settings).Error; err != nil {
		return decimal.Zero, err
	}
	return settings.USDToLBP, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
