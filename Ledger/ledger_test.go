package Ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Mizan/Models"
)

// testService opens an isolated in-memory database per test.
func testService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	err = db.AutoMigrate(
		&Models.User{},
		&Models.Settings{},
		&Models.Item{},
		&Models.Customer{},
		&Models.Invoice{},
		&Models.InvoiceItem{},
		&Models.Payment{},
		&Models.Reservation{},
		&Models.ReservationItem{},
		&Models.Withdrawal{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := db.Create(&Models.Settings{USDToLBP: dec("89000")}).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	return New(db)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedItem(t *testing.T, s *Service, name string, quantity, buyPrice, sellPrice string) *Models.Item {
	t.Helper()
	item := Models.Item{
		Name:      name,
		Currency:  "USD",
		Quantity:  dec(quantity),
		BuyPrice:  dec(buyPrice),
		SellPrice: dec(sellPrice),
	}
	if err := s.CreateItem(&item); err != nil {
		t.Fatalf("seed item %s: %v", name, err)
	}
	return &item
}

func seedCustomer(t *testing.T, s *Service, name string) *Models.Customer {
	t.Helper()
	customer, err := s.CreateCustomer(name, "70-"+name, "")
	if err != nil {
		t.Fatalf("seed customer %s: %v", name, err)
	}
	return customer
}

func mustEqual(t *testing.T, got, want decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", label, got, want)
	}
}
