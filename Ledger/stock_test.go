package Ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"Mizan/Models"
)

func TestAdjustQuantityInsufficientStock(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "cement", "5", "2", "3")

	_, err := s.AdjustQuantity(item.ID, dec("-6"), false)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}

	got, err := s.GetItem(item.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, got.Quantity, dec("5"), "quantity after rejected sale")
}

func TestAdjustQuantityOverrideClampsAtZero(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "cement", "5", "2", "3")

	got, err := s.AdjustQuantity(item.ID, dec("-6"), true)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, got.Quantity, dec("0"), "quantity after confirmed oversell")
}

func TestRestockNeverFails(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "cement", "0", "2", "3")

	got, err := s.AdjustQuantity(item.ID, dec("10"), false)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, got.Quantity, dec("10"), "quantity after restock")
}

func TestCapitalValueUSDItem(t *testing.T) {
	s := testService(t)
	// 3 units x 2 USD x 89000 = 534000 LBP
	item := seedItem(t, s, "rebar", "3", "2", "3")
	got, err := s.GetItem(item.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, got.CapitalValueLBP, dec("534000"), "capital value")
}

func TestSetExchangeRateRecomputesPresentationOnly(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID:     customer.ID,
		Kind:           "installment",
		Lines:          []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
		PaidAtCreation: dec("30"),
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, inv.TotalLBP, dec("8900000"), "LBP total at creation rate")

	if err := s.SetExchangeRate(dec("90000")); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetInvoice(inv.UUID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, got.TotalUSD, dec("100"), "USD total after rate change")
	mustEqual(t, got.PaidUSD, dec("30"), "USD paid after rate change")
	mustEqual(t, got.RemainingUSD, dec("70"), "USD remaining after rate change")
	mustEqual(t, got.TotalLBP, dec("9000000"), "LBP total at new rate")
	mustEqual(t, got.ExchangeRate, dec("89000"), "creation rate is immutable")

	payments, err := s.ListPayments(inv.UUID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, payments[0].AmountUSD, dec("30"), "payment USD after rate change")
	mustEqual(t, payments[0].AmountLBP, dec("2670000"), "payment LBP stays at its own rate")

	// Capital value follows the new rate: 6 units x 2 USD x 90000.
	refreshed, err := s.GetItem(item.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, refreshed.CapitalValueLBP, dec("1080000"), "capital at new rate")
}

func TestSetExchangeRateRejectsNonPositive(t *testing.T) {
	s := testService(t)
	if err := s.SetExchangeRate(dec("0")); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	rate, _, err := s.GetExchangeRate()
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, rate, dec("89000"), "rate after rejected update")
}

func TestExchangeRateTimestamp(t *testing.T) {
	s := testService(t)
	if err := s.SetExchangeRate(dec("91000")); err != nil {
		t.Fatal(err)
	}
	_, updatedAt, err := s.GetExchangeRate()
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(updatedAt) > time.Minute {
		t.Fatalf("updated_at not refreshed: %v", updatedAt)
	}
}

func TestTotalCapital(t *testing.T) {
	s := testService(t)
	seedItem(t, s, "cement", "3", "2", "3")  // 534000
	seedItem(t, s, "gravel", "1", "10", "3") // 890000
	total, err := s.TotalCapital()
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, total, dec("1424000"), "total capital")
}

func TestRecomputeCapitalValueRepairsStaleRow(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "cement", "3", "2", "3")

	// Simulate a row whose capital drifted out from under the ledger.
	if err := s.DB.Model(&Models.Item{}).Where("id = ?", item.ID).
		Update("capital_value_lbp", decimal.Zero).Error; err != nil {
		t.Fatal(err)
	}

	repaired, err := s.RecomputeCapitalValue(item.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, repaired.CapitalValueLBP, dec("534000"), "capital after recompute")
}
