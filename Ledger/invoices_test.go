package Ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"Mizan/Models"
)

func TestCreateCashInvoice(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "cement", "10", "2", "3")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID: customer.ID,
		Kind:       Models.InvoiceKindCash,
		Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("3")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	mustEqual(t, inv.TotalUSD, dec("12"), "total")
	mustEqual(t, inv.PaidUSD, inv.TotalUSD, "cash paid equals total")
	mustEqual(t, inv.RemainingUSD, decimal.Zero, "cash remaining")
	if inv.Status != Models.InvoiceStatusSettled {
		t.Fatalf("cash invoice status = %s, want settled", inv.Status)
	}

	stocked, _ := s.GetItem(item.ID)
	mustEqual(t, stocked.Quantity, dec("6"), "stock after sale")

	paid, remaining, err := s.GetBalance(customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, paid, dec("12"), "customer paid")
	mustEqual(t, remaining, decimal.Zero, "customer remaining")

	// Cash invoices settle in-transaction; no payment records exist.
	payments, err := s.ListPayments(inv.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 0 {
		t.Fatalf("cash invoice has %d payments, want 0", len(payments))
	}
}

func TestCreateInstallmentWithInitialPayment(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID:     customer.ID,
		Kind:           Models.InvoiceKindInstallment,
		Lines:          []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
		PaidAtCreation: dec("30"),
	})
	if err != nil {
		t.Fatal(err)
	}

	mustEqual(t, inv.TotalUSD, dec("100"), "total")
	mustEqual(t, inv.PaidUSD, dec("30"), "paid")
	mustEqual(t, inv.RemainingUSD, dec("70"), "remaining")
	if inv.Status != Models.InvoiceStatusPartiallyPaid {
		t.Fatalf("status = %s, want partially_paid", inv.Status)
	}

	// The initial payment is synthesized so payment history explains paid.
	payments, err := s.ListPayments(inv.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Fatalf("have %d payments, want 1", len(payments))
	}
	mustEqual(t, payments[0].AmountUSD, dec("30"), "synthesized payment amount")

	paid, remaining, _ := s.GetBalance(customer.ID)
	mustEqual(t, paid, dec("30"), "customer paid")
	mustEqual(t, remaining, dec("70"), "customer remaining")
}

func TestCreateInvoiceOverpaymentAtCreation(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	_, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID:     customer.ID,
		Kind:           Models.InvoiceKindInstallment,
		Lines:          []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
		PaidAtCreation: dec("150"),
	})
	if !errors.Is(err, ErrOverpaymentAtCreation) {
		t.Fatalf("want ErrOverpaymentAtCreation, got %v", err)
	}

	// All-or-nothing: the stock deduction rolled back with the invoice.
	stocked, _ := s.GetItem(item.ID)
	mustEqual(t, stocked.Quantity, dec("10"), "stock after rejected invoice")

	invoices, _ := s.ListInvoices(customer.ID)
	if len(invoices) != 0 {
		t.Fatalf("have %d invoices, want 0", len(invoices))
	}
	if err := s.CheckAggregate(customer.ID); err != nil {
		t.Fatal(err)
	}
}

func TestCreateInvoiceUnknownCustomer(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")

	_, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID: 999,
		Kind:       Models.InvoiceKindCash,
		Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("1"), UnitPriceUSD: dec("25")}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEditInvoiceRestocksAndAppliesDeltas(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	other := seedItem(t, s, "cement", "10", "2", "3")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID: customer.ID,
		Kind:       Models.InvoiceKindInstallment,
		Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	edited, err := s.EditInvoice(inv.UUID, EditInvoiceInput{
		Lines: []InvoiceLineInput{
			{ItemID: item.ID, Quantity: dec("2"), UnitPriceUSD: dec("25")},
			{ItemID: other.ID, Quantity: dec("5"), UnitPriceUSD: dec("3")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, edited.TotalUSD, dec("65"), "total after edit")
	mustEqual(t, edited.RemainingUSD, dec("65"), "remaining after edit")

	tiles, _ := s.GetItem(item.ID)
	cement, _ := s.GetItem(other.ID)
	mustEqual(t, tiles.Quantity, dec("8"), "tiles stock: old 4 restocked, new 2 deducted")
	mustEqual(t, cement.Quantity, dec("5"), "cement stock after edit")

	if err := s.CheckAggregate(customer.ID); err != nil {
		t.Fatal(err)
	}
}

func TestEditInvoiceRepeatedEditsKeepRollupsExact(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "100", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID: customer.ID,
		Kind:       Models.InvoiceKindInstallment,
		Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, qty := range []string{"6", "3", "9", "1"} {
		if _, err := s.EditInvoice(inv.UUID, EditInvoiceInput{
			Lines: []InvoiceLineInput{{ItemID: item.ID, Quantity: dec(qty), UnitPriceUSD: dec("25")}},
		}); err != nil {
			t.Fatal(err)
		}
		if err := s.CheckAggregate(customer.ID); err != nil {
			t.Fatal(err)
		}
	}

	stocked, _ := s.GetItem(item.ID)
	mustEqual(t, stocked.Quantity, dec("99"), "stock reflects only the last edit")
}

func TestEditCashInvoiceKeepsCashInvariant(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID: customer.ID,
		Kind:       Models.InvoiceKindCash,
		Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	edited, err := s.EditInvoice(inv.UUID, EditInvoiceInput{
		Lines: []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("2"), UnitPriceUSD: dec("25")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, edited.PaidUSD, edited.TotalUSD, "cash paid tracks total through edits")
	mustEqual(t, edited.RemainingUSD, decimal.Zero, "cash remaining through edits")
	if err := s.CheckAggregate(customer.ID); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteInvoiceRestoresStock(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID:     customer.ID,
		Kind:           Models.InvoiceKindInstallment,
		Lines:          []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
		PaidAtCreation: dec("30"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteInvoice(inv.UUID); err != nil {
		t.Fatal(err)
	}

	stocked, _ := s.GetItem(item.ID)
	mustEqual(t, stocked.Quantity, dec("10"), "stock conservation after create+delete")

	// The invoice's payments went with it; none survive to be mistaken for
	// a live invoice's.
	if _, err := s.ListPayments(inv.UUID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for deleted invoice, got %v", err)
	}

	paid, remaining, _ := s.GetBalance(customer.ID)
	mustEqual(t, paid, decimal.Zero, "customer paid after delete")
	mustEqual(t, remaining, decimal.Zero, "customer remaining after delete")
	if err := s.CheckAggregate(customer.ID); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteInvoiceAfterItemRemoved(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID:     customer.ID,
		Kind:           Models.InvoiceKindInstallment,
		Lines:          []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
		PaidAtCreation: dec("30"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteItem(item.ID); err != nil {
		t.Fatal(err)
	}

	// The restock on delete must reach the soft-removed row, or historic
	// invoices would become permanently undeletable.
	if err := s.DeleteInvoice(inv.UUID); err != nil {
		t.Fatal(err)
	}

	var removed Models.Item
	if err := s.DB.Unscoped().First(&removed, item.ID).Error; err != nil {
		t.Fatal(err)
	}
	mustEqual(t, removed.Quantity, dec("10"), "stock restored on the removed row")

	// The item stays out of the catalog.
	if _, err := s.GetItem(item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := s.CheckAggregate(customer.ID); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteCustomerAfterItemRemoved(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	if _, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID: customer.ID,
		Kind:       Models.InvoiceKindCash,
		Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("3"), UnitPriceUSD: dec("25")}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteItem(item.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteCustomer(customer.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetCustomer(customer.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestResolveDisplayNumberShiftsOnSiblingDelete(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "100", "2", "25")
	customer := seedCustomer(t, s, "samir")

	var uuids []string
	for i := 0; i < 3; i++ {
		inv, err := s.CreateInvoice(CreateInvoiceInput{
			CustomerID: customer.ID,
			Kind:       Models.InvoiceKindCash,
			Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("1"), UnitPriceUSD: dec("25")}},
		})
		if err != nil {
			t.Fatal(err)
		}
		uuids = append(uuids, inv.UUID)
	}

	number, err := s.ResolveDisplayNumber(customer.ID, uuids[1])
	if err != nil {
		t.Fatal(err)
	}
	if number != 2 {
		t.Fatalf("display number = %d, want 2", number)
	}

	if err := s.DeleteInvoice(uuids[0]); err != nil {
		t.Fatal(err)
	}

	number, err = s.ResolveDisplayNumber(customer.ID, uuids[1])
	if err != nil {
		t.Fatal(err)
	}
	if number != 1 {
		t.Fatalf("display number after sibling delete = %d, want 1", number)
	}
}

func TestConvertToCash(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID:     customer.ID,
		Kind:           Models.InvoiceKindInstallment,
		Lines:          []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("4"), UnitPriceUSD: dec("25")}},
		PaidAtCreation: dec("30"),
	})
	if err != nil {
		t.Fatal(err)
	}

	converted, err := s.ConvertToCash(inv.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if converted.Kind != Models.InvoiceKindCash {
		t.Fatalf("kind = %s, want cash", converted.Kind)
	}
	mustEqual(t, converted.PaidUSD, dec("100"), "paid after conversion")
	mustEqual(t, converted.RemainingUSD, decimal.Zero, "remaining after conversion")

	// The settling remainder shows up as a payment too.
	payments, _ := s.ListPayments(inv.UUID)
	if len(payments) != 2 {
		t.Fatalf("have %d payments, want 2", len(payments))
	}
	if err := s.CheckAggregate(customer.ID); err != nil {
		t.Fatal(err)
	}
}

func TestConvertToCashRejectsCashInvoice(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	inv, err := s.CreateInvoice(CreateInvoiceInput{
		CustomerID: customer.ID,
		Kind:       Models.InvoiceKindCash,
		Lines:      []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("1"), UnitPriceUSD: dec("25")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ConvertToCash(inv.UUID); !errors.Is(err, ErrNotInstallment) {
		t.Fatalf("want ErrNotInstallment, got %v", err)
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	s := testService(t)
	item := seedItem(t, s, "tiles", "10", "2", "25")
	customer := seedCustomer(t, s, "samir")

	cases := []CreateInvoiceInput{
		{CustomerID: customer.ID, Kind: "loan", Lines: []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("1"), UnitPriceUSD: dec("1")}}},
		{CustomerID: customer.ID, Kind: Models.InvoiceKindCash},
		{CustomerID: customer.ID, Kind: Models.InvoiceKindCash, Lines: []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("0"), UnitPriceUSD: dec("1")}}},
		{CustomerID: customer.ID, Kind: Models.InvoiceKindCash, Lines: []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("1"), UnitPriceUSD: dec("-1")}}},
		{CustomerID: customer.ID, Kind: Models.InvoiceKindInstallment, PaidAtCreation: dec("-5"), Lines: []InvoiceLineInput{{ItemID: item.ID, Quantity: dec("1"), UnitPriceUSD: dec("1")}}},
	}
	for i, in := range cases {
		if _, err := s.CreateInvoice(in); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: want ErrValidation, got %v", i, err)
		}
	}
}
