package Ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestConversionRoundTrip(t *testing.T) {
	amounts := []string{"0.01", "1", "33.33", "100", "1234.56", "99999.99"}
	rates := []string{"1500", "89000", "90000", "89123.4567"}

	for _, a := range amounts {
		for _, r := range rates {
			amount, rate := dec(a), dec(r)
			back := RoundCurrency(ToUSD(ToLBP(amount, rate), rate))
			if back.Sub(RoundCurrency(amount)).Abs().GreaterThan(Tolerance) {
				t.Errorf("round trip of %s at rate %s drifted: got %s", a, r, back)
			}
		}
	}
}

func TestToUSDZeroRate(t *testing.T) {
	if !ToUSD(dec("100"), decimal.Zero).IsZero() {
		t.Fatal("conversion at zero rate should yield zero, not divide")
	}
}

func TestRoundCurrency(t *testing.T) {
	cases := map[string]string{
		"1.005":   "1.01",
		"1.004":   "1.00",
		"2.345":   "2.35",
		"2.344":   "2.34",
		"100":     "100",
		"0.999":   "1.00",
		"1234.56": "1234.56",
	}
	for in, want := range cases {
		mustEqual(t, RoundCurrency(dec(in)), dec(want), "RoundCurrency("+in+")")
	}
}

func TestSnapZero(t *testing.T) {
	if !SnapZero(dec("0.009")).IsZero() {
		t.Error("0.009 should snap to zero")
	}
	if !SnapZero(dec("-0.01")).IsZero() {
		t.Error("-0.01 should snap to zero")
	}
	mustEqual(t, SnapZero(dec("0.02")), dec("0.02"), "SnapZero(0.02)")
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(dec("70.00"), dec("69.995")) {
		t.Error("half a cent should be within tolerance")
	}
	if WithinTolerance(dec("70.00"), dec("69.98")) {
		t.Error("two cents should not be within tolerance")
	}
}
