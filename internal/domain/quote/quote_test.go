package quote

import (
	"math"
	"testing"
	"time"

	"mdr-travel/go_backend/internal/apperr"
)

func TestMonthlyExample(t *testing.T) {
	if got := Monthly(3000, 300, 9); got != 300 {
		t.Fatalf("expected 300, got %v", got)
	}
}

func TestMonthlyFormulaHolds(t *testing.T) {
	for total := 0.0; total <= 5000; total += 250 {
		for deposit := 0.0; deposit <= 6000; deposit += 750 {
			for months := 0; months <= 13; months++ {
				want := math.Ceil(math.Max(0, total-deposit) / math.Max(1, float64(months)))
				if got := Monthly(total, deposit, months); got != want {
					t.Fatalf("Monthly(%v, %v, %d): expected %v, got %v", total, deposit, months, want, got)
				}
			}
		}
	}
}

func TestMonthlyEdgeCases(t *testing.T) {
	if got := Monthly(1000, 2000, 6); got != 0 {
		t.Fatalf("deposit above total: expected 0, got %v", got)
	}
	if got := Monthly(1000, 0, 0); got != 1000 {
		t.Fatalf("zero months: expected 1000, got %v", got)
	}
	if got := Monthly(1001, 0, 2); got != 501 {
		t.Fatalf("rounding up: expected 501, got %v", got)
	}
}

func TestFormatDateRange(t *testing.T) {
	cases := []struct {
		start, end, want string
	}{
		{"", "", ""},
		{"2025-01-05", "", "5 ene 2025"},
		{"", "2025-03-09", "9 mar 2025"},
		{"2025-01-05", "2025-01-12", "5-12 ene 2025"},
		{"2025-01-28", "2025-02-03", "28 ene - 3 feb 2025"},
	}
	for _, c := range cases {
		if got := FormatDateRange(c.start, c.end); got != c.want {
			t.Fatalf("FormatDateRange(%q, %q): expected %q, got %q", c.start, c.end, c.want, got)
		}
	}
}

func TestFormatTravelers(t *testing.T) {
	cases := []struct {
		adults, children int
		ages             []int
		want             string
	}{
		{2, 0, nil, "2 adultos"},
		{1, 1, []int{5}, "1 adulto, 1 niño (5 años)"},
		{2, 2, nil, "2 adultos, 2 niños"},
		{0, 0, nil, ""},
	}
	for _, c := range cases {
		if got := FormatTravelers(c.adults, c.children, c.ages); got != c.want {
			t.Fatalf("expected %q, got %q", c.want, got)
		}
	}
}

func validInput() Input {
	var in Input
	in.Client.Name = "  Ana López "
	in.Product = "Crucero Bahamas"
	in.Type = "crucero-disney"
	in.Total = 3000
	in.Deposit = 300
	return in
}

func TestInputValidateRequiresNameProductTotal(t *testing.T) {
	in := validInput()
	in.Client.Name = "   "
	err := in.Validate()
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Nombre del cliente es requerido" {
		t.Fatalf("expected name message, got %q", err.Error())
	}

	in = validInput()
	in.Total = 0
	if err := in.Validate(); err == nil || err.Error() != "Precio total debe ser mayor a 0" {
		t.Fatalf("expected total message, got %v", err)
	}

	in = validInput()
	in.Product = ""
	if err := in.Validate(); err == nil || err.Error() != "Producto/Destino es requerido" {
		t.Fatalf("expected product message, got %v", err)
	}
}

func TestInputBuildAppliesDefaults(t *testing.T) {
	in := validInput()
	if err := in.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	q := in.Build()

	if q.Client.Name != "Ana López" {
		t.Fatalf("expected trimmed name, got %q", q.Client.Name)
	}
	if q.Months != DefaultMonths || q.Adults != DefaultAdults {
		t.Fatalf("expected defaults months=6 adults=2, got %d %d", q.Months, q.Adults)
	}
	if q.Monthly != 450 {
		t.Fatalf("expected monthly 450, got %v", q.Monthly)
	}
	if q.Status != StatusDraft {
		t.Fatalf("expected draft, got %q", q.Status)
	}
	if q.Travelers != "2 adultos" {
		t.Fatalf("expected travelers string, got %q", q.Travelers)
	}
}

func TestInputBuildKeepsExplicitZeroMonths(t *testing.T) {
	in := validInput()
	zero := 0
	in.Months = &zero
	q := in.Build()
	if q.Months != 0 {
		t.Fatalf("expected months 0, got %d", q.Months)
	}
	if q.Monthly != 2700 {
		t.Fatalf("expected monthly 2700, got %v", q.Monthly)
	}
}

func TestNewVersionSnapshotsAndApplies(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	q := validInput().Build()
	q.ID = "MDR-2025-0001"

	total := 2500.0
	NewVersion(&q, Patch{Total: &total}, "", now)

	if len(q.Versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(q.Versions))
	}
	v := q.Versions[0]
	if v.Version != 1 || v.Data.Total != 3000 || v.Changes != defaultVersionNote {
		t.Fatalf("unexpected version %+v", v)
	}
	if q.Total != 2500 || q.Monthly != 367 {
		t.Fatalf("expected patched total 2500 monthly 367, got %v %v", q.Total, q.Monthly)
	}
	if q.Version != 2 {
		t.Fatalf("expected version 2, got %d", q.Version)
	}

	NewVersion(&q, Patch{}, "otra", now)
	if len(q.Versions[1].Data.Versions) != 0 {
		t.Fatalf("expected snapshots without nested history")
	}
}

func TestApplyDiscount(t *testing.T) {
	now := time.Now()
	q := validInput().Build()

	if err := ApplyDiscount(&q, DiscountRequest{Type: DiscountPercentage, Value: 10}, now); err != nil {
		t.Fatalf("discount: %v", err)
	}
	if q.Subtotal != 3000 || q.Total != 2700 || q.Discount.Amount != 300 {
		t.Fatalf("unexpected discount result subtotal=%v total=%v amount=%v", q.Subtotal, q.Total, q.Discount.Amount)
	}
	if q.Monthly != Monthly(2700, 300, q.Months) {
		t.Fatalf("expected monthly recomputed, got %v", q.Monthly)
	}

	if err := ApplyDiscount(&q, DiscountRequest{Type: "bogus", Value: 1}, now); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestCheckExpirations(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	quotes := []Quote{
		{ID: "a", ValidUntil: "2025-05-09"},
		{ID: "b", ValidUntil: "2025-05-12"},
		{ID: "c", ValidUntil: "2025-05-16"},
		{ID: "d", ValidUntil: "2025-06-30"},
		{ID: "e"},
	}
	alerts := CheckExpirations(quotes, now)
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	want := []string{"expired", "critical", "warning"}
	for i, a := range alerts {
		if a.Urgency != want[i] {
			t.Fatalf("alert %d: expected %s, got %s", i, want[i], a.Urgency)
		}
	}
}

func TestConvertCurrency(t *testing.T) {
	if got := ConvertCurrency(100, "USD", "MXN", 18); got != 1800 {
		t.Fatalf("expected 1800, got %v", got)
	}
	if got := ConvertCurrency(1800, "MXN", "USD", 18); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(12500, "USD"); got != "$12,500 USD" {
		t.Fatalf("expected $12,500 USD, got %q", got)
	}
	if got := FormatCurrency(999.6, "MXN"); got != "$1,000 MXN" {
		t.Fatalf("expected $1,000 MXN, got %q", got)
	}
}

func TestCompareCountsLines(t *testing.T) {
	q := Quote{Total: 10, Includes: "a\n\nb\n", Excludes: "x"}
	c := Compare([]Quote{q}, time.Now())
	if c.Features[0].Includes != 2 || c.Features[0].Excludes != 1 {
		t.Fatalf("unexpected feature counts %+v", c.Features[0])
	}
}
