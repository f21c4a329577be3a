package quote

import (
	"fmt"
	"math"
	"strings"
	"time"

	"mdr-travel/go_backend/internal/apperr"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type DiscountRequest struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// ApplyDiscount reduces the total and keeps the pre-discount amount in
// Subtotal. The monthly installment follows the new total.
func ApplyDiscount(q *Quote, d DiscountRequest, now time.Time) error {
	if d.Value < 0 {
		return apperr.Validation("el descuento no puede ser negativo")
	}
	var amount float64
	switch d.Type {
	case DiscountPercentage:
		if d.Value > 100 {
			return apperr.Validation("el porcentaje no puede ser mayor a 100")
		}
		amount = q.Total * d.Value / 100
	case DiscountFixed:
		amount = d.Value
	default:
		return apperr.Validation(fmt.Sprintf("tipo de descuento desconocido: %q", d.Type))
	}
	amount = math.Min(amount, q.Total)

	q.Discount = &Discount{Type: d.Type, Value: d.Value, Amount: amount, AppliedAt: now}
	q.Subtotal = q.Total
	q.Total = q.Total - amount
	q.Recalculate()
	return nil
}

// RequestSignature marks q as waiting for the client's signature.
func RequestSignature(q *Quote, email, signBaseURL string, now time.Time) *Signature {
	q.Signature = &Signature{
		Requested:   now,
		ClientEmail: email,
		Status:      "pending",
		Link:        strings.TrimRight(signBaseURL, "/") + "/sign/" + q.ID,
	}
	return q.Signature
}

type Features struct {
	Product   string `json:"product"`
	Type      string `json:"type"`
	Dates     string `json:"dates"`
	Travelers string `json:"travelers"`
	Includes  int    `json:"includes"`
	Excludes  int    `json:"excludes"`
}

type Comparison struct {
	Quotes    []Quote    `json:"quotes"`
	CreatedAt time.Time  `json:"createdAt"`
	Prices    []float64  `json:"prices"`
	Deposits  []float64  `json:"deposits"`
	Months    []int      `json:"months"`
	Monthly   []float64  `json:"monthly"`
	Features  []Features `json:"features"`
}

// Compare lines up quotes side by side in the given order.
func Compare(quotes []Quote, now time.Time) Comparison {
	c := Comparison{Quotes: quotes, CreatedAt: now}
	for _, q := range quotes {
		c.Prices = append(c.Prices, q.Total)
		c.Deposits = append(c.Deposits, q.Deposit)
		c.Months = append(c.Months, q.Months)
		c.Monthly = append(c.Monthly, q.Monthly)
		c.Features = append(c.Features, Features{
			Product:   q.Product,
			Type:      q.Type,
			Dates:     q.Dates,
			Travelers: q.Travelers,
			Includes:  len(Lines(q.Includes)),
			Excludes:  len(Lines(q.Excludes)),
		})
	}
	return c
}

type ExpirationAlert struct {
	Quote   Quote  `json:"quote"`
	Urgency string `json:"urgency"`
	Days    int    `json:"days"`
	Message string `json:"message"`
}

// DaysUntil is the number of days from now to date, rounded up.
func DaysUntil(date time.Time, now time.Time) int {
	return int(math.Ceil(date.Sub(now).Hours() / 24))
}

// CheckExpirations flags quotes whose validUntil is at most 7 days away.
func CheckExpirations(quotes []Quote, now time.Time) []ExpirationAlert {
	var alerts []ExpirationAlert
	for _, q := range quotes {
		exp, ok := ParseDate(q.ValidUntil)
		if !ok {
			continue
		}
		days := DaysUntil(exp, now)
		switch {
		case days <= 0:
			alerts = append(alerts, ExpirationAlert{Quote: q, Urgency: "expired", Days: days, Message: "Cotización vencida - requiere renovación"})
		case days <= 3:
			alerts = append(alerts, ExpirationAlert{Quote: q, Urgency: "critical", Days: days, Message: fmt.Sprintf("Vence en %d días", days)})
		case days <= 7:
			alerts = append(alerts, ExpirationAlert{Quote: q, Urgency: "warning", Days: days, Message: fmt.Sprintf("Vence en %d días", days)})
		}
	}
	return alerts
}
