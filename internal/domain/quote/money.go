package quote

import (
	"math"
	"strconv"
	"strings"
)

// Monthly is the installment amount after the deposit:
// ceil(max(0, total-deposit) / max(1, months)).
func Monthly(total, deposit float64, months int) float64 {
	balance := math.Max(0, total-deposit)
	if months < 1 {
		months = 1
	}
	return math.Ceil(balance / float64(months))
}

type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
	Name   string  `json:"name"`
}

// Currencies returns the supported currencies, rates relative to USD. The
// MXN rate is the configured exchange rate when positive.
func Currencies(mxnRate float64) map[string]Currency {
	if mxnRate <= 0 {
		mxnRate = 17.5
	}
	return map[string]Currency{
		"USD": {Code: "USD", Symbol: "$", Rate: 1, Name: "Dólar Estadounidense"},
		"MXN": {Code: "MXN", Symbol: "$", Rate: mxnRate, Name: "Peso Mexicano"},
		"EUR": {Code: "EUR", Symbol: "€", Rate: 0.92, Name: "Euro"},
	}
}

// ConvertCurrency converts through USD. Unknown codes count as rate 1.
func ConvertCurrency(amount float64, from, to string, mxnRate float64) float64 {
	cur := Currencies(mxnRate)
	fromRate, toRate := 1.0, 1.0
	if c, ok := cur[strings.ToUpper(from)]; ok {
		fromRate = c.Rate
	}
	if c, ok := cur[strings.ToUpper(to)]; ok {
		toRate = c.Rate
	}
	return amount / fromRate * toRate
}

// FormatCurrency renders whole units with thousands separators, e.g. "$12,500 USD".
func FormatCurrency(amount float64, code string) string {
	if code == "" {
		code = "USD"
	}
	symbol := "$"
	if c, ok := Currencies(0)[strings.ToUpper(code)]; ok {
		symbol = c.Symbol
	}

	n := int64(math.Round(amount))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := symbol + b.String() + " " + strings.ToUpper(code)
	if neg {
		out = "-" + out
	}
	return out
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
