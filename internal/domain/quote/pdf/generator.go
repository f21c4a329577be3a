// Package pdf renders a quote as a printable proposal.
package pdf

import "mdr-travel/go_backend/internal/domain/quote"

// Business is the agency data printed on every proposal.
type Business struct {
	Name         string
	Slogan       string
	Phone        string
	Email        string
	Instagram    string
	Currency     string
	ExchangeRate float64
	ShowMXN      bool
	ValidityDays int
	LegalText    string
	// Region is the default phone region for the WhatsApp QR link.
	Region string
	// PrimaryColor and AccentColor are #rrggbb; empty picks the house colors.
	PrimaryColor string
	AccentColor  string
}

type Generator interface {
	Generate(q quote.Quote, b Business) ([]byte, error)
}
