package store

import (
	"context"
	"fmt"
	"math"
	"strings"
)

type Business struct {
	Name      string `json:"name"`
	Slogan    string `json:"slogan"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
}

type QuoteSettings struct {
	Prefix       string  `json:"prefix"`
	NextNumber   int     `json:"nextNumber"`
	ValidityDays int     `json:"validityDays"`
	Currency     string  `json:"currency"`
	ExchangeRate float64 `json:"exchangeRate"`
	ShowMXN      bool    `json:"showMXN"`
	LegalText    string  `json:"legalText"`
}

type Appearance struct {
	DarkMode bool   `json:"darkMode"`
	Theme    string `json:"theme"`
}

type AISettings struct {
	APIKey string `json:"apiKey,omitempty"`
	Model  string `json:"model,omitempty"`
}

type Config struct {
	Business   Business      `json:"business"`
	Quotes     QuoteSettings `json:"quotes"`
	Appearance Appearance    `json:"appearance"`
	AI         AISettings    `json:"ai"`
}

const DefaultAIModel = "gpt-4o-mini"

func DefaultConfig() Config {
	return Config{
		Business: Business{
			Name:   "Magia Disney & Royal",
			Slogan: "Parques • Cruceros • Descuentos",
			Phone:  "55 8095 5139",
		},
		Quotes: QuoteSettings{
			Prefix:       "MDR",
			NextNumber:   1,
			ValidityDays: 7,
			Currency:     "USD",
			ExchangeRate: 17.5,
			LegalText:    "Precios sujetos a disponibilidad y cambios sin previo aviso. Cotización válida por el tiempo indicado.",
		},
		Appearance: Appearance{Theme: "default"},
		AI:         AISettings{Model: DefaultAIModel},
	}
}

// Config returns the stored config decoded over the defaults.
func (s *Store) Config(ctx context.Context) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config(ctx)
}

func (s *Store) config(ctx context.Context) (Config, error) {
	cfg := DefaultConfig()
	if _, err := s.get(ctx, keyConfig, &cfg); err != nil {
		return DefaultConfig(), err
	}
	if strings.TrimSpace(cfg.Quotes.Prefix) == "" {
		cfg.Quotes.Prefix = "MDR"
	}
	if cfg.Quotes.NextNumber < 1 {
		cfg.Quotes.NextNumber = 1
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultAIModel
	}
	return cfg, nil
}

func (s *Store) SaveConfig(ctx context.Context, cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keyConfig, cfg)
}

func (s *Store) DarkMode(ctx context.Context) (bool, error) {
	cfg, err := s.Config(ctx)
	return cfg.Appearance.DarkMode, err
}

func (s *Store) SetDarkMode(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.config(ctx)
	if err != nil {
		return err
	}
	cfg.Appearance.DarkMode = enabled
	return s.put(ctx, keyConfig, cfg)
}

// NextQuoteID formats PREFIX-YEAR-NNNN and persists the incremented counter.
func (s *Store) NextQuoteID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.config(ctx)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s-%d-%04d", cfg.Quotes.Prefix, s.now().Year(), cfg.Quotes.NextNumber)
	cfg.Quotes.NextNumber++
	if err := s.put(ctx, keyConfig, cfg); err != nil {
		return "", err
	}
	return id, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
