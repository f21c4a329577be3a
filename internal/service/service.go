// Package service orchestrates the store and the domain packages behind the
// HTTP handlers: every operation that touches more than one document, or
// that has side effects on stats and the client timeline, lives here.
package service

import (
	"context"
	"time"

	"mdr-travel/go_backend/internal/domain/ai/quoter"
	"mdr-travel/go_backend/internal/domain/messaging"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/domain/quote/pdf"
	"mdr-travel/go_backend/internal/logger"
	"mdr-travel/go_backend/internal/store"
)

type Quoter interface {
	Generate(ctx context.Context, req quoter.Request) (quote.Input, error)
}

type Mailer interface {
	Enabled() bool
	SendQuote(ctx context.Context, to string, q quote.Quote, body string, pdf []byte) error
}

type Snapshotter interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

type Options struct {
	// Region is the default phone region used to normalize numbers.
	Region      string
	SignBaseURL string
	// OpenAIKey is used when the stored settings carry no key.
	OpenAIKey   string
	OpenAIModel string
	Logger      *logger.Logger
}

type Deps struct {
	Store     *store.Store
	Catalog   *messaging.Catalog
	PDF       pdf.Generator
	Quoter    Quoter
	Mailer    Mailer
	Snapshots Snapshotter
}

type Service struct {
	store     *store.Store
	catalog   *messaging.Catalog
	pdf       pdf.Generator
	quoter    Quoter
	mailer    Mailer
	snapshots Snapshotter

	region      string
	signBaseURL string
	openAIKey   string
	openAIModel string
	log         *logger.Logger
}

func New(d Deps, opts Options) *Service {
	catalog := d.Catalog
	if catalog == nil {
		catalog = messaging.Default()
	}
	region := opts.Region
	if region == "" {
		region = "MX"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:       d.Store,
		catalog:     catalog,
		pdf:         d.PDF,
		quoter:      d.Quoter,
		mailer:      d.Mailer,
		snapshots:   d.Snapshots,
		region:      region,
		signBaseURL: opts.SignBaseURL,
		openAIKey:   opts.OpenAIKey,
		openAIModel: opts.OpenAIModel,
		log:         log,
	}
}

func (s *Service) Store() *store.Store { return s.store }

func (s *Service) Catalog() *messaging.Catalog { return s.catalog }

func (s *Service) now() time.Time { return s.store.Now() }

// business collects the sender block used by quote texts.
func (s *Service) business(ctx context.Context) (messaging.Business, store.Config, error) {
	cfg, err := s.store.Config(ctx)
	if err != nil {
		return messaging.Business{}, store.Config{}, err
	}
	branding, err := s.store.Branding(ctx)
	if err != nil {
		return messaging.Business{}, store.Config{}, err
	}
	return messaging.Business{
		Name:         cfg.Business.Name,
		Phone:        cfg.Business.Phone,
		Currency:     cfg.Quotes.Currency,
		ValidityDays: cfg.Quotes.ValidityDays,
		LegalText:    cfg.Quotes.LegalText,
		Signature:    branding.Signature,
	}, cfg, nil
}

func (s *Service) pdfBusiness(ctx context.Context) (pdf.Business, error) {
	cfg, err := s.store.Config(ctx)
	if err != nil {
		return pdf.Business{}, err
	}
	branding, err := s.store.Branding(ctx)
	if err != nil {
		return pdf.Business{}, err
	}
	return pdf.Business{
		Name:         cfg.Business.Name,
		Slogan:       cfg.Business.Slogan,
		Phone:        cfg.Business.Phone,
		Email:        cfg.Business.Email,
		Instagram:    cfg.Business.Instagram,
		Currency:     cfg.Quotes.Currency,
		ExchangeRate: cfg.Quotes.ExchangeRate,
		ShowMXN:      cfg.Quotes.ShowMXN,
		ValidityDays: cfg.Quotes.ValidityDays,
		LegalText:    cfg.Quotes.LegalText,
		Region:       s.region,
		PrimaryColor: branding.Colors.Primary,
		AccentColor:  branding.Colors.Accent,
	}, nil
}
