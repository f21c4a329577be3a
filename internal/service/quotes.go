package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/client"
	"mdr-travel/go_backend/internal/domain/messaging"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/store"
)

type QuoteFilter struct {
	Status quote.Status
	Query  string
}

func (f QuoteFilter) match(q quote.Quote) bool {
	if f.Status != "" && q.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	needle := strings.ToLower(f.Query)
	for _, hay := range []string{q.ID, q.Client.Name, q.Product} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func (s *Service) ListQuotes(ctx context.Context, f QuoteFilter) ([]quote.Quote, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	if f.Status == "" && f.Query == "" {
		return quotes, nil
	}
	out := []quote.Quote{}
	for _, q := range quotes {
		if f.match(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

// ViewQuote returns the quote and records it as recently opened.
func (s *Service) ViewQuote(ctx context.Context, id string) (quote.Quote, error) {
	q, err := s.store.Quote(ctx, id)
	if err != nil {
		return quote.Quote{}, err
	}
	if err := s.store.AddRecent(ctx, id); err != nil {
		s.log.WithContext(ctx).Warn("recent_failed", slog.String("quote_id", id), slog.String("error", err.Error()))
	}
	return q, nil
}

// SaveQuote validates the form and persists it. A new quote gets the next id
// and bumps quotesCreated; an edit keeps the stored status when the form has
// none. Either way the quote is linked to a CRM client.
func (s *Service) SaveQuote(ctx context.Context, in quote.Input) (quote.Quote, error) {
	q, _, err := s.UpsertQuote(ctx, in)
	return q, err
}

// UpsertQuote is SaveQuote that also reports whether the quote was created.
func (s *Service) UpsertQuote(ctx context.Context, in quote.Input) (quote.Quote, bool, error) {
	if err := in.Validate(); err != nil {
		return quote.Quote{}, false, err
	}

	var existing *quote.Quote
	if in.ID != "" {
		q, err := s.store.Quote(ctx, in.ID)
		switch {
		case err == nil:
			existing = &q
		case !apperr.IsKind(err, apperr.KindNotFound):
			return quote.Quote{}, false, err
		}
	} else {
		id, err := s.store.NextQuoteID(ctx)
		if err != nil {
			return quote.Quote{}, false, err
		}
		in.ID = id
	}

	var saved quote.Quote
	var err error
	if existing != nil {
		saved, err = s.store.UpdateQuote(ctx, in.ID, func(q *quote.Quote) error {
			next := in.Build()
			if in.Status == "" {
				next.Status = q.Status
			}
			*q = q.Merge(next)
			return nil
		})
	} else {
		saved, err = s.store.SaveQuote(ctx, in.Build())
	}
	if err != nil {
		return quote.Quote{}, false, err
	}

	if existing == nil {
		if err := s.store.IncrementStat(ctx, store.StatQuotesCreated, 1); err != nil {
			return quote.Quote{}, false, err
		}
	}
	if err := s.linkClient(ctx, saved, existing == nil); err != nil {
		return quote.Quote{}, false, err
	}
	s.log.WithContext(ctx).Info("quote_saved", slog.String("quote_id", saved.ID), slog.Bool("new", existing == nil))
	return saved, existing == nil, nil
}

// linkClient finds the client the quote refers to, creating a lead when there
// is none, and records the quote on its timeline.
func (s *Service) linkClient(ctx context.Context, q quote.Quote, created bool) error {
	if strings.TrimSpace(q.Client.Name) == "" {
		return nil
	}
	now := s.now()
	return s.store.MutateClients(ctx, func(clients []client.Client) ([]client.Client, error) {
		i := client.FindForQuote(clients, q.Client, s.region)
		if i < 0 {
			c := client.New(client.Input{
				Name:   q.Client.Name,
				Email:  q.Client.Email,
				Phone:  q.Client.Phone,
				Status: client.StatusLead,
			}, now)
			clients = append([]client.Client{c}, clients...)
			i = 0
		}
		desc := fmt.Sprintf("Cotización %s creada", q.ID)
		if !created {
			desc = fmt.Sprintf("Cotización %s actualizada", q.ID)
		}
		clients[i].AddEvent(client.Event{
			Type:        client.EventQuote,
			Description: desc,
			Metadata:    map[string]interface{}{"quoteId": q.ID},
		}, now)
		return clients, nil
	})
}

func (s *Service) DeleteQuote(ctx context.Context, id string) error {
	return s.store.DeleteQuote(ctx, id)
}

// UpdateStatus sets the status; accepting a quote adds it to the sales stats.
func (s *Service) UpdateStatus(ctx context.Context, id string, status quote.Status) (quote.Quote, error) {
	if !status.Valid() {
		return quote.Quote{}, apperr.Validation("Estado de cotización inválido")
	}
	q, err := s.store.UpdateQuote(ctx, id, func(q *quote.Quote) error {
		q.Status = status
		return nil
	})
	if err != nil {
		return quote.Quote{}, err
	}
	if status == quote.StatusAccepted {
		if err := s.store.IncrementStat(ctx, store.StatQuotesAccepted, 1); err != nil {
			return quote.Quote{}, err
		}
		if err := s.store.IncrementStat(ctx, store.StatTotalValue, q.Total); err != nil {
			return quote.Quote{}, err
		}
	}
	return q, nil
}

// Duplicate copies a quote under a fresh id as a draft without history.
func (s *Service) Duplicate(ctx context.Context, id string) (quote.Quote, error) {
	src, err := s.store.Quote(ctx, id)
	if err != nil {
		return quote.Quote{}, err
	}
	newID, err := s.store.NextQuoteID(ctx)
	if err != nil {
		return quote.Quote{}, err
	}
	dup := src.Snapshot()
	dup.ID = newID
	dup.Status = quote.StatusDraft
	dup.Version = 0
	dup.Signature = nil
	dup.LastStageChange = nil
	dup.LastContact = nil
	return s.store.SaveQuote(ctx, dup)
}

type VersionRequest struct {
	Patch quote.Patch `json:"changes"`
	Note  string      `json:"note"`
}

func (s *Service) CreateVersion(ctx context.Context, id string, req VersionRequest) (quote.Quote, error) {
	now := s.now()
	return s.store.UpdateQuote(ctx, id, func(q *quote.Quote) error {
		if req.Patch.Status != nil && !req.Patch.Status.Valid() {
			return apperr.Validation("Estado de cotización inválido")
		}
		quote.NewVersion(q, req.Patch, req.Note, now)
		return nil
	})
}

func (s *Service) History(ctx context.Context, id string) ([]quote.Version, error) {
	q, err := s.store.Quote(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Versions == nil {
		return []quote.Version{}, nil
	}
	return q.Versions, nil
}

func (s *Service) ApplyDiscount(ctx context.Context, id string, d quote.DiscountRequest) (quote.Quote, error) {
	now := s.now()
	return s.store.UpdateQuote(ctx, id, func(q *quote.Quote) error {
		return quote.ApplyDiscount(q, d, now)
	})
}

func (s *Service) AddClause(ctx context.Context, id, clauseType, optionID string) (quote.Quote, error) {
	cl, err := s.catalog.Clause(clauseType, optionID)
	if err != nil {
		return quote.Quote{}, err
	}
	return s.store.UpdateQuote(ctx, id, func(q *quote.Quote) error {
		if q.Clauses == nil {
			q.Clauses = map[string]quote.Clause{}
		}
		q.Clauses[clauseType] = cl
		return nil
	})
}

func (s *Service) RequestSignature(ctx context.Context, id, email string) (quote.Quote, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return quote.Quote{}, apperr.Validation("Email del cliente es requerido para la firma")
	}
	now := s.now()
	return s.store.UpdateQuote(ctx, id, func(q *quote.Quote) error {
		quote.RequestSignature(q, email, s.signBaseURL, now)
		return nil
	})
}

func (s *Service) Compare(ctx context.Context, ids []string) (quote.Comparison, error) {
	if len(ids) < 2 {
		return quote.Comparison{}, apperr.Validation("Selecciona al menos 2 cotizaciones")
	}
	all, err := s.store.Quotes(ctx)
	if err != nil {
		return quote.Comparison{}, err
	}
	byID := make(map[string]quote.Quote, len(all))
	for _, q := range all {
		byID[q.ID] = q
	}
	picked := make([]quote.Quote, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return quote.Comparison{}, apperr.NotFound("Cotización no encontrada").WithOp(id)
		}
		picked = append(picked, q)
	}
	return quote.Compare(picked, s.now()), nil
}

type Conversion struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
}

// ConvertCurrency uses the stored USD→MXN exchange rate.
func (s *Service) ConvertCurrency(ctx context.Context, amount float64, from, to string) (Conversion, error) {
	cfg, err := s.store.Config(ctx)
	if err != nil {
		return Conversion{}, err
	}
	rates := quote.Currencies(cfg.Quotes.ExchangeRate)
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if _, ok := rates[from]; !ok {
		return Conversion{}, apperr.Validation("Moneda no soportada: " + from)
	}
	if _, ok := rates[to]; !ok {
		return Conversion{}, apperr.Validation("Moneda no soportada: " + to)
	}
	result := quote.ConvertCurrency(amount, from, to, cfg.Quotes.ExchangeRate)
	return Conversion{Amount: amount, From: from, To: to, Result: result, Formatted: quote.FormatCurrency(result, to)}, nil
}

func (s *Service) Expirations(ctx context.Context) ([]quote.ExpirationAlert, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	alerts := quote.CheckExpirations(quotes, s.now())
	if alerts == nil {
		alerts = []quote.ExpirationAlert{}
	}
	return alerts, nil
}

func (s *Service) ApplyTemplate(quoteType string) (messaging.TemplateFill, error) {
	return s.catalog.ApplyTemplate(quoteType)
}

// QuotePDF renders the stored quote with the agency branding.
func (s *Service) QuotePDF(ctx context.Context, id string) (quote.Quote, []byte, error) {
	if s.pdf == nil {
		return quote.Quote{}, nil, apperr.Unavailable("Generador de PDF no configurado")
	}
	q, err := s.store.Quote(ctx, id)
	if err != nil {
		return quote.Quote{}, nil, err
	}
	b, err := s.pdfBusiness(ctx)
	if err != nil {
		return quote.Quote{}, nil, err
	}
	out, err := s.pdf.Generate(q, b)
	if err != nil {
		return quote.Quote{}, nil, apperr.Internal("No se pudo generar el PDF", err)
	}
	return q, out, nil
}

// EmailQuote sends the PDF to to, or to the quote's client email.
func (s *Service) EmailQuote(ctx context.Context, id, to string) error {
	if s.mailer == nil || !s.mailer.Enabled() {
		return apperr.Unavailable("El envío por email no está configurado")
	}
	q, doc, err := s.QuotePDF(ctx, id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		to = q.Client.Email
	}
	if strings.TrimSpace(to) == "" {
		return apperr.Validation("La cotización no tiene email de cliente")
	}
	b, _, err := s.business(ctx)
	if err != nil {
		return err
	}
	if err := s.mailer.SendQuote(ctx, to, q, messaging.QuoteText(q, b), doc); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("quote_emailed", slog.String("quote_id", id))
	return s.recordContact(ctx, q, client.EventEmail, fmt.Sprintf("Cotización %s enviada por email", q.ID))
}

type WhatsAppMessage struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

func (s *Service) WhatsApp(ctx context.Context, id string) (WhatsAppMessage, error) {
	q, err := s.store.Quote(ctx, id)
	if err != nil {
		return WhatsAppMessage{}, err
	}
	b, _, err := s.business(ctx)
	if err != nil {
		return WhatsAppMessage{}, err
	}
	text := messaging.QuoteText(q, b)
	return WhatsAppMessage{Text: text, Link: messaging.WhatsAppLink(q.Client.Phone, text, s.region)}, nil
}

// SendWhatsApp builds the message and marks the quote as sent.
func (s *Service) SendWhatsApp(ctx context.Context, id string) (WhatsAppMessage, quote.Quote, error) {
	msg, err := s.WhatsApp(ctx, id)
	if err != nil {
		return WhatsAppMessage{}, quote.Quote{}, err
	}
	now := s.now()
	q, err := s.store.UpdateQuote(ctx, id, func(q *quote.Quote) error {
		q.Status = quote.StatusSent
		q.LastContact = &now
		return nil
	})
	if err != nil {
		return WhatsAppMessage{}, quote.Quote{}, err
	}
	if err := s.store.IncrementStat(ctx, store.StatQuotesSent, 1); err != nil {
		return WhatsAppMessage{}, quote.Quote{}, err
	}
	return msg, q, nil
}

// recordContact stamps lastContact and notes the contact on the client timeline.
func (s *Service) recordContact(ctx context.Context, q quote.Quote, eventType, desc string) error {
	now := s.now()
	if _, err := s.store.UpdateQuote(ctx, q.ID, func(q *quote.Quote) error {
		q.LastContact = &now
		return nil
	}); err != nil {
		return err
	}
	return s.store.MutateClients(ctx, func(clients []client.Client) ([]client.Client, error) {
		if i := client.FindForQuote(clients, q.Client, s.region); i >= 0 {
			clients[i].AddEvent(client.Event{Type: eventType, Description: desc, Metadata: map[string]interface{}{"quoteId": q.ID}}, now)
		}
		return clients, nil
	})
}
