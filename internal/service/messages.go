package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/ai/quoter"
	"mdr-travel/go_backend/internal/domain/messaging"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/infra/objectstore"
	"mdr-travel/go_backend/internal/store"
)

type FillRequest struct {
	Template string            `json:"template"`
	QuoteID  string            `json:"quoteId"`
	Vars     map[string]string `json:"vars"`
}

type FilledMessage struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// FillMessage fills a message template. With a quote id the quote's fields
// provide the variables and a WhatsApp link to its client is included;
// explicit vars win over both.
func (s *Service) FillMessage(ctx context.Context, req FillRequest) (FilledMessage, error) {
	vars := map[string]string{}
	var phone string
	if req.QuoteID != "" {
		q, err := s.store.Quote(ctx, req.QuoteID)
		if err != nil {
			return FilledMessage{}, err
		}
		cfg, err := s.store.Config(ctx)
		if err != nil {
			return FilledMessage{}, err
		}
		vars = messaging.QuoteVars(q, cfg.Quotes.Currency)
		phone = q.Client.Phone
	}
	for k, v := range req.Vars {
		vars[k] = v
	}
	text, err := s.catalog.Fill(req.Template, vars)
	if err != nil {
		return FilledMessage{}, err
	}
	out := FilledMessage{Text: text}
	if req.QuoteID != "" {
		out.Link = messaging.WhatsAppLink(phone, text, s.region)
	}
	return out, nil
}

func (s *Service) FollowUps(ctx context.Context) ([]messaging.FollowUp, error) {
	quotes, err := s.store.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	out := messaging.FollowUps(quotes, s.now())
	if out == nil {
		out = []messaging.FollowUp{}
	}
	return out, nil
}

func (s *Service) ExpandShortcut(text string) string {
	return s.catalog.ExpandShortcut(text)
}

func (s *Service) AutoResponse(message string) (string, bool) {
	return s.catalog.AutoResponse(message)
}

// ScheduleMessage queues a text for later; a template key is filled from
// the referenced quote.
func (s *Service) ScheduleMessage(ctx context.Context, m store.ScheduledMessage) (store.ScheduledMessage, error) {
	if strings.TrimSpace(m.Body) == "" && m.Template != "" {
		filled, err := s.FillMessage(ctx, FillRequest{Template: m.Template, QuoteID: m.QuoteID})
		if err != nil {
			return store.ScheduledMessage{}, err
		}
		m.Body = filled.Text
	}
	return s.store.ScheduleMessage(ctx, m)
}

// GenerateAIQuote asks the model for a draft. The key and model stored in the
// settings win over the server defaults.
func (s *Service) GenerateAIQuote(ctx context.Context, req quoter.Request) (quote.Input, error) {
	if s.quoter == nil {
		return quote.Input{}, apperr.Unavailable("Cotizador IA no configurado")
	}
	cfg, err := s.store.Config(ctx)
	if err != nil {
		return quote.Input{}, err
	}
	req.APIKey = strings.TrimSpace(cfg.AI.APIKey)
	if req.APIKey == "" {
		req.APIKey = s.openAIKey
	}
	if req.Model == "" {
		req.Model = cfg.AI.Model
	}
	if req.Model == "" {
		req.Model = s.openAIModel
	}
	return s.quoter.Generate(ctx, req)
}

type SnapshotResult struct {
	Key    string `json:"key"`
	Quotes int    `json:"quotes"`
	Bytes  int    `json:"bytes"`
}

// Snapshot exports the backup document to object storage.
func (s *Service) Snapshot(ctx context.Context) (SnapshotResult, error) {
	if s.snapshots == nil {
		return SnapshotResult{}, apperr.Unavailable("El almacenamiento de respaldos no está configurado")
	}
	backup, err := s.store.Snapshot(ctx)
	if err != nil {
		return SnapshotResult{}, err
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return SnapshotResult{}, apperr.Internal("No se pudo exportar", err)
	}

	key, err := s.snapshots.Put(ctx, objectstore.SnapshotName(s.now()), data)
	if err != nil {
		return SnapshotResult{}, err
	}
	s.log.WithContext(ctx).Info("backup_snapshot", slog.String("key", key), slog.Int("bytes", len(data)))
	return SnapshotResult{Key: key, Quotes: len(backup.Quotes), Bytes: len(data)}, nil
}
