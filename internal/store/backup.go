package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/client"
	"mdr-travel/go_backend/internal/domain/quote"
)

// Backup is the export document shared with the browser app.
type Backup struct {
	Version       string                `json:"version"`
	ExportedAt    time.Time             `json:"exportedAt"`
	Config        Config                `json:"config"`
	Quotes        []quote.Quote         `json:"quotes"`
	Clients       []client.Client       `json:"clients"`
	Favorites     []string              `json:"favorites"`
	Recents       []string              `json:"recents"`
	Checklist     map[string]bool       `json:"checklist"`
	Stats         Stats                 `json:"stats"`
	Onboarding    bool                  `json:"onboarding"`
	Theme         string                `json:"theme"`
	ResponseVotes map[string]VoteStatus `json:"responseVotes"`
	LastTab       string                `json:"lastTab"`
}

func (s *Store) Snapshot(ctx context.Context) (Backup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := Backup{Version: FormatVersion, ExportedAt: s.now(), Theme: "light", Checklist: map[string]bool{}}
	var err error
	if b.Config, err = s.config(ctx); err != nil {
		return Backup{}, err
	}
	if b.Quotes, err = s.quotes(ctx); err != nil {
		return Backup{}, err
	}
	if b.Clients, err = s.clients(ctx); err != nil {
		return Backup{}, err
	}
	if b.Favorites, err = s.stringList(ctx, keyFavorites); err != nil {
		return Backup{}, err
	}
	if b.Recents, err = s.stringList(ctx, keyRecents); err != nil {
		return Backup{}, err
	}
	if b.Stats, err = s.stats(ctx); err != nil {
		return Backup{}, err
	}
	if b.ResponseVotes, err = s.votes(ctx); err != nil {
		return Backup{}, err
	}
	for name, dst := range map[string]interface{}{
		keyChecklist:  &b.Checklist,
		keyOnboarding: &b.Onboarding,
		keyTheme:      &b.Theme,
		keyLastTab:    &b.LastTab,
	} {
		if _, err := s.get(ctx, name, dst); err != nil {
			return Backup{}, err
		}
	}
	return b, nil
}

// Export returns the backup as indented JSON.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	b, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, apperr.Internal("No se pudo exportar", err)
	}
	return out, nil
}

type ImportResult struct {
	Quotes  int `json:"quotes"`
	Clients int `json:"clients"`
}

// Import writes every section present in data. The document must carry
// version, quotes and clients; lists are trimmed to their caps.
func (s *Store) Import(ctx context.Context, data []byte) (ImportResult, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return ImportResult{}, apperr.Wrap(apperr.KindBadRequest, "Error al importar: el archivo no es JSON válido", err)
	}
	for _, required := range []string{"version", "quotes", "clients"} {
		if _, ok := sections[required]; !ok {
			return ImportResult{}, apperr.Validation("Error al importar: falta " + required)
		}
	}

	var quotes []quote.Quote
	if err := json.Unmarshal(sections["quotes"], &quotes); err != nil {
		return ImportResult{}, apperr.Wrap(apperr.KindValidation, "Error al importar: cotizaciones inválidas", err)
	}
	var clients []client.Client
	if err := json.Unmarshal(sections["clients"], &clients); err != nil {
		return ImportResult{}, apperr.Wrap(apperr.KindValidation, "Error al importar: clientes inválidos", err)
	}
	if quotes == nil {
		quotes = []quote.Quote{}
	}
	if clients == nil {
		clients = []client.Client{}
	}
	if len(quotes) > MaxQuotes {
		quotes = quotes[:MaxQuotes]
	}
	for i := range quotes {
		quotes[i].Recalculate()
	}

	writes := []struct {
		name string
		v    interface{}
	}{
		{keyQuotes, quotes},
		{keyClients, clients},
	}

	if raw, ok := sections["config"]; ok {
		cfg := DefaultConfig()
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return ImportResult{}, apperr.Wrap(apperr.KindValidation, "Error al importar: configuración inválida", err)
		}
		writes = append(writes, struct {
			name string
			v    interface{}
		}{keyConfig, cfg})
	}

	capped := map[string]int{keyFavorites: MaxFavorites, keyRecents: MaxRecents}
	for _, name := range []string{keyFavorites, keyRecents, keyChecklist, keyStats, keyOnboarding, keyTheme, keyResponseVotes, keyLastTab} {
		raw, ok := sections[name]
		if !ok {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return ImportResult{}, apperr.Wrap(apperr.KindValidation, "Error al importar: sección "+name+" inválida", err)
		}
		if limit, ok := capped[name]; ok {
			if list, ok := v.([]interface{}); ok && len(list) > limit {
				v = list[:limit]
			}
		}
		writes = append(writes, struct {
			name string
			v    interface{}
		}{name, v})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		if err := s.put(ctx, w.name, w.v); err != nil {
			return ImportResult{}, err
		}
	}
	s.log.Info("store_imported", slog.Int("quotes", len(quotes)), slog.Int("clients", len(clients)))
	return ImportResult{Quotes: len(quotes), Clients: len(clients)}, nil
}
