// Package store is the typed persistence layer. Every document lives under a
// "mdr_" key as JSON, the same layout the browser app kept in localStorage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf16"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/infra/kv"
	"mdr-travel/go_backend/internal/logger"
)

const (
	Prefix        = "mdr_"
	FormatVersion = "2.0"

	DefaultMaxBytes = 5 * 1024 * 1024

	MaxQuotes      = 100
	MaxFavorites   = 15
	MaxRecents     = 8
	MaxReminders   = 50
	QuotaKeepQuote = 30
)

const (
	keyConfig        = "config"
	keyQuotes        = "quotes"
	keyClients       = "clients"
	keyFavorites     = "favorites"
	keyRecents       = "recents"
	keyChecklist     = "checklist"
	keyStats         = "stats"
	keyOnboarding    = "onboarding"
	keyTheme         = "theme"
	keyResponseVotes = "responseVotes"
	keyLastTab       = "lastTab"
	keyReminders     = "reminders"
	keyMonthlyGoal   = "monthlyGoal"
	keyBranding      = "customBranding"
	keyLanguage      = "language"
	keyScheduled     = "scheduledMessages"
)

type Options struct {
	// MaxBytes bounds the UTF-16 size of all namespaced values. Zero disables the check.
	MaxBytes int64
	Now      func() time.Time
	Logger   *logger.Logger
}

// Store serializes read-modify-write sequences; the backend only guarantees
// single-key atomicity.
type Store struct {
	mu       sync.Mutex
	backend  kv.Backend
	maxBytes int64
	now      func() time.Time
	log      *logger.Logger
}

func New(backend kv.Backend, opts Options) *Store {
	s := &Store{
		backend:  backend,
		maxBytes: opts.MaxBytes,
		now:      opts.Now,
		log:      opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

func (s *Store) Now() time.Time { return s.now() }

func (s *Store) Close() error { return s.backend.Close() }

func fullKey(name string) string { return Prefix + name }

// get decodes the document under name into dst. It reports false when the key
// is missing or holds invalid JSON, leaving dst untouched.
func (s *Store) get(ctx context.Context, name string, dst interface{}) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, fullKey(name))
	if err != nil {
		s.log.StoreError("get "+name, err)
		return false, apperr.Wrap(apperr.KindUnavailable, "No se pudo leer el almacenamiento", err).WithOp("store.get")
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn("store_decode_failed", slog.String("key", name), slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

// put writes v under name. A quota overflow trims stored quotes to the newest
// QuotaKeepQuote and retries once.
func (s *Store) put(ctx context.Context, name string, v interface{}) error {
	return s.putKeeping(ctx, name, v, "")
}

// putKeeping is put for the quote list being written with keep as the quote
// just changed. An overflow never trims keep away.
func (s *Store) putKeeping(ctx context.Context, name string, v interface{}, keep string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperr.Internal("No se pudo serializar "+name, err)
	}
	err = s.write(ctx, name, raw)
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		return err
	}

	s.log.Warn("store_quota_exceeded", slog.String("key", name), slog.Int64("max_bytes", s.maxBytes))
	if name == keyQuotes {
		if trimmed, ok := trimQuotesKeeping(raw, keep); ok {
			raw = trimmed
		}
	} else if err := s.trimQuotesForSpace(ctx); err != nil {
		return err
	}

	if err := s.write(ctx, name, raw); err != nil {
		if errors.Is(err, kv.ErrQuotaExceeded) {
			return apperr.Wrap(apperr.KindUnavailable, "Espacio de almacenamiento lleno", err).WithOp("store.put")
		}
		return err
	}
	return nil
}

// trimQuotesKeeping cuts an encoded quote list to QuotaKeepQuote entries. The
// quote with id keep replaces the oldest survivor when it would be cut.
func trimQuotesKeeping(raw []byte, keep string) ([]byte, bool) {
	var quotes []json.RawMessage
	if json.Unmarshal(raw, &quotes) != nil || len(quotes) <= QuotaKeepQuote {
		return nil, false
	}
	kept := append([]json.RawMessage(nil), quotes[:QuotaKeepQuote]...)
	if keep != "" {
		for i := QuotaKeepQuote; i < len(quotes); i++ {
			var head struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(quotes[i], &head) == nil && head.ID == keep {
				kept[QuotaKeepQuote-1] = quotes[i]
				break
			}
		}
	}
	out, err := json.Marshal(kept)
	if err != nil {
		return nil, false
	}
	return out, true
}

func (s *Store) trimQuotesForSpace(ctx context.Context) error {
	var quotes []json.RawMessage
	if ok, err := s.get(ctx, keyQuotes, &quotes); err != nil || !ok {
		return err
	}
	if len(quotes) <= QuotaKeepQuote {
		return nil
	}
	raw, err := json.Marshal(quotes[:QuotaKeepQuote])
	if err != nil {
		return apperr.Internal("No se pudo recortar cotizaciones", err)
	}
	s.log.Warn("store_quotes_trimmed", slog.Int("kept", QuotaKeepQuote), slog.Int("dropped", len(quotes)-QuotaKeepQuote))
	return s.setRaw(ctx, keyQuotes, raw)
}

func (s *Store) write(ctx context.Context, name string, raw []byte) error {
	if s.maxBytes > 0 {
		used, err := s.usedExcept(ctx, fullKey(name))
		if err != nil {
			s.log.StoreError("usage", err)
			return apperr.Wrap(apperr.KindUnavailable, "No se pudo calcular el uso", err)
		}
		if used+utf16Size(raw) > s.maxBytes {
			return kv.ErrQuotaExceeded
		}
	}
	return s.setRaw(ctx, name, raw)
}

func (s *Store) setRaw(ctx context.Context, name string, raw []byte) error {
	if err := s.backend.Set(ctx, fullKey(name), raw); err != nil {
		if errors.Is(err, kv.ErrQuotaExceeded) {
			return err
		}
		s.log.StoreError("set "+name, err)
		return apperr.Wrap(apperr.KindUnavailable, "No se pudo escribir el almacenamiento", err).WithOp("store.set")
	}
	return nil
}

func (s *Store) usedExcept(ctx context.Context, skip string) (int64, error) {
	keys, err := s.backend.Keys(ctx, Prefix)
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}
	var total int64
	for _, k := range keys {
		if k == skip {
			continue
		}
		raw, ok, err := s.backend.Get(ctx, k)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", k, err)
		}
		if ok {
			total += utf16Size(raw)
		}
	}
	return total, nil
}

// utf16Size is the browser's accounting: two bytes per UTF-16 code unit.
func utf16Size(raw []byte) int64 {
	return int64(len(utf16.Encode([]rune(string(raw))))) * 2
}

type Usage struct {
	Used       int64   `json:"used"`
	UsedMB     float64 `json:"usedMB"`
	Max        int64   `json:"max"`
	Percentage float64 `json:"percentage"`
}

func (s *Store) Usage(ctx context.Context) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, err := s.usedExcept(ctx, "")
	if err != nil {
		return Usage{}, apperr.Wrap(apperr.KindUnavailable, "No se pudo calcular el uso", err)
	}
	limit := s.maxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	return Usage{
		Used:       used,
		UsedMB:     round(float64(used)/1024/1024, 2),
		Max:        limit,
		Percentage: round(float64(used)/float64(limit)*100, 1),
	}, nil
}

// Clear removes every namespaced key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.backend.Keys(ctx, Prefix)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "No se pudo listar el almacenamiento", err)
	}
	for _, k := range keys {
		if err := s.backend.Delete(ctx, k); err != nil {
			s.log.StoreError("clear", err)
			return apperr.Wrap(apperr.KindUnavailable, "No se pudo limpiar el almacenamiento", err)
		}
	}
	s.log.Info("store_cleared", slog.Int("keys", len(keys)))
	return nil
}
