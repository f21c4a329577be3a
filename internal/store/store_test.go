package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/client"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/infra/kv/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(memory.New(), Options{Now: c.now}), c
}

func sampleQuote(id string) quote.Quote {
	return quote.Quote{
		ID:      id,
		Client:  quote.Client{Name: "Ana"},
		Product: "Crucero",
		Total:   3000,
		Deposit: 300,
		Months:  9,
	}
}

func TestNextQuoteIDIncrementsCounter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.NextQuoteID(ctx)
	if err != nil {
		t.Fatalf("next id: %v", err)
	}
	second, _ := s.NextQuoteID(ctx)
	if first != "MDR-2025-0001" || second != "MDR-2025-0002" {
		t.Fatalf("expected MDR-2025-0001/0002, got %s %s", first, second)
	}
	cfg, _ := s.Config(ctx)
	if cfg.Quotes.NextNumber != 3 {
		t.Fatalf("expected nextNumber 3, got %d", cfg.Quotes.NextNumber)
	}
}

func TestSaveQuoteNewPrependsWithEqualTimestamps(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveQuote(ctx, sampleQuote("A")); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := s.SaveQuote(ctx, sampleQuote("B"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved.CreatedAt.Equal(saved.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt, got %v %v", saved.CreatedAt, saved.UpdatedAt)
	}
	if saved.Monthly != 300 {
		t.Fatalf("expected monthly 300, got %v", saved.Monthly)
	}
	quotes, _ := s.Quotes(ctx)
	if len(quotes) != 2 || quotes[0].ID != "B" {
		t.Fatalf("expected B first, got %+v", quotes)
	}
}

func TestSaveQuoteExistingUpdatesInPlace(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	s.SaveQuote(ctx, sampleQuote("A"))
	first, _ := s.SaveQuote(ctx, sampleQuote("B"))

	c.advance(time.Hour)
	q := sampleQuote("A")
	q.Total = 4000
	q.CreatedAt = time.Time{}
	updated, err := s.SaveQuote(ctx, q)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected refreshed updatedAt, got created=%v updated=%v", updated.CreatedAt, updated.UpdatedAt)
	}
	quotes, _ := s.Quotes(ctx)
	if len(quotes) != 2 || quotes[0].ID != first.ID || quotes[1].ID != "A" {
		t.Fatalf("expected order [B A], got %s %s", quotes[0].ID, quotes[1].ID)
	}
	if quotes[1].Total != 4000 || quotes[1].Monthly != 412 {
		t.Fatalf("expected total 4000 monthly 412, got %v %v", quotes[1].Total, quotes[1].Monthly)
	}
}

func TestQuoteListNeverExceedsCap(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < MaxQuotes+5; i++ {
		if _, err := s.SaveQuote(ctx, sampleQuote(fmt.Sprintf("Q%d", i))); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	quotes, _ := s.Quotes(ctx)
	if len(quotes) != MaxQuotes {
		t.Fatalf("expected %d quotes, got %d", MaxQuotes, len(quotes))
	}
	if quotes[0].ID != fmt.Sprintf("Q%d", MaxQuotes+4) {
		t.Fatalf("expected newest first, got %s", quotes[0].ID)
	}
}

func TestDeleteQuote(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.SaveQuote(ctx, sampleQuote("A"))

	if err := s.DeleteQuote(ctx, "A"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Quote(ctx, "A"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteQuote(ctx, "A"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestToggleFavoriteTwiceRestoresMembership(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	member, _ := s.ToggleFavorite(ctx, "A")
	if !member {
		t.Fatalf("expected A to become favorite")
	}
	member, _ = s.ToggleFavorite(ctx, "A")
	if member {
		t.Fatalf("expected A removed")
	}
	if fav, _ := s.IsFavorite(ctx, "A"); fav {
		t.Fatalf("expected original membership")
	}
}

func TestFavoritesAndRecentsCaps(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		s.ToggleFavorite(ctx, fmt.Sprintf("F%d", i))
		s.AddRecent(ctx, fmt.Sprintf("R%d", i))
	}
	s.AddRecent(ctx, "R15")

	favs, _ := s.Favorites(ctx)
	if len(favs) != MaxFavorites || favs[0] != "F19" {
		t.Fatalf("expected 15 favorites led by F19, got %v", favs)
	}
	recents, _ := s.Recents(ctx)
	if len(recents) != MaxRecents || recents[0] != "R15" || recents[1] != "R19" {
		t.Fatalf("unexpected recents %v", recents)
	}
	seen := map[string]bool{}
	for _, r := range recents {
		if seen[r] {
			t.Fatalf("duplicate recent %s", r)
		}
		seen[r] = true
	}
}

func TestToggleVote(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	v, _ := s.ToggleVote(ctx, "r1", 1)
	if v.Up != 1 || v.UserVote != 1 {
		t.Fatalf("expected up vote, got %+v", v)
	}
	v, _ = s.ToggleVote(ctx, "r1", -1)
	if v.Up != 0 || v.Down != 1 || v.UserVote != -1 {
		t.Fatalf("expected moved vote, got %+v", v)
	}
	v, _ = s.ToggleVote(ctx, "r1", -1)
	if v.Down != 0 || v.UserVote != 0 {
		t.Fatalf("expected retracted vote, got %+v", v)
	}
	if _, err := s.ToggleVote(ctx, "r1", 2); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestRemindersCapAndDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < MaxReminders+3; i++ {
		s.AddReminder(ctx, Reminder{Title: fmt.Sprintf("r%d", i), TypeLabel: "Pago final"})
	}
	list, _ := s.Reminders(ctx)
	if len(list) != MaxReminders || list[0].TypeIcon != "💳" {
		t.Fatalf("unexpected reminders len=%d first=%+v", len(list), list[0])
	}
	if err := s.DeleteReminder(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = s.Reminders(ctx)
	if list[0].Title != fmt.Sprintf("r%d", MaxReminders+1) {
		t.Fatalf("expected second newest first, got %s", list[0].Title)
	}
	if err := s.DeleteReminder(ctx, 99); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatsAndMonthlyGoalDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.IncrementStat(ctx, StatTotalValue, 2500)
	s.IncrementStat(ctx, StatQuotesCreated, 1)
	stats, _ := s.Stats(ctx)
	if stats[StatTotalValue] != 2500 || stats[StatQuotesCreated] != 1 || stats[StatQuotesSent] != 0 {
		t.Fatalf("unexpected stats %v", stats)
	}

	goal, _ := s.MonthlyGoal(ctx)
	if goal.Target != DefaultMonthlyTarget || goal.Month != "2025-06" {
		t.Fatalf("unexpected default goal %+v", goal)
	}
	if _, err := s.SetMonthlyGoal(ctx, 0, ""); err == nil {
		t.Fatalf("expected error for zero target")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.SaveQuote(ctx, sampleQuote("A"))
	s.SaveClient(ctx, client.New(client.Input{Name: "Ana"}, s.Now()))
	s.ToggleFavorite(ctx, "A")
	s.SetTheme(ctx, "dark")

	data, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"version\": \"2.0\"") {
		t.Fatalf("expected indented version 2.0, got %s", data[:40])
	}

	other, _ := newTestStore(t)
	res, err := other.Import(ctx, data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Quotes != 1 || res.Clients != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if theme, _ := other.Theme(ctx); theme != "dark" {
		t.Fatalf("expected dark theme, got %s", theme)
	}
	if fav, _ := other.IsFavorite(ctx, "A"); !fav {
		t.Fatalf("expected favorite imported")
	}
}

func TestImportRejectsIncompleteBackup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Import(ctx, []byte("not json")); !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if _, err := s.Import(ctx, []byte(`{"version":"2.0","quotes":[]}`)); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportAppliesCaps(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	quotes := make([]quote.Quote, 0, 120)
	for i := 0; i < 120; i++ {
		quotes = append(quotes, sampleQuote(fmt.Sprintf("Q%d", i)))
	}
	favs := make([]string, 30)
	for i := range favs {
		favs[i] = fmt.Sprintf("Q%d", i)
	}
	data, _ := json.Marshal(map[string]interface{}{
		"version":   "2.0",
		"quotes":    quotes,
		"clients":   []client.Client{},
		"favorites": favs,
	})
	if _, err := s.Import(ctx, data); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, _ := s.Quotes(ctx)
	if len(got) != MaxQuotes {
		t.Fatalf("expected %d quotes, got %d", MaxQuotes, len(got))
	}
	f, _ := s.Favorites(ctx)
	if len(f) != MaxFavorites {
		t.Fatalf("expected %d favorites, got %d", MaxFavorites, len(f))
	}
}

func TestQuotaExceededTrimsQuotesAndRetries(t *testing.T) {
	c := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	backend := memory.New()
	ctx := context.Background()

	loader := New(backend, Options{Now: c.now})
	for i := 0; i < 60; i++ {
		q := sampleQuote(fmt.Sprintf("Q%d", i))
		q.Includes = strings.Repeat("x", 400)
		loader.SaveQuote(ctx, q)
	}
	usage, _ := loader.Usage(ctx)

	s := New(backend, Options{Now: c.now, MaxBytes: usage.Used + 200})
	if err := s.SaveChecklist(ctx, map[string]bool{strings.Repeat("k", 400): true}); err != nil {
		t.Fatalf("expected write to succeed after trimming, got %v", err)
	}
	quotes, _ := s.Quotes(ctx)
	if len(quotes) != QuotaKeepQuote {
		t.Fatalf("expected %d quotes kept, got %d", QuotaKeepQuote, len(quotes))
	}
	if quotes[0].ID != "Q59" {
		t.Fatalf("expected newest quotes kept, got %s", quotes[0].ID)
	}
}

func TestQuotaTrimKeepsUpdatedOldQuote(t *testing.T) {
	c := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	backend := memory.New()
	ctx := context.Background()

	loader := New(backend, Options{Now: c.now})
	for i := 0; i < 60; i++ {
		q := sampleQuote(fmt.Sprintf("Q%d", i))
		q.Includes = strings.Repeat("x", 400)
		loader.SaveQuote(ctx, q)
	}
	usage, _ := loader.Usage(ctx)

	s := New(backend, Options{Now: c.now, MaxBytes: usage.Used + 10})
	notes := strings.Repeat("n", 200)
	if _, err := s.UpdateQuote(ctx, "Q0", func(q *quote.Quote) error {
		q.NotesInternal = notes
		return nil
	}); err != nil {
		t.Fatalf("expected update to succeed after trimming, got %v", err)
	}

	got, err := s.Quote(ctx, "Q0")
	if err != nil {
		t.Fatalf("expected updated quote to survive the trim, got %v", err)
	}
	if got.NotesInternal != notes {
		t.Fatalf("expected notes to be stored, got %q", got.NotesInternal)
	}
	quotes, _ := s.Quotes(ctx)
	if len(quotes) != QuotaKeepQuote {
		t.Fatalf("expected %d quotes kept, got %d", QuotaKeepQuote, len(quotes))
	}
	if quotes[0].ID != "Q59" {
		t.Fatalf("expected newest quote first, got %s", quotes[0].ID)
	}
}

func TestQuotaFullReportsUnavailable(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	s := New(backend, Options{MaxBytes: 10})

	_, err := s.SaveQuote(ctx, sampleQuote("Q1"))
	if !apperr.IsKind(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if _, err := s.Quote(ctx, "Q1"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected quote not stored, got %v", err)
	}
}

func TestClearAndUsage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.SaveQuote(ctx, sampleQuote("A"))

	usage, _ := s.Usage(ctx)
	if usage.Used == 0 || usage.Max != DefaultMaxBytes {
		t.Fatalf("unexpected usage %+v", usage)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	usage, _ = s.Usage(ctx)
	if usage.Used != 0 {
		t.Fatalf("expected empty store, got %+v", usage)
	}
}

func TestSaveClientAssignsIDAndKeepsCreatedAt(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveClient(ctx, client.Client{Name: "Luis"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(saved.ID, "CLI-") {
		t.Fatalf("expected CLI- id, got %s", saved.ID)
	}
	c.advance(time.Minute)
	saved.Notes = "llamar"
	again, _ := s.SaveClient(ctx, saved)
	if !again.CreatedAt.Equal(saved.CreatedAt) || !again.UpdatedAt.After(saved.CreatedAt) {
		t.Fatalf("unexpected timestamps %+v", again)
	}
	if err := s.DeleteClient(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Client(ctx, saved.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
