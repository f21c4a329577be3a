package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"mdr-travel/go_backend/internal/apperr"
)

func (s *Store) stringList(ctx context.Context, name string) ([]string, error) {
	var ids []string
	if _, err := s.get(ctx, name, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *Store) Favorites(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stringList(ctx, keyFavorites)
}

// ToggleFavorite removes id when present, otherwise prepends it. It returns
// the new membership.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.stringList(ctx, keyFavorites)
	if err != nil {
		return false, err
	}
	member := false
	if contains(favs, id) {
		favs = without(favs, id)
	} else {
		favs = append([]string{id}, favs...)
		member = true
	}
	if len(favs) > MaxFavorites {
		favs = favs[:MaxFavorites]
	}
	if err := s.put(ctx, keyFavorites, favs); err != nil {
		return false, err
	}
	return member, nil
}

func (s *Store) IsFavorite(ctx context.Context, id string) (bool, error) {
	favs, err := s.Favorites(ctx)
	return contains(favs, id), err
}

func (s *Store) Recents(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stringList(ctx, keyRecents)
}

// AddRecent moves id to the front.
func (s *Store) AddRecent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recents, err := s.stringList(ctx, keyRecents)
	if err != nil {
		return err
	}
	recents = append([]string{id}, without(recents, id)...)
	if len(recents) > MaxRecents {
		recents = recents[:MaxRecents]
	}
	return s.put(ctx, keyRecents, recents)
}

func (s *Store) Checklist(ctx context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	checklist := map[string]bool{}
	_, err := s.get(ctx, keyChecklist, &checklist)
	return checklist, err
}

func (s *Store) SaveChecklist(ctx context.Context, checklist map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if checklist == nil {
		checklist = map[string]bool{}
	}
	return s.put(ctx, keyChecklist, checklist)
}

const (
	StatQuotesCreated  = "quotesCreated"
	StatQuotesSent     = "quotesSent"
	StatQuotesAccepted = "quotesAccepted"
	StatTotalValue     = "totalValue"
)

// Stats is kept as a map so counters written by other clients survive a round trip.
type Stats map[string]float64

func defaultStats() Stats {
	return Stats{StatQuotesCreated: 0, StatQuotesSent: 0, StatQuotesAccepted: 0, StatTotalValue: 0}
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats(ctx)
}

func (s *Store) stats(ctx context.Context) (Stats, error) {
	stats := defaultStats()
	_, err := s.get(ctx, keyStats, &stats)
	return stats, err
}

func (s *Store) IncrementStat(ctx context.Context, name string, by float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.stats(ctx)
	if err != nil {
		return err
	}
	stats[name] += by
	return s.put(ctx, keyStats, stats)
}

func (s *Store) OnboardingComplete(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var done bool
	_, err := s.get(ctx, keyOnboarding, &done)
	return done, err
}

func (s *Store) CompleteOnboarding(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keyOnboarding, true)
}

var themes = map[string]bool{"light": true, "dark": true, "midnight": true}

func (s *Store) Theme(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	theme := "light"
	_, err := s.get(ctx, keyTheme, &theme)
	return theme, err
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if !themes[theme] {
		return apperr.Validation("Tema no disponible").WithDetails(theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keyTheme, theme)
}

func (s *Store) LastTab(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tab string
	_, err := s.get(ctx, keyLastTab, &tab)
	return tab, err
}

func (s *Store) SetLastTab(ctx context.Context, tab string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keyLastTab, strings.TrimSpace(tab))
}

type VoteStatus struct {
	Up       int `json:"up"`
	Down     int `json:"down"`
	UserVote int `json:"userVote"`
}

func (s *Store) votes(ctx context.Context) (map[string]VoteStatus, error) {
	votes := map[string]VoteStatus{}
	_, err := s.get(ctx, keyResponseVotes, &votes)
	return votes, err
}

func (s *Store) VoteStatus(ctx context.Context, responseID string) (VoteStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	votes, err := s.votes(ctx)
	return votes[responseID], err
}

// ToggleVote records value (+1 or -1). Repeating the current vote retracts it;
// the opposite value moves it.
func (s *Store) ToggleVote(ctx context.Context, responseID string, value int) (VoteStatus, error) {
	if value != 1 && value != -1 {
		return VoteStatus{}, apperr.Validation("El voto debe ser 1 o -1")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	votes, err := s.votes(ctx)
	if err != nil {
		return VoteStatus{}, err
	}
	v := votes[responseID]
	switch v.UserVote {
	case 1:
		v.Up--
	case -1:
		v.Down--
	}
	if v.UserVote == value {
		v.UserVote = 0
	} else {
		v.UserVote = value
		if value == 1 {
			v.Up++
		} else {
			v.Down++
		}
	}
	votes[responseID] = v
	if err := s.put(ctx, keyResponseVotes, votes); err != nil {
		return VoteStatus{}, err
	}
	return v, nil
}

type Reminder struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	TypeLabel string `json:"typeLabel"`
	TypeIcon  string `json:"typeIcon"`
	Message   string `json:"message"`
}

func ReminderIcon(typeLabel string) string {
	t := strings.ToLower(typeLabel)
	switch {
	case strings.Contains(t, "pago"):
		return "💳"
	case strings.Contains(t, "check"):
		return "✅"
	case strings.Contains(t, "fast"), strings.Contains(t, "lightning"):
		return "⚡"
	case strings.Contains(t, "vuelo"):
		return "✈️"
	}
	return "⏰"
}

func (s *Store) reminders(ctx context.Context) ([]Reminder, error) {
	var reminders []Reminder
	if _, err := s.get(ctx, keyReminders, &reminders); err != nil {
		return nil, err
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	return reminders, nil
}

func (s *Store) Reminders(ctx context.Context) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders(ctx)
}

func (s *Store) AddReminder(ctx context.Context, r Reminder) (Reminder, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return Reminder{}, apperr.Validation("Título del recordatorio es requerido")
	}
	if r.TypeIcon == "" {
		r.TypeIcon = ReminderIcon(r.TypeLabel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	reminders, err := s.reminders(ctx)
	if err != nil {
		return Reminder{}, err
	}
	reminders = append([]Reminder{r}, reminders...)
	if len(reminders) > MaxReminders {
		reminders = reminders[:MaxReminders]
	}
	return r, s.put(ctx, keyReminders, reminders)
}

func (s *Store) DeleteReminder(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reminders, err := s.reminders(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(reminders) {
		return apperr.NotFound("Recordatorio no encontrado")
	}
	reminders = append(reminders[:index], reminders[index+1:]...)
	return s.put(ctx, keyReminders, reminders)
}

const DefaultMonthlyTarget = 50000

type MonthlyGoal struct {
	Target float64 `json:"target"`
	Month  string  `json:"month"`
}

func (s *Store) MonthlyGoal(ctx context.Context) (MonthlyGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal := MonthlyGoal{Target: DefaultMonthlyTarget, Month: s.now().Format("2006-01")}
	_, err := s.get(ctx, keyMonthlyGoal, &goal)
	return goal, err
}

// SetMonthlyGoal stores target for month (YYYY-MM), defaulting to the current month.
func (s *Store) SetMonthlyGoal(ctx context.Context, target float64, month string) (MonthlyGoal, error) {
	if target <= 0 {
		return MonthlyGoal{}, apperr.Validation("La meta debe ser mayor a 0")
	}
	if month == "" {
		month = s.now().Format("2006-01")
	} else if _, err := time.Parse("2006-01", month); err != nil {
		return MonthlyGoal{}, apperr.Validation("Mes inválido, usa AAAA-MM")
	}
	goal := MonthlyGoal{Target: target, Month: month}

	s.mu.Lock()
	defer s.mu.Unlock()
	return goal, s.put(ctx, keyMonthlyGoal, goal)
}

type BrandColors struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// Branding customizes the PDF and message footer.
type Branding struct {
	Logo      string      `json:"logo"`
	Colors    BrandColors `json:"colors"`
	Signature string      `json:"signature"`
}

func DefaultBranding() Branding {
	return Branding{Colors: BrandColors{Primary: "#1e3c72", Accent: "#d4af37"}}
}

func (s *Store) Branding(ctx context.Context) (Branding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := DefaultBranding()
	_, err := s.get(ctx, keyBranding, &b)
	return b, err
}

func (s *Store) SaveBranding(ctx context.Context, b Branding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keyBranding, b)
}

func (s *Store) Language(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lang := "es"
	_, err := s.get(ctx, keyLanguage, &lang)
	return lang, err
}

func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	if lang != "es" && lang != "en" {
		return apperr.Validation("Idioma no soportado")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keyLanguage, lang)
}

type ScheduledMessage struct {
	ID        string    `json:"id"`
	QuoteID   string    `json:"quoteId,omitempty"`
	Template  string    `json:"template,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Body      string    `json:"body"`
	SendAt    string    `json:"sendAt,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Store) ScheduledMessages(ctx context.Context) ([]ScheduledMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var msgs []ScheduledMessage
	if _, err := s.get(ctx, keyScheduled, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []ScheduledMessage{}
	}
	return msgs, nil
}

// ScheduleMessage appends a pending message.
func (s *Store) ScheduleMessage(ctx context.Context, m ScheduledMessage) (ScheduledMessage, error) {
	if strings.TrimSpace(m.Body) == "" {
		return ScheduledMessage{}, apperr.Validation("El mensaje no puede estar vacío")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var msgs []ScheduledMessage
	if _, err := s.get(ctx, keyScheduled, &msgs); err != nil {
		return ScheduledMessage{}, err
	}
	m.ID = "MSG-" + uuid.NewString()
	m.Status = "pending"
	m.CreatedAt = s.now()
	msgs = append(msgs, m)
	return m, s.put(ctx, keyScheduled, msgs)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
