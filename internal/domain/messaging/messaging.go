package messaging

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/phone"
)

// Business is the sender block appended to every quote text.
type Business struct {
	Name         string
	Phone        string
	Currency     string
	ValidityDays int
	LegalText    string
	Signature    string
}

// TemplateFill is what a quote template contributes to a new quote.
type TemplateFill struct {
	Includes    string `json:"includes"`
	Excludes    string `json:"excludes"`
	NotesClient string `json:"notesClient"`
}

func (c *Catalog) ApplyTemplate(quoteType string) (TemplateFill, error) {
	t, ok := c.QuoteTemplates[quoteType]
	if !ok {
		return TemplateFill{}, apperr.NotFound("No hay plantilla para el tipo " + quoteType)
	}
	return TemplateFill{Includes: t.Includes, Excludes: t.Excludes, NotesClient: t.LegalText}, nil
}

// Fill replaces every {key} placeholder in the template body in one pass.
// Substituted values are never expanded again.
func (c *Catalog) Fill(templateKey string, vars map[string]string) (string, error) {
	t, ok := c.MessageTemplates[templateKey]
	if !ok {
		return "", apperr.NotFound("Plantilla de mensaje no encontrada: " + templateKey)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(t.Body), nil
}

// QuoteVars exposes a quote under the placeholder names the templates use.
func QuoteVars(q quote.Quote, currency string) map[string]string {
	summary := strings.TrimSpace(strings.Join(nonEmpty(
		quote.TypeInfo(q.Type).Icon+" "+q.Product,
		prefixed("📅 ", q.Dates),
		prefixed("👥 ", q.Travelers),
	), "\n"))
	return map[string]string{
		"nombre":             q.Client.Name,
		"producto":           q.Product,
		"resumen_cotizacion": summary,
		"total":              quote.FormatCurrency(q.Total, currency),
		"apartado":           quote.FormatCurrency(q.Deposit, currency),
		"meses":              strconv.Itoa(q.Months),
		"pago_mensual":       quote.FormatCurrency(q.Monthly, currency),
		"fechas":             q.Dates,
		"viajeros":           q.Travelers,
		"id":                 q.ID,
	}
}

// QuoteText renders the WhatsApp summary of a quote.
func QuoteText(q quote.Quote, b Business) string {
	cur := b.Currency
	var sb strings.Builder
	fmt.Fprintf(&sb, "¡Hola %s! 👋\n\nAquí está tu cotización ✨\n\n%s %s\n📅 %s\n👥 %s",
		q.Client.Name, quote.TypeInfo(q.Type).Icon, q.Product, q.Dates, q.Travelers)

	if lines := quote.Lines(q.Includes); len(lines) > 0 {
		sb.WriteString("\n\n✅ INCLUYE:\n" + bullets(lines))
	}
	if lines := quote.Lines(q.Excludes); len(lines) > 0 {
		sb.WriteString("\n\n❌ NO INCLUYE:\n" + bullets(lines))
	}

	fmt.Fprintf(&sb, "\n\n💰 INVERSIÓN TOTAL: %s\n\n💳 Para apartar: %s\n📅 %d pagos de: %s/mes",
		quote.FormatCurrency(q.Total, cur),
		quote.FormatCurrency(q.Deposit, cur),
		q.Months,
		quote.FormatCurrency(q.Monthly, cur))

	if q.Deadline != "" {
		sb.WriteString("\n⏰ Pago final antes de: " + q.Deadline)
	}
	if q.NotesClient != "" {
		sb.WriteString("\n\n📝 " + q.NotesClient)
	}

	name := b.Name
	if name == "" {
		name = "Magia Disney & Royal"
	}
	validity := b.ValidityDays
	if validity <= 0 {
		validity = 7
	}
	fmt.Fprintf(&sb, "\n\n📱 WhatsApp: %s\n✨ %s\n\nCotización %s • Válida %d días\n%s",
		b.Phone, name, q.ID, validity, b.LegalText)
	if b.Signature != "" {
		sb.WriteString("\n\n" + b.Signature)
	}
	return sb.String()
}

// WhatsAppLink builds a wa.me deep link. Without a phone the link lets the
// agent pick the chat.
func WhatsAppLink(phoneNumber, text, region string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	digits := ""
	if strings.TrimSpace(phoneNumber) != "" {
		digits = phone.WhatsAppDigits(phoneNumber, region)
	}
	if digits == "" {
		return "https://wa.me/?text=" + encoded
	}
	return "https://wa.me/" + digits + "?text=" + encoded
}

type FollowUp struct {
	Quote      quote.Quote `json:"quote"`
	Urgency    string      `json:"urgency"`
	Suggestion string      `json:"suggestion"`
	Template   string      `json:"template"`
	Days       int         `json:"days"`
}

// FollowUps lists open quotes whose last contact (or creation) was 3 days ago,
// or 7 or more days ago.
func FollowUps(quotes []quote.Quote, now time.Time) []FollowUp {
	var out []FollowUp
	for _, q := range quotes {
		if q.Status != quote.StatusSent && q.Status != quote.StatusNegotiating {
			continue
		}
		last := q.CreatedAt
		if q.LastContact != nil {
			last = *q.LastContact
		}
		days := int(math.Floor(now.Sub(last).Hours() / 24))
		switch {
		case days == 3:
			out = append(out, FollowUp{Quote: q, Urgency: "medium", Suggestion: "Enviar seguimiento 3 días", Template: "followUp3Days", Days: days})
		case days >= 7:
			out = append(out, FollowUp{Quote: q, Urgency: "high", Suggestion: "Enviar recordatorio de vencimiento", Template: "followUp7Days", Days: days})
		}
	}
	return out
}

// ExpandShortcut replaces the first occurrence of each known shortcut.
func (c *Catalog) ExpandShortcut(text string) string {
	for _, qr := range c.QuickResponses {
		if strings.Contains(text, qr.Shortcut) {
			text = strings.Replace(text, qr.Shortcut, qr.Text, 1)
		}
	}
	return text
}

// AutoResponse returns the reply of the first rule with a keyword in message.
func (c *Catalog) AutoResponse(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, rule := range c.AutoResponses {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Text, true
			}
		}
	}
	return "", false
}

// Clause resolves a clause option into the form stored on a quote.
func (c *Catalog) Clause(clauseType, optionID string) (quote.Clause, error) {
	group, ok := c.Clauses[clauseType]
	if !ok {
		return quote.Clause{}, apperr.NotFound("Tipo de cláusula desconocido: " + clauseType)
	}
	for _, opt := range group.Options {
		if opt.ID == optionID {
			return quote.Clause{Name: group.Name, Text: opt.Text}, nil
		}
	}
	return quote.Clause{}, apperr.NotFound("Opción de cláusula desconocida: " + optionID)
}

func bullets(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "• " + l
	}
	return strings.Join(out, "\n")
}

func prefixed(prefix, s string) string {
	if s == "" {
		return ""
	}
	return prefix + s
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
