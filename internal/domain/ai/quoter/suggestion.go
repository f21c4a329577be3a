package quoter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"mdr-travel/go_backend/internal/domain/quote"
)

// suggestion is the loosely typed object the model returns. Field names drift
// between generations, so every lookup accepts aliases.
type suggestion map[string]any

func parseSuggestion(content string) (suggestion, error) {
	raw := stripCodeFences(content)
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var s suggestion
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("empty suggestion")
	}
	return s, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "json") {
		s = strings.TrimSpace(s[4:])
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func (s suggestion) first(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := s[k]
		if !ok || v == nil {
			continue
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (s suggestion) str(keys ...string) string {
	v, ok := s.first(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// list accepts either an array of strings or a single string.
func (s suggestion) list(keys ...string) string {
	v, ok := s.first(keys...)
	if !ok {
		return ""
	}
	return normalizeList(v)
}

func normalizeList(v any) string {
	switch t := v.(type) {
	case []any:
		var lines []string
		for _, item := range t {
			var line string
			switch it := item.(type) {
			case string:
				line = strings.TrimSpace(it)
			case json.Number:
				line = it.String()
			case bool:
				if it {
					line = "true"
				}
			}
			if line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	case string:
		return strings.TrimSpace(t)
	default:
		return ""
	}
}

func (s suggestion) number(keys ...string) (float64, bool) {
	v, ok := s.first(keys...)
	if !ok {
		return 0, false
	}
	return parseNumber(v)
}

// parseNumber reads JSON numbers as-is and cleans currency strings such as
// "$12,500.00 USD" or "12.500,50". The separator that appears last is the
// decimal one; a lone separator followed by exactly three digits groups
// thousands.
func parseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	case float64:
		return t, true
	case string:
		return parseNumericString(t)
	default:
		return 0, false
	}
}

func parseNumericString(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	decimal := byte(0)
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			decimal = '.'
		} else {
			decimal = ','
		}
	case lastDot >= 0 || lastComma >= 0:
		sep := byte('.')
		idx := lastDot
		if lastComma >= 0 {
			sep, idx = ',', lastComma
		}
		single := strings.Count(cleaned, string(sep)) == 1
		if single && len(cleaned)-idx-1 != 3 {
			decimal = sep
		}
	}

	var out strings.Builder
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case c == decimal:
			out.WriteByte('.')
		case c == '.' || c == ',':
		default:
			out.WriteByte(c)
		}
	}
	f, err := strconv.ParseFloat(out.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeQuoteType maps free-form trip descriptions onto the product types.
func normalizeQuoteType(raw string) string {
	t := strings.ToLower(raw)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(t, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("royal"):
		return "crucero-royal"
	case has("crucero") && has("disney"):
		return "crucero-disney"
	case has("crucero"):
		return "crucero-royal"
	case has("wdw", "orlando", "magic", "epcot", "hollywood"):
		return "parques-wdw"
	case has("disneyland", "california"):
		return "parques-dl"
	case has("hotel"):
		return "hotel-disney"
	case has("paquete", "package"):
		return "paquete"
	default:
		return "otro"
	}
}

func intPtr(v int) *int { return &v }

// apply overlays the suggestion on the draft. Fields the model left out keep
// the draft's values.
func (s suggestion) apply(d quote.Input) quote.Input {
	if v := s.str("client_name"); v != "" {
		d.Client.Name = v
	}
	if v := s.str("client_email"); v != "" {
		d.Client.Email = v
	}
	if v := s.str("client_phone"); v != "" {
		d.Client.Phone = v
	}
	if v := s.str("type", "trip_type"); v != "" {
		d.Type = normalizeQuoteType(v)
	}
	if v := s.str("product", "destination", "trip_name"); v != "" {
		d.Product = v
	}
	if v := s.str("date_start"); v != "" {
		d.DateStart = v
	}
	if v := s.str("date_end"); v != "" {
		d.DateEnd = v
	}

	if n, ok := s.number("adults"); ok {
		d.Adults = intPtr(max(1, int(math.Round(n))))
	}
	if n, ok := s.number("children"); ok {
		children := max(0, int(math.Round(n)))
		d.Children = intPtr(children)
		if ages, isList := s["children_ages"].([]any); isList {
			d.ChildrenAges = nil
			for _, a := range ages {
				if len(d.ChildrenAges) == children {
					break
				}
				if age, ok := parseNumber(a); ok {
					d.ChildrenAges = append(d.ChildrenAges, int(math.Round(age)))
				}
			}
		} else if len(d.ChildrenAges) > children {
			d.ChildrenAges = d.ChildrenAges[:children]
		}
	}

	if v := s.list("includes", "included"); v != "" {
		d.Includes = v
	}
	if v := s.list("excludes", "not_included"); v != "" {
		d.Excludes = v
	}
	if v := s.list("itinerary", "plan"); v != "" {
		d.Itinerary = v
	}

	if n, ok := s.number("total", "price_total", "amount_total"); ok {
		d.Total = n
	}
	if n, ok := s.number("deposit", "downpayment", "apartado"); ok {
		d.Deposit = n
	}
	if n, ok := s.number("months", "payments"); ok && int(n) > 0 {
		d.Months = intPtr(min(max(int(n), 1), 12))
	} else if d.Months == nil {
		d.Months = intPtr(quote.DefaultMonths)
	}

	if v := s.str("payment_deadline", "deadline"); v != "" {
		d.Deadline = v
	}
	if v := s.str("valid_until"); v != "" {
		d.ValidUntil = v
	}
	if v := s.list("payment_plan"); v != "" {
		d.PaymentPlan = v
	}
	if v := s.str("payment_link"); v != "" {
		d.PaymentLink = v
	}
	if v := s.list("next_steps"); v != "" {
		d.NextSteps = v
	}
	if v := s.str("notes_client", "pitch"); v != "" {
		d.NotesClient = v
	}
	if v := s.str("notes_internal"); v != "" {
		d.NotesInternal = v
	}
	return d
}
