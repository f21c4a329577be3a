package quote

import (
	"fmt"
	"strings"
	"time"
)

var monthAbbr = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if len(s) >= 10 {
		if t, err := time.Parse(dateLayout, s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders "5 ene 2025". Unparseable input is returned unchanged.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthAbbr[t.Month()-1], t.Year())
}

// FormatDateRange renders "5-12 ene 2025" or "28 ene - 3 feb 2025".
func FormatDateRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	if end == "" {
		return FormatDate(start)
	}
	if start == "" {
		return FormatDate(end)
	}

	s, ok1 := ParseDate(start)
	e, ok2 := ParseDate(end)
	if !ok1 || !ok2 {
		return strings.TrimSpace(start + " - " + end)
	}

	sm := monthAbbr[s.Month()-1]
	em := monthAbbr[e.Month()-1]
	if sm == em {
		return fmt.Sprintf("%d-%d %s %d", s.Day(), e.Day(), sm, e.Year())
	}
	return fmt.Sprintf("%d %s - %d %s %d", s.Day(), sm, e.Day(), em, e.Year())
}

// FormatTravelers renders "2 adultos, 1 niño (5 años)".
func FormatTravelers(adults, children int, childrenAges []int) string {
	var parts []string
	if adults > 0 {
		parts = append(parts, fmt.Sprintf("%d adulto%s", adults, plural(adults)))
	}
	if children > 0 {
		if len(childrenAges) > 0 {
			ages := make([]string, len(childrenAges))
			for i, a := range childrenAges {
				ages[i] = fmt.Sprint(a)
			}
			parts = append(parts, fmt.Sprintf("%d niño%s (%s años)", children, plural(children), strings.Join(ages, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("%d niño%s", children, plural(children)))
		}
	}
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n != 1 {
		return "s"
	}
	return ""
}

// Lines splits a multi-line field into its trimmed, non-empty lines.
func Lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
