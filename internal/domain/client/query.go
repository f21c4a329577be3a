package client

import (
	"sort"
	"strings"
	"time"

	"mdr-travel/go_backend/internal/domain/quote"
)

// Search matches name, email and tags case-insensitively and the phone as typed.
func Search(clients []Client, query string) []Client {
	lower := strings.ToLower(query)
	var out []Client
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(strings.ToLower(c.Email), lower) ||
			strings.Contains(c.Phone, query) ||
			anyTagContains(c.Tags, lower) {
			out = append(out, c)
		}
	}
	return out
}

func anyTagContains(tags []string, lower string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), lower) {
			return true
		}
	}
	return false
}

func FilterByStatus(clients []Client, status Status) []Client {
	var out []Client
	for _, c := range clients {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// FilterByTags keeps clients carrying at least one of tags.
func FilterByTags(clients []Client, tags []string) []Client {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []Client
	for _, c := range clients {
		for _, t := range c.Tags {
			if want[t] {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func AllTags(clients []Client) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range clients {
		for _, t := range c.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

type Stats struct {
	Total           int     `json:"total"`
	Leads           int     `json:"leads"`
	Clients         int     `json:"clients"`
	VIPs            int     `json:"vips"`
	QuotesPerClient float64 `json:"quotesPerClient"`
	RecentActivity  int     `json:"recentActivity"`
}

// ComputeStats counts clients by status; recent activity means updated in the last 7 days.
func ComputeStats(clients []Client, quoteCount int, now time.Time) Stats {
	s := Stats{Total: len(clients)}
	for _, c := range clients {
		switch c.Status {
		case StatusLead:
			s.Leads++
		case StatusCliente:
			s.Clients++
		case StatusVIP:
			s.VIPs++
		}
		if now.Sub(c.UpdatedAt) <= 7*24*time.Hour {
			s.RecentActivity++
		}
	}
	denom := len(clients)
	if denom == 0 {
		denom = 1
	}
	s.QuotesPerClient = float64(quoteCount) / float64(denom)
	return s
}

// Quotes returns the quotes whose contact shares name, email or phone with c.
func Quotes(c Client, quotes []quote.Quote) []quote.Quote {
	var out []quote.Quote
	for _, q := range quotes {
		if (c.Name != "" && q.Client.Name == c.Name) ||
			(c.Email != "" && q.Client.Email == c.Email) ||
			(c.Phone != "" && q.Client.Phone == c.Phone) {
			out = append(out, q)
		}
	}
	return out
}
