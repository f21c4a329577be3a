// Package analytics folds the quote and client lists into dashboard figures.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"mdr-travel/go_backend/internal/domain/client"
	"mdr-travel/go_backend/internal/domain/pipeline"
	"mdr-travel/go_backend/internal/domain/quote"
)

const (
	DefaultCommissionRate = 0.10
	fallbackConversion    = 0.25
	// placeholder until message tracking exists
	avgResponseHours = 2.5
)

var monthShort = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

type Overview struct {
	TotalQuotes   int     `json:"totalQuotes"`
	ThisMonth     int     `json:"thisMonth"`
	Closed        int     `json:"closed"`
	Revenue       float64 `json:"revenue"`
	AvgQuoteValue float64 `json:"avgQuoteValue"`
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func accepted(q quote.Quote) bool { return q.Status == quote.StatusAccepted }

func revenue(quotes []quote.Quote) float64 {
	var sum float64
	for _, q := range quotes {
		if accepted(q) {
			sum += q.Total
		}
	}
	return sum
}

func ComputeOverview(quotes []quote.Quote, now time.Time) Overview {
	var o Overview
	o.TotalQuotes = len(quotes)
	var all float64
	for _, q := range quotes {
		all += q.Total
		if !sameMonth(q.CreatedAt, now) {
			continue
		}
		o.ThisMonth++
		if accepted(q) {
			o.Closed++
			o.Revenue += q.Total
		}
	}
	if len(quotes) > 0 {
		o.AvgQuoteValue = all / float64(len(quotes))
	}
	return o
}

type Destination struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Type    string  `json:"type"`
}

// TopDestinations ranks products by quote count; revenue counts accepted quotes only.
func TopDestinations(quotes []quote.Quote, limit int) []Destination {
	byName := map[string]*Destination{}
	var order []string
	for _, q := range quotes {
		if q.Product == "" {
			continue
		}
		d, ok := byName[q.Product]
		if !ok {
			d = &Destination{Name: q.Product, Type: q.Type}
			byName[q.Product] = d
			order = append(order, q.Product)
		}
		d.Count++
		if accepted(q) {
			d.Revenue += q.Total
		}
	}
	out := make([]Destination, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type TypeCommission struct {
	Count      int     `json:"count"`
	Sales      float64 `json:"sales"`
	Commission float64 `json:"commission"`
}

type Commissions struct {
	TotalSales      float64                   `json:"totalSales"`
	TotalCommission float64                   `json:"totalCommission"`
	Rate            float64                   `json:"rate"`
	ByType          map[string]TypeCommission `json:"byType"`
	Count           int                       `json:"count"`
}

func ComputeCommissions(quotes []quote.Quote, rate float64) Commissions {
	c := Commissions{Rate: rate * 100, ByType: map[string]TypeCommission{}}
	for _, q := range quotes {
		if !accepted(q) {
			continue
		}
		t := q.Type
		if t == "" {
			t = "otro"
		}
		bt := c.ByType[t]
		bt.Count++
		bt.Sales += q.Total
		bt.Commission += q.Total * rate
		c.ByType[t] = bt
		c.TotalSales += q.Total
		c.Count++
	}
	c.TotalCommission = c.TotalSales * rate
	return c
}

type Projection struct {
	Confirmed      float64 `json:"confirmed"`
	Pipeline       float64 `json:"pipeline"`
	Expected       float64 `json:"expected"`
	Total          float64 `json:"total"`
	ConversionRate float64 `json:"conversionRate"`
	PipelineCount  int     `json:"pipelineCount"`
}

// RevenueProjection weights open quotes by the historic close rate, 25% when
// nothing has been sent yet.
func RevenueProjection(quotes []quote.Quote) Projection {
	var p Projection
	var decided, closed int
	for _, q := range quotes {
		switch q.Status {
		case quote.StatusSent, quote.StatusNegotiating:
			p.Pipeline += q.Total
			p.PipelineCount++
			decided++
		case quote.StatusAccepted:
			p.Confirmed += q.Total
			decided++
			closed++
		case quote.StatusRejected:
			decided++
		}
	}
	rate := fallbackConversion
	if decided > 0 {
		rate = float64(closed) / float64(decided)
	}
	p.Expected = p.Pipeline * rate
	p.Total = p.Confirmed + p.Expected
	p.ConversionRate = quote.Round1(rate * 100)
	return p
}

type ReportCounts struct {
	Total    int `json:"total"`
	Closed   int `json:"closed"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

type Report struct {
	Period         string       `json:"period"`
	Quotes         ReportCounts `json:"quotes"`
	Revenue        float64      `json:"revenue"`
	TopProduct     *Destination `json:"topProduct"`
	ConversionRate float64      `json:"conversionRate"`
}

// MonthlyReport covers quotes created in the given calendar month (1-12).
func MonthlyReport(quotes []quote.Quote, year int, month time.Month) Report {
	var in []quote.Quote
	for _, q := range quotes {
		if q.CreatedAt.Year() == year && q.CreatedAt.Month() == month {
			in = append(in, q)
		}
	}
	r := Report{Period: fmt.Sprintf("%d-%02d", year, int(month))}
	r.Quotes.Total = len(in)
	for _, q := range in {
		switch q.Status {
		case quote.StatusAccepted:
			r.Quotes.Closed++
		case quote.StatusRejected:
			r.Quotes.Rejected++
		case quote.StatusSent, quote.StatusNegotiating:
			r.Quotes.Pending++
		}
	}
	r.Revenue = revenue(in)
	if top := TopDestinations(in, 1); len(top) == 1 {
		r.TopProduct = &top[0]
	}
	r.ConversionRate = ConversionRate(in)
	return r
}

type YearFigures struct {
	Year    int     `json:"year"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type Growth struct {
	Count          int     `json:"count"`
	CountPercent   float64 `json:"countPercent"`
	Revenue        float64 `json:"revenue"`
	RevenuePercent float64 `json:"revenuePercent"`
}

type YearComparison struct {
	From   YearFigures `json:"from"`
	To     YearFigures `json:"to"`
	Growth Growth      `json:"growth"`
}

func CompareYears(quotes []quote.Quote, year1, year2 int) YearComparison {
	figures := func(year int) YearFigures {
		f := YearFigures{Year: year}
		for _, q := range quotes {
			if q.CreatedAt.Year() != year {
				continue
			}
			f.Count++
			if accepted(q) {
				f.Revenue += q.Total
			}
		}
		return f
	}
	a, b := figures(year1), figures(year2)
	g := Growth{Count: b.Count - a.Count, Revenue: b.Revenue - a.Revenue}
	if a.Count > 0 {
		g.CountPercent = quote.Round1(float64(g.Count) / float64(a.Count) * 100)
	}
	if a.Revenue > 0 {
		g.RevenuePercent = quote.Round1(g.Revenue / a.Revenue * 100)
	}
	return YearComparison{From: a, To: b, Growth: g}
}

type Source struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LeadSources counts clients by source; clients without one are "Directo".
func LeadSources(clients []client.Client) []Source {
	counts := map[string]int{}
	var order []string
	for _, c := range clients {
		src := c.Source
		if src == "" {
			src = "Directo"
		}
		if _, ok := counts[src]; !ok {
			order = append(order, src)
		}
		counts[src]++
	}
	out := make([]Source, 0, len(order))
	for _, name := range order {
		out = append(out, Source{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// AverageTimeToClose is the mean of updatedAt-createdAt over accepted quotes, in days.
func AverageTimeToClose(quotes []quote.Quote) float64 {
	var sum float64
	var n int
	for _, q := range quotes {
		if !accepted(q) {
			continue
		}
		sum += q.UpdatedAt.Sub(q.CreatedAt).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

type Satisfaction struct {
	RepeatClients      int     `json:"repeatClients"`
	AvgQuotesPerClient float64 `json:"avgQuotesPerClient"`
	ResponseTime       float64 `json:"responseTime"`
	NPS                float64 `json:"nps"`
}

// ComputeSatisfaction approximates NPS with the VIP share of clients.
func ComputeSatisfaction(clients []client.Client, quotes []quote.Quote) Satisfaction {
	s := Satisfaction{ResponseTime: avgResponseHours}
	var vips int
	for _, c := range clients {
		n := 0
		for _, q := range quotes {
			if q.Client.Name == c.Name || q.Client.Email == c.Email {
				n++
			}
		}
		if n > 1 {
			s.RepeatClients++
		}
		if c.Status == client.StatusVIP {
			vips++
		}
	}
	if len(clients) > 0 {
		s.AvgQuotesPerClient = float64(len(quotes)) / float64(len(clients))
		s.NPS = float64(vips * 100 / len(clients))
	}
	return s
}

type TrendPoint struct {
	Month   string  `json:"month"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// MonthlyTrend returns the last 12 months, oldest first.
func MonthlyTrend(quotes []quote.Quote, now time.Time) []TrendPoint {
	out := make([]TrendPoint, 0, 12)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 11; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		p := TrendPoint{Month: fmt.Sprintf("%s %d", monthShort[m.Month()-1], m.Year())}
		for _, q := range quotes {
			if !sameMonth(q.CreatedAt.In(now.Location()), m) {
				continue
			}
			p.Count++
			if accepted(q) {
				p.Revenue += q.Total
			}
		}
		out = append(out, p)
	}
	return out
}

func ConversionRate(quotes []quote.Quote) float64 {
	if len(quotes) == 0 {
		return 0
	}
	closed := 0
	for _, q := range quotes {
		if accepted(q) {
			closed++
		}
	}
	return quote.Round1(float64(closed) / float64(len(quotes)) * 100)
}

type ClientCounts struct {
	Total  int `json:"total"`
	Leads  int `json:"leads"`
	Active int `json:"active"`
	VIP    int `json:"vip"`
}

type Dashboard struct {
	Overview        Overview            `json:"overview"`
	Conversion      pipeline.Conversion `json:"conversion"`
	TopDestinations []Destination       `json:"topDestinations"`
	MonthlyTrend    []TrendPoint        `json:"monthlyTrend"`
	ClientStats     ClientCounts        `json:"clientStats"`
}

func BuildDashboard(quotes []quote.Quote, clients []client.Client, now time.Time) Dashboard {
	d := Dashboard{
		Overview:        ComputeOverview(quotes, now),
		Conversion:      pipeline.ConversionStats(quotes),
		TopDestinations: TopDestinations(quotes, 10),
		MonthlyTrend:    MonthlyTrend(quotes, now),
	}
	d.ClientStats.Total = len(clients)
	for _, c := range clients {
		switch c.Status {
		case client.StatusLead:
			d.ClientStats.Leads++
		case client.StatusCliente:
			d.ClientStats.Active++
		case client.StatusVIP:
			d.ClientStats.VIP++
		}
	}
	return d
}
