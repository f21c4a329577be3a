// Package pipeline groups quotes into sales stages.
package pipeline

import (
	"math"
	"sort"
	"time"

	"mdr-travel/go_backend/internal/domain/quote"
)

type Stage string

const (
	StageLead        Stage = "lead"
	StageQuoted      Stage = "quoted"
	StageNegotiating Stage = "negotiating"
	StageClosed      Stage = "closed"
	StageLost        Stage = "lost"
)

type Column struct {
	ID    Stage  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var Columns = []Column{
	{ID: StageLead, Name: "Lead", Color: "#94a3b8"},
	{ID: StageQuoted, Name: "Cotizado", Color: "#3b82f6"},
	{ID: StageNegotiating, Name: "Negociando", Color: "#f59e0b"},
	{ID: StageClosed, Name: "Cerrado", Color: "#10b981"},
	{ID: StageLost, Name: "Perdido", Color: "#ef4444"},
}

// viewed and expired quotes sit in no column.
var stageOfStatus = map[quote.Status]Stage{
	quote.StatusDraft:       StageLead,
	quote.StatusSent:        StageQuoted,
	quote.StatusNegotiating: StageNegotiating,
	quote.StatusAccepted:    StageClosed,
	quote.StatusRejected:    StageLost,
}

var statusOfStage = map[Stage]quote.Status{
	StageLead:        quote.StatusDraft,
	StageQuoted:      quote.StatusSent,
	StageNegotiating: quote.StatusNegotiating,
	StageClosed:      quote.StatusAccepted,
	StageLost:        quote.StatusRejected,
}

// StageOf reports the column of status, if it has one.
func StageOf(status quote.Status) (Stage, bool) {
	s, ok := stageOfStatus[status.Normalize()]
	return s, ok
}

// StatusFor maps a stage back to a status; unknown stages fall back to draft.
func StatusFor(stage Stage) quote.Status {
	if s, ok := statusOfStage[stage]; ok {
		return s
	}
	return quote.StatusDraft
}

func ColumnName(stage Stage) string {
	for _, c := range Columns {
		if c.ID == stage {
			return c.Name
		}
	}
	return ""
}

// Group returns every column, empty ones included.
func Group(quotes []quote.Quote) map[Stage][]quote.Quote {
	grouped := make(map[Stage][]quote.Quote, len(Columns))
	for _, c := range Columns {
		grouped[c.ID] = []quote.Quote{}
	}
	for _, q := range quotes {
		if s, ok := StageOf(q.Status); ok {
			grouped[s] = append(grouped[s], q)
		}
	}
	return grouped
}

// Move sets the quote status for stage and stamps lastStageChange.
func Move(q *quote.Quote, stage Stage, now time.Time) {
	q.Status = StatusFor(stage)
	q.LastStageChange = &now
}

type ColumnStats struct {
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
	AvgValue float64 `json:"avgValue"`
}

func Stats(quotes []quote.Quote) map[Stage]ColumnStats {
	out := make(map[Stage]ColumnStats, len(Columns))
	for stage, qs := range Group(quotes) {
		var st ColumnStats
		st.Count = len(qs)
		for _, q := range qs {
			st.Value += q.Total
		}
		if st.Count > 0 {
			st.AvgValue = st.Value / float64(st.Count)
		}
		out[stage] = st
	}
	return out
}

type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyHigh    Urgency = "high"
	UrgencyMedium  Urgency = "medium"
	UrgencyLow     Urgency = "low"
)

// UrgencyOf uses the deadline, or validUntil when there is none.
func UrgencyOf(q quote.Quote, now time.Time) Urgency {
	raw := q.Deadline
	if raw == "" {
		raw = q.ValidUntil
	}
	due, ok := quote.ParseDate(raw)
	if !ok {
		return UrgencyLow
	}
	days := quote.DaysUntil(due, now)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= 3:
		return UrgencyHigh
	case days <= 7:
		return UrgencyMedium
	}
	return UrgencyLow
}

// FilterByDateRange keeps quotes created within [start, end].
func FilterByDateRange(quotes []quote.Quote, start, end time.Time) []quote.Quote {
	var out []quote.Quote
	for _, q := range quotes {
		if !q.CreatedAt.Before(start) && !q.CreatedAt.After(end) {
			out = append(out, q)
		}
	}
	return out
}

type Closure struct {
	Date   string        `json:"date"`
	Quotes []quote.Quote `json:"quotes"`
}

// ProjectedClosures groups open quotes with a deadline by deadline day.
func ProjectedClosures(quotes []quote.Quote) []Closure {
	byDay := map[string][]quote.Quote{}
	for _, q := range quotes {
		if q.Status != quote.StatusSent && q.Status != quote.StatusNegotiating {
			continue
		}
		if q.Deadline == "" {
			continue
		}
		day := q.Deadline
		if len(day) > 10 {
			day = day[:10]
		}
		byDay[day] = append(byDay[day], q)
	}
	out := make([]Closure, 0, len(byDay))
	for day, qs := range byDay {
		out = append(out, Closure{Date: day, Quotes: qs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type Conversion struct {
	Total              int     `json:"total"`
	LeadToQuote        float64 `json:"leadToQuote"`
	QuoteToNegotiation float64 `json:"quoteToNegotiation"`
	NegotiationToClose float64 `json:"negotiationToClose"`
	OverallConversion  float64 `json:"overallConversion"`
	ClosedCount        int     `json:"closedCount"`
	ClosedValue        float64 `json:"closedValue"`
}

func ConversionStats(quotes []quote.Quote) Conversion {
	var sent, negotiating, closed int
	var closedValue float64
	for _, q := range quotes {
		switch q.Status {
		case quote.StatusSent:
			sent++
		case quote.StatusNegotiating:
			sent++
			negotiating++
		case quote.StatusAccepted:
			sent++
			negotiating++
			closed++
			closedValue += q.Total
		}
	}
	return Conversion{
		Total:              len(quotes),
		LeadToQuote:        pct(sent, len(quotes)),
		QuoteToNegotiation: pct(negotiating, sent),
		NegotiationToClose: pct(closed, negotiating),
		OverallConversion:  pct(closed, len(quotes)),
		ClosedCount:        closed,
		ClosedValue:        closedValue,
	}
}

// Goal is a sales target for Month ("2006-01"). An empty Month means the
// current month.
type Goal struct {
	Target float64
	Month  string
}

type Progress struct {
	Target      float64 `json:"target"`
	Achieved    float64 `json:"achieved"`
	Remaining   float64 `json:"remaining"`
	Percentage  float64 `json:"percentage"`
	QuotesCount int     `json:"quotesCount"`
}

// MonthlyProgress sums accepted quotes created in the goal's month.
func MonthlyProgress(quotes []quote.Quote, goal Goal, now time.Time) Progress {
	month := goal.Month
	if month == "" {
		month = now.Format("2006-01")
	}
	p := Progress{Target: goal.Target}
	for _, q := range quotes {
		if q.Status != quote.StatusAccepted || q.CreatedAt.Format("2006-01") != month {
			continue
		}
		p.Achieved += q.Total
		p.QuotesCount++
	}
	p.Remaining = math.Max(0, goal.Target-p.Achieved)
	if goal.Target > 0 {
		p.Percentage = quote.Round1(p.Achieved / goal.Target * 100)
	}
	return p
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return quote.Round1(float64(n) / float64(d) * 100)
}
