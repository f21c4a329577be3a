package pipeline

import (
	"testing"
	"time"

	"mdr-travel/go_backend/internal/domain/quote"
)

var now = time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

func q(id string, status quote.Status, total float64) quote.Quote {
	return quote.Quote{ID: id, Status: status, Total: total, CreatedAt: now}
}

func TestGroupUsesFixedLookup(t *testing.T) {
	quotes := []quote.Quote{
		q("a", quote.StatusDraft, 100),
		q("b", quote.StatusSent, 200),
		q("c", quote.StatusViewed, 300),
		q("d", quote.StatusExpired, 400),
		q("e", quote.StatusAccepted, 500),
		q("f", "", 50),
	}
	g := Group(quotes)
	if len(g[StageLead]) != 2 || len(g[StageQuoted]) != 1 || len(g[StageClosed]) != 1 {
		t.Fatalf("unexpected grouping %+v", g)
	}
	total := 0
	for _, qs := range g {
		total += len(qs)
	}
	if total != 4 {
		t.Fatalf("expected viewed and expired outside every column, got %d grouped", total)
	}
	if len(g[StageLost]) != 0 {
		t.Fatalf("expected empty lost column")
	}
}

func TestMoveUnknownStageFallsBackToDraft(t *testing.T) {
	qq := q("a", quote.StatusSent, 1)
	Move(&qq, "nowhere", now)
	if qq.Status != quote.StatusDraft {
		t.Fatalf("expected draft, got %s", qq.Status)
	}
	if qq.LastStageChange == nil || !qq.LastStageChange.Equal(now) {
		t.Fatalf("expected lastStageChange stamped")
	}
	Move(&qq, StageClosed, now)
	if qq.Status != quote.StatusAccepted {
		t.Fatalf("expected accepted, got %s", qq.Status)
	}
}

func TestStats(t *testing.T) {
	st := Stats([]quote.Quote{q("a", quote.StatusSent, 100), q("b", quote.StatusSent, 300)})
	if st[StageQuoted].Count != 2 || st[StageQuoted].Value != 400 || st[StageQuoted].AvgValue != 200 {
		t.Fatalf("unexpected stats %+v", st[StageQuoted])
	}
	if st[StageLost].AvgValue != 0 {
		t.Fatalf("expected zero average for empty column")
	}
}

func TestUrgencyOf(t *testing.T) {
	cases := []struct {
		deadline, validUntil string
		want                 Urgency
	}{
		{"", "", UrgencyLow},
		{"2025-07-10", "", UrgencyOverdue},
		{"2025-07-17", "", UrgencyHigh},
		{"", "2025-07-21", UrgencyMedium},
		{"2025-08-30", "2025-07-16", UrgencyLow},
	}
	for _, c := range cases {
		got := UrgencyOf(quote.Quote{Deadline: c.deadline, ValidUntil: c.validUntil}, now)
		if got != c.want {
			t.Fatalf("deadline=%q validUntil=%q: expected %s, got %s", c.deadline, c.validUntil, c.want, got)
		}
	}
}

func TestProjectedClosuresSortedByDay(t *testing.T) {
	a := q("a", quote.StatusSent, 1)
	a.Deadline = "2025-08-02T10:00:00Z"
	b := q("b", quote.StatusNegotiating, 1)
	b.Deadline = "2025-07-20"
	c := q("c", quote.StatusDraft, 1)
	c.Deadline = "2025-07-21"
	d := q("d", quote.StatusSent, 1)

	got := ProjectedClosures([]quote.Quote{a, b, c, d})
	if len(got) != 2 || got[0].Date != "2025-07-20" || got[1].Date != "2025-08-02" {
		t.Fatalf("unexpected closures %+v", got)
	}
}

func TestConversionStats(t *testing.T) {
	quotes := []quote.Quote{
		q("a", quote.StatusDraft, 100),
		q("b", quote.StatusSent, 100),
		q("c", quote.StatusNegotiating, 100),
		q("d", quote.StatusAccepted, 700),
	}
	c := ConversionStats(quotes)
	if c.LeadToQuote != 75 || c.QuoteToNegotiation != 66.7 || c.NegotiationToClose != 50 || c.OverallConversion != 25 {
		t.Fatalf("unexpected conversion %+v", c)
	}
	if c.ClosedCount != 1 || c.ClosedValue != 700 {
		t.Fatalf("unexpected closed totals %+v", c)
	}
	if empty := ConversionStats(nil); empty.OverallConversion != 0 {
		t.Fatalf("expected zero conversion for empty list")
	}
}

func TestMonthlyProgress(t *testing.T) {
	old := q("old", quote.StatusAccepted, 9999)
	old.CreatedAt = now.AddDate(0, -1, 0)
	quotes := []quote.Quote{
		q("a", quote.StatusAccepted, 20000),
		q("b", quote.StatusSent, 5000),
		old,
	}
	p := MonthlyProgress(quotes, Goal{Target: 50000}, now)
	if p.Achieved != 20000 || p.Remaining != 30000 || p.Percentage != 40 || p.QuotesCount != 1 {
		t.Fatalf("unexpected progress %+v", p)
	}
}

func TestMonthlyProgressUsesGoalMonth(t *testing.T) {
	old := q("old", quote.StatusAccepted, 10000)
	old.CreatedAt = now.AddDate(0, -1, 0)
	quotes := []quote.Quote{q("a", quote.StatusAccepted, 20000), old}

	p := MonthlyProgress(quotes, Goal{Target: 20000, Month: old.CreatedAt.Format("2006-01")}, now)
	if p.Achieved != 10000 || p.Percentage != 50 || p.QuotesCount != 1 {
		t.Fatalf("expected only last month's quote, got %+v", p)
	}
}
