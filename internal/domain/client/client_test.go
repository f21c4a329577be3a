package client

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"mdr-travel/go_backend/internal/domain/quote"
)

var now = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func TestNewDefaultsToLeadWithCreatedEvent(t *testing.T) {
	c := New(Input{Name: "Ana"}, now)
	if c.Status != StatusLead {
		t.Fatalf("expected lead, got %q", c.Status)
	}
	if !strings.HasPrefix(c.ID, "CLI-") {
		t.Fatalf("expected CLI- prefix, got %q", c.ID)
	}
	if len(c.Timeline) != 1 || c.Timeline[0].Type != EventCreated {
		t.Fatalf("expected created event, got %+v", c.Timeline)
	}
}

func TestInputValidate(t *testing.T) {
	in := Input{Name: "  "}
	if err := in.Validate(); err == nil || err.Error() != "Nombre del cliente es requerido" {
		t.Fatalf("expected name error, got %v", err)
	}
	in = Input{Name: "Ana", Status: "gold"}
	if err := in.Validate(); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestAddEventNewestFirst(t *testing.T) {
	c := New(Input{Name: "Ana"}, now)
	c.AddEvent(Event{Type: EventCall, Description: "Llamada"}, now.Add(time.Hour))
	if c.Timeline[0].Type != EventCall || c.Timeline[1].Type != EventCreated {
		t.Fatalf("expected newest first, got %+v", c.Timeline)
	}
}

func TestTagsAreIdempotent(t *testing.T) {
	c := New(Input{Name: "Ana", Tags: []string{"crucero", "crucero"}}, now)
	if len(c.Tags) != 1 {
		t.Fatalf("expected deduped tags, got %v", c.Tags)
	}
	if c.AddTag("crucero", now) {
		t.Fatalf("expected duplicate tag to be ignored")
	}
	if !c.AddTag("vip", now) {
		t.Fatalf("expected new tag")
	}
	c.RemoveTag("crucero", now)
	if len(c.Tags) != 1 || c.Tags[0] != "vip" {
		t.Fatalf("expected [vip], got %v", c.Tags)
	}
}

func TestMatchesQuote(t *testing.T) {
	c := Client{Name: "Ana", Email: "ana@example.com", Phone: "55 8095 5139"}

	if !c.MatchesQuote(quote.Client{Name: "Ana"}, "MX") {
		t.Fatalf("expected name match")
	}
	if !c.MatchesQuote(quote.Client{Name: "Ana L.", Email: "ANA@example.com"}, "MX") {
		t.Fatalf("expected email match")
	}
	if !c.MatchesQuote(quote.Client{Name: "A", Phone: "+52 55 8095 5139"}, "MX") {
		t.Fatalf("expected phone match")
	}
	if (Client{Name: "Luis"}).MatchesQuote(quote.Client{Name: "Ana"}, "MX") {
		t.Fatalf("expected no match")
	}
	if (Client{Name: "Luis"}).MatchesQuote(quote.Client{Name: "Ana", Email: "", Phone: ""}, "MX") {
		t.Fatalf("expected empty email/phone never to match")
	}
}

func TestSearchAndFilters(t *testing.T) {
	clients := []Client{
		{Name: "Ana López", Email: "ana@x.com", Phone: "555", Tags: []string{"Crucero"}, Status: StatusLead},
		{Name: "Luis", Email: "luis@x.com", Phone: "777", Tags: []string{"parques"}, Status: StatusVIP},
	}
	if got := Search(clients, "crucero"); len(got) != 1 || got[0].Name != "Ana López" {
		t.Fatalf("expected tag search hit, got %v", got)
	}
	if got := Search(clients, "77"); len(got) != 1 || got[0].Name != "Luis" {
		t.Fatalf("expected phone search hit, got %v", got)
	}
	if got := FilterByStatus(clients, StatusVIP); len(got) != 1 {
		t.Fatalf("expected 1 vip, got %d", len(got))
	}
	if got := FilterByTags(clients, []string{"parques", "nada"}); len(got) != 1 {
		t.Fatalf("expected 1 tag match, got %d", len(got))
	}
	if got := AllTags(clients); len(got) != 2 || got[0] != "Crucero" {
		t.Fatalf("unexpected tags %v", got)
	}
}

func TestComputeStats(t *testing.T) {
	clients := []Client{
		{Status: StatusLead, UpdatedAt: now.Add(-24 * time.Hour)},
		{Status: StatusCliente, UpdatedAt: now.Add(-30 * 24 * time.Hour)},
		{Status: StatusVIP, UpdatedAt: now},
		{Status: StatusVIP, UpdatedAt: now},
	}
	s := ComputeStats(clients, 8, now)
	if s.Total != 4 || s.Leads != 1 || s.Clients != 1 || s.VIPs != 2 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.QuotesPerClient != 2 || s.RecentActivity != 3 {
		t.Fatalf("unexpected derived stats %+v", s)
	}
}

func TestWriteCSVQuotesCells(t *testing.T) {
	var buf bytes.Buffer
	c := Client{ID: "CLI-1", Name: `Ana "La" López`, Tags: []string{"a", "b"}, Status: StatusLead, CreatedAt: now, UpdatedAt: now}
	if err := WriteCSV(&buf, []Client{c}); err != nil {
		t.Fatalf("csv: %v", err)
	}
	rows, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[1][1] != `Ana "La" López` || rows[1][5] != "a; b" || rows[1][6] != "01/04/2025" {
		t.Fatalf("unexpected row %v", rows[1])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	c := Client{ID: "CLI-1", Name: "Ana", Status: StatusVIP, CreatedAt: now, UpdatedAt: now}
	if err := WriteXLSX(&buf, []Client{c}); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	v, err := f.GetCellValue("Clientes", "B2")
	if err != nil || v != "Ana" {
		t.Fatalf("expected Ana in B2, got %q err=%v", v, err)
	}
}
