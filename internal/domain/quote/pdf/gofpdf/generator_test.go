package gofpdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/domain/quote/pdf"
)

func sample() quote.Quote {
	q := quote.Quote{
		ID:          "MDR-2025-0001",
		Client:      quote.Client{Name: "Ana Pérez", Phone: "55 1234 5678"},
		Type:        "crucero-disney",
		Product:     "Crucero Bahamas 🚢",
		DateStart:   "2025-06-01",
		DateEnd:     "2025-06-05",
		Adults:      2,
		Includes:    "Camarote\nComidas",
		Excludes:    "Propinas",
		Itinerary:   "Día 1: Miami\nDía 2: Nassau",
		Total:       3000,
		Deposit:     300,
		Months:      9,
		NextSteps:   "Confirma datos",
		NotesClient: "¡La magia te espera! ✨",
		Clauses:     map[string]quote.Clause{"payment": {Name: "Pago", Text: "Apartado no reembolsable"}},
		CreatedAt:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	q.Recalculate()
	return q
}

func TestGenerateProducesPDF(t *testing.T) {
	out, err := New().Generate(sample(), pdf.Business{
		Name: "Magia Disney & Royal", Phone: "55 8095 5139", Region: "MX",
		ShowMXN: true, ExchangeRate: 17.5, LegalText: "Precios sujetos a disponibilidad.",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:8])
	}
}

func TestGenerateWithBadColorsFallsBack(t *testing.T) {
	if _, err := New().Generate(sample(), pdf.Business{PrimaryColor: "zzz", AccentColor: "#gggggg"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
}

func TestQRTarget(t *testing.T) {
	q := sample()
	b := pdf.Business{Phone: "55 8095 5139", Region: "MX"}
	if got := qrTarget(q, b); !strings.HasPrefix(got, "https://wa.me/525580955139?text=") {
		t.Fatalf("expected whatsapp link, got %s", got)
	}
	q.PaymentLink = "https://pay.example.com/abc"
	if got := qrTarget(q, b); got != q.PaymentLink {
		t.Fatalf("expected payment link, got %s", got)
	}
}

func TestPrintableDropsEmoji(t *testing.T) {
	if got := printable("Hola 👋 • ñ"); got != "Hola  • ñ" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestPrintableDropsScriptsOutsideCP1252(t *testing.T) {
	if got := printable("Москва Αθήνα – 5€ “ok”"); got != "  – 5€ “ok”" {
		t.Fatalf("unexpected %q", got)
	}
}
