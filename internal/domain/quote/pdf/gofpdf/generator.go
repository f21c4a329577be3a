package gofpdf

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/text/encoding/charmap"

	"mdr-travel/go_backend/internal/domain/messaging"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/domain/quote/pdf"
)

const (
	margin = 20.0
	qrSize = 60.0

	defaultPrimary = "#1e3c72"
	defaultAccent  = "#d4af37"
)

type Generator struct{}

func New() *Generator { return &Generator{} }

type rgb struct{ r, g, b int }

func parseHex(s, fallback string) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		s = strings.TrimPrefix(fallback, "#")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		v, _ = strconv.ParseUint(strings.TrimPrefix(fallback, "#"), 16, 32)
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}

var textColor = rgb{51, 51, 51}

// qrTarget is the payment link when the quote has one, otherwise a WhatsApp
// chat with the agency that mentions the quote id.
func qrTarget(q quote.Quote, b pdf.Business) string {
	if strings.TrimSpace(q.PaymentLink) != "" {
		return q.PaymentLink
	}
	return messaging.WhatsAppLink(b.Phone, fmt.Sprintf("Hola! Me interesa la cotización %s", q.ID), b.Region)
}

// printable drops runes outside cp1252, the encoding of the core fonts.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			return r
		}
		return -1
	}, s)
}

func (g *Generator) Generate(q quote.Quote, b pdf.Business) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	t := func(s string) string { return tr(strings.TrimSpace(printable(s))) }

	name := b.Name
	if name == "" {
		name = "Magia Disney & Royal"
	}
	currency := b.Currency
	if currency == "" {
		currency = "USD"
	}
	validity := b.ValidityDays
	if validity <= 0 {
		validity = 7
	}
	primary := parseHex(b.PrimaryColor, defaultPrimary)
	accent := parseHex(b.AccentColor, defaultAccent)

	doc.SetTitle(t("Cotización "+q.ID), false)
	doc.SetAuthor(t(name), false)
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, 25)
	pageW, pageH := doc.GetPageSize()
	contentW := pageW - 2*margin

	doc.SetFooterFunc(func() {
		doc.SetY(pageH - 15)
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(150, 150, 150)
		doc.CellFormat(contentW/2, 5, t(fmt.Sprintf("Cotización %s • Válida %d días", q.ID, validity)), "", 0, "L", false, 0, "")
		doc.CellFormat(contentW/2, 5, fmt.Sprintf("%d", doc.PageNo()), "", 0, "R", false, 0, "")
	})

	doc.AddPage()

	// header band
	doc.SetFillColor(primary.r, primary.g, primary.b)
	doc.Rect(0, 0, pageW, 32, "F")
	doc.SetXY(margin, 9)
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(contentW, 9, t(name), "", 1, "L", false, 0, "")
	if b.Slogan != "" {
		doc.SetTextColor(accent.r, accent.g, accent.b)
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(contentW, 6, t(b.Slogan), "", 1, "L", false, 0, "")
	}

	doc.SetY(40)
	doc.SetTextColor(textColor.r, textColor.g, textColor.b)
	doc.SetFont("Helvetica", "", 10)
	created := q.CreatedAt.Format("02/01/2006")
	doc.CellFormat(contentW/2, 6, t("Cotización: "+q.ID), "", 0, "L", false, 0, "")
	doc.CellFormat(contentW/2, 6, created, "", 1, "R", false, 0, "")
	doc.Ln(4)

	section := func(title string) {
		doc.Ln(3)
		doc.SetTextColor(primary.r, primary.g, primary.b)
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(contentW, 7, t(title), "", 1, "L", false, 0, "")
		doc.SetTextColor(textColor.r, textColor.g, textColor.b)
		doc.SetFont("Helvetica", "", 10)
	}
	line := func(s string) {
		doc.MultiCell(contentW, 5, t(s), "", "L", false)
	}

	section("Cliente")
	clientName := q.Client.Name
	if clientName == "" {
		clientName = "Sin nombre"
	}
	doc.SetFont("Helvetica", "", 12)
	line(clientName)
	doc.SetFont("Helvetica", "", 10)
	if q.Client.Phone != "" {
		line("Tel: " + q.Client.Phone)
	}
	if q.Client.Email != "" {
		line("Email: " + q.Client.Email)
	}

	doc.Ln(4)
	doc.SetFillColor(245, 247, 250)
	product := q.Product
	if product == "" {
		product = "Destino"
	}
	doc.SetTextColor(primary.r, primary.g, primary.b)
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(contentW, 10, t(product), "", 1, "L", true, 0, "")
	doc.SetTextColor(textColor.r, textColor.g, textColor.b)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(contentW, 6, t(quote.TypeInfo(q.Type).Name), "", 1, "L", true, 0, "")
	if q.Dates != "" {
		doc.CellFormat(contentW, 6, t("Fechas: "+q.Dates), "", 1, "L", true, 0, "")
	}
	if q.Travelers != "" {
		doc.CellFormat(contentW, 6, t("Viajeros: "+q.Travelers), "", 1, "L", true, 0, "")
	}

	section("Inversión total")
	doc.SetFont("Helvetica", "B", 22)
	doc.SetTextColor(accent.r, accent.g, accent.b)
	doc.CellFormat(contentW, 11, t(quote.FormatCurrency(q.Total, currency)), "", 1, "L", false, 0, "")
	doc.SetTextColor(textColor.r, textColor.g, textColor.b)
	doc.SetFont("Helvetica", "", 10)
	if b.ShowMXN && currency != "MXN" && b.ExchangeRate > 0 {
		mxn := quote.ConvertCurrency(q.Total, currency, "MXN", b.ExchangeRate)
		line(fmt.Sprintf("aprox. %s (tipo de cambio %s)", quote.FormatCurrency(mxn, "MXN"), strconv.FormatFloat(b.ExchangeRate, 'f', -1, 64)))
	}
	if q.Discount != nil && q.Subtotal > q.Total {
		line(fmt.Sprintf("Precio regular %s, descuento aplicado", quote.FormatCurrency(q.Subtotal, currency)))
	}
	line("Apartado: " + quote.FormatCurrency(q.Deposit, currency))
	line(fmt.Sprintf("%d pagos mensuales de %s", q.Months, quote.FormatCurrency(q.Monthly, currency)))
	if q.Deadline != "" {
		line("Pago final antes de: " + quote.FormatDate(q.Deadline))
	}
	if lines := quote.Lines(q.PaymentPlan); len(lines) > 0 {
		for _, l := range lines {
			line("• " + l)
		}
	}

	if steps := quote.Lines(q.NextSteps); len(steps) > 0 || q.PaymentLink != "" {
		section("Qué sigue")
		for i, s := range steps {
			line(fmt.Sprintf("%d. %s", i+1, s))
		}
		if q.PaymentLink != "" {
			line("Link de pago: " + q.PaymentLink)
		}
	}

	if days := quote.Lines(q.Itinerary); len(days) > 0 {
		section("Itinerario sugerido")
		for i, d := range days {
			line(fmt.Sprintf("%d. %s", i+1, d))
		}
	}
	if inc := quote.Lines(q.Includes); len(inc) > 0 {
		section("Incluye")
		for _, l := range inc {
			line("• " + l)
		}
	}
	if exc := quote.Lines(q.Excludes); len(exc) > 0 {
		section("No incluye")
		for _, l := range exc {
			line("• " + l)
		}
	}
	if len(q.Clauses) > 0 {
		section("Condiciones")
		keys := make([]string, 0, len(q.Clauses))
		for k := range q.Clauses {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c := q.Clauses[k]
			doc.SetFont("Helvetica", "B", 10)
			line(c.Name)
			doc.SetFont("Helvetica", "", 9)
			line(c.Text)
		}
	}
	if q.NotesClient != "" {
		section("Notas")
		line(q.NotesClient)
	}

	// contact page
	doc.AddPage()
	doc.SetY(margin + 10)
	section("¡Contacta con nosotros!")

	png, err := qrcode.Encode(qrTarget(q, b), qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("quote pdf: qr: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	y := doc.GetY() + 4
	doc.ImageOptions("qr", (pageW-qrSize)/2, y, qrSize, qrSize, false, opts, 0, "")
	doc.SetY(y + qrSize + 6)
	caption := "Escanea para contactarnos por WhatsApp"
	if q.PaymentLink != "" {
		caption = "Escanea para ir al link de pago"
	}
	doc.CellFormat(contentW, 6, t(caption), "", 1, "C", false, 0, "")
	doc.Ln(4)

	if b.Phone != "" {
		line("WhatsApp: " + b.Phone)
	}
	if b.Email != "" {
		line("Email: " + b.Email)
	}
	if b.Instagram != "" {
		line("Instagram: " + b.Instagram)
	}
	if b.LegalText != "" {
		doc.Ln(6)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(120, 120, 120)
		line(b.LegalText)
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("quote pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("quote pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}
