package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mdr-travel/go_backend/internal/domain/ai/quoter"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/service"
)

func (h *Handlers) ListQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quotes, err := h.svc.ListQuotes(r.Context(), service.QuoteFilter{
		Status: quote.Status(q.Get("status")),
		Query:  q.Get("q"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var in quote.Input
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, created, err := h.svc.UpsertQuote(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, q)
}

func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.ViewQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	var in quote.Input
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.ID = chi.URLParam(r, "id")
	q, err := h.svc.SaveQuote(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteQuote(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdateQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status quote.Status `json:"status"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) DuplicateQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handlers) QuoteHistory(w http.ResponseWriter, r *http.Request) {
	versions, err := h.svc.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *Handlers) CreateQuoteVersion(w http.ResponseWriter, r *http.Request) {
	var req service.VersionRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.svc.CreateVersion(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handlers) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req quote.DiscountRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.svc.ApplyDiscount(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) AddClause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string `json:"type"`
		Option string `json:"option"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.svc.AddClause(r.Context(), chi.URLParam(r, "id"), req.Type, req.Option)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) RequestSignature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.svc.RequestSignature(r.Context(), chi.URLParam(r, "id"), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) QuotePDF(w http.ResponseWriter, r *http.Request) {
	q, doc, err := h.svc.QuotePDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	attachment(w, "application/pdf", "Cotizacion-"+q.ID+".pdf", doc)
}

func (h *Handlers) EmailQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To string `json:"to"`
	}
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if err := h.svc.EmailQuote(r.Context(), chi.URLParam(r, "id"), req.To); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *Handlers) QuoteWhatsApp(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.WhatsApp(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handlers) SendQuoteWhatsApp(w http.ResponseWriter, r *http.Request) {
	msg, q, err := h.svc.SendWhatsApp(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		service.WhatsAppMessage
		Quote quote.Quote `json:"quote"`
	}{msg, q})
}

func (h *Handlers) CompareQuotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cmp, err := h.svc.Compare(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *Handlers) Expirations(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.Expirations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handlers) QuoteTemplate(w http.ResponseWriter, r *http.Request) {
	fill, err := h.svc.ApplyTemplate(chi.URLParam(r, "type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fill)
}

func (h *Handlers) ConvertCurrency(w http.ResponseWriter, r *http.Request) {
	amount, err := queryFloat(r, "amount")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if strings.TrimSpace(from) == "" {
		from = "USD"
	}
	if strings.TrimSpace(to) == "" {
		to = "MXN"
	}
	conv, err := h.svc.ConvertCurrency(r.Context(), amount, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *Handlers) GenerateAIQuote(w http.ResponseWriter, r *http.Request) {
	var req quoter.Request
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	draft, err := h.svc.GenerateAIQuote(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}
