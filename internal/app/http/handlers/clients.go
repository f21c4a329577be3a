package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mdr-travel/go_backend/internal/domain/client"
	"mdr-travel/go_backend/internal/service"
)

func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.ClientFilter{Query: q.Get("q"), Status: client.Status(q.Get("status"))}
	if raw := q.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	clients, err := h.svc.ListClients(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var in client.Input
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateClient(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var in client.Input
	if err := decode(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.UpdateClient(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var e client.Event
	if err := decode(w, r, &e); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.svc.AddTimelineEvent(r.Context(), chi.URLParam(r, "id"), e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) AddTag(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.AddTag(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "tag"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) RemoveTag(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.RemoveTag(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "tag"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) ClientQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.svc.ClientQuotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (h *Handlers) ClientTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *Handlers) ClientStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.ClientStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) ExportClientsCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.ExportClientsCSV(r.Context(), &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", "clientes.csv", buf.Bytes())
}

func (h *Handlers) ExportClientsXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.ExportClientsXLSX(r.Context(), &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "clientes.xlsx", buf.Bytes())
}
