package handlers

import (
	"net/http"

	"mdr-travel/go_backend/internal/service"
	"mdr-travel/go_backend/internal/store"
)

func (h *Handlers) FillMessage(w http.ResponseWriter, r *http.Request) {
	var req service.FillRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	msg, err := h.svc.FillMessage(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handlers) FollowUps(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.FollowUps(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ExpandShortcut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": h.svc.ExpandShortcut(req.Text)})
}

func (h *Handlers) AutoResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	reply, ok := h.svc.AutoResponse(req.Message)
	writeJSON(w, http.StatusOK, struct {
		Matched  bool   `json:"matched"`
		Response string `json:"response,omitempty"`
	}{ok, reply})
}

func (h *Handlers) ScheduledMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.store.ScheduledMessages(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *Handlers) ScheduleMessage(w http.ResponseWriter, r *http.Request) {
	var m store.ScheduledMessage
	if err := decode(w, r, &m); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.svc.ScheduleMessage(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
