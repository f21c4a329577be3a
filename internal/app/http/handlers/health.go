package handlers

import (
	"net/http"
)

// Health reports ok once the store answers.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.OnboardingComplete(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
