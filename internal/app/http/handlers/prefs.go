package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/store"
)

// maskedKey stands in for the stored OpenAI key in responses. Sending it back
// unchanged keeps the stored key.
const maskedKey = "••••••••"

func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Config(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if cfg.AI.APIKey != "" {
		cfg.AI.APIKey = maskedKey
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handlers) SaveConfig(w http.ResponseWriter, r *http.Request) {
	current, err := h.store.Config(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cfg := current
	if err := decode(w, r, &cfg); err != nil {
		h.writeError(w, r, err)
		return
	}
	if cfg.AI.APIKey == maskedKey {
		cfg.AI.APIKey = current.AI.APIKey
	}
	if err := h.store.SaveConfig(r.Context(), cfg); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.GetConfig(w, r)
}

func (h *Handlers) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.SetDarkMode(r.Context(), req.Enabled); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"darkMode": req.Enabled})
}

func (h *Handlers) Favorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.store.Favorites(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	member, err := h.store.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": member})
}

func (h *Handlers) Recents(w http.ResponseWriter, r *http.Request) {
	recents, err := h.store.Recents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recents)
}

func (h *Handlers) Checklist(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Checklist(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) SaveChecklist(w http.ResponseWriter, r *http.Request) {
	var c map[string]bool
	if err := decode(w, r, &c); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.SaveChecklist(r.Context(), c); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Checklist(w, r)
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) Onboarding(w http.ResponseWriter, r *http.Request) {
	done, err := h.store.OnboardingComplete(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"complete": done})
}

func (h *Handlers) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.store.CompleteOnboarding(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"complete": true})
}

func (h *Handlers) Theme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.store.Theme(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

func (h *Handlers) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.SetTheme(r.Context(), req.Theme); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

func (h *Handlers) LastTab(w http.ResponseWriter, r *http.Request) {
	tab, err := h.store.LastTab(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tab": tab})
}

func (h *Handlers) SetLastTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab string `json:"tab"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.SetLastTab(r.Context(), req.Tab); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.LastTab(w, r)
}

func (h *Handlers) Language(w http.ResponseWriter, r *http.Request) {
	lang, err := h.store.Language(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": lang})
}

func (h *Handlers) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.SetLanguage(r.Context(), req.Language); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}

func (h *Handlers) Branding(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.Branding(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) SaveBranding(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.Branding(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := decode(w, r, &b); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.SaveBranding(r.Context(), b); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) VoteStatus(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.VoteStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) ToggleVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value int `json:"value"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.store.ToggleVote(r.Context(), chi.URLParam(r, "id"), req.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) Reminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.Reminders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) AddReminder(w http.ResponseWriter, r *http.Request) {
	var rem store.Reminder
	if err := decode(w, r, &rem); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.store.AddReminder(r.Context(), rem)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, apperr.BadRequest("Índice inválido"))
		return
	}
	if err := h.store.DeleteReminder(r.Context(), index); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
