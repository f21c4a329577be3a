package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mdr-travel/go_backend/internal/domain/pipeline"
)

func (h *Handlers) Board(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from", false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to", true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	board, err := h.svc.Board(r.Context(), from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handlers) MoveQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stage pipeline.Stage `json:"stage"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.svc.MoveQuote(r.Context(), chi.URLParam(r, "id"), req.Stage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) PipelineStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.PipelineStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) PipelineConversion(w http.ResponseWriter, r *http.Request) {
	conv, err := h.svc.Conversion(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *Handlers) ProjectedClosures(w http.ResponseWriter, r *http.Request) {
	closures, err := h.svc.ProjectedClosures(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, closures)
}

func (h *Handlers) GetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GoalProgress(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handlers) SetGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target float64 `json:"target"`
		Month  string  `json:"month"`
	}
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := h.svc.SetGoal(r.Context(), req.Target, req.Month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) Commissions(w http.ResponseWriter, r *http.Request) {
	rate, err := queryFloat(r, "rate")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Commissions(r.Context(), rate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) Projection(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projection(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if year != 0 && (month < 1 || month > 12) {
		month = int(time.January)
	}
	rep, err := h.svc.Report(r.Context(), year, time.Month(month))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handlers) CompareYears(w http.ResponseWriter, r *http.Request) {
	from, err := queryInt(r, "from")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	to, err := queryInt(r, "to")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cmp, err := h.svc.CompareYears(r.Context(), from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *Handlers) TimeToClose(w http.ResponseWriter, r *http.Request) {
	days, err := h.svc.TimeToClose(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"days": days})
}

func (h *Handlers) Satisfaction(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Satisfaction(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) LeadSources(w http.ResponseWriter, r *http.Request) {
	src, err := h.svc.LeadSources(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (h *Handlers) TopDestinations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if limit <= 0 {
		limit = 5
	}
	d, err := h.svc.TopDestinations(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
