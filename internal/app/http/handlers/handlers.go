package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/logger"
	"mdr-travel/go_backend/internal/service"
	"mdr-travel/go_backend/internal/store"
)

// maxBody bounds JSON bodies; AI requests carry up to four data-URL images.
const maxBody = 25 << 20

type Handlers struct {
	svc   *service.Service
	store *store.Store
	log   *logger.Logger
}

func New(svc *service.Service, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{svc: svc, store: svc.Store(), log: log}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// writeError maps apperr kinds to status codes. Anything untyped is a 500
// and only the log sees the cause.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		h.log.WithContext(r.Context()).Error("request_failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error interno"})
		return
	}
	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log.WithContext(r.Context()).Error("request_failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorResponse{Error: e.Message, Details: e.Details})
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "JSON inválido", err)
	}
	return nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequest("Parámetro inválido: " + key)
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.BadRequest("Parámetro inválido: " + key)
	}
	return f, nil
}

// queryDate parses YYYY-MM-DD; end-of-range dates cover the whole day.
func queryDate(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperr.BadRequest("Fecha inválida, usa AAAA-MM-DD: " + key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
