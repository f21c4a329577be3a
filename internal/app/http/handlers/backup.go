package handlers

import (
	"io"
	"net/http"

	"mdr-travel/go_backend/internal/apperr"
)

func (h *Handlers) ExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Export(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	name := "mdr-backup-" + h.store.Now().Format("2006-01-02") + ".json"
	attachment(w, "application/json", name, data)
}

func (h *Handlers) ImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.KindBadRequest, "No se pudo leer el archivo", err))
		return
	}
	res, err := h.store.Import(r.Context(), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) SnapshotBackup(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Usage(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.Usage(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
