package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mdr-travel/go_backend/internal/app/config"
	apphttp "mdr-travel/go_backend/internal/app/http"
	"mdr-travel/go_backend/internal/domain/quote/pdf/gofpdf"
	"mdr-travel/go_backend/internal/infra/kv/memory"
	"mdr-travel/go_backend/internal/logger"
	"mdr-travel/go_backend/internal/service"
	"mdr-travel/go_backend/internal/store"
)

const token = "secret"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := store.New(memory.New(), store.Options{Now: func() time.Time { return now }})
	svc := service.New(service.Deps{Store: st, PDF: gofpdf.New()}, service.Options{Region: "MX"})
	cfg := config.Config{InternalToken: token, CORSAllowOrigin: "*", AIRatePerMinute: 1}
	srv := httptest.NewServer(apphttp.NewRouter(cfg, svc, logger.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Token", token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func quoteBody() map[string]interface{} {
	return map[string]interface{}{
		"client":  map[string]string{"name": "Ana", "phone": "55 8095 5139"},
		"product": "Crucero Disney",
		"type":    "crucero-disney",
		"total":   3000,
		"deposit": 300,
		"months":  9,
	}
}

func TestHealthIsPublic(t *testing.T) {
	srv := newServer(t)
	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestV1RequiresToken(t *testing.T) {
	srv := newServer(t)
	resp, err := srv.Client().Get(srv.URL + "/v1/quotes")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestQuoteLifecycle(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/v1/quotes", quoteBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		ID      string  `json:"id"`
		Monthly float64 `json:"monthly"`
		Status  string  `json:"status"`
	}
	decodeBody(t, resp, &created)
	if created.ID != "MDR-2025-0001" || created.Monthly != 300 || created.Status != "draft" {
		t.Fatalf("unexpected quote %+v", created)
	}

	resp = do(t, srv, http.MethodGet, "/v1/quotes/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodPost, "/v1/pipeline/"+created.ID+"/move", map[string]string{"stage": "negotiating"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on move, got %d", resp.StatusCode)
	}

	resp = do(t, srv, http.MethodGet, "/v1/quotes?status=negotiating", nil)
	var list []map[string]interface{}
	decodeBody(t, resp, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 negotiating quote, got %d", len(list))
	}

	resp = do(t, srv, http.MethodGet, "/v1/quotes/"+created.ID+"/pdf", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp = do(t, srv, http.MethodGet, "/v1/clients", nil)
	var clients []map[string]interface{}
	decodeBody(t, resp, &clients)
	if len(clients) != 1 || clients[0]["name"] != "Ana" {
		t.Fatalf("expected auto-created client, got %+v", clients)
	}

	resp = do(t, srv, http.MethodDelete, "/v1/quotes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp = do(t, srv, http.MethodGet, "/v1/quotes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateWithUnknownIDIsCreated(t *testing.T) {
	srv := newServer(t)
	body := quoteBody()
	body["id"] = "MDR-2024-0042"

	resp := do(t, srv, http.MethodPost, "/v1/quotes", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for new id, got %d", resp.StatusCode)
	}
	resp = do(t, srv, http.MethodPost, "/v1/quotes", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for existing id, got %d", resp.StatusCode)
	}
}

func TestValidationErrorBody(t *testing.T) {
	srv := newServer(t)
	body := quoteBody()
	body["total"] = 0

	resp := do(t, srv, http.MethodPost, "/v1/quotes", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var e struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &e)
	if !strings.Contains(e.Error, "Precio total") {
		t.Fatalf("expected total message, got %q", e.Error)
	}
}

func TestMalformedJSON(t *testing.T) {
	srv := newServer(t)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/quotes", strings.NewReader("{"))
	req.Header.Set("X-Internal-Token", token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAIQuoteRateLimited(t *testing.T) {
	srv := newServer(t)
	req := map[string]string{"notes": "crucero 4 noches"}

	resp := do(t, srv, http.MethodPost, "/v1/quotes/ai", req)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without quoter, got %d", resp.StatusCode)
	}
	resp = do(t, srv, http.MethodPost, "/v1/quotes/ai", req)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestConfigMasksAPIKey(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodPut, "/v1/config", map[string]interface{}{
		"ai": map[string]string{"apiKey": "sk-real", "model": "gpt-4o"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var cfg struct {
		Business struct {
			Name string `json:"name"`
		} `json:"business"`
		AI struct {
			APIKey string `json:"apiKey"`
			Model  string `json:"model"`
		} `json:"ai"`
	}
	decodeBody(t, resp, &cfg)
	if cfg.AI.APIKey == "sk-real" || cfg.AI.APIKey == "" || cfg.AI.Model != "gpt-4o" {
		t.Fatalf("unexpected ai settings %+v", cfg.AI)
	}
	if cfg.Business.Name == "" {
		t.Fatalf("expected defaults kept on partial update")
	}
}

func TestFavoritesToggle(t *testing.T) {
	srv := newServer(t)
	var got map[string]bool
	decodeBody(t, do(t, srv, http.MethodPost, "/v1/favorites/MDR-2025-0001", nil), &got)
	if !got["favorite"] {
		t.Fatalf("expected favorite after first toggle")
	}
	decodeBody(t, do(t, srv, http.MethodPost, "/v1/favorites/MDR-2025-0001", nil), &got)
	if got["favorite"] {
		t.Fatalf("expected removed after second toggle")
	}
}

func TestBackupExportImport(t *testing.T) {
	srv := newServer(t)
	do(t, srv, http.MethodPost, "/v1/quotes", quoteBody())

	resp := do(t, srv, http.MethodGet, "/v1/backup/export", nil)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "mdr-backup-2025-06-01.json") {
		t.Fatalf("unexpected disposition %q", resp.Header.Get("Content-Disposition"))
	}

	do(t, srv, http.MethodDelete, "/v1/backup", nil)
	var list []map[string]interface{}
	decodeBody(t, do(t, srv, http.MethodGet, "/v1/quotes", nil), &list)
	if len(list) != 0 {
		t.Fatalf("expected empty after clear, got %d", len(list))
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/backup/import", &buf)
	req.Header.Set("X-Internal-Token", token)
	r2, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer r2.Body.Close()
	var res struct {
		Quotes  int `json:"quotes"`
		Clients int `json:"clients"`
	}
	decodeBody(t, r2, &res)
	if res.Quotes != 1 || res.Clients != 1 {
		t.Fatalf("unexpected import result %+v", res)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/quotes", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin, got %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}
