package quoter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/quote"
)

func fakeOpenAI(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer key, got %q", got)
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateAppliesSuggestion(t *testing.T) {
	content := "```json\n" + `{
		"client_name": "Ana López",
		"trip_type": "Crucero Disney Bahamas",
		"destination": "Disney Wish 4 noches",
		"adults": "2",
		"children": 1,
		"children_ages": [7, 9],
		"included": ["Camarote", "", "Comidas"],
		"not_included": "Propinas",
		"price_total": "$3,000 USD",
		"apartado": 300,
		"payments": 24,
		"pitch": "¡La magia te espera!"
	}` + "\n```"
	var seen map[string]any
	srv := fakeOpenAI(t, content, &seen)

	q := New(Options{BaseURL: srv.URL + "/v1"})
	in, err := q.Generate(context.Background(), Request{
		APIKey: "sk-test",
		Notes:  "familia de 3",
		Images: []string{"data:image/png;base64,AAAA"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if in.Client.Name != "Ana López" || in.Type != "crucero-disney" || in.Product != "Disney Wish 4 noches" {
		t.Fatalf("unexpected identity fields %+v", in)
	}
	if *in.Adults != 2 || *in.Children != 1 || len(in.ChildrenAges) != 1 || in.ChildrenAges[0] != 7 {
		t.Fatalf("unexpected travelers %v %v %v", *in.Adults, *in.Children, in.ChildrenAges)
	}
	if in.Includes != "Camarote\nComidas" || in.Excludes != "Propinas" {
		t.Fatalf("unexpected lists %q %q", in.Includes, in.Excludes)
	}
	if in.Total != 3000 || in.Deposit != 300 || *in.Months != 12 {
		t.Fatalf("unexpected pricing total=%v deposit=%v months=%v", in.Total, in.Deposit, *in.Months)
	}
	if in.NotesClient != "¡La magia te espera!" {
		t.Fatalf("expected pitch as client notes, got %q", in.NotesClient)
	}

	if seen["temperature"] != 0.5 || seen["max_tokens"] != float64(900) {
		t.Fatalf("unexpected request params %v %v", seen["temperature"], seen["max_tokens"])
	}
	if rf, _ := seen["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", seen["response_format"])
	}
	msgs, _ := seen["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	parts, _ := user["content"].([]any)
	if len(parts) != 3 {
		t.Fatalf("expected two text parts and one image, got %d", len(parts))
	}
}

func TestGenerateKeepsDraftFields(t *testing.T) {
	srv := fakeOpenAI(t, `{"total": 1500}`, nil)
	draft := quote.Input{Product: "Orlando", NotesInternal: "vip"}
	draft.Client.Name = "Luis"

	in, err := New(Options{BaseURL: srv.URL + "/v1"}).Generate(context.Background(), Request{APIKey: "sk-test", Notes: "x", Draft: draft})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if in.Client.Name != "Luis" || in.Product != "Orlando" || in.NotesInternal != "vip" || in.Total != 1500 {
		t.Fatalf("expected draft preserved, got %+v", in)
	}
	if in.Months == nil || *in.Months != quote.DefaultMonths {
		t.Fatalf("expected default months")
	}
}

func TestGenerateValidation(t *testing.T) {
	q := New(Options{BaseURL: "http://127.0.0.1:1/v1"})
	if _, err := q.Generate(context.Background(), Request{Notes: "hola"}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing key, got %v", err)
	}
	if _, err := q.Generate(context.Background(), Request{APIKey: "sk"}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty input, got %v", err)
	}
	if _, err := q.Generate(context.Background(), Request{APIKey: "sk", Images: []string{"ftp://x"}}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for image url, got %v", err)
	}
}

func TestGenerateRejectsNonJSON(t *testing.T) {
	srv := fakeOpenAI(t, "lo siento, no puedo", nil)
	_, err := New(Options{BaseURL: srv.URL + "/v1"}).Generate(context.Background(), Request{APIKey: "sk-test", Notes: "x"})
	if !apperr.IsKind(err, apperr.KindUpstream) || !strings.Contains(err.Error(), "JSON") {
		t.Fatalf("expected upstream JSON error, got %v", err)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"$12,500.00 USD": 12500,
		"12.500,50":      12500.5,
		"1500.50":        1500.5,
		"3,000":          3000,
		"2,5":            2.5,
		"7":              7,
	}
	for in, want := range cases {
		got, ok := parseNumber(in)
		if !ok || got != want {
			t.Fatalf("parseNumber(%q): expected %v, got %v (%v)", in, want, got, ok)
		}
	}
	if _, ok := parseNumber("sin precio"); ok {
		t.Fatalf("expected no number")
	}
}

func TestNormalizeQuoteType(t *testing.T) {
	cases := map[string]string{
		"Royal Caribbean":     "crucero-royal",
		"crucero disney":      "crucero-disney",
		"Crucero por Europa":  "crucero-royal",
		"Magic Kingdom":       "parques-wdw",
		"Disneyland Paris":    "parques-dl",
		"Hotel Contemporary":  "hotel-disney",
		"Paquete todo pagado": "paquete",
		"Cancún":              "otro",
	}
	for in, want := range cases {
		if got := normalizeQuoteType(in); got != want {
			t.Fatalf("normalizeQuoteType(%q): expected %s, got %s", in, want, got)
		}
	}
}
