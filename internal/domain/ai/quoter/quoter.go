// Package quoter asks an OpenAI chat model to turn agent notes and photos of
// supplier material into a quote draft.
package quoter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mdr-travel/go_backend/internal/apperr"
	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/logger"
)

const (
	DefaultModel = "gpt-4o-mini"
	MaxImages    = 4

	temperature = 0.5
	maxTokens   = 900
)

type Options struct {
	// BaseURL overrides the OpenAI endpoint, e.g. "https://api.openai.com/v1".
	BaseURL string
	Timeout time.Duration
	Logger  *logger.Logger
}

type Quoter struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func New(opts Options) *Quoter {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Quoter{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Request carries everything one generation needs. The API key comes from the
// stored settings, so it travels with the request.
type Request struct {
	APIKey string      `json:"-"`
	Model  string      `json:"model"`
	Notes  string      `json:"notes"`
	Images []string    `json:"images"`
	Draft  quote.Input `json:"draft"`
}

func (r *Request) validate() error {
	r.APIKey = strings.TrimSpace(r.APIKey)
	r.Notes = strings.TrimSpace(r.Notes)
	if r.APIKey == "" {
		return apperr.Validation("Agrega tu OpenAI API Key en Ajustes → IA.")
	}
	if r.Notes == "" && len(r.Images) == 0 {
		return apperr.Validation("Comparte fotos o notas para que la IA genere la cotización.")
	}
	if len(r.Images) > MaxImages {
		return apperr.Validation(fmt.Sprintf("Máximo %d fotos por solicitud.", MaxImages))
	}
	for _, img := range r.Images {
		if !strings.HasPrefix(img, "data:image/") && !strings.HasPrefix(img, "https://") {
			return apperr.Validation("Las fotos deben ser data URLs de imagen o enlaces https")
		}
	}
	return nil
}

// Generate returns the draft with the model's suggestion applied. Nothing is
// persisted.
func (q *Quoter) Generate(ctx context.Context, req Request) (quote.Input, error) {
	if err := req.validate(); err != nil {
		return quote.Input{}, err
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(req.APIKey)
	if q.baseURL != "" {
		cfg.BaseURL = q.baseURL
	}
	cfg.HTTPClient = q.http
	client := openai.NewClientWithConfig(cfg)

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    buildMessages(req),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		q.log.WithContext(ctx).Warn("ai_quote_failed", slog.String("model", model), slog.String("error", err.Error()))
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return quote.Input{}, apperr.Wrap(apperr.KindUpstream, "Error con IA: "+apiErr.Message, err)
		}
		return quote.Input{}, apperr.Wrap(apperr.KindUpstream, "Error con IA", err)
	}
	q.log.WithContext(ctx).Info("ai_quote_generated",
		slog.String("model", model),
		slog.Int("images", len(req.Images)),
		slog.Int("tokens", resp.Usage.TotalTokens),
		slog.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
	)

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return quote.Input{}, apperr.New(apperr.KindUpstream, "La IA no devolvió contenido.")
	}
	s, err := parseSuggestion(resp.Choices[0].Message.Content)
	if err != nil {
		return quote.Input{}, apperr.Wrap(apperr.KindUpstream, "La IA no envió JSON válido.", err)
	}
	return s.apply(req.Draft), nil
}

const systemPrompt = `Eres un travel designer premium (Magia Disney & Royal). Lee fotos + texto y devuelve SOLO JSON compacto con campos:
{
  "client_name": "",
  "type": "crucero-disney|crucero-royal|parques-wdw|parques-dl|hotel-disney|paquete|otro",
  "product": "",
  "date_start": "YYYY-MM-DD",
  "date_end": "YYYY-MM-DD",
  "adults": 2,
  "children": 0,
  "children_ages": [],
  "includes": ["..."],
  "excludes": ["..."],
  "itinerary": ["Día 1: ..."],
  "total": 0,
  "deposit": 0,
  "months": 6,
  "payment_plan": ["Pago 1 ..."],
  "payment_deadline": "YYYY-MM-DD",
  "payment_link": "",
  "next_steps": ["Confirma datos", "Aparta hoy"],
  "notes_client": "pitch breve en español",
  "notes_internal": ""
}
Si falta info, infiérela. Mantén todo en español neutro, sin texto extra fuera del JSON.`

func buildMessages(req Request) []openai.ChatCompletionMessage {
	d := req.Draft
	adults, children := 0, 0
	if d.Adults != nil {
		adults = *d.Adults
	}
	if d.Children != nil {
		children = *d.Children
	}
	travelers := fmt.Sprintf("%d adultos, %d niños", adults, children)
	if len(d.ChildrenAges) > 0 {
		ages := make([]string, len(d.ChildrenAges))
		for i, a := range d.ChildrenAges {
			ages[i] = strconv.Itoa(a)
		}
		travelers += " (" + strings.Join(ages, ", ") + " años)"
	}
	budget := "Presupuesto no definido"
	if d.Total > 0 {
		budget = "Presupuesto preliminar: " + strconv.FormatFloat(d.Total, 'f', -1, 64)
	}
	notes := req.Notes
	if notes == "" {
		notes = "Sin notas adicionales"
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: "Notas del agente: " + notes},
		{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf(
			"Contexto previo (puedes mejorarlo): destino actual: %s; fechas: %s a %s; viajeros: %s; %s.",
			orDash(d.Product, "sin definir"), orDash(d.DateStart, "-"), orDash(d.DateEnd, "-"), travelers, budget)},
	}
	for _, img := range req.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: img, Detail: openai.ImageURLDetailAuto},
		})
	}
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, MultiContent: parts},
	}
}

func orDash(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
