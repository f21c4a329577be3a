package client

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"mdr-travel/go_backend/internal/domain/quote"
	"mdr-travel/go_backend/internal/phone"
	"mdr-travel/go_backend/internal/validator"
)

type Status string

const (
	StatusLead    Status = "lead"
	StatusCliente Status = "cliente"
	StatusVIP     Status = "vip"
)

const (
	EventCreated      = "created"
	EventNote         = "note"
	EventQuote        = "quote"
	EventCall         = "call"
	EventEmail        = "email"
	EventMeeting      = "meeting"
	EventStatusChange = "status_change"
)

type Event struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Date        time.Time              `json:"date"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Client struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Tags         []string               `json:"tags"`
	Status       Status                 `json:"status"`
	Notes        string                 `json:"notes"`
	Source       string                 `json:"source,omitempty"`
	Timeline     []Event                `json:"timeline"`
	CustomFields map[string]interface{} `json:"customFields"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

type Input struct {
	Name         string                 `json:"name" validate:"required"`
	Email        string                 `json:"email" validate:"omitempty,email"`
	Phone        string                 `json:"phone"`
	Tags         []string               `json:"tags"`
	Status       Status                 `json:"status" validate:"omitempty,oneof=lead cliente vip"`
	Notes        string                 `json:"notes"`
	Source       string                 `json:"source"`
	CustomFields map[string]interface{} `json:"customFields"`
}

var inputMessages = map[string]string{
	"Input.Name":   "Nombre del cliente es requerido",
	"Input.Email":  "Email del cliente inválido",
	"Input.Status": "Estado de cliente inválido",
}

func (in *Input) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	return validator.Default().Struct(in, inputMessages)
}

func NewID() string { return "CLI-" + uuid.NewString() }

func NewEventID() string { return "TL-" + uuid.NewString() }

// New builds a lead (unless a status is given) with its "created" event.
func New(in Input, now time.Time) Client {
	status := in.Status
	if status == "" {
		status = StatusLead
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	custom := in.CustomFields
	if custom == nil {
		custom = map[string]interface{}{}
	}
	return Client{
		ID:           NewID(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Tags:         dedupe(tags),
		Status:       status,
		Notes:        in.Notes,
		Source:       in.Source,
		CustomFields: custom,
		CreatedAt:    now,
		UpdatedAt:    now,
		Timeline: []Event{{
			ID:          NewEventID(),
			Type:        EventCreated,
			Description: "Cliente creado",
			Date:        now,
		}},
	}
}

// Update overwrites the editable fields, keeping id, timeline and creation time.
func (c *Client) Update(in Input, now time.Time) {
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	if in.Tags != nil {
		c.Tags = dedupe(in.Tags)
	}
	if in.Status != "" {
		c.Status = in.Status
	}
	c.Notes = in.Notes
	c.Source = in.Source
	if in.CustomFields != nil {
		c.CustomFields = in.CustomFields
	}
	c.UpdatedAt = now
}

// AddEvent prepends an event; the timeline is kept newest first.
func (c *Client) AddEvent(e Event, now time.Time) Event {
	if e.ID == "" {
		e.ID = NewEventID()
	}
	if e.Type == "" {
		e.Type = EventNote
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	c.Timeline = append([]Event{e}, c.Timeline...)
	c.UpdatedAt = now
	return e
}

// AddTag reports whether the tag was new.
func (c *Client) AddTag(tag string, now time.Time) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range c.Tags {
		if t == tag {
			return false
		}
	}
	c.Tags = append(c.Tags, tag)
	c.UpdatedAt = now
	return true
}

func (c *Client) RemoveTag(tag string, now time.Time) {
	out := c.Tags[:0]
	for _, t := range c.Tags {
		if t != tag {
			out = append(out, t)
		}
	}
	c.Tags = out
	c.UpdatedAt = now
}

// MatchesQuote reports whether q's contact refers to c: same name, or same
// email or phone when the quote carries one.
func (c Client) MatchesQuote(q quote.Client, region string) bool {
	if q.Name != "" && c.Name == q.Name {
		return true
	}
	if q.Email != "" && strings.EqualFold(c.Email, q.Email) {
		return true
	}
	if q.Phone != "" && phone.Same(c.Phone, q.Phone, region) {
		return true
	}
	return false
}

// FindForQuote returns the index of the first client matching q, or -1.
func FindForQuote(clients []Client, q quote.Client, region string) int {
	for i, c := range clients {
		if c.MatchesQuote(q, region) {
			return i
		}
	}
	return -1
}

func IndexOf(clients []Client, id string) int {
	for i, c := range clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
