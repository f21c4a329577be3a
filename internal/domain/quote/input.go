package quote

import (
	"strings"

	"mdr-travel/go_backend/internal/validator"
)

const (
	DefaultMonths = 6
	DefaultAdults = 2
)

// Input is the editable part of a quote as submitted by the agent. Nil
// pointers take the form defaults.
type Input struct {
	ID     string `json:"id"`
	Status Status `json:"status" validate:"omitempty,oneof=draft sent viewed negotiating accepted rejected expired"`
	Client struct {
		Name  string `json:"name" validate:"required"`
		Phone string `json:"phone"`
		Email string `json:"email" validate:"omitempty,email"`
	} `json:"client"`

	Type         string `json:"type"`
	Product      string `json:"product" validate:"required"`
	DateStart    string `json:"dateStart"`
	DateEnd      string `json:"dateEnd"`
	Adults       *int   `json:"adults" validate:"omitempty,gte=0"`
	Children     *int   `json:"children" validate:"omitempty,gte=0"`
	ChildrenAges []int  `json:"childrenAges" validate:"dive,gte=0,lte=17"`

	Includes  string `json:"includes"`
	Excludes  string `json:"excludes"`
	Itinerary string `json:"itinerary"`

	Total       float64 `json:"total" validate:"gt=0"`
	Deposit     float64 `json:"deposit" validate:"gte=0"`
	Months      *int    `json:"months" validate:"omitempty,gte=0"`
	Deadline    string  `json:"deadline"`
	PaymentPlan string  `json:"paymentPlan"`
	PaymentLink string  `json:"paymentLink" validate:"omitempty,url"`
	NextSteps   string  `json:"nextSteps"`

	NotesInternal string `json:"notesInternal"`
	NotesClient   string `json:"notesClient"`
	ValidUntil    string `json:"validUntil"`
}

var inputMessages = map[string]string{
	"Input.Client.Name":  "Nombre del cliente es requerido",
	"Input.Client.Email": "Email del cliente inválido",
	"Input.Product":      "Producto/Destino es requerido",
	"Input.Total":        "Precio total debe ser mayor a 0",
	"Input.Deposit":      "El apartado no puede ser negativo",
	"Input.Months":       "Los meses no pueden ser negativos",
	"Input.Adults":       "Número de adultos inválido",
	"Input.Children":     "Número de niños inválido",
	"Input.Status":       "Estado de cotización inválido",
	"Input.PaymentLink":  "Link de pago inválido",
}

func (in *Input) trim() {
	in.ID = strings.TrimSpace(in.ID)
	in.Client.Name = strings.TrimSpace(in.Client.Name)
	in.Client.Phone = strings.TrimSpace(in.Client.Phone)
	in.Client.Email = strings.TrimSpace(in.Client.Email)
	in.Product = strings.TrimSpace(in.Product)
	in.Type = strings.TrimSpace(in.Type)
	in.PaymentLink = strings.TrimSpace(in.PaymentLink)
}

// Validate trims the free-text fields and checks the save rules: client
// name, product and a positive total.
func (in *Input) Validate() error {
	in.trim()
	return validator.Default().Struct(in, inputMessages)
}

// Build turns the input into a quote with derived fields populated. The id,
// timestamps and versions are left to the store.
func (in Input) Build() Quote {
	months := DefaultMonths
	if in.Months != nil {
		months = *in.Months
	}
	adults := DefaultAdults
	if in.Adults != nil {
		adults = *in.Adults
	}
	children := 0
	if in.Children != nil {
		children = *in.Children
	}
	ages := in.ChildrenAges
	if len(ages) > children {
		ages = ages[:children]
	}

	q := Quote{
		ID:            in.ID,
		Status:        in.Status,
		Client:        Client{Name: in.Client.Name, Phone: in.Client.Phone, Email: in.Client.Email},
		Type:          in.Type,
		Product:       in.Product,
		DateStart:     in.DateStart,
		DateEnd:       in.DateEnd,
		Adults:        adults,
		Children:      children,
		ChildrenAges:  ages,
		Includes:      in.Includes,
		Excludes:      in.Excludes,
		Itinerary:     in.Itinerary,
		Total:         in.Total,
		Deposit:       in.Deposit,
		Months:        months,
		Deadline:      in.Deadline,
		PaymentPlan:   in.PaymentPlan,
		PaymentLink:   in.PaymentLink,
		NextSteps:     in.NextSteps,
		NotesInternal: in.NotesInternal,
		NotesClient:   in.NotesClient,
		ValidUntil:    in.ValidUntil,
	}
	q.Recalculate()
	return q
}

// Merge copies the editable fields of next onto q, keeping identity,
// timestamps, history and the pipeline bookkeeping of q.
func (q Quote) Merge(next Quote) Quote {
	out := next
	out.ID = q.ID
	out.CreatedAt = q.CreatedAt
	out.UpdatedAt = q.UpdatedAt
	out.Versions = q.Versions
	out.Version = q.Version
	out.Subtotal = q.Subtotal
	out.Discount = q.Discount
	out.Clauses = q.Clauses
	out.Signature = q.Signature
	out.LastStageChange = q.LastStageChange
	out.LastContact = q.LastContact
	out.Recalculate()
	return out
}
