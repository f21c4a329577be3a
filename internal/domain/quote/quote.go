package quote

import "time"

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSent        Status = "sent"
	StatusViewed      Status = "viewed"
	StatusNegotiating Status = "negotiating"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusExpired     Status = "expired"
)

var statuses = map[Status]StatusInfo{
	StatusDraft:       {Name: "Borrador", Icon: "📝"},
	StatusSent:        {Name: "Enviada", Icon: "📤"},
	StatusViewed:      {Name: "Vista", Icon: "👁️"},
	StatusNegotiating: {Name: "En negociación", Icon: "💬"},
	StatusAccepted:    {Name: "Aceptada", Icon: "✅"},
	StatusRejected:    {Name: "Rechazada", Icon: "❌"},
	StatusExpired:     {Name: "Expirada", Icon: "⏰"},
}

type StatusInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s Status) Valid() bool {
	_, ok := statuses[s]
	return ok
}

// Info falls back to the draft entry for unknown or empty statuses.
func (s Status) Info() StatusInfo {
	if info, ok := statuses[s]; ok {
		return info
	}
	return statuses[StatusDraft]
}

// Normalize maps the empty status to draft.
func (s Status) Normalize() Status {
	if s == "" {
		return StatusDraft
	}
	return s
}

type ProductType struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var productTypes = map[string]ProductType{
	"crucero-disney": {Name: "Crucero Disney", Icon: "🚢"},
	"crucero-royal":  {Name: "Crucero Royal Caribbean", Icon: "⚓"},
	"parques-wdw":    {Name: "Walt Disney World", Icon: "🏰"},
	"parques-dl":     {Name: "Disneyland California", Icon: "🎢"},
	"hotel-disney":   {Name: "Hotel Disney", Icon: "🏨"},
	"hotel":          {Name: "Hotel", Icon: "🏨"},
	"paquete":        {Name: "Paquete completo", Icon: "📦"},
	"universal":      {Name: "Universal Studios", Icon: "🎬"},
	"otro":           {Name: "Otro destino", Icon: "✈️"},
}

func TypeInfo(t string) ProductType {
	if info, ok := productTypes[t]; ok {
		return info
	}
	return productTypes["otro"]
}

type Client struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Discount struct {
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	Amount    float64   `json:"amount"`
	AppliedAt time.Time `json:"appliedAt"`
}

type Clause struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type Signature struct {
	Requested   time.Time `json:"requested"`
	ClientEmail string    `json:"clientEmail"`
	Status      string    `json:"status"`
	Link        string    `json:"link"`
}

// Version is a snapshot of a quote taken before a change was applied.
type Version struct {
	Version   int       `json:"version"`
	Data      Quote     `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	Changes   string    `json:"changes"`
}

// Quote is stored with the same camelCase field names the browser app used,
// so exported backups round-trip between the two.
type Quote struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Client Client `json:"client"`

	Type         string `json:"type"`
	Product      string `json:"product"`
	DateStart    string `json:"dateStart"`
	DateEnd      string `json:"dateEnd"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
	ChildrenAges []int  `json:"childrenAges"`
	Dates        string `json:"dates"`
	Travelers    string `json:"travelers"`

	Includes  string `json:"includes"`
	Excludes  string `json:"excludes"`
	Itinerary string `json:"itinerary"`

	Total       float64 `json:"total"`
	Deposit     float64 `json:"deposit"`
	Months      int     `json:"months"`
	Monthly     float64 `json:"monthly"`
	Deadline    string  `json:"deadline"`
	PaymentPlan string  `json:"paymentPlan"`
	PaymentLink string  `json:"paymentLink"`
	NextSteps   string  `json:"nextSteps"`

	NotesInternal string `json:"notesInternal"`
	NotesClient   string `json:"notesClient"`
	ValidUntil    string `json:"validUntil"`

	Subtotal        float64           `json:"subtotal,omitempty"`
	Discount        *Discount         `json:"discount,omitempty"`
	Clauses         map[string]Clause `json:"clauses,omitempty"`
	Signature       *Signature        `json:"signature,omitempty"`
	LastStageChange *time.Time        `json:"lastStageChange,omitempty"`
	LastContact     *time.Time        `json:"lastContact,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version,omitempty"`
	Versions  []Version `json:"versions,omitempty"`
}

// Recalculate restores the derived fields from the stored inputs.
func (q *Quote) Recalculate() {
	q.Status = q.Status.Normalize()
	q.Monthly = Monthly(q.Total, q.Deposit, q.Months)
	q.Dates = FormatDateRange(q.DateStart, q.DateEnd)
	q.Travelers = FormatTravelers(q.Adults, q.Children, q.ChildrenAges)
}

// Snapshot copies q without its version history.
func (q Quote) Snapshot() Quote {
	s := q
	s.Versions = nil
	if q.ChildrenAges != nil {
		s.ChildrenAges = append([]int(nil), q.ChildrenAges...)
	}
	if q.Clauses != nil {
		s.Clauses = make(map[string]Clause, len(q.Clauses))
		for k, v := range q.Clauses {
			s.Clauses[k] = v
		}
	}
	return s
}
