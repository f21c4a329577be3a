package quote

import (
	"strings"
	"time"
)

const defaultVersionNote = "Actualización manual"

// Patch holds the fields a new version may change. Nil fields are kept.
type Patch struct {
	Status        *Status  `json:"status,omitempty"`
	Product       *string  `json:"product,omitempty"`
	Type          *string  `json:"type,omitempty"`
	DateStart     *string  `json:"dateStart,omitempty"`
	DateEnd       *string  `json:"dateEnd,omitempty"`
	Adults        *int     `json:"adults,omitempty"`
	Children      *int     `json:"children,omitempty"`
	ChildrenAges  []int    `json:"childrenAges,omitempty"`
	Includes      *string  `json:"includes,omitempty"`
	Excludes      *string  `json:"excludes,omitempty"`
	Itinerary     *string  `json:"itinerary,omitempty"`
	Total         *float64 `json:"total,omitempty"`
	Deposit       *float64 `json:"deposit,omitempty"`
	Months        *int     `json:"months,omitempty"`
	Deadline      *string  `json:"deadline,omitempty"`
	PaymentPlan   *string  `json:"paymentPlan,omitempty"`
	PaymentLink   *string  `json:"paymentLink,omitempty"`
	NotesClient   *string  `json:"notesClient,omitempty"`
	NotesInternal *string  `json:"notesInternal,omitempty"`
	ValidUntil    *string  `json:"validUntil,omitempty"`
}

func (p Patch) Apply(q *Quote) {
	setIf(&q.Product, p.Product)
	setIf(&q.Type, p.Type)
	setIf(&q.DateStart, p.DateStart)
	setIf(&q.DateEnd, p.DateEnd)
	setIf(&q.Adults, p.Adults)
	setIf(&q.Children, p.Children)
	setIf(&q.Includes, p.Includes)
	setIf(&q.Excludes, p.Excludes)
	setIf(&q.Itinerary, p.Itinerary)
	setIf(&q.Total, p.Total)
	setIf(&q.Deposit, p.Deposit)
	setIf(&q.Months, p.Months)
	setIf(&q.Deadline, p.Deadline)
	setIf(&q.PaymentPlan, p.PaymentPlan)
	setIf(&q.PaymentLink, p.PaymentLink)
	setIf(&q.NotesClient, p.NotesClient)
	setIf(&q.NotesInternal, p.NotesInternal)
	setIf(&q.ValidUntil, p.ValidUntil)
	setIf(&q.Status, p.Status)
	if p.ChildrenAges != nil {
		q.ChildrenAges = append([]int(nil), p.ChildrenAges...)
	}
	q.Recalculate()
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// NewVersion records the current state of q as the next version, then applies
// the patch. q.Version ends one ahead of the last stored snapshot.
func NewVersion(q *Quote, p Patch, note string, now time.Time) {
	if strings.TrimSpace(note) == "" {
		note = defaultVersionNote
	}
	q.Versions = append(q.Versions, Version{
		Version:   len(q.Versions) + 1,
		Data:      q.Snapshot(),
		CreatedAt: now,
		Changes:   note,
	})
	p.Apply(q)
	q.Version = len(q.Versions) + 1
	q.UpdatedAt = now
}
