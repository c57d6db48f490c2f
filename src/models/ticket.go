package models

import (
	"database/sql/driver"

	"tixgate/src/types"
)

type TicketStatus types.TicketStatus

func (self *TicketStatus) Scan(value interface{}) error {
	*self = TicketStatus(value.([]byte))
	return nil
}

func (self TicketStatus) Value() (driver.Value, error) {
	return string(self), nil
}

// Ticket is a purchase intent. Created by the purchase flow; mutated only by
// the webhook reconciler (payment side) and the verification pipeline
// (usage side). Never deleted while payment is in flight.
type Ticket struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	SessionID uint   `json:"session_id,omitempty"`
	Code      string `gorm:"uniqueIndex" json:"code"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`

	AdultQty   uint `json:"adult_qty"`
	StudentQty uint `json:"student_qty"`
	ChildQty   uint `json:"child_qty"`
	TotalQty   uint `json:"total_qty"`

	Amount         float64             `json:"amount"`
	PaymentStatus  types.PaymentStatus `gorm:"default:'UNPAID'" json:"payment_status,omitempty"`
	Status         types.TicketStatus  `gorm:"default:'PENDING'" json:"status,omitempty"`
	IdempotencyKey *string             `gorm:"index" json:"-"`

	Session      *Session      `json:"session,omitempty"`
	Attendees    []Attendee    `json:"attendees,omitempty"`
	Transactions []Transaction `json:"transactions,omitempty"`

	types.Timestamps
}

func (t *Ticket) Quantities() types.CategoryQuantities {
	return types.CategoryQuantities{
		Adult:   t.AdultQty,
		Student: t.StudentQty,
		Child:   t.ChildQty,
	}
}
