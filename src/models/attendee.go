package models

import (
	"time"

	"tixgate/src/types"
)

// Attendee is one admitted person under a ticket. Rows are created atomically
// with the ticket and never re-created; the only mutation is the one-shot
// is_used flip performed by the verification pipeline.
type Attendee struct {
	ID       uint           `gorm:"primarykey" json:"id"`
	TicketID uint           `gorm:"index" json:"ticket_id,omitempty"`
	Category types.Category `json:"category,omitempty"`
	Name     string         `json:"name,omitempty"`
	IsUsed   bool           `gorm:"default:false" json:"is_used"`
	UsedAt   *time.Time     `json:"used_at,omitempty"`

	Ticket Ticket `json:"-"`

	types.Timestamps
}
