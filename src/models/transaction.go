package models

import (
	"tixgate/src/types"

	"github.com/google/uuid"
)

// Transaction is one payment attempt for a ticket, keyed for idempotent
// webhook lookup by the provider's reference id. It transitions exactly once
// into a terminal state.
type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	TicketID     uint                    `gorm:"index" json:"ticket_id"`
	ReferenceID  string                  `gorm:"uniqueIndex" json:"reference_id"`
	Provider     string                  `json:"provider,omitempty"`
	PayerAccount string                  `json:"payer_account,omitempty"`
	Amount       float64                 `json:"amount"`
	Status       types.TransactionStatus `gorm:"default:'pending'" json:"status"`
	Message      string                  `json:"message,omitempty"`
	Raw          types.JSONB             `gorm:"type:jsonb" json:"-"`

	Ticket Ticket `json:"-"`

	types.Timestamps
}
