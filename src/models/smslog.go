package models

import "tixgate/src/types"

// SmsLog records every outbound SMS attempt. Writes are best-effort: a failed
// insert never blocks the payment path.
type SmsLog struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	TicketID  uint    `gorm:"index" json:"ticket_id,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Kind      string  `json:"kind,omitempty"`
	MessageID *string `json:"message_id,omitempty"`
	Status    string  `json:"status,omitempty"`
	Error     *string `json:"error,omitempty"`

	types.Timestamps
}
