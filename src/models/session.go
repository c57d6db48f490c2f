package models

import (
	"time"

	"tixgate/src/types"
)

// Session is an event time slot. Immutable after creation except for the
// IsActive toggle. Owns exactly one SessionLimits row.
type Session struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	Day      time.Time `gorm:"type:date" json:"day"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Slug     string    `gorm:"uniqueIndex" json:"slug,omitempty"`
	IsActive bool      `gorm:"default:false" json:"is_active"`

	Limits *SessionLimits `gorm:"foreignKey:SessionID" json:"limits,omitempty"`

	types.Timestamps
}

// SessionLimits is the inventory row for a session. Counters are only ever
// touched through the ledger's conditional updates; available = capacity - booked
// holds per category and for the aggregate.
type SessionLimits struct {
	ID        uint `gorm:"primarykey" json:"id"`
	SessionID uint `gorm:"uniqueIndex" json:"session_id"`

	AdultCapacity    uint `json:"adult_capacity"`
	AdultAvailable   uint `json:"adult_available"`
	AdultBooked      uint `json:"adult_booked"`
	StudentCapacity  uint `json:"student_capacity"`
	StudentAvailable uint `json:"student_available"`
	StudentBooked    uint `json:"student_booked"`
	ChildCapacity    uint `json:"child_capacity"`
	ChildAvailable   uint `json:"child_available"`
	ChildBooked      uint `json:"child_booked"`

	TotalCapacity  uint `json:"total_capacity"`
	TotalAvailable uint `json:"total_available"`
	TotalBooked    uint `json:"total_booked"`

	IsSoldOut bool `gorm:"default:false" json:"is_sold_out"`

	types.Timestamps
}
