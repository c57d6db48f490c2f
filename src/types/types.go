package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Category string

const (
	CATEGORY_ADULT   Category = "adult"
	CATEGORY_STUDENT Category = "student"
	CATEGORY_CHILD   Category = "child"
)

func Categories() []Category {
	return []Category{CATEGORY_ADULT, CATEGORY_STUDENT, CATEGORY_CHILD}
}

type PaymentStatus string

const (
	PAYMENT_UNPAID   PaymentStatus = "UNPAID"
	PAYMENT_PENDING  PaymentStatus = "PENDING"
	PAYMENT_PAID     PaymentStatus = "PAID"
	PAYMENT_FAILED   PaymentStatus = "FAILED"
	PAYMENT_REFUNDED PaymentStatus = "REFUNDED"
)

type TicketStatus string

const (
	TICKET_PENDING        TicketStatus = "PENDING"
	TICKET_CONFIRMED      TicketStatus = "CONFIRMED"
	TICKET_CANCELED       TicketStatus = "CANCELLED"
	TICKET_PARTIALLY_USED TicketStatus = "PARTIALLY_USED"
	TICKET_ALL_USED       TicketStatus = "ALL_USED"
	TICKET_EXPIRED        TicketStatus = "EXPIRED"
)

type TransactionStatus string

const (
	TRANSACTION_PENDING TransactionStatus = "pending"
	TRANSACTION_SUCCESS TransactionStatus = "success"
	TRANSACTION_FAILED  TransactionStatus = "failed"
	TRANSACTION_UNKNOWN TransactionStatus = "unknown"
)

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TRANSACTION_SUCCESS || s == TRANSACTION_FAILED
}

type VerifyStep string

const (
	STEP_EXISTENCE VerifyStep = "EXISTENCE"
	STEP_PAYMENT   VerifyStep = "PAYMENT"
	STEP_DAY       VerifyStep = "DAY"
	STEP_SESSION   VerifyStep = "SESSION"
	STEP_USAGE     VerifyStep = "USAGE"
)

// CategoryQuantities carries per-category seat counts through the
// purchase and ledger paths.
type CategoryQuantities struct {
	Adult   uint `json:"adult"`
	Student uint `json:"student"`
	Child   uint `json:"child"`
}

func (q CategoryQuantities) Total() uint {
	return q.Adult + q.Student + q.Child
}

func (q CategoryQuantities) Of(cat Category) uint {
	switch cat {
	case CATEGORY_ADULT:
		return q.Adult
	case CATEGORY_STUDENT:
		return q.Student
	case CATEGORY_CHILD:
		return q.Child
	}
	return 0
}

type CreateSessionRequestBody struct {
	Day             string `json:"day" binding:"required,sessionday"`
	StartsAt        string `json:"starts_at" binding:"required"`
	EndsAt          string `json:"ends_at" binding:"required"`
	AdultCapacity   uint   `json:"adult_capacity" binding:"required"`
	StudentCapacity uint   `json:"student_capacity"`
	ChildCapacity   uint   `json:"child_capacity"`
	Activate        bool   `json:"activate,omitempty"`
}

type PurchaseRequestBody struct {
	SessionID      uint     `json:"session_id" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	Phone          string   `json:"phone" binding:"required,phonenumber"`
	Adult          uint     `json:"adult"`
	Student        uint     `json:"student"`
	Child          uint     `json:"child"`
	Guests         []string `json:"guests,omitempty"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

func (b PurchaseRequestBody) Quantities() CategoryQuantities {
	return CategoryQuantities{Adult: b.Adult, Student: b.Student, Child: b.Child}
}

type VerifyRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type AdmittedGuest struct {
	GuestName string   `json:"guest_name"`
	Category  Category `json:"category"`
}

type VerifyStepResult struct {
	Step    VerifyStep `json:"step"`
	Passed  bool       `json:"passed"`
	Message string     `json:"message,omitempty"`
}

type VerifyResponse struct {
	Success bool               `json:"success"`
	Step    *VerifyStep        `json:"step"`
	Message string             `json:"message"`
	Steps   []VerifyStepResult `json:"steps"`
	Data    *AdmittedGuest     `json:"data,omitempty"`
}
