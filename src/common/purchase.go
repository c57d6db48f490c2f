package common

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"
	"tixgate/src/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseInput struct {
	SessionID      uint
	Name           string
	Phone          string
	Quantities     types.CategoryQuantities
	Guests         []string
	IdempotencyKey string
}

type PurchaseResult struct {
	Ticket      *models.Ticket
	Transaction *models.Transaction
	Duplicate   bool
}

// CreatePendingPurchase reserves seats and creates the Ticket, its Attendee
// rows and one pending Transaction in a single unit of work. If any part
// fails nothing is persisted.
func CreatePendingPurchase(input *PurchaseInput) (*PurchaseResult, error) {
	if input.Quantities.Total() == 0 {
		return nil, ErrInvalidState
	}
	phone := utils.NormalizePhone(input.Phone)
	amount := purchaseAmount(input.Quantities)

	result := &PurchaseResult{}
	database := db.GetDb()
	err := database.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		err := tx.
			Where(&models.Session{ID: input.SessionID}).
			First(&session).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !session.IsActive {
			return ErrInvalidState
		}

		existing, err := findDuplicate(tx, input, phone, amount)
		if err != nil {
			return err
		}
		if existing != nil {
			result.Ticket = existing
			result.Duplicate = true
			var txn models.Transaction
			err := tx.
				Where(&models.Transaction{TicketID: existing.ID, Status: types.TRANSACTION_PENDING}).
				First(&txn).
				Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				result.Transaction = &txn
			}
			return nil
		}

		if err := Reserve(tx, input.SessionID, input.Quantities); err != nil {
			return err
		}

		ticket := models.Ticket{
			SessionID:     input.SessionID,
			Code:          utils.NewTicketCode(),
			Name:          input.Name,
			Phone:         phone,
			AdultQty:      input.Quantities.Adult,
			StudentQty:    input.Quantities.Student,
			ChildQty:      input.Quantities.Child,
			TotalQty:      input.Quantities.Total(),
			Amount:        amount,
			PaymentStatus: types.PAYMENT_PENDING,
			Status:        types.TICKET_PENDING,
		}
		if input.IdempotencyKey != "" {
			ticket.IdempotencyKey = &input.IdempotencyKey
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}

		attendees := buildAttendees(&ticket, input)
		for i := range attendees {
			if err := tx.Create(&attendees[i]).Error; err != nil {
				return err
			}
		}

		txn := models.Transaction{
			TicketID:    ticket.ID,
			ReferenceID: uuid.NewString(),
			Amount:      amount,
			Status:      types.TRANSACTION_PENDING,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		result.Ticket = &ticket
		result.Transaction = &txn
		return nil
	})
	if err != nil {
		log.Printf("[purchase] CreatePendingPurchase failed: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}

// findDuplicate detects a retried purchase submission, either by the
// client-supplied idempotency key or by the (phone, session, amount, window)
// heuristic. A hit returns the existing ticket instead of double-booking.
func findDuplicate(tx *gorm.DB, input *PurchaseInput, phone string, amount float64) (*models.Ticket, error) {
	var existing models.Ticket
	if input.IdempotencyKey != "" {
		err := tx.
			Where(&models.Ticket{SessionID: input.SessionID}).
			Where("idempotency_key = ?", input.IdempotencyKey).
			First(&existing).
			Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	cutoff := time.Now().Add(-config.DuplicateWindow())
	err := tx.
		Where(&models.Ticket{SessionID: input.SessionID, Phone: phone, Status: types.TICKET_PENDING}).
		Where("amount = ?", amount).
		Where("created_at > ?", cutoff).
		First(&existing).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &existing, nil
}

// FindTransactionByReference is the reconciler's idempotency lookup.
func FindTransactionByReference(ref string) (*models.Transaction, error) {
	var txn models.Transaction
	err := db.GetDb().
		Where(&models.Transaction{ReferenceID: ref}).
		First(&txn).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func buildAttendees(ticket *models.Ticket, input *PurchaseInput) []models.Attendee {
	attendees := make([]models.Attendee, 0, input.Quantities.Total())
	nameAt := func(i int) string {
		if i < len(input.Guests) && input.Guests[i] != "" {
			return input.Guests[i]
		}
		return fmt.Sprintf("%s (guest %d)", input.Name, i+1)
	}
	i := 0
	for _, cat := range types.Categories() {
		for j := uint(0); j < input.Quantities.Of(cat); j++ {
			attendees = append(attendees, models.Attendee{
				TicketID: ticket.ID,
				Category: cat,
				Name:     nameAt(i),
			})
			i++
		}
	}
	if len(attendees) > 0 {
		attendees[0].Name = input.Name
	}
	return attendees
}

func purchaseAmount(q types.CategoryQuantities) float64 {
	amount := 0.0
	for _, cat := range types.Categories() {
		amount += config.CategoryPrice(string(cat)) * float64(q.Of(cat))
	}
	return amount
}
