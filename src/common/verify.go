package common

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
)

// VerifyTicket runs the entry-gate pipeline for a scanned or typed code.
// Steps evaluate in a fixed order and stop at the first failure; every
// evaluated step's outcome is reported so the gate UI can render a checklist.
// The result is always structured, never a bare error.
func VerifyTicket(code string, now time.Time) *types.VerifyResponse {
	resp := &types.VerifyResponse{Steps: make([]types.VerifyStepResult, 0, 5)}

	fail := func(step types.VerifyStep, message string) *types.VerifyResponse {
		resp.Steps = append(resp.Steps, types.VerifyStepResult{Step: step, Passed: false, Message: message})
		resp.Success = false
		s := step
		resp.Step = &s
		resp.Message = message
		return resp
	}
	pass := func(step types.VerifyStep) {
		resp.Steps = append(resp.Steps, types.VerifyStepResult{Step: step, Passed: true})
	}

	// EXISTENCE
	ticket, err := lookupTicket(code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(types.STEP_EXISTENCE, "No ticket found for this code")
		}
		log.Printf("[verify] Error looking up code %q: %s\n", code, err.Error())
		return fail(types.STEP_EXISTENCE, "Ticket lookup failed")
	}
	pass(types.STEP_EXISTENCE)

	// PAYMENT
	if ticket.PaymentStatus != types.PAYMENT_PAID {
		return fail(types.STEP_PAYMENT, fmt.Sprintf("Ticket is not paid (payment status: %s)", ticket.PaymentStatus))
	}
	pass(types.STEP_PAYMENT)

	// DAY
	session := ticket.Session
	if session == nil {
		return fail(types.STEP_DAY, "Ticket has no session")
	}
	if !sameDay(session.Day, now) {
		return fail(types.STEP_DAY, fmt.Sprintf("Ticket is valid on %s, not today", session.Day.Format(config.DAY_PARSE_FORMAT)))
	}
	pass(types.STEP_DAY)

	// SESSION
	gateOpens := session.StartsAt.Add(-config.EntryLead())
	if now.Before(gateOpens) || now.After(session.EndsAt) {
		return fail(types.STEP_SESSION, fmt.Sprintf(
			"Entry window is %s - %s",
			gateOpens.Format("15:04"), session.EndsAt.Format("15:04"),
		))
	}
	pass(types.STEP_SESSION)

	// USAGE: claim the next unused attendee with a conditional update so two
	// concurrent scans of the same code cannot both take one slot.
	guest, err := claimAttendee(ticket, now)
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			return fail(types.STEP_USAGE, "All guests on this ticket have already been admitted")
		}
		log.Printf("[verify] Error claiming attendee for ticket %d: %s\n", ticket.ID, err.Error())
		return fail(types.STEP_USAGE, "Admission could not be recorded")
	}
	pass(types.STEP_USAGE)

	resp.Success = true
	resp.Message = fmt.Sprintf("Welcome, %s", guest.GuestName)
	resp.Data = guest
	return resp
}

// lookupTicket accepts the opaque ticket code or, for manual entry, the
// numeric ticket id.
func lookupTicket(code string) (*models.Ticket, error) {
	database := db.GetDb()
	var ticket models.Ticket
	err := database.
		Where(&models.Ticket{Code: code}).
		Preload("Session").
		First(&ticket).
		Error
	if err == nil {
		return &ticket, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	id, convErr := strconv.Atoi(code)
	if convErr != nil || id <= 0 {
		return nil, ErrNotFound
	}
	err = database.
		Where(&models.Ticket{ID: uint(id)}).
		Preload("Session").
		First(&ticket).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// claimAttendee marks the lowest-id unused attendee as used and re-derives
// the ticket's aggregate status, all in one transaction. Losing every
// conditional update to concurrent scans yields ErrInvalidState.
func claimAttendee(ticket *models.Ticket, now time.Time) (*types.AdmittedGuest, error) {
	var guest *types.AdmittedGuest
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var attendees []models.Attendee
		err := tx.
			Where(&models.Attendee{TicketID: ticket.ID}).
			Where("is_used = ?", false).
			Order("id asc").
			Find(&attendees).
			Error
		if err != nil {
			return err
		}
		if len(attendees) == 0 {
			return ErrInvalidState
		}

		var claimed *models.Attendee
		for i := range attendees {
			res := tx.
				Model(&models.Attendee{}).
				Where("id = ? AND is_used = ?", attendees[i].ID, false).
				Updates(map[string]any{"is_used": true, "used_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				claimed = &attendees[i]
				break
			}
		}
		if claimed == nil {
			return ErrInvalidState
		}

		var remaining int64
		err = tx.
			Model(&models.Attendee{}).
			Where(&models.Attendee{TicketID: ticket.ID}).
			Where("is_used = ?", false).
			Count(&remaining).
			Error
		if err != nil {
			return err
		}
		status := types.TICKET_PARTIALLY_USED
		if remaining == 0 {
			status = types.TICKET_ALL_USED
		}
		err = tx.
			Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Update("status", status).
			Error
		if err != nil {
			return err
		}

		guest = &types.AdmittedGuest{
			GuestName: claimed.Name,
			Category:  claimed.Category,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func sameDay(day time.Time, now time.Time) bool {
	y1, m1, d1 := day.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
