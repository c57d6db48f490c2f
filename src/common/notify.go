package common

import (
	"context"
	"fmt"
	"log"

	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"
)

// notifyPaymentConfirmed fires the "payment confirmed" SMS and publishes the
// confirmation to the event bus. Runs after the reconciliation commit;
// failures are logged, alerted and swallowed.
func notifyPaymentConfirmed(ticketID uint) {
	ticket, err := loadTicketForNotify(ticketID)
	if err != nil {
		log.Printf("[notify] Could not load ticket %d: %s\n", ticketID, err.Error())
		return
	}
	message := fmt.Sprintf(
		"Payment received. Your ticket %s for %d guest(s) is confirmed. Present the QR code at the gate.",
		ticket.Code, ticket.TotalQty,
	)
	sendSMS(ticket, "payment_confirmed", message)

	if err := lib.KafkaProduceMessage("reconciler", lib.TOPIC_TICKETS_CONFIRMED, map[string]any{
		"ticket_id": ticket.ID,
		"code":      ticket.Code,
		"session":   ticket.SessionID,
		"amount":    ticket.Amount,
	}); err != nil {
		log.Printf("[notify] Error publishing confirmation for ticket %d: %s\n", ticket.ID, err.Error())
	}
}

// notifyPaymentFailed fires the "payment failed" SMS.
func notifyPaymentFailed(ticketID uint) {
	ticket, err := loadTicketForNotify(ticketID)
	if err != nil {
		log.Printf("[notify] Could not load ticket %d: %s\n", ticketID, err.Error())
		return
	}
	message := fmt.Sprintf(
		"Your payment for ticket %s could not be completed. The reserved seats have been released.",
		ticket.Code,
	)
	sendSMS(ticket, "payment_failed", message)
}

// sendSMS delivers one message with a single retry and a bounded timeout,
// logs the attempt, and raises an ops alert on final failure. Never returns
// an error: notification failure is the one sanctioned recovered-locally case.
func sendSMS(ticket *models.Ticket, kind string, message string) {
	sender := lib.GetSMSSender()
	if sender == nil {
		log.Printf("[notify] No SMS sender configured, skipping %s for ticket %d\n", kind, ticket.ID)
		return
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.SMSTimeout())
		result, err := sender.Send(ctx, ticket.Phone, message)
		cancel()
		if err == nil {
			logSMS(ticket, kind, result.MessageID, "sent", nil)
			return
		}
		lastErr = err
		log.Printf("[notify] SMS %s attempt %d for ticket %d failed: %s\n", kind, attempt+1, ticket.ID, err.Error())
	}

	logSMS(ticket, kind, "", "failed", lastErr)
	if err := lib.KafkaProduceMessage("reconciler", lib.TOPIC_OPS_ALERTS, map[string]any{
		"alert":     "sms_delivery_failed",
		"kind":      kind,
		"ticket_id": ticket.ID,
		"phone":     ticket.Phone,
		"error":     lastErr.Error(),
	}); err != nil {
		log.Printf("[notify] Error raising ops alert for ticket %d: %s\n", ticket.ID, err.Error())
	}
}

func logSMS(ticket *models.Ticket, kind string, messageID string, status string, sendErr error) {
	entry := models.SmsLog{
		TicketID: ticket.ID,
		Phone:    ticket.Phone,
		Kind:     kind,
		Status:   status,
	}
	if messageID != "" {
		entry.MessageID = &messageID
	}
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Error = &msg
	}
	if err := db.GetDb().Create(&entry).Error; err != nil {
		log.Printf("[notify] Error writing sms log for ticket %d: %s\n", ticket.ID, err.Error())
	}
}

func loadTicketForNotify(ticketID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := db.GetDb().
		Where(&models.Ticket{ID: ticketID}).
		First(&ticket).
		Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
