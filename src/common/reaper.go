package common

import (
	"log"
	"time"

	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
)

// ReapExpiredTickets releases inventory for PENDING tickets older than the
// configured TTL. Seats were taken at purchase-submission time; without this
// sweep an abandoned checkout would lock them forever.
func ReapExpiredTickets() (int, error) {
	cutoff := time.Now().Add(-config.PendingTicketTTL())
	database := db.GetDb()

	var candidates []models.Ticket
	err := database.
		Where(&models.Ticket{Status: types.TICKET_PENDING}).
		Where("created_at < ?", cutoff).
		Find(&candidates).
		Error
	if err != nil {
		return 0, err
	}

	reaped := 0
	for i := range candidates {
		ticket := &candidates[i]
		err := database.Transaction(func(tx *gorm.DB) error {
			// A webhook may confirm the ticket between the scan and this
			// transaction; the guard makes the expiry a no-op in that case.
			res := tx.
				Model(&models.Ticket{}).
				Where("id = ? AND status = ?", ticket.ID, types.TICKET_PENDING).
				Updates(&models.Ticket{Status: types.TICKET_EXPIRED, PaymentStatus: types.PAYMENT_UNPAID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			err := tx.
				Model(&models.Transaction{}).
				Where("ticket_id = ?", ticket.ID).
				Where("status NOT IN ?", []types.TransactionStatus{types.TRANSACTION_SUCCESS, types.TRANSACTION_FAILED}).
				Updates(&models.Transaction{Status: types.TRANSACTION_FAILED, Message: "expired by reaper"}).
				Error
			if err != nil {
				return err
			}
			if err := Release(tx, ticket.SessionID, ticket.Quantities()); err != nil {
				return err
			}
			reaped++
			return nil
		})
		if err != nil {
			log.Printf("[reaper] Error expiring ticket %d: %s\n", ticket.ID, err.Error())
		}
	}

	if reaped > 0 {
		log.Printf("[reaper] Released inventory for %d expired ticket(s)\n", reaped)
		if err := lib.KafkaProduceMessage("reaper", lib.TOPIC_OPS_ALERTS, map[string]any{
			"alert":  "pending_tickets_reaped",
			"count":  reaped,
			"cutoff": cutoff,
		}); err != nil {
			log.Printf("[reaper] Error publishing sweep summary: %s\n", err.Error())
		}
	}
	return reaped, nil
}

// RunReaper is the gocron task body.
func RunReaper() {
	if _, err := ReapExpiredTickets(); err != nil {
		log.Printf("[reaper] Sweep failed: %s\n", err.Error())
	}
}
