package common

import (
	"fmt"
	"log"
	"strings"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// referenceFields are the provider payload keys tried, in order, for the
// transaction reference. Providers disagree on naming.
var referenceFields = []string{"transaction_id", "transactionId", "reference", "reference_id", "txn_ref", "ref_id"}

var statusFields = []string{"status", "transaction_status", "state", "result"}

// statusMapping normalizes the provider's free-text status. Lookups are
// case-insensitive; anything unmapped becomes TRANSACTION_UNKNOWN.
var statusMapping = map[string]types.TransactionStatus{
	"success":    types.TRANSACTION_SUCCESS,
	"successful": types.TRANSACTION_SUCCESS,
	"succeeded":  types.TRANSACTION_SUCCESS,
	"completed":  types.TRANSACTION_SUCCESS,
	"paid":       types.TRANSACTION_SUCCESS,
	"approved":   types.TRANSACTION_SUCCESS,
	"failed":     types.TRANSACTION_FAILED,
	"failure":    types.TRANSACTION_FAILED,
	"declined":   types.TRANSACTION_FAILED,
	"rejected":   types.TRANSACTION_FAILED,
	"cancelled":  types.TRANSACTION_FAILED,
	"canceled":   types.TRANSACTION_FAILED,
	"expired":    types.TRANSACTION_FAILED,
	"pending":    types.TRANSACTION_PENDING,
	"processing": types.TRANSACTION_PENDING,
	"initiated":  types.TRANSACTION_PENDING,
}

func NormalizeProviderStatus(raw string) types.TransactionStatus {
	if mapped, ok := statusMapping[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return mapped
	}
	return types.TRANSACTION_UNKNOWN
}

// ReconcileOutcome tells the webhook handler what was decided. NoOp marks an
// idempotent replay that must still be answered with success.
type ReconcileOutcome struct {
	Status      types.TransactionStatus
	TicketID    uint
	ReferenceID string
	NoOp        bool
}

// ReconcileWebhook applies one provider callback to the stored state. Every
// branch commits atomically; notification side effects run after commit and
// never affect the returned outcome.
func ReconcileWebhook(payload []byte) (*ReconcileOutcome, error) {
	ref := extractField(payload, referenceFields)
	if ref == "" {
		return nil, ErrMissingReference
	}
	txn, err := FindTransactionByReference(ref)
	if err != nil {
		return nil, err
	}

	rawStatus := extractField(payload, statusFields)
	normalized := NormalizeProviderStatus(rawStatus)
	outcome := &ReconcileOutcome{
		Status:      normalized,
		TicketID:    txn.TicketID,
		ReferenceID: ref,
	}

	// Idempotency gate: a replayed callback for an already-terminal
	// transaction is acknowledged without re-applying side effects.
	if txn.Status.IsTerminal() {
		if txn.Status != normalized {
			log.Printf("[webhook] ref=%s already terminal (%s), ignoring conflicting status %q\n", ref, txn.Status, rawStatus)
		}
		outcome.NoOp = true
		return outcome, nil
	}

	raw := rawPayload(payload)
	message := fmt.Sprintf("provider status %q", rawStatus)

	switch normalized {
	case types.TRANSACTION_SUCCESS:
		applied, err := applySuccess(txn, raw, message, payload)
		if err != nil {
			return nil, err
		}
		outcome.NoOp = !applied
		if applied {
			notifyPaymentConfirmed(txn.TicketID)
		}
	case types.TRANSACTION_FAILED:
		applied, err := applyFailure(txn, raw, message)
		if err != nil {
			return nil, err
		}
		outcome.NoOp = !applied
		if applied {
			notifyPaymentFailed(txn.TicketID)
		}
	case types.TRANSACTION_PENDING:
		if txn.Status == types.TRANSACTION_PENDING {
			outcome.NoOp = true
			break
		}
		err := db.GetDb().
			Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Where("status NOT IN ?", []types.TransactionStatus{types.TRANSACTION_SUCCESS, types.TRANSACTION_FAILED}).
			Updates(&models.Transaction{Status: types.TRANSACTION_PENDING, Message: message, Raw: raw}).
			Error
		if err != nil {
			return nil, err
		}
	case types.TRANSACTION_UNKNOWN:
		// Absorbing state: record the payload for manual review, leave the
		// ticket and inventory untouched.
		err := db.GetDb().
			Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Where("status NOT IN ?", []types.TransactionStatus{types.TRANSACTION_SUCCESS, types.TRANSACTION_FAILED}).
			Updates(&models.Transaction{Status: types.TRANSACTION_UNKNOWN, Message: message, Raw: raw}).
			Error
		if err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// applySuccess commits the success branch: terminal transaction write,
// ticket PAID/CONFIRMED. The seat reservation taken at purchase time simply
// becomes permanent. Returns false when a concurrent delivery won the race.
func applySuccess(txn *models.Transaction, raw types.JSONB, message string, payload []byte) (bool, error) {
	applied := false
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Where("status NOT IN ?", []types.TransactionStatus{types.TRANSACTION_SUCCESS, types.TRANSACTION_FAILED}).
			Updates(&models.Transaction{
				Status:       types.TRANSACTION_SUCCESS,
				Message:      message,
				Raw:          raw,
				Provider:     extractField(payload, []string{"provider", "source"}),
				PayerAccount: extractField(payload, []string{"payer", "payer_account", "msisdn"}),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := MarkPaid(tx, txn.TicketID); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// applyFailure commits the failure branch and returns the reserved seats to
// the pool inside the same transaction.
func applyFailure(txn *models.Transaction, raw types.JSONB, message string) (bool, error) {
	applied := false
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Where("status NOT IN ?", []types.TransactionStatus{types.TRANSACTION_SUCCESS, types.TRANSACTION_FAILED}).
			Updates(&models.Transaction{Status: types.TRANSACTION_FAILED, Message: message, Raw: raw})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var ticket models.Ticket
		if err := tx.Where(&models.Ticket{ID: txn.TicketID}).First(&ticket).Error; err != nil {
			return err
		}
		if err := MarkFailed(tx, txn.TicketID); err != nil {
			return err
		}
		if err := Release(tx, ticket.SessionID, ticket.Quantities()); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// MarkPaid flips a ticket to PAID/CONFIRMED. Used only by the reconciler.
func MarkPaid(tx *gorm.DB, ticketID uint) error {
	return tx.
		Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		Updates(&models.Ticket{
			PaymentStatus: types.PAYMENT_PAID,
			Status:        types.TICKET_CONFIRMED,
		}).
		Error
}

// MarkFailed flips a ticket to FAILED/CANCELLED. Used only by the reconciler.
func MarkFailed(tx *gorm.DB, ticketID uint) error {
	return tx.
		Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		Updates(&models.Ticket{
			PaymentStatus: types.PAYMENT_FAILED,
			Status:        types.TICKET_CANCELED,
		}).
		Error
}

// MarkRefunded records a provider-side refund against a confirmed ticket.
func MarkRefunded(tx *gorm.DB, ticketID uint) error {
	return tx.
		Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		Where("payment_status = ?", types.PAYMENT_PAID).
		Updates(&models.Ticket{
			PaymentStatus: types.PAYMENT_REFUNDED,
			Status:        types.TICKET_CANCELED,
		}).
		Error
}

func extractField(payload []byte, fields []string) string {
	for _, f := range fields {
		if v := gjson.GetBytes(payload, f); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func rawPayload(payload []byte) types.JSONB {
	raw := types.JSONB{}
	parsed := gjson.ParseBytes(payload)
	if !parsed.IsObject() {
		raw["_raw"] = string(payload)
		return raw
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		raw[key.String()] = value.Value()
		return true
	})
	return raw
}
