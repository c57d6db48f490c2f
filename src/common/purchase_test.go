package common

import (
	"testing"
	"time"

	"tixgate/src/lib"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeSessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "day", "starts_at", "ends_at", "is_active"}).
		AddRow(1, time.Now(), time.Now(), time.Now().Add(2*time.Hour), true)
}

func TestCreatePendingPurchase(t *testing.T) {
	_, mock := getMockDB()
	lib.NewRedisClient(nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(activeSessionRows())
	// duplicate heuristic finds nothing
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "session_limits" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(`INSERT INTO "attendees"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100 + i))
	}
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	result, err := CreatePendingPurchase(&PurchaseInput{
		SessionID:  1,
		Name:       "Maya Andersen",
		Phone:      "+45 20 11 22 33",
		Quantities: types.CategoryQuantities{Adult: 2, Child: 1},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Ticket)
	require.NotNil(t, result.Transaction)
	assert.False(t, result.Duplicate)
	assert.Equal(t, types.TICKET_PENDING, result.Ticket.Status)
	assert.Equal(t, types.PAYMENT_PENDING, result.Ticket.PaymentStatus)
	assert.Equal(t, uint(3), result.Ticket.TotalQty)
	assert.NotEmpty(t, result.Ticket.Code)
	assert.NotEmpty(t, result.Transaction.ReferenceID)
	assert.Equal(t, "+4520112233", result.Ticket.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingPurchaseZeroSeats(t *testing.T) {
	getMockDB()
	lib.NewRedisClient(nil)

	_, err := CreatePendingPurchase(&PurchaseInput{SessionID: 1, Quantities: types.CategoryQuantities{}})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreatePendingPurchaseUnknownSession(t *testing.T) {
	_, mock := getMockDB()
	lib.NewRedisClient(nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := CreatePendingPurchase(&PurchaseInput{
		SessionID:  77,
		Quantities: types.CategoryQuantities{Adult: 1},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingPurchaseInactiveSession(t *testing.T) {
	_, mock := getMockDB()
	lib.NewRedisClient(nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active"}).AddRow(1, false))
	mock.ExpectRollback()

	_, err := CreatePendingPurchase(&PurchaseInput{
		SessionID:  1,
		Quantities: types.CategoryQuantities{Adult: 1},
	})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingPurchaseExhausted(t *testing.T) {
	_, mock := getMockDB()
	lib.NewRedisClient(nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(activeSessionRows())
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "session_limits" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "session_limits"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "adult_available"}).AddRow(1, 1, 0))
	mock.ExpectRollback()

	_, err := CreatePendingPurchase(&PurchaseInput{
		SessionID:  1,
		Name:       "Maya Andersen",
		Phone:      "+4520112233",
		Quantities: types.CategoryQuantities{Adult: 1},
	})
	require.Error(t, err)
	assert.True(t, IsInventoryExhausted(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingPurchaseDuplicate(t *testing.T) {
	_, mock := getMockDB()
	lib.NewRedisClient(nil)

	txnID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(activeSessionRows())
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "code", "phone", "status", "amount"}).
			AddRow(10, 1, "abc123", "+4520112233", string(types.TICKET_PENDING), 150.0))
	mock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "reference_id", "status"}).
			AddRow(txnID.String(), 10, "ref-1", string(types.TRANSACTION_PENDING)))
	mock.ExpectCommit()

	result, err := CreatePendingPurchase(&PurchaseInput{
		SessionID:  1,
		Name:       "Maya Andersen",
		Phone:      "+45 20 11 22 33",
		Quantities: types.CategoryQuantities{Adult: 1},
	})
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, uint(10), result.Ticket.ID)
	require.NotNil(t, result.Transaction)
	assert.Equal(t, "ref-1", result.Transaction.ReferenceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildAttendees(t *testing.T) {
	input := &PurchaseInput{
		Name:       "Maya Andersen",
		Guests:     []string{"", "Lise Andersen"},
		Quantities: types.CategoryQuantities{Adult: 2, Child: 1},
	}
	rows := buildAttendees(&models.Ticket{ID: 10}, input)
	require.Len(t, rows, 3)
	assert.Equal(t, types.CATEGORY_ADULT, rows[0].Category)
	assert.Equal(t, types.CATEGORY_ADULT, rows[1].Category)
	assert.Equal(t, types.CATEGORY_CHILD, rows[2].Category)
	// purchaser is always the first attendee
	assert.Equal(t, "Maya Andersen", rows[0].Name)
	assert.Equal(t, "Lise Andersen", rows[1].Name)
	assert.Equal(t, uint(10), rows[0].TicketID)
}
