package common

import (
	"testing"
	"time"

	"tixgate/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gateNow = time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

func verifiableTicketRows(paymentStatus types.PaymentStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "session_id", "code", "name", "phone", "payment_status", "status", "total_qty"}).
		AddRow(10, 1, "abc123", "Ana", "+4520112233", string(paymentStatus), string(types.TICKET_CONFIRMED), 2)
}

func sessionRowsFor(day time.Time, startsAt time.Time, endsAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "day", "starts_at", "ends_at", "is_active"}).
		AddRow(1, day, startsAt, endsAt, true)
}

func todayRows() *sqlmock.Rows {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return sessionRowsFor(day,
		time.Date(2026, 9, 1, 17, 30, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC))
}

func TestVerifyUnknownCode(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp := VerifyTicket("nope", gateNow)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Step)
	assert.Equal(t, types.STEP_EXISTENCE, *resp.Step)
	require.Len(t, resp.Steps, 1)
	assert.False(t, resp.Steps[0].Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyNumericIDFallback(t *testing.T) {
	_, mock := getMockDB()

	// code miss, then numeric id hit
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(verifiableTicketRows(types.PAYMENT_PENDING))
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(todayRows())

	resp := VerifyTicket("10", gateNow)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Step)
	assert.Equal(t, types.STEP_PAYMENT, *resp.Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyRejectsUnpaid(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(verifiableTicketRows(types.PAYMENT_UNPAID))
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(todayRows())

	resp := VerifyTicket("abc123", gateNow)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Step)
	assert.Equal(t, types.STEP_PAYMENT, *resp.Step)
	require.Len(t, resp.Steps, 2)
	assert.True(t, resp.Steps[0].Passed)
	assert.False(t, resp.Steps[1].Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyRejectsWrongDay(t *testing.T) {
	_, mock := getMockDB()

	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(verifiableTicketRows(types.PAYMENT_PAID))
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(sessionRowsFor(day,
			time.Date(2026, 9, 2, 17, 30, 0, 0, time.UTC),
			time.Date(2026, 9, 2, 20, 0, 0, 0, time.UTC)))

	resp := VerifyTicket("abc123", gateNow)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Step)
	assert.Equal(t, types.STEP_DAY, *resp.Step)
	assert.Contains(t, resp.Message, "2026-09-02")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyRejectsBeforeEntryWindow(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(verifiableTicketRows(types.PAYMENT_PAID))
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(todayRows())

	// gate opens 17:00, scan at 09:00
	early := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	resp := VerifyTicket("abc123", early)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Step)
	assert.Equal(t, types.STEP_SESSION, *resp.Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyRejectsExhaustedTicket(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(verifiableTicketRows(types.PAYMENT_PAID))
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(todayRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	resp := VerifyTicket("abc123", gateNow)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Step)
	assert.Equal(t, types.STEP_USAGE, *resp.Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyAdmitsNextGuest(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(verifiableTicketRows(types.PAYMENT_PAID))
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(todayRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "category", "name", "is_used"}).
			AddRow(5, 10, string(types.CATEGORY_ADULT), "Ana", false).
			AddRow(6, 10, string(types.CATEGORY_CHILD), "Mia", false))
	mock.ExpectExec(`UPDATE "attendees" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`UPDATE "tickets" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp := VerifyTicket("abc123", gateNow)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Step)
	require.Len(t, resp.Steps, 5)
	for _, step := range resp.Steps {
		assert.True(t, step.Passed, "step %s", step.Step)
	}
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Ana", resp.Data.GuestName)
	assert.Equal(t, types.CATEGORY_ADULT, resp.Data.Category)
	assert.Equal(t, "Welcome, Ana", resp.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyConcurrentScanLosesEveryClaim(t *testing.T) {
	_, mock := getMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
		WillReturnRows(verifiableTicketRows(types.PAYMENT_PAID))
	mock.ExpectQuery(`SELECT (.+) FROM "sessions"`).
		WillReturnRows(todayRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticket_id", "category", "name", "is_used"}).
			AddRow(5, 10, string(types.CATEGORY_ADULT), "Ana", false))
	// another gate claimed the slot between read and write
	mock.ExpectExec(`UPDATE "attendees" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	resp := VerifyTicket("abc123", gateNow)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Step)
	assert.Equal(t, types.STEP_USAGE, *resp.Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSameDayIgnoresClock(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, sameDay(day, time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)))
	assert.False(t, sameDay(day, time.Date(2026, 9, 2, 0, 1, 0, 0, time.UTC)))
}
