package service

import (
	"context"
	"errors"
	"testing"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/gateway"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPayment_CashSettlesBooking(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	b := f.book(t, customer, 9, 11, "A1")
	require.Equal(t, int64(600), b.TotalAmount)

	summary, err := f.payments.RecordPayment(context.Background(), counter, RecordPaymentInput{
		BookingID: b.ID, Amount: 600, Method: models.MethodCash,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(600), summary.CashPaid)
	assert.Equal(t, int64(0), summary.OnlinePaid)
	assert.Equal(t, int64(0), summary.BalanceDue)

	got, err := f.bookings.GetBooking(context.Background(), admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)
	assert.Equal(t, []string{"booking.created", "payment.recorded", "booking.paid"}, f.publisher.Keys())
	assert.Zero(t, f.gateway.calls)
}

func TestRecordPayment_SplitCardAndCash(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	b := f.book(t, customer, 9, 11, "A1")

	summary, err := f.payments.RecordPayment(context.Background(), customer, RecordPaymentInput{
		BookingID: b.ID, Amount: 250, Method: models.MethodCard, CardToken: "tokn_test",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(250), summary.OnlinePaid)
	assert.Equal(t, int64(350), summary.BalanceDue)

	got, err := f.bookings.GetBooking(context.Background(), admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	summary, err = f.payments.RecordPayment(context.Background(), counter, RecordPaymentInput{
		BookingID: b.ID, Amount: 350, Method: models.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(250), summary.OnlinePaid)
	assert.Equal(t, int64(350), summary.CashPaid)
	assert.Equal(t, int64(0), summary.BalanceDue)

	payments, err := f.payments.ListPayments(context.Background(), admin, b.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.NotNil(t, payments[0].GatewayTxnID)
	assert.Equal(t, "txn-"+payments[0].Reference, *payments[0].GatewayTxnID)
	assert.Nil(t, payments[1].GatewayTxnID)
	assert.Equal(t, 1, f.gateway.calls)
}

func TestRecordPayment_Rejections(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	open := f.book(t, customer, 9, 11, "A1")
	settled := f.book(t, customer, 12, 13, "A1")
	_, err := f.payments.RecordPayment(context.Background(), counter, RecordPaymentInput{
		BookingID: settled.ID, Amount: 300, Method: models.MethodCash,
	})
	require.NoError(t, err)
	cancelled := f.book(t, customer, 14, 15, "A1")
	_, err = f.bookings.CancelBooking(context.Background(), customer, cancelled.ID, "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor principal.Principal
		in    RecordPaymentInput
		want  error
		kind  Kind
	}{
		{"unknown booking", counter, RecordPaymentInput{BookingID: 999, Amount: 100, Method: models.MethodCash}, ErrBookingNotFound, KindNotFound},
		{"cancelled booking", counter, RecordPaymentInput{BookingID: cancelled.ID, Amount: 0, Method: models.MethodCash}, ErrAlreadyCancelled, KindAlreadyCancelled},
		{"zero amount", counter, RecordPaymentInput{BookingID: open.ID, Amount: 0, Method: models.MethodCash}, ErrInvalidAmount, KindInvalidInput},
		{"negative amount", counter, RecordPaymentInput{BookingID: open.ID, Amount: -5, Method: models.MethodCash}, ErrInvalidAmount, KindInvalidInput},
		{"already settled", counter, RecordPaymentInput{BookingID: settled.ID, Amount: 1, Method: models.MethodCash}, ErrAlreadySettled, KindAlreadySettled},
		{"overpayment", counter, RecordPaymentInput{BookingID: open.ID, Amount: 601, Method: models.MethodCash}, ErrInvalidAmount, KindInvalidInput},
		{"customer paying cash", customer, RecordPaymentInput{BookingID: open.ID, Amount: 100, Method: models.MethodCash}, ErrForbidden, KindForbidden},
		{"card for someone else's booking", stranger, RecordPaymentInput{BookingID: open.ID, Amount: 100, Method: models.MethodCard, CardToken: "tokn"}, ErrForbidden, KindForbidden},
		{"unknown method", counter, RecordPaymentInput{BookingID: open.ID, Amount: 100, Method: "CHEQUE"}, ErrInvalidMethod, KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.RecordPayment(context.Background(), tt.actor, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	// None of the rejected attempts left a trace.
	payments, err := f.payments.ListPayments(context.Background(), admin, open.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
	summary, err := f.payments.GetPaymentSummary(context.Background(), admin, open.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), summary.BalanceDue)
	assert.Zero(t, f.gateway.calls)
}

func TestRecordPayment_GatewayDeclineWritesNothing(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	f.gateway.chargeFn = func(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
		return nil, errors.Join(gateway.ErrDeclined, errors.New("insufficient funds"))
	}
	b := f.book(t, customer, 9, 11, "A1")

	_, err := f.payments.RecordPayment(context.Background(), customer, RecordPaymentInput{
		BookingID: b.ID, Amount: 600, Method: models.MethodCard, CardToken: "tokn_declined",
	})

	assert.ErrorIs(t, err, ErrGatewayDeclined)
	assert.Equal(t, KindGatewayDeclined, KindOf(err))
	assert.Contains(t, err.Error(), "insufficient funds")

	payments, err := f.payments.ListPayments(context.Background(), admin, b.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
	got, err := f.bookings.GetBooking(context.Background(), admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, []string{"booking.created"}, f.publisher.Keys())
}

func TestRecordPayment_GatewayGetsIdempotencyKey(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	var seen gateway.ChargeRequest
	f.gateway.chargeFn = func(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
		seen = req
		return &gateway.ChargeResult{TransactionID: "chrg_1"}, nil
	}
	b := f.book(t, customer, 9, 10, "A1")

	_, err := f.payments.RecordPayment(context.Background(), customer, RecordPaymentInput{
		BookingID: b.ID, Amount: 300, Method: models.MethodCard, CardToken: "tokn_ok",
	})
	require.NoError(t, err)

	payments, err := f.payments.ListPayments(context.Background(), admin, b.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payments[0].Reference, seen.IdempotencyKey)
	assert.Equal(t, "tokn_ok", seen.CardToken)
	assert.Equal(t, int64(300), seen.Amount)
	assert.Equal(t, "LKR", seen.Currency)
}

func TestRecordPayment_LegacyCardMerge(t *testing.T) {
	tests := []struct {
		name     string
		merge    bool
		wantRows int
	}{
		{"append-only by default", false, 2},
		{"merge into first card row", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, PaymentOptions{LegacyCardMerge: tt.merge})
			b := f.book(t, customer, 9, 11, "A1")

			for _, amount := range []int64{200, 150} {
				_, err := f.payments.RecordPayment(context.Background(), customer, RecordPaymentInput{
					BookingID: b.ID, Amount: amount, Method: models.MethodCard, CardToken: "tokn",
				})
				require.NoError(t, err)
			}

			payments, err := f.payments.ListPayments(context.Background(), admin, b.ID)
			require.NoError(t, err)
			assert.Len(t, payments, tt.wantRows)

			summary, err := f.payments.GetPaymentSummary(context.Background(), admin, b.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(350), summary.OnlinePaid)
			assert.Equal(t, int64(250), summary.BalanceDue)
		})
	}
}

func TestGetPaymentSummary_RecomputedWhenMissing(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	b := f.book(t, customer, 9, 11, "A1")
	_, err := f.payments.RecordPayment(context.Background(), counter, RecordPaymentInput{
		BookingID: b.ID, Amount: 100, Method: models.MethodCash,
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Where("booking_id = ?", b.ID).Delete(&models.PaymentSummary{}).Error)

	summary, err := f.payments.GetPaymentSummary(context.Background(), admin, b.ID)

	require.NoError(t, err)
	assert.Equal(t, b.ID, summary.BookingID)
	assert.Equal(t, int64(600), summary.TotalAmount)
	assert.Equal(t, int64(100), summary.CashPaid)
	assert.Equal(t, int64(500), summary.BalanceDue)

	_, err = f.payments.GetPaymentSummary(context.Background(), admin, 999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRecordPayment_LegacyCardMergeKeepsEveryGatewayTxn(t *testing.T) {
	f := newFixture(t, PaymentOptions{LegacyCardMerge: true})
	charges := []string{"chrg_first", "chrg_second"}
	f.gateway.chargeFn = func(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
		id := charges[0]
		charges = charges[1:]
		return &gateway.ChargeResult{TransactionID: id}, nil
	}
	b := f.book(t, customer, 9, 11, "A1")

	for _, amount := range []int64{200, 150} {
		_, err := f.payments.RecordPayment(context.Background(), customer, RecordPaymentInput{
			BookingID: b.ID, Amount: amount, Method: models.MethodCard, CardToken: "tokn",
		})
		require.NoError(t, err)
	}

	payments, err := f.payments.ListPayments(context.Background(), customer, b.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(350), payments[0].Amount)
	require.NotNil(t, payments[0].GatewayTxnID)
	assert.Equal(t, "chrg_first", *payments[0].GatewayTxnID)

	entries, err := f.auditRepo.ListByEntity(context.Background(), f.db, models.AuditPayment, payments[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chrg_second", entries[0].Metadata["gateway_txn_id"])
	assert.Equal(t, "cust-1", entries[0].ActorID)
}
