package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

type Omise struct {
	client *omise.Client
	now    func() time.Time
}

func NewOmise(publicKey, secretKey string) (*Omise, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	c.SetDebug(false)
	return &Omise{client: c, now: time.Now}, nil
}

// Charge creates a captured charge for the card token.
//
// Omise has no idempotency header in the charges API, so req.IdempotencyKey
// only travels in the charge metadata where reconciliation can match it.
// Duplicate charges are kept out by the caller, which charges while holding
// the booking row lock and never retries a failed call.
func (o *Omise) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	ch := &omise.Charge{}
	op := &operations.CreateCharge{
		Amount:   req.Amount,
		Currency: strings.ToLower(req.Currency),
		Card:     req.CardToken,
		Metadata: map[string]interface{}{
			"booking_id":      req.BookingID,
			"idempotency_key": req.IdempotencyKey,
		},
	}
	if err := o.client.Do(ch, op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	return omiseResult(ch, o.now)
}

// omiseResult maps a charge response onto a settlement. Only "successful"
// is settled money; pending or reversed charges are declines so no PAID
// row is written for them.
func omiseResult(ch *omise.Charge, now func() time.Time) (*ChargeResult, error) {
	if ch.Status != omise.ChargeSuccessful {
		reason := string(ch.Status)
		if ch.FailureMessage != nil && *ch.FailureMessage != "" {
			reason = *ch.FailureMessage
		}
		return nil, fmt.Errorf("%w: %s", ErrDeclined, reason)
	}

	settled := ch.CreatedAt
	if settled.IsZero() {
		settled = now()
	}
	return &ChargeResult{TransactionID: ch.ID, SettledAt: settled.UTC()}, nil
}
