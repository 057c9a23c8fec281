package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// midtrans reports transaction_time in Jakarta local time.
var jakarta = time.FixedZone("WIB", 7*60*60)

type Midtrans struct {
	client coreapi.Client
}

func NewMidtrans(serverKey, env string) *Midtrans {
	e := midtrans.Sandbox
	if strings.EqualFold(env, "production") {
		e = midtrans.Production
	}
	m := &Midtrans{}
	m.client.New(serverKey, e)
	return m
}

func (m *Midtrans) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	resp, mErr := m.client.ChargeTransaction(&coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeCreditCard,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  fmt.Sprintf("booking-%d-%s", req.BookingID, req.IdempotencyKey),
			GrossAmt: req.Amount,
		},
		CreditCard: &coreapi.CreditCardDetails{
			TokenID: req.CardToken,
		},
	})
	if mErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeclined, mErr.GetMessage())
	}

	switch resp.TransactionStatus {
	case "capture", "settlement":
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrDeclined, resp.TransactionStatus, resp.StatusMessage)
	}

	settled, err := time.ParseInLocation("2006-01-02 15:04:05", resp.TransactionTime, jakarta)
	if err != nil {
		settled = time.Now()
	}
	return &ChargeResult{TransactionID: resp.TransactionID, SettledAt: settled.UTC()}, nil
}
