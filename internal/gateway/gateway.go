// Package gateway charges cards through an external payment provider.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDeclined wraps every provider refusal, transport failure included.
var ErrDeclined = errors.New("payment declined")

type ChargeRequest struct {
	BookingID      uint
	Amount         int64
	Currency       string
	CardToken      string
	IdempotencyKey string
}

type ChargeResult struct {
	TransactionID string
	SettledAt     time.Time
}

// Gateway charges synchronously. A nil error means the money settled.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type Options struct {
	Provider          string
	OmisePublicKey    string
	OmiseSecretKey    string
	MidtransServerKey string
	MidtransEnv       string
}

// New picks the provider named in opts. "none" (or empty) yields a gateway
// that declines every charge, so cash-only deployments still boot.
func New(opts Options) (Gateway, error) {
	switch strings.ToLower(opts.Provider) {
	case "omise":
		return NewOmise(opts.OmisePublicKey, opts.OmiseSecretKey)
	case "midtrans":
		return NewMidtrans(opts.MidtransServerKey, opts.MidtransEnv), nil
	case "", "none":
		return Disabled{}, nil
	}
	return nil, fmt.Errorf("unknown payment gateway %q", opts.Provider)
}

type Disabled struct{}

func (Disabled) Charge(context.Context, ChargeRequest) (*ChargeResult, error) {
	return nil, fmt.Errorf("%w: card payments are not configured", ErrDeclined)
}

func validate(req ChargeRequest) error {
	if req.Amount <= 0 || req.Currency == "" || req.CardToken == "" {
		return fmt.Errorf("%w: invalid charge params", ErrDeclined)
	}
	return nil
}
