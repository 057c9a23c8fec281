package models

import (
	"fmt"
	"strings"
	"time"
)

type PaymentMethod string

const (
	MethodCard PaymentMethod = "CARD"
	MethodCash PaymentMethod = "CASH"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodCard, MethodCash:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	BookingID    uint          `gorm:"not null;index" json:"booking_id"`
	Amount       int64         `gorm:"not null" json:"amount"`
	Currency     string        `gorm:"type:varchar(3);not null" json:"currency"`
	Method       PaymentMethod `gorm:"type:varchar(10);not null" json:"method"`
	Status       PaymentStatus `gorm:"type:varchar(10);not null" json:"status"`
	GatewayTxnID *string       `gorm:"type:varchar(100)" json:"gateway_txn_id,omitempty"`
	Reference    string        `gorm:"type:varchar(64);not null" json:"reference"`
	PaidAt       time.Time     `json:"paid_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PaymentSummary is a cache of the booking's payments against its total.
// It is always rewritten from the full payment set, never patched.
type PaymentSummary struct {
	BookingID   uint      `gorm:"primaryKey;autoIncrement:false" json:"booking_id"`
	TotalAmount int64     `gorm:"not null" json:"total_amount"`
	OnlinePaid  int64     `gorm:"not null" json:"online_paid"`
	CashPaid    int64     `gorm:"not null" json:"cash_paid"`
	BalanceDue  int64     `gorm:"not null" json:"balance_due"`
	Currency    string    `gorm:"type:varchar(3);not null" json:"currency"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *PaymentSummary) Paid() int64 {
	return s.OnlinePaid + s.CashPaid
}
