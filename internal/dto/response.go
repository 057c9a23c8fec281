package dto

import (
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
)

type WashJobResponse struct {
	ID        uint              `json:"id"`
	Status    models.WashStatus `json:"status"`
	UpdatedBy string            `json:"updated_by,omitempty"`
}

type BookingSlotResponse struct {
	SlotID  uint             `json:"slot_id"`
	Number  string           `json:"number,omitempty"`
	Type    models.SlotType  `json:"type,omitempty"`
	WashJob *WashJobResponse `json:"wash_job,omitempty"`
}

type BookingResponse struct {
	ID          uint                  `json:"id"`
	CustomerID  string                `json:"customer_id"`
	PropertyID  uint                  `json:"property_id"`
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Status      models.BookingStatus  `json:"status"`
	TotalAmount int64                 `json:"total_amount"`
	Currency    string                `json:"currency"`
	Slots       []BookingSlotResponse `json:"slots"`
	CreatedAt   time.Time             `json:"created_at"`
}

type PaymentResponse struct {
	ID           uint                 `json:"id"`
	BookingID    uint                 `json:"booking_id"`
	Amount       int64                `json:"amount"`
	Currency     string               `json:"currency"`
	Method       models.PaymentMethod `json:"method"`
	Status       models.PaymentStatus `json:"status"`
	Reference    string               `json:"reference"`
	GatewayTxnID string               `json:"gateway_txn_id,omitempty"`
	PaidAt       time.Time            `json:"paid_at"`
}

type PaymentSummaryResponse struct {
	BookingID   uint   `json:"booking_id"`
	TotalAmount int64  `json:"total_amount"`
	OnlinePaid  int64  `json:"online_paid"`
	CashPaid    int64  `json:"cash_paid"`
	BalanceDue  int64  `json:"balance_due"`
	Currency    string `json:"currency"`
}

type SlotResponse struct {
	ID         uint            `json:"id"`
	PropertyID uint            `json:"property_id"`
	Number     string          `json:"number"`
	Type       models.SlotType `json:"type"`
	Active     bool            `json:"active"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	SlotIDs []uint `json:"slot_ids,omitempty"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		PropertyID:  b.PropertyID,
		Start:       b.StartTime,
		End:         b.EndTime,
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
		Slots:       make([]BookingSlotResponse, 0, len(b.Slots)),
		CreatedAt:   b.CreatedAt,
	}
	for _, s := range b.Slots {
		slot := BookingSlotResponse{SlotID: s.SlotID}
		if s.Slot != nil {
			slot.Number = s.Slot.Number
			slot.Type = s.Slot.Type
		}
		if s.WashJob != nil {
			slot.WashJob = &WashJobResponse{
				ID:        s.WashJob.ID,
				Status:    s.WashJob.Status,
				UpdatedBy: s.WashJob.UpdatedBy,
			}
		}
		resp.Slots = append(resp.Slots, slot)
	}
	return resp
}

func ToPaymentResponse(p *models.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:        p.ID,
		BookingID: p.BookingID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Method:    p.Method,
		Status:    p.Status,
		Reference: p.Reference,
		PaidAt:    p.PaidAt,
	}
	if p.GatewayTxnID != nil {
		resp.GatewayTxnID = *p.GatewayTxnID
	}
	return resp
}

func ToPaymentSummaryResponse(s *models.PaymentSummary) PaymentSummaryResponse {
	return PaymentSummaryResponse{
		BookingID:   s.BookingID,
		TotalAmount: s.TotalAmount,
		OnlinePaid:  s.OnlinePaid,
		CashPaid:    s.CashPaid,
		BalanceDue:  s.BalanceDue,
		Currency:    s.Currency,
	}
}

func ToSlotResponse(s *models.Slot) SlotResponse {
	return SlotResponse{
		ID:         s.ID,
		PropertyID: s.PropertyID,
		Number:     s.Number,
		Type:       s.Type,
		Active:     s.Active,
	}
}
