package dto

import "time"

type CreateBookingRequest struct {
	PropertyID uint      `json:"property_id"`
	SlotIDs    []uint    `json:"slot_ids"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	// Only honoured for counter and admin staff.
	CustomerID string `json:"customer_id,omitempty"`
}

type CancelBookingRequest struct {
	Note string `json:"note"`
}

type RecordPaymentRequest struct {
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	CardToken string `json:"card_token,omitempty"`
}

type UpdateSlotRequest struct {
	Active *bool `json:"active"`
}

type BulkWashJobRequest struct {
	IDs    []uint `json:"ids"`
	Action string `json:"action"`
}
