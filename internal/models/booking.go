package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusPaid      BookingStatus = "PAID"
	StatusCancelled BookingStatus = "CANCELLED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusCancelled},
	StatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

type Booking struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CustomerID  string        `gorm:"not null;index" json:"customer_id"`
	PropertyID  uint          `gorm:"not null;index:idx_booking_property_window" json:"property_id"`
	StartTime   time.Time     `gorm:"not null;index:idx_booking_property_window" json:"start_time"`
	EndTime     time.Time     `gorm:"not null;index:idx_booking_property_window" json:"end_time"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TotalAmount int64         `gorm:"not null" json:"total_amount"`
	Currency    string        `gorm:"type:varchar(3);not null" json:"currency"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Slots []BookingSlot `gorm:"foreignKey:BookingID" json:"slots,omitempty"`
}

// Overlaps reports whether [start,end) intersects the booking's window.
// Touching endpoints do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

type BookingSlot struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `gorm:"not null;index" json:"booking_id"`
	SlotID    uint `gorm:"not null;index" json:"slot_id"`

	Slot    *Slot    `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
	WashJob *WashJob `gorm:"foreignKey:BookingSlotID" json:"wash_job,omitempty"`
}
