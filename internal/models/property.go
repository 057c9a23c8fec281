package models

import "time"

type SlotType string

const (
	SlotNormal  SlotType = "NORMAL"
	SlotEV      SlotType = "EV"
	SlotCarWash SlotType = "CAR_WASH"
)

func (t SlotType) IsValid() bool {
	switch t {
	case SlotNormal, SlotEV, SlotCarWash:
		return true
	}
	return false
}

// Property is a parking site with its rate card. Rates are in the minor unit
// of Currency; a zero type-specific rate falls back to the default table.
type Property struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Address        string    `json:"address"`
	HourlyRate     int64     `gorm:"not null" json:"hourly_rate"`
	EVHourlyRate   int64     `json:"ev_hourly_rate"`
	WashHourlyRate int64     `json:"wash_hourly_rate"`
	DailyRate      int64     `json:"daily_rate"`
	ServiceFee     int64     `json:"service_fee"`
	Currency       string    `gorm:"type:varchar(3);not null" json:"currency"`
	Active         bool      `gorm:"not null" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Slots []Slot `gorm:"foreignKey:PropertyID" json:"slots,omitempty"`
}

// Slot is one bookable bay. Type never changes after creation; Active=false
// means the slot is under maintenance.
type Slot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_slot_property_number" json:"property_id"`
	Number     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_slot_property_number" json:"number"`
	Type       SlotType  `gorm:"type:varchar(20);not null" json:"type"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SlotState is a slot's availability for a queried window.
type SlotState string

const (
	SlotAvailable   SlotState = "AVAILABLE"
	SlotOccupied    SlotState = "OCCUPIED"
	SlotMaintenance SlotState = "MAINTENANCE"
)
