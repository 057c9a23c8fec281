package models

import (
	"fmt"
	"strings"
	"time"
)

type WashStatus string

const (
	WashPending   WashStatus = "PENDING"
	WashAccepted  WashStatus = "ACCEPTED"
	WashCompleted WashStatus = "COMPLETED"
	WashCancelled WashStatus = "CANCELLED"
)

var washTransitions = map[WashStatus][]WashStatus{
	WashPending:   {WashAccepted, WashCancelled},
	WashAccepted:  {WashCompleted, WashCancelled},
	WashCompleted: {},
	WashCancelled: {},
}

func (s WashStatus) CanTransitionTo(target WashStatus) bool {
	for _, t := range washTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s WashStatus) IsTerminal() bool {
	return len(washTransitions[s]) == 0
}

// WashAction is what staff ask for; each maps to exactly one target status.
type WashAction string

const (
	WashActionAccept  WashAction = "accept"
	WashActionConfirm WashAction = "confirm"
	WashActionCancel  WashAction = "cancel"
)

func ParseWashAction(s string) (WashAction, error) {
	a := WashAction(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case WashActionAccept, WashActionConfirm, WashActionCancel:
		return a, nil
	}
	return "", fmt.Errorf("unknown wash action %q", s)
}

func (a WashAction) Target() WashStatus {
	switch a {
	case WashActionAccept:
		return WashAccepted
	case WashActionConfirm:
		return WashCompleted
	case WashActionCancel:
		return WashCancelled
	}
	return ""
}

type WashJob struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	BookingSlotID uint       `gorm:"not null;uniqueIndex" json:"booking_slot_id"`
	Status        WashStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	UpdatedBy     string     `json:"updated_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EffectiveStatus is the status a reader sees: a cancelled parent booking
// overrides whatever is stored.
func (w *WashJob) EffectiveStatus(parent BookingStatus) WashStatus {
	if parent == StatusCancelled {
		return WashCancelled
	}
	return w.Status
}
