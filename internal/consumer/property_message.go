package consumer

import (
	"fmt"
	"strings"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
)

// propertyMessage is the catalog wire shape. Active flags are pointers so a
// message that leaves them out is refused instead of read as false.
type propertyMessage struct {
	ID             uint          `json:"id"`
	Name           string        `json:"name"`
	Address        string        `json:"address"`
	HourlyRate     int64         `json:"hourly_rate"`
	EVHourlyRate   int64         `json:"ev_hourly_rate"`
	WashHourlyRate int64         `json:"wash_hourly_rate"`
	DailyRate      int64         `json:"daily_rate"`
	ServiceFee     int64         `json:"service_fee"`
	Currency       string        `json:"currency"`
	Active         *bool         `json:"active"`
	Slots          []slotMessage `json:"slots"`
}

type slotMessage struct {
	ID     uint   `json:"id"`
	Number string `json:"number"`
	Type   string `json:"type"`
	Active *bool  `json:"active"`
}

// toProperty validates the message and fills defaults.
func (m propertyMessage) toProperty(defaultCurrency string) (*models.Property, error) {
	if m.ID == 0 {
		return nil, fmt.Errorf("property id is required")
	}
	if m.Active == nil {
		return nil, fmt.Errorf("property %d: active is required", m.ID)
	}
	currency := m.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	p := &models.Property{
		ID:             m.ID,
		Name:           m.Name,
		Address:        m.Address,
		HourlyRate:     m.HourlyRate,
		EVHourlyRate:   m.EVHourlyRate,
		WashHourlyRate: m.WashHourlyRate,
		DailyRate:      m.DailyRate,
		ServiceFee:     m.ServiceFee,
		Currency:       strings.ToUpper(currency),
		Active:         *m.Active,
		Slots:          make([]models.Slot, 0, len(m.Slots)),
	}
	for i, s := range m.Slots {
		if s.ID == 0 || s.Number == "" {
			return nil, fmt.Errorf("slot %d of property %d is missing id or number", i, m.ID)
		}
		if s.Active == nil {
			return nil, fmt.Errorf("slot %d: active is required", s.ID)
		}
		typ := models.SlotType(strings.ToUpper(s.Type))
		if !typ.IsValid() {
			return nil, fmt.Errorf("slot %d has unknown type %q", s.ID, s.Type)
		}
		p.Slots = append(p.Slots, models.Slot{
			ID:         s.ID,
			PropertyID: m.ID,
			Number:     s.Number,
			Type:       typ,
			Active:     *s.Active,
		})
	}
	return p, nil
}
