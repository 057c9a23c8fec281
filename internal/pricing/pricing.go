// Package pricing derives a booking's charge from its window, slots and the
// property's rate card. Everything here is a pure function of its inputs.
package pricing

import (
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
)

// Default hourly rates per slot type, in minor units, used when a property
// does not set its own.
var defaultHourly = map[models.SlotType]int64{
	models.SlotNormal:  300,
	models.SlotEV:      450,
	models.SlotCarWash: 800,
}

// DailyThresholdHours is the billed duration from which the daily rate applies.
const DailyThresholdHours = 24

// Line is a group of slots of one type in a booking.
type Line struct {
	Type  models.SlotType
	Count int
}

// Hours is the billed duration: whole hours rounded up, at least one.
func Hours(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 1
	}
	h := int64(d / time.Hour)
	if d%time.Hour != 0 {
		h++
	}
	if h < 1 {
		h = 1
	}
	return h
}

func HourlyRate(t models.SlotType, p *models.Property) int64 {
	var override int64
	if p != nil {
		switch t {
		case models.SlotNormal:
			override = p.HourlyRate
		case models.SlotEV:
			override = p.EVHourlyRate
		case models.SlotCarWash:
			override = p.WashHourlyRate
		}
	}
	if override > 0 {
		return override
	}
	return defaultHourly[t]
}

// Price charges slotCount slots of one type for the given hours.
func Price(t models.SlotType, hours int64, slotCount int, p *models.Property) int64 {
	if hours < 1 {
		hours = 1
	}
	n := int64(slotCount)
	if n < 1 {
		n = 1
	}
	return clamp(HourlyRate(t, p) * hours * n)
}

// Total prices a whole booking. From DailyThresholdHours on, a property with
// a daily rate charges that rate flat regardless of slot count.
func Total(p *models.Property, start, end time.Time, lines []Line, extras int64) int64 {
	hours := Hours(start, end)

	var total int64
	if hours >= DailyThresholdHours && p != nil && p.DailyRate > 0 {
		total = p.DailyRate
	} else {
		for _, l := range lines {
			total += Price(l.Type, hours, l.Count, p)
		}
	}
	return clamp(total + clamp(extras))
}

// Lines groups slots by type, keeping first-seen type order so the sum is
// accumulated deterministically.
func Lines(slots []models.Slot) []Line {
	idx := make(map[models.SlotType]int)
	var out []Line
	for _, s := range slots {
		i, ok := idx[s.Type]
		if !ok {
			idx[s.Type] = len(out)
			out = append(out, Line{Type: s.Type, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
