package entity

import "time"

// BusyInterval is a provider-reported range in which the calendar is occupied.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AvailableSlot struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// Availability is the capped slot list offered to a caller plus the uncapped count.
type Availability struct {
	Slots          []AvailableSlot
	TotalAvailable int
	HorizonDays    int
	Location       *time.Location
}
