package service

import (
	"time"

	"clinic-calendar-api/modules/calendar/entity"
)

// SlotRules is the business-hours policy slots are generated under.
type SlotRules struct {
	Location     *time.Location
	StartHour    int
	EndHour      int
	SlotDuration time.Duration
}

// Overlaps is the half-open interval test: ranges that only touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HasConflict reports whether [start, end) intersects any busy interval.
func HasConflict(start, end time.Time, busy []entity.BusyInterval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// GenerateSlots lists every free whole-hour slot on weekdays over horizonDays, starting today.
// Today's first candidate hour is the hour after now so nothing in the past or current hour is offered.
func GenerateSlots(now time.Time, horizonDays int, busy []entity.BusyInterval, rules SlotRules) []entity.AvailableSlot {
	loc := rules.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()

	var slots []entity.AvailableSlot
	for day := 0; day < horizonDays; day++ {
		date := time.Date(y, m, d+day, 0, 0, 0, 0, loc)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		firstHour := rules.StartHour
		if day == 0 {
			firstHour = max(rules.StartHour, local.Hour()+1)
		}
		closing := time.Date(date.Year(), date.Month(), date.Day(), rules.EndHour, 0, 0, 0, loc)

		for h := firstHour; h < rules.EndHour; h++ {
			start := time.Date(date.Year(), date.Month(), date.Day(), h, 0, 0, 0, loc)
			end := start.Add(rules.SlotDuration)
			if end.After(closing) {
				break
			}
			if HasConflict(start, end, busy) {
				continue
			}
			slots = append(slots, entity.AvailableSlot{Start: start, End: end, Duration: rules.SlotDuration})
		}
	}
	return slots
}
