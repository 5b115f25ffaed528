package service

import "time"

const (
	slotLayout     = "Monday, January 2 at 3:04 PM"
	dateTimeLayout = "Monday, January 2, 2006 at 3:04 PM"
)

// FormatSlot renders a slot start for speech, e.g. "Monday, March 10 at 2:00 PM".
func FormatSlot(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(slotLayout)
}

// FormatDateTime renders an appointment time with its year, e.g. "Monday, March 10, 2025 at 2:00 PM".
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateTimeLayout)
}
