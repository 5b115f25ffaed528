package mapper

import (
	"time"

	"clinic-calendar-api/modules/calendar/dto"
	"clinic-calendar-api/modules/calendar/entity"
	"clinic-calendar-api/modules/calendar/service"
)

func ToAvailabilityResponse(a *entity.Availability) dto.AvailabilityResponse {
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	slots := make([]dto.SlotResponse, 0, len(a.Slots))
	for _, s := range a.Slots {
		slots = append(slots, dto.SlotResponse{
			Start:           s.Start.In(loc).Format(time.RFC3339),
			End:             s.End.In(loc).Format(time.RFC3339),
			DurationMinutes: int(s.Duration / time.Minute),
			Label:           service.FormatSlot(s.Start, loc),
		})
	}
	return dto.AvailabilityResponse{
		Slots:          slots,
		TotalAvailable: a.TotalAvailable,
		HorizonDays:    a.HorizonDays,
		Timezone:       loc.String(),
	}
}
