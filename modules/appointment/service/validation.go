package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/modules/appointment/dto"
)

// maxDurationMinutes caps a single appointment at one day.
const maxDurationMinutes = 24 * 60

var (
	phonePattern  = regexp.MustCompile(`^\+?\d{1,16}$`)
	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	timeLayouts   = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM", "3PM"}
)

// NormalizePhone strips spaces, dashes and parentheses and checks the remaining number.
func NormalizePhone(raw string) (string, bool) {
	n := phoneStripper.Replace(strings.TrimSpace(raw))
	return n, phonePattern.MatchString(n)
}

func missingFields(req *dto.BookAppointmentRequest) map[string]string {
	missing := map[string]string{}
	if strings.TrimSpace(req.Date) == "" {
		missing["date"] = "is required"
	}
	if strings.TrimSpace(req.Time) == "" {
		missing["time"] = "is required"
	}
	if req.Duration == 0 {
		missing["duration"] = "is required"
	}
	if strings.TrimSpace(req.Title) == "" {
		missing["title"] = "is required"
	}
	if strings.TrimSpace(req.CallerName) == "" {
		missing["caller_name"] = "is required"
	}
	if strings.TrimSpace(req.CallerNumber) == "" {
		missing["caller_number"] = "is required"
	}
	return missing
}

// ParseSlotStart builds the requested start instant in the clinic timezone.
func ParseSlotStart(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	clock = strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("time must look like 14:00 or 2:00 PM")
}

type validatedRequest struct {
	start        time.Time
	end          time.Time
	callerNumber string
}

// validate runs the booking checks in order and stops at the first failure.
func validate(req *dto.BookAppointmentRequest, now time.Time, loc *time.Location) (*validatedRequest, *errors.AppError) {
	if missing := missingFields(req); len(missing) > 0 {
		return nil, errors.NewValidationError("missing required booking details", missing)
	}

	number, ok := NormalizePhone(req.CallerNumber)
	if !ok {
		return nil, errors.NewValidationError("caller number is not a valid phone number", map[string]string{"caller_number": "must be up to 16 digits with an optional leading +"})
	}

	start, err := ParseSlotStart(req.Date, req.Time, loc)
	if err != nil {
		field := "time"
		if _, dErr := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), loc); dErr != nil {
			field = "date"
		}
		return nil, errors.NewValidationError(err.Error(), map[string]string{field: err.Error()})
	}
	if req.Duration < 0 {
		return nil, errors.NewValidationError("duration must be positive", map[string]string{"duration": "must be a positive number of minutes"})
	}
	if req.Duration > maxDurationMinutes {
		return nil, errors.NewValidationError("duration is too long", map[string]string{"duration": fmt.Sprintf("must be at most %d minutes", maxDurationMinutes)})
	}
	if !start.After(now) {
		return nil, errors.NewValidationError("appointment time must be in the future", map[string]string{"time": "must be after the current time"})
	}

	return &validatedRequest{
		start:        start,
		end:          start.Add(time.Duration(req.Duration) * time.Minute),
		callerNumber: number,
	}, nil
}
