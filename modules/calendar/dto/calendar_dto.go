package dto

import (
	"time"

	"clinic-calendar-api/modules/calendar/entity"
)

type SlotResponse struct {
	Start           string `json:"start"` // RFC3339
	End             string `json:"end"`   // RFC3339
	DurationMinutes int    `json:"duration_minutes"`
	Label           string `json:"label"`
}

type AvailabilityResponse struct {
	Slots          []SlotResponse `json:"slots"`
	TotalAvailable int            `json:"total_available"`
	HorizonDays    int            `json:"horizon_days"`
	Timezone       string         `json:"timezone"`
}

type ConnectionStatusResponse struct {
	Connected      bool       `json:"connected"`
	Provider       string     `json:"provider,omitempty"`
	CalendarEmail  string     `json:"calendar_email,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	ConnectedAt    *time.Time `json:"connected_at,omitempty"`
}

type ConnectURLResponse struct {
	URL string `json:"url"`
}

func ToConnectionStatus(cred *entity.CalendarCredential) ConnectionStatusResponse {
	if cred == nil {
		return ConnectionStatusResponse{Connected: false}
	}
	expires := cred.TokenExpiresAt
	created := cred.CreatedAt
	return ConnectionStatusResponse{
		Connected:      true,
		Provider:       cred.Provider,
		CalendarEmail:  cred.CalendarEmail,
		TokenExpiresAt: &expires,
		ConnectedAt:    &created,
	}
}
