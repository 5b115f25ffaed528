package provider

import (
	"context"
	"time"

	"clinic-calendar-api/modules/calendar/entity"

	"golang.org/x/oauth2"
)

// EventInput describes a calendar event to create on the account's calendar.
type EventInput struct {
	CalendarID     string
	Summary        string
	Description    string
	Start          time.Time
	End            time.Time
	TimeZone       string
	AttendeeEmails []string
}

type CreatedEvent struct {
	ID       string
	HTMLLink string
}

// CalendarProvider is the remote calendar the engine reads busy time from and writes events to.
type CalendarProvider interface {
	FreeBusy(ctx context.Context, accessToken, calendarID string, start, end time.Time) ([]entity.BusyInterval, error)
	CreateEvent(ctx context.Context, accessToken string, in EventInput) (*CreatedEvent, error)
	DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error
	// PrimaryCalendar returns the id of the primary calendar, which for Google is the owner's email.
	PrimaryCalendar(ctx context.Context, accessToken string) (string, error)
}

type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// OAuthClient drives the consent flow used to connect a calendar.
type OAuthClient interface {
	TokenRefresher
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}
