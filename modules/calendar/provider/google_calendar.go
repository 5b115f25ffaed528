package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/modules/calendar/entity"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleCalendar talks to the Google Calendar v3 API with a per-call access token.
type GoogleCalendar struct {
	endpoint string
	timeout  time.Duration
	base     http.RoundTripper
	metrics  *metrics.Metrics
}

func NewGoogleCalendar(cfg config.GoogleAPIConfig, m *metrics.Metrics) *GoogleCalendar {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleCalendar{
		endpoint: cfg.CalendarBaseURL,
		timeout:  timeout,
		base:     http.DefaultTransport,
		metrics:  m,
	}
}

func (g *GoogleCalendar) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	client := &http.Client{
		Timeout: g.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   g.base,
		},
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

func (g *GoogleCalendar) FreeBusy(ctx context.Context, accessToken, calendarID string, start, end time.Time) (busy []entity.BusyInterval, err error) {
	started := time.Now()
	defer func() { g.metrics.RecordProviderCall("freebusy", started, err) }()

	svc, err := g.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("query freebusy: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		// Google keys the primary calendar by the owner's address when asked for "primary".
		for _, c := range resp.Calendars {
			cal, ok = c, true
			break
		}
	}
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("freebusy for %s: %s", calendarID, cal.Errors[0].Reason)
	}

	busy = make([]entity.BusyInterval, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		s, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			return nil, fmt.Errorf("parse busy start %q: %w", b.Start, err)
		}
		e, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			return nil, fmt.Errorf("parse busy end %q: %w", b.End, err)
		}
		busy = append(busy, entity.BusyInterval{Start: s, End: e})
	}
	return busy, nil
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, accessToken string, in EventInput) (created *CreatedEvent, err error) {
	started := time.Now()
	defer func() { g.metrics.RecordProviderCall("events.insert", started, err) }()

	svc, err := g.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Start:       &calendar.EventDateTime{DateTime: in.Start.Format(time.RFC3339), TimeZone: in.TimeZone},
		End:         &calendar.EventDateTime{DateTime: in.End.Format(time.RFC3339), TimeZone: in.TimeZone},
	}
	for _, email := range in.AttendeeEmails {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	call := svc.Events.Insert(in.CalendarID, event).Context(ctx)
	if len(event.Attendees) > 0 {
		call = call.SendUpdates("all")
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	if res.Id == "" {
		return nil, fmt.Errorf("insert event: provider returned no event id")
	}
	return &CreatedEvent{ID: res.Id, HTMLLink: res.HtmlLink}, nil
}

// DeleteEvent removes an event. An event that is already gone counts as deleted.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) (err error) {
	started := time.Now()
	defer func() { g.metrics.RecordProviderCall("events.delete", started, err) }()

	svc, err := g.service(ctx, accessToken)
	if err != nil {
		return err
	}
	err = svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var gErr *googleapi.Error
		if stderrors.As(err, &gErr) && (gErr.Code == http.StatusGone || gErr.Code == http.StatusNotFound) {
			logger.Warn("GoogleCalendar:DeleteEvent:AlreadyGone", "event_id", eventID, "status", gErr.Code)
			return nil
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (g *GoogleCalendar) PrimaryCalendar(ctx context.Context, accessToken string) (id string, err error) {
	started := time.Now()
	defer func() { g.metrics.RecordProviderCall("calendarlist.get", started, err) }()

	svc, err := g.service(ctx, accessToken)
	if err != nil {
		return "", err
	}
	entry, err := svc.CalendarList.Get("primary").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get primary calendar: %w", err)
	}
	return entry.Id, nil
}
