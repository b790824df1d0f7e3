package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/felixgeelhaar/taskbrief/internal/calendar/application"
	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
)

// Custom properties marking events written by the exporter.
const (
	PropXTaskbrief      = "X-TASKBRIEF"
	PropXTaskbriefOwner = "X-TASKBRIEF-OWNER"
)

const productID = "-//Taskbrief//Deadline Export//EN"

// Exporter writes task deadlines to a CalDAV calendar (Nextcloud, Fastmail,
// iCloud and friends) as all-day events.
type Exporter struct {
	baseURL       string
	username      string
	password      string
	calendarPath  string
	httpClient    *http.Client
	logger        *slog.Logger
	deleteMissing bool
	now           func() time.Time
}

// NewExporter creates a CalDAV deadline exporter.
func NewExporter(baseURL, username, password string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
}

// WithDeleteMissing removes the owner's exported events whose task is gone.
func (e *Exporter) WithDeleteMissing(enabled bool) *Exporter {
	e.deleteMissing = enabled
	return e
}

// WithCalendarPath pins the calendar collection instead of using the
// principal's first calendar.
func (e *Exporter) WithCalendarPath(path string) *Exporter {
	e.calendarPath = path
	return e
}

// WithHTTPClient replaces the HTTP client.
func (e *Exporter) WithHTTPClient(client *http.Client) *Exporter {
	if client != nil {
		e.httpClient = client
	}
	return e
}

// Export puts one event per deadline. Individual PUT failures are counted,
// not returned.
func (e *Exporter) Export(ctx context.Context, owner shared.OwnerID, events []application.DeadlineEvent) (*application.ExportResult, error) {
	client, err := e.client()
	if err != nil {
		return nil, err
	}

	calPath, err := e.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	result := &application.ExportResult{}
	keep := make(map[string]struct{}, len(events))
	stamp := e.now().UTC()

	for _, event := range events {
		eventPath := objectPath(calPath, event)
		keep[eventPath] = struct{}{}

		updated, err := e.upsert(ctx, client, eventPath, toICalendar(owner, event, stamp))
		if err != nil {
			e.logger.WarnContext(ctx, "caldav export failed", "event_path", eventPath, "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if e.deleteMissing {
		deleted, err := e.deleteStale(ctx, client, calPath, owner, keep)
		if err != nil {
			e.logger.WarnContext(ctx, "caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	return result, nil
}

func (e *Exporter) client() (*caldav.Client, error) {
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(e.httpClient, e.username, e.password), e.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (e *Exporter) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if e.calendarPath != "" {
		return e.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	return cals[0].Path, nil
}

func (e *Exporter) upsert(ctx context.Context, client *caldav.Client, eventPath string, cal *ical.Calendar) (bool, error) {
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	if _, err := client.PutCalendarObject(ctx, eventPath, cal); err != nil {
		return false, err
	}
	return exists, nil
}

func (e *Exporter) deleteStale(ctx context.Context, client *caldav.Client, calPath string, owner shared.OwnerID, keep map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"UID", PropXTaskbrief, PropXTaskbriefOwner},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i := range objects {
		obj := &objects[i]
		if !exportedFor(obj, owner) {
			continue
		}
		if _, ok := keep[obj.Path]; ok {
			continue
		}
		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			e.logger.WarnContext(ctx, "failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

func objectPath(calPath string, event application.DeadlineEvent) string {
	if !strings.HasSuffix(calPath, "/") {
		calPath += "/"
	}
	return calPath + event.TaskID.String() + ".ics"
}

// exportedFor reports whether obj was written by the exporter for owner.
func exportedFor(obj *caldav.CalendarObject, owner shared.OwnerID) bool {
	if obj == nil || obj.Data == nil {
		return false
	}
	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		marker := child.Props.Get(PropXTaskbrief)
		ownerProp := child.Props.Get(PropXTaskbriefOwner)
		if marker == nil || marker.Value != "1" || ownerProp == nil {
			return false
		}
		return ownerProp.Value == owner.String()
	}
	return false
}

// toICalendar renders a deadline as a single all-day VEVENT.
func toICalendar(owner shared.OwnerID, event application.DeadlineEvent, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	day := event.Deadline.Time()

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, event.TaskID.String())
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	vevent.Props.SetDate(ical.PropDateTimeStart, day)
	vevent.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	vevent.Props.SetText(ical.PropSummary, event.Title)
	vevent.Props.SetText(ical.PropDescription, describe(event))

	marker := ical.NewProp(PropXTaskbrief)
	marker.Value = "1"
	vevent.Props.Set(marker)

	ownerProp := ical.NewProp(PropXTaskbriefOwner)
	ownerProp.Value = owner.String()
	vevent.Props.Set(ownerProp)

	cal.Children = append(cal.Children, vevent.Component)
	return cal
}

func describe(event application.DeadlineEvent) string {
	var b strings.Builder
	if note := strings.TrimSpace(event.Note); note != "" {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Category: %s\nUrgency: %s", event.Category, event.Urgency)
	return b.String()
}
