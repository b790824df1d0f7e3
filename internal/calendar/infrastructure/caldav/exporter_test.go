package caldav

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskbrief/internal/calendar/application"
	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/value_objects"
)

func testEvent(t *testing.T) application.DeadlineEvent {
	t.Helper()
	deadline, err := value_objects.ParseDeadline("2025-03-14")
	require.NoError(t, err)
	return application.DeadlineEvent{
		TaskID:   uuid.New(),
		Title:    "File taxes",
		Note:     "bring receipts",
		Category: "Home",
		Urgency:  "Urgent and important",
		Deadline: deadline,
	}
}

func encode(t *testing.T, cal *ical.Calendar) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ical.NewEncoder(&buf).Encode(cal))
	return buf.String()
}

func TestNewExporter(t *testing.T) {
	e := NewExporter("https://dav.example.com", "user", "secret", nil)

	assert.Equal(t, "https://dav.example.com", e.baseURL)
	assert.False(t, e.deleteMissing)
	assert.Empty(t, e.calendarPath)
	assert.NotNil(t, e.logger)

	assert.Same(t, e, e.WithDeleteMissing(true))
	assert.True(t, e.deleteMissing)
	assert.Same(t, e, e.WithCalendarPath("/cal/user/tasks/"))
	assert.Equal(t, "/cal/user/tasks/", e.calendarPath)
}

func TestToICalendar(t *testing.T) {
	owner := shared.NewOwnerID("user-1")
	event := testEvent(t)
	stamp := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	cal := toICalendar(owner, event, stamp)

	require.Len(t, cal.Children, 1)
	vevent := cal.Children[0]
	assert.Equal(t, ical.CompEvent, vevent.Name)
	assert.Equal(t, "2.0", cal.Props.Get(ical.PropVersion).Value)
	assert.Equal(t, event.TaskID.String(), vevent.Props.Get(ical.PropUID).Value)
	assert.Equal(t, "File taxes", vevent.Props.Get(ical.PropSummary).Value)

	t.Run("all-day on the deadline", func(t *testing.T) {
		text := encode(t, cal)
		assert.Contains(t, text, "DTSTART;VALUE=DATE:20250314")
		assert.Contains(t, text, "DTEND;VALUE=DATE:20250315")
	})

	t.Run("description carries note and labels", func(t *testing.T) {
		desc, err := vevent.Props.Text(ical.PropDescription)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(desc, "bring receipts"))
		assert.Contains(t, desc, "Category: Home")
		assert.Contains(t, desc, "Urgency: Urgent and important")
	})

	t.Run("empty note is omitted", func(t *testing.T) {
		event.Note = "  "
		assert.Equal(t, "Category: Home\nUrgency: Urgent and important", describe(event))
	})

	t.Run("marked as exported for the owner", func(t *testing.T) {
		obj := &caldav.CalendarObject{Path: "/x.ics", Data: cal}
		assert.True(t, exportedFor(obj, owner))
		assert.False(t, exportedFor(obj, shared.NewOwnerID("user-2")))
	})
}

func TestExportedFor_ForeignEvents(t *testing.T) {
	owner := shared.NewOwnerID("user-1")

	assert.False(t, exportedFor(nil, owner))
	assert.False(t, exportedFor(&caldav.CalendarObject{}, owner))

	cal := ical.NewCalendar()
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, "someone-else")
	cal.Children = append(cal.Children, vevent.Component)
	assert.False(t, exportedFor(&caldav.CalendarObject{Data: cal}, owner))
}

func TestObjectPath(t *testing.T) {
	event := testEvent(t)

	assert.Equal(t, "/cal/tasks/"+event.TaskID.String()+".ics", objectPath("/cal/tasks/", event))
	assert.Equal(t, "/cal/tasks/"+event.TaskID.String()+".ics", objectPath("/cal/tasks", event))
}

func TestExport_CountsFailedPuts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewExporter(srv.URL, "user", "secret", nil).
		WithCalendarPath("/cal/user/tasks/").
		WithHTTPClient(srv.Client())

	result, err := e.Export(context.Background(), shared.NewOwnerID("user-1"), []application.DeadlineEvent{testEvent(t), testEvent(t)})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, result.Written())
	assert.Positive(t, calls.Load())
}
