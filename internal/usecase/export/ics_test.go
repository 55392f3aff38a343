package export

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-events/internal/domain/entity"
)

func calendarRecord() *entity.EventRecord {
	return &entity.EventRecord{
		SourceID:    "maplewood",
		Library:     "Maplewood",
		Title:       "Lego Club",
		Date:        entity.NewDate(2025, time.December, 13),
		Time:        entity.TimeAtMinutes(10 * 60),
		EndTime:     entity.TimeAtMinutes(11 * 60),
		TimeRaw:     "10:00am - 11:00am",
		Location:    "Community Room",
		Audience:    []string{"Grades K-2"},
		Description: "Build with thousands of bricks.",
		Link:        "https://example.org/events/lego-club",
	}
}

func TestEventUIDStable(t *testing.T) {
	a := EventUID(calendarRecord())
	b := EventUID(calendarRecord())
	assert.Equal(t, a, b)
	assert.True(t, strings.HasSuffix(a, "@library-events"))

	changed := calendarRecord()
	changed.Location = "Storytime Room"
	assert.NotEqual(t, a, EventUID(changed), "identity fields feed the UID")

	unrelated := calendarRecord()
	unrelated.Description = "different"
	assert.Equal(t, a, EventUID(unrelated), "non-identity fields do not")
}

func TestICSTimedEvent(t *testing.T) {
	out := ICS([]*entity.EventRecord{calendarRecord()}, "Library Events", time.UTC)

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	ev := cal.Events()[0]
	assert.Equal(t, "Lego Club", ev.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Community Room", ev.GetProperty(ics.ComponentPropertyLocation).Value)

	start, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 13, 10, 0, 0, 0, time.UTC), start.UTC())

	end, err := ev.GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 13, 11, 0, 0, 0, time.UTC), end.UTC())

	desc := ev.GetProperty(ics.ComponentPropertyDescription).Value
	assert.Contains(t, desc, "Age Group: Grades K-2")
	assert.Contains(t, desc, "More Info: https://example.org/events/lego-club")
}

func TestICSDefaultsEndToOneHour(t *testing.T) {
	rec := calendarRecord()
	rec.EndTime = entity.TimeOfDay{}

	out := ICS([]*entity.EventRecord{rec}, "", time.UTC)
	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	end, err := cal.Events()[0].GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 13, 11, 0, 0, 0, time.UTC), end.UTC())
}

func TestICSAllDayAndUnknownTimes(t *testing.T) {
	allDay := calendarRecord()
	allDay.Title = "Winter Reading Challenge"
	allDay.Time = entity.TimeOfDay{Kind: entity.TimeAllDay}
	allDay.TimeRaw = "All Day"

	unknown := calendarRecord()
	unknown.Title = "Surprise Program"
	unknown.Time = entity.TimeOfDay{}
	unknown.TimeRaw = ""

	out := ICS([]*entity.EventRecord{allDay, unknown}, "", time.UTC)
	assert.Equal(t, 2, strings.Count(out, "DTSTART;VALUE=DATE"), "both render as all-day starts")
}

func TestICSSkipsUnknownDates(t *testing.T) {
	undated := calendarRecord()
	undated.Date = entity.UnknownDate()

	out := ICS([]*entity.EventRecord{undated, calendarRecord()}, "", time.UTC)
	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 1)
}
