package ctdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestServiceCalendarOperatesOn(t *testing.T) {
	assert := assert.New(t)

	// 2024-06-03 is a Monday
	calendar := ServiceCalendar{
		Days:      Weekdays{Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true},
		StartDate: date(2024, time.June, 3),
		EndDate:   date(2024, time.June, 14),
	}

	assert.True(calendar.OperatesOn(date(2024, time.June, 3)), "start date is inclusive")
	assert.True(calendar.OperatesOn(date(2024, time.June, 14)), "end date is inclusive")
	assert.True(calendar.OperatesOn(time.Date(2024, time.June, 4, 23, 59, 0, 0, time.UTC)))
	assert.False(calendar.OperatesOn(date(2024, time.June, 8)), "saturday")
	assert.False(calendar.OperatesOn(date(2024, time.June, 2)), "before range")
	assert.False(calendar.OperatesOn(date(2024, time.June, 17)), "after range")
	assert.True(calendar.IsRunning())
}

func TestServiceCalendarWithoutRunningDays(t *testing.T) {
	calendar := ServiceCalendar{
		StartDate: date(2024, time.January, 1),
		EndDate:   date(2024, time.December, 31),
	}

	assert.False(t, calendar.IsRunning())
	assert.False(t, calendar.OperatesOn(date(2024, time.June, 4)))
}

func TestServiceOperatesOnRangeAndWeekday(t *testing.T) {
	service := Service{
		PrimaryIdentifier: "service1",
		Calendar: ServiceCalendar{
			Days:      Weekdays{Tuesday: true},
			StartDate: date(2024, time.June, 1),
			EndDate:   date(2024, time.June, 30),
		},
	}

	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"flagged weekday in range", date(2024, time.June, 4), true},
		{"unflagged weekday in range", date(2024, time.June, 5), false},
		{"flagged weekday before range", date(2024, time.May, 28), false},
		{"flagged weekday after range", date(2024, time.July, 2), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, service.OperatesOn(test.date))
		})
	}
}

func TestWeekdays(t *testing.T) {
	days := Weekdays{Sunday: true, Wednesday: true}

	assert.True(t, days.Runs(time.Sunday))
	assert.True(t, days.Runs(time.Wednesday))
	assert.False(t, days.Runs(time.Monday))
	assert.True(t, days.Any())
	assert.False(t, Weekdays{}.Any())
}
