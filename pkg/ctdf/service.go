package ctdf

import (
	"time"
)

type Service struct {
	PrimaryIdentifier string

	ServiceName string
	RouteRef    string

	Calendar ServiceCalendar
}

func (s *Service) OperatesOn(date time.Time) bool {
	return s.Calendar.OperatesOn(date)
}

type Weekdays struct {
	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool
}

func (w Weekdays) Runs(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	}

	return false
}

func (w Weekdays) Any() bool {
	return w.Monday || w.Tuesday || w.Wednesday || w.Thursday || w.Friday || w.Saturday || w.Sunday
}

// ServiceCalendar describes on which dates a service runs. StartDate and EndDate
// are inclusive.
type ServiceCalendar struct {
	Days Weekdays

	StartDate time.Time
	EndDate   time.Time
}

func (c ServiceCalendar) IsRunning() bool {
	return c.Days.Any()
}

// OperatesOn is true only when date is within the range and its weekday is flagged
func (c ServiceCalendar) OperatesOn(date time.Time) bool {
	if !c.Days.Any() {
		return false
	}

	day := dateOnly(date)
	if day.Before(dateOnly(c.StartDate)) || day.After(dateOnly(c.EndDate)) {
		return false
	}

	return c.Days.Runs(date.Weekday())
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
