package ctdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/travigo/journeyplanner/pkg/util"
)

const MinutesPerDay = 24 * 60

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a minute resolution point on a 24 hour clock. Ordering is only
// meaningful relative to a start time, anything earlier than the start is treated
// as being on the following day.
type TimeOfDay struct {
	minutes int
}

func TimeOf(hour int, minute int) TimeOfDay {
	return TimeOfDay{minutes: normaliseMinutes(hour*60 + minute)}
}

func TimeOfDayFromTime(t time.Time) TimeOfDay {
	return TimeOf(t.Hour(), t.Minute())
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS, hours past 23 wrap around
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}

	return TimeOf(hour, minute), nil
}

func MustParseTimeOfDay(value string) TimeOfDay {
	t, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}

	return t
}

func normaliseMinutes(minutes int) int {
	minutes = minutes % MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}

	return minutes
}

func (t TimeOfDay) Hour() int {
	return t.minutes / 60
}

func (t TimeOfDay) Minute() int {
	return t.minutes % 60
}

func (t TimeOfDay) MinutesOfDay() int {
	return t.minutes
}

func (t TimeOfDay) PlusMinutes(minutes int) TimeOfDay {
	return TimeOfDay{minutes: normaliseMinutes(t.minutes + minutes)}
}

func (t TimeOfDay) MinusMinutes(minutes int) TimeOfDay {
	return TimeOfDay{minutes: normaliseMinutes(t.minutes - minutes)}
}

// RelativeTo is the number of minutes elapsed from start to t going forward round the clock
func (t TimeOfDay) RelativeTo(start TimeOfDay) int {
	return normaliseMinutes(t.minutes - start.minutes)
}

func (t TimeOfDay) IsAfter(other TimeOfDay, start TimeOfDay) bool {
	return t.RelativeTo(start) > other.RelativeTo(start)
}

func (t TimeOfDay) IsBefore(other TimeOfDay, start TimeOfDay) bool {
	return t.RelativeTo(start) < other.RelativeTo(start)
}

// Between is inclusive at both ends, measured forward from begin
func (t TimeOfDay) Between(begin TimeOfDay, end TimeOfDay) bool {
	return t.RelativeTo(begin) <= end.RelativeTo(begin)
}

// DifferenceInMinutes is the shortest distance round the clock between a and b
func DifferenceInMinutes(a TimeOfDay, b TimeOfDay) int {
	forward := a.RelativeTo(b)
	backward := b.RelativeTo(a)

	if forward < backward {
		return forward
	}
	return backward
}

func (t TimeOfDay) OnDate(date time.Time) time.Time {
	return util.CombineDateAndClock(date, t.Hour(), t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}
