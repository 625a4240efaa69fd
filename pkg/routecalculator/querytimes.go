package routecalculator

import (
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
)

// QueryTimes spreads searches across the wait window, starting at initial and
// stepping by the query interval while still within the maximum wait
func QueryTimes(initial ctdf.TimeOfDay, cfg config.Config) []ctdf.TimeOfDay {
	interval := cfg.QueryInterval
	if interval <= 0 {
		return []ctdf.TimeOfDay{initial}
	}

	var times []ctdf.TimeOfDay
	for offset := 0; offset <= cfg.MaxWait; offset += interval {
		times = append(times, initial.PlusMinutes(offset))
	}

	return times
}
