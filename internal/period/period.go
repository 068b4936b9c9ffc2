package period

import (
	"fmt"
	"time"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// Period is an inclusive calendar window over which a benefit's cap
// applies.
type Period struct {
	Start time.Time
	End   time.Time
}

// Resolve maps a benefit timing and a transaction date to the
// enclosing calendar-aligned period. Unknown timings bucket annually.
func Resolve(timing model.Timing, date time.Time) Period {
	year := date.Year()
	loc := date.Location()

	switch timing {
	case model.TimingMonthly:
		start := time.Date(year, date.Month(), 1, 0, 0, 0, 0, loc)
		// Day 0 of the next month is the last day of this one.
		end := time.Date(year, date.Month()+1, 0, 0, 0, 0, 0, loc)
		return Period{Start: start, End: end}

	case model.TimingQuarterly:
		q := (int(date.Month()) - 1) / 3
		startMonth := time.Month(q*3 + 1)
		start := time.Date(year, startMonth, 1, 0, 0, 0, 0, loc)
		end := time.Date(year, startMonth+3, 0, 0, 0, 0, 0, loc)
		return Period{Start: start, End: end}

	case model.TimingSemiAnnually:
		if date.Month() <= time.June {
			return Period{
				Start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
				End:   time.Date(year, time.June, 30, 0, 0, 0, 0, loc),
			}
		}
		return Period{
			Start: time.Date(year, time.July, 1, 0, 0, 0, 0, loc),
			End:   time.Date(year, time.December, 31, 0, 0, 0, 0, loc),
		}

	default:
		return Period{
			Start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(year, time.December, 31, 0, 0, 0, 0, loc),
		}
	}
}

// Contains reports whether date falls inside the period, bounds
// inclusive. Comparison is by calendar day.
func (p Period) Contains(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return !day.Before(p.Start) && !day.After(p.End)
}

// Key returns a short label for the period, e.g. "2025-03" for a
// month, "2025-Q2" for a quarter, "2025-H1" for a half, "2025" for a
// year.
func (p Period) Key() string {
	year := p.Start.Year()
	months := int(p.End.Month()) - int(p.Start.Month()) + 1
	switch months {
	case 1:
		return fmt.Sprintf("%04d-%02d", year, int(p.Start.Month()))
	case 3:
		q := (int(p.Start.Month())-1)/3 + 1
		return fmt.Sprintf("%04d-Q%d", year, q)
	case 6:
		h := 1
		if p.Start.Month() == time.July {
			h = 2
		}
		return fmt.Sprintf("%04d-H%d", year, h)
	default:
		return fmt.Sprintf("%04d", year)
	}
}
