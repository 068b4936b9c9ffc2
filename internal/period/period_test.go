package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/perkwise-dev/perkwise/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_Monthly(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"mid month", date(2024, time.March, 15), date(2024, time.March, 1), date(2024, time.March, 31)},
		{"leap february", date(2024, time.February, 10), date(2024, time.February, 1), date(2024, time.February, 29)},
		{"non-leap february", date(2025, time.February, 28), date(2025, time.February, 1), date(2025, time.February, 28)},
		{"december", date(2024, time.December, 31), date(2024, time.December, 1), date(2024, time.December, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(model.TimingMonthly, tt.date)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}

func TestResolve_QuarterBoundaries(t *testing.T) {
	// Boundary dates must land in the correct, non-overlapping quarter.
	q1 := Resolve(model.TimingQuarterly, date(2024, time.January, 1))
	assert.Equal(t, date(2024, time.January, 1), q1.Start)
	assert.Equal(t, date(2024, time.March, 31), q1.End)

	lastOfQ1 := Resolve(model.TimingQuarterly, date(2024, time.March, 31))
	assert.Equal(t, q1, lastOfQ1)

	q2 := Resolve(model.TimingQuarterly, date(2024, time.April, 1))
	assert.Equal(t, date(2024, time.April, 1), q2.Start)
	assert.Equal(t, date(2024, time.June, 30), q2.End)

	q4 := Resolve(model.TimingQuarterly, date(2024, time.November, 2))
	assert.Equal(t, date(2024, time.October, 1), q4.Start)
	assert.Equal(t, date(2024, time.December, 31), q4.End)
}

func TestResolve_SemiAnnually(t *testing.T) {
	h1 := Resolve(model.TimingSemiAnnually, date(2025, time.June, 30))
	assert.Equal(t, date(2025, time.January, 1), h1.Start)
	assert.Equal(t, date(2025, time.June, 30), h1.End)

	h2 := Resolve(model.TimingSemiAnnually, date(2025, time.July, 1))
	assert.Equal(t, date(2025, time.July, 1), h2.Start)
	assert.Equal(t, date(2025, time.December, 31), h2.End)
}

func TestResolve_AnnualAndUnknown(t *testing.T) {
	for _, timing := range []model.Timing{model.TimingAnnually, model.Timing("weekly"), model.Timing("")} {
		p := Resolve(timing, date(2024, time.August, 9))
		assert.Equal(t, date(2024, time.January, 1), p.Start, "timing %q", timing)
		assert.Equal(t, date(2024, time.December, 31), p.End, "timing %q", timing)
	}
}

func TestContains(t *testing.T) {
	p := Resolve(model.TimingQuarterly, date(2024, time.February, 14))
	assert.True(t, p.Contains(date(2024, time.January, 1)))
	assert.True(t, p.Contains(date(2024, time.March, 31)))
	assert.False(t, p.Contains(date(2024, time.April, 1)))
	assert.False(t, p.Contains(date(2023, time.December, 31)))

	// Time-of-day must not push a boundary date out of its period.
	assert.True(t, p.Contains(time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "2024-03", Resolve(model.TimingMonthly, date(2024, time.March, 5)).Key())
	assert.Equal(t, "2024-Q2", Resolve(model.TimingQuarterly, date(2024, time.May, 5)).Key())
	assert.Equal(t, "2024-H2", Resolve(model.TimingSemiAnnually, date(2024, time.October, 5)).Key())
	assert.Equal(t, "2024", Resolve(model.TimingAnnually, date(2024, time.May, 5)).Key())
}
