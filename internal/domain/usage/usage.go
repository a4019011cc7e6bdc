// Package usage describes how much of the SIRENE request quota has been spent.
package usage

import (
	"fmt"
	"time"
)

// Period is the aggregation granularity.
type Period string

// Aggregation periods.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means PeriodMonth.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodMonth:
		return p, nil
	default:
		return "", fmt.Errorf("unknown usage period %q", s)
	}
}

// Bounds returns the UTC start and end of the period containing t.
func (p Period) Bounds(t time.Time) (start, end time.Time) {
	t = t.UTC()
	if p == PeriodDay {
		start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1)
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Report is the quota state for one period. Limit 0 and Remaining -1 mean unlimited.
type Report struct {
	Period    Period
	Start     time.Time
	End       time.Time
	Limit     int64
	Used      int64
	Remaining int64
}

// Exhausted reports whether a limited quota has nothing left.
func (r Report) Exhausted() bool { return r.Limit > 0 && r.Remaining <= 0 }
