package usage

import (
	"context"
	"time"

	domusage "github.com/cen-na/agricarte/internal/domain/usage"
)

// Service reports SIRENE quota usage.
type Service struct {
	qr  QuotaReader
	now func() time.Time
}

// New creates a Service. qr may be nil when no quota is configured.
func New(qr QuotaReader) *Service {
	return &Service{qr: qr, now: time.Now}
}

// Report returns the quota state for the current period.
func (s *Service) Report(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(s.now())
	r := domusage.Report{Period: period, Start: start, End: end, Remaining: -1}
	if s.qr == nil {
		return r
	}

	if period == domusage.PeriodDay {
		r.Limit, r.Used, r.Remaining = s.qr.DailyLimit(), s.qr.DailyUsed(), s.qr.RemainingDaily()
	} else {
		r.Limit, r.Used, r.Remaining = s.qr.MonthlyLimit(), s.qr.MonthlyUsed(), s.qr.RemainingMonthly()
	}
	return r
}
