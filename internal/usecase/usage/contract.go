package usage

// QuotaReader gives read-only access to the SIRENE quota counters.
type QuotaReader interface {
	DailyLimit() int64
	MonthlyLimit() int64
	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
}
