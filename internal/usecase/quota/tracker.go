// Package quota meters outgoing SIRENE requests against daily and monthly limits.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain"
)

// Action decides what happens once a limit is reached.
type Action string

const (
	// ActionWarn logs and lets the request through.
	ActionWarn Action = "warn"
	// ActionReject fails the request with domain.ErrSireneQuotaExceeded.
	ActionReject Action = "reject"
)

// ParseAction validates an action name. Empty means ActionWarn.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case "":
		return ActionWarn, nil
	case ActionWarn, ActionReject:
		return a, nil
	default:
		return "", fmt.Errorf("unknown quota action %q", s)
	}
}

// Tracker counts requests in memory and writes them behind to a Store.
// Check never touches the store.
type Tracker struct {
	mu             sync.Mutex
	dailyUsed      int64
	monthlyUsed    int64
	dailyLimit     int64
	monthlyLimit   int64
	action         Action
	provider       string
	lastDayReset   time.Time
	lastMonthReset time.Time
	now            func() time.Time
	store          Store
	logger         *zap.Logger
}

// NewTracker creates a tracker. A zero limit is unlimited.
func NewTracker(provider string, dailyLimit, monthlyLimit int64, action Action, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		action:       action,
		provider:     provider,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
	t.lastDayReset = truncateToDay(t.now())
	t.lastMonthReset = truncateToMonth(t.now())
	return t
}

// WithStore attaches a store and loads the current counters from it.
func (t *Tracker) WithStore(ctx context.Context, s Store) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = s
	now := t.now()
	if v, err := s.Get(ctx, t.dailyKey(now)); err == nil {
		t.dailyUsed = v
	} else {
		t.logger.Warn("Failed to load daily quota", zap.Error(err))
	}
	if v, err := s.Get(ctx, t.monthlyKey(now)); err == nil {
		t.monthlyUsed = v
	} else {
		t.logger.Warn("Failed to load monthly quota", zap.Error(err))
	}

	t.logger.Info("Quota loaded from store",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("monthly_used", t.monthlyUsed),
	)
	return t
}

// Enabled reports whether at least one limit is set.
func (t *Tracker) Enabled() bool { return t.dailyLimit > 0 || t.monthlyLimit > 0 }

func (t *Tracker) dailyKey(ts time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", domain.KeyPrefix, t.provider, ts.Format("2006-01-02"))
}

func (t *Tracker) monthlyKey(ts time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", domain.KeyPrefix, t.provider, ts.Format("2006-01"))
}

// Check reports whether one more request is allowed.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()

	dailyExceeded := t.dailyLimit > 0 && t.dailyUsed >= t.dailyLimit
	monthlyExceeded := t.monthlyLimit > 0 && t.monthlyUsed >= t.monthlyLimit
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}
	if t.action == ActionReject {
		return domain.ErrSireneQuotaExceeded
	}

	t.logger.Warn("SIRENE quota exceeded",
		zap.String("provider", t.provider),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.dailyLimit),
		zap.Int64("monthly_used", t.monthlyUsed),
		zap.Int64("monthly_limit", t.monthlyLimit),
	)
	return nil
}

// Record counts n requests.
func (t *Tracker) Record(n int64) {
	t.mu.Lock()
	t.resetIfNeeded()
	t.dailyUsed += n
	t.monthlyUsed += n
	s := t.store
	now := t.now()
	dailyKey, monthlyKey := t.dailyKey(now), t.monthlyKey(now)
	t.mu.Unlock()

	if s == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.IncrBy(ctx, dailyKey, n); err != nil {
		t.logger.Warn("Failed to persist daily quota", zap.String("key", dailyKey), zap.Error(err))
	}
	if err := s.IncrBy(ctx, monthlyKey, n); err != nil {
		t.logger.Warn("Failed to persist monthly quota", zap.String("key", monthlyKey), zap.Error(err))
	}
}

// DailyLimit returns the daily cap, 0 when unlimited.
func (t *Tracker) DailyLimit() int64 { return t.dailyLimit }

// MonthlyLimit returns the monthly cap, 0 when unlimited.
func (t *Tracker) MonthlyLimit() int64 { return t.monthlyLimit }

// DailyUsed returns the requests counted today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.dailyUsed
}

// MonthlyUsed returns the requests counted this month.
func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.monthlyUsed
}

// RemainingDaily returns the requests left today, -1 when unlimited.
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return remaining(t.dailyLimit, t.dailyUsed)
}

// RemainingMonthly returns the requests left this month, -1 when unlimited.
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return remaining(t.monthlyLimit, t.monthlyUsed)
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(limit-used, 0)
}

func (t *Tracker) resetIfNeeded() {
	now := t.now()
	if today := truncateToDay(now); today.After(t.lastDayReset) {
		t.dailyUsed = 0
		t.lastDayReset = today
	}
	if month := truncateToMonth(now); month.After(t.lastMonthReset) {
		t.monthlyUsed = 0
		t.lastMonthReset = month
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
