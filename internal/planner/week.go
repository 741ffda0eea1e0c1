package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidWeekOffset is returned for a week offset other than 0 or 1.
var ErrInvalidWeekOffset = errors.New("week offset must be 0 or 1")

// MaxWeekOffset is the last week that can be planned ahead.
const MaxWeekOffset = 1

// MondayOf returns midnight of the Monday starting t's week, in t's location.
func MondayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}

// WeekDays returns the seven days shown for weekOffset, Monday first.
func WeekDays(now time.Time, weekOffset int) ([]time.Time, error) {
	if weekOffset < 0 || weekOffset > MaxWeekOffset {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeekOffset, weekOffset)
	}
	start := MondayOf(now).AddDate(0, 0, 7*weekOffset)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days, nil
}

// IsEligible reports whether date falls in the Monday-start week containing
// now. Only meals in that week get ingredients generated.
func IsEligible(date, now time.Time) bool {
	return MondayOf(date).Equal(MondayOf(now.In(date.Location())))
}

// ParseDate parses a yyyy-mm-dd date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t as a stored meal date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Ticker keeps a clock reading that is re-sampled every interval, so
// long-lived views notice when the week rolls over.
type Ticker struct {
	mu       sync.RWMutex
	now      time.Time
	clock    func() time.Time
	interval time.Duration
	logger   *zap.Logger
}

// NewTicker creates a Ticker sampling clock every interval.
func NewTicker(clock func() time.Time, interval time.Duration, logger *zap.Logger) *Ticker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ticker{
		now:      clock(),
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Now returns the latest sample.
func (t *Ticker) Now() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.now
}

// Run re-samples the clock until ctx is done.
func (t *Ticker) Run(ctx context.Context) {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.sample()
		}
	}
}

func (t *Ticker) sample() {
	next := t.clock()

	t.mu.Lock()
	prev := t.now
	t.now = next
	t.mu.Unlock()

	if !MondayOf(prev).Equal(MondayOf(next)) {
		t.logger.Info("planning week rolled over",
			zap.String("week_start", FormatDate(MondayOf(next))),
		)
	}
}
