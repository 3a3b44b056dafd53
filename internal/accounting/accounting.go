// Package accounting turns the session log into worked time per day and
// reconciles it against the expected-time ledger.
package accounting

import (
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

// Store is the part of *store.Store the engine reads and backfills.
type Store interface {
	SessionsOn(date civil.Date) ([]store.Event, error)
	EarliestSessionDate() (civil.Date, bool, error)
	ExpectedTime(date civil.Date) (time.Duration, bool, error)
	SetExpectedTime(date civil.Date, d time.Duration) error
	DefaultTime() (time.Duration, error)
	AccountStart() (time.Duration, error)
	CurrentWork() (store.State, error)
	Now() time.Time
	Today() civil.Date
	Location() *time.Location
}

// HolidayChecker reports public holidays for a region.
type HolidayChecker interface {
	IsHoliday(date civil.Date, region string) bool
}

type Engine struct {
	store    Store
	holidays HolidayChecker
	region   string
	logger   *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an engine over st. A nil holidays checker treats every
// weekday as a working day.
func New(st Store, holidays HolidayChecker, region string, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		holidays: holidays,
		region:   region,
		logger:   logging.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Region is the holiday region the engine applies.
func (e *Engine) Region() string { return e.region }

// DefaultQuota is the expected time for a date that has no ledger row:
// zero on weekends and holidays, otherwise the configured default.
func (e *Engine) DefaultQuota(date civil.Date) (time.Duration, error) {
	switch date.In(time.UTC).Weekday() {
	case time.Saturday, time.Sunday:
		return 0, nil
	}
	if e.holidays != nil && e.holidays.IsHoliday(date, e.region) {
		return 0, nil
	}
	return e.store.DefaultTime()
}

// ExpectedOrDefault returns the stored quota for date. When none exists the
// default quota is computed, persisted and returned, so later changes to
// the default never rewrite a past day.
func (e *Engine) ExpectedOrDefault(date civil.Date) (time.Duration, error) {
	d, ok, err := e.store.ExpectedTime(date)
	if err != nil {
		return 0, err
	}
	if ok {
		return d, nil
	}
	d, err = e.DefaultQuota(date)
	if err != nil {
		return 0, err
	}
	if err := e.store.SetExpectedTime(date, d); err != nil {
		return 0, err
	}
	e.logger.Debug("backfilled expected time",
		logging.KeyDate, date.String(),
		logging.KeyDuration, d.Milliseconds(),
	)
	return d, nil
}
