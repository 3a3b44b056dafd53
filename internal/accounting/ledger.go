package accounting

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"

	"github.com/sadopc/timetrax/internal/store"
)

// DayTime is one closed day of the ledger. Err is set instead of Worked
// when the day's log is inconsistent or could not be read.
type DayTime struct {
	Date     civil.Date
	Worked   time.Duration
	Expected time.Duration
	Err      error
}

// Diff is Worked minus Expected. It is zero for a day with Err set.
func (d DayTime) Diff() time.Duration {
	if d.Err != nil {
		return 0
	}
	return d.Worked - d.Expected
}

// Inconsistent reports whether the day ends mid-session.
func (d DayTime) Inconsistent() bool {
	var ie *InconsistentError
	return errors.As(d.Err, &ie)
}

// WorkTimeByDay returns one entry per date from the first logged day up to,
// not including, today. Missing expected-time rows are backfilled on the
// way. An empty log yields an empty ledger.
func (e *Engine) WorkTimeByDay() ([]DayTime, error) {
	first, ok, err := e.store.EarliestSessionDate()
	if err != nil {
		return nil, err
	}
	days := []DayTime{}
	if !ok {
		return days, nil
	}
	today := e.store.Today()
	loc := e.store.Location()
	for date := first; date.Before(today); date = date.AddDays(1) {
		day := DayTime{Date: date}
		events, err := e.store.SessionsOn(date)
		if err == nil {
			day.Worked, err = DurationFromEvents(events, loc)
		}
		day.Err = err
		day.Expected, err = e.ExpectedOrDefault(date)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// TimeDiff is the running balance: the account_start baseline plus worked
// minus expected over every closed day. The earliest day with an error
// fails the whole computation.
func (e *Engine) TimeDiff() (time.Duration, error) {
	days, err := e.WorkTimeByDay()
	if err != nil {
		return 0, err
	}
	return e.diffOf(days)
}

func (e *Engine) diffOf(days []DayTime) (time.Duration, error) {
	total, err := e.store.AccountStart()
	if err != nil {
		return 0, err
	}
	for _, d := range days {
		if d.Err != nil {
			return 0, d.Err
		}
		total += d.Diff()
	}
	return total, nil
}

// Report bundles the ledger with the balance derived from it so callers
// that show both query the store once.
type Report struct {
	Days    []DayTime
	Diff    time.Duration
	DiffErr error
}

func (e *Engine) Report() (Report, error) {
	days, err := e.WorkTimeByDay()
	if err != nil {
		return Report{}, err
	}
	r := Report{Days: days}
	r.Diff, r.DiffErr = e.diffOf(days)
	return r, nil
}

// Today summarizes the running day, counting an open session up to now.
type Today struct {
	Date    civil.Date
	Events  []store.Event
	Current store.State
	Worked  time.Duration
	PerItem map[int64]time.Duration
}

func (e *Engine) Today() (Today, error) {
	date := e.store.Today()
	events, err := e.store.SessionsOn(date)
	if err != nil {
		return Today{}, err
	}
	cur, err := e.store.CurrentWork()
	if err != nil {
		return Today{}, err
	}
	now := e.store.Now()
	return Today{
		Date:    date,
		Events:  events,
		Current: cur,
		Worked:  WorkedSoFar(events, now),
		PerItem: ItemTotals(events, now),
	}, nil
}
