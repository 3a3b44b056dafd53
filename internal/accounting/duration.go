package accounting

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/sadopc/timetrax/internal/store"
)

// DurationFromEvents sums the intervals that begin with a Working event.
// events must be one day's log in ascending order. A log whose last event
// is Working has no end of workday and yields an *InconsistentError for
// that event's date in loc.
func DurationFromEvents(events []store.Event, loc *time.Location) (time.Duration, error) {
	if len(events) == 0 {
		return 0, nil
	}
	last := events[len(events)-1]
	if last.State.IsWorking() {
		return 0, &InconsistentError{Date: civil.DateOf(last.Start.In(loc))}
	}
	var total time.Duration
	for i := 0; i+1 < len(events); i++ {
		if events[i].State.IsWorking() {
			total += events[i+1].Start.Sub(events[i].Start)
		}
	}
	return total, nil
}

// WorkedSoFar is like DurationFromEvents but counts a trailing open session
// up to now. It never fails and is meant for the running day.
func WorkedSoFar(events []store.Event, now time.Time) time.Duration {
	var total time.Duration
	for _, d := range ItemTotals(events, now) {
		total += d
	}
	return total
}

// ItemTotals splits worked time by work item, counting a trailing open
// session up to now.
func ItemTotals(events []store.Event, now time.Time) map[int64]time.Duration {
	totals := make(map[int64]time.Duration)
	for i, ev := range events {
		item, ok := ev.State.Item()
		if !ok {
			continue
		}
		end := now
		if i+1 < len(events) {
			end = events[i+1].Start
		}
		if end.After(ev.Start) {
			totals[item] += end.Sub(ev.Start)
		}
	}
	return totals
}
