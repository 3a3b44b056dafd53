package tui

import (
	"time"

	"github.com/sadopc/timetrax/internal/store"
)

// trackerModel mirrors the current work state and writes start/stop events.
// Elapsed time is read from the store clock so it matches what the ledger
// will count.
type trackerModel struct {
	store *store.Store

	state    store.State
	itemName string
	since    time.Time
}

func newTrackerModel(s *store.Store) trackerModel {
	return trackerModel{store: s, state: store.Idle}
}

func (t *trackerModel) start(itemID int64, itemName string) error {
	if cur, ok := t.state.Item(); ok && cur == itemID {
		return nil
	}
	if err := t.store.SetCurrentWork(store.Working(itemID)); err != nil {
		return err
	}
	t.state = store.Working(itemID)
	t.itemName = itemName
	t.since = t.store.Now()
	return nil
}

// stop records an idle event. It reports false when nothing was running.
func (t *trackerModel) stop() (bool, error) {
	if !t.state.IsWorking() {
		return false, nil
	}
	if err := t.store.SetCurrentWork(store.Idle); err != nil {
		return false, err
	}
	t.state = store.Idle
	t.itemName = ""
	return true, nil
}

// sync adopts the state of the last of today's events.
func (t *trackerModel) sync(events []store.Event, names map[int64]string) {
	t.state = store.Idle
	t.itemName = ""
	if len(events) == 0 {
		return
	}
	last := events[len(events)-1]
	t.state = last.State
	if id, ok := last.State.Item(); ok {
		t.itemName = names[id]
		t.since = last.Start
	}
}

func (t trackerModel) running() bool {
	return t.state.IsWorking()
}

func (t trackerModel) currentElapsed() time.Duration {
	if !t.running() {
		return 0
	}
	d := t.store.Now().Sub(t.since)
	if d < 0 {
		return 0
	}
	return d
}
