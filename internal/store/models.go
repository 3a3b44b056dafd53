package store

import (
	"database/sql"
	"time"
)

type WorkItem struct {
	ID          int64
	Name        string
	Description string
	Visible     bool
}

// State is what a session event switches tracking to: working on an item,
// or idle.
type State struct {
	item    int64
	working bool
}

// Idle is the state after a stop marker.
var Idle = State{}

// Working returns the state of working on item.
func Working(item int64) State {
	return State{item: item, working: true}
}

// IsWorking reports whether the state is Working.
func (s State) IsWorking() bool { return s.working }

// Item returns the work item id and true when working.
func (s State) Item() (int64, bool) { return s.item, s.working }

func (s State) nullItem() sql.NullInt64 {
	return sql.NullInt64{Int64: s.item, Valid: s.working}
}

func stateOf(n sql.NullInt64) State {
	if !n.Valid {
		return Idle
	}
	return Working(n.Int64)
}

// Event is one row of the session log: from Start on, tracking is in State.
type Event struct {
	Start time.Time
	State State
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
