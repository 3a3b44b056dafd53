package store

import (
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// SetCurrentWork records st as the state starting now. Two writes within the
// same second collapse into one event carrying the later state.
func (s *Store) SetCurrentWork(st State) error {
	_, err := s.db.Exec(
		`INSERT INTO work_times (start, work_item) VALUES (?, ?)
		 ON CONFLICT(start) DO UPDATE SET work_item = excluded.work_item`,
		formatTime(s.clock.Now()), st.nullItem(),
	)
	return wrap("set current work", err)
}

// CurrentWork is the state of the latest event today, or Idle.
func (s *Store) CurrentWork() (State, error) {
	return s.CurrentWorkOn(s.Today())
}

// CurrentWorkOn is the state of the latest event on date, or Idle when the
// date has no events.
func (s *Store) CurrentWorkOn(date civil.Date) (State, error) {
	ev, ok, err := s.lastEventOn(date)
	if err != nil || !ok {
		return Idle, err
	}
	return ev.State, nil
}

func (s *Store) lastEventOn(date civil.Date) (Event, bool, error) {
	from, to := s.dayBounds(date)
	var start string
	var item sql.NullInt64
	err := s.db.QueryRow(
		`SELECT start, work_item FROM work_times
		 WHERE start >= ? AND start < ?
		 ORDER BY start DESC LIMIT 1`,
		from, to,
	).Scan(&start, &item)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, false, nil
	}
	op := fmt.Sprintf("last event on %s", date)
	if err != nil {
		return Event{}, false, wrap(op, err)
	}
	t, err := parseTime(start)
	if err != nil {
		return Event{}, false, wrap(op, err)
	}
	return Event{Start: t, State: stateOf(item)}, true, nil
}

// SessionsOn returns the events whose start falls on date in the store's
// location, oldest first.
func (s *Store) SessionsOn(date civil.Date) ([]Event, error) {
	op := fmt.Sprintf("sessions on %s", date)
	from, to := s.dayBounds(date)
	rows, err := s.db.Query(
		`SELECT start, work_item FROM work_times
		 WHERE start >= ? AND start < ?
		 ORDER BY start`,
		from, to,
	)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var start string
		var item sql.NullInt64
		if err := rows.Scan(&start, &item); err != nil {
			return nil, wrap(op, err)
		}
		t, err := parseTime(start)
		if err != nil {
			return nil, wrap(op, err)
		}
		events = append(events, Event{Start: t, State: stateOf(item)})
	}
	return events, wrap(op, rows.Err())
}

// EarliestSessionDate is the local date of the oldest event. ok is false
// when the log is empty.
func (s *Store) EarliestSessionDate() (date civil.Date, ok bool, err error) {
	var start sql.NullString
	if err := s.db.QueryRow(`SELECT MIN(start) FROM work_times`).Scan(&start); err != nil {
		return civil.Date{}, false, wrap("earliest session", err)
	}
	if !start.Valid {
		return civil.Date{}, false, nil
	}
	t, err := parseTime(start.String)
	if err != nil {
		return civil.Date{}, false, wrap("earliest session", err)
	}
	return civil.DateOf(t.In(s.loc)), true, nil
}
