package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// ExpectedTime returns the stored quota for date. ok is false when no row
// exists yet.
func (s *Store) ExpectedTime(date civil.Date) (d time.Duration, ok bool, err error) {
	var secs int64
	err = s.db.QueryRow(`SELECT seconds FROM expected_time WHERE date = ?`, date.String()).Scan(&secs)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap(fmt.Sprintf("get expected time %s", date), err)
	}
	return time.Duration(secs) * time.Second, true, nil
}

// SetExpectedTime stores the quota for date, replacing any previous value.
// Sub-second precision is dropped.
func (s *Store) SetExpectedTime(date civil.Date, d time.Duration) error {
	if d < 0 {
		return wrap(fmt.Sprintf("set expected time %s", date), fmt.Errorf("negative duration %s", d))
	}
	_, err := s.db.Exec(
		`INSERT INTO expected_time (date, seconds) VALUES (?, ?)
		 ON CONFLICT(date) DO UPDATE SET seconds = excluded.seconds`,
		date.String(), int64(d/time.Second),
	)
	return wrap(fmt.Sprintf("set expected time %s", date), err)
}
