package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Well-known key_value entries.
const (
	KeyDefaultTime  = "default_time"
	KeyAccountStart = "account_start"
	KeyShutdown     = "shutdown"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM key_value WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %q: %w", key, ErrSettingNotFound)
	}
	if err != nil {
		return "", wrap(fmt.Sprintf("get setting %q", key), err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO key_value (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return wrap(fmt.Sprintf("set setting %q", key), err)
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM key_value ORDER BY key`)
	if err != nil {
		return nil, wrap("list settings", err)
	}
	defer rows.Close()

	settings := []Setting{}
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, wrap("list settings", err)
		}
		settings = append(settings, st)
	}
	return settings, wrap("list settings", rows.Err())
}

// DefaultTime is the quota applied to ordinary working days.
func (s *Store) DefaultTime() (time.Duration, error) {
	d, ok, err := s.secondsSetting(KeyDefaultTime)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("default time: %w", ErrSettingNotFound)
	}
	return d, nil
}

// SetDefaultTime replaces the quota used for dates that have no ledger row
// yet. Existing rows are untouched.
func (s *Store) SetDefaultTime(d time.Duration) error {
	if d < 0 {
		return &ConfigError{Key: KeyDefaultTime, Value: d.String(), Err: errors.New("must not be negative")}
	}
	return s.SetSetting(KeyDefaultTime, strconv.FormatInt(int64(d/time.Second), 10))
}

// AccountStart is the signed balance carried over from before the log
// began. It is zero when unset.
func (s *Store) AccountStart() (time.Duration, error) {
	d, _, err := s.secondsSetting(KeyAccountStart)
	return d, err
}

func (s *Store) SetAccountStart(d time.Duration) error {
	return s.SetSetting(KeyAccountStart, strconv.FormatInt(int64(d/time.Second), 10))
}

func (s *Store) secondsSetting(key string) (time.Duration, bool, error) {
	v, err := s.GetSetting(key)
	if errors.Is(err, ErrSettingNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, &ConfigError{Key: key, Value: v, Err: err}
	}
	return time.Duration(secs) * time.Second, true, nil
}

// LastShutdown is the instant of the last recorded teardown. ok is false if
// the store has never been closed.
func (s *Store) LastShutdown() (t time.Time, ok bool, err error) {
	v, err := s.GetSetting(KeyShutdown)
	if errors.Is(err, ErrSettingNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err = parseTime(v)
	if err != nil {
		return time.Time{}, false, &ConfigError{Key: KeyShutdown, Value: v, Err: err}
	}
	return t, true, nil
}

// RecordShutdown stores the current instant as the last known-good moment.
func (s *Store) RecordShutdown() error {
	return s.SetSetting(KeyShutdown, formatTime(s.clock.Now()))
}
