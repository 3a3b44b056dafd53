package store

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/sadopc/timetrax/internal/logging"
)

// recover closes a session that was still running when the process last
// stopped on an earlier day. The stop is placed at the recorded shutdown
// instant so the lost tail of that day counts as worked up to teardown.
func (s *Store) recover() error {
	shutdown, ok, err := s.LastShutdown()
	if err != nil || !ok {
		return err
	}

	day := civil.DateOf(shutdown.In(s.loc))
	if !day.Before(s.Today()) {
		return nil
	}

	last, ok, err := s.lastEventOn(day)
	if err != nil {
		return err
	}
	if !ok || !last.State.IsWorking() {
		return nil
	}
	// A host that recorded the shutdown may have exited before another one
	// started this session and died without closing the store.
	if last.Start.After(shutdown) {
		s.logger.Warn("open session starts after last shutdown, leaving it",
			logging.KeyDate, day.String(),
			logging.KeyShutdown, shutdown,
		)
		return nil
	}

	// A one-shot command closes the store in the same second it starts work.
	// The stop goes one stored second later so the start event survives.
	stop := shutdown
	if last.Start.Equal(shutdown) {
		stop = last.Start.Add(time.Second)
	}

	_, err = s.db.Exec(
		`INSERT INTO work_times (start, work_item) VALUES (?, NULL)`,
		formatTime(stop),
	)
	if err != nil {
		return wrap("recover open session", err)
	}
	item, _ := last.State.Item()
	s.logger.Info("closed session left open by unclean shutdown",
		logging.KeyDate, day.String(),
		logging.KeyItem, item,
		logging.KeyShutdown, stop,
	)
	return nil
}
