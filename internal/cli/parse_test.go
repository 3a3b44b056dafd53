package cli

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetrax/internal/clock"
	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		in   string
		want civil.Date
	}{
		{"2024-02-29", civil.Date{Year: 2024, Month: 2, Day: 29}},
		{" 2024-03-01 ", civil.Date{Year: 2024, Month: 3, Day: 1}},
		{"", civil.Date{Year: 2024, Month: 3, Day: 6}},
		{"today", civil.Date{Year: 2024, Month: 3, Day: 6}},
		{"Today", civil.Date{Year: 2024, Month: 3, Day: 6}},
		{"yesterday", civil.Date{Year: 2024, Month: 3, Day: 5}},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in, now)
		require.NoError(t, err, "parseDate(%q)", tt.in)
		assert.Equal(t, tt.want, got, "parseDate(%q)", tt.in)
	}
}

func TestParseDateInvalid(t *testing.T) {
	_, err := parseDate("qqq zzz", time.Now())
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"8h", 8 * time.Hour},
		{"7h30m", 7*time.Hour + 30*time.Minute},
		{"-2h", -2 * time.Hour},
		{"7.5", 7*time.Hour + 30*time.Minute},
		{"0", 0},
		{" 4 ", 4 * time.Hour},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		require.NoError(t, err, "parseDuration(%q)", tt.in)
		assert.Equal(t, tt.want, got, "parseDuration(%q)", tt.in)
	}

	_, err := parseDuration("a while")
	assert.Error(t, err)
}

func TestResolveItem(t *testing.T) {
	s, err := store.NewMemory(
		store.WithClock(clock.NewManual(monday)),
		store.WithLogger(logging.Discard()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for _, name := range []string{"Dev", "42", "dev ops"} {
		_, err := s.AddWorkItem(name)
		require.NoError(t, err)
	}

	it, err := resolveItem(s, "1")
	require.NoError(t, err)
	assert.Equal(t, "Dev", it.Name)

	it, err = resolveItem(s, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", it.Name, "no item has id 42, so the name matches")

	it, err = resolveItem(s, "DEV OPS")
	require.NoError(t, err)
	assert.Equal(t, "dev ops", it.Name)

	_, err = resolveItem(s, "Review")
	assert.ErrorIs(t, err, errItemNotFound)
}
