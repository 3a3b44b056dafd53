package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetrax/internal/clock"
	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

// Monday 2024-03-04, 09:00 UTC.
var monday = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// harness runs commands against a temp database with a pinned clock. Each
// run opens and closes the store, like separate invocations would.
type harness struct {
	t    *testing.T
	clk  *clock.Manual
	opts *RootOptions
	db   string
	cfg  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	clk := clock.NewManual(monday)
	return &harness{
		t:   t,
		clk: clk,
		opts: &RootOptions{
			storeOpts: []store.Option{store.WithClock(clk), store.WithLocation(time.UTC)},
		},
		db:  filepath.Join(dir, "work.db"),
		cfg: filepath.Join(dir, "config.yaml"),
	}
}

func (h *harness) runContext(ctx context.Context, args ...string) (string, string, error) {
	h.t.Helper()
	cmd := newRootCommand(h.opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", h.db, "--config", h.cfg}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	return h.runContext(context.Background(), args...)
}

// mustRun fails the test on error and returns stdout.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run(args...)
	require.NoError(h.t, err, "%v: %s", args, errOut)
	return out
}

func decodeData[T any](t *testing.T, out string) T {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

// ============================================================
// status / start / stop
// ============================================================

func TestStatusFreshDatabase(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("status")

	assert.Contains(t, out, "Idle")
	assert.Contains(t, out, "Today (2024-03-04): 00:00:00")
	assert.Contains(t, out, "Balance: +00:00:00")
}

func TestStartStopStatus(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("items", "add", "Dev")
	assert.Contains(t, out, `Added "Dev" (id 2)`)

	out = h.mustRun("start", "Dev")
	assert.Equal(t, "Working on Dev\n", out)

	out = h.mustRun("start", "dev")
	assert.Equal(t, "Already working on Dev\n", out)

	h.clk.Advance(2 * time.Hour)
	out = h.mustRun("status")
	assert.Contains(t, out, "Working on Dev since 09:00:00")
	assert.Contains(t, out, "Today (2024-03-04): 02:00:00")

	assert.Equal(t, "Stopped\n", h.mustRun("stop"))
	assert.Equal(t, "Not working\n", h.mustRun("stop"))

	h.clk.Advance(time.Hour)
	out = h.mustRun("status")
	assert.Contains(t, out, "Idle")
	assert.Contains(t, out, "Today (2024-03-04): 02:00:00")
}

func TestStatusJSON(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "1")
	h.clk.Advance(90 * time.Minute)

	res := decodeData[StatusResult](t, h.mustRun("--format", "json", "status"))
	assert.True(t, res.Working)
	require.NotNil(t, res.ItemID)
	assert.Equal(t, int64(1), *res.ItemID)
	assert.Equal(t, "Standup", res.Item)
	assert.Equal(t, int64(5400), res.WorkedSeconds)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(5400), res.Items[0].Seconds)
	require.NotNil(t, res.Balance)
}

func TestStartUnknownItem(t *testing.T) {
	h := newHarness(t)
	_, errOut, err := h.run("start", "Review")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "no such work item")
}

func TestStartHiddenItem(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("items", "hide", "Standup"), "Hidden")

	_, errOut, err := h.run("start", "Standup")
	require.Error(t, err)
	assert.Contains(t, errOut, "hidden")

	assert.Contains(t, h.mustRun("items", "show", "1"), "Shown")
	assert.Equal(t, "Working on Standup\n", h.mustRun("start", "Standup"))
}

// ============================================================
// items
// ============================================================

func TestItems(t *testing.T) {
	h := newHarness(t)
	h.mustRun("items", "add", "Code", "review")
	out := h.mustRun("items", "add", "Code review")
	assert.Contains(t, out, "Exists")

	h.mustRun("items", "hide", "Standup")
	res := decodeData[ItemsResult](t, h.mustRun("--format", "json", "items"))
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Standup", res.Items[0].Name)
	assert.False(t, res.Items[0].Visible)
	assert.Equal(t, "Code review", res.Items[1].Name)
	assert.True(t, res.Items[1].Visible)

	out = h.mustRun("items")
	assert.Contains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestItemsHideUnknown(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("items", "hide", "99")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// ============================================================
// ledger / diff
// ============================================================

func TestLedgerAndDiff(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "Standup")
	h.clk.Advance(2 * time.Hour)
	h.mustRun("stop")
	h.clk.Advance(24 * time.Hour)

	out := h.mustRun("ledger")
	assert.Contains(t, out, "2024-03-04")
	assert.Contains(t, out, "02:00:00")
	assert.Contains(t, out, "08:00:00")
	assert.Contains(t, out, "Balance: -06:00:00")

	assert.Equal(t, "-06:00:00\n", h.mustRun("diff"))

	res := decodeData[DiffResult](t, h.mustRun("--format", "json", "diff"))
	assert.Equal(t, int64(-6*3600), res.Seconds)
}

// seedInconsistentDay leaves Monday ending in a session that started after
// the recorded shutdown, which recovery does not touch.
func seedInconsistentDay(t *testing.T, h *harness) {
	t.Helper()
	h.mustRun("items")

	s, err := store.Open(h.db,
		store.WithClock(h.clk),
		store.WithLocation(time.UTC),
		store.WithLogger(logging.Discard()),
	)
	require.NoError(t, err)
	h.clk.Set(monday.Add(time.Hour))
	require.NoError(t, s.SetCurrentWork(store.Working(1)))
	h.clk.Set(monday)
	require.NoError(t, s.Close())

	h.clk.Set(monday.Add(24 * time.Hour))
}

func TestDiffInconsistent(t *testing.T) {
	h := newHarness(t)
	seedInconsistentDay(t, h)

	_, errOut, err := h.run("diff")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "2024-03-04")

	out, _, err := h.run("--format", "json", "diff")
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInconsistent, resp.Error.Code)
	assert.Equal(t, map[string]any{"date": "2024-03-04"}, resp.Error.Details)

	out = h.mustRun("ledger")
	assert.Contains(t, out, "no end of workday")
	assert.Contains(t, out, "Balance unavailable")
}

// ============================================================
// expected / settings
// ============================================================

func TestExpected(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "2024-03-04: 08:00:00 (default)\n", h.mustRun("expected", "get"))
	assert.Equal(t, "2024-03-09: 00:00:00 (default)\n", h.mustRun("expected", "get", "2024-03-09"))

	h.mustRun("expected", "set", "2024-03-05", "6h")
	assert.Equal(t, "2024-03-05: 06:00:00\n", h.mustRun("expected", "get", "2024-03-05"))

	h.mustRun("expected", "set", "yesterday", "4.5")
	assert.Equal(t, "2024-03-03: 04:30:00\n", h.mustRun("expected", "get", "2024-03-03"))

	_, _, err := h.run("expected", "set", "2024-03-05", "--", "-1h")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExpectedHoliday(t *testing.T) {
	h := newHarness(t)
	res := decodeData[ExpectedResult](t, h.mustRun("--format", "json", "expected", "get", "2024-12-25"))
	assert.Equal(t, int64(0), res.Seconds)
	assert.False(t, res.Stored)
	assert.NotEmpty(t, res.Holiday)
}

func TestSettings(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "default_time     28800\n", h.mustRun("settings", "get", "default_time"))

	h.mustRun("settings", "set", "default_time", "7.5")
	h.mustRun("settings", "set", "account_start", "--", "-2h")

	res := decodeData[SettingsResult](t, h.mustRun("--format", "json", "settings", "get"))
	values := map[string]string{}
	for _, s := range res.Settings {
		values[s.Key] = s.Value
	}
	assert.Equal(t, "27000", values["default_time"])
	assert.Equal(t, "-7200", values["account_start"])
	assert.Contains(t, values, "shutdown")

	_, _, err := h.run("settings", "set", "shutdown", "1h")
	require.Error(t, err)

	_, _, err = h.run("settings", "set", "default_time", "--", "-1h")
	require.Error(t, err)

	_, _, err = h.run("settings", "get", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAccountStartMovesBalance(t *testing.T) {
	h := newHarness(t)
	h.mustRun("settings", "set", "account_start", "90m")
	assert.Equal(t, "+01:30:00\n", h.mustRun("diff"))
}

// ============================================================
// export / serve
// ============================================================

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start", "Standup")
	h.clk.Advance(time.Hour)
	h.mustRun("stop")
	h.clk.Advance(24 * time.Hour)

	path := filepath.Join(t.TempDir(), "ledger.csv")
	out := h.mustRun("export", "csv", path)
	assert.Contains(t, out, "Exported 1 days to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Date,Worked (s)")
	assert.Contains(t, string(data), "2024-03-04,3600")

	out = h.mustRun("export", "json", "-")
	var doc struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.Count)

	_, _, err = h.run("export", "xml", path)
	require.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := h.runContext(ctx, "serve", "--listen", "127.0.0.1:0")
	require.NoError(t, err)

	out := h.mustRun("settings", "get", "shutdown")
	assert.Contains(t, out, "2024-03-04T09:00:00Z")
}

func TestConfigRegion(t *testing.T) {
	h := newHarness(t)

	// Corpus Christi (Thursday 2024-05-30) is a holiday in Bavaria, not in Berlin.
	require.NoError(t, os.WriteFile(h.cfg, []byte("region: by\n"), 0o644))
	assert.Contains(t, h.mustRun("expected", "get", "2024-05-30"), "00:00:00")

	require.NoError(t, os.WriteFile(h.cfg, []byte("region: be\n"), 0o644))
	assert.Contains(t, h.mustRun("expected", "get", "2024-05-30"), "08:00:00")

	require.NoError(t, os.WriteFile(h.cfg, []byte("region: atlantis\n"), 0o644))
	_, _, err := h.run("status")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigSetChangesRegion(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "set", "region", "by")
	assert.Contains(t, out, "region = BY")

	// Corpus Christi is now a holiday.
	assert.Contains(t, h.mustRun("expected", "get", "2024-05-30"), "00:00:00")

	res := decodeData[ConfigResult](t, h.mustRun("--format", "json", "config", "get", "region"))
	assert.Equal(t, "BY", res.Value)
	assert.Equal(t, h.cfg, res.Path)

	_, _, err := h.run("config", "set", "region", "atlantis")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, h.mustRun("config", "get", "region"), "BY", "a rejected value leaves the file alone")

	_, _, err = h.run("config", "get", "colour")
	require.Error(t, err)
}
