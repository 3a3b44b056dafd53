package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetrax/internal/accounting"
	"github.com/sadopc/timetrax/internal/clock"
	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

// Monday 2024-03-04, 09:00 UTC.
var monday = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*store.Store, *clock.Manual, *accounting.Engine) {
	t.Helper()
	clk := clock.NewManual(monday)
	s, err := store.NewMemory(
		store.WithClock(clk),
		store.WithLocation(time.UTC),
		store.WithLogger(logging.Discard()),
	)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clk, accounting.New(s, nil, "BW", accounting.WithLogger(logging.Discard()))
}

func addItem(t *testing.T, s *store.Store, name string) int64 {
	t.Helper()
	if _, err := s.AddWorkItem(name); err != nil {
		t.Fatal(err)
	}
	items, err := s.WorkItems()
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Name == name {
			return it.ID
		}
	}
	t.Fatalf("work item %q not found", name)
	return 0
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// Tracker model
// ============================================================

func TestTrackerStartStop(t *testing.T) {
	s, clk, _ := newTestStore(t)
	id := addItem(t, s, "Dev")

	tm := newTrackerModel(s)
	if tm.running() {
		t.Fatal("tracker should start idle")
	}

	if err := tm.start(id, "Dev"); err != nil {
		t.Fatal(err)
	}
	if !tm.running() {
		t.Fatal("tracker should be running after start")
	}
	if tm.itemName != "Dev" {
		t.Fatalf("item name = %q, want Dev", tm.itemName)
	}

	clk.Advance(90 * time.Second)
	if got := tm.currentElapsed(); got != 90*time.Second {
		t.Fatalf("elapsed = %v, want 1m30s", got)
	}

	stopped, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if !stopped || tm.running() {
		t.Fatal("tracker should be stopped")
	}

	events, _ := s.SessionsOn(civil.DateOf(monday))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestTrackerStopWhenIdle(t *testing.T) {
	s, _, _ := newTestStore(t)
	tm := newTrackerModel(s)

	stopped, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if stopped {
		t.Fatal("stop on idle tracker should report false")
	}
	events, _ := s.SessionsOn(civil.DateOf(monday))
	if len(events) != 0 {
		t.Fatal("stop on idle tracker should not write an event")
	}
}

func TestTrackerStartSameItemIsNoop(t *testing.T) {
	s, clk, _ := newTestStore(t)
	id := addItem(t, s, "Dev")

	tm := newTrackerModel(s)
	tm.start(id, "Dev")
	clk.Advance(time.Minute)
	tm.start(id, "Dev")

	events, _ := s.SessionsOn(civil.DateOf(monday))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if tm.currentElapsed() != time.Minute {
		t.Fatal("restarting the same item should not reset the session clock")
	}
}

func TestTrackerSwitchItems(t *testing.T) {
	s, clk, _ := newTestStore(t)
	a := addItem(t, s, "A")
	b := addItem(t, s, "B")

	tm := newTrackerModel(s)
	tm.start(a, "A")
	clk.Advance(time.Minute)
	if err := tm.start(b, "B"); err != nil {
		t.Fatal(err)
	}
	if id, _ := tm.state.Item(); id != b {
		t.Fatal("tracker should be working on B")
	}
	if tm.currentElapsed() != 0 {
		t.Fatal("switching items starts a new session")
	}
}

func TestTrackerSync(t *testing.T) {
	s, clk, _ := newTestStore(t)
	tm := newTrackerModel(s)

	events := []store.Event{
		{Start: monday, State: store.Working(7)},
	}
	tm.sync(events, map[int64]string{7: "Ops"})
	if !tm.running() || tm.itemName != "Ops" {
		t.Fatal("sync should adopt the last working event")
	}
	clk.Advance(10 * time.Minute)
	if tm.currentElapsed() != 10*time.Minute {
		t.Fatalf("elapsed = %v, want 10m", tm.currentElapsed())
	}

	events = append(events, store.Event{Start: monday.Add(time.Hour), State: store.Idle})
	tm.sync(events, nil)
	if tm.running() {
		t.Fatal("sync should adopt the trailing idle event")
	}

	tm.sync(nil, nil)
	if tm.running() {
		t.Fatal("no events means idle")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute + 5*time.Second, "00:01:05"},
		{3*time.Hour + 25*time.Minute, "03:25:00"},
		{-30 * time.Minute, "-00:30:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDiff(t *testing.T) {
	if got := formatDiff(90 * time.Minute); got != "+01:30:00" {
		t.Fatalf("got %q", got)
	}
	if got := formatDiff(-90 * time.Minute); got != "-01:30:00" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0.0h"},
		{90 * time.Minute, "1.5h"},
		{8 * time.Hour, "8.0h"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.in); got != tt.want {
			t.Errorf("formatHours(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestViewNames(t *testing.T) {
	expected := []string{"Dashboard", "Work Items", "Ledger", "Settings"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

func TestViewStateConstants(t *testing.T) {
	if viewDashboard != 0 || viewItems != 1 || viewLedger != 2 || viewSettings != 3 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Dashboard model
// ============================================================

func TestDashboardInit(t *testing.T) {
	s, _, e := newTestStore(t)
	d := newDashboardModel(s, e)

	if d.isRunning() {
		t.Fatal("dashboard should not be running initially")
	}
	if d.elapsed() != 0 {
		t.Fatal("dashboard should have 0 elapsed initially")
	}
}

func TestDashboardLoadData(t *testing.T) {
	s, clk, e := newTestStore(t)
	id := addItem(t, s, "Dev")
	s.SetCurrentWork(store.Working(id))
	clk.Advance(time.Hour)

	d := newDashboardModel(s, e)
	msg := d.loadData()()
	data, ok := msg.(dashboardDataMsg)
	if !ok {
		t.Fatalf("expected dashboardDataMsg, got %T", msg)
	}
	d, _ = d.update(data)

	if !d.isRunning() {
		t.Fatal("dashboard should pick up the running session")
	}
	if d.elapsed() != time.Hour {
		t.Fatalf("elapsed = %v, want 1h", d.elapsed())
	}
	d.setSize(100, 40)
	out := d.view()
	if !strings.Contains(out, "Dev") || !strings.Contains(out, "01:00:00") {
		t.Fatal("dashboard should show the item and the time worked")
	}
}

func TestDashboardStartStop(t *testing.T) {
	s, _, e := newTestStore(t)
	id := addItem(t, s, "Dev")

	d := newDashboardModel(s, e)
	d.available = []store.WorkItem{{ID: id, Name: "Dev", Visible: true}}

	d, _ = d.update(runes("s"))
	if !d.isRunning() {
		t.Fatal("with one item, start should begin work right away")
	}
	if d.picking {
		t.Fatal("picker should not open with a single item")
	}

	d, _ = d.update(runes("x"))
	if d.isRunning() {
		t.Fatal("tracker should be idle after stop")
	}
}

func TestDashboardPicker(t *testing.T) {
	s, _, e := newTestStore(t)
	a := addItem(t, s, "A")
	b := addItem(t, s, "B")

	d := newDashboardModel(s, e)
	d.available = []store.WorkItem{{ID: a, Name: "A"}, {ID: b, Name: "B"}}

	d, _ = d.update(runes("s"))
	if !d.picking {
		t.Fatal("picker should open with several items")
	}
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown})
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyEnter})

	if d.picking {
		t.Fatal("picker should close after selection")
	}
	if id, ok := d.tracker.state.Item(); !ok || id != b {
		t.Fatal("should be working on the second item")
	}
}

func TestDashboardStartWithoutItems(t *testing.T) {
	s, _, e := newTestStore(t)
	d := newDashboardModel(s, e)

	_, cmd := d.update(runes("s"))
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatal("expected an error status")
	}
}

func TestDashboardReloadsAfterMidnight(t *testing.T) {
	s, clk, e := newTestStore(t)
	d := newDashboardModel(s, e)
	d, _ = d.update(d.loadData()())

	if _, cmd := d.update(tickMsg(clk.Now())); cmd != nil {
		t.Fatal("tick on the same day should not reload")
	}
	clk.Advance(24 * time.Hour)
	if _, cmd := d.update(tickMsg(clk.Now())); cmd == nil {
		t.Fatal("tick on a new day should reload")
	}
}

func TestDashboardBalanceShowsInconsistentDay(t *testing.T) {
	s, _, e := newTestStore(t)
	d := newDashboardModel(s, e)
	d.diffErr = &accounting.InconsistentError{Date: civil.Date{Year: 2024, Month: 3, Day: 1}}

	if out := d.renderBalance(); !strings.Contains(out, "2024-03-01") {
		t.Fatalf("balance should name the day to fix, got %q", out)
	}
	d.diffErr = errors.New("boom")
	if out := d.renderBalance(); !strings.Contains(out, "unavailable") {
		t.Fatalf("got %q", out)
	}
}

// ============================================================
// Work items model
// ============================================================

func TestItemsRefreshAndToggle(t *testing.T) {
	s, _, _ := newTestStore(t)
	addItem(t, s, "Dev")

	m := newItemsModel(s)
	m, _ = m.update(m.refresh()())
	if len(m.items) != 1 || !m.items[0].Visible {
		t.Fatal("expected one visible item")
	}

	_, cmd := m.update(runes("d"))
	if cmd == nil {
		t.Fatal("toggle should return a command")
	}
	m, _ = m.update(cmd())
	if m.items[0].Visible {
		t.Fatal("item should be hidden after toggle")
	}
	avail, _ := s.AvailableWork()
	if len(avail) != 0 {
		t.Fatal("hidden item should not be available")
	}
}

func TestItemsAdd(t *testing.T) {
	s, _, _ := newTestStore(t)
	m := newItemsModel(s)

	msg := m.addItem("Review")()
	data, ok := msg.(itemsDataMsg)
	if !ok || len(data.items) != 1 {
		t.Fatalf("expected one item, got %#v", msg)
	}

	msg = m.addItem("Review")()
	if _, ok := msg.(statusMsg); !ok {
		t.Fatal("duplicate add should report a status")
	}
}

func TestItemsNewFormActivates(t *testing.T) {
	s, _, _ := newTestStore(t)
	m := newItemsModel(s)
	m, _ = m.update(runes("n"))
	if !m.formActive {
		t.Fatal("n should open the form")
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.formActive {
		t.Fatal("esc should close the form")
	}
}

// ============================================================
// Ledger model
// ============================================================

func ledgerDays(n int) []accounting.DayTime {
	start := civil.Date{Year: 2024, Month: 3, Day: 1}
	days := make([]accounting.DayTime, n)
	for i := range days {
		days[i] = accounting.DayTime{Date: start.AddDays(i), Worked: 8 * time.Hour, Expected: 8 * time.Hour}
	}
	return days
}

func TestLedgerPaging(t *testing.T) {
	_, _, e := newTestStore(t)
	r := newLedgerModel(e)
	r.setSize(100, 40)
	r, _ = r.update(ledgerDataMsg{report: accounting.Report{Days: ledgerDays(10)}})

	if r.pageCount() != 2 {
		t.Fatalf("pageCount = %d, want 2", r.pageCount())
	}
	page := r.page()
	if len(page) != 7 || page[6].Date != (civil.Date{Year: 2024, Month: 3, Day: 10}) {
		t.Fatal("first page should hold the latest 7 days")
	}

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyLeft})
	page = r.page()
	if len(page) != 3 || page[0].Date != (civil.Date{Year: 2024, Month: 3, Day: 1}) {
		t.Fatal("second page should hold the oldest 3 days")
	}

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyLeft})
	if r.offset != 1 {
		t.Fatal("paging must stop at the oldest page")
	}
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyRight})
	if r.offset != 0 {
		t.Fatal("right should go back to the newest page")
	}
}

func TestLedgerViewFlagsInconsistentDay(t *testing.T) {
	_, _, e := newTestStore(t)
	r := newLedgerModel(e)
	r.setSize(200, 40)

	days := ledgerDays(2)
	days[1].Err = &accounting.InconsistentError{Date: days[1].Date}
	r, _ = r.update(ledgerDataMsg{report: accounting.Report{Days: days, DiffErr: days[1].Err}})

	out := r.view()
	if !strings.Contains(out, "no end of workday") {
		t.Fatal("ledger should flag the inconsistent day")
	}
	if !strings.Contains(out, "balance unavailable") {
		t.Fatal("ledger should not show a balance")
	}
}

func TestLedgerRefresh(t *testing.T) {
	s, clk, e := newTestStore(t)
	id := addItem(t, s, "Dev")
	s.SetCurrentWork(store.Working(id))
	clk.Advance(9 * time.Hour)
	s.SetCurrentWork(store.Idle)
	clk.Advance(24 * time.Hour)

	r := newLedgerModel(e)
	msg := r.refresh()()
	data, ok := msg.(ledgerDataMsg)
	if !ok {
		t.Fatalf("expected ledgerDataMsg, got %T", msg)
	}
	if len(data.report.Days) != 1 || data.report.Diff != time.Hour {
		t.Fatalf("unexpected report %#v", data.report)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSecsToHours(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"28800", "8"},
		{"27000", "7.5"},
		{"-5400", "-1.5"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := secsToHours(tt.in); got != tt.want {
			t.Errorf("secsToHours(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseHours(t *testing.T) {
	d, err := parseHours(" 7.5 ")
	if err != nil || d != 7*time.Hour+30*time.Minute {
		t.Fatalf("parseHours = %v, %v", d, err)
	}
	if _, err := parseHours("lots"); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidators(t *testing.T) {
	if validateHours(false)("-1") == nil {
		t.Fatal("negative quota should be rejected")
	}
	if validateHours(false)("25") == nil {
		t.Fatal("quota above 24h should be rejected")
	}
	if validateHours(true)("-3") != nil {
		t.Fatal("negative balance should be accepted")
	}
	if validateOptionalDate("") != nil || validateOptionalDate("2024-03-04") != nil {
		t.Fatal("empty and ISO dates are valid")
	}
	if validateOptionalDate("March 4") == nil {
		t.Fatal("non-ISO date should be rejected")
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		k, v, want string
	}{
		{store.KeyDefaultTime, "28800", "8.00 hours"},
		{store.KeyAccountStart, "-1800", "-0.50 hours"},
		{store.KeyShutdown, "2024-03-04T17:00:00Z", "2024-03-04 17:00:00"},
		{"other", "val", "val"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.k, tt.v, time.UTC); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.k, tt.v, got, tt.want)
		}
	}
}

func TestSettingsSave(t *testing.T) {
	s, _, _ := newTestStore(t)
	m := newSettingsModel(s)
	*m.defaultHours = "7"
	*m.accountHours = "-2.5"
	*m.overrideDate = "2024-03-08"
	*m.overrideHours = "4"

	if err := m.saveSettings(); err != nil {
		t.Fatal(err)
	}
	if d, _ := s.DefaultTime(); d != 7*time.Hour {
		t.Fatalf("default time = %v", d)
	}
	if d, _ := s.AccountStart(); d != -150*time.Minute {
		t.Fatalf("account start = %v", d)
	}
	d, ok, _ := s.ExpectedTime(civil.Date{Year: 2024, Month: 3, Day: 8})
	if !ok || d != 4*time.Hour {
		t.Fatalf("override = %v, %v", d, ok)
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	s, _, e := newTestStore(t)
	app := NewApp(s, e)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	s, _, e := newTestStore(t)
	app := NewApp(s, e)
	app.width = 120
	app.height = 40

	for v := range viewNames {
		app.activeView = viewState(v)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	s, _, e := newTestStore(t)
	var model tea.Model = NewApp(s, e)
	for i := 0; i < len(viewNames); i++ {
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	if model.(App).activeView != viewDashboard {
		t.Fatal("tab should wrap around to the dashboard")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	s, _, e := newTestStore(t)
	app := NewApp(s, e)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	s, _, e := newTestStore(t)
	app := NewApp(s, e)
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	s, _, e := newTestStore(t)
	var model tea.Model = NewApp(s, e)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model, _ = model.Update(workStartedMsg{item: "Dev"})

	footer := model.(App).renderFooter()
	if !strings.Contains(footer, "Working on Dev") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppExport(t *testing.T) {
	s, clk, e := newTestStore(t)
	id := addItem(t, s, "Dev")
	s.SetCurrentWork(store.Working(id))
	clk.Advance(time.Hour)
	s.SetCurrentWork(store.Idle)
	clk.Advance(24 * time.Hour)

	app := NewApp(s, e)
	app.exportDir = t.TempDir()

	for format, ext := range []string{"csv", "json"} {
		msg := app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("expected exportDoneMsg, got %#v", msg)
		}
		if filepath.Ext(done.path) != "."+ext {
			t.Fatalf("unexpected export path %q", done.path)
		}
		if !strings.Contains(filepath.Base(done.path), "2024-03-05") {
			t.Fatalf("export file should be named after today, got %q", done.path)
		}
		data, err := os.ReadFile(done.path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "2024-03-04") {
			t.Fatal("export should contain the closed day")
		}
		if ext == "json" && !strings.Contains(string(data), `"exported_at": "2024-03-05T10:00:00Z"`) {
			t.Fatalf("json export should be stamped with the store clock, got:\n%s", data)
		}
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test, just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"idleClock", func() string { return idleClockStyle.Render("test") }},
		{"workingClock", func() string { return workingClockStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"working", func() string { return workingStyle.Render("test") }},
		{"ahead", func() string { return aheadStyle.Render("test") }},
		{"behind", func() string { return behindStyle.Render("test") }},
		{"inconsistent", func() string { return inconsistentStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"itemName", func() string { return itemNameStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}

func TestStatusStylesAreDistinct(t *testing.T) {
	if workingClockStyle.GetForeground() == idleClockStyle.GetForeground() {
		t.Fatal("working and idle clocks should differ")
	}
	balances := map[string]lipgloss.TerminalColor{
		"ahead":        aheadStyle.GetForeground(),
		"behind":       behindStyle.GetForeground(),
		"inconsistent": inconsistentStyle.GetForeground(),
	}
	seen := map[lipgloss.TerminalColor]string{}
	for name, c := range balances {
		if other, ok := seen[c]; ok {
			t.Fatalf("%s and %s balances share a colour", name, other)
		}
		seen[c] = name
	}
}
