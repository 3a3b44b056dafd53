package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetrax/internal/accounting"
	"github.com/sadopc/timetrax/internal/store"
)

type dashboardModel struct {
	store   *store.Store
	engine  *accounting.Engine
	tracker trackerModel
	width   int
	height  int

	date      civil.Date
	events    []store.Event
	names     map[int64]string
	available []store.WorkItem
	diff      time.Duration
	diffErr   error

	// Work item picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(s *store.Store, e *accounting.Engine) dashboardModel {
	return dashboardModel{
		store:   s,
		engine:  e,
		tracker: newTrackerModel(s),
		names:   map[int64]string{},
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.tracker.running() }
func (d dashboardModel) elapsed() time.Duration {
	return d.tracker.currentElapsed()
}

type dashboardDataMsg struct {
	today     accounting.Today
	names     map[int64]string
	available []store.WorkItem
	diff      time.Duration
	diffErr   error
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		today, err := d.engine.Today()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		all, err := d.store.WorkItems()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		names := make(map[int64]string, len(all))
		for _, it := range all {
			names[it.ID] = it.Name
		}
		available, err := d.store.AvailableWork()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		diff, diffErr := d.engine.TimeDiff()

		return dashboardDataMsg{
			today:     today,
			names:     names,
			available: available,
			diff:      diff,
			diffErr:   diffErr,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.date = msg.today.Date
		d.events = msg.today.Events
		d.names = msg.names
		d.available = msg.available
		d.diff = msg.diff
		d.diffErr = msg.diffErr
		d.tracker.sync(d.events, d.names)
		if d.pickerCursor >= len(d.available) {
			d.pickerCursor = 0
		}
		return d, nil

	case tickMsg:
		// Past midnight the running day and the ledger both move on.
		if d.date != (civil.Date{}) && d.store.Today() != d.date {
			return d, d.loadData()
		}
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if len(d.available) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No work items yet. Press 2 to go to Work Items and add one.", isError: true}
				}
			}
			if len(d.available) == 1 {
				return d.startWork(d.available[0].ID, d.available[0].Name)
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopWork()
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.pickerCursor > 0 {
				d.pickerCursor--
			}
		case key.Matches(msg, keys.Down):
			if d.pickerCursor < len(d.available)-1 {
				d.pickerCursor++
			}
		case key.Matches(msg, keys.Enter):
			it := d.available[d.pickerCursor]
			d.picking = false
			return d.startWork(it.ID, it.Name)
		case key.Matches(msg, keys.Back):
			d.picking = false
		}
	}
	return d, nil
}

func (d dashboardModel) startWork(id int64, name string) (dashboardModel, tea.Cmd) {
	if err := d.tracker.start(id, name); err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return workStartedMsg{item: name} },
	)
}

func (d dashboardModel) stopWork() (dashboardModel, tea.Cmd) {
	stopped, err := d.tracker.stop()
	if err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if !stopped {
		return d, nil
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return workStoppedMsg{} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	trackerPanel := d.renderTrackerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderItemPicker(contentWidth)
	} else {
		bottomPanel = d.renderEventsPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, trackerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTrackerPanel(w int) string {
	if d.tracker.running() {
		timeDisplay := workingClockStyle.Width(w - 6).Render(formatDuration(d.tracker.currentElapsed()))
		indicator := workingStyle.Render("●  WORKING")
		itemLine := itemNameStyle.Render(d.tracker.itemName)

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			itemLine,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := idleClockStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  IDLE")
	hint := mutedStyle.Render("Press s to start working")

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	now := d.store.Now()
	worked := accounting.WorkedSoFar(d.events, now)

	title := titleStyle.Render("Today")
	total := itemNameStyle.Render(formatDuration(worked))
	header := fmt.Sprintf("%s  %s  %s", title, total, d.renderBalance())

	totals := accounting.ItemTotals(d.events, now)
	if len(totals) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing tracked today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	seen := make(map[int64]bool)
	for _, ev := range d.events {
		id, ok := ev.State.Item()
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, fmt.Sprintf("  %s %-20s %s",
			itemNameStyle.Render("●"),
			d.itemName(id),
			formatDuration(totals[id]),
		))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderBalance() string {
	var ie *accounting.InconsistentError
	switch {
	case errors.As(d.diffErr, &ie):
		return inconsistentStyle.Render(fmt.Sprintf("balance: fix %s (no end of workday)", ie.Date))
	case d.diffErr != nil:
		return inconsistentStyle.Render("balance unavailable")
	case d.diff < 0:
		return behindStyle.Render("balance " + formatDiff(d.diff))
	default:
		return aheadStyle.Render("balance " + formatDiff(d.diff))
	}
}

func (d dashboardModel) renderEventsPanel(w int) string {
	title := titleStyle.Render("Today's Events")
	if len(d.events) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No events yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	loc := d.store.Location()
	var rows []string
	rows = append(rows, title)
	for _, ev := range d.events {
		at := ev.Start.In(loc).Format("15:04:05")
		if id, ok := ev.State.Item(); ok {
			rows = append(rows, fmt.Sprintf("  %s %s  %s", workingStyle.Render("●"), at, d.itemName(id)))
		} else {
			rows = append(rows, fmt.Sprintf("  %s %s  %s", mutedStyle.Render("■"), at, mutedStyle.Render("idle")))
		}
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderItemPicker(w int) string {
	title := titleStyle.Render("Select Work Item")

	var rows []string
	rows = append(rows, title)
	for i, it := range d.available {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := ""
		if cur, ok := d.tracker.state.Item(); ok && cur == it.ID {
			marker = workingStyle.Render(" ●")
		}
		rows = append(rows, style.Render(cursor+it.Name)+marker)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) itemName(id int64) string {
	if name, ok := d.names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
