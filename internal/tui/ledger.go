package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetrax/internal/accounting"
)

const ledgerPageSize = 7

type ledgerModel struct {
	engine *accounting.Engine
	width  int
	height int

	days    []accounting.DayTime
	diff    time.Duration
	diffErr error
	offset  int // pages back from the most recent closed day

	chart barchart.Model
}

func newLedgerModel(e *accounting.Engine) ledgerModel {
	return ledgerModel{
		engine: e,
		chart:  barchart.New(60, 12),
	}
}

func (r *ledgerModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type ledgerDataMsg struct {
	report accounting.Report
}

func (r ledgerModel) refresh() tea.Cmd {
	return func() tea.Msg {
		report, err := r.engine.Report()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return ledgerDataMsg{report: report}
	}
}

// page returns the slice of days shown at the current offset.
func (r ledgerModel) page() []accounting.DayTime {
	end := len(r.days) - r.offset*ledgerPageSize
	if end <= 0 {
		return nil
	}
	start := max(0, end-ledgerPageSize)
	return r.days[start:end]
}

func (r ledgerModel) pageCount() int {
	return (len(r.days) + ledgerPageSize - 1) / ledgerPageSize
}

func (r ledgerModel) update(msg tea.Msg) (ledgerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ledgerDataMsg:
		r.days = msg.report.Days
		r.diff = msg.report.Diff
		r.diffErr = msg.report.DiffErr
		if r.offset >= r.pageCount() {
			r.offset = max(0, r.pageCount()-1)
		}
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if r.offset < r.pageCount()-1 {
				r.offset++
				r.buildChart()
			}
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
				r.buildChart()
			}
		}
	}
	return r, nil
}

// buildChart draws one bar per day. The part of the quota that was met is
// drawn in the working colour, overtime on top and any shortfall in amber,
// so every bar is as tall as the larger of worked and expected.
func (r *ledgerModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range r.page() {
		label := d.Date.In(time.UTC).Format("Mon 02")
		if d.Err != nil {
			bars = append(bars, barchart.BarData{
				Label:  label + "!",
				Values: []barchart.BarValue{{Name: "inconsistent", Value: 0, Style: lipgloss.NewStyle().Foreground(colorInconsistent)}},
			})
			continue
		}

		met := min(d.Worked, d.Expected)
		values := []barchart.BarValue{
			{Name: "worked", Value: met.Hours(), Style: lipgloss.NewStyle().Foreground(colorWorking)},
		}
		if d.Worked > d.Expected {
			values = append(values, barchart.BarValue{
				Name: "overtime", Value: (d.Worked - d.Expected).Hours(), Style: lipgloss.NewStyle().Foreground(colorOvertime),
			})
		}
		if d.Expected > d.Worked {
			values = append(values, barchart.BarValue{
				Name: "missing", Value: (d.Expected - d.Worked).Hours(), Style: lipgloss.NewStyle().Foreground(colorMissing),
			})
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r ledgerModel) view() string {
	w := r.width - 4

	page := r.page()
	rangeLabel := "no closed days yet"
	if len(page) > 0 {
		rangeLabel = fmt.Sprintf("%s to %s", page[0].Date, page[len(page)-1].Date)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Ledger"), "  ", mutedStyle.Render(rangeLabel), "  ", r.renderBalance(),
	)

	legend := "  " + strings.Join([]string{
		lipgloss.NewStyle().Foreground(colorWorking).Render("●") + " worked",
		lipgloss.NewStyle().Foreground(colorOvertime).Render("●") + " overtime",
		lipgloss.NewStyle().Foreground(colorMissing).Render("●") + " missing",
	}, "  ")

	nav := mutedStyle.Render("  ←/→: older/newer  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderTable(w, page), "", nav,
		),
	)
}

func (r ledgerModel) renderBalance() string {
	var ie *accounting.InconsistentError
	switch {
	case errors.As(r.diffErr, &ie):
		return inconsistentStyle.Render(fmt.Sprintf("balance unavailable: %s has no end of workday", ie.Date))
	case r.diffErr != nil:
		return inconsistentStyle.Render("balance unavailable: " + r.diffErr.Error())
	case r.diff < 0:
		return behindStyle.Render("balance " + formatDiff(r.diff))
	default:
		return aheadStyle.Render("balance " + formatDiff(r.diff))
	}
}

func (r ledgerModel) renderTable(w int, page []accounting.DayTime) string {
	if len(page) == 0 {
		return mutedStyle.Render("  No closed days to show")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-14s %10s %10s %10s  %s", "Date", "Worked", "Expected", "Diff", "Status"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 60))))

	for _, d := range page {
		date := d.Date.In(time.UTC).Format("Mon 2006-01-02")
		if d.Err != nil {
			status := "error"
			if d.Inconsistent() {
				status = "no end of workday"
			}
			rows = append(rows, inconsistentStyle.Render(fmt.Sprintf("  %-14s %10s %10s %10s  %s",
				date, "-", formatHours(d.Expected), "-", status)))
			continue
		}
		diff := formatDiff(d.Diff())
		diffStyle := aheadStyle
		if d.Diff() < 0 {
			diffStyle = behindStyle
		}
		rows = append(rows, fmt.Sprintf("  %-14s %10s %10s %s  %s",
			date, formatHours(d.Worked), formatHours(d.Expected),
			diffStyle.Render(fmt.Sprintf("%10s", diff)), "ok"))
	}

	if r.pageCount() > 1 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  page %d of %d", r.pageCount()-r.offset, r.pageCount())))
	}

	return strings.Join(rows, "\n")
}
