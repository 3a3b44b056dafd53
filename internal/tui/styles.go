package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Status colours follow the work state and the ledger balance.
var (
	colorBrand        = lipgloss.Color("#5FB3B3")
	colorWorking      = lipgloss.Color("#8FBC5A")
	colorIdle         = lipgloss.Color("#7C818C")
	colorOvertime     = lipgloss.Color("#A3BE8C")
	colorMissing      = lipgloss.Color("#E5A50A")
	colorBehind       = lipgloss.Color("#D08770")
	colorInconsistent = lipgloss.Color("#BF616A")
	colorFg           = lipgloss.Color("#D8DEE9")
	colorFrame        = lipgloss.Color("#3B4252")
	colorItem         = lipgloss.Color("#88C0D0")
)

var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorIdle).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFrame).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBrand).
				Padding(1, 2)

	// Session clock, by work state.
	idleClockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorIdle).
			Align(lipgloss.Center)

	workingClockStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWorking).
				Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	workingStyle = lipgloss.NewStyle().
			Foreground(colorWorking)

	// Balance: ahead of or behind the quota, or not computable.
	aheadStyle = lipgloss.NewStyle().
			Foreground(colorOvertime)

	behindStyle = lipgloss.NewStyle().
			Foreground(colorBehind)

	inconsistentStyle = lipgloss.NewStyle().
				Foreground(colorInconsistent).
				Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorIdle)

	itemNameStyle = lipgloss.NewStyle().
			Foreground(colorItem)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorIdle).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorBrand).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)
