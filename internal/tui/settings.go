package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetrax/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultHours  *string
	accountHours  *string
	overrideDate  *string
	overrideHours *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dh, ah, od, oh := "", "", "", ""
	return settingsModel{
		store:         s,
		defaultHours:  &dh,
		accountHours:  &ah,
		overrideDate:  &od,
		overrideHours: &oh,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.defaultHours = secsToHours(s.getVal(store.KeyDefaultTime, "28800"))
	*s.accountHours = secsToHours(s.getVal(store.KeyAccountStart, "0"))
	*s.overrideDate = ""
	*s.overrideHours = ""

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default daily quota (hours)").
				Description("Applies to working days that have no quota recorded yet.").
				Value(s.defaultHours).Validate(validateHours(false)),
			huh.NewInput().Title("Account start balance (hours)").
				Description("Balance carried over from before tracking began. May be negative.").
				Value(s.accountHours).Validate(validateHours(true)),
		).Title("Quota"),
		huh.NewGroup(
			huh.NewInput().Title("Override date (YYYY-MM-DD, empty to skip)").
				Value(s.overrideDate).Validate(validateOptionalDate),
			huh.NewInput().Title("Expected hours on that date").
				Value(s.overrideHours).Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return nil
					}
					return validateHours(false)(v)
				}),
		).Title("Expected time override"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg {
			return statusMsg{text: "Settings saved"}
		})
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	d, err := parseHours(*s.defaultHours)
	if err != nil {
		return err
	}
	if err := s.store.SetDefaultTime(d); err != nil {
		return err
	}
	a, err := parseHours(*s.accountHours)
	if err != nil {
		return err
	}
	if err := s.store.SetAccountStart(a); err != nil {
		return err
	}

	if strings.TrimSpace(*s.overrideDate) == "" || strings.TrimSpace(*s.overrideHours) == "" {
		return nil
	}
	date, err := civil.ParseDate(strings.TrimSpace(*s.overrideDate))
	if err != nil {
		return err
	}
	h, err := parseHours(*s.overrideHours)
	if err != nil {
		return err
	}
	return s.store.SetExpectedTime(date, h)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := itemNameStyle.Render(formatSettingValue(setting.Key, setting.Value, s.store.Location()))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string, loc *time.Location) string {
	switch k {
	case store.KeyDefaultTime, store.KeyAccountStart:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.2f hours", float64(secs)/3600)
		}
	case store.KeyShutdown:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.In(loc).Format("2006-01-02 15:04:05")
		}
	}
	return v
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.FormatFloat(float64(secs)/3600, 'f', -1, 64)
	}
	return s
}

func parseHours(s string) (time.Duration, error) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours %q", s)
	}
	return time.Duration(hours * float64(time.Hour)).Round(time.Second), nil
}

func validateHours(allowNegative bool) func(string) error {
	return func(s string) error {
		d, err := parseHours(s)
		if err != nil {
			return err
		}
		if d < 0 && !allowNegative {
			return fmt.Errorf("must not be negative")
		}
		if d > 24*time.Hour && !allowNegative {
			return fmt.Errorf("must not exceed 24 hours")
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := civil.ParseDate(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("expected YYYY-MM-DD")
	}
	return nil
}
