package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetrax/internal/store"
)

type itemsModel struct {
	store  *store.Store
	width  int
	height int

	items  []store.WorkItem
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName *string
}

func newItemsModel(s *store.Store) itemsModel {
	name := ""
	return itemsModel{
		store:    s,
		formName: &name,
	}
}

func (p *itemsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type itemsDataMsg struct {
	items []store.WorkItem
}

func (p itemsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		items, err := p.store.WorkItems()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return itemsDataMsg{items: items}
	}
}

func (p itemsModel) update(msg tea.Msg) (itemsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case itemsDataMsg:
		p.items = msg.items
		if p.cursor >= len(p.items) {
			p.cursor = max(0, len(p.items)-1)
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.items)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.New):
			return p.showNewItemForm()
		case key.Matches(msg, keys.Toggle):
			if len(p.items) > 0 {
				return p, p.toggleVisible(p.items[p.cursor])
			}
		}
	}
	return p, nil
}

func (p itemsModel) toggleVisible(it store.WorkItem) tea.Cmd {
	return func() tea.Msg {
		if err := p.store.SetWorkItemVisible(it.ID, !it.Visible); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		items, err := p.store.WorkItems()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return itemsDataMsg{items: items}
	}
}

func (p itemsModel) showNewItemForm() (itemsModel, tea.Cmd) {
	*p.formName = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Work Item Name").
				Value(p.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p itemsModel) updateForm(msg tea.Msg) (itemsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		name := strings.TrimSpace(*p.formName)
		return p, p.addItem(name)
	}

	return p, cmd
}

func (p itemsModel) addItem(name string) tea.Cmd {
	return func() tea.Msg {
		created, err := p.store.AddWorkItem(name)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if !created {
			return statusMsg{text: fmt.Sprintf("%q already exists", name)}
		}
		items, err := p.store.WorkItems()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return itemsDataMsg{items: items}
	}
}

func (p itemsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Work Item")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Work Items")

	if len(p.items) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No work items yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-5s %-28s %s", "ID", "Name", "Status"))
	rows = append(rows, header)

	for i, it := range p.items {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		status := workingStyle.Render("visible")
		if !it.Visible {
			status = mutedStyle.Render("hidden")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-5d %-28s", cursor, it.ID, it.Name))+" "+status)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: hide/show"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
