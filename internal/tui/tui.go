// Package tui is a terminal browser for content ideas.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"blogforge/internal/core"
)

// SaveFunc persists the selected idea. A nil SaveFunc disables saving.
type SaveFunc func(idea core.ContentIdea) error

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	savedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle   = lipgloss.NewStyle().Faint(true)
)

// Model holds the state of the idea browser.
type Model struct {
	ideas       []core.ContentIdea
	saved       map[int]bool
	save        SaveFunc
	selectedIdx int
	width       int
	height      int
	status      string
	quitting    bool
}

// NewModel returns a browser over ideas.
func NewModel(ideas []core.ContentIdea, save SaveFunc) Model {
	return Model{
		ideas: ideas,
		saved: make(map[int]bool),
		save:  save,
		width: 100,
	}
}

// Selected returns the index of the highlighted idea.
func (m Model) Selected() int { return m.selectedIdx }

// Init is the first command that will be run. We don't need any for now.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.ideas)-1 {
				m.selectedIdx++
			}
		case "s":
			m = m.saveSelected()
		}
	}

	return m, nil
}

func (m Model) saveSelected() Model {
	if m.save == nil || len(m.ideas) == 0 {
		return m
	}
	if m.saved[m.selectedIdx] {
		m.status = "Already saved"
		return m
	}
	if err := m.save(m.ideas[m.selectedIdx]); err != nil {
		m.status = fmt.Sprintf("Save failed: %v", err)
		return m
	}
	m.saved[m.selectedIdx] = true
	m.status = fmt.Sprintf("Saved %q", m.ideas[m.selectedIdx].Title)
	return m
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	paneWidth := m.width/2 - 5
	if paneWidth < 20 {
		paneWidth = 20
	}
	docStyle := lipgloss.NewStyle().Margin(1, 2)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)

	var list strings.Builder
	list.WriteString(titleStyle.Render(fmt.Sprintf("Content Ideas (%d)", len(m.ideas))) + "\n\n")
	if len(m.ideas) == 0 {
		list.WriteString("No ideas loaded.")
	}
	for i, idea := range m.ideas {
		line := "  " + idea.Title
		if i == m.selectedIdx {
			line = selectedStyle.Render("> " + idea.Title)
		}
		if m.saved[i] {
			line += savedStyle.Render(" ✓")
		}
		list.WriteString(line + "\n")
	}

	detail := "Nothing selected."
	if m.selectedIdx < len(m.ideas) {
		detail = RenderIdea(m.ideas[m.selectedIdx])
	}

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list.String()), detailStyle.Render(detail))

	help := "[↑/k] Up | [↓/j] Down | [q] Quit"
	if m.save != nil {
		help = "[↑/k] Up | [↓/j] Down | [s] Save | [q] Quit"
	}
	footer := "\n\n" + help
	if m.status != "" {
		footer += "\n" + statusStyle.Render(m.status)
	}

	return docStyle.Render(mainContent + footer)
}

// RenderIdea formats one idea as labelled lines.
func RenderIdea(idea core.ContentIdea) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(idea.Title) + "\n\n")
	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label+": ") + value + "\n")
	}
	field("Description", idea.Description)
	field("Keywords", strings.Join(idea.Keywords, ", "))
	field("Audience", idea.Audience)
	field("Tone", idea.Tone)
	field("Length", idea.Length)
	field("Search intent", idea.SearchIntent)
	field("Category", idea.SuggestedCategory)
	field("Trend insights", idea.TrendInsights)
	return strings.TrimRight(b.String(), "\n")
}

// Run starts the browser and blocks until the user quits.
func Run(ideas []core.ContentIdea, save SaveFunc) error {
	p := tea.NewProgram(NewModel(ideas, save), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
