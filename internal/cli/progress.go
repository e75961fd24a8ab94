package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SectionUpdate reports one section (a named step of extract or build,
// such as "parse header" or "assemble image") finishing, the way the
// teacher's scraper reports one game entry starting or finishing —
// narrowed here to per-section instead of per-entry granularity, since
// a ROM has a handful of sections rather than thousands of lookups.
type SectionUpdate struct {
	Name string
	Err  error
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// progressModel is the bubbletea model driving extract/build's
// terminal output: a spinner on the in-progress section, a scrollback
// line per finished section.
type progressModel struct {
	sections  []string
	current   int
	startTime time.Time
	spinner   spinner.Model
	updatesCh <-chan SectionUpdate
	quitting  bool
	failed    error
}

func newProgressModel(sections []string, updatesCh <-chan SectionUpdate) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return progressModel{
		sections:  sections,
		startTime: time.Now(),
		spinner:   s,
		updatesCh: updatesCh,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForSectionUpdate(m.updatesCh))
}

type sectionDoneMsg struct{}

func waitForSectionUpdate(ch <-chan SectionUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return sectionDoneMsg{}
		}
		return update
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SectionUpdate:
		name := m.sections[m.current]
		var line string
		if msg.Err != nil {
			m.failed = msg.Err
			line = fmt.Sprintf(" %s %-20s %s", errorStyle.Render("x"), name, errorStyle.Render(msg.Err.Error()))
			return m, tea.Sequence(tea.Println(line), tea.Quit)
		}
		line = fmt.Sprintf(" %s %-20s %s", doneStyle.Render("v"), name, dimStyle.Render(time.Since(m.startTime).Round(time.Millisecond).String()))
		m.current++
		if m.current >= len(m.sections) {
			return m, tea.Sequence(tea.Println(line), tea.Quit)
		}
		return m, tea.Sequence(tea.Println(line), waitForSectionUpdate(m.updatesCh))

	case sectionDoneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.quitting || m.current >= len(m.sections) {
		return ""
	}
	return fmt.Sprintf(" %s %s\n", m.spinner.View(), m.sections[m.current])
}

// runWithProgress drives work against sections in order, printing a
// bubbletea progress display while it runs. fn is called once per
// section name, in order; it should do that section's work and
// return any error.
func runWithProgress(sections []string, fn func(name string) error) error {
	updatesCh := make(chan SectionUpdate)
	model := newProgressModel(sections, updatesCh)

	errCh := make(chan error, 1)
	go func() {
		defer close(updatesCh)
		for _, name := range sections {
			err := fn(name)
			updatesCh <- SectionUpdate{Name: name, Err: err}
			if err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("progress display: %w", err)
	}
	return <-errCh
}
