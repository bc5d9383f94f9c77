// Package ui renders live pipeline progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"plume/internal/plugin"
)

// ChannelSink adapts a channel to the pipeline's progress interface, so
// the compilation goroutine can feed the Bubble Tea model. Close the
// channel when the pipeline returns.
type ChannelSink chan plugin.Event

func (c ChannelSink) OnEvent(ev plugin.Event) {
	c <- ev
}

type progressModel struct {
	title   string
	events  <-chan plugin.Event
	spinner spinner.Model
	prog    progress.Model
	items   []pluginItem
	index   map[string]int
	width   int
	done    bool
}

type pluginItem struct {
	name    string
	status  plugin.Status
	elapsed string
}

type eventMsg plugin.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the plugin
// pipeline: one row per plugin in execution order.
func NewProgressModel(title string, plugins []string, events <-chan plugin.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]pluginItem, 0, len(plugins))
	index := make(map[string]int, len(plugins))
	for i, name := range plugins {
		items = append(items, pluginItem{name: name, status: plugin.StatusQueued})
		index[name] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(plugin.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 16
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.name, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s", statusStyled, name))
		if item.elapsed != "" {
			b.WriteString("  " + item.elapsed)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev plugin.Event) tea.Cmd {
	idx, ok := m.index[ev.Plugin]
	if !ok {
		return nil
	}
	m.items[idx].status = ev.Status
	if ev.Elapsed > 0 {
		m.items[idx].elapsed = ev.Elapsed.Round(100 * time.Microsecond).String()
	}

	finished := 0.0
	for _, item := range m.items {
		switch item.status {
		case plugin.StatusDone, plugin.StatusFailed, plugin.StatusSkipped:
			finished += 1.0
		case plugin.StatusWorking:
			finished += 0.5
		}
	}
	return m.prog.SetPercent(finished / float64(len(m.items)))
}

func styleStatus(status plugin.Status) lipgloss.Style {
	switch status {
	case plugin.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case plugin.StatusFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case plugin.StatusSkipped:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case plugin.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
