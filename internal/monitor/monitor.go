// Package monitor implements the full-screen live status view.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/liquidctl/coolerctl/internal/render"
)

// Poller fetches a fresh status snapshot from all devices.
type Poller func(ctx context.Context) ([]render.DeviceStatus, error)

// Recorder receives every successful snapshot, e.g. to append it to the
// history store. May be nil.
type Recorder func(at time.Time, statuses []render.DeviceStatus)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)
)

type tickMsg time.Time

type statusMsg struct {
	statuses []render.DeviceStatus
	err      error
}

// Model is the bubbletea model for the monitor view.
type Model struct {
	poll     Poller
	record   Recorder
	interval time.Duration

	tbl      table.Model
	err      error
	lastPoll time.Time
}

// New builds the monitor model.
func New(poll Poller, record Recorder, interval time.Duration) Model {
	columns := []table.Column{
		{Title: "Device", Width: 28},
		{Title: "Channel", Width: 14},
		{Title: "Reading", Width: 24},
		{Title: "Value", Width: 14},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(16),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Bold(false)
	tbl.SetStyles(styles)

	return Model{poll: poll, record: record, interval: interval, tbl: tbl}
}

func (m Model) Init() tea.Cmd {
	return m.pollCmd()
}

func (m Model) pollCmd() tea.Cmd {
	return func() tea.Msg {
		statuses, err := m.poll(context.Background())
		return statusMsg{statuses: statuses, err: err}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.tbl.SetHeight(msg.Height - 4)
	case tickMsg:
		return m, m.pollCmd()
	case statusMsg:
		m.err = msg.err
		m.lastPoll = time.Now()
		if msg.err == nil {
			m.tbl.SetRows(toRows(msg.statuses))
			if m.record != nil {
				m.record(m.lastPoll, msg.statuses)
			}
		}
		return m, m.tickCmd()
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	s := titleStyle.Render("coolerctl monitor") + "\n"
	s += m.tbl.View() + "\n"
	if m.err != nil {
		s += errorStyle.Render("poll failed: "+m.err.Error()) + "\n"
	}
	if !m.lastPoll.IsZero() {
		s += footerStyle.Render(fmt.Sprintf("last poll %s · q to quit", m.lastPoll.Format("15:04:05")))
	} else {
		s += footerStyle.Render("polling · q to quit")
	}
	return s
}

func toRows(statuses []render.DeviceStatus) []table.Row {
	var rows []table.Row
	for _, st := range statuses {
		for _, r := range st.Readings {
			rows = append(rows, table.Row{st.Device, r.Channel, r.Label, r.String()})
		}
	}
	return rows
}

// Run starts the program and blocks until the user quits.
func Run(poll Poller, record Recorder, interval time.Duration) error {
	p := tea.NewProgram(New(poll, record, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
