package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/timesheet/internal/billing"
	"github.com/manav03panchal/timesheet/internal/model"
	"github.com/manav03panchal/timesheet/internal/parser"
	"github.com/manav03panchal/timesheet/internal/timer"
)

// EntrySource lists the entries of a day.
type EntrySource interface {
	Today() time.Time
	Day(date time.Time) ([]*model.TimeEntry, error)
}

// TimerControl starts and stops entries.
type TimerControl interface {
	Start(key string) (*timer.StartResult, error)
	Stop(key string) (*model.TimeEntry, error)
	CurrentElapsed(key string) (int64, error)
}

// tickMsg is sent when the timer ticks.
type tickMsg time.Time

// refreshMsg is sent when data needs to be refreshed.
type refreshMsg struct{}

// KeyMap holds the dashboard bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start/stop"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DashboardModel is the bubbletea model for the dashboard: today's entries
// in a table with the running one highlighted above it.
type DashboardModel struct {
	entries []*model.TimeEntry
	elapsed map[string]int64
	running *model.TimeEntry

	source EntrySource
	timers TimerControl

	table table.Model
	keys  KeyMap
	help  help.Model

	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	refreshInterval time.Duration
	decimalMark     string
	now             func() time.Time
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Source          EntrySource
	Timers          TimerControl
	RefreshInterval time.Duration
	DecimalMark     string
	Now             func() time.Time
}

var dashboardColumns = []table.Column{
	{Title: "ID", Width: 8},
	{Title: "Client", Width: 14},
	{Title: "Project", Width: 10},
	{Title: "Task", Width: 8},
	{Title: "Description", Width: 28},
	{Title: "Duration", Width: 9},
	{Title: "Hours", Width: 5},
	{Title: "", Width: 2},
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	t := table.New(
		table.WithColumns(dashboardColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(TableStyles())

	return &DashboardModel{
		source:          config.Source,
		timers:          config.Timers,
		table:           t,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		elapsed:         make(map[string]int64),
		refreshInterval: config.RefreshInterval,
		decimalMark:     config.DecimalMark,
		now:             config.Now,
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.refreshCmd(),
	)
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 16; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tickMsg:
		if !m.messageExp.IsZero() && m.now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.loadData()
		return m, m.tickCmd()

	case refreshMsg:
		m.loadData()
		return m, nil
	}

	return m, nil
}

func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loadData()
		m.setMessage("Refreshed", time.Second)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the entry under the cursor, or nil.
func (m *DashboardModel) Selected() *model.TimeEntry {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return nil
	}
	return m.entries[i]
}

// toggleSelected stops the selected entry when it runs and starts it
// otherwise. Starting stops whatever else was running.
func (m *DashboardModel) toggleSelected() {
	e := m.Selected()
	if e == nil {
		m.setMessage("No entry selected", 2*time.Second)
		return
	}

	if e.Running {
		if _, err := m.timers.Stop(e.Key); err != nil {
			m.err = err
			return
		}
		m.setMessage("Stopped "+e.ShortID(), 2*time.Second)
	} else {
		res, err := m.timers.Start(e.Key)
		if err != nil {
			m.err = err
			return
		}
		msg := "Started " + e.ShortID()
		if n := len(res.Stopped); n > 0 {
			msg += fmt.Sprintf(" (stopped %d)", n)
		}
		m.setMessage(msg, 2*time.Second)
	}
	m.loadData()
}

// loadData reloads today's entries and their elapsed times.
func (m *DashboardModel) loadData() {
	entries, err := m.source.Day(m.source.Today())
	if err != nil {
		m.err = err
		return
	}

	m.entries = entries
	m.running = nil
	m.elapsed = make(map[string]int64, len(entries))
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		secs := e.DurationSeconds
		if e.Running {
			if secs, err = m.timers.CurrentElapsed(e.Key); err != nil {
				m.err = err
				return
			}
			m.running = e
		}
		m.elapsed[e.Key] = secs

		mark := ""
		if e.Running {
			mark = "●"
		}
		rows = append(rows, table.Row{
			e.ShortID(),
			e.Client,
			e.ProjectCode,
			e.TaskCode,
			e.Description,
			parser.FormatDuration(secs),
			billing.FormatHours(billing.ConvertBillingHours(secs), m.decimalMark),
			mark,
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
	m.err = nil
}

// TotalSeconds returns today's total as last loaded.
func (m *DashboardModel) TotalSeconds() int64 {
	var total int64
	for _, s := range m.elapsed {
		total += s
	}
	return total
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	var runningElapsed int64
	if m.running != nil {
		runningElapsed = m.elapsed[m.running.Key]
	}
	status := NewStatusComponent(m.running, runningElapsed, m.width)
	status.DecimalMark = m.decimalMark
	sections = append(sections, status.View())

	if len(m.entries) == 0 {
		sections = append(sections, StyleInactive.Render("No entries today. Use 'timesheet add' to create one."))
	} else {
		sections = append(sections, StyleTableBox.Render(m.table.View()))
	}

	total := m.TotalSeconds()
	sections = append(sections, StyleSubtitle.Render(fmt.Sprintf("Today: %s  (%s h)",
		parser.FormatDuration(total), billing.FormatHours(billing.ConvertBillingHours(total), m.decimalMark))))

	sections = append(sections, StyleHelp.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *DashboardModel) renderHeader() string {
	title := StyleTitle.Render("Timesheet")
	now := StyleSubtitle.Render(m.now().Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", now) + "\n"
}

func (m *DashboardModel) setMessage(msg string, d time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(d)
}

func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *DashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{}
	}
}

// Run starts the dashboard on the alternate screen.
func Run(config DashboardConfig) error {
	p := tea.NewProgram(NewDashboardModel(config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
