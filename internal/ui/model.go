package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/weather-terminal/internal/api"
	"github.com/ngmaloney/weather-terminal/internal/autocomplete"
	"github.com/ngmaloney/weather-terminal/internal/connectivity"
	"github.com/ngmaloney/weather-terminal/internal/location"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/scheduler"
	"github.com/ngmaloney/weather-terminal/internal/weather"
)

// Mode says where keyboard input goes
type Mode int

const (
	ModeBrowse Mode = iota // keys are commands
	ModeSearch             // keys edit the search box
)

// Deps are the collaborators the model drives
type Deps struct {
	Orchestrator *weather.Orchestrator
	Monitor      *connectivity.Monitor
	Scheduler    *scheduler.Scheduler
	Parser       *location.Parser
	Search       api.LocationClient
	Autocomplete []autocomplete.Option
}

// Model represents the application's state
type Model struct {
	mode   Mode
	width  int
	height int

	orch    *weather.Orchestrator
	session *weather.Session
	monitor *connectivity.Monitor
	sched   *scheduler.Scheduler
	parser  *location.Parser
	auto    *autocomplete.Controller

	searchInput textinput.Model
	spinner     spinner.Model

	view       models.ViewModel
	refreshing bool
	notice     string // one-time offline notice
	inputErr   string // problem with the submitted search text
	noMatches  string // query that found no candidates

	now func() time.Time
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "City, country code (e.g. Paris, FR)"
	ti.CharLimit = 100
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	session := deps.Orchestrator.Session()
	sched := deps.Scheduler
	opts := append([]autocomplete.Option{
		autocomplete.WithOnSelect(func(loc models.LocationRef) {
			if session.SetLocation(loc) {
				sched.Trigger(scheduler.CandidateSelected)
			} else {
				sched.Trigger(scheduler.Manual)
			}
		}),
	}, deps.Autocomplete...)

	return Model{
		mode:        ModeBrowse,
		orch:        deps.Orchestrator,
		session:     session,
		monitor:     deps.Monitor,
		sched:       sched,
		parser:      deps.Parser,
		auto:        autocomplete.New(deps.Search, opts...),
		searchInput: ti,
		spinner:     s,
		view:        models.Loading(),
		refreshing:  true,
		now:         time.Now,
	}
}

// Init probes connectivity, starts the first refresh and listens for triggers
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		probeConnectivity(m.monitor),
		refreshWeather(m.orch, m.orch.Dispatch()),
		waitForTrigger(m.sched.Events()),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case triggerMsg:
		m.refreshing = true
		return m, tea.Batch(
			refreshWeather(m.orch, m.orch.Dispatch()),
			waitForTrigger(m.sched.Events()),
		)

	case weatherLoadedMsg:
		if m.orch.Complete(msg.seq, msg.vm) {
			m.view = m.orch.View()
			m.refreshing = false
		}
		return m, nil

	case connectivityMsg:
		m.session.SetConnectivity(m.monitor.Status())
		switch {
		case msg.result.Notice != "":
			m.notice = msg.result.Notice
		case msg.result.Status == connectivity.Connected:
			m.notice = ""
		}
		return m, nil

	case autocomplete.CandidatesReadyMsg:
		m.noMatches = ""
		return m, nil

	case autocomplete.NoCandidatesMsg:
		m.noMatches = ""
		if m.mode == ModeSearch && len([]rune(msg.Query)) >= m.auto.MinLength() {
			m.noMatches = msg.Query
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode == ModeSearch {
			return m.handleSearchInput(msg)
		}
		return m.handleBrowseKey(msg)
	}

	// Cursor blinks belong to the search box; debounce ticks and search
	// results belong to the controller
	var cmds []tea.Cmd
	if m.mode == ModeSearch {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.auto.Update(msg))
	return m, tea.Batch(cmds...)
}

// handleBrowseKey handles command keys while the search box is closed
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r":
		m.sched.Trigger(scheduler.Manual)
		return m, nil

	case "u":
		units := m.session.Snapshot().Units.Toggle()
		if m.session.SetUnits(units) {
			m.sched.Trigger(scheduler.UnitsChanged)
		}
		return m, nil

	case "c":
		return m, probeConnectivity(m.monitor)

	case "s", "/":
		m.mode = ModeSearch
		m.inputErr = ""
		m.noMatches = ""
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// handleSearchInput handles keyboard input in search mode
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeSearch()
		return m, nil

	case tea.KeyUp:
		m.auto.Move(-1)
		return m, nil

	case tea.KeyDown:
		m.auto.Move(1)
		return m, nil

	case tea.KeyEnter:
		if m.auto.Open() {
			m.auto.Select()
			m.closeSearch()
			return m, nil
		}
		return m.submitSearch()
	}

	// Clear error when typing
	m.inputErr = ""

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		return m, tea.Batch(cmd, m.auto.OnInput(after))
	}
	return m, cmd
}

// submitSearch parses the typed text as "name[, region]"
func (m Model) submitSearch() (tea.Model, tea.Cmd) {
	loc, err := m.parser.Parse(m.searchInput.Value())
	if err != nil {
		if errors.Is(err, location.ErrNoInput) {
			m.inputErr = "Please enter a city name"
		} else {
			m.inputErr = err.Error()
		}
		return m, nil
	}

	if m.session.SetLocation(loc) {
		m.sched.Trigger(scheduler.LocationChanged)
	} else {
		m.sched.Trigger(scheduler.Manual)
	}
	m.closeSearch()
	return m, nil
}

func (m *Model) closeSearch() {
	m.mode = ModeBrowse
	m.auto.Dismiss()
	m.searchInput.Blur()
	m.searchInput.SetValue("")
	m.inputErr = ""
	m.noMatches = ""
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	state := m.session.Snapshot()
	var sections []string

	title := titleStyle.Render("Weather Terminal")
	sections = append(sections, title)
	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("⚠ "+m.notice))
	}
	sections = append(sections, "")

	if m.mode == ModeSearch {
		sections = append(sections, m.viewSearch())
	}

	switch m.view.State() {
	case models.ViewLoading:
		sections = append(sections, fmt.Sprintf("%s Loading weather for %s...", m.spinner.View(), state.Location))
	case models.ViewReady:
		snap, _ := m.view.Snapshot()
		fc, ok := m.view.Forecast()
		sections = append(sections, renderCurrent(snap), renderForecast(fc, ok, snap.Units))
	case models.ViewError:
		kind, msg, _ := m.view.Err()
		sections = append(sections, renderError(kind, msg))
	}

	sections = append(sections, "",
		renderStatus(state.Connectivity, state.Units, state.LastRefreshAt, m.now(), m.refreshing))

	help := "R: Refresh • U: Units • S: Search • C: Check connection • Q: Quit"
	if m.mode == ModeSearch {
		help = "↑/↓: Choose • Enter: Select • Esc: Cancel • Ctrl+C: Quit"
	}
	sections = append(sections, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewSearch renders the search box and candidate list
func (m Model) viewSearch() string {
	lines := []string{searchBoxStyle.Render(m.searchInput.View())}

	if m.inputErr != "" {
		lines = append(lines, errorStyle.Render("✗ "+m.inputErr))
	}

	if candidates := m.auto.Candidates(); len(candidates) > 0 {
		for i, c := range candidates {
			if i == m.auto.Cursor() {
				lines = append(lines, selectedStyle.Render("▸ "+c.Label()))
			} else {
				lines = append(lines, "  "+c.Label())
			}
		}
	} else if m.noMatches != "" {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("No matches for %q; press Enter to search anyway", m.noMatches)))
	}

	return strings.Join(lines, "\n") + "\n"
}
