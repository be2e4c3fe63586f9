package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/weather-terminal/internal/connectivity"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/scheduler"
	"github.com/ngmaloney/weather-terminal/internal/weather"
)

// Message types for async operations

// triggerMsg is sent when the scheduler asks for a refresh
type triggerMsg struct {
	event scheduler.Event
}

// weatherLoadedMsg is sent when a refresh cycle finishes
type weatherLoadedMsg struct {
	seq uint64
	vm  models.ViewModel
}

// connectivityMsg is sent when a health probe finishes
type connectivityMsg struct {
	result connectivity.Result
}

// waitForTrigger blocks on the scheduler channel. Re-issue it after each
// triggerMsg to keep listening.
func waitForTrigger(events <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return triggerMsg{event: ev}
	}
}

// refreshWeather runs one orchestration cycle for the dispatched ticket
func refreshWeather(o *weather.Orchestrator, t weather.Ticket) tea.Cmd {
	return func() tea.Msg {
		vm := o.Refresh(context.Background(), t.State.Location, t.State.Units)
		return weatherLoadedMsg{seq: t.Seq, vm: vm}
	}
}

// probeConnectivity checks the health endpoint in the background
func probeConnectivity(m *connectivity.Monitor) tea.Cmd {
	return func() tea.Msg {
		return connectivityMsg{result: m.Check(context.Background())}
	}
}
