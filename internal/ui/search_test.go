package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/scheduler"
)

func typeText(m Model, text string) (Model, []tea.Cmd) {
	var cmds []tea.Cmd
	for _, r := range text {
		var cmd tea.Cmd
		m, cmd = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		cmds = append(cmds, cmd)
	}
	return m, cmds
}

func openSearch(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(m, key("s"))
	if m.mode != ModeSearch {
		t.Fatalf("mode = %v, want ModeSearch", m.mode)
	}
	return m
}

// TestSearch_SubmitParsesLocation tests free-text submission
func TestSearch_SubmitParsesLocation(t *testing.T) {
	tests := []struct {
		input string
		want  models.LocationRef
	}{
		{"Paris, FR", models.LocationRef{Name: "Paris", Region: "FR"}},
		{"Delhi", models.LocationRef{Name: "Delhi", Region: "IN"}},
		{"Berlin", models.LocationRef{Name: "Berlin", Region: "UK"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := openSearch(t, newTestModel(t, &fakeService{}))
			m, _ = typeText(m, tt.input)
			m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

			if got := m.session.Snapshot().Location; got != tt.want {
				t.Errorf("location = %+v, want %+v", got, tt.want)
			}
			if m.mode != ModeBrowse {
				t.Error("submitting should close the search box")
			}
			if ev, ok := pendingTrigger(t, m); !ok || ev.Reason != scheduler.LocationChanged {
				t.Errorf("trigger = %v, %v, want LocationChanged", ev.Reason, ok)
			}
		})
	}
}

// TestSearch_EmptySubmission tests the no-input error and its recovery
func TestSearch_EmptySubmission(t *testing.T) {
	m := openSearch(t, newTestModel(t, &fakeService{}))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.inputErr == "" {
		t.Fatal("Expected an error for empty submission")
	}
	if !strings.Contains(m.View(), "Please enter a city name") {
		t.Error("View() should show the input error")
	}
	if _, ok := pendingTrigger(t, m); ok {
		t.Error("empty submission must not trigger a refresh")
	}

	// Typing clears the error
	m, _ = typeText(m, "O")
	if m.inputErr != "" {
		t.Error("Error should be cleared when user modifies search")
	}
}

// TestSearch_CandidateSelection tests the debounce, list and selection path
func TestSearch_CandidateSelection(t *testing.T) {
	svc := &fakeService{candidates: []models.Candidate{
		{Name: "Portland", Region: "US", State: "Oregon"},
		{Name: "Portland", Region: "US", State: "Maine"},
	}}
	m := openSearch(t, newTestModel(t, svc))

	m, cmds := typeText(m, "Port")
	last := cmds[len(cmds)-1]

	// Drive the last edit's debounce through to the controller's result
	for _, msg := range collect(last) {
		var cmd tea.Cmd
		m, cmd = update(m, msg)
		for _, follow := range collect(cmd) {
			var next tea.Cmd
			m, next = update(m, follow)
			for _, final := range collect(next) {
				m, _ = update(m, final)
			}
		}
	}

	if !m.auto.Open() {
		t.Fatal("candidate list should be open")
	}
	if !strings.Contains(m.View(), "Portland, Oregon, US") {
		t.Errorf("View() should list candidates, got:\n%s", m.View())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.session.Snapshot().Location; got.Name != "Portland" || got.Region != "US" {
		t.Errorf("location = %+v, want Portland, US", got)
	}
	if m.mode != ModeBrowse || m.auto.Open() {
		t.Error("selection should close the list and search box")
	}
	if ev, ok := pendingTrigger(t, m); !ok || ev.Reason != scheduler.CandidateSelected {
		t.Errorf("trigger = %v, %v, want CandidateSelected", ev.Reason, ok)
	}
}

// TestSearch_Escape tests leaving search without changes
func TestSearch_Escape(t *testing.T) {
	m := openSearch(t, newTestModel(t, &fakeService{}))
	m, _ = typeText(m, "Rome")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != ModeBrowse {
		t.Error("Esc should close search")
	}
	if got := m.session.Snapshot().Location.Name; got != "London" {
		t.Errorf("location = %q, want unchanged London", got)
	}
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
