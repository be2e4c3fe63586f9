package autocomplete

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

type fakeSearch struct {
	mu      sync.Mutex
	queries []string
	results map[string][]models.Candidate
	err     error
}

func (f *fakeSearch) SearchLocations(ctx context.Context, q string) ([]models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.results[q], f.err
}

func (f *fakeSearch) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newTestController(client *fakeSearch, opts ...Option) *Controller {
	return New(client, append([]Option{WithDebounce(time.Millisecond)}, opts...)...)
}

// settle runs a command and feeds its message back until the controller
// produces a message it does not own.
func settle(t *testing.T, c *Controller, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case debounceMsg, searchResultMsg:
			cmd = c.Update(msg)
		default:
			return msg
		}
	}
	return nil
}

func londonCandidates() []models.Candidate {
	return []models.Candidate{
		{Name: "London", Region: "GB", State: "England"},
		{Name: "London", Region: "CA", State: "Ontario"},
	}
}

func TestOnInput_ShortTextNeverSearches(t *testing.T) {
	client := &fakeSearch{}
	c := newTestController(client)

	for _, text := range []string{"", "L", " L ", "é"} {
		msg := settle(t, c, c.OnInput(text))
		assert.IsType(t, NoCandidatesMsg{}, msg, "input %q", text)
	}
	assert.Empty(t, client.calls())
}

func TestOnInput_SearchesAfterQuietPeriod(t *testing.T) {
	client := &fakeSearch{results: map[string][]models.Candidate{"Lo": londonCandidates()}}
	c := newTestController(client)

	msg := settle(t, c, c.OnInput("Lo"))

	ready, ok := msg.(CandidatesReadyMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "Lo", ready.Query)
	assert.Len(t, ready.Candidates, 2)
	assert.Equal(t, []string{"Lo"}, client.calls())
	assert.True(t, c.Open())
}

func TestOnInput_RapidEditsDispatchOnce(t *testing.T) {
	client := &fakeSearch{results: map[string][]models.Candidate{"Lond": londonCandidates()}}
	c := newTestController(client)

	var ticks []tea.Cmd
	for _, text := range []string{"Lo", "Lon", "Lond"} {
		ticks = append(ticks, c.OnInput(text))
	}

	var searches []tea.Cmd
	for _, tick := range ticks {
		if cmd := c.Update(tick()); cmd != nil {
			searches = append(searches, cmd)
		}
	}
	require.Len(t, searches, 1)

	cmd := c.Update(searches[0]())
	require.NotNil(t, cmd)
	assert.IsType(t, CandidatesReadyMsg{}, cmd())
	assert.Equal(t, []string{"Lond"}, client.calls())
}

func TestUpdate_StaleResultsDropped(t *testing.T) {
	client := &fakeSearch{results: map[string][]models.Candidate{
		"Pa":    {{Name: "Paris", Region: "FR"}, {Name: "Panama City", Region: "PA"}},
		"Paris": {{Name: "Paris", Region: "FR"}},
	}}
	c := newTestController(client)

	// Two searches dispatched back to back after separate quiet periods
	slow := c.Update(c.OnInput("Pa")())
	fast := c.Update(c.OnInput("Paris")())
	require.NotNil(t, slow)
	require.NotNil(t, fast)

	// The newer search answers first
	fastMsg := fast()
	slowMsg := slow()
	require.NotNil(t, c.Update(fastMsg))
	assert.Nil(t, c.Update(slowMsg), "superseded result must be dropped")

	got := c.Candidates()
	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].Name)
}

func TestOnInput_ShorteningInvalidatesInFlight(t *testing.T) {
	client := &fakeSearch{results: map[string][]models.Candidate{"Lo": londonCandidates()}}
	c := newTestController(client)

	search := c.Update(c.OnInput("Lo")())
	require.NotNil(t, search)
	settle(t, c, c.OnInput("L"))

	assert.Nil(t, c.Update(search()))
	assert.False(t, c.Open())
}

func TestUpdate_EmptyOrFailedSearch(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeSearch
	}{
		{"no results", &fakeSearch{}},
		{"error", &fakeSearch{err: errors.New("service down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(tt.client)
			msg := settle(t, c, c.OnInput("Atlantis"))
			assert.Equal(t, NoCandidatesMsg{Query: "Atlantis"}, msg)
			assert.False(t, c.Open())
		})
	}
}

func TestSelect(t *testing.T) {
	client := &fakeSearch{results: map[string][]models.Candidate{"London": londonCandidates()}}
	var selected []models.LocationRef
	c := newTestController(client, WithOnSelect(func(loc models.LocationRef) {
		selected = append(selected, loc)
	}))

	_, ok := c.Select()
	assert.False(t, ok, "nothing to select yet")

	settle(t, c, c.OnInput("London"))
	c.Move(1)
	c.Move(5)
	assert.Equal(t, 1, c.Cursor())

	loc, ok := c.Select()
	require.True(t, ok)
	assert.Equal(t, models.LocationRef{Name: "London", Region: "CA"}, loc)
	assert.Equal(t, []models.LocationRef{loc}, selected)
	assert.False(t, c.Open(), "selection closes the list")
}

func TestRank(t *testing.T) {
	found := []models.Candidate{
		{Name: "Portland", Region: "US", State: "Maine"},
		{Name: "Port Moresby", Region: "PG"},
		{Name: "Portland", Region: "US", State: "Maine"},
		{Name: "Oporto", Region: "PT"},
		{Name: "Portland", Region: "US", State: "Oregon"},
		{Name: "Portsmouth", Region: "GB"},
		{Name: "Porto", Region: "PT"},
		{Name: "Portimão", Region: "PT"},
	}

	got := rank("Portl, US", found)

	require.Len(t, got, MaxCandidates)
	assert.Equal(t, "Portland", got[0].Name)
	assert.Equal(t, "Portland", got[1].Name)
	assert.NotEqual(t, got[0].State, got[1].State, "duplicates are removed")
}
