// Package autocomplete turns search-box edits into debounced location
// searches and keeps the visible candidate list in step with the newest one.
package autocomplete

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/ngmaloney/weather-terminal/internal/api"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

const (
	DefaultDebounce  = 300 * time.Millisecond
	DefaultMinLength = 2
	MaxCandidates    = 5
	searchTimeout    = 5 * time.Second
)

// CandidatesReadyMsg carries a fresh candidate list for the newest query
type CandidatesReadyMsg struct {
	Query      string
	Candidates []models.Candidate
}

// NoCandidatesMsg hides the candidate list
type NoCandidatesMsg struct {
	Query string
}

type debounceMsg struct {
	query string
	seq   uint64
}

type searchResultMsg struct {
	query      string
	seq        uint64
	candidates []models.Candidate
	err        error
}

// Controller debounces input, issues searches and drops stale results.
// It is driven from a single Bubble Tea update loop.
type Controller struct {
	client    api.LocationClient
	delay     time.Duration
	minLength int
	logger    *slog.Logger
	onSelect  func(models.LocationRef)

	inputSeq    uint64 // bumped on every edit; pending debounce ticks compare against it
	dispatchSeq uint64 // bumped on every search; results compare against it

	candidates []models.Candidate
	cursor     int
}

// Option configures a Controller
type Option func(*Controller)

// WithDebounce sets the quiet period before a search is dispatched
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithMinLength sets the shortest query that is searched
func WithMinLength(n int) Option {
	return func(c *Controller) { c.minLength = n }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithOnSelect registers the callback run when a candidate is chosen
func WithOnSelect(fn func(models.LocationRef)) Option {
	return func(c *Controller) { c.onSelect = fn }
}

// New creates a controller searching through client
func New(client api.LocationClient, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		delay:     DefaultDebounce,
		minLength: DefaultMinLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// OnInput records an edit. Short text hides the list at once; anything
// else schedules a search after the quiet period, replacing any pending one.
func (c *Controller) OnInput(text string) tea.Cmd {
	c.inputSeq++
	query := strings.TrimSpace(text)

	if utf8.RuneCountInString(query) < c.minLength {
		c.dispatchSeq++ // in-flight results no longer apply
		c.close()
		return func() tea.Msg { return NoCandidatesMsg{Query: query} }
	}

	seq := c.inputSeq
	return tea.Tick(c.delay, func(time.Time) tea.Msg {
		return debounceMsg{query: query, seq: seq}
	})
}

// Update handles the controller's own messages and returns the follow-up
// command. Messages it does not own are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.seq != c.inputSeq {
			return nil
		}
		c.dispatchSeq++
		return c.search(msg.query, c.dispatchSeq)

	case searchResultMsg:
		if msg.seq != c.dispatchSeq {
			c.logger.Debug("dropping stale search result", "query", msg.query, "seq", msg.seq, "latest", c.dispatchSeq)
			return nil
		}
		if msg.err != nil {
			c.logger.Warn("location search failed", "query", msg.query, "error", msg.err)
		}
		c.candidates = rank(msg.query, msg.candidates)
		c.cursor = 0
		if len(c.candidates) == 0 {
			query := msg.query
			return func() tea.Msg { return NoCandidatesMsg{Query: query} }
		}
		ready := CandidatesReadyMsg{Query: msg.query, Candidates: c.Candidates()}
		return func() tea.Msg { return ready }
	}
	return nil
}

func (c *Controller) search(query string, seq uint64) tea.Cmd {
	client := c.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		found, err := client.SearchLocations(ctx, query)
		return searchResultMsg{query: query, seq: seq, candidates: found, err: err}
	}
}

// MinLength returns the shortest query that is searched
func (c *Controller) MinLength() int {
	return c.minLength
}

// Candidates returns the visible list
func (c *Controller) Candidates() []models.Candidate {
	out := make([]models.Candidate, len(c.candidates))
	copy(out, c.candidates)
	return out
}

// Open reports whether a candidate list is showing
func (c *Controller) Open() bool {
	return len(c.candidates) > 0
}

// Cursor returns the highlighted index
func (c *Controller) Cursor() int {
	return c.cursor
}

// Move shifts the highlight by delta, clamped to the list
func (c *Controller) Move(delta int) {
	if len(c.candidates) == 0 {
		return
	}
	c.cursor += delta
	if c.cursor < 0 {
		c.cursor = 0
	}
	if c.cursor >= len(c.candidates) {
		c.cursor = len(c.candidates) - 1
	}
}

// Select chooses the highlighted candidate, closes the list and hands the
// location to the select callback. It reports false when nothing is showing.
func (c *Controller) Select() (models.LocationRef, bool) {
	if len(c.candidates) == 0 {
		return models.LocationRef{}, false
	}
	loc := c.candidates[c.cursor].Location()
	c.Dismiss()
	if c.onSelect != nil {
		c.onSelect(loc)
	}
	return loc, true
}

// Dismiss closes the list and invalidates pending and in-flight searches
func (c *Controller) Dismiss() {
	c.inputSeq++
	c.dispatchSeq++
	c.close()
}

func (c *Controller) close() {
	c.candidates = nil
	c.cursor = 0
}

type nameSource []models.Candidate

func (s nameSource) String(i int) string { return s[i].Name }
func (s nameSource) Len() int            { return len(s) }

// rank removes duplicates, orders fuzzy matches on the city name by score
// and keeps the service's order for the rest.
func rank(query string, found []models.Candidate) []models.Candidate {
	seen := make(map[string]bool, len(found))
	unique := make([]models.Candidate, 0, len(found))
	for _, cand := range found {
		key := strings.ToLower(cand.Label())
		if cand.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, cand)
	}

	name, _, _ := strings.Cut(query, ",")
	matches := fuzzy.FindFrom(strings.TrimSpace(name), nameSource(unique))

	ranked := make([]models.Candidate, 0, len(unique))
	used := make([]bool, len(unique))
	for _, m := range matches {
		ranked = append(ranked, unique[m.Index])
		used[m.Index] = true
	}
	for i, cand := range unique {
		if !used[i] {
			ranked = append(ranked, cand)
		}
	}

	if len(ranked) > MaxCandidates {
		ranked = ranked[:MaxCandidates]
	}
	return ranked
}
