// Package weather orchestrates current-conditions and forecast fetches and
// owns the session state they are driven by.
package weather

import (
	"errors"
	"sync"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/connectivity"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

// State is an immutable copy of the session taken at one instant
type State struct {
	Location      models.LocationRef
	Units         models.UnitSystem
	LastRefreshAt time.Time // zero until the first successful primary fetch
	Connectivity  connectivity.Status
}

// Refreshed reports whether a primary fetch has ever succeeded
func (s State) Refreshed() bool {
	return !s.LastRefreshAt.IsZero()
}

// Session holds the mutable client state. All access goes through its
// methods; readers work from the State copy returned by Snapshot.
type Session struct {
	mu    sync.RWMutex
	state State
}

var errEmptyLocation = errors.New("session requires a location")

// NewSession creates a session. The location is required; empty units
// default to metric.
func NewSession(loc models.LocationRef, units models.UnitSystem) (*Session, error) {
	if loc.IsZero() {
		return nil, errEmptyLocation
	}
	if units == "" {
		units = models.Metric
	}
	return &Session{state: State{Location: loc, Units: units}}, nil
}

// Snapshot returns the current state
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetLocation replaces the selected location. It reports whether the value
// changed; a zero ref is ignored.
func (s *Session) SetLocation(loc models.LocationRef) bool {
	if loc.IsZero() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Location == loc {
		return false
	}
	s.state.Location = loc
	return true
}

// SetUnits replaces the unit system and reports whether it changed
func (s *Session) SetUnits(units models.UnitSystem) bool {
	if units == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Units == units {
		return false
	}
	s.state.Units = units
	return true
}

// SetConnectivity records the connectivity indicator
func (s *Session) SetConnectivity(status connectivity.Status) {
	s.mu.Lock()
	s.state.Connectivity = status
	s.mu.Unlock()
}

// markRefreshed advances LastRefreshAt; it never moves backwards
func (s *Session) markRefreshed(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at.After(s.state.LastRefreshAt) {
		s.state.LastRefreshAt = at
	}
}
