// Package scheduler decides when a weather refresh should run. It emits
// trigger events on a channel and never runs the refresh itself.
package scheduler

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Reason says why a refresh was requested
type Reason int

const (
	Startup Reason = iota
	Interval
	LocationChanged
	UnitsChanged
	Manual
	CandidateSelected
)

func (r Reason) String() string {
	switch r {
	case Startup:
		return "startup"
	case Interval:
		return "interval"
	case LocationChanged:
		return "location changed"
	case UnitsChanged:
		return "units changed"
	case Manual:
		return "manual"
	case CandidateSelected:
		return "candidate selected"
	default:
		return "unknown"
	}
}

// Event is one refresh request
type Event struct {
	Reason Reason
	At     time.Time
}

const (
	DefaultInterval = 10 * time.Minute
	eventBuffer     = 8
)

var ErrStopped = errors.New("scheduler stopped")

// Scheduler feeds refresh requests from a periodic timer and from explicit
// state changes into a single channel.
type Scheduler struct {
	cron     *gocron.Scheduler
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	events  chan Event
	started bool
	stopped bool
}

// New creates a scheduler ticking every interval; zero selects the default
func New(interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		interval: interval,
		logger:   logger,
		now:      time.Now,
		events:   make(chan Event, eventBuffer),
	}
}

// Interval returns the periodic refresh interval
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Events returns the trigger channel. It is closed by Stop.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Start schedules the periodic job. The first tick fires one interval
// after start.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	_, err := s.cron.Every(s.interval).WaitForSchedule().Do(func() {
		s.Trigger(Interval)
	})
	if err != nil {
		return err
	}

	s.cron.StartAsync()
	s.started = true
	s.logger.Info("refresh scheduler started", "interval", s.interval)
	return nil
}

// Trigger requests a refresh without blocking. When the buffer is full the
// request is coalesced into the ones already queued, since every refresh
// reads the session as it is at dispatch. It reports whether the event
// was queued.
func (s *Scheduler) Trigger(reason Reason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}

	select {
	case s.events <- Event{Reason: reason, At: s.now()}:
		s.logger.Debug("refresh triggered", "reason", reason.String())
		return true
	default:
		s.logger.Debug("refresh coalesced", "reason", reason.String())
		return false
	}
}

// Stop halts the timer and closes the event channel
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	// A job still running may call Trigger, so the lock is not held here
	if started {
		s.cron.Stop()
	}

	s.mu.Lock()
	close(s.events)
	s.mu.Unlock()
	s.logger.Info("refresh scheduler stopped")
}
