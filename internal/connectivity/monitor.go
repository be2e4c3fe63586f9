// Package connectivity tracks whether the weather service is reachable.
package connectivity

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/api"
)

// Status is the process-wide connectivity indicator
type Status int

const (
	Unknown   Status = iota // not probed yet
	Connected               // last probe succeeded
	Degraded                // last probe succeeded but was slow
	Offline                 // last probe failed
)

func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	case Degraded:
		return "degraded"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

const (
	defaultProbeTimeout  = 5 * time.Second
	defaultSlowThreshold = 2 * time.Second

	// OfflineNotice is shown once each time the service becomes unreachable
	OfflineNotice = "Weather service is unreachable. Showing the last data received until it comes back."
)

// Monitor probes the health endpoint and owns the connectivity indicator
type Monitor struct {
	client        api.HealthClient
	timeout       time.Duration
	slowThreshold time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu       sync.RWMutex
	status   Status
	notified bool
}

// Option configures a Monitor
type Option func(*Monitor)

// WithTimeout bounds each probe
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.timeout = d }
}

// WithSlowThreshold sets the latency above which a successful probe reports Degraded
func WithSlowThreshold(d time.Duration) Option {
	return func(m *Monitor) { m.slowThreshold = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// NewMonitor creates a monitor for client
func NewMonitor(client api.HealthClient, opts ...Option) *Monitor {
	m := &Monitor{
		client:        client,
		timeout:       defaultProbeTimeout,
		slowThreshold: defaultSlowThreshold,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m
}

// Result is the outcome of one probe
type Result struct {
	Status Status // Connected or Offline
	// Notice is non-empty only on the transition into Offline
	Notice string
}

// Probe checks the health endpoint. It never fails: every error, timeout or
// non-success status resolves to Offline.
func (m *Monitor) Probe(ctx context.Context) Status {
	return m.Check(ctx).Status
}

// Check probes like Probe and also reports the one-time offline notice
func (m *Monitor) Check(ctx context.Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("health probe panicked", "panic", r)
			result = m.record(Offline, 0)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := m.now()
	err := m.client.Health(ctx)
	elapsed := m.now().Sub(start)

	if err != nil {
		m.logger.Warn("health probe failed", "error", err, "elapsed", elapsed)
		return m.record(Offline, elapsed)
	}
	return m.record(Connected, elapsed)
}

func (m *Monitor) record(status Status, elapsed time.Duration) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := Result{Status: status}
	indicator := status

	switch status {
	case Offline:
		if !m.notified {
			m.notified = true
			res.Notice = OfflineNotice
			m.logger.Info("connectivity lost")
		}
	case Connected:
		if m.notified {
			m.logger.Info("connectivity restored")
		}
		m.notified = false
		if m.slowThreshold > 0 && elapsed > m.slowThreshold {
			indicator = Degraded
		}
	}

	m.status = indicator
	return res
}

// Status returns the current indicator value
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
