package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ngmaloney/weather-terminal/internal/api"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

const defaultFetchTimeout = 10 * time.Second

// Ticket identifies one dispatched refresh cycle and carries the state it
// must use, captured at dispatch time.
type Ticket struct {
	Seq   uint64
	State State
}

// Orchestrator fetches current conditions and forecast for the session's
// location and decides which results reach the view.
type Orchestrator struct {
	client  api.WeatherClient
	session *Session
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	seq      uint64
	view     models.ViewModel
	appliedN uint64
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithFetchTimeout bounds each fetch independently
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an orchestrator over client and session
func NewOrchestrator(client api.WeatherClient, session *Session, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:  client,
		session: session,
		timeout: defaultFetchTimeout,
		now:     time.Now,
		view:    models.Loading(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Session returns the state the orchestrator is driven by
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Dispatch starts a new cycle: it stamps the next sequence number and
// snapshots the session. Any earlier cycle still in flight is superseded.
func (o *Orchestrator) Dispatch() Ticket {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	return Ticket{Seq: o.seq, State: o.session.Snapshot()}
}

// Complete applies vm if seq is the latest dispatched cycle and reports
// whether it did. Results from superseded cycles are dropped.
func (o *Orchestrator) Complete(seq uint64, vm models.ViewModel) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq || seq <= o.appliedN {
		o.logger.Debug("dropping stale refresh", "seq", seq, "latest", o.seq)
		return false
	}
	o.appliedN = seq
	o.view = vm
	return true
}

// View returns the most recently applied view model
func (o *Orchestrator) View() models.ViewModel {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Refresh runs one cycle for loc and units. The current-conditions fetch
// decides the outcome: its failure yields an error view. The forecast is
// best effort and its failure yields a ready view without a forecast.
func (o *Orchestrator) Refresh(ctx context.Context, loc models.LocationRef, units models.UnitSystem) models.ViewModel {
	var (
		wg       sync.WaitGroup
		snap     *models.WeatherSnapshot
		snapErr  error
		forecast []models.ForecastEntry
		fcErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		fctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		snap, snapErr = o.client.CurrentWeather(fctx, loc, units)
	}()
	go func() {
		defer wg.Done()
		fctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		forecast, fcErr = o.client.Forecast(fctx, loc, units)
	}()
	wg.Wait()

	if snapErr == nil && snap == nil {
		snapErr = errors.New("empty current weather response")
	}
	if snapErr != nil {
		kind := api.KindOf(snapErr)
		o.logger.Error("current weather fetch failed", "location", loc.String(), "kind", kind.String(), "error", snapErr)
		return models.Failed(kind, failureMessage(kind, loc))
	}

	if snap.AsOf.IsZero() {
		snap.AsOf = o.now()
	}
	if snap.Units == "" {
		snap.Units = units
	}
	o.session.markRefreshed(o.now())

	if fcErr != nil {
		o.logger.Warn("forecast fetch failed", "location", loc.String(), "error", fcErr)
		return models.Ready(*snap, nil)
	}
	if forecast == nil {
		forecast = []models.ForecastEntry{}
	}
	return models.Ready(*snap, forecast)
}

// Run dispatches a cycle for the current session, refreshes and completes it.
// It returns the view produced and whether it was applied.
func (o *Orchestrator) Run(ctx context.Context) (models.ViewModel, bool) {
	t := o.Dispatch()
	vm := o.Refresh(ctx, t.State.Location, t.State.Units)
	return vm, o.Complete(t.Seq, vm)
}

func failureMessage(kind models.ErrorKind, loc models.LocationRef) string {
	switch kind {
	case models.ErrUnreachable:
		return "Could not reach the weather service. Check your connection and press r to retry."
	case models.ErrBadResponse:
		return "Weather data for " + loc.String() + " is unavailable. Check the city name and try again."
	default:
		return ""
	}
}
