package connectivity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/weather-terminal/internal/api"
)

type fakeHealth struct {
	errs  []error
	calls int
	panic bool
}

func (f *fakeHealth) Health(ctx context.Context) error {
	if f.panic {
		panic("boom")
	}
	i := f.calls
	f.calls++
	if i < len(f.errs) {
		return f.errs[i]
	}
	return nil
}

func TestMonitor_Probe_TransportErrorIsOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	m := NewMonitor(api.NewClient(url, time.Second))

	assert.Equal(t, Offline, m.Probe(context.Background()))
	assert.Equal(t, Offline, m.Status())
}

func TestMonitor_Probe_ServerErrorIsOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	m := NewMonitor(api.NewClient(server.URL, time.Second))

	assert.Equal(t, Offline, m.Probe(context.Background()))
}

func TestMonitor_Probe_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy","service":"Weather API","version":"1.0.0"}`))
	}))
	defer server.Close()

	m := NewMonitor(api.NewClient(server.URL, time.Second))

	assert.Equal(t, Unknown, m.Status())
	assert.Equal(t, Connected, m.Probe(context.Background()))
	assert.Equal(t, Connected, m.Status())
}

func TestMonitor_Probe_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	m := NewMonitor(api.NewClient(server.URL, time.Minute), WithTimeout(50*time.Millisecond))

	assert.Equal(t, Offline, m.Probe(context.Background()))
}

func TestMonitor_OfflineNoticeOnlyOnTransition(t *testing.T) {
	down := errors.New("connection refused")
	health := &fakeHealth{errs: []error{down, down, down, nil, down}}
	m := NewMonitor(health)
	ctx := context.Background()

	first := m.Check(ctx)
	require.Equal(t, Offline, first.Status)
	assert.Equal(t, OfflineNotice, first.Notice)

	// Repeated failures stay quiet
	assert.Empty(t, m.Check(ctx).Notice)
	assert.Empty(t, m.Check(ctx).Notice)

	// Recovery re-arms the notice
	back := m.Check(ctx)
	assert.Equal(t, Connected, back.Status)
	assert.Empty(t, back.Notice)

	again := m.Check(ctx)
	assert.Equal(t, Offline, again.Status)
	assert.Equal(t, OfflineNotice, again.Notice)
}

func TestMonitor_SlowProbeIsDegraded(t *testing.T) {
	m := NewMonitor(&fakeHealth{}, WithSlowThreshold(time.Second))

	clock := time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(1500 * time.Millisecond)
		return clock
	}

	// The probe contract still reports Connected; the indicator shows Degraded
	assert.Equal(t, Connected, m.Probe(context.Background()))
	assert.Equal(t, Degraded, m.Status())
}

func TestMonitor_PanicResolvesOffline(t *testing.T) {
	m := NewMonitor(&fakeHealth{panic: true})

	assert.NotPanics(t, func() {
		assert.Equal(t, Offline, m.Probe(context.Background()))
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "degraded", Degraded.String())
	assert.Equal(t, "offline", Offline.String())
	assert.Equal(t, "unknown", Unknown.String())
}
