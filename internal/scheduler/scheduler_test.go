package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigger_DeliversInOrder(t *testing.T) {
	s := New(time.Hour, nil)
	defer s.Stop()

	require.True(t, s.Trigger(LocationChanged))
	require.True(t, s.Trigger(Manual))

	assert.Equal(t, LocationChanged, (<-s.Events()).Reason)
	assert.Equal(t, Manual, (<-s.Events()).Reason)
}

func TestTrigger_NeverBlocks(t *testing.T) {
	s := New(time.Hour, nil)
	defer s.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < eventBuffer*3; i++ {
			s.Trigger(Manual)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Trigger blocked with nobody reading")
	}
	assert.Len(t, s.Events(), eventBuffer)
}

func TestStart_PeriodicTicks(t *testing.T) {
	s := New(100*time.Millisecond, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case ev := <-s.Events():
		assert.Equal(t, Interval, ev.Reason)
		assert.False(t, ev.At.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("no interval tick")
	}
}

func TestStart_WaitsForFirstInterval(t *testing.T) {
	s := New(time.Hour, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected immediate event %v", ev.Reason)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStop(t *testing.T) {
	s := New(time.Hour, nil)
	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()

	assert.False(t, s.Trigger(Manual))
	_, open := <-s.Events()
	assert.False(t, open)
	assert.ErrorIs(t, s.Start(), ErrStopped)
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(0, nil)
	defer s.Stop()
	assert.Equal(t, DefaultInterval, s.Interval())
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "candidate selected", CandidateSelected.String())
	assert.Equal(t, "units changed", UnitsChanged.String())
}
