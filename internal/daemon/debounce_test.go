package daemon

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncer_BurstCoalescesToSingleFire(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(25*time.Millisecond, 500*time.Millisecond, func() {
		fires.Add(1)
	})
	defer d.Stop()

	for range 5 {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return fires.Load() == 1
	}, 500*time.Millisecond, 10*time.Millisecond)

	// No second fire once the burst has settled.
	time.Sleep(75 * time.Millisecond)
	require.Equal(t, int32(1), fires.Load())
}

func TestDebouncer_MaxDelayForcesFire(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(50*time.Millisecond, 120*time.Millisecond, func() {
		fires.Add(1)
	})
	defer d.Stop()

	// A sustained stream of triggers keeps resetting the quiet window; the
	// max delay must fire anyway.
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) && fires.Load() == 0 {
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}

	require.GreaterOrEqual(t, fires.Load(), int32(1))
}

func TestDebouncer_StopCancelsPendingFire(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(30*time.Millisecond, 0, func() {
		fires.Add(1)
	})

	d.Trigger()
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(0), fires.Load())
}

func TestDebouncer_NewBurstAfterFire(t *testing.T) {
	var fires atomic.Int32
	d := NewDebouncer(20*time.Millisecond, 0, func() {
		fires.Add(1)
	})
	defer d.Stop()

	d.Trigger()
	require.Eventually(t, func() bool { return fires.Load() == 1 },
		300*time.Millisecond, 5*time.Millisecond)

	d.Trigger()
	require.Eventually(t, func() bool { return fires.Load() == 2 },
		300*time.Millisecond, 5*time.Millisecond)
}
