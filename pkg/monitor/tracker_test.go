// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hushdisk/hushd/pkg/diskstats"
	"github.com/hushdisk/hushd/pkg/errors"
)

// fakeActuator records spin-down calls and can be told to fail.
type fakeActuator struct {
	calls []string
	err   error
}

func (f *fakeActuator) SpinDown(ctx context.Context, name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func setupTracker(t *testing.T, rules []Rule) (*Tracker, *fakeActuator) {
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "test.tracker")
	require.NoError(t, err, "Failed to create logger")

	act := &fakeActuator{}
	policy := NewPolicyTable(rules, 10*time.Minute)
	managed := func(name string) bool { return name != "loop0" }
	return NewTracker(log, policy, act, managed, nil, false), act
}

func record(name string, reads, writes uint64) diskstats.Record {
	return diskstats.Record{Name: name, Reads: reads, Writes: writes}
}

func TestTrackerReconcile(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NewDiskTakesNoAction", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)

		assert.Empty(t, act.calls)
		d, ok := tr.Lookup("sda")
		require.True(t, ok)
		assert.Equal(t, time.Minute, d.Idle)
		assert.Equal(t, base, d.LastIO)
		assert.False(t, d.SpunDown)
	})

	t.Run("UnmanagedDeviceIgnored", func(t *testing.T) {
		tr, _ := setupTracker(t, nil)

		tr.Reconcile(ctx, []diskstats.Record{record("loop0", 1, 1)}, base)

		_, ok := tr.Lookup("loop0")
		assert.False(t, ok)
	})

	t.Run("SpinsDownAtExactThreshold", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		// One second short: nothing happens.
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(59*time.Second))
		assert.Empty(t, act.calls)

		// Exactly at the threshold: fires.
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(time.Minute))
		assert.Equal(t, []string{"sda"}, act.calls)

		d, _ := tr.Lookup("sda")
		assert.True(t, d.SpunDown)
		assert.Equal(t, base.Add(time.Minute), d.SpindownAt)
	})

	t.Run("FiresExactlyOnce", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		for i := 1; i <= 5; i++ {
			tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)},
				base.Add(time.Duration(i)*time.Minute))
		}

		assert.Equal(t, []string{"sda"}, act.calls)
	})

	t.Run("ActivityResetsIdleClock", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 101, 50)}, base.Add(50*time.Second))
		// A full threshold from first sight, but only 10s since last IO.
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 101, 50)}, base.Add(time.Minute))
		assert.Empty(t, act.calls)

		d, _ := tr.Lookup("sda")
		assert.Equal(t, base.Add(50*time.Second), d.LastIO)
	})

	t.Run("CounterDecreaseIsActivity", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		// Counter reset after reboot of the backing device.
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 3, 1)}, base.Add(2*time.Minute))
		assert.Empty(t, act.calls)

		d, _ := tr.Lookup("sda")
		assert.Equal(t, uint64(3), d.Reads)
		assert.Equal(t, base.Add(2*time.Minute), d.LastIO)
	})

	t.Run("ZeroThresholdNeverFires", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "sda", Idle: 0}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(24*time.Hour))

		assert.Empty(t, act.calls)
	})

	t.Run("ThresholdResolvedOnceAtFirstSight", func(t *testing.T) {
		tr, _ := setupTracker(t, []Rule{{Name: "sda", Idle: 2 * time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		d, _ := tr.Lookup("sda")
		assert.Equal(t, 2*time.Minute, d.Idle)

		// Later observations never re-resolve.
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(time.Second))
		d, _ = tr.Lookup("sda")
		assert.Equal(t, 2*time.Minute, d.Idle)
	})

	t.Run("MissingRecordIsNonEvent", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		// sda vanishes from one snapshot.
		tr.Reconcile(ctx, []diskstats.Record{record("sdb", 1, 1)}, base.Add(30*time.Second))
		// It reappears unchanged; the idle clock kept running.
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(time.Minute))

		assert.Equal(t, []string{"sda"}, act.calls)
	})

	t.Run("FailedSpinDownStillMarksStopped", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})
		act.err = fmt.Errorf("ioctl failed")

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(time.Minute))
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(2*time.Minute))

		// No retry storm against a misbehaving device.
		assert.Equal(t, []string{"sda"}, act.calls)
		d, _ := tr.Lookup("sda")
		assert.True(t, d.SpunDown)
	})

	t.Run("ActivityAfterSpinDownMarksRunning", func(t *testing.T) {
		tr, act := setupTracker(t, []Rule{{Name: "", Idle: time.Minute}})

		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base.Add(time.Minute))
		require.Equal(t, []string{"sda"}, act.calls)

		wake := base.Add(10 * time.Minute)
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 150, 60)}, wake)

		d, _ := tr.Lookup("sda")
		assert.False(t, d.SpunDown)
		assert.Equal(t, wake, d.SpinupAt)
		assert.Equal(t, wake, d.LastIO)

		// The cycle can repeat.
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 150, 60)}, wake.Add(time.Minute))
		assert.Equal(t, []string{"sda", "sda"}, act.calls)
	})
}

func TestTrackerForceSpinDown(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ActuatesTrackedDisk", func(t *testing.T) {
		tr, act := setupTracker(t, nil)
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)

		now := base.Add(5 * time.Second)
		require.NoError(t, tr.ForceSpinDown(ctx, "sda", now))

		assert.Equal(t, []string{"sda"}, act.calls)
		d, _ := tr.Lookup("sda")
		assert.True(t, d.SpunDown)
		assert.Equal(t, now, d.SpindownAt)
	})

	t.Run("UnknownDisk", func(t *testing.T) {
		tr, act := setupTracker(t, nil)

		err := tr.ForceSpinDown(ctx, "sdz", base)
		require.Error(t, err)
		assert.Empty(t, act.calls)

		he, ok := errors.AsHushError(err)
		require.True(t, ok)
		assert.EqualValues(t, errors.MonitorDiskNotTracked, he.Code)
	})

	t.Run("ActuatorFailureDoesNotMark", func(t *testing.T) {
		tr, act := setupTracker(t, nil)
		tr.Reconcile(ctx, []diskstats.Record{record("sda", 100, 50)}, base)
		act.err = fmt.Errorf("device busy")

		err := tr.ForceSpinDown(ctx, "sda", base.Add(time.Second))
		require.Error(t, err)

		d, _ := tr.Lookup("sda")
		assert.False(t, d.SpunDown)
	})
}

func TestTrackerSnapshot(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr, _ := setupTracker(t, nil)
	tr.Reconcile(ctx, []diskstats.Record{
		record("sda", 1, 1),
		record("sdb", 2, 2),
	}, base)

	snap := tr.Snapshot()
	assert.Len(t, snap, 2)

	// Mutating the snapshot must not touch tracker state.
	for i := range snap {
		snap[i].SpunDown = true
	}
	d, _ := tr.Lookup("sda")
	assert.False(t, d.SpunDown)
}
