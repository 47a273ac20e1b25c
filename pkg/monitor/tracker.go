// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/stratastor/logger"

	"github.com/hushdisk/hushd/pkg/diskstats"
	"github.com/hushdisk/hushd/pkg/errors"
)

// Actuator issues the low-level stop-unit command to a named device.
type Actuator interface {
	SpinDown(ctx context.Context, name string) error
}

// TrackedDisk is the per-device state advanced on every poll cycle.
type TrackedDisk struct {
	Name string `json:"name"`

	// Idle is resolved from the policy table when the disk is first
	// observed and never changes afterwards. Zero means never spin down.
	Idle time.Duration `json:"idle"`

	LastIO time.Time `json:"lastIO"`
	Reads  uint64    `json:"reads"`
	Writes uint64    `json:"writes"`

	// SpunDown is true iff the most recent action for this disk was a
	// spin-down with no counter change observed since.
	SpunDown   bool      `json:"spunDown"`
	SpindownAt time.Time `json:"spindownAt,omitempty"`
	SpinupAt   time.Time `json:"spinupAt,omitempty"`
}

// Tracker owns the set of tracked disks and reconciles counter snapshots
// against it. State is mutated only by the poll loop; the read lock exists
// solely so the HTTP API can copy a consistent snapshot.
type Tracker struct {
	logger    logger.Logger
	policy    *PolicyTable
	actuator  Actuator
	isManaged func(name string) bool
	spinupLog *SpinupLog // nil disables spin-up event logging
	debug     bool

	mu    sync.RWMutex
	disks map[string]*TrackedDisk
}

func NewTracker(
	l logger.Logger,
	policy *PolicyTable,
	act Actuator,
	isManaged func(name string) bool,
	spinupLog *SpinupLog,
	debug bool,
) *Tracker {
	return &Tracker{
		logger:    l,
		policy:    policy,
		actuator:  act,
		isManaged: isManaged,
		spinupLog: spinupLog,
		debug:     debug,
		disks:     make(map[string]*TrackedDisk),
	}
}

// Reconcile advances disk state from one counter snapshot. Records for
// devices that are not managed whole disks are skipped. A previously known
// disk missing from the snapshot is a non-event: enumeration order and
// presence in the counter source can vary under load without implying
// hardware removal, so disks are never dropped and their idle clocks are
// never reset by absence.
func (t *Tracker) Reconcile(ctx context.Context, records []diskstats.Record, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, rec := range records {
		if !t.isManaged(rec.Name) {
			continue
		}
		if t.debug {
			t.logger.Debug("probing disk",
				"disk", rec.Name, "reads", rec.Reads, "writes", rec.Writes)
		}

		d, ok := t.disks[rec.Name]
		if !ok {
			// New disk: assume running, take no action on first sight.
			t.disks[rec.Name] = &TrackedDisk{
				Name:     rec.Name,
				Idle:     t.policy.Resolve(rec.Name),
				LastIO:   now,
				SpinupAt: now,
				Reads:    rec.Reads,
				Writes:   rec.Writes,
			}
			t.logger.Info("tracking new disk",
				"disk", rec.Name, "idle", t.disks[rec.Name].Idle)
			continue
		}

		if d.Reads == rec.Reads && d.Writes == rec.Writes {
			t.reconcileIdle(ctx, d, now)
			continue
		}

		// Counters moved; a decrease is a counter reset and counts as
		// activity just like an increase.
		t.reconcileActive(ctx, d, rec, now)
	}
}

// reconcileIdle handles an unchanged-counter observation. The comparison
// is >= so that idle time is never inflated by one extra poll interval.
func (t *Tracker) reconcileIdle(ctx context.Context, d *TrackedDisk, now time.Time) {
	if d.SpunDown || d.Idle == 0 {
		return
	}
	if now.Sub(d.LastIO) < d.Idle {
		return
	}

	t.logger.Info("spinning down idle disk",
		"disk", d.Name, "idle", now.Sub(d.LastIO))
	if err := t.actuator.SpinDown(ctx, d.Name); err != nil {
		// The disk is still marked spun-down: retrying every poll cycle
		// would hammer a device that is already misbehaving. The next
		// observed counter change resets the state either way.
		t.logger.Error("spin-down failed", "disk", d.Name, "err", err)
	}
	d.SpindownAt = now
	d.SpunDown = true
}

func (t *Tracker) reconcileActive(ctx context.Context, d *TrackedDisk, rec diskstats.Record, now time.Time) {
	if d.SpunDown {
		// Spin-up transition. Log before overwriting the timestamps the
		// log line is computed from.
		if t.spinupLog != nil {
			t.spinupLog.LogSpinup(ctx, d, now)
		}
		d.SpinupAt = now
	}
	d.Reads = rec.Reads
	d.Writes = rec.Writes
	d.LastIO = now
	d.SpunDown = false
}

// ForceSpinDown actuates a tracked disk immediately, outside the idle
// timeout path, and marks it spun down.
func (t *Tracker) ForceSpinDown(ctx context.Context, name string, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.disks[name]
	if !ok {
		return errors.New(errors.MonitorDiskNotTracked, name)
	}
	if err := t.actuator.SpinDown(ctx, name); err != nil {
		return err
	}
	d.SpindownAt = now
	d.SpunDown = true
	return nil
}

// Snapshot returns a copy of all tracked disk states.
func (t *Tracker) Snapshot() []TrackedDisk {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]TrackedDisk, 0, len(t.disks))
	for _, d := range t.disks {
		out = append(out, *d)
	}
	return out
}

// Lookup returns a copy of one tracked disk's state.
func (t *Tracker) Lookup(name string) (TrackedDisk, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.disks[name]
	if !ok {
		return TrackedDisk{}, false
	}
	return *d, true
}
