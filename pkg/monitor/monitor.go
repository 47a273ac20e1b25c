// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor implements the disk idle monitoring engine: per-disk
// state tracking over polled kernel I/O counters, idle-policy resolution,
// and spin-down triggering.
package monitor

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"

	"github.com/hushdisk/hushd/config"
	"github.com/hushdisk/hushd/pkg/actuator"
	"github.com/hushdisk/hushd/pkg/device"
	"github.com/hushdisk/hushd/pkg/diskstats"
	"github.com/hushdisk/hushd/pkg/errors"
)

// Monitor drives the poll loop: read the counter source, reconcile disk
// state, sleep, repeat. The interval is computed once at startup from the
// policy table. Cycles never overlap and reconciliation of one cycle
// completes before the next read begins.
type Monitor struct {
	logger   logger.Logger
	source   *diskstats.Source
	tracker  *Tracker
	policy   *PolicyTable
	interval time.Duration

	scheduler gocron.Scheduler

	// OnFatal is invoked when the counter source becomes unreadable
	// mid-run; the daemon cannot function without it.
	OnFatal func()
}

// New assembles the engine from configuration. Device names in policy
// rules may be paths or symlinks; they are resolved once, here.
func New(cfg *config.Config, l logger.Logger) (*Monitor, error) {
	rules, err := RulesFromConfig(cfg.Monitor.Disks)
	if err != nil {
		return nil, err
	}
	policy := NewPolicyTable(rules, cfg.Monitor.DefaultIdle)

	var spinupLog *SpinupLog
	if cfg.Monitor.SpinupLog != "" {
		spinupLog = NewSpinupLog(l, cfg.Monitor.SpinupLog)
	}

	act := actuator.New(l)
	classifier := device.NewClassifier()

	tracker := NewTracker(l, policy, act, classifier.IsManagedDisk, spinupLog, cfg.Monitor.Debug)

	return &Monitor{
		logger:   l,
		source:   diskstats.NewSource(""),
		tracker:  tracker,
		policy:   policy,
		interval: policy.PollInterval(),
	}, nil
}

// RulesFromConfig converts configured disk rules into policy rules,
// resolving symlinked paths and stripping partition suffixes.
func RulesFromConfig(disks []config.DiskRule) ([]Rule, error) {
	rules := make([]Rule, 0, len(disks))
	for _, d := range disks {
		r := Rule{Idle: d.Idle}
		if d.Name != "" {
			name, err := device.ResolveName(d.Name)
			if err != nil {
				return nil, err
			}
			r.Name = name
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Start verifies the counter source, runs the first poll cycle
// synchronously, and schedules the remaining cycles. An unreadable
// counter source at this point is fatal to startup.
func (m *Monitor) Start(ctx context.Context) error {
	records, err := m.source.Read()
	if err != nil {
		return err
	}
	m.tracker.Reconcile(ctx, records, time.Now())

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, errors.MonitorSchedulerError)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(m.pollCycle, ctx),
		gocron.WithName("diskstats-poll"),
		// A slow cycle (a wedged device can hold the stop-unit ioctl for
		// seconds) must delay the next cycle, never run alongside it.
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.Wrap(err, errors.MonitorSchedulerError)
	}

	m.scheduler = scheduler
	scheduler.Start()

	m.logger.Info("disk monitor started",
		"interval", m.interval, "rules", len(m.policy.Rules()))
	return nil
}

// Stop shuts the poll scheduler down. A sleeping loop wakes immediately;
// an in-flight ioctl is allowed to complete.
func (m *Monitor) Stop() error {
	if m.scheduler == nil {
		return nil
	}
	m.logger.Info("stopping disk monitor")
	if err := m.scheduler.Shutdown(); err != nil {
		return errors.Wrap(err, errors.MonitorStopFailed)
	}
	return nil
}

// pollCycle is one read-and-reconcile pass. The stop request is checked
// before the read and again before reconciliation so shutdown latency is
// bounded by the scan, not the sleep.
func (m *Monitor) pollCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	records, err := m.source.Read()
	if err != nil {
		m.logger.Error("counter source unreadable, shutting down", "err", err)
		if m.OnFatal != nil {
			m.OnFatal()
		}
		return
	}

	if ctx.Err() != nil {
		return
	}
	m.tracker.Reconcile(ctx, records, time.Now())
}

// Interval returns the computed poll interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Tracker exposes tracked-disk state for the management API.
func (m *Monitor) Tracker() *Tracker {
	return m.tracker
}

// Policy exposes the active policy table for the management API.
func (m *Monitor) Policy() *PolicyTable {
	return m.policy
}
