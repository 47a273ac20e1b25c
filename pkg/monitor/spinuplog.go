// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/stratastor/logger"
	"golang.org/x/sys/unix"
)

// SpinupLog appends one line per spin-up event to a log file. Logging is
// diagnostic, never load-bearing: any write failure is skipped silently
// apart from a debug trace.
type SpinupLog struct {
	logger logger.Logger
	path   string

	// settle hooks, replaceable in tests
	sleep func(ctx context.Context, d time.Duration)
	sync  func()
}

func NewSpinupLog(l logger.Logger, path string) *SpinupLog {
	return &SpinupLog{
		logger: l,
		path:   path,
		sleep:  sleepCtx,
		sync:   unix.Sync,
	}
}

// LogSpinup records the running/stopped durations bracketing the stopped
// interval that just ended. After writing it waits briefly and syncs the
// filesystem so the log write itself has been flushed before the next poll
// and is not read back as fresh disk activity. The settle pause and sync
// are skipped once shutdown has been requested to keep shutdown prompt.
func (s *SpinupLog) LogSpinup(ctx context.Context, d *TrackedDisk, now time.Time) {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		s.logger.Debug("spin-up log unwritable", "path", s.path, "err", err)
		return
	}

	_, err = fmt.Fprintf(f, "date: %s, time: %s, disk: %s, running: %d, stopped: %d\n",
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		d.Name,
		int64(d.SpindownAt.Sub(d.SpinupAt).Seconds()),
		int64(now.Sub(d.SpindownAt).Seconds()))
	f.Close()
	if err != nil {
		s.logger.Debug("spin-up log write failed", "path", s.path, "err", err)
		return
	}

	// Don't be slow shutting down
	if ctx.Err() != nil {
		return
	}
	s.sleep(ctx, time.Second)
	if ctx.Err() != nil {
		return
	}
	s.sync()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
