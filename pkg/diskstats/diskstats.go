// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

// Package diskstats reads per-device I/O counter snapshots from the
// kernel statistics interface (/proc/diskstats).
package diskstats

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hushdisk/hushd/internal/constants"
	"github.com/hushdisk/hushd/pkg/errors"
)

// Standard /proc/diskstats field offsets. Each line starts with
// "major minor name" followed by the counter block.
const (
	fieldName   = 2
	fieldReads  = 3 // reads completed successfully
	fieldWrites = 7 // writes completed
	minFields   = 11
)

// Record is one device's counters at a single instant. Counters are
// cumulative and monotonically non-decreasing while the device is live;
// a decrease signals a counter reset.
type Record struct {
	Name   string
	Reads  uint64
	Writes uint64
}

// Parse extracts counter records from a diskstats snapshot. Lines that do
// not match the expected field layout are skipped; a malformed line never
// aborts the poll cycle.
func Parse(r io.Reader) []Record {
	var records []Record

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < minFields {
			continue
		}

		reads, err := strconv.ParseUint(fields[fieldReads], 10, 64)
		if err != nil {
			continue
		}
		writes, err := strconv.ParseUint(fields[fieldWrites], 10, 64)
		if err != nil {
			continue
		}

		records = append(records, Record{
			Name:   fields[fieldName],
			Reads:  reads,
			Writes: writes,
		})
	}

	return records
}

// Source reads snapshots from a diskstats-format file.
type Source struct {
	path string
}

func NewSource(path string) *Source {
	if path == "" {
		path = constants.DiskstatsPath
	}
	return &Source{path: path}
}

// Read returns the current snapshot. Failure to open the counter source
// means the engine cannot function and is surfaced to the caller as fatal.
func (s *Source) Read() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.MonitorStatsOpenFailed).
			WithMetadata("path", s.path)
	}
	defer f.Close()

	return Parse(f), nil
}
