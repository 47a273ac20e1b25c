// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"time"

	"github.com/hushdisk/hushd/internal/constants"
)

// Rule is one idle-policy entry. An empty Name designates the default
// rule. Idle of zero means the matched disk is never spun down.
type Rule struct {
	Name string        `json:"name,omitempty"`
	Idle time.Duration `json:"idle"`
}

// PolicyTable resolves idle thresholds for disks. It is built once at
// startup and immutable afterwards: resolution happens exactly once per
// disk, when the disk is first observed, so later policy edits can never
// retroactively change a tracked disk's threshold.
type PolicyTable struct {
	rules    []Rule
	fallback time.Duration
}

// NewPolicyTable builds a table from rules in declaration order. fallback
// applies when no rule matches and no default rule was declared; a
// non-positive fallback selects the built-in default.
func NewPolicyTable(rules []Rule, fallback time.Duration) *PolicyTable {
	if fallback <= 0 {
		fallback = constants.DefaultIdleTime
	}
	t := &PolicyTable{fallback: fallback}
	t.rules = append(t.rules, rules...)
	return t
}

// Resolve returns the idle threshold for a disk name. Lookup is two-phase:
// exact-name match over the rules in declaration order, then the first
// declared default rule, then the table fallback. Declaration position of
// the default rule is irrelevant; it always loses to an exact match.
func (t *PolicyTable) Resolve(name string) time.Duration {
	for _, r := range t.rules {
		if r.Name == name {
			return r.Idle
		}
	}
	for _, r := range t.rules {
		if r.Name == "" {
			return r.Idle
		}
	}
	return t.fallback
}

// PollInterval computes the monitoring cadence: one tenth of the smallest
// non-zero threshold in the table, never below the minimum poll interval.
// The fallback counts as a threshold unless an explicit default rule
// shadows it. A table where every threshold is zero can never trigger a
// spin-down; polling then runs at one tenth of the built-in default.
func (t *PolicyTable) PollInterval() time.Duration {
	min := time.Duration(0)
	hasDefault := false

	for _, r := range t.rules {
		if r.Name == "" {
			hasDefault = true
		}
		if r.Idle != 0 && (min == 0 || r.Idle < min) {
			min = r.Idle
		}
	}
	if !hasDefault && (min == 0 || t.fallback < min) {
		min = t.fallback
	}
	if min == 0 {
		min = constants.DefaultIdleTime
	}

	interval := min / 10
	if interval < constants.MinPollInterval {
		interval = constants.MinPollInterval
	}
	return interval
}

// Rules returns a copy of the rule list for reporting.
func (t *PolicyTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}
