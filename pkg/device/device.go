// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

// Package device classifies block device nodes and resolves user-supplied
// device paths to kernel disk names.
package device

import (
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/hushdisk/hushd/internal/constants"
	"github.com/hushdisk/hushd/pkg/errors"
)

// SCSI-family whole-disk numbering convention: sd devices carry major 8
// and reserve 16 minors per disk (the whole disk plus 15 partitions).
const (
	scsiDiskMajor     = 8
	partitionsPerDisk = 16
)

// Classifier decides whether a device name belongs to a whole disk this
// system manages. DevDir is swappable for tests.
type Classifier struct {
	DevDir string
}

func NewClassifier() *Classifier {
	return &Classifier{DevDir: constants.DevDir}
}

// IsManagedDisk reports whether name refers to a whole SCSI-family disk.
// Partitions and devices of other classes are rejected. A device node
// that cannot be inspected (e.g. transiently absent) is skipped for this
// cycle rather than treated as an error.
func (c *Classifier) IsManagedDisk(name string) bool {
	var st unix.Stat_t
	if err := unix.Stat(filepath.Join(c.DevDir, name), &st); err != nil {
		return false
	}

	major := unix.Major(uint64(st.Rdev))
	minor := unix.Minor(uint64(st.Rdev))

	return major == scsiDiskMajor && minor%partitionsPerDisk == 0
}

// ResolveName turns a user-supplied disk specification into a bare kernel
// disk name. Paths and symlinks (/dev/disk/by-uuid/...) are resolved to
// their device node, and trailing partition digits are stripped so that
// entries pointing at partitions select the whole disk. Plain names pass
// through unchanged. This is a one-time startup convenience for
// configuration loading; the engine itself only ever sees resolved names.
func ResolveName(spec string) (string, error) {
	if !strings.HasPrefix(spec, "/") {
		// just a disk name without /dev prefix
		return spec, nil
	}

	resolved, err := filepath.EvalSymlinks(spec)
	if err != nil {
		return "", errors.Wrap(err, errors.DiskNameInvalid).
			WithMetadata("spec", spec)
	}

	name := strings.TrimRightFunc(filepath.Base(resolved), func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if name == "" {
		return "", errors.New(errors.DiskNameInvalid, spec)
	}

	return name, nil
}
