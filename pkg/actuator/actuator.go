// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

// Package actuator issues SCSI STOP UNIT commands to disk device nodes
// through the sg driver's generic I/O control path.
package actuator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/stratastor/logger"
	"golang.org/x/sys/unix"

	"github.com/hushdisk/hushd/internal/constants"
	"github.com/hushdisk/hushd/pkg/errors"
)

const (
	sgIO         = 0x2285
	sgDxferNone  = -1
	opStopUnit   = 0x1b
	senseBufSize = 255

	// masked status values per the SCSI spec
	statusCheckCondition = 0x01
)

// sgIoHdr mirrors struct sg_io_hdr from <scsi/sg.h>.
type sgIoHdr struct {
	interfaceID    int32
	dxferDirection int32
	cmdLen         uint8
	mxSbLen        uint8
	iovecCount     uint16
	dxferLen       uint32
	dxferp         uintptr
	cmdp           uintptr
	sbp            uintptr
	timeout        uint32
	flags          uint32
	packID         int32
	usrPtr         uintptr
	status         uint8
	maskedStatus   uint8
	msgStatus      uint8
	sbLenWr        uint8
	hostStatus     uint16
	driverStatus   uint16
	resid          int32
	duration       uint32
	info           uint32
}

// Actuator sends stop-unit commands to named disks under DevDir.
type Actuator struct {
	logger logger.Logger
	devDir string
}

func New(l logger.Logger) *Actuator {
	return &Actuator{logger: l, devDir: constants.DevDir}
}

// SpinDown issues a STOP UNIT to /dev/<name>. The command has no data
// transfer phase; failure detail is decoded from the returned sense
// buffer. The ioctl itself is not interruptible and carries no timeout; a
// wedged device holds the call until the bus gives up. The context is
// therefore only honored before the command is issued.
func (a *Actuator) SpinDown(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	devPath := filepath.Join(a.devDir, name)
	f, err := os.OpenFile(devPath, os.O_RDONLY, 0)
	if err != nil {
		return errors.Wrap(err, errors.ActuatorOpenFailed).
			WithMetadata("device", devPath)
	}
	defer f.Close()

	a.logger.Debug("issuing stop unit", "device", devPath)

	// STOP UNIT: 6-byte CDB, opcode 0x1b, all other bytes zero
	cdb := [6]byte{opStopUnit}
	senseBuf := [senseBufSize]byte{}

	hdr := sgIoHdr{
		interfaceID:    'S',
		dxferDirection: sgDxferNone,
		cmdLen:         uint8(len(cdb)),
		mxSbLen:        uint8(len(senseBuf)),
		cmdp:           uintptr(unsafe.Pointer(&cdb[0])),
		sbp:            uintptr(unsafe.Pointer(&senseBuf[0])),
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(sgIO), uintptr(unsafe.Pointer(&hdr)))
	if errno != 0 {
		return errors.Wrap(errno, errors.ActuatorIoctlFailed).
			WithMetadata("device", devPath)
	}

	if hdr.maskedStatus != 0 {
		he := errors.New(errors.ActuatorCommandError, name).
			WithMetadata("status", fmt.Sprintf("0x%02x", hdr.maskedStatus))
		if hdr.maskedStatus == statusCheckCondition {
			he = he.WithMetadata("sense", HexDump(senseBuf[:hdr.sbLenWr]))
		}
		return he
	}

	return nil
}

// HexDump formats a diagnostic buffer the way sense data is commonly
// printed: a 16-byte-per-row offset/hex/ASCII dump.
func HexDump(buf []byte) string {
	var out []byte

	for pos := 0; pos < len(buf); pos += 16 {
		row := buf[pos:]
		if len(row) > 16 {
			row = row[:16]
		}

		out = append(out, fmt.Sprintf("%08x ", pos)...)
		for i := 0; i < 16; i++ {
			sep := byte(' ')
			if i == 8 {
				sep = '-'
			}
			if i < len(row) {
				out = append(out, fmt.Sprintf("%c%02x", sep, row[i])...)
			} else {
				out = append(out, "   "...)
			}
		}

		out = append(out, "   "...)
		for _, b := range row {
			if b >= 32 && b < 128 {
				out = append(out, b)
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}

	return string(out)
}
