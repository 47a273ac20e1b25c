// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package actuator

import (
	"context"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hushdisk/hushd/pkg/errors"
)

func TestHexDump(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, "", HexDump(nil))
	})

	t.Run("FullRow", func(t *testing.T) {
		out := HexDump([]byte("ABCDEFGHIJKLMNOP"))
		assert.Equal(t,
			"00000000  41 42 43 44 45 46 47 48-49 4a 4b 4c 4d 4e 4f 50   ABCDEFGHIJKLMNOP\n",
			out)
	})

	t.Run("PartialRowPadded", func(t *testing.T) {
		// Fixed-format sense header: response code 0x70, sense key 0x06
		// (unit attention).
		out := HexDump([]byte{0x70, 0x00, 0x06, 0x00})
		assert.Equal(t,
			"00000000  70 00 06 00                                       p...\n",
			out)
	})

	t.Run("MultipleRows", func(t *testing.T) {
		buf := make([]byte, 18)
		out := HexDump(buf)
		lines := []byte(out)
		assert.Equal(t, byte('\n'), lines[len(lines)-1])
		assert.Contains(t, out, "00000000 ")
		assert.Contains(t, out, "00000010 ")
	})

	t.Run("NonPrintableAsDot", func(t *testing.T) {
		out := HexDump([]byte{0x1f, 0x41, 0x7e, 0x00})
		assert.Contains(t, out, ".A~.")
	})
}

func TestSpinDown(t *testing.T) {
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "test.actuator")
	require.NoError(t, err, "Failed to create logger")

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := New(log).SpinDown(ctx, "sda")
		require.Error(t, err)
	})

	t.Run("MissingDevice", func(t *testing.T) {
		a := New(log)
		a.devDir = t.TempDir()

		err := a.SpinDown(context.Background(), "sdz")
		require.Error(t, err)

		he, ok := errors.AsHushError(err)
		require.True(t, ok)
		assert.EqualValues(t, errors.ActuatorOpenFailed, he.Code)
	})
}
