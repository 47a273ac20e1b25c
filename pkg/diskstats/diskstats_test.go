// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package diskstats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hushdisk/hushd/pkg/errors"
)

const sampleDiskstats = `   8       0 sda 123351 12810 8968312 64040 489967 402241 32157872 1575456 0 415840 1639496
   8       1 sda1 486 976 9600 96 4 0 8 12 0 100 108
   8      16 sdb 1570 220 14322 352 12 4 128 20 0 280 372
 253       0 dm-0 121426 0 8903
   7       0 loop0 55 0 2116 12 0 0 0 0 0 20 12
`

func TestParse(t *testing.T) {
	t.Run("ExtractsNameAndCounters", func(t *testing.T) {
		records := Parse(strings.NewReader(sampleDiskstats))
		require.Len(t, records, 4)

		assert.Equal(t, Record{Name: "sda", Reads: 123351, Writes: 489967}, records[0])
		assert.Equal(t, Record{Name: "sda1", Reads: 486, Writes: 4}, records[1])
		assert.Equal(t, Record{Name: "sdb", Reads: 1570, Writes: 12}, records[2])
		assert.Equal(t, Record{Name: "loop0", Reads: 55, Writes: 0}, records[3])
	})

	t.Run("SkipsShortLines", func(t *testing.T) {
		records := Parse(strings.NewReader("8 0 sda 1 2 3\n8 16 sdb 9 8 7 6 5 4 3 2 1\n"))
		require.Len(t, records, 1)
		assert.Equal(t, "sdb", records[0].Name)
	})

	t.Run("SkipsNonNumericCounters", func(t *testing.T) {
		records := Parse(strings.NewReader("8 0 sda x 2 3 4 5 6 7 8 9 10 11\n"))
		assert.Empty(t, records)
	})

	t.Run("ToleratesLeadingWhitespaceAndBlankLines", func(t *testing.T) {
		input := "\n\n   8       0 sda 1 2 3 4 5 6 7 8 9 10 11\n\n"
		records := Parse(strings.NewReader(input))
		require.Len(t, records, 1)
		assert.Equal(t, Record{Name: "sda", Reads: 1, Writes: 5}, records[0])
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Empty(t, Parse(strings.NewReader("")))
	})
}

func TestSourceRead(t *testing.T) {
	t.Run("ReadsSnapshotFromFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diskstats")
		require.NoError(t, os.WriteFile(path, []byte(sampleDiskstats), 0644))

		src := NewSource(path)
		records, err := src.Read()
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("OpenFailureIsCoded", func(t *testing.T) {
		src := NewSource(filepath.Join(t.TempDir(), "missing"))
		_, err := src.Read()
		require.Error(t, err)

		he, ok := errors.AsHushError(err)
		require.True(t, ok)
		assert.EqualValues(t, errors.MonitorStatsOpenFailed, he.Code)
	})
}
