package scan

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pimsim/bank"
	"github.com/hupe1980/pimsim/layout"
)

func seedHitmap(b *bank.Bank, region layout.HitmapRegion) {
	ones := bytes.Repeat([]byte{0xFF}, b.RowBytes())
	for i := 0; i < region.Rows; i++ {
		b.StoreRow(region.Row(i), ones)
	}
}

func TestRunPacksResultsMSBFirstWithOnePadding(t *testing.T) {
	// Two 8-byte records per 16-byte row, four records total. Records 0, 1
	// and 3 carry the operand, record 2 does not, so the first hitmap byte
	// is 1101 followed by four 1-pad bits: 0xDF.
	b := bank.New(8, 16)
	value := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	copy(b.Row(1)[0:], value)
	copy(b.Row(1)[8:], value)
	copy(b.Row(2)[0:], []byte{0x01, 0x02, 0x03, 0x04})
	copy(b.Row(2)[8:], value)

	region := layout.HitmapRegion{BaseRow: 6, Rows: 2}
	seedHitmap(b, region)

	e := New(b, Params{
		Geometry: layout.Geometry{RecordBaseRow: 1, RecordSizeBytes: 8, RowBufferBytes: 16},
		Records:  4,
		Value:    value,
		Hitmap:   region,
	})

	stats, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 3, stats.Matches)
	assert.Equal(t, 2, stats.RowActivations)
	assert.Equal(t, 2, stats.BufferHits)
	assert.Equal(t, 2, stats.HitmapRowsStored)

	want := bytes.Repeat([]byte{0xFF}, 16)
	want[0] = 0xDF
	assert.Equal(t, want, b.Row(region.Row(0)))
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 16), b.Row(region.Row(1)))
}

func TestRunFlushesAcrossHitmapRows(t *testing.T) {
	// Tiny 2-byte rows so the register flushes every 16 records. One-byte
	// records alternate match/mismatch, giving 0xAA in every result byte.
	b := bank.New(40, 2)
	value := []byte{0x77}

	for index := 0; index < 32; index++ {
		row, off := layout.Geometry{RecordBaseRow: 0, RecordSizeBytes: 1, RowBufferBytes: 2}.Locate(index)
		if index%2 == 0 {
			b.Row(row)[off] = 0x77
		} else {
			b.Row(row)[off] = 0x11
		}
	}

	region := layout.HitmapRegion{BaseRow: 20, Rows: 4}
	seedHitmap(b, region)

	e := New(b, Params{
		Geometry: layout.Geometry{RecordBaseRow: 0, RecordSizeBytes: 1, RowBufferBytes: 2},
		Records:  32,
		Value:    value,
		Hitmap:   region,
	})

	stats, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 16, stats.Matches)
	// Two register-boundary flushes plus the unconditional final flush,
	// which re-stores the already aligned second row.
	assert.Equal(t, 3, stats.HitmapRowsStored)

	assert.Equal(t, []byte{0xAA, 0xAA}, b.Row(region.Row(0)))
	assert.Equal(t, []byte{0xAA, 0xAA}, b.Row(region.Row(1)))
	assert.Equal(t, []byte{0xFF, 0xFF}, b.Row(region.Row(2)), "untouched hitmap rows keep the all-ones default")
}

func TestRunSpanningRecords(t *testing.T) {
	// 32-byte records over 16-byte rows: each record starts on its own row
	// pair and the predicate field lives in the first row.
	b := bank.New(12, 16)
	value := []byte{0xCA, 0xFE}

	copy(b.Row(1), bytes.Repeat([]byte{0x33}, 16))
	copy(b.Row(1)[0:], value)
	copy(b.Row(3), bytes.Repeat([]byte{0x44}, 16))

	region := layout.HitmapRegion{BaseRow: 8, Rows: 2}
	seedHitmap(b, region)

	e := New(b, Params{
		Geometry: layout.Geometry{RecordBaseRow: 1, RecordSizeBytes: 32, RowBufferBytes: 16},
		Records:  2,
		Value:    value,
		Hitmap:   region,
	})

	stats, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, 2, stats.RowActivations)
	assert.Equal(t, 0, stats.BufferHits)

	// Record 0 matched, record 1 did not, six 1-pad bits: 1011 1111.
	assert.Equal(t, byte(0xBF), b.Row(region.Row(0))[0])
}

func TestRunCanceledContext(t *testing.T) {
	b := bank.New(8, 16)
	region := layout.HitmapRegion{BaseRow: 6, Rows: 2}

	e := New(b, Params{
		Geometry: layout.Geometry{RecordBaseRow: 1, RecordSizeBytes: 8, RowBufferBytes: 16},
		Records:  4,
		Value:    []byte{0x00},
		Hitmap:   region,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunZeroRecords(t *testing.T) {
	// With nothing scanned there is nothing to pad; the unconditional final
	// flush still fires and writes the untouched zero register into the
	// first hitmap row.
	b := bank.New(8, 4)
	region := layout.HitmapRegion{BaseRow: 6, Rows: 1}
	seedHitmap(b, region)

	e := New(b, Params{
		Geometry: layout.Geometry{RecordBaseRow: 1, RecordSizeBytes: 4, RowBufferBytes: 4},
		Records:  0,
		Value:    []byte{0x00},
		Hitmap:   region,
	})

	stats, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Records)
	assert.Equal(t, 1, stats.HitmapRowsStored)
	assert.Equal(t, make([]byte, 4), b.Row(region.Row(0)))
}
