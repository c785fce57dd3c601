package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pimsim/bank"
	"github.com/hupe1980/pimsim/gen"
	"github.com/hupe1980/pimsim/layout"
	"github.com/hupe1980/pimsim/scan"
)

func TestScanAgreesWithOracle(t *testing.T) {
	// Random records, then the in-bank scan and the flat CPU evaluation must
	// produce the same match set bit for bit.
	const (
		rows     = 64
		rowBytes = 32
		records  = 80
	)
	g := layout.Geometry{RecordBaseRow: 12, RecordSizeBytes: 8, RowBufferBytes: rowBytes}
	region := layout.HitmapRegion{BaseRow: 48, Rows: 4}

	b := bank.New(rows, rowBytes)
	b.Initialize(bank.Layout{RecordBaseRow: 12, HitmapBaseRow: 48, HitmapRows: 8}, gen.NewUniform(99))

	// A one-byte operand over random data yields a healthy mix of matches.
	value := []byte{b.Row(12)[0]}

	want := Matches(b, g, records, 0, value)
	require.False(t, want.IsEmpty(), "record 0 always matches itself")

	e := scan.New(b, scan.Params{
		Geometry: g,
		Records:  records,
		Value:    value,
		Hitmap:   region,
	})
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	got := ExtractHitmap(b, region, records)
	assert.Empty(t, Diff(want, got))
}

func TestExtractHitmapBitOrder(t *testing.T) {
	b := bank.New(8, 2)
	region := layout.HitmapRegion{BaseRow: 4, Rows: 2}

	// 1000 0001 0100 0000 ... : indexes 0, 7 and 9 set.
	b.StoreRow(region.Row(0), []byte{0x81, 0x40})

	got := ExtractHitmap(b, region, 16)
	assert.Equal(t, []uint32{0, 7, 9}, got.ToArray())
}

func TestExtractHitmapSpansRows(t *testing.T) {
	b := bank.New(8, 2)
	region := layout.HitmapRegion{BaseRow: 4, Rows: 2}

	b.StoreRow(region.Row(0), []byte{0x00, 0x00})
	b.StoreRow(region.Row(1), []byte{0x80, 0x00})

	// Bit 16 is the first bit of the region's second row.
	got := ExtractHitmap(b, region, 17)
	assert.Equal(t, []uint32{16}, got.ToArray())
}

func TestExtractHitmapExcludesPadBits(t *testing.T) {
	b := bank.New(8, 2)
	region := layout.HitmapRegion{BaseRow: 4, Rows: 1}

	// 1010 0111: the trailing three 1s play the role of padding.
	b.StoreRow(region.Row(0), []byte{0xA7, 0x00})

	got := ExtractHitmap(b, region, 5)
	assert.Equal(t, []uint32{0, 2}, got.ToArray())
}
