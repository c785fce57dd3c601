// Package oracle is the CPU-side correctness check for in-bank scans. It
// evaluates the same equality predicate over the record region through the
// conventional flat view of the bank, extracts the produced hitmap bits, and
// diffs the two bit-vectors.
package oracle

import (
	"bytes"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/pimsim/bank"
	"github.com/hupe1980/pimsim/layout"
)

// Matches evaluates the predicate over records 0..records-1 by reading the
// bank rows directly, without the row buffer, and returns the set of
// matching record indexes. Equality is byte-for-byte over len(value) bytes.
func Matches(b *bank.Bank, g layout.Geometry, records, subindexOffset int, value []byte) *roaring.Bitmap {
	out := roaring.New()
	for index := 0; index < records; index++ {
		row, offset := g.Locate(index)
		field := b.Row(row)[offset+subindexOffset:]
		if bytes.Equal(field[:len(value)], value) {
			out.Add(uint32(index))
		}
	}
	return out
}

// ExtractHitmap reads nbits result bits out of a hitmap region, MSB-first
// within each byte, and returns the set record indexes. Pad bits beyond the
// processed record count are excluded by nbits.
func ExtractHitmap(b *bank.Bank, region layout.HitmapRegion, nbits int) *roaring.Bitmap {
	out := roaring.New()
	rowBytes := b.RowBytes()
	bitsPerRow := rowBytes * 8

	for bit := 0; bit < nbits; bit++ {
		row := b.Row(region.Row(bit / bitsPerRow))
		byteInRow := bit % bitsPerRow / 8
		if row[byteInRow]&(1<<(7-bit%8)) != 0 {
			out.Add(uint32(bit))
		}
	}
	return out
}

// Diff returns the record indexes on which two bit-vectors disagree, in
// ascending order. Empty means the scan matches the oracle exactly.
func Diff(want, got *roaring.Bitmap) []uint32 {
	x := roaring.Xor(want, got)
	return x.ToArray()
}
