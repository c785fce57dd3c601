// Package bank models a single simulated DRAM bank: a fixed matrix of
// equally sized rows plus the one-row buffer through which all in-bank
// computation reads. Only one row is ever "hot"; loading the row that is
// already cached is a no-op, mirroring row-buffer locality. Stores write
// around the buffer directly into the array.
package bank

import (
	"fmt"

	"github.com/hupe1980/pimsim/gen"
)

// SentinelSize is the width of the debug sentinel in bytes.
const SentinelSize = 8

// Bank is a fixed array of rows with a single cached row buffer.
// A Bank is exclusively owned by one simulator instance and is not safe for
// concurrent use; bank-level parallelism means one Bank per goroutine.
type Bank struct {
	mem      []byte // numRows * rowBytes, row-major
	rowBytes int
	numRows  int

	buf     []byte // the row buffer, always mirrors exactly one full row
	current int
}

// New creates a bank of numRows rows of rowBytes bytes each, zero-filled,
// with the row buffer mirroring row 0.
func New(numRows, rowBytes int) *Bank {
	b := &Bank{
		mem:      make([]byte, numRows*rowBytes),
		rowBytes: rowBytes,
		numRows:  numRows,
		buf:      make([]byte, rowBytes),
	}
	b.load(0)
	return b
}

// NumRows returns the number of rows in the bank.
func (b *Bank) NumRows() int { return b.numRows }

// RowBytes returns the width of one row in bytes.
func (b *Bank) RowBytes() int { return b.rowBytes }

// Row returns the backing bytes of a row. This is the external inspection
// path (dumps, oracles); in-bank computation must go through Load and the
// row buffer instead.
func (b *Bank) Row(row int) []byte {
	off := row * b.rowBytes
	return b.mem[off : off+b.rowBytes]
}

// Load makes the row buffer mirror the given row. If the row is already
// cached nothing happens. It reports whether an activation occurred
// (false = row-buffer hit).
func (b *Bank) Load(row int) bool {
	if row == b.current {
		return false
	}
	b.load(row)
	return true
}

func (b *Bank) load(row int) {
	copy(b.buf, b.Row(row))
	b.current = row
}

// Buffer returns the row buffer contents. The slice aliases internal state
// and is only valid until the next Load.
func (b *Bank) Buffer() []byte { return b.buf }

// CurrentRow returns the row the buffer currently mirrors.
func (b *Bank) CurrentRow() int { return b.current }

// StoreRow writes data into the target row, bypassing the row buffer.
// Stores do not refresh the buffer: a store to the currently cached row
// leaves the cached copy stale until a different row is activated in
// between. len(data) must equal RowBytes.
func (b *Bank) StoreRow(row int, data []byte) {
	if len(data) != b.rowBytes {
		panic(fmt.Sprintf("bank: store of %d bytes into %d-byte row", len(data), b.rowBytes))
	}
	copy(b.Row(row), data)
}

// Layout fixes the row regions used by Initialize.
type Layout struct {
	// RecordBaseRow is the first record row. Rows below it are utility rows.
	RecordBaseRow int

	// HitmapBaseRow is the first hitmap row; record rows end here.
	HitmapBaseRow int

	// HitmapRows is the total number of hitmap rows across all hitmaps.
	HitmapRows int
}

// Initialize fills the bank in row order: utility rows below RecordBaseRow
// are zeroed, record rows are filled from g, hitmap rows are seeded all-ones
// (default "match"), and everything above is zeroed. Afterwards an 8-byte
// zero sentinel is placed at row HitmapBaseRow-10, bytes 0..7, and the row
// buffer is reset to row 0. The sentinel is a layout verification marker for
// external trace diffing; its placement and value are fixed.
func (b *Bank) Initialize(l Layout, g gen.DataGenerator) {
	for row := 0; row < b.numRows; row++ {
		r := b.Row(row)
		switch {
		case row < l.RecordBaseRow:
			clear(r)
		case row < l.HitmapBaseRow:
			g.Fill(r)
		case row < l.HitmapBaseRow+l.HitmapRows:
			for i := range r {
				r[i] = 0xFF
			}
		default:
			clear(r)
		}
	}

	sentinel := b.Row(l.HitmapBaseRow - 10)
	clear(sentinel[:SentinelSize])

	b.load(0)
}
