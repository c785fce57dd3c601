// Package scan implements the in-bank selection predicate: a bit-serial
// equality comparison over every record, accumulated MSB-first into a
// shift-register byte, packed into a row-sized register, and flushed into
// the rows of one targeted hitmap.
package scan

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hupe1980/pimsim/bank"
	"github.com/hupe1980/pimsim/layout"
)

// ctxCheckInterval is how many records are processed between context checks.
const ctxCheckInterval = 4096

// Params fixes one equality scan.
type Params struct {
	// Geometry locates records inside the bank.
	Geometry layout.Geometry

	// Records is the number of records to process, in ascending index order.
	Records int

	// SubindexOffsetBytes is the byte offset of the predicate field within
	// a record.
	SubindexOffsetBytes int

	// Value is the comparison operand; its length is the predicate element
	// size. Equality is byte-for-byte, never numeric.
	Value []byte

	// Negate is carried from the configuration surface but is not applied
	// to the comparison result, matching the reference behavior.
	Negate bool

	// Hitmap is the row region receiving the result bits.
	Hitmap layout.HitmapRegion
}

// Stats are the functional counters of one scan.
type Stats struct {
	// Records is the number of records compared.
	Records int

	// Matches is the number of records equal to Value.
	Matches int

	// RowActivations is the number of rows copied into the row buffer.
	RowActivations int

	// BufferHits is the number of loads satisfied by the cached row.
	BufferHits int

	// HitmapRowsStored is the number of register flushes into the hitmap
	// region, including the final padded flush.
	HitmapRowsStored int
}

// Engine evaluates the predicate over a bank. State is exactly the hardware
// discipline: one shift-register byte, a bit counter, a byte counter and a
// row-sized accumulator register. The engine is single-use.
type Engine struct {
	bank *bank.Bank
	p    Params

	bitmap byte   // shift register of the last <=8 results
	bitdex int    // bits accumulated since the start
	hitdex int    // bytes flushed into the register since the start
	v0     []byte // accumulator register, one row wide
}

// New creates an engine for one scan over b.
func New(b *bank.Bank, p Params) *Engine {
	return &Engine{
		bank: b,
		p:    p,
		v0:   make([]byte, b.RowBytes()),
	}
}

// Run processes records 0..Records-1 in ascending order. The order is
// load-bearing: result n lands in bit 7-(n%8) of hitmap byte n/8. After the
// last record, remaining bit positions up to the next full register are
// padded with 1-bits (the all-ones hitmap default) and the final register is
// flushed unconditionally.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	rowBytes := e.bank.RowBytes()

	for index := 0; index < e.p.Records; index++ {
		if index%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, fmt.Errorf("scan aborted at record %d: %w", index, err)
			}
		}

		row, offset := e.p.Geometry.Locate(index)
		if e.bank.Load(row) {
			stats.RowActivations++
		} else {
			stats.BufferHits++
		}

		field := e.bank.Buffer()[offset+e.p.SubindexOffsetBytes:]
		equal := bytes.Equal(field[:len(e.p.Value)], e.p.Value)
		if equal {
			stats.Matches++
		}
		stats.Records++

		e.shift(equal, &stats)
	}

	// Pad the trailing byte and register with 1-bits and flush once more.
	// The flush happens even when the register is already row-aligned, which
	// re-stores identical bytes and keeps the store count deterministic.
	for e.hitdex%rowBytes != 0 || e.bitdex%8 != 0 {
		e.shift(true, &stats)
	}
	e.flush(&stats)

	return stats, nil
}

// shift folds one boolean result into the running byte and moves it onward
// on byte and register boundaries.
func (e *Engine) shift(result bool, stats *Stats) {
	e.bitmap <<= 1
	if result {
		e.bitmap |= 1
	}
	e.bitdex++

	if e.bitdex%8 != 0 {
		return
	}

	rowBytes := e.bank.RowBytes()
	e.v0[e.hitdex%rowBytes] = e.bitmap
	e.hitdex++
	if e.hitdex%rowBytes == 0 {
		e.flush(stats)
	}
}

// flush stores the accumulator register into the next row of the targeted
// hitmap region.
func (e *Engine) flush(stats *Stats) {
	rowBytes := e.bank.RowBytes()
	e.bank.StoreRow(e.p.Hitmap.Row((e.hitdex-1)/rowBytes), e.v0)
	stats.HitmapRowsStored++
}
