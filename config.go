package pimsim

import (
	"fmt"

	"github.com/hupe1980/pimsim/layout"
)

// Config is the complete externally settable geometry and query surface of
// one simulated bank. It is immutable after construction; Validate is run
// once by New before any record is processed.
type Config struct {
	// BankSizeBytes is the total bank capacity.
	BankSizeBytes int

	// RowBufferBytes is the width of one row and of the row buffer.
	RowBufferBytes int

	// BankRows is the number of rows (BankSizeBytes / RowBufferBytes).
	BankRows int

	// HitmapCount is the number of named hitmaps sharing the hitmap area.
	HitmapCount int

	// IndexSizeBytes is the width of a record's index portion.
	IndexSizeBytes int

	// RecordSizeBytes is the fixed width of one record.
	RecordSizeBytes int

	// DataSizeBytes is the record payload width
	// (RecordSizeBytes - IndexSizeBytes).
	DataSizeBytes int

	// RowsForRecords is the number of rows reserved for record storage.
	RowsForRecords int

	// RowsForHitmaps is the number of rows shared by all hitmaps.
	RowsForHitmaps int

	// RecordsProcessable is how many records one run processes.
	RecordsProcessable int

	// HitmapBaseRow is the first hitmap row.
	HitmapBaseRow int

	// RecordBaseRow is the first record row.
	RecordBaseRow int

	// PiSubindexOffsetBytes is the predicate field offset within a record.
	PiSubindexOffsetBytes int

	// PiElementSizeBytes is the predicate field width.
	PiElementSizeBytes int

	// Value is the comparison operand; len(Value) must equal
	// PiElementSizeBytes.
	Value []byte

	// Negate is carried on the configuration surface but is not applied to
	// the comparison result, matching the reference logic.
	Negate bool

	// HitmapIndex selects the hitmap receiving the results.
	HitmapIndex int
}

// DefaultConfig mirrors the reference hardware constants: a 32 MiB bank of
// 1 KiB rows, three hitmaps, 512-byte records with an 8-byte index, and an
// all-zeros equality target on the first 8 index bytes.
func DefaultConfig() Config {
	return Config{
		BankSizeBytes:         33554432,
		RowBufferBytes:        1024,
		BankRows:              32768,
		HitmapCount:           3,
		IndexSizeBytes:        8,
		RecordSizeBytes:       512,
		DataSizeBytes:         504,
		RowsForRecords:        32220,
		RowsForHitmaps:        24,
		RecordsProcessable:    64440,
		HitmapBaseRow:         32734,
		RecordBaseRow:         514,
		PiSubindexOffsetBytes: 0,
		PiElementSizeBytes:    8,
		Value:                 make([]byte, 8),
		Negate:                false,
		HitmapIndex:           1,
	}
}

// recordGeometry returns the record placement arithmetic of the bank.
func (c Config) recordGeometry() layout.Geometry {
	return layout.Geometry{
		RecordBaseRow:   c.RecordBaseRow,
		RecordSizeBytes: c.RecordSizeBytes,
		RowBufferBytes:  c.RowBufferBytes,
	}
}

// hitmapRegion returns the row region of the targeted hitmap.
func (c Config) hitmapRegion() layout.HitmapRegion {
	return layout.HitmapRegionFor(c.HitmapBaseRow, c.RowsForHitmaps, c.HitmapCount, c.HitmapIndex)
}

// Validate checks the divisibility and range invariants of the geometry.
// All violations are reported as ErrInvalidGeometry; a Config that passes
// cannot fail mid-run.
func (c Config) Validate() error {
	if c.RowBufferBytes <= 0 {
		return fmt.Errorf("%w: row buffer size %d", ErrInvalidGeometry, c.RowBufferBytes)
	}
	if c.BankRows <= 0 {
		return fmt.Errorf("%w: bank rows %d", ErrInvalidGeometry, c.BankRows)
	}
	if c.BankSizeBytes != c.BankRows*c.RowBufferBytes {
		return fmt.Errorf("%w: bank size %d != %d rows * %d bytes",
			ErrInvalidGeometry, c.BankSizeBytes, c.BankRows, c.RowBufferBytes)
	}
	if c.RecordSizeBytes <= 0 {
		return fmt.Errorf("%w: record size %d", ErrInvalidGeometry, c.RecordSizeBytes)
	}
	if c.RecordSizeBytes <= c.RowBufferBytes {
		if c.RowBufferBytes%c.RecordSizeBytes != 0 {
			return fmt.Errorf("%w: record size %d does not divide row buffer %d",
				ErrInvalidGeometry, c.RecordSizeBytes, c.RowBufferBytes)
		}
	} else if c.RecordSizeBytes%c.RowBufferBytes != 0 {
		return fmt.Errorf("%w: row buffer %d does not divide record size %d",
			ErrInvalidGeometry, c.RowBufferBytes, c.RecordSizeBytes)
	}
	if c.IndexSizeBytes < 0 || c.DataSizeBytes < 0 || c.IndexSizeBytes+c.DataSizeBytes != c.RecordSizeBytes {
		return fmt.Errorf("%w: index %d + data %d != record size %d",
			ErrInvalidGeometry, c.IndexSizeBytes, c.DataSizeBytes, c.RecordSizeBytes)
	}

	if c.HitmapCount <= 0 {
		return fmt.Errorf("%w: hitmap count %d", ErrInvalidGeometry, c.HitmapCount)
	}
	if c.RowsForHitmaps%c.HitmapCount != 0 {
		return fmt.Errorf("%w: %d hitmap rows not divisible by %d hitmaps",
			ErrInvalidGeometry, c.RowsForHitmaps, c.HitmapCount)
	}
	if c.HitmapIndex < 0 || c.HitmapIndex >= c.HitmapCount {
		return fmt.Errorf("%w: hitmap index %d out of [0,%d)",
			ErrInvalidGeometry, c.HitmapIndex, c.HitmapCount)
	}

	if c.RecordBaseRow < 0 || c.RecordBaseRow > c.HitmapBaseRow {
		return fmt.Errorf("%w: record base row %d above hitmap base row %d",
			ErrInvalidGeometry, c.RecordBaseRow, c.HitmapBaseRow)
	}
	// The sentinel row must exist below the hitmap region.
	if c.HitmapBaseRow < 10 {
		return fmt.Errorf("%w: hitmap base row %d leaves no sentinel row",
			ErrInvalidGeometry, c.HitmapBaseRow)
	}
	if c.HitmapBaseRow+c.RowsForHitmaps > c.BankRows {
		return fmt.Errorf("%w: hitmap region [%d,%d) exceeds %d rows",
			ErrInvalidGeometry, c.HitmapBaseRow, c.HitmapBaseRow+c.RowsForHitmaps, c.BankRows)
	}

	if c.RecordsProcessable < 0 {
		return fmt.Errorf("%w: records processable %d", ErrInvalidGeometry, c.RecordsProcessable)
	}
	if c.RecordsProcessable > 0 {
		lastRow, _ := c.recordGeometry().Locate(c.RecordsProcessable - 1)
		if c.RecordSizeBytes > c.RowBufferBytes {
			lastRow += c.RecordSizeBytes/c.RowBufferBytes - 1
		}
		if lastRow >= c.HitmapBaseRow {
			return fmt.Errorf("%w: record %d lands on row %d inside the hitmap region",
				ErrInvalidGeometry, c.RecordsProcessable-1, lastRow)
		}
	}

	// Result bits must fit the targeted hitmap's rows.
	hitmapBits := c.RowsForHitmaps / c.HitmapCount * c.RowBufferBytes * 8
	resultBits := (c.RecordsProcessable + 7) / 8 * 8
	if resultBits > hitmapBits {
		return fmt.Errorf("%w: %d result bits exceed hitmap capacity %d",
			ErrInvalidGeometry, resultBits, hitmapBits)
	}

	if c.PiElementSizeBytes <= 0 || len(c.Value) != c.PiElementSizeBytes {
		return fmt.Errorf("%w: value of %d bytes, predicate element size %d",
			ErrInvalidGeometry, len(c.Value), c.PiElementSizeBytes)
	}
	if c.PiSubindexOffsetBytes < 0 ||
		c.PiSubindexOffsetBytes+c.PiElementSizeBytes > c.RecordSizeBytes {
		return fmt.Errorf("%w: predicate field [%d,%d) exceeds record size %d",
			ErrInvalidGeometry, c.PiSubindexOffsetBytes,
			c.PiSubindexOffsetBytes+c.PiElementSizeBytes, c.RecordSizeBytes)
	}
	// The comparison only ever sees the single loaded row, so the field must
	// fit the row buffer. For records sharing a row this is implied; records
	// spanning rows start at offset zero and can place the field beyond it.
	if c.PiSubindexOffsetBytes+c.PiElementSizeBytes > c.RowBufferBytes {
		return fmt.Errorf("%w: predicate field [%d,%d) not readable from a %d-byte row",
			ErrInvalidGeometry, c.PiSubindexOffsetBytes,
			c.PiSubindexOffsetBytes+c.PiElementSizeBytes, c.RowBufferBytes)
	}

	return nil
}
