// Package layout maps logical record and hitmap indexes onto physical bank
// rows. The arithmetic is the contract with the reference hardware layout and
// must be reproduced exactly: a record either shares a row with others
// (RecordSizeBytes <= RowBufferBytes) or spans a whole number of rows.
package layout

// Geometry describes how fixed-width records are packed into bank rows.
type Geometry struct {
	// RecordBaseRow is the first row of the record region.
	RecordBaseRow int

	// RecordSizeBytes is the fixed width of one record.
	RecordSizeBytes int

	// RowBufferBytes is the width of one bank row.
	RowBufferBytes int
}

// RecordsPerRow returns how many whole records fit in one row.
// Zero means a record spans multiple rows.
func (g Geometry) RecordsPerRow() int {
	return g.RowBufferBytes / g.RecordSizeBytes
}

// RowsPerRecord returns how many whole rows one record spans.
// Zero means multiple records share a row.
func (g Geometry) RowsPerRecord() int {
	return g.RecordSizeBytes / g.RowBufferBytes
}

// Locate returns the row holding the start of record index and the byte
// offset of the record within that row.
func (g Geometry) Locate(index int) (row, offset int) {
	recordsPerRow := g.RecordsPerRow()
	if recordsPerRow <= 0 {
		// Multi-row records always start at offset zero.
		return g.RecordBaseRow + index*g.RowsPerRecord(), 0
	}
	return g.RecordBaseRow + index/recordsPerRow, index % recordsPerRow * g.RecordSizeBytes
}

// HitmapRegion is the fixed row range owned by a single named hitmap.
// Regions are assigned at construction time and never move.
type HitmapRegion struct {
	// BaseRow is the first row of this hitmap's region.
	BaseRow int

	// Rows is the number of consecutive rows in the region.
	Rows int
}

// HitmapRegionFor returns the region of hitmap `index` given the shared
// hitmap area: `count` hitmaps dividing `rowsForHitmaps` rows evenly,
// starting at `baseRow`.
func HitmapRegionFor(baseRow, rowsForHitmaps, count, index int) HitmapRegion {
	rowsPer := rowsForHitmaps / count
	return HitmapRegion{
		BaseRow: baseRow + rowsPer*index,
		Rows:    rowsPer,
	}
}

// Row returns the absolute bank row of the i-th row in the region.
func (r HitmapRegion) Row(i int) int {
	return r.BaseRow + i
}
