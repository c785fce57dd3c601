// Package dump renders a bank to its verification text form and diffs it
// against reference traces. One line per row: an address-style label, then
// every byte as two lowercase hex digits, each followed by a space.
//
// The label reproduces the reference trace generator verbatim, including its
// 8-bit truncation of the row index before multiplying by the row size.
// Dumps are diffed byte-for-byte against hardware traces, so the truncation
// is part of the format.
package dump

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/pimsim/bank"
)

const hexDigits = "0123456789abcdef"

// Write renders every row of b, in row order, to w.
func Write(w io.Writer, b *bank.Bank) error {
	bw := bufio.NewWriterSize(w, 64*1024)

	rowBytes := b.RowBytes()
	line := make([]byte, 0, rowBytes*3+12)

	for row := 0; row < b.NumRows(); row++ {
		line = line[:0]
		line = fmt.Appendf(line, "%08x:  ", int(uint8(row))*rowBytes)
		for _, v := range b.Row(row) {
			line = append(line, hexDigits[v>>4], hexDigits[v&0x0F], ' ')
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("dump write failed at row %d: %w", row, err)
		}
	}

	return bw.Flush()
}

// WriteFile renders b into a file at path. A dump that fails midway is not
// valid; the partially written file is removed.
func WriteFile(path string, b *bank.Bank) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}

	if err := Write(f, b); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close dump file: %w", err)
	}
	return nil
}

// Compare reads two dumps line by line and returns the 1-based number of the
// first differing line, or equal=true when both streams match exactly.
func Compare(a, b io.Reader) (line int, equal bool, err error) {
	sa := bufio.NewScanner(a)
	sb := bufio.NewScanner(b)
	sa.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sb.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for line = 1; ; line++ {
		okA := sa.Scan()
		okB := sb.Scan()
		if !okA || !okB {
			if err := sa.Err(); err != nil {
				return line, false, err
			}
			if err := sb.Err(); err != nil {
				return line, false, err
			}
			if okA != okB {
				return line, false, nil // one dump is shorter
			}
			return 0, true, nil
		}
		if sa.Text() != sb.Text() {
			return line, false, nil
		}
	}
}
