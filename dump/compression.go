package dump

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the framing used for archived dumps.
type CompressionType uint8

const (
	// CompressionNone stores the dump text as-is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 framing (fast, lighter ratio).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses zstd framing (better ratio for cold archives).
	CompressionZSTD CompressionType = 2
)

// Ext returns the conventional file extension suffix for the compression
// type, e.g. ".memdump.zst".
func (c CompressionType) Ext() string {
	switch c {
	case CompressionLZ4:
		return ".memdump.lz4"
	case CompressionZSTD:
		return ".memdump.zst"
	default:
		return ".memdump"
	}
}

// NewWriter wraps w with the selected compression framing. The returned
// WriteCloser must be closed to flush the frame; closing it does not close w.
func NewWriter(w io.Writer, c CompressionType) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", c)
	}
}

// NewReader wraps r with the matching decompression. The returned ReadCloser
// does not close r.
func NewReader(r io.Reader, c CompressionType) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
