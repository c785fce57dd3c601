package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pimsim/bank"
)

func TestWriteLineFormat(t *testing.T) {
	b := bank.New(3, 4)
	copy(b.Row(0), []byte{0x00, 0x01, 0xAB, 0xFF})
	copy(b.Row(1), []byte{0xDE, 0xAD, 0xBE, 0xEF})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, b))

	want := "00000000:  00 01 ab ff \n" +
		"00000004:  de ad be ef \n" +
		"00000008:  00 00 00 00 \n"
	assert.Equal(t, want, buf.String())
}

func TestWriteLabelTruncatesRowIndex(t *testing.T) {
	// The label multiplies only the low 8 bits of the row index, so row 256
	// labels itself like row 0 and row 257 like row 1. Reference traces
	// carry the same labels; the dump must not "fix" them.
	b := bank.New(258, 4)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, b))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 258)

	assert.True(t, strings.HasPrefix(lines[255], "000003fc:  "))
	assert.True(t, strings.HasPrefix(lines[256], "00000000:  "))
	assert.True(t, strings.HasPrefix(lines[257], "00000004:  "))
}

func TestWriteFileAndCompare(t *testing.T) {
	dir := t.TempDir()
	b := bank.New(4, 8)
	copy(b.Row(2), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	pathA := filepath.Join(dir, "a.memdump")
	pathB := filepath.Join(dir, "b.memdump")
	require.NoError(t, WriteFile(pathA, b))
	require.NoError(t, WriteFile(pathB, b))

	fa, err := os.Open(pathA)
	require.NoError(t, err)
	defer fa.Close()
	fb, err := os.Open(pathB)
	require.NoError(t, err)
	defer fb.Close()

	_, equal, err := Compare(fa, fb)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestCompareReportsFirstDifferingLine(t *testing.T) {
	a := "line one\nline two\nline three\n"
	b := "line one\nline 2\nline three\n"

	line, equal, err := Compare(strings.NewReader(a), strings.NewReader(b))
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Equal(t, 2, line)
}

func TestCompareShorterStream(t *testing.T) {
	a := "line one\nline two\n"
	b := "line one\n"

	line, equal, err := Compare(strings.NewReader(a), strings.NewReader(b))
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Equal(t, 2, line)
}

func TestCompressionRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("00000000:  ff ff ff ff \n"), 1000)

	for _, ct := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		var buf bytes.Buffer

		w, err := NewWriter(&buf, ct)
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := NewReader(&buf, ct)
		require.NoError(t, err)
		var out bytes.Buffer
		_, err = out.ReadFrom(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())

		assert.Equal(t, payload, out.Bytes(), "type %d", ct)
	}
}

func TestCompressionExt(t *testing.T) {
	assert.Equal(t, ".memdump", CompressionNone.Ext())
	assert.Equal(t, ".memdump.lz4", CompressionLZ4.Ext())
	assert.Equal(t, ".memdump.zst", CompressionZSTD.Ext())
}

func TestUnknownCompressionType(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, CompressionType(99))
	require.Error(t, err)
	_, err = NewReader(&bytes.Buffer{}, CompressionType(99))
	require.Error(t, err)
}
