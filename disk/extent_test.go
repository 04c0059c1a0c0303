package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRecord(t *testing.T) {
	raw := make([]byte, DIR_ENTRY_SIZE)

	raw[0] = 0xE5
	assert.Equal(t, RecordUnused, ClassifyRecord(raw))

	raw[0] = 0
	assert.Equal(t, RecordFile, ClassifyRecord(raw))

	raw[0] = 31
	assert.Equal(t, RecordFile, ClassifyRecord(raw))

	raw[0] = 0x20
	assert.Equal(t, RecordLabel, ClassifyRecord(raw))

	raw[0] = 0x21
	assert.Equal(t, RecordTimestamp, ClassifyRecord(raw))

	raw[0] = 0x40
	assert.Equal(t, RecordReserved, ClassifyRecord(raw))
}

func TestDecodeEncodeRoundTrip(t *testing.T) {

	cfg := MEDIA_OSBORNE_1.Config()
	require.Equal(t, 1, cfg.PointerWidth())

	raw := make([]byte, DIR_ENTRY_SIZE)
	raw[0] = 7
	copy(raw[1:9], "PIP     ")
	copy(raw[9:12], "COM")
	raw[9] |= 0x80 // read-only
	raw[12] = 3    // extent low
	raw[13] = 100  // byte count
	raw[14] = 1    // extent high
	raw[15] = 128  // records
	for i := 0; i < 16; i++ {
		raw[16+i] = byte(40 + i)
	}

	ext, notes, err := DecodeExtent(raw, cfg)
	require.NoError(t, err)
	assert.Empty(t, notes)

	assert.Equal(t, 7, ext.User)
	assert.Equal(t, 1*32+3, ext.Number)
	assert.Equal(t, 100, ext.ByteCount)
	assert.Equal(t, 128, ext.Records)
	assert.Equal(t, "PIP.COM", ext.DisplayName())
	assert.True(t, ext.ReadOnly())
	assert.False(t, ext.System())
	assert.Equal(t, 40, ext.Pointers[0])
	assert.Equal(t, 55, ext.Pointers[15])

	assert.Equal(t, raw, ext.Encode(cfg))
}

func TestDecodeEncodeRoundTripWidePointers(t *testing.T) {

	cfg := MEDIA_HD_8MB.Config()
	require.Equal(t, 2, cfg.PointerWidth())

	raw := make([]byte, DIR_ENTRY_SIZE)
	raw[0] = 0
	copy(raw[1:9], "LEDGER  ")
	copy(raw[9:12], "DAT")
	raw[15] = 64
	// pointer 0x1234 little-endian in the first slot
	raw[16] = 0x34
	raw[17] = 0x12

	ext, _, err := DecodeExtent(raw, cfg)
	require.NoError(t, err)
	require.Len(t, ext.Pointers, 8)
	assert.Equal(t, 0x1234, ext.Pointers[0])

	assert.Equal(t, raw, ext.Encode(cfg))
}

func TestDecodeExtentNotes(t *testing.T) {

	cfg := MEDIA_OSBORNE_1.Config()

	raw := make([]byte, DIR_ENTRY_SIZE)
	copy(raw[1:9], "WEIRD   ")
	copy(raw[9:12], "   ")
	raw[15] = 0  // no records...
	raw[16] = 10 // ...but an allocated block

	_, notes, err := DecodeExtent(raw, cfg)
	require.NoError(t, err)
	assert.Contains(t, notes, "record count 0 with allocated blocks")

	raw[13] = 200
	_, notes, err = DecodeExtent(raw, cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, notes)
}

func TestDecodeExtentShortRecord(t *testing.T) {
	_, _, err := DecodeExtent(make([]byte, 16), MEDIA_OSBORNE_1.Config())
	assert.Error(t, err)
}

func TestSplitName(t *testing.T) {

	good := []string{"A", "README", "PIP.COM", "abc.txt", "LONGNAME.BIN", "X.Y"}
	for _, s := range good {
		assert.True(t, ValidName(s), s)
	}

	bad := []string{"", ".COM", "TOOLONGNAME.TXT", "PIP.COMX", "A B.TXT",
		"A*.TXT", "A.B.C", "WH[T.TXT", "A=B.TXT"}
	for _, s := range bad {
		assert.False(t, ValidName(s), s)
	}
}

func TestSetNameKeepsAttributes(t *testing.T) {

	e := &Extent{Pointers: make([]int, 16)}
	require.NoError(t, e.SetName("OLD.TXT"))
	e.SetAttributes(Attributes{ReadOnly: true, Archived: true})

	require.NoError(t, e.SetName("new.doc"))
	assert.Equal(t, "NEW.DOC", e.DisplayName())
	assert.True(t, e.ReadOnly())
	assert.False(t, e.System())
	assert.True(t, e.Archived())
}

func TestDisplayNameMasksAttributeBits(t *testing.T) {

	e := &Extent{Pointers: make([]int, 16)}
	require.NoError(t, e.SetName("SECRET.SYS"))
	e.SetAttributes(Attributes{ReadOnly: true, System: true, Archived: true})

	assert.Equal(t, "SECRET.SYS", e.DisplayName())
}
