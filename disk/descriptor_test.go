package disk

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, vol *Volume, user int, name string, data []byte) *FileEntry {
	t.Helper()
	f, err := vol.Create(user, name, Attributes{})
	require.NoError(t, err)

	d, err := vol.Open(f, FORK_DATA, false)
	require.NoError(t, err)
	n, err := d.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, d.Close())
	return f
}

func readFile(t *testing.T, vol *Volume, f *FileEntry, fork Fork) []byte {
	t.Helper()
	d, err := vol.Open(f, fork, true)
	require.NoError(t, err)
	defer d.Close()
	data, err := io.ReadAll(d)
	require.NoError(t, err)
	return data
}

func TestWriteReadBack(t *testing.T) {

	vol := testVolume(t)

	data := make([]byte, 3000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	f := writeFile(t, vol, 0, "ROUND.DAT", data)

	assert.Equal(t, int64(3000), f.Size(vol.Config()))
	assert.Equal(t, data, readFile(t, vol, f, FORK_DATA))

	// survives a rescan of the same device
	vol2, err := Mount(vol.Device(), vol.Config())
	require.NoError(t, err)
	f2, err := vol2.Find(0, "ROUND.DAT")
	require.NoError(t, err)
	assert.Equal(t, data, readFile(t, vol2, f2, FORK_DATA))
}

func TestWriteSpansExtents(t *testing.T) {

	vol := testVolume(t)
	span := vol.Config().ExtentSpan()

	data := bytes.Repeat([]byte{0xAB}, span+300)
	f := writeFile(t, vol, 0, "SPAN.DAT", data)

	require.Len(t, f.Extents, 2)
	assert.Equal(t, vol.Config().RecordsPerExtent(), f.Extents[0].Records)
	assert.Equal(t, 0, f.Extents[0].ByteCount)
	assert.Equal(t, 3, f.Extents[1].Records) // ceil(300/128)
	assert.Equal(t, 300%128, f.Extents[1].ByteCount)

	assert.Equal(t, data, readFile(t, vol, f, FORK_DATA))
}

func TestForkLengths(t *testing.T) {

	vol := testVolume(t)

	data := append([]byte("HELLO"), 0x1A)
	data = append(data, bytes.Repeat([]byte{'X'}, 300-len(data))...)
	f := writeFile(t, vol, 0, "DOC.TXT", data)

	for fork, want := range map[Fork]int64{
		FORK_DATA: 300,
		FORK_RAW:  384, // 3 full records
		FORK_TEXT: 5,   // up to the ^Z sentinel
	} {
		d, err := vol.Open(f, fork, true)
		require.NoError(t, err)
		assert.Equal(t, want, d.Length(), fork.String())
		require.NoError(t, d.Close())
	}
}

func TestContainerLengthFromRecords(t *testing.T) {

	// a directory record claiming 5 records with byte count 0 is exactly
	// 640 bytes, however much of the block holds junk
	vol := mountWithRecords(t, map[int][]byte{
		0: fileRecord(t, 0, "RC.DAT", 0, 5, 0, 10),
	})

	f := vol.Entries()[0]
	d, err := vol.Open(f, FORK_DATA, true)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, int64(640), d.Length())
	data, err := io.ReadAll(d)
	require.NoError(t, err)
	assert.Len(t, data, 640)
}

func TestSparseReadsZero(t *testing.T) {

	vol := testVolume(t)
	f, err := vol.Create(0, "SPARSE.DAT", Attributes{})
	require.NoError(t, err)

	d, err := vol.Open(f, FORK_DATA, false)
	require.NoError(t, err)

	payload := []byte("tail")
	_, err = d.WriteAt(payload, 3000)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	// only the block actually written is allocated
	assert.Len(t, f.Blocks(), 1)
	assert.Equal(t, int64(3004), f.Size(vol.Config()))

	got := readFile(t, vol, f, FORK_DATA)
	require.Len(t, got, 3004)
	assert.Equal(t, make([]byte, 3000), got[:3000])
	assert.Equal(t, payload, got[3000:])
}

func TestSeekSemantics(t *testing.T) {

	vol := testVolume(t)
	f := writeFile(t, vol, 0, "SEEK.DAT", []byte("0123456789"))

	d, err := vol.Open(f, FORK_DATA, false)
	require.NoError(t, err)
	defer d.Close()

	pos, err := d.Seek(4, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	pos, err = d.Seek(2, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	pos, err = d.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(9), pos)

	_, err = d.Seek(-20, io.SeekStart)
	assert.Error(t, err)

	// seeking past end-of-file is allowed; writing there extends the file
	pos, err = d.Seek(100, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos)
	_, err = d.Write([]byte("!"))
	require.NoError(t, err)
	assert.Equal(t, int64(101), d.Length())
}

func TestReadAtEOFBoundary(t *testing.T) {

	vol := testVolume(t)
	f := writeFile(t, vol, 0, "EDGE.DAT", []byte("0123456789"))

	d, err := vol.Open(f, FORK_DATA, true)
	require.NoError(t, err)
	defer d.Close()

	p := make([]byte, 8)
	n, err := d.ReadAt(p, 6)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []byte("6789"), p[:4])

	_, err = d.ReadAt(p, 10)
	assert.ErrorIs(t, err, io.EOF)

	_, err = d.ReadAt(p, -1)
	assert.Error(t, err)
}

func TestClosedDescriptor(t *testing.T) {

	vol := testVolume(t)
	f := writeFile(t, vol, 0, "DONE.DAT", []byte("x"))

	d, err := vol.Open(f, FORK_DATA, false)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = d.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.Write([]byte("y"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, d.Close(), ErrClosed)

	assert.False(t, d.CanRead())
	assert.False(t, d.CanWrite())
}

func TestReadOnlyDescriptorRefusesWrites(t *testing.T) {

	vol := testVolume(t)
	f := writeFile(t, vol, 0, "RO.DAT", []byte("x"))

	d, err := vol.Open(f, FORK_DATA, true)
	require.NoError(t, err)
	defer d.Close()

	assert.True(t, d.CanRead())
	assert.False(t, d.CanWrite())
	_, err = d.Write([]byte("y"))
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestReadOnlyAttributeBlocksWrites(t *testing.T) {

	vol := testVolume(t)
	f := writeFile(t, vol, 0, "LOCKED.DAT", []byte("keep"))
	require.NoError(t, vol.SetAttributes(f, Attributes{ReadOnly: true}))

	_, err := vol.Open(f, FORK_DATA, false)
	assert.ErrorIs(t, err, ErrReadOnly)

	// read access is unaffected
	assert.Equal(t, []byte("keep"), readFile(t, vol, f, FORK_DATA))
}

func TestVolumeFullMidWrite(t *testing.T) {

	vol := testVolume(t)
	free := vol.Health().FreeBlocks
	bs := vol.Config().BlockSize

	f, err := vol.Create(0, "HUGE.DAT", Attributes{})
	require.NoError(t, err)
	d, err := vol.Open(f, FORK_DATA, false)
	require.NoError(t, err)
	defer d.Close()

	// one byte more than the volume can hold
	n, err := d.Write(make([]byte, free*bs+1))
	assert.ErrorIs(t, err, ErrVolumeFull)
	assert.Equal(t, free*bs, n)

	// everything written before the failure stays readable
	assert.Equal(t, int64(free*bs), d.Length())
	assert.Zero(t, vol.Health().FreeBlocks)
}

func TestOverwriteInPlace(t *testing.T) {

	vol := testVolume(t)
	f := writeFile(t, vol, 0, "EDIT.DAT", []byte("aaaaaaaaaa"))

	d, err := vol.Open(f, FORK_DATA, false)
	require.NoError(t, err)
	_, err = d.WriteAt([]byte("BB"), 4)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	assert.Equal(t, []byte("aaaaBBaaaa"), readFile(t, vol, f, FORK_DATA))
	assert.Equal(t, int64(10), f.Size(vol.Config()))
}
