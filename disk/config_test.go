package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaPresetsSelfConsistent(t *testing.T) {

	for _, id := range []MediaID{MEDIA_IBM_3740, MEDIA_OSBORNE_1, MEDIA_KAYPRO_II, MEDIA_HD_8MB} {
		cfg := id.Config()
		geo := id.Geometry()

		require.NoError(t, cfg.Validate(), id.String())
		require.NoError(t, geo.Validate(), id.String())
		assert.Equal(t, cfg.TotalBlocks*cfg.BlockSize, geo.TotalBytes(), id.String())
		assert.Zero(t, cfg.BlockSize%geo.SectorSize, id.String())
	}
}

func TestIBM3740BlockAlignment(t *testing.T) {

	cfg := MEDIA_IBM_3740.Config()
	geo := MEDIA_IBM_3740.Geometry()

	// a 26x128 track is 3,328 bytes; four tracks make exactly 13 blocks,
	// so the track count must divide by four for the image to be
	// block-addressable end to end
	assert.Zero(t, geo.Tracks%4)
	assert.Zero(t, geo.TotalBytes()%cfg.BlockSize)
	assert.Equal(t, 247, cfg.TotalBlocks)
	assert.Equal(t, 252928, geo.TotalBytes())
}

func TestPointerWidth(t *testing.T) {
	assert.Equal(t, 1, MEDIA_OSBORNE_1.Config().PointerWidth())
	assert.Equal(t, 1, MEDIA_IBM_3740.Config().PointerWidth())
	assert.Equal(t, 2, MEDIA_HD_8MB.Config().PointerWidth())

	assert.Equal(t, 16, MEDIA_OSBORNE_1.Config().PointersPerExtent())
	assert.Equal(t, 8, MEDIA_HD_8MB.Config().PointersPerExtent())
}

func TestExtentSpan(t *testing.T) {
	// 16 one-byte pointers x 1K blocks caps at the conventional 16K extent
	cfg := MEDIA_OSBORNE_1.Config()
	assert.Equal(t, 128, cfg.RecordsPerExtent())
	assert.Equal(t, 16384, cfg.ExtentSpan())

	// 8 two-byte pointers x 2K blocks, same span
	cfg = MEDIA_HD_8MB.Config()
	assert.Equal(t, 128, cfg.RecordsPerExtent())
	assert.Equal(t, 16384, cfg.ExtentSpan())
}

func TestResolvePointer(t *testing.T) {

	cfg := MEDIA_OSBORNE_1.Config() // 100 blocks, 8 boot, 92 data pointers

	_, _, err := cfg.ResolvePointer(0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	phys, wrapped, err := cfg.ResolvePointer(1)
	require.NoError(t, err)
	assert.Equal(t, 9, phys)
	assert.False(t, wrapped)

	phys, wrapped, err = cfg.ResolvePointer(91)
	require.NoError(t, err)
	assert.Equal(t, 99, phys)
	assert.False(t, wrapped)

	// pointers past the data region wrap into the boot tracks
	phys, wrapped, err = cfg.ResolvePointer(92)
	require.NoError(t, err)
	assert.Equal(t, 0, phys)
	assert.True(t, wrapped)

	phys, wrapped, err = cfg.ResolvePointer(99)
	require.NoError(t, err)
	assert.Equal(t, 7, phys)
	assert.True(t, wrapped)

	// past the wraparound window there is nothing left to alias
	_, _, err = cfg.ResolvePointer(100)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestConfigValidate(t *testing.T) {

	bad := VolumeConfig{BlockSize: 300, TotalBlocks: 100, BootBlocks: 2, DirBlocks: 2}
	assert.ErrorIs(t, bad.Validate(), ErrBadConfig)

	bad = VolumeConfig{BlockSize: 1024, TotalBlocks: 10, BootBlocks: 8, DirBlocks: 2}
	assert.ErrorIs(t, bad.Validate(), ErrBadConfig)

	bad = VolumeConfig{BlockSize: 1024, TotalBlocks: 100, BootBlocks: 2, DirBlocks: 0}
	assert.ErrorIs(t, bad.Validate(), ErrBadConfig)

	// 16 one-byte pointers of 4K blocks would cover 64K, past what the
	// 128-record count field can describe; tail pointers would be
	// unreachable through any file offset
	bad = VolumeConfig{BlockSize: 4096, TotalBlocks: 200, BootBlocks: 2, DirBlocks: 2}
	assert.ErrorIs(t, bad.Validate(), ErrBadConfig)

	// 8K of pointer capacity is fine, extents just number more densely
	ok := VolumeConfig{BlockSize: 512, TotalBlocks: 200, BootBlocks: 2, DirBlocks: 2}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, 64, ok.RecordsPerExtent())
}

func TestValidateDeviceMismatch(t *testing.T) {

	dev, err := BlankImageDevice(MEDIA_OSBORNE_1.Geometry(), 1024)
	require.NoError(t, err)

	cfg := MEDIA_KAYPRO_II.Config() // 200 blocks, device has 100
	assert.ErrorIs(t, cfg.ValidateDevice(dev), ErrBadConfig)
}
