package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateLowestFree(t *testing.T) {

	vol := testVolume(t)
	f, err := vol.Create(0, "FIRST.DAT", Attributes{})
	require.NoError(t, err)

	// the first data block after the directory is pointer 2 on this layout
	p, err := vol.alloc.allocate(f)
	require.NoError(t, err)
	assert.Equal(t, 2, p)

	p, err = vol.alloc.allocate(f)
	require.NoError(t, err)
	assert.Equal(t, 3, p)

	phys, _, err := vol.Config().ResolvePointer(2)
	require.NoError(t, err)
	assert.True(t, vol.alloc.InUse(phys))

	vol.alloc.release(f)
	assert.False(t, vol.alloc.InUse(phys))
	assert.Equal(t, 90, vol.alloc.FreeBlocks())
}

func TestReconstructPreMarksDirectory(t *testing.T) {

	vol := testVolume(t)
	cfg := vol.Config()

	for b := 0; b < cfg.DirBlocks; b++ {
		assert.True(t, vol.alloc.InUse(cfg.BootBlocks+b))
	}
	// boot blocks are reserved by layout, not allocation
	assert.False(t, vol.alloc.InUse(0))
}

func TestAllocationExhaustion(t *testing.T) {

	vol := testVolume(t)
	f, err := vol.Create(0, "EAT.DAT", Attributes{})
	require.NoError(t, err)

	for i := 0; i < 90; i++ {
		_, err := vol.alloc.allocate(f)
		require.NoError(t, err)
	}
	_, err = vol.alloc.allocate(f)
	assert.ErrorIs(t, err, ErrVolumeFull)
}
