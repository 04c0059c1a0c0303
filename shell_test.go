package main

import (
	"path/filepath"
	"testing"

	"github.com/retroimage/cpm8/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartSplit(t *testing.T) {

	verb, args := smartSplit(`put "my file.txt" TARGET.TXT`)
	assert.Equal(t, "put", verb)
	require.Len(t, args, 2)
	assert.Equal(t, "my file.txt", args[0])
	assert.Equal(t, "TARGET.TXT", args[1])

	verb, args = smartSplit("dir")
	assert.Equal(t, "dir", verb)
	assert.Empty(t, args)

	verb, _ = smartSplit("")
	assert.Equal(t, "", verb)

	_, args = smartSplit(`mount my\ disk.img`)
	require.Len(t, args, 1)
	assert.Equal(t, "my disk.img", args[0])
}

func TestMediaFromName(t *testing.T) {

	id, err := mediaFromName("ibm3740")
	require.NoError(t, err)
	assert.Equal(t, disk.MEDIA_IBM_3740, id)

	id, err = mediaFromName("KAYPRO")
	require.NoError(t, err)
	assert.Equal(t, disk.MEDIA_KAYPRO_II, id)

	_, err = mediaFromName("amiga")
	assert.Error(t, err)
}

func resetSlots() {
	for i := range commandVolumes {
		commandVolumes[i] = nil
	}
	commandTarget = -1
}

func TestMountSameImageReusesSlot(t *testing.T) {

	resetSlots()
	defer resetSlots()

	img := filepath.Join(t.TempDir(), "test.img")
	dev, err := disk.BlankImageDevice(disk.MEDIA_OSBORNE_1.Geometry(), 1024)
	require.NoError(t, err)
	require.NoError(t, dev.Save(img))

	require.Equal(t, 0, shellMount([]string{img, "osborne1"}))
	require.Equal(t, 0, commandTarget)

	// a second mount of the same image retargets the existing slot
	// instead of leaving a second mounted volume behind
	require.Equal(t, 0, shellMount([]string{img, "osborne1"}))
	require.Equal(t, 0, commandTarget)

	mounted := 0
	for _, v := range commandVolumes {
		if v != nil {
			mounted++
		}
	}
	assert.Equal(t, 1, mounted)

	require.Equal(t, 0, shellUnmount(nil))
	assert.Equal(t, -1, slotForFile(img))
}

func TestSizeString(t *testing.T) {
	assert.Equal(t, "512b", sizeString(512))
	assert.Equal(t, "1K", sizeString(1024))
	assert.Equal(t, "2K", sizeString(1025))
}
