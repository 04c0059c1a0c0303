package disk

import "fmt"

// VolumeConfig carries everything the on-disk structures cannot say about
// themselves. CP/M media is not self-describing: block size, directory size
// and boot reservation all lived in the BIOS parameter tables, so the caller
// must supply them and we never guess. Immutable once a volume is mounted.
type VolumeConfig struct {
	BlockSize   int // 512 bytes to 16KB
	TotalBlocks int // whole device, boot region included
	BootBlocks  int // reserved blocks at the front of the device
	DirBlocks   int // directory blocks, immediately after the boot region
}

// DataBlocks is the size of the block-pointer address space. Pointer 0 is
// the directory start and therefore never a legal data pointer.
func (c VolumeConfig) DataBlocks() int {
	return c.TotalBlocks - c.BootBlocks
}

// PointerWidth is 1 when every data block fits in a byte, else 2
// (little-endian pairs).
func (c VolumeConfig) PointerWidth() int {
	if c.DataBlocks() <= 256 {
		return 1
	}
	return 2
}

func (c VolumeConfig) PointersPerExtent() int {
	return 16 / c.PointerWidth()
}

// RecordsPerExtent is how many 128-byte records one directory extent spans,
// at most 128 (a 16KB logical extent); Validate rejects configs that would
// need more.
func (c VolumeConfig) RecordsPerExtent() int {
	return c.PointersPerExtent() * c.BlockSize / RECORD_SIZE
}

func (c VolumeConfig) ExtentSpan() int {
	return c.RecordsPerExtent() * RECORD_SIZE
}

func (c VolumeConfig) DirEntries() int {
	return c.DirBlocks * c.BlockSize / DIR_ENTRY_SIZE
}

// ResolvePointer turns a block pointer into a physical device block. A
// pointer past the data region wraps modulo the device size; when the wrap
// lands in the boot region it is the deliberate boot-track aliasing trick
// some system disks use, reported via wrapped. Pointer 0 is sparse and must
// be handled before calling.
func (c VolumeConfig) ResolvePointer(p int) (phys int, wrapped bool, err error) {
	if p <= 0 {
		return 0, false, fmt.Errorf("%w: pointer %d", ErrOutOfRange, p)
	}
	if p < c.DataBlocks() {
		return c.BootBlocks + p, false, nil
	}
	phys = (c.BootBlocks + p) % c.TotalBlocks
	if phys < c.BootBlocks {
		return phys, true, nil
	}
	return 0, false, fmt.Errorf("%w: pointer %d has no wraparound interpretation", ErrOutOfRange, p)
}

func (c VolumeConfig) Validate() error {
	if c.BlockSize < 512 || c.BlockSize > 16384 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("%w: block size %d", ErrBadConfig, c.BlockSize)
	}
	if c.BootBlocks < 0 || c.DirBlocks < 1 {
		return fmt.Errorf("%w: boot %d, directory %d blocks", ErrBadConfig, c.BootBlocks, c.DirBlocks)
	}
	if c.BootBlocks+c.DirBlocks >= c.TotalBlocks {
		return fmt.Errorf("%w: boot %d + directory %d leaves no data in %d blocks",
			ErrBadConfig, c.BootBlocks, c.DirBlocks, c.TotalBlocks)
	}
	if c.DataBlocks() > 65536 {
		return fmt.Errorf("%w: %d data blocks exceeds 16 bit pointers", ErrBadConfig, c.DataBlocks())
	}
	// The record count field tops out at 128 records, one 16K logical
	// extent. A record whose pointer list covered more would leave its
	// tail pointers unreachable.
	if c.PointersPerExtent()*c.BlockSize > 128*RECORD_SIZE {
		return fmt.Errorf("%w: %d pointers of %d byte blocks exceed one extent",
			ErrBadConfig, c.PointersPerExtent(), c.BlockSize)
	}
	return nil
}

// ValidateDevice checks the config against the device it will mount.
func (c VolumeConfig) ValidateDevice(dev BlockDevice) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if dev.BlockSize() != c.BlockSize {
		return fmt.Errorf("%w: config block size %d, device %d", ErrBadConfig, c.BlockSize, dev.BlockSize())
	}
	if dev.TotalBlocks() != c.TotalBlocks {
		return fmt.Errorf("%w: config %d blocks, device %d", ErrBadConfig, c.TotalBlocks, dev.TotalBlocks())
	}
	return nil
}

// Config returns the standard volume parameters for a media preset, paired
// with MediaID.Geometry.
func (m MediaID) Config() VolumeConfig {
	switch m {
	case MEDIA_IBM_3740:
		return VolumeConfig{BlockSize: 1024, TotalBlocks: 247, BootBlocks: 6, DirBlocks: 2}
	case MEDIA_OSBORNE_1:
		return VolumeConfig{BlockSize: 1024, TotalBlocks: 100, BootBlocks: 8, DirBlocks: 2}
	case MEDIA_KAYPRO_II:
		return VolumeConfig{BlockSize: 1024, TotalBlocks: 200, BootBlocks: 5, DirBlocks: 2}
	case MEDIA_HD_8MB:
		return VolumeConfig{BlockSize: 2048, TotalBlocks: 4096, BootBlocks: 8, DirBlocks: 16}
	}
	return VolumeConfig{}
}
