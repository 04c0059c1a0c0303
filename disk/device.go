package disk

import (
	"fmt"
	"os"
)

// BlockDevice is the transport the filesystem core reads and writes through.
// Block numbers are dense volume-relative physical indices; whoever implements
// the device owns any sector skew or interleave translation below that.
type BlockDevice interface {
	ReadBlock(n int) ([]byte, error)
	WriteBlock(n int, data []byte) error
	BlockSize() int
	TotalBlocks() int
}

// ImageDevice is a BlockDevice over a raw in-memory disk image. One
// allocation block is assembled from consecutive logical sectors, each run
// through the geometry's skew table the way the drive firmware would.
type ImageDevice struct {
	Data           []byte
	Filename       string
	WriteProtected bool

	geo       Geometry
	blockSize int
}

func NewImageDevice(data []byte, geo Geometry, blockSize int) (*ImageDevice, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	if blockSize <= 0 || blockSize%geo.SectorSize != 0 {
		return nil, fmt.Errorf("%w: block size %d not a multiple of sector size %d", ErrBadConfig, blockSize, geo.SectorSize)
	}
	if len(data) != geo.TotalBytes() {
		return nil, fmt.Errorf("%w: image is %d bytes, geometry wants %d", ErrBadConfig, len(data), geo.TotalBytes())
	}

	return &ImageDevice{
		Data:      data,
		geo:       geo,
		blockSize: blockSize,
	}, nil
}

// BlankImageDevice builds an empty formatted image. Fresh CP/M media is
// filled with 0xE5, which doubles as the unused directory marker.
func BlankImageDevice(geo Geometry, blockSize int) (*ImageDevice, error) {
	data := make([]byte, geo.TotalBytes())
	for i := range data {
		data[i] = 0xE5
	}
	return NewImageDevice(data, geo, blockSize)
}

func LoadImageDevice(filename string, geo Geometry, blockSize int) (*ImageDevice, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	dev, err := NewImageDevice(data, geo, blockSize)
	if err != nil {
		return nil, err
	}
	dev.Filename = filename
	return dev, nil
}

func (d *ImageDevice) BlockSize() int {
	return d.blockSize
}

func (d *ImageDevice) TotalBlocks() int {
	return len(d.Data) / d.blockSize
}

func (d *ImageDevice) Geometry() Geometry {
	return d.geo
}

// sectorOffset maps an absolute logical sector to its byte offset in the
// image, applying per-track skew.
func (d *ImageDevice) sectorOffset(logical int) int {
	track := logical / d.geo.SectorsPerTrack
	sector := d.geo.PhysicalSector(logical % d.geo.SectorsPerTrack)
	return (track*d.geo.SectorsPerTrack + sector) * d.geo.SectorSize
}

func (d *ImageDevice) ReadBlock(n int) ([]byte, error) {
	if n < 0 || n >= d.TotalBlocks() {
		return nil, fmt.Errorf("%w: block %d of %d", ErrOutOfRange, n, d.TotalBlocks())
	}

	spb := d.blockSize / d.geo.SectorSize
	out := make([]byte, 0, d.blockSize)
	for s := 0; s < spb; s++ {
		off := d.sectorOffset(n*spb + s)
		out = append(out, d.Data[off:off+d.geo.SectorSize]...)
	}
	return out, nil
}

func (d *ImageDevice) WriteBlock(n int, data []byte) error {
	if n < 0 || n >= d.TotalBlocks() {
		return fmt.Errorf("%w: block %d of %d", ErrOutOfRange, n, d.TotalBlocks())
	}
	if d.WriteProtected {
		return ErrWriteProtected
	}
	if len(data) != d.blockSize {
		return fmt.Errorf("%w: write of %d bytes to %d byte block", ErrBadConfig, len(data), d.blockSize)
	}

	spb := d.blockSize / d.geo.SectorSize
	for s := 0; s < spb; s++ {
		off := d.sectorOffset(n*spb + s)
		copy(d.Data[off:off+d.geo.SectorSize], data[s*d.geo.SectorSize:(s+1)*d.geo.SectorSize])
	}
	return nil
}

func (d *ImageDevice) Save(filename string) error {
	return os.WriteFile(filename, d.Data, 0644)
}

func (d *ImageDevice) ChecksumImage() string {
	return Checksum(d.Data)
}

func (d *ImageDevice) ChecksumBlock(n int) (string, error) {
	b, err := d.ReadBlock(n)
	if err != nil {
		return "", err
	}
	return Checksum(b), nil
}
