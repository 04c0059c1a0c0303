package disk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const RECORD_SIZE = 128
const DIR_ENTRY_SIZE = 32

// Software skew table for IBM 3740 8" SSSD media, the interleave every CP/M
// derivative inherited. Logical sector n lives in physical slot SKEW[n].
var IBM_3740_SKEW = []int{
	0, 6, 12, 18, 24, 4, 10, 16, 22, 2, 8, 14, 20,
	1, 7, 13, 19, 25, 5, 11, 17, 23, 3, 9, 15, 21,
}

var LINEAR_SKEW []int = nil

// Geometry describes the physical arrangement of a disk image. The skew
// table maps logical sector order to physical slot order within one track;
// nil means linear.
type Geometry struct {
	SectorSize      int
	SectorsPerTrack int
	Tracks          int
	Skew            []int
}

func (g Geometry) TotalBytes() int {
	return g.Tracks * g.SectorsPerTrack * g.SectorSize
}

func (g Geometry) TotalSectors() int {
	return g.Tracks * g.SectorsPerTrack
}

// PhysicalSector resolves a track-relative logical sector through the skew
// table.
func (g Geometry) PhysicalSector(logical int) int {
	if g.Skew == nil || logical >= len(g.Skew) {
		return logical
	}
	return g.Skew[logical]
}

func (g Geometry) Validate() error {
	if g.SectorSize <= 0 || g.SectorsPerTrack <= 0 || g.Tracks <= 0 {
		return fmt.Errorf("%w: geometry %dx%dx%d", ErrBadConfig, g.Tracks, g.SectorsPerTrack, g.SectorSize)
	}
	if g.Skew != nil && len(g.Skew) != g.SectorsPerTrack {
		return fmt.Errorf("%w: skew table has %d entries for %d sectors", ErrBadConfig, len(g.Skew), g.SectorsPerTrack)
	}
	return nil
}

type MediaID int

const (
	MEDIA_NONE MediaID = iota
	MEDIA_IBM_3740
	MEDIA_OSBORNE_1
	MEDIA_KAYPRO_II
	MEDIA_HD_8MB
)

func (m MediaID) String() string {
	switch m {
	case MEDIA_IBM_3740:
		return "IBM 3740 8\" SSSD"
	case MEDIA_OSBORNE_1:
		return "Osborne 1 5.25\" SSSD"
	case MEDIA_KAYPRO_II:
		return "Kaypro II 5.25\" SSDD"
	case MEDIA_HD_8MB:
		return "8MB Hard Disk Image"
	}
	return "Unrecognized"
}

func (m MediaID) Geometry() Geometry {
	switch m {
	case MEDIA_IBM_3740:
		// A 26x128 track is 3,328 bytes, so only every fourth track ends
		// on a 1K block boundary. The image covers the 76 block-aligned
		// tracks; the physical medium's 77th track has no home in the
		// block universe.
		return Geometry{SectorSize: 128, SectorsPerTrack: 26, Tracks: 76, Skew: IBM_3740_SKEW}
	case MEDIA_OSBORNE_1:
		return Geometry{SectorSize: 256, SectorsPerTrack: 10, Tracks: 40}
	case MEDIA_KAYPRO_II:
		return Geometry{SectorSize: 512, SectorsPerTrack: 10, Tracks: 40}
	case MEDIA_HD_8MB:
		return Geometry{SectorSize: 512, SectorsPerTrack: 32, Tracks: 512}
	}
	return Geometry{}
}

func Checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
