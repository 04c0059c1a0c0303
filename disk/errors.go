package disk

import "errors"

// Hard failure conditions surfaced by the volume and descriptor layers.
// Decode-time anomalies are never errors; they land in diagnostic notes so a
// single bad directory record cannot abort a volume scan.
var (
	ErrClosed          = errors.New("descriptor closed")
	ErrReadOnly        = errors.New("read only")
	ErrDamaged         = errors.New("entry damaged")
	ErrVolumeFull      = errors.New("volume full")
	ErrDirectoryFull   = errors.New("directory full")
	ErrNotFound        = errors.New("file not found")
	ErrExists          = errors.New("file exists")
	ErrNameInvalid     = errors.New("invalid file name")
	ErrProtected       = errors.New("entry is protected")
	ErrDescriptorsOpen = errors.New("descriptors still open")
	ErrWriteProtected  = errors.New("volume write protected")
	ErrOutOfRange      = errors.New("block out of range")
	ErrBadConfig       = errors.New("invalid volume configuration")
	ErrNotMounted      = errors.New("volume not mounted")
)
