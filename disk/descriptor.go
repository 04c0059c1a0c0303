package disk

import (
	"bytes"
	"fmt"
	"io"
)

// Fork selects which view of an entry a descriptor streams.
type Fork int

const (
	// FORK_DATA is the container view: length from the directory record
	// count, refined by the byte-count-in-last-record field.
	FORK_DATA Fork = iota
	// FORK_RAW rounds up to whole 128-byte records, padding included.
	FORK_RAW
	// FORK_TEXT ends at the first control-Z sentinel, the textual EOF
	// convention that predates exact lengths in the directory.
	FORK_TEXT
)

func (f Fork) String() string {
	switch f {
	case FORK_RAW:
		return "raw"
	case FORK_TEXT:
		return "text"
	}
	return "data"
}

// Descriptor is a seekable handle on one fork of one entry. It moves
// through Open -> Active -> Closed; every operation after Close fails with
// ErrClosed rather than touching freed state.
type Descriptor struct {
	vol      *Volume
	entry    *FileEntry
	fork     Fork
	readOnly bool

	pos    int64
	eof    int64
	closed bool
}

func newDescriptor(v *Volume, f *FileEntry, fork Fork, readOnly bool) *Descriptor {
	d := &Descriptor{
		vol:      v,
		entry:    f,
		fork:     fork,
		readOnly: readOnly,
	}
	d.eof = d.computeEOF()
	return d
}

func (d *Descriptor) computeEOF() int64 {
	cfg := d.vol.cfg
	container := d.entry.Size(cfg)

	switch d.fork {
	case FORK_RAW:
		last := d.entry.lastExtent()
		if last == nil {
			return 0
		}
		rc := last.Records
		if rc > cfg.RecordsPerExtent() {
			rc = cfg.RecordsPerExtent()
		}
		return int64(last.Number)*int64(cfg.ExtentSpan()) + int64(rc)*RECORD_SIZE

	case FORK_TEXT:
		for off := int64(0); off < container; off += int64(cfg.BlockSize) {
			p := d.entry.pointerAt(off, cfg)
			if p == 0 {
				continue // sparse reads as zero, no sentinel there
			}
			block, err := d.vol.readPointerBlock(p)
			if err != nil {
				break
			}
			if i := bytes.IndexByte(block, 0x1A); i >= 0 {
				if pos := off + int64(i); pos < container {
					return pos
				}
			}
		}
		return container
	}

	return container
}

func (d *Descriptor) Entry() *FileEntry {
	return d.entry
}

func (d *Descriptor) Fork() Fork {
	return d.fork
}

func (d *Descriptor) CanRead() bool {
	return !d.closed
}

func (d *Descriptor) CanWrite() bool {
	return !d.closed && !d.readOnly &&
		!d.entry.Damaged && !d.entry.Attrs.ReadOnly
}

func (d *Descriptor) Position() int64 {
	return d.pos
}

func (d *Descriptor) Length() int64 {
	return d.eof
}

// Seek moves the position, arbitrarily far past end-of-file; storage only
// materializes when something is written there.
func (d *Descriptor) Seek(offset int64, whence int) (int64, error) {
	if d.closed {
		return 0, ErrClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = d.pos + offset
	case io.SeekEnd:
		abs = d.eof + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative seek position %d", abs)
	}
	d.pos = abs
	return abs, nil
}

func (d *Descriptor) Read(p []byte) (int, error) {
	n, err := d.ReadAt(p, d.pos)
	d.pos += int64(n)
	return n, err
}

// ReadAt fills p from the fork at off. Sparse regions read as zeroes.
func (d *Descriptor) ReadAt(p []byte, off int64) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("negative read offset %d", off)
	}
	if off >= d.eof {
		return 0, io.EOF
	}

	want := len(p)
	max := d.eof - off
	if int64(len(p)) > max {
		p = p[:max]
	}

	cfg := d.vol.cfg
	bs := int64(cfg.BlockSize)
	read := 0
	for read < len(p) {
		pos := off + int64(read)
		inBlock := int(pos % bs)
		chunk := cfg.BlockSize - inBlock
		if chunk > len(p)-read {
			chunk = len(p) - read
		}

		ptr := d.entry.pointerAt(pos, cfg)
		if ptr == 0 {
			for i := 0; i < chunk; i++ {
				p[read+i] = 0
			}
		} else {
			block, err := d.vol.readPointerBlock(ptr)
			if err != nil {
				return read, err
			}
			copy(p[read:read+chunk], block[inBlock:])
		}
		read += chunk
	}

	if read < want {
		return read, io.EOF
	}
	return read, nil
}

func (d *Descriptor) Write(p []byte) (int, error) {
	n, err := d.WriteAt(p, d.pos)
	d.pos += int64(n)
	return n, err
}

// WriteAt stores p at off, lazily creating extents and allocating blocks as
// the write crosses into unmapped territory. On a full volume the bytes
// already committed stay committed; extent allocation is append-only and
// nothing is rolled back.
func (d *Descriptor) WriteAt(p []byte, off int64) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	if d.readOnly {
		return 0, ErrReadOnly
	}
	if d.entry.Attrs.ReadOnly {
		return 0, ErrReadOnly
	}
	if d.entry.Damaged {
		return 0, ErrDamaged
	}
	if off < 0 {
		return 0, fmt.Errorf("negative write offset %d", off)
	}

	cfg := d.vol.cfg
	bs := int64(cfg.BlockSize)
	written := 0
	for written < len(p) {
		pos := off + int64(written)
		inBlock := int(pos % bs)
		chunk := cfg.BlockSize - inBlock
		if chunk > len(p)-written {
			chunk = len(p) - written
		}

		ext, err := d.extentFor(pos)
		if err != nil {
			d.finishWrite(off + int64(written))
			return written, err
		}

		idx := int(pos%int64(cfg.ExtentSpan())) / cfg.BlockSize
		var block []byte
		if ext.Pointers[idx] == 0 {
			ptr, err := d.vol.alloc.allocate(d.entry)
			if err != nil {
				d.finishWrite(off + int64(written))
				return written, err
			}
			ext.Pointers[idx] = ptr
			block = make([]byte, cfg.BlockSize)
		} else {
			block, err = d.vol.readPointerBlock(ext.Pointers[idx])
			if err != nil {
				d.finishWrite(off + int64(written))
				return written, err
			}
		}

		copy(block[inBlock:], p[written:written+chunk])
		if err := d.vol.writePointerBlock(ext.Pointers[idx], block); err != nil {
			d.finishWrite(off + int64(written))
			return written, err
		}

		written += chunk
	}

	if err := d.finishWrite(off + int64(written)); err != nil {
		return written, err
	}
	return written, nil
}

// extentFor returns the extent covering a logical offset, creating its
// directory record on demand.
func (d *Descriptor) extentFor(pos int64) (*Extent, error) {
	cfg := d.vol.cfg
	num := int(pos / int64(cfg.ExtentSpan()))
	if ext, ok := d.entry.Extents[num]; ok {
		return ext, nil
	}

	slot, err := d.vol.freeSlot()
	if err != nil {
		return nil, err
	}

	first := d.entry.Extents[d.entry.firstExtentNumber()]
	ext := &Extent{
		User:     d.entry.User,
		Name:     first.Name,
		Type:     first.Type,
		Number:   num,
		Pointers: make([]int, cfg.PointersPerExtent()),
		Slot:     slot,
	}
	if err := d.vol.writeSlot(slot, ext.Encode(cfg)); err != nil {
		return nil, err
	}
	d.entry.addExtent(ext)
	return ext, nil
}

// finishWrite fixes up record counts across the entry's extents and writes
// the directory records through.
func (d *Descriptor) finishWrite(end int64) error {
	cfg := d.vol.cfg
	newEOF := d.entry.Size(cfg)
	if end > newEOF {
		newEOF = end
	}
	if newEOF > 0 {
		lastNum := int((newEOF - 1) / int64(cfg.ExtentSpan()))
		for _, ext := range d.entry.Extents {
			switch {
			case ext.Number < lastNum:
				ext.Records = cfg.RecordsPerExtent()
				ext.ByteCount = 0
			case ext.Number == lastNum:
				n := newEOF - int64(lastNum)*int64(cfg.ExtentSpan())
				ext.Records = int((n + RECORD_SIZE - 1) / RECORD_SIZE)
				ext.ByteCount = int(n % RECORD_SIZE)
			}
		}
	}

	for _, ext := range d.entry.SortedExtents() {
		if err := d.vol.writeSlot(ext.Slot, ext.Encode(cfg)); err != nil {
			return err
		}
	}

	d.eof = d.computeEOF()
	return nil
}

// Close moves the descriptor to Closed, deregisters it from the volume and
// drops internal references. Double close fails with ErrClosed.
func (d *Descriptor) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.vol.forget(d)
	d.invalidate()
	return nil
}

func (d *Descriptor) invalidate() {
	d.closed = true
}

func (f *FileEntry) firstExtentNumber() int {
	n := -1
	for num := range f.Extents {
		if n == -1 || num < n {
			n = num
		}
	}
	return n
}
