package disk

import (
	"sort"
	"time"
)

type Attributes struct {
	ReadOnly bool
	System   bool
	Archived bool
}

// FileEntry is the logical identity of one file: a user area (namespace
// tag), an 8+3 name, and the set of directory extents that map its content.
// Extents are keyed by extent number; insertion order is irrelevant and an
// absent number is a sparse gap, not an error.
type FileEntry struct {
	User  int
	Name  string
	Attrs Attributes

	Extents map[int]*Extent

	Damaged   bool
	Protected bool
	Notes     []string

	Created  time.Time
	Modified time.Time

	// firstSlot is the directory slot of the first extent encountered in
	// scan order; it fixes attribute precedence and listing order.
	firstSlot int
}

func newFileEntry(user int, name string, first *Extent) *FileEntry {
	e := &FileEntry{
		User:      user,
		Name:      name,
		Extents:   map[int]*Extent{first.Number: first},
		firstSlot: first.Slot,
		Attrs: Attributes{
			ReadOnly: first.ReadOnly(),
			System:   first.System(),
			Archived: first.Archived(),
		},
	}
	return e
}

func (f *FileEntry) note(s string) {
	f.Notes = append(f.Notes, s)
}

// addExtent attaches another directory record. A duplicate extent number is
// an anomaly; the first-seen record wins and the duplicate is noted.
func (f *FileEntry) addExtent(ext *Extent) {
	if _, dup := f.Extents[ext.Number]; dup {
		f.note("duplicate extent number, keeping first occurrence")
		return
	}
	f.Extents[ext.Number] = ext
}

// SortedExtents returns the extents in extent-number order, which is file
// content order regardless of where the records sit in the directory.
func (f *FileEntry) SortedExtents() []*Extent {
	out := make([]*Extent, 0, len(f.Extents))
	for _, e := range f.Extents {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// lastExtent is the extent with the highest number, nil when empty.
func (f *FileEntry) lastExtent() *Extent {
	var last *Extent
	for _, e := range f.Extents {
		if last == nil || e.Number > last.Number {
			last = e
		}
	}
	return last
}

// Size is the container length in bytes: full spans for every extent before
// the last, then the last extent's record count rounded by the
// byte-count-in-last-record field (0 meaning all 128 bytes used).
func (f *FileEntry) Size(cfg VolumeConfig) int64 {
	last := f.lastExtent()
	if last == nil {
		return 0
	}

	size := int64(last.Number) * int64(cfg.ExtentSpan())
	rc := last.Records
	if rc > cfg.RecordsPerExtent() {
		rc = cfg.RecordsPerExtent()
	}
	size += int64(rc) * RECORD_SIZE
	if last.ByteCount > 0 && last.ByteCount < RECORD_SIZE && rc > 0 {
		size -= int64(RECORD_SIZE - last.ByteCount)
	}
	return size
}

// pointerAt maps a logical file offset to the block pointer covering it.
// Returns 0 for any sparse position: a missing extent, a slot past the
// extent's pointer list, or an explicit zero pointer.
func (f *FileEntry) pointerAt(off int64, cfg VolumeConfig) int {
	span := int64(cfg.ExtentSpan())
	ext, ok := f.Extents[int(off/span)]
	if !ok {
		return 0
	}
	idx := int(off%span) / cfg.BlockSize
	if idx >= len(ext.Pointers) {
		return 0
	}
	return ext.Pointers[idx]
}

// Blocks lists every nonzero pointer across all extents, content order.
func (f *FileEntry) Blocks() []int {
	var out []int
	for _, e := range f.SortedExtents() {
		for _, p := range e.Pointers {
			if p != 0 {
				out = append(out, p)
			}
		}
	}
	return out
}
