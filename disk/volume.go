package disk

import (
	"fmt"
	"strings"
)

// Volume is a mounted CP/M-family filesystem. It is built once by a full
// directory scan and mutated through the operations below.
//
// A Volume is not internally thread-safe. Callers must serialize mutating
// operations; concurrent readers of already-scanned state are fine.
type Volume struct {
	dev BlockDevice
	cfg VolumeConfig

	dir     []byte
	entries []*FileEntry
	alloc   *Allocation
	label   string
	notes   []string

	descriptors map[*Descriptor]struct{}
	mounted     bool
}

type HealthReport struct {
	TotalBlocks int
	DataBlocks  int
	BootBlocks  int
	DirBlocks   int
	FreeBlocks  int

	Collisions []Collision
	Damaged    []*FileEntry
	Protected  []*FileEntry
	Notes      []string
}

// Mount scans the whole directory region and reconstructs the allocation
// map. Anomalous records become notes on the volume or entry; only a broken
// configuration or a failing device aborts the mount.
func Mount(dev BlockDevice, cfg VolumeConfig) (*Volume, error) {
	if err := cfg.ValidateDevice(dev); err != nil {
		return nil, err
	}

	v := &Volume{
		dev:         dev,
		cfg:         cfg,
		dir:         make([]byte, 0, cfg.DirBlocks*cfg.BlockSize),
		descriptors: make(map[*Descriptor]struct{}),
		mounted:     true,
	}

	for b := 0; b < cfg.DirBlocks; b++ {
		data, err := dev.ReadBlock(cfg.BootBlocks + b)
		if err != nil {
			return nil, fmt.Errorf("reading directory block %d: %w", b, err)
		}
		v.dir = append(v.dir, data...)
	}

	v.scan()
	v.alloc = reconstruct(v.entries, cfg)

	return v, nil
}

func (v *Volume) scan() {
	byKey := make(map[string]*FileEntry)
	stamps := make(map[int]Timestamp)

	for slot := 0; slot < v.cfg.DirEntries(); slot++ {
		raw := v.slotBytes(slot)

		switch ClassifyRecord(raw) {
		case RecordUnused:
			continue

		case RecordFile:
			ext, notes, err := DecodeExtent(raw, v.cfg)
			if err != nil {
				v.notes = append(v.notes, fmt.Sprintf("slot %d: %v", slot, err))
				continue
			}
			ext.Slot = slot

			key := fmt.Sprintf("%d:%s", ext.User, ext.DisplayName())
			f, seen := byKey[key]
			if !seen {
				f = newFileEntry(ext.User, ext.DisplayName(), ext)
				byKey[key] = f
				v.entries = append(v.entries, f)
			} else {
				f.addExtent(ext)
			}
			for _, n := range notes {
				f.note(n)
			}

		case RecordLabel:
			var name [8]byte
			var typ [3]byte
			copy(name[:], raw[1:9])
			copy(typ[:], raw[9:12])
			v.label = displayName(name, typ)

		case RecordTimestamp:
			if slot%4 != 3 {
				v.notes = append(v.notes, fmt.Sprintf("slot %d: timestamp record off cadence", slot))
				continue
			}
			for i, ts := range decodeTimestampRecord(raw) {
				stamps[slot-3+i] = ts
			}

		default:
			v.notes = append(v.notes, fmt.Sprintf("slot %d: reserved status 0x%.2x", slot, raw[0]))
		}
	}

	for _, f := range v.entries {
		if ts, ok := stamps[f.firstSlot]; ok {
			f.Created = ts.Create
			f.Modified = ts.Modify
		}
	}
}

func (v *Volume) Config() VolumeConfig {
	return v.cfg
}

func (v *Volume) Device() BlockDevice {
	return v.dev
}

// Label is the volume label record's name, empty when none exists.
func (v *Volume) Label() string {
	return v.label
}

// Entries returns every scanned entry in directory order, damaged and
// protected ones included. Callers wanting the user-facing view use List.
func (v *Volume) Entries() []*FileEntry {
	return v.entries
}

// List returns the visible entries for one user area: entries tagged with
// that user plus the universally visible user 0, deduplicated by name with
// the first directory occurrence winning. Damaged and protected entries are
// excluded; they surface through Health and Protected instead.
func (v *Volume) List(user int) []*FileEntry {
	var out []*FileEntry
	seen := make(map[string]bool)

	for _, f := range v.entries {
		if f.Damaged || f.Protected {
			continue
		}
		if f.User != user && f.User != 0 {
			continue
		}
		key := strings.ToUpper(f.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

// Protected lists the boot-track aliasing entries hidden from List.
func (v *Volume) Protected() []*FileEntry {
	var out []*FileEntry
	for _, f := range v.entries {
		if f.Protected {
			out = append(out, f)
		}
	}
	return out
}

// Find resolves a name within a user scope under List's visibility rules.
func (v *Volume) Find(user int, name string) (*FileEntry, error) {
	for _, f := range v.List(user) {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (user %d)", ErrNotFound, name, user)
}

func (v *Volume) Health() HealthReport {
	h := HealthReport{
		TotalBlocks: v.cfg.TotalBlocks,
		DataBlocks:  v.cfg.DataBlocks(),
		BootBlocks:  v.cfg.BootBlocks,
		DirBlocks:   v.cfg.DirBlocks,
		FreeBlocks:  v.alloc.FreeBlocks(),
	}
	h.Collisions = append(h.Collisions, v.alloc.Collisions...)
	h.Notes = append(h.Notes, v.notes...)
	h.Notes = append(h.Notes, v.alloc.Notes...)

	for _, f := range v.entries {
		if f.Damaged {
			h.Damaged = append(h.Damaged, f)
		}
		if f.Protected {
			h.Protected = append(h.Protected, f)
		}
	}
	return h
}

// Create adds an empty file: one directory record, extent zero, no blocks.
func (v *Volume) Create(user int, name string, attrs Attributes) (*FileEntry, error) {
	if !v.mounted {
		return nil, ErrNotMounted
	}
	if user < 0 || user > MAX_USER {
		return nil, fmt.Errorf("%w: user %d", ErrNameInvalid, user)
	}
	n, t, err := splitName(name)
	if err != nil {
		return nil, err
	}
	for _, f := range v.List(user) {
		if strings.EqualFold(f.Name, name) {
			return nil, fmt.Errorf("%w: %s", ErrExists, f.Name)
		}
	}

	slot, err := v.freeSlot()
	if err != nil {
		return nil, err
	}

	ext := &Extent{
		User:     user,
		Name:     n,
		Type:     t,
		Pointers: make([]int, v.cfg.PointersPerExtent()),
		Slot:     slot,
	}
	ext.SetAttributes(attrs)

	if err := v.writeSlot(slot, ext.Encode(v.cfg)); err != nil {
		return nil, err
	}

	f := newFileEntry(user, ext.DisplayName(), ext)
	v.entries = append(v.entries, f)
	return f, nil
}

// Delete removes a file and returns its blocks to the free pool. Open
// descriptors on the entry are proactively invalidated; a fresh scan after
// this sees the blocks free and the name gone.
func (v *Volume) Delete(f *FileEntry) error {
	if !v.mounted {
		return ErrNotMounted
	}
	if f.Protected {
		return ErrProtected
	}
	if f.Damaged {
		return ErrDamaged
	}

	v.invalidateEntry(f)
	v.alloc.release(f)

	for _, ext := range f.SortedExtents() {
		raw := v.slotBytes(ext.Slot)
		raw[0] = STATUS_UNUSED
		if err := v.writeSlot(ext.Slot, raw); err != nil {
			return err
		}
	}

	for i, e := range v.entries {
		if e == f {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			break
		}
	}
	return nil
}

// Rename rewrites the name in every extent record of the entry. No single
// record is authoritative, so all of them must change together.
func (v *Volume) Rename(f *FileEntry, newName string) error {
	if !v.mounted {
		return ErrNotMounted
	}
	if f.Protected {
		return ErrProtected
	}
	if f.Damaged {
		return ErrDamaged
	}
	if !ValidName(newName) {
		return fmt.Errorf("%w: %q", ErrNameInvalid, newName)
	}
	for _, other := range v.List(f.User) {
		if other != f && strings.EqualFold(other.Name, newName) {
			return fmt.Errorf("%w: %s", ErrExists, other.Name)
		}
	}

	for _, ext := range f.SortedExtents() {
		if err := ext.SetName(newName); err != nil {
			return err
		}
		if err := v.writeSlot(ext.Slot, ext.Encode(v.cfg)); err != nil {
			return err
		}
	}
	f.Name = f.lastExtent().DisplayName()
	return nil
}

// SetAttributes replicates the flag bits into every extent record.
func (v *Volume) SetAttributes(f *FileEntry, attrs Attributes) error {
	if !v.mounted {
		return ErrNotMounted
	}
	if f.Protected {
		return ErrProtected
	}
	if f.Damaged {
		return ErrDamaged
	}

	for _, ext := range f.SortedExtents() {
		ext.SetAttributes(attrs)
		if err := v.writeSlot(ext.Slot, ext.Encode(v.cfg)); err != nil {
			return err
		}
	}
	f.Attrs = attrs
	return nil
}

// Open creates a descriptor bound to one entry and one fork. Damaged and
// protected entries can only be opened read-only; an entry flagged
// read-only refuses read-write opens outright.
func (v *Volume) Open(f *FileEntry, fork Fork, readOnly bool) (*Descriptor, error) {
	if !v.mounted {
		return nil, ErrNotMounted
	}
	if !readOnly {
		if f.Damaged {
			return nil, ErrDamaged
		}
		if f.Protected {
			return nil, ErrProtected
		}
		if f.Attrs.ReadOnly {
			return nil, ErrReadOnly
		}
	}

	d := newDescriptor(v, f, fork, readOnly)
	v.descriptors[d] = struct{}{}
	return d, nil
}

// Unmount refuses to tear down state descriptors still point into.
func (v *Volume) Unmount() error {
	if len(v.descriptors) > 0 {
		return fmt.Errorf("%w: %d open", ErrDescriptorsOpen, len(v.descriptors))
	}
	v.mounted = false
	return nil
}

// CheckLeaks returns descriptors still open. A non-empty result at the
// point a caller believes it has closed everything is a resource management
// bug worth logging loudly.
func (v *Volume) CheckLeaks() []*Descriptor {
	var out []*Descriptor
	for d := range v.descriptors {
		out = append(out, d)
	}
	return out
}

// Flush rewrites the whole directory region to the device.
func (v *Volume) Flush() error {
	for b := 0; b < v.cfg.DirBlocks; b++ {
		bs := v.cfg.BlockSize
		if err := v.dev.WriteBlock(v.cfg.BootBlocks+b, v.dir[b*bs:(b+1)*bs]); err != nil {
			return err
		}
	}
	return nil
}

func (v *Volume) forget(d *Descriptor) {
	delete(v.descriptors, d)
}

func (v *Volume) invalidateEntry(f *FileEntry) {
	for d := range v.descriptors {
		if d.entry == f {
			d.invalidate()
			delete(v.descriptors, d)
		}
	}
}

func (v *Volume) slotBytes(slot int) []byte {
	return v.dir[slot*DIR_ENTRY_SIZE : (slot+1)*DIR_ENTRY_SIZE]
}

// writeSlot updates one directory record and writes its block through.
func (v *Volume) writeSlot(slot int, raw []byte) error {
	copy(v.slotBytes(slot), raw)
	bs := v.cfg.BlockSize
	b := slot * DIR_ENTRY_SIZE / bs
	return v.dev.WriteBlock(v.cfg.BootBlocks+b, v.dir[b*bs:(b+1)*bs])
}

func (v *Volume) freeSlot() (int, error) {
	for slot := 0; slot < v.cfg.DirEntries(); slot++ {
		if ClassifyRecord(v.slotBytes(slot)) == RecordUnused {
			return slot, nil
		}
	}
	return 0, ErrDirectoryFull
}

// readPointerBlock reads the data block behind a nonzero pointer, boot
// wraparound included.
func (v *Volume) readPointerBlock(p int) ([]byte, error) {
	phys, _, err := v.cfg.ResolvePointer(p)
	if err != nil {
		return nil, err
	}
	return v.dev.ReadBlock(phys)
}

func (v *Volume) writePointerBlock(p int, data []byte) error {
	phys, _, err := v.cfg.ResolvePointer(p)
	if err != nil {
		return err
	}
	return v.dev.WriteBlock(phys, data)
}
