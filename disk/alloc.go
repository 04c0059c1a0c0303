package disk

import "fmt"

// Collision records two extents claiming the same allocation block. The
// format has no free list to cross-check against, so this is the only
// corruption signal the directory itself can give us.
type Collision struct {
	Block  int // physical block
	First  *FileEntry
	Second *FileEntry
}

// Allocation is the reconstructed block ownership map. CP/M media carries
// no free-space structure at all: the only way to know which blocks are in
// use is to walk every extent of every directory entry, hidden and
// protected ones included, in one linear pass.
type Allocation struct {
	cfg   VolumeConfig
	used  []bool
	owner []*FileEntry

	Collisions []Collision
	Notes      []string
}

// reconstruct builds the in-use map from scratch. Directory blocks are
// pre-marked and excluded from file ownership; pointer 0 is sparse and
// never marked; pointers past the data region resolve by modular wraparound
// into the boot tracks and flag the owning entry protected.
func reconstruct(entries []*FileEntry, cfg VolumeConfig) *Allocation {
	a := &Allocation{
		cfg:   cfg,
		used:  make([]bool, cfg.TotalBlocks),
		owner: make([]*FileEntry, cfg.TotalBlocks),
	}

	for i := 0; i < cfg.DirBlocks; i++ {
		a.used[cfg.BootBlocks+i] = true
	}

	for _, f := range entries {
		for _, ext := range f.SortedExtents() {
			for _, p := range ext.Pointers {
				if p == 0 {
					continue
				}
				a.claim(f, p)
			}
		}
	}

	return a
}

func (a *Allocation) claim(f *FileEntry, p int) {
	if p > 0 && p < a.cfg.DirBlocks {
		f.Damaged = true
		f.note(fmt.Sprintf("block pointer %d lands in the directory region", p))
		a.Notes = append(a.Notes, fmt.Sprintf("%s: pointer %d inside directory", f.Name, p))
		return
	}

	phys, wrapped, err := a.cfg.ResolvePointer(p)
	if err != nil {
		f.Damaged = true
		f.note(fmt.Sprintf("block pointer %d is out of range", p))
		a.Notes = append(a.Notes, fmt.Sprintf("%s: pointer %d out of range", f.Name, p))
		return
	}
	if wrapped {
		f.Protected = true
	}

	if a.used[phys] {
		prev := a.owner[phys]
		a.Collisions = append(a.Collisions, Collision{Block: phys, First: prev, Second: f})
		f.Damaged = true
		if prev != nil {
			prev.Damaged = true
			prev.note(fmt.Sprintf("block %d also claimed by %s", phys, f.Name))
			f.note(fmt.Sprintf("block %d also claimed by %s", phys, prev.Name))
		} else {
			f.note(fmt.Sprintf("block %d collides with a reserved region", phys))
		}
		a.Notes = append(a.Notes, fmt.Sprintf("block %d claimed twice", phys))
		return
	}

	a.used[phys] = true
	a.owner[phys] = f
}

// FreeBlocks counts unallocated blocks in the data region. Boot and
// directory blocks are outside the data universe and never counted.
func (a *Allocation) FreeBlocks() int {
	n := 0
	for phys := a.cfg.BootBlocks + a.cfg.DirBlocks; phys < a.cfg.TotalBlocks; phys++ {
		if !a.used[phys] {
			n++
		}
	}
	return n
}

// allocate grabs the lowest free data block and returns its pointer value.
func (a *Allocation) allocate(f *FileEntry) (int, error) {
	for phys := a.cfg.BootBlocks + a.cfg.DirBlocks; phys < a.cfg.TotalBlocks; phys++ {
		if !a.used[phys] {
			a.used[phys] = true
			a.owner[phys] = f
			return phys - a.cfg.BootBlocks, nil
		}
	}
	return 0, ErrVolumeFull
}

// release frees every block owned by the entry.
func (a *Allocation) release(f *FileEntry) {
	for phys := range a.owner {
		if a.owner[phys] == f {
			a.owner[phys] = nil
			a.used[phys] = false
		}
	}
}

// InUse reports whether a physical block is currently claimed.
func (a *Allocation) InUse(phys int) bool {
	if phys < 0 || phys >= len(a.used) {
		return false
	}
	return a.used[phys]
}
