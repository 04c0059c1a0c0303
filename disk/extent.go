package disk

import (
	"fmt"
	"strings"
)

const (
	STATUS_UNUSED    = 0xE5
	STATUS_LABEL     = 0x20
	STATUS_TIMESTAMP = 0x21
	MAX_USER         = 31
)

type RecordKind int

const (
	RecordFile RecordKind = iota
	RecordUnused
	RecordLabel
	RecordTimestamp
	RecordReserved
)

func (k RecordKind) String() string {
	switch k {
	case RecordFile:
		return "file"
	case RecordUnused:
		return "unused"
	case RecordLabel:
		return "label"
	case RecordTimestamp:
		return "timestamp"
	}
	return "reserved"
}

// Extent is one decoded 32-byte directory record of a file. Name and type
// bytes are kept raw; attribute flags ride in their high bits and are masked
// out only for display.
type Extent struct {
	User      int
	Name      [8]byte
	Type      [3]byte
	Number    int // high*32 + low
	ByteCount int // bytes used in the last record, 0 = all 128
	Records   int // 128-byte records covered, 128 = full, continuation follows
	Pointers  []int

	// Slot is the directory slot this record occupies, set by the scanner.
	Slot int
}

// Reserved punctuation that can never appear in a name or type field.
const badNameChars = "<>.,;:=?*[]"

// ClassifyRecord looks at the status byte only.
func ClassifyRecord(raw []byte) RecordKind {
	switch {
	case raw[0] == STATUS_UNUSED:
		return RecordUnused
	case raw[0] <= MAX_USER:
		return RecordFile
	case raw[0] == STATUS_LABEL:
		return RecordLabel
	case raw[0] == STATUS_TIMESTAMP:
		return RecordTimestamp
	}
	return RecordReserved
}

// DecodeExtent decodes a 32-byte directory record. Odd but structurally
// sound values never fail; they come back as diagnostic notes, because real
// disks are full of them. Only called for RecordFile records.
func DecodeExtent(raw []byte, cfg VolumeConfig) (*Extent, []string, error) {
	if len(raw) != DIR_ENTRY_SIZE {
		return nil, nil, fmt.Errorf("%w: directory record is %d bytes", ErrBadConfig, len(raw))
	}

	var notes []string

	ext := &Extent{
		User:      int(raw[0]),
		Number:    int(raw[14]&0x3f)*32 + int(raw[12]&0x1f),
		ByteCount: int(raw[13]),
		Records:   int(raw[15]),
	}
	copy(ext.Name[:], raw[1:9])
	copy(ext.Type[:], raw[9:12])

	width := cfg.PointerWidth()
	ext.Pointers = make([]int, cfg.PointersPerExtent())
	for i := range ext.Pointers {
		if width == 1 {
			ext.Pointers[i] = int(raw[16+i])
		} else {
			ext.Pointers[i] = int(raw[16+i*2]) + int(raw[16+i*2+1])<<8
		}
	}

	if ext.Records > 128 {
		notes = append(notes, fmt.Sprintf("slot record count %d exceeds 128", ext.Records))
	}
	if ext.ByteCount > 128 {
		notes = append(notes, fmt.Sprintf("last record byte count %d exceeds 128", ext.ByteCount))
	}
	if ext.Records == 0 && ext.countPointers() > 0 {
		notes = append(notes, "record count 0 with allocated blocks")
	}
	if !validNameBytes(ext.Name[:]) || !validNameBytes(ext.Type[:]) {
		notes = append(notes, fmt.Sprintf("name %q contains reserved characters", ext.DisplayName()))
	}

	return ext, notes, nil
}

// Encode is the exact inverse of DecodeExtent: decode then encode is
// byte-identical for every structurally valid record.
func (e *Extent) Encode(cfg VolumeConfig) []byte {
	raw := make([]byte, DIR_ENTRY_SIZE)
	raw[0] = byte(e.User)
	copy(raw[1:9], e.Name[:])
	copy(raw[9:12], e.Type[:])
	raw[12] = byte(e.Number % 32)
	raw[13] = byte(e.ByteCount)
	raw[14] = byte(e.Number / 32)
	raw[15] = byte(e.Records)

	width := cfg.PointerWidth()
	for i, p := range e.Pointers {
		if width == 1 {
			raw[16+i] = byte(p)
		} else {
			raw[16+i*2] = byte(p & 0xff)
			raw[16+i*2+1] = byte(p >> 8)
		}
	}
	return raw
}

func (e *Extent) countPointers() int {
	n := 0
	for _, p := range e.Pointers {
		if p != 0 {
			n++
		}
	}
	return n
}

// DisplayName is NAME.TYP with attribute bits masked and padding trimmed.
func (e *Extent) DisplayName() string {
	return displayName(e.Name, e.Type)
}

func displayName(name [8]byte, typ [3]byte) string {
	n := strings.TrimRight(string(maskBits(name[:])), " ")
	t := strings.TrimRight(string(maskBits(typ[:])), " ")
	if t == "" {
		return n
	}
	return n + "." + t
}

func maskBits(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = v & 0x7f
	}
	return out
}

func validNameBytes(b []byte) bool {
	for _, v := range b {
		c := v & 0x7f
		if c < 0x20 || c == 0x7f {
			return false
		}
		if strings.IndexByte(badNameChars, c) >= 0 {
			return false
		}
	}
	return true
}

func (e *Extent) ReadOnly() bool {
	return e.Type[0]&0x80 != 0
}

func (e *Extent) System() bool {
	return e.Type[1]&0x80 != 0
}

func (e *Extent) Archived() bool {
	return e.Type[2]&0x80 != 0
}

func (e *Extent) SetAttributes(a Attributes) {
	e.Type[0] = e.Type[0]&0x7f | attrBit(a.ReadOnly)
	e.Type[1] = e.Type[1]&0x7f | attrBit(a.System)
	e.Type[2] = e.Type[2]&0x7f | attrBit(a.Archived)
}

func attrBit(on bool) byte {
	if on {
		return 0x80
	}
	return 0
}

// SetName replaces the name and type fields, re-applying whatever attribute
// bits the record already carried.
func (e *Extent) SetName(name string) error {
	n, t, err := splitName(name)
	if err != nil {
		return err
	}
	attrs := Attributes{ReadOnly: e.ReadOnly(), System: e.System(), Archived: e.Archived()}
	e.Name = n
	e.Type = t
	e.SetAttributes(attrs)
	return nil
}

// splitName parses and validates "NAME.TYP" into padded upper-case fields.
func splitName(s string) ([8]byte, [3]byte, error) {
	var name [8]byte
	var typ [3]byte

	s = strings.ToUpper(strings.TrimSpace(s))
	base, ext := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		base, ext = s[:i], s[i+1:]
	}

	if base == "" || len(base) > 8 || len(ext) > 3 || strings.Contains(ext, ".") {
		return name, typ, fmt.Errorf("%w: %q", ErrNameInvalid, s)
	}
	for _, part := range []string{base, ext} {
		for i := 0; i < len(part); i++ {
			c := part[i]
			if c <= 0x20 || c >= 0x7f || strings.IndexByte(badNameChars, c) >= 0 {
				return name, typ, fmt.Errorf("%w: %q", ErrNameInvalid, s)
			}
		}
	}

	copy(name[:], "        ")
	copy(typ[:], "   ")
	copy(name[:], base)
	copy(typ[:], ext)
	return name, typ, nil
}

// ValidName reports whether s parses as an 8+3 name.
func ValidName(s string) bool {
	_, _, err := splitName(s)
	return err == nil
}
