package main

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/retroimage/cpm8/disk"
	"github.com/retroimage/cpm8/loggy"
)

// FileFingerprint is one file on an ingested volume.
type FileFingerprint struct {
	Name     string
	User     int
	Size     int64
	SHA256   string
	ReadOnly bool
	System   bool
	Damaged  bool
	Modified time.Time
}

// VolumeFingerprint is the ingest record for a disk image: identity
// checksums plus the file census, persisted as gob in the datastore.
// SHA256 covers the raw image; SHA256Active covers only the file payloads,
// so two disks differing just in free-space garbage still match.
type VolumeFingerprint struct {
	FullPath     string
	Filename     string
	Media        string
	SHA256       string
	SHA256Active string
	Blocks       int
	Free         int
	Label        string
	IngestAt     time.Time
	Files        []*FileFingerprint

	source string
}

func (v *VolumeFingerprint) StoreFilename() string {
	sum := md5.Sum([]byte(v.FullPath))
	return hex.EncodeToString(sum[:]) + ".fgp"
}

func (v *VolumeFingerprint) WriteToFile(base string) error {

	path := base + "/" + v.Media
	os.MkdirAll(path, 0755)

	f, err := os.Create(path + "/" + v.StoreFilename())
	if err != nil {
		return err
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	return enc.Encode(v)
}

func (v *VolumeFingerprint) ReadFromFile(filename string) error {

	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	if err := dec.Decode(v); err != nil {
		return err
	}
	v.source = filename
	return nil
}

// fingerprint mounts nothing itself; the caller owns the volume. Every
// readable file is hashed through a data-fork descriptor.
func fingerprint(sv *shellVolume, fullpath string) *VolumeFingerprint {

	l := loggy.Get(0)

	vf := &VolumeFingerprint{
		FullPath: fullpath,
		Filename: filepath.Base(fullpath),
		Media:    sv.media.String(),
		SHA256:   sv.dev.ChecksumImage(),
		Blocks:   sv.vol.Config().TotalBlocks,
		Free:     sv.vol.Health().FreeBlocks,
		Label:    sv.vol.Label(),
		IngestAt: time.Now(),
	}

	for _, f := range sv.vol.Entries() {
		if f.Protected {
			continue
		}

		ff := &FileFingerprint{
			Name:     f.Name,
			User:     f.User,
			Size:     f.Size(sv.vol.Config()),
			ReadOnly: f.Attrs.ReadOnly,
			System:   f.Attrs.System,
			Damaged:  f.Damaged,
			Modified: f.Modified,
		}

		if !f.Damaged {
			d, err := sv.vol.Open(f, disk.FORK_DATA, true)
			if err == nil {
				h := sha256.New()
				buf := make([]byte, 4096)
				for {
					n, err := d.Read(buf)
					if n > 0 {
						h.Write(buf[:n])
					}
					if err != nil {
						break
					}
				}
				d.Close()
				ff.SHA256 = hex.EncodeToString(h.Sum(nil))
			} else {
				l.Errorf("fingerprint %s user %d: %v", f.Name, f.User, err)
			}
		}

		vf.Files = append(vf.Files, ff)
	}

	active := sha256.New()
	for _, ff := range vf.Files {
		fmt.Fprintf(active, "%d:%s:%s\n", ff.User, ff.Name, ff.SHA256)
	}
	vf.SHA256Active = hex.EncodeToString(active.Sum(nil))

	return vf
}

// loadFingerprints pulls every stored fingerprint under the datastore.
func loadFingerprints() []*VolumeFingerprint {

	l := loggy.Get(0)
	var out []*VolumeFingerprint

	filepath.Walk(*baseName, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".fgp") {
			return nil
		}
		vf := &VolumeFingerprint{}
		if err := vf.ReadFromFile(path); err != nil {
			l.Errorf("bad fingerprint %s: %v", path, err)
			return nil
		}
		out = append(out, vf)
		return nil
	})

	return out
}

func searchByName(pattern string) {
	pattern = strings.ToUpper(pattern)
	for _, vf := range loadFingerprints() {
		for _, ff := range vf.Files {
			if ok, _ := filepath.Match(pattern, ff.Name); !ok {
				continue
			}
			fmt.Printf("%-40s u%-2d %-12s %8d %s\n",
				vf.Filename, ff.User, ff.Name, ff.Size, ff.SHA256)
		}
	}
}

func searchByHash(hash string) {
	hash = strings.ToLower(hash)
	for _, vf := range loadFingerprints() {
		for _, ff := range vf.Files {
			if ff.SHA256 != hash {
				continue
			}
			fmt.Printf("%-40s u%-2d %-12s %8d\n",
				vf.Filename, ff.User, ff.Name, ff.Size)
		}
	}
}
