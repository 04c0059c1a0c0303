package disk

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// FileSystem adapts a mounted Volume to afero.Fs so CP/M media plugs into
// anything that speaks afero. Paths are "/NAME.TYP" for user area 0 or
// "/<user>/NAME.TYP" for the rest; user areas appear as directories.
type FileSystem struct {
	vol *Volume
}

func NewFileSystem(vol *Volume) afero.Fs {
	return &FileSystem{vol: vol}
}

func (fs *FileSystem) Name() string {
	return "cpm8"
}

type pathKind int

const (
	pathRoot pathKind = iota
	pathUserDir
	pathFile
)

func (fs *FileSystem) parse(name string) (pathKind, int, string, error) {
	name = strings.Trim(name, "/")
	if name == "" {
		return pathRoot, 0, "", nil
	}

	parts := strings.Split(name, "/")
	switch len(parts) {
	case 1:
		if u, err := strconv.Atoi(parts[0]); err == nil {
			if u < 0 || u > MAX_USER {
				return 0, 0, "", &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
			}
			return pathUserDir, u, "", nil
		}
		return pathFile, 0, parts[0], nil
	case 2:
		u, err := strconv.Atoi(parts[0])
		if err != nil || u < 0 || u > MAX_USER {
			return 0, 0, "", &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
		}
		return pathFile, u, parts[1], nil
	}
	return 0, 0, "", &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
}

func (fs *FileSystem) Open(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs *FileSystem) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	kind, user, fname, err := fs.parse(name)
	if err != nil {
		return nil, err
	}
	if kind != pathFile {
		return &cpmFile{fs: fs, path: name, user: user, kind: kind}, nil
	}

	readOnly := flag&(os.O_WRONLY|os.O_RDWR) == 0

	entry, err := fs.vol.Find(user, fname)
	if err != nil {
		if flag&os.O_CREATE == 0 {
			return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
		}
		entry, err = fs.vol.Create(user, fname, Attributes{})
		if err != nil {
			return nil, &os.PathError{Op: "create", Path: name, Err: err}
		}
	} else if flag&os.O_TRUNC != 0 && !readOnly {
		if entry, err = fs.truncateEntry(entry); err != nil {
			return nil, &os.PathError{Op: "truncate", Path: name, Err: err}
		}
	}

	d, err := fs.vol.Open(entry, FORK_DATA, readOnly)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}

	f := &cpmFile{fs: fs, path: name, user: user, kind: pathFile, entry: entry, d: d}
	if flag&os.O_APPEND != 0 {
		d.Seek(0, io.SeekEnd)
	}
	return f, nil
}

// truncateEntry is delete-and-recreate; extent allocation is append-only so
// there is no shrink primitive below this.
func (fs *FileSystem) truncateEntry(entry *FileEntry) (*FileEntry, error) {
	user, name, attrs := entry.User, entry.Name, entry.Attrs
	if err := fs.vol.Delete(entry); err != nil {
		return nil, err
	}
	return fs.vol.Create(user, name, attrs)
}

func (fs *FileSystem) Create(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
}

func (fs *FileSystem) Mkdir(name string, perm os.FileMode) error {
	kind, _, _, err := fs.parse(name)
	if err != nil {
		return err
	}
	if kind != pathUserDir {
		return &os.PathError{Op: "mkdir", Path: name, Err: os.ErrInvalid}
	}
	// User areas always exist; creating one is a no-op.
	return nil
}

func (fs *FileSystem) MkdirAll(path string, perm os.FileMode) error {
	return fs.Mkdir(path, perm)
}

func (fs *FileSystem) Remove(name string) error {
	kind, user, fname, err := fs.parse(name)
	if err != nil {
		return err
	}
	if kind != pathFile {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrInvalid}
	}
	entry, err := fs.vol.Find(user, fname)
	if err != nil {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrNotExist}
	}
	if err := fs.vol.Delete(entry); err != nil {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	return nil
}

func (fs *FileSystem) RemoveAll(path string) error {
	kind, user, _, err := fs.parse(path)
	if err != nil {
		return err
	}
	switch kind {
	case pathFile:
		err := fs.Remove(path)
		if err != nil && os.IsNotExist(err) {
			return nil
		}
		return err
	case pathUserDir:
		for _, f := range fs.vol.List(user) {
			if f.User != user {
				continue // user 0 entries only borrowed into this view
			}
			if err := fs.vol.Delete(f); err != nil {
				return err
			}
		}
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrInvalid}
}

func (fs *FileSystem) Rename(oldname, newname string) error {
	okind, ouser, oname, err := fs.parse(oldname)
	if err != nil {
		return err
	}
	nkind, nuser, nname, err := fs.parse(newname)
	if err != nil {
		return err
	}
	if okind != pathFile || nkind != pathFile {
		return &os.PathError{Op: "rename", Path: oldname, Err: os.ErrInvalid}
	}
	if ouser != nuser {
		return &os.PathError{Op: "rename", Path: oldname, Err: fmt.Errorf("cannot move between user areas")}
	}
	entry, err := fs.vol.Find(ouser, oname)
	if err != nil {
		return &os.PathError{Op: "rename", Path: oldname, Err: os.ErrNotExist}
	}
	if err := fs.vol.Rename(entry, nname); err != nil {
		return &os.PathError{Op: "rename", Path: oldname, Err: err}
	}
	return nil
}

func (fs *FileSystem) Stat(name string) (os.FileInfo, error) {
	kind, user, fname, err := fs.parse(name)
	if err != nil {
		return nil, err
	}
	switch kind {
	case pathRoot:
		return dirInfo("/"), nil
	case pathUserDir:
		return dirInfo(strconv.Itoa(user)), nil
	}
	entry, err := fs.vol.Find(user, fname)
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
	}
	return fs.entryInfo(entry), nil
}

func (fs *FileSystem) Chmod(name string, mode os.FileMode) error {
	kind, user, fname, err := fs.parse(name)
	if err != nil {
		return err
	}
	if kind != pathFile {
		return nil
	}
	entry, err := fs.vol.Find(user, fname)
	if err != nil {
		return &os.PathError{Op: "chmod", Path: name, Err: os.ErrNotExist}
	}
	attrs := entry.Attrs
	attrs.ReadOnly = mode&0200 == 0
	return fs.vol.SetAttributes(entry, attrs)
}

func (fs *FileSystem) Chown(name string, uid, gid int) error {
	return &os.PathError{Op: "chown", Path: name, Err: os.ErrPermission}
}

func (fs *FileSystem) Chtimes(name string, atime time.Time, mtime time.Time) error {
	// Datestamps are decode-only; there is no general stamp area to write.
	return &os.PathError{Op: "chtimes", Path: name, Err: os.ErrInvalid}
}

func (fs *FileSystem) entryInfo(f *FileEntry) os.FileInfo {
	mode := os.FileMode(0644)
	if f.Attrs.ReadOnly {
		mode = 0444
	}
	return &fileInfo{
		name:    f.Name,
		size:    f.Size(fs.vol.cfg),
		mode:    mode,
		modTime: f.Modified,
	}
}

type fileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	dir     bool
}

func dirInfo(name string) *fileInfo {
	return &fileInfo{name: name, mode: os.ModeDir | 0755, dir: true}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() interface{}   { return nil }

// cpmFile satisfies afero.File for both files (backed by a Descriptor) and
// the synthetic root/user directories.
type cpmFile struct {
	fs    *FileSystem
	path  string
	user  int
	kind  pathKind
	entry *FileEntry
	d     *Descriptor

	dirOffset int
}

func (f *cpmFile) Name() string {
	return f.path
}

func (f *cpmFile) Close() error {
	if f.d == nil {
		return nil
	}
	return f.d.Close()
}

func (f *cpmFile) Read(p []byte) (int, error) {
	if f.d == nil {
		return 0, &os.PathError{Op: "read", Path: f.path, Err: os.ErrInvalid}
	}
	return f.d.Read(p)
}

func (f *cpmFile) ReadAt(p []byte, off int64) (int, error) {
	if f.d == nil {
		return 0, &os.PathError{Op: "read", Path: f.path, Err: os.ErrInvalid}
	}
	return f.d.ReadAt(p, off)
}

func (f *cpmFile) Seek(offset int64, whence int) (int64, error) {
	if f.d == nil {
		return 0, &os.PathError{Op: "seek", Path: f.path, Err: os.ErrInvalid}
	}
	return f.d.Seek(offset, whence)
}

func (f *cpmFile) Write(p []byte) (int, error) {
	if f.d == nil {
		return 0, &os.PathError{Op: "write", Path: f.path, Err: os.ErrInvalid}
	}
	return f.d.Write(p)
}

func (f *cpmFile) WriteAt(p []byte, off int64) (int, error) {
	if f.d == nil {
		return 0, &os.PathError{Op: "write", Path: f.path, Err: os.ErrInvalid}
	}
	return f.d.WriteAt(p, off)
}

func (f *cpmFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

func (f *cpmFile) listing() []os.FileInfo {
	var out []os.FileInfo
	switch f.kind {
	case pathRoot:
		users := map[int]bool{0: true}
		for _, e := range f.fs.vol.Entries() {
			if !e.Damaged && !e.Protected {
				users[e.User] = true
			}
		}
		var ids []int
		for u := range users {
			ids = append(ids, u)
		}
		sort.Ints(ids)
		for _, u := range ids {
			out = append(out, dirInfo(strconv.Itoa(u)))
		}
	case pathUserDir:
		for _, e := range f.fs.vol.List(f.user) {
			out = append(out, f.fs.entryInfo(e))
		}
	}
	return out
}

func (f *cpmFile) Readdir(count int) ([]os.FileInfo, error) {
	if f.kind == pathFile {
		return nil, &os.PathError{Op: "readdir", Path: f.path, Err: os.ErrInvalid}
	}
	all := f.listing()
	if f.dirOffset >= len(all) {
		if count > 0 {
			return nil, nil
		}
		return []os.FileInfo{}, nil
	}
	rest := all[f.dirOffset:]
	if count > 0 && count < len(rest) {
		rest = rest[:count]
	}
	f.dirOffset += len(rest)
	return rest, nil
}

func (f *cpmFile) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, fi := range infos {
		names[i] = fi.Name()
	}
	return names, nil
}

func (f *cpmFile) Stat() (os.FileInfo, error) {
	switch f.kind {
	case pathRoot:
		return dirInfo("/"), nil
	case pathUserDir:
		return dirInfo(strconv.Itoa(f.user)), nil
	}
	return f.fs.entryInfo(f.entry), nil
}

func (f *cpmFile) Sync() error {
	return f.fs.vol.Flush()
}

// Truncate supports only size zero; block lists never shrink in place.
func (f *cpmFile) Truncate(size int64) error {
	if f.d == nil || size != 0 {
		return &os.PathError{Op: "truncate", Path: f.path, Err: os.ErrInvalid}
	}
	entry, err := f.fs.truncateEntry(f.entry)
	if err != nil {
		return err
	}
	if err := f.d.Close(); err != nil && err != ErrClosed {
		return err
	}
	d, err := f.fs.vol.Open(entry, FORK_DATA, false)
	if err != nil {
		return err
	}
	f.entry = entry
	f.d = d
	return nil
}
