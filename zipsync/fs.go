package zipsync

import (
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-zipcore/zipcore"
)

// FS returns an io/fs.FS view of the archive. Unlike the teacher's
// fskeleton-backed tree (which interns path components to save RAM across
// very large archives), this builds one flat directory index up front;
// zipcore targets archives read end-to-end, not the huge, long-lived
// filesystem mounts fskeleton was built for (see DESIGN.md).
func (a *Archive) FS() fs.FS {
	return &archiveFS{archive: a, dirs: buildDirIndex(a.archive.Entries)}
}

type archiveFS struct {
	archive *Archive
	dirs    map[string][]fs.DirEntry
}

// buildDirIndex groups every entry (and every synthetic directory implied by
// a slash in its name) under its parent directory, the way the teacher's
// fskeleton.Mkdir/CreateReaderAt calls build up a tree incrementally.
func buildDirIndex(entries []*zipcore.Entry) map[string][]fs.DirEntry {
	dirs := make(map[string][]fs.DirEntry)
	seenDir := map[string]bool{".": true}

	ensureDir := func(dir string) {
		for d := dir; d != "." && !seenDir[d]; d = path.Dir(d) {
			seenDir[d] = true
			parent := path.Dir(d)
			dirs[parent] = append(dirs[parent], zipDirEntry{name: path.Base(d), isDir: true})
			if parent == "." {
				break
			}
		}
	}

	for _, e := range entries {
		name := strings.TrimSuffix(e.Name, "/")
		if name == "" {
			continue
		}
		dir := path.Dir(name)
		ensureDir(dir)
		dirs[dir] = append(dirs[dir], zipDirEntry{name: path.Base(name), isDir: e.Kind() == zipcore.KindDirectory, entry: e})
	}

	for k, v := range dirs {
		sort.Slice(v, func(i, j int) bool { return v[i].Name() < v[j].Name() })
		dirs[k] = v
	}
	return dirs
}

func (afs *archiveFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &dirFile{name: ".", entries: afs.dirs["."]}, nil
	}
	if entries, ok := afs.dirs[name]; ok {
		return &dirFile{name: name, entries: entries}, nil
	}
	e := afs.archive.ByName(name)
	if e == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	rc, err := afs.archive.OpenEntry(e)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &entryFile{entry: e, rc: rc}, nil
}

func (afs *archiveFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, ok := afs.dirs[name]
	if !ok {
		if name != "." {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
		}
	}
	out := make([]fs.DirEntry, len(entries))
	copy(out, entries)
	return out, nil
}

type zipDirEntry struct {
	name  string
	isDir bool
	entry *zipcore.Entry
}

func (d zipDirEntry) Name() string { return d.name }
func (d zipDirEntry) IsDir() bool  { return d.isDir }
func (d zipDirEntry) Type() fs.FileMode {
	if d.isDir {
		return fs.ModeDir
	}
	if d.entry != nil {
		return d.entry.Mode.ToOSFileMode().Type()
	}
	return 0
}
func (d zipDirEntry) Info() (fs.FileInfo, error) { return zipFileInfo{name: d.name, entry: d.entry, isDir: d.isDir}, nil }

type zipFileInfo struct {
	name  string
	entry *zipcore.Entry
	isDir bool
}

func (fi zipFileInfo) Name() string { return fi.name }
func (fi zipFileInfo) Size() int64 {
	if fi.entry == nil {
		return 0
	}
	return int64(fi.entry.UncompressedSize)
}
func (fi zipFileInfo) Mode() fs.FileMode {
	if fi.isDir {
		return fs.ModeDir | 0555
	}
	if fi.entry != nil {
		return fi.entry.Mode.ToOSFileMode()
	}
	return 0444
}
func (fi zipFileInfo) ModTime() time.Time {
	if fi.entry == nil {
		return time.Time{}
	}
	return fi.entry.Modified
}
func (fi zipFileInfo) IsDir() bool      { return fi.isDir }
func (fi zipFileInfo) Sys() interface{} { return fi.entry }

// dirFile implements fs.ReadDirFile for a synthetic or entry-backed
// directory.
type dirFile struct {
	name    string
	entries []fs.DirEntry
	offset  int
}

func (d *dirFile) Stat() (fs.FileInfo, error) {
	return zipFileInfo{name: path.Base(d.name), isDir: true}, nil
}
func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}
func (d *dirFile) Close() error { return nil }
func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if n <= 0 {
		rest := d.entries[d.offset:]
		d.offset = len(d.entries)
		return rest, nil
	}
	if d.offset >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.offset + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.offset:end]
	d.offset = end
	return out, nil
}

// entryFile implements fs.File over a streaming entry reader.
type entryFile struct {
	entry *zipcore.Entry
	rc    io.ReadCloser
}

func (f *entryFile) Stat() (fs.FileInfo, error) {
	return zipFileInfo{name: path.Base(f.entry.Name), entry: f.entry}, nil
}
func (f *entryFile) Read(p []byte) (int, error) { return f.rc.Read(p) }
func (f *entryFile) Close() error                { return f.rc.Close() }
