// Package zipsync is the blocking, io.ReaderAt-based convenience layer
// zipcore itself deliberately excludes: it drives the sans-I/O Archive and
// Entry state machines from a real file or in-memory buffer, and exposes an
// io/fs.FS view of the result. Everything in zipcore/fsm stays pure; this
// package is where the I/O actually happens.
package zipsync

import (
	"errors"
	"io"
	"os"

	"github.com/go-zipcore/zipcore"
	"github.com/go-zipcore/zipcore/fsm"
	"github.com/go-zipcore/zipcore/internal/sectionreader"
)

// Options carries the few knobs a blocking wrapper around the core needs:
// how many bytes to read from the source per call, and which compression
// methods a caller is willing to decode (everything is enabled by default;
// some embedders may want to refuse LZMA/Zstd/Bzip2 to keep a smaller
// dependency footprint reachable from untrusted input).
type Options struct {
	// ReadChunkSize bounds how many bytes OpenReaderAt/Open read from the
	// underlying io.ReaderAt per call. Zero means "whatever the FSM's
	// buffer offers in one go" (its full Space()).
	ReadChunkSize int

	// DisabledMethods, if non-nil, names compression methods Open refuses
	// to decode even though the decompress package supports them.
	DisabledMethods map[zipcore.Method]bool
}

// ErrMethodDisabled is returned by Open when an entry's compression method
// is listed in Options.DisabledMethods.
var ErrMethodDisabled = errors.New("zipsync: compression method disabled by caller options")

// Archive is an opened, fully-indexed zip archive backed by a blocking
// io.ReaderAt.
type Archive struct {
	r       io.ReaderAt
	size    int64
	archive *zipcore.Archive
	options Options
}

// OpenReaderAt reads and decodes the central directory of the archive in r,
// which must report exactly size readable bytes.
func OpenReaderAt(r io.ReaderAt, size int64, opts ...Options) (*Archive, error) {
	options := Options{}
	if len(opts) > 0 {
		options = opts[0]
	}

	// Bound r to exactly [0, size) and flatten any nested io.SectionReader
	// a caller handed us (e.g. an archive embedded inside a larger file),
	// so a read request the AFSM/EFSM computes can never reach outside the
	// archive's own bytes regardless of what r actually backs onto.
	r = sectionreader.Section(r, 0, size)

	a, err := fsm.NewArchiveFSM(size)
	if err != nil {
		return nil, err
	}
	for {
		req, archive, err := a.Process()
		if err != nil {
			return nil, err
		}
		if archive != nil {
			return &Archive{r: r, size: size, archive: archive, options: options}, nil
		}
		if err := fill(r, a.Space(), a.Fill, *req, options.ReadChunkSize); err != nil {
			return nil, err
		}
	}
}

// OpenFile opens the named file and decodes its central directory. Archive
// has no Close method and never closes the file; the caller closes the
// returned *os.File once done with every Entry's reader.
func OpenFile(path string) (*Archive, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	a, err := OpenReaderAt(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return a, f, nil
}

// Entries returns every entry in the archive, in central-directory order.
func (a *Archive) Entries() []*zipcore.Entry { return a.archive.Entries }

// Comment returns the archive's decoded comment.
func (a *Archive) Comment() string { return a.archive.Comment }

// ByName returns the first entry with the given name, or nil.
func (a *Archive) ByName(name string) *zipcore.Entry { return a.archive.ByName(name) }

// Open returns a blocking reader over one entry's decompressed content,
// driving a fresh EntryFSM against the archive's underlying io.ReaderAt.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	e := a.archive.ByName(name)
	if e == nil {
		return nil, os.ErrNotExist
	}
	return a.OpenEntry(e)
}

// OpenEntry is like Open but takes an already-resolved Entry, for callers
// iterating Entries() directly (e.g. to handle duplicate names).
func (a *Archive) OpenEntry(e *zipcore.Entry) (io.ReadCloser, error) {
	if a.options.DisabledMethods[e.Method] {
		return nil, ErrMethodDisabled
	}
	return &entryReader{archive: a, entry: e, efsm: fsm.NewEntryFSM(e)}, nil
}

// fill performs one blocking read into space at req.Offset, chunked to
// chunkSize if set, and reports the result to the FSM via fillFn.
func fill(r io.ReaderAt, space []byte, fillFn func(int), req fsm.ReadRequest, chunkSize int) error {
	want := len(space)
	if chunkSize > 0 && want > chunkSize {
		want = chunkSize
	}
	if want == 0 {
		return io.ErrShortBuffer
	}
	n, err := r.ReadAt(space[:want], req.Offset)
	if n > 0 {
		fillFn(n)
	}
	if err != nil && !(err == io.EOF && n > 0) {
		return err
	}
	return nil
}
