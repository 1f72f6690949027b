// Package fsm implements the two state machines at the heart of zipcore:
// the Archive FSM, which locates and decodes the central directory, and the
// Entry FSM, which parses one entry's local header and drives its
// decompressor. Neither machine performs I/O; both are driven by a caller
// that fills a buffer and calls Process.
package fsm

import (
	"errors"
	"fmt"

	"github.com/go-zipcore/zipcore"
	"github.com/go-zipcore/zipcore/buffer"
	"github.com/go-zipcore/zipcore/detect"
	"github.com/go-zipcore/zipcore/parse"
)

// ArchiveState names a step in the AFSM.
type ArchiveState int

const (
	ReadEOCD ArchiveState = iota
	ReadEOCD64Locator
	ReadEOCD64
	ReadCentralDirectory
	ArchiveDone
)

// ReadRequest tells the caller where to read next and how much room is
// available to read into.
type ReadRequest struct {
	Offset   int64
	MaxBytes int
}

// ArchiveFSM locates the end-of-central-directory record (classic and,
// where present, ZIP64), reconciles any non-zip prefix, and streams the
// central directory into a zipcore.Archive.
type ArchiveFSM struct {
	state ArchiveState
	buf   *buffer.Buffer
	size  int64

	// windowBase is the absolute file offset of the first byte filled
	// since buf's last Reset; ReadOffset(windowBase) is where the next read
	// lands.
	windowBase int64

	window int // EOCD scan window width

	eocd       parse.EOCD
	eocdOffset int64

	locator parse.EOCD64Locator
	eocd64  *parse.EOCD64

	// directoryOffset/directorySize/totalEntries are the reconciled,
	// possibly-ZIP64-overridden values used to drive ReadCentralDirectory.
	directoryOffset int64
	directorySize   int64
	totalEntries    uint64
	globalOffset    int64

	// ownedHeaders holds every parsed central directory header with its
	// borrowed byte slices copied out, since they would otherwise be
	// invalidated by the next buffer Shift.
	ownedHeaders []ownedHeader

	sampler detect.Sampler
	comment []byte // archive comment bytes, owned
}

type ownedHeader struct {
	hdr  parse.CentralDirectoryHeader
	name []byte
	extra []byte
	comment []byte
}

// NewArchiveFSM constructs an AFSM for an archive of the given total size.
// The EOCD scan window is min(size, 65 KiB) per the format's trailing-comment
// bound, and the buffer capacity is the larger of buffer.DefaultCapacity and
// that window so a single read can always satisfy ReadEOCD.
func NewArchiveFSM(size int64) (*ArchiveFSM, error) {
	if size < 0 {
		return nil, zipcore.ErrUnknownArchiveSize
	}
	window := int(size)
	if window > 65*1024 {
		window = 65 * 1024
	}
	cap := buffer.DefaultCapacity
	if window > cap {
		cap = window
	}
	a := &ArchiveFSM{
		state:      ReadEOCD,
		buf:        buffer.New(cap),
		size:       size,
		window:     window,
		windowBase: size - int64(window),
	}
	return a, nil
}

// NextRead returns where the caller should read next and how much space is
// available. It always returns a request, whether or not the FSM is
// currently waiting on input; Process reports when input is needed.
func (a *ArchiveFSM) NextRead() ReadRequest {
	return ReadRequest{
		Offset:   a.buf.ReadOffset(a.windowBase),
		MaxBytes: len(a.buf.Space()),
	}
}

// Fill tells the FSM that n bytes were read into the slice NextRead most
// recently described, extending the buffer's data region.
func (a *ArchiveFSM) Fill(n int) { a.buf.Fill(n) }

// Space returns the writable slice a caller should read into before calling
// Fill: NextRead().MaxBytes is len(Space()), and NextRead().Offset is the
// absolute file offset Space()[0] corresponds to. The returned slice
// aliases the FSM's internal buffer and is invalidated by the next call to
// Fill, or by Process advancing the FSM's internal state.
func (a *ArchiveFSM) Space() []byte { return a.buf.Space() }

// State returns the FSM's current step.
func (a *ArchiveFSM) State() ArchiveState { return a.state }

// Process advances the FSM as far as it can with currently-buffered data.
// It returns a non-nil ReadRequest when it needs more bytes, a non-nil
// Archive when ReadCentralDirectory has finished, or an error for any fatal
// condition. Returning (nil Archive, nil error, non-nil Request) means
// "call Fill after satisfying Request, then call Process again".
func (a *ArchiveFSM) Process() (*ReadRequest, *zipcore.Archive, error) {
	for {
		switch a.state {
		case ReadEOCD:
			if a.buf.ReadBytes() < int64(a.window) {
				req := a.NextRead()
				return &req, nil, nil
			}
			eocd, offsetInWindow, err := parse.FindEOCD(a.buf.Data(), a.windowBase)
			if errors.Is(err, parse.ErrBacktrack) {
				return nil, nil, zipcore.ErrDirectoryEndSignatureNotFound
			}
			if err != nil {
				return nil, nil, err
			}
			a.eocd = eocd
			a.eocdOffset = offsetInWindow
			a.directoryOffset = int64(eocd.DirectoryOffset)
			a.directorySize = int64(eocd.DirectorySize)
			a.totalEntries = uint64(eocd.TotalEntries)
			a.comment = append([]byte(nil), eocd.Comment...)

			if a.eocdOffset < 20 {
				a.state = ReadCentralDirectory
				if err := a.reconcileGlobalOffset(); err != nil {
					return nil, nil, err
				}
				continue
			}
			a.state = ReadEOCD64Locator
			a.resetBufferForAbsoluteRead(a.eocdOffset - 20)
			req := a.NextRead()
			return &req, nil, nil

		case ReadEOCD64Locator:
			if a.buf.ReadBytes() < int64(parse.LenEOCD64Locator) {
				req := a.NextRead()
				return &req, nil, nil
			}
			loc, _, err := parse.ParseEOCD64Locator(a.buf.Data())
			if errors.Is(err, parse.ErrBacktrack) {
				// Not ZIP64; proceed with the classic record.
				a.state = ReadCentralDirectory
				if err := a.reconcileGlobalOffset(); err != nil {
					return nil, nil, err
				}
				continue
			}
			if err != nil {
				return nil, nil, err
			}
			a.locator = loc
			a.state = ReadEOCD64
			a.resetBufferForAbsoluteRead(int64(loc.EOCD64Offset))
			req := a.NextRead()
			return &req, nil, nil

		case ReadEOCD64:
			if a.buf.ReadBytes() < int64(parse.LenEOCD64) {
				req := a.NextRead()
				return &req, nil, nil
			}
			eocd64, _, err := parse.ParseEOCD64(a.buf.Data())
			if err != nil {
				return nil, nil, zipcore.ErrDirectory64EndRecordInvalid
			}
			a.eocd64 = &eocd64
			a.directoryOffset = int64(eocd64.DirectoryOffset)
			a.directorySize = int64(eocd64.DirectorySize)
			a.totalEntries = eocd64.TotalEntries
			a.state = ReadCentralDirectory
			if err := a.reconcileGlobalOffset(); err != nil {
				return nil, nil, err
			}
			continue

		case ReadCentralDirectory:
			for {
				data := a.buf.Data()
				hdr, n, err := parse.ParseCentralDirectoryHeader(data)
				if errors.Is(err, parse.ErrIncomplete) {
					req := a.NextRead()
					return &req, nil, nil
				}
				if errors.Is(err, parse.ErrBacktrack) {
					return a.finishCentralDirectory()
				}
				if err != nil {
					return nil, nil, err
				}
				a.collectHeader(hdr)
				a.buf.Consume(n)
				a.buf.Shift()
			}

		case ArchiveDone:
			return nil, nil, errors.New("zipcore/fsm: Process called after completion")
		}
	}
}

// resetBufferForAbsoluteRead repositions the buffer to start reading fresh
// at absOffset, discarding anything currently buffered (used for the jumps
// to the locator, EOCD64 record, and central directory start, none of
// which are generally adjacent to the EOCD scan window).
func (a *ArchiveFSM) resetBufferForAbsoluteRead(absOffset int64) {
	a.buf.Reset()
	a.windowBase = absOffset
}

// reconcileGlobalOffset implements the self-extracting-prefix correction:
// if the EOCD's recorded directory offset disagrees with where the
// directory actually ends up relative to the located end-of-directory
// record (the ZIP64 record when present, else the classic EOCD), assume a
// prefix of that size was prepended and shift every header offset by it.
func (a *ArchiveFSM) reconcileGlobalOffset() error {
	directoryEnd := a.eocdOffset
	if a.eocd64 != nil {
		directoryEnd = int64(a.locator.EOCD64Offset)
	}
	expectedStart := directoryEnd - a.directorySize
	if expectedStart != a.directoryOffset && expectedStart >= 0 && expectedStart < a.size {
		a.globalOffset = expectedStart - a.directoryOffset
		a.directoryOffset = expectedStart
	}
	if a.directoryOffset < 0 || a.directoryOffset >= a.size {
		return &zipcore.OutOfBoundsError{Offset: a.directoryOffset, Size: a.size}
	}
	a.resetBufferForAbsoluteRead(a.directoryOffset)
	return nil
}

// collectHeader copies out every byte slice the header borrowed from the
// buffer (since the next Shift invalidates them) and, for entries without
// the UTF-8 flag, adds the name and comment bytes to the encoding
// detection sample. Extra fields are applied later, in buildEntry.
func (a *ArchiveFSM) collectHeader(hdr parse.CentralDirectoryHeader) {
	oh := ownedHeader{
		hdr:     hdr,
		name:    append([]byte(nil), hdr.Name...),
		extra:   append([]byte(nil), hdr.Extra...),
		comment: append([]byte(nil), hdr.Comment...),
	}
	a.ownedHeaders = append(a.ownedHeaders, oh)

	if hdr.Flags&0x800 == 0 {
		if detect.NeedsDetection(oh.name) {
			a.sampler.Add(oh.name)
		}
		if detect.NeedsDetection(oh.comment) {
			a.sampler.Add(oh.comment)
		}
	}
}

// finishCentralDirectory validates the parsed header count, decodes all
// names/comments with the detected encoding, builds every Entry, and
// emits the Archive.
func (a *ArchiveFSM) finishCentralDirectory() (*ReadRequest, *zipcore.Archive, error) {
	actual := uint64(len(a.ownedHeaders)) & 0xffff
	expected := a.totalEntries & 0xffff
	if a.eocd64 != nil {
		actual = uint64(len(a.ownedHeaders))
		expected = a.totalEntries
	}
	if actual != expected {
		return nil, nil, &zipcore.InvalidCentralRecordError{Expected: expected, Actual: actual}
	}

	archiveEncoding := a.sampler.Detect()

	archiveComment, err := a.decodeWithFallback(a.comment, false, archiveEncoding)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]*zipcore.Entry, 0, len(a.ownedHeaders))
	for _, oh := range a.ownedHeaders {
		e, err := a.buildEntry(oh, archiveEncoding)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, e)
	}

	archive := &zipcore.Archive{
		Size:     a.size,
		Encoding: zipcore.FromDetect(archiveEncoding),
		Comment:  archiveComment,
		Entries:  entries,
	}
	a.state = ArchiveDone
	return nil, archive, nil
}

func (a *ArchiveFSM) decodeWithFallback(b []byte, isUTF8Flagged bool, archiveEncoding detect.Encoding) (string, error) {
	if isUTF8Flagged {
		return string(b), nil
	}
	if !detect.NeedsDetection(b) {
		return string(b), nil
	}
	s, err := detect.Decode(b, archiveEncoding)
	if err != nil {
		return "", fmt.Errorf("%w: %v", zipcore.ErrEncodingDecode, err)
	}
	return s, nil
}

func (a *ArchiveFSM) buildEntry(oh ownedHeader, archiveEncoding detect.Encoding) (*zipcore.Entry, error) {
	hdr := oh.hdr
	isUTF8 := hdr.Flags&0x800 != 0

	name, err := a.decodeWithFallback(oh.name, isUTF8, archiveEncoding)
	if err != nil {
		return nil, err
	}
	comment, err := a.decodeWithFallback(oh.comment, isUTF8, archiveEncoding)
	if err != nil {
		return nil, err
	}

	settings := hdr.ExtraFieldSettings()
	extras := parse.ParseExtraFields(oh.extra, settings)

	e := zipcore.NewEntryFromCentralDirectory(
		name, comment,
		hdr,
		a.globalOffset,
		zipcore.FromDetect(archiveEncoding),
	)
	zipcore.ApplyExtraFields(e, extras, hdr.ModDate, hdr.ModTime)
	return e, nil
}
