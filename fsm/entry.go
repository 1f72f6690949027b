package fsm

import (
	"errors"
	"hash"
	"hash/crc32"

	"github.com/go-zipcore/zipcore"
	"github.com/go-zipcore/zipcore/buffer"
	"github.com/go-zipcore/zipcore/decompress"
	"github.com/go-zipcore/zipcore/detect"
	"github.com/go-zipcore/zipcore/parse"
)

// EntryState names a step in the EFSM.
type EntryState int

const (
	ReadLocalHeader EntryState = iota
	ReadData
	ReadDataDescriptor
	Validate
	EntryDone
)

// EntryFSM parses one entry's local header, drives its decompressor, and
// validates the result's size and CRC32. It owns the entry's compressed
// input buffer but never performs I/O itself.
type EntryFSM struct {
	state EntryState
	buf   *buffer.Buffer

	// entry is the Entry this EFSM was constructed for, or nil in
	// streaming mode (local-header-only discovery).
	entry *zipcore.Entry
	zip64 bool

	header parse.LocalFileHeader

	adapter        decompress.Adapter
	compressedSize uint64
	fedBytes       uint64

	hash            hash.Hash32
	uncompressedLen uint64

	descriptor parse.DataDescriptor
	hasDescriptor bool

	// bufferBase is the absolute file offset of the first byte filled
	// since buf's last Reset; ReadOffset(bufferBase) is where the next read
	// lands.
	bufferBase int64
}

// NewEntryFSM constructs an EFSM to stream entry's content, starting the
// read at entry.HeaderOffset.
func NewEntryFSM(entry *zipcore.Entry) *EntryFSM {
	return &EntryFSM{
		state:      ReadLocalHeader,
		buf:        buffer.New(buffer.DefaultCapacity),
		entry:      entry,
		zip64:      entry.CompressedSize > 0xfffffffe || entry.UncompressedSize > 0xfffffffe,
		bufferBase: entry.HeaderOffset,
	}
}

// NewStreamingEntryFSM constructs an EFSM in streaming mode: no enclosing
// Entry is known yet, so the local header alone determines everything.
// startOffset is the absolute file offset to begin reading at.
func NewStreamingEntryFSM(startOffset int64) *EntryFSM {
	return &EntryFSM{
		state:      ReadLocalHeader,
		buf:        buffer.New(buffer.DefaultCapacity),
		bufferBase: startOffset,
	}
}

// NextRead reports where the caller should read next and how much room is
// available.
func (f *EntryFSM) NextRead() ReadRequest {
	return ReadRequest{
		Offset:   f.buf.ReadOffset(f.bufferBase),
		MaxBytes: len(f.buf.Space()),
	}
}

// Fill records that n bytes were read into the slice NextRead described.
func (f *EntryFSM) Fill(n int) { f.buf.Fill(n) }

// Space returns the writable slice a caller should read into before calling
// Fill; see ArchiveFSM.Space for the exact contract.
func (f *EntryFSM) Space() []byte { return f.buf.Space() }

// Buffered returns how many unconsumed bytes are currently sitting in the
// FSM's buffer, waiting to be parsed or fed to the decompressor. Callers
// probing ahead of time whether NextEntry has enough to go on (the minimum
// is the 4-byte signature) can use this instead of guessing.
func (f *EntryFSM) Buffered() int { return len(f.buf.Data()) }

// State returns the FSM's current step.
func (f *EntryFSM) State() EntryState { return f.state }

// Name returns the entry's name as recorded in its local header, decoded
// using the UTF-8 flag and, failing that, CP437 — the conservative default
// a streaming reader falls back to without the archive-wide encoding
// sample only a full AFSM pass over the central directory can compute. It
// is only meaningful once the local header has been parsed (State() is
// past ReadLocalHeader, or output has started flowing from Process).
func (f *EntryFSM) Name() (string, error) {
	if f.header.IsUTF8() {
		return string(f.header.Name), nil
	}
	if !detect.NeedsDetection(f.header.Name) {
		return string(f.header.Name), nil
	}
	return detect.Decode(f.header.Name, detect.CP437)
}

// Method returns the entry's compression method as recorded in its local
// header.
func (f *EntryFSM) Method() zipcore.Method { return zipcore.Method(f.header.Method) }

// Process drains as much compressed data as is buffered into output,
// returning the number of decompressed bytes written, a read request if
// more compressed input is needed, and whether the entry has reached
// Validate/Done. A non-nil error is always fatal.
func (f *EntryFSM) Process(output []byte) (written int, req *ReadRequest, done bool, err error) {
	for {
		switch f.state {
		case ReadLocalHeader:
			hdr, n, perr := parse.ParseLocalFileHeader(f.buf.Data())
			if errors.Is(perr, parse.ErrIncomplete) {
				r := f.NextRead()
				return 0, &r, false, nil
			}
			if errors.Is(perr, parse.ErrBacktrack) {
				return 0, nil, false, zipcore.ErrInvalidLocalHeader
			}
			if perr != nil {
				return 0, nil, false, perr
			}
			f.header = hdr
			f.buf.Consume(n)
			f.buf.Shift()

			// The enclosing Entry's compressed size wins when known; a
			// streaming-mode EFSM (f.entry == nil) or one built from an
			// Entry with a zero placeholder size instead trusts the local
			// header, valid as long as it isn't the ZIP64 escape value. A
			// streaming-mode header with the escape value falls back to its
			// own ZIP64 extra field, since there is no enclosing Entry to
			// supply the real size.
			switch {
			case f.entry != nil && f.entry.CompressedSize != 0:
				f.compressedSize = f.entry.CompressedSize
			case hdr.CompressedSize == 0xffffffff:
				f.zip64 = true
				f.compressedSize = compressedSizeFromLocalZip64(hdr)
			default:
				f.compressedSize = uint64(hdr.CompressedSize)
			}

			var lzmaProps []byte
			if hdr.Method == uint16(zipcore.MethodLZMA) {
				props, pn, perr := parse.ParseLZMAProperties(f.buf.Data())
				if errors.Is(perr, parse.ErrIncomplete) {
					r := f.NextRead()
					return 0, &r, false, nil
				}
				if perr != nil {
					return 0, nil, false, perr
				}
				if props.VersionMajor != 2 || props.VersionMinor != 0 || props.PropertiesSize != 5 {
					return 0, nil, false, zipcore.ErrLZMAVersionUnsupported
				}
				f.buf.Consume(pn)
				f.buf.Shift()
				propsBytes := make([]byte, props.PropertiesSize)
				if len(f.buf.Data()) < len(propsBytes) {
					r := f.NextRead()
					return 0, &r, false, nil
				}
				copy(propsBytes, f.buf.Data())
				f.buf.Consume(len(propsBytes))
				f.buf.Shift()
				lzmaProps = propsBytes
				prefixLen := uint64(pn + len(propsBytes))
				if f.compressedSize >= prefixLen {
					f.compressedSize -= prefixLen
				}
			}

			adapter, aerr := decompress.New(decompress.Method(hdr.Method), lzmaProps)
			if aerr != nil {
				return 0, nil, false, aerr
			}
			f.adapter = adapter
			f.hash = crc32.NewIEEE()
			f.state = ReadData
			continue

		case ReadData:
			for {
				avail := f.buf.Data()
				remaining := f.compressedSize - f.fedBytes
				if uint64(len(avail)) > remaining {
					avail = avail[:remaining]
				}
				moreComing := f.fedBytes+uint64(len(avail)) < f.compressedSize
				read, wrote, perr := f.adapter.Process(avail, output[written:], moreComing)
				if perr != nil {
					return written, nil, false, perr
				}
				f.fedBytes += uint64(read)
				f.buf.Consume(read)
				if wrote > 0 {
					f.hash.Write(output[written : written+wrote])
					f.uncompressedLen += uint64(wrote)
					written += wrote
				}
				if read == 0 && wrote == 0 {
					if f.fedBytes < f.compressedSize {
						f.buf.Shift()
						r := f.NextRead()
						return written, &r, false, nil
					}
					// Decompressor fully drained with no more input coming.
					if f.header.HasDataDescriptor() {
						f.state = ReadDataDescriptor
					} else {
						f.state = Validate
					}
					break
				}
				if written == len(output) {
					return written, nil, false, nil
				}
			}
			continue

		case ReadDataDescriptor:
			desc, n, perr := parse.ParseDataDescriptor(f.buf.Data(), f.zip64)
			if errors.Is(perr, parse.ErrIncomplete) {
				r := f.NextRead()
				return written, &r, false, nil
			}
			if perr != nil {
				return written, nil, false, zipcore.ErrInvalidDataDescriptor
			}
			f.descriptor = desc
			f.hasDescriptor = true
			f.buf.Consume(n)
			f.buf.Shift()
			f.state = Validate
			continue

		case Validate:
			expectedCRC, expectedSize := f.expectedValidation()
			if expectedSize != 0 && expectedSize != f.uncompressedLen {
				return written, nil, false, &zipcore.WrongSizeError{Expected: expectedSize, Actual: f.uncompressedLen}
			}
			if expectedCRC != 0 && expectedCRC != f.hash.Sum32() {
				return written, nil, false, &zipcore.WrongChecksumError{Expected: expectedCRC, Actual: f.hash.Sum32()}
			}
			f.adapter.Close()
			f.state = EntryDone
			return written, nil, true, nil

		case EntryDone:
			return written, nil, true, nil
		}
	}
}

// compressedSizeFromLocalZip64 recovers the real compressed size from a
// local header's ZIP64 extra field, used only in streaming mode where no
// enclosing Entry already carries the ZIP64-resolved value.
func compressedSizeFromLocalZip64(hdr parse.LocalFileHeader) uint64 {
	settings := parse.ExtraFieldSettings{
		NeedsUncompressedSize: hdr.UncompressedSize == 0xffffffff,
		NeedsCompressedSize:   true,
	}
	for _, f := range parse.ParseExtraFields(hdr.Extra, settings) {
		if f.Tag == parse.ExtraZip64 && f.Zip64.CompressedSize != nil {
			return *f.Zip64.CompressedSize
		}
	}
	return uint64(hdr.CompressedSize)
}

// expectedValidation picks the CRC32/size to validate against, in priority
// order: the enclosing Entry's value if nonzero, then the data
// descriptor's, then the local header's.
func (f *EntryFSM) expectedValidation() (crc uint32, size uint64) {
	if f.entry != nil && f.entry.CRC32 != 0 {
		crc = f.entry.CRC32
	} else if f.hasDescriptor && f.descriptor.CRC32 != 0 {
		crc = f.descriptor.CRC32
	} else {
		crc = f.header.CRC32
	}

	if f.entry != nil && f.entry.UncompressedSize != 0 {
		size = f.entry.UncompressedSize
	} else if f.hasDescriptor && f.descriptor.UncompressedSize != 0 {
		size = f.descriptor.UncompressedSize
	} else {
		size = uint64(f.header.UncompressedSize)
	}
	return
}

// Close releases the entry's decompressor early, for cancellation before
// Validate is reached.
func (f *EntryFSM) Close() error {
	if f.adapter != nil {
		return f.adapter.Close()
	}
	return nil
}

// NextEntry attempts streaming discovery of the entry immediately following
// this one, reusing any leftover buffered bytes. It returns nil, nil when
// the archive appears exhausted (the next bytes aren't a local header,
// meaning the central directory has been reached).
func (f *EntryFSM) NextEntry() (*EntryFSM, error) {
	next := &EntryFSM{
		state:      ReadLocalHeader,
		buf:        f.buf,
		bufferBase: f.bufferBase,
	}
	_, _, err := parse.ParseLocalFileHeader(next.buf.Data())
	if errors.Is(err, parse.ErrIncomplete) {
		return next, nil
	}
	if errors.Is(err, parse.ErrBacktrack) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}
