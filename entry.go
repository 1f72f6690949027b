package zipcore

import (
	"time"

	"github.com/go-zipcore/zipcore/parse"
)

// Method is a compression method code, shared with the decompress package's
// numbering.
type Method uint16

const (
	MethodStore     Method = 0
	MethodDeflate   Method = 8
	MethodDeflate64 Method = 9
	MethodBzip2     Method = 12
	MethodLZMA      Method = 14
	MethodZstd      Method = 93
)

// Entry is normalized per-file metadata, built once from a central directory
// header plus its merged extra fields and never mutated afterward.
type Entry struct {
	Name    string
	Comment string

	Method Method

	Modified             time.Time
	Created              time.Time
	Accessed             time.Time
	hasCreated           bool
	hasAccessed          bool

	// HeaderOffset is the absolute file offset of the local header,
	// including any non-zip prefix (self-extracting stub) already added in.
	HeaderOffset int64

	ReaderVersion parse.Version
	Flags         uint16

	UID, GID   uint32
	hasUIDGID  bool

	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64

	Mode Mode

	Encoding Encoding

	extras []parse.ExtraField
}

// NewEntryFromCentralDirectory builds an Entry from a decoded central
// directory header, before extra fields have been merged in. Callers must
// follow up with ApplyExtraFields to get a fully normalized Entry.
func NewEntryFromCentralDirectory(name, comment string, hdr parse.CentralDirectoryHeader, globalOffset int64, encoding Encoding) *Entry {
	version := parse.ParseVersion(hdr.ReaderVersion)
	madeBy := parse.ParseVersion(hdr.CreatorVersion)
	return &Entry{
		Name:             name,
		Comment:          comment,
		Method:           Method(hdr.Method),
		HeaderOffset:     int64(hdr.HeaderOffset) + globalOffset,
		ReaderVersion:    version,
		Flags:            hdr.Flags,
		CRC32:            hdr.CRC32,
		CompressedSize:   uint64(hdr.CompressedSize),
		UncompressedSize: uint64(hdr.UncompressedSize),
		Mode:             modeFromHost(madeBy.Host, hdr.ExternalAttrs),
		Encoding:         encoding,
	}
}

// Kind classifies the entry by its mode bits.
func (e *Entry) Kind() Kind { return e.Mode.Kind() }

// HasUIDGID reports whether a Unix or New-Unix extra field supplied
// ownership information.
func (e *Entry) HasUIDGID() bool { return e.hasUIDGID }

// HasCreated reports whether a created timestamp was supplied by an extra
// field (as opposed to defaulting).
func (e *Entry) HasCreated() bool { return e.hasCreated }

// HasAccessed reports whether an accessed timestamp was supplied by an
// extra field.
func (e *Entry) HasAccessed() bool { return e.hasAccessed }

// HasDataDescriptor reports whether bit 3 of the general-purpose flags is
// set, meaning CRC32/sizes trail the compressed data instead of living in
// the local header.
func (e *Entry) HasDataDescriptor() bool { return e.Flags&0x8 != 0 }

// IsUTF8Flagged reports whether bit 11 of the general-purpose flags is set.
func (e *Entry) IsUTF8Flagged() bool { return e.Flags&0x800 != 0 }

// ExtraFields returns every extra-field subrecord this entry carried,
// including ones normalization ignored (e.g. Unknown tags), in wire order.
func (e *Entry) ExtraFields() []parse.ExtraField { return e.extras }
