// Package parse implements partial-input-aware byte parsers for ZIP
// structural records: the end-of-central-directory family, central and local
// file headers, data descriptors, and extra-field subrecords.
//
// Every parser follows the same three-way discipline instead of a single
// error return: [ErrIncomplete] means "call me again once more bytes are
// available", [ErrBacktrack] means "this buffer does not hold this record at
// all, try something else", and any other non-nil error is a fatal, cut
// failure — the bytes matched this record's shape well enough to attempt a
// parse, and the parse failed. Callers (the fsm package) rely on being able
// to tell these apart with errors.Is.
package parse

import "errors"

// ErrIncomplete is returned by a parser when the supplied buffer is a valid
// prefix of the record being parsed, but too short to finish decoding it.
// The caller should supply more bytes and retry, without discarding what it
// already has.
var ErrIncomplete = errors.New("parse: incomplete input")

// ErrBacktrack is returned when the supplied buffer does not contain this
// record at all (wrong magic, or the position doesn't look plausible). The
// caller may try parsing the buffer as something else, or may simply treat
// the record as absent.
var ErrBacktrack = errors.New("parse: record not present")

const (
	sigLocalFileHeader  = 0x04034b50
	sigCentralDirHeader = 0x02014b50
	sigEOCD             = 0x06054b50
	sigEOCD64           = 0x06064b50
	sigEOCD64Locator    = 0x07064b50
	sigDataDescriptor   = 0x08074b50
)

const (
	// LenEOCD is the fixed-size portion of the end-of-central-directory
	// record, not including the variable-length comment.
	LenEOCD = 22
	// LenEOCD64Locator is the fixed size of the ZIP64 EOCD locator.
	LenEOCD64Locator = 20
	// LenEOCD64 is the fixed size of the ZIP64 end-of-central-directory
	// record, not including any appended extensible data sector.
	LenEOCD64 = 56
	// LenCentralDirHeader is the fixed-size portion of a central directory
	// file header, not including name/extra/comment.
	LenCentralDirHeader = 46
	// LenLocalFileHeader is the fixed-size portion of a local file header,
	// not including name/extra.
	LenLocalFileHeader = 30
	// LenDataDescriptor32 is the size of a data descriptor with 32-bit
	// sizes, including its optional signature.
	LenDataDescriptor32 = 16
	// LenDataDescriptor64 is the size of a data descriptor with 64-bit
	// sizes, including its signature.
	LenDataDescriptor64 = 24
	// LenLZMAPropsHeader is the size of the LZMA properties header that
	// follows a local file header when Method is LZMA.
	LenLZMAPropsHeader = 4

	uint16max = 1<<16 - 1
	uint32max = 1<<32 - 1
)

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func le64(b []byte) uint64 {
	return uint64(le32(b)) | uint64(le32(b[4:]))<<32
}

func putLE16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
func putLE64(b []byte, v uint64) {
	putLE32(b, uint32(v))
	putLE32(b[4:], uint32(v>>32))
}
