package zipcore

import (
	"errors"
	"fmt"
)

// Sentinel format errors. Callers should use errors.Is against these, or
// errors.As against *FormatError for the ones that carry extra detail.
var (
	ErrDirectoryEndSignatureNotFound = errors.New("zipcore: end of central directory signature not found")
	ErrDirectory64EndRecordInvalid   = errors.New("zipcore: zip64 end of central directory record is invalid")
	ErrDirectoryOffsetOutsideFile    = errors.New("zipcore: central directory offset points outside file")
	ErrInvalidExtraField             = errors.New("zipcore: invalid extra field")
	ErrInvalidHeaderOffset           = errors.New("zipcore: invalid local header offset")
	ErrImpossibleNumberOfFiles       = errors.New("zipcore: impossible number of files")
	ErrInvalidLocalHeader            = errors.New("zipcore: invalid local file header")
	ErrInvalidDataDescriptor         = errors.New("zipcore: invalid data descriptor")

	ErrMethodNotSupported      = errors.New("zipcore: compression method not supported")
	ErrMethodNotEnabled        = errors.New("zipcore: compression method not enabled in this build")
	ErrLZMAVersionUnsupported  = errors.New("zipcore: unsupported LZMA SDK version")
	ErrLZMAPropertiesWrongSize = errors.New("zipcore: LZMA properties header has the wrong size")

	ErrInvalidUTF8      = errors.New("zipcore: invalid UTF-8")
	ErrStringTooLarge   = errors.New("zipcore: string exceeds 64KiB field limit")
	ErrEncodingDecode   = errors.New("zipcore: could not decode string with detected encoding")
	ErrUnknownArchiveSize = errors.New("zipcore: caller did not supply an archive size")
)

// InvalidCentralRecordError reports that the number of central directory
// headers actually parsed did not match the count the end-of-central-directory
// record claimed (compared modulo 2^16 for non-ZIP64 archives).
type InvalidCentralRecordError struct {
	Expected uint64
	Actual   uint64
}

func (e *InvalidCentralRecordError) Error() string {
	return fmt.Sprintf("zipcore: central directory claims %d entries, found %d", e.Expected, e.Actual)
}

// WrongSizeError reports that an entry's decompressed byte count did not
// match the size recorded for it.
type WrongSizeError struct {
	Expected uint64
	Actual   uint64
}

func (e *WrongSizeError) Error() string {
	return fmt.Sprintf("zipcore: wrong size: expected %d, got %d", e.Expected, e.Actual)
}

// WrongChecksumError reports a CRC32 mismatch after an entry was fully read.
type WrongChecksumError struct {
	Expected uint32
	Actual   uint32
}

func (e *WrongChecksumError) Error() string {
	return fmt.Sprintf("zipcore: wrong checksum: expected %08x, got %08x", e.Expected, e.Actual)
}

// OutOfBoundsError reports an attempt to read past the end of the archive,
// e.g. a reconciled central directory offset that lies beyond the file.
type OutOfBoundsError struct {
	Offset int64
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("zipcore: archive tried reading beyond zip archive end. %d goes beyond %d", e.Offset, e.Size)
}
