package parse

// LocalFileHeader is a per-entry local header: the record immediately
// preceding an entry's (possibly compressed) data.
type LocalFileHeader struct {
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Name             []byte
	Extra            []byte
}

// HasDataDescriptor reports whether bit 3 of Flags (the data-descriptor
// flag) is set.
func (h LocalFileHeader) HasDataDescriptor() bool { return h.Flags&0x8 != 0 }

// IsUTF8 reports whether bit 11 of Flags (the UTF-8 language encoding flag)
// is set.
func (h LocalFileHeader) IsUTF8() bool { return h.Flags&0x800 != 0 }

// ParseLocalFileHeader parses a local file header, not including the LZMA
// properties header that may follow it (see ParseLZMAProperties).
func ParseLocalFileHeader(b []byte) (LocalFileHeader, int, error) {
	if len(b) < 4 {
		return LocalFileHeader{}, 0, ErrIncomplete
	}
	if le32(b) != sigLocalFileHeader {
		return LocalFileHeader{}, 0, ErrBacktrack
	}
	if len(b) < LenLocalFileHeader {
		return LocalFileHeader{}, 0, ErrIncomplete
	}
	nameLen := int(le16(b[26:]))
	extraLen := int(le16(b[28:]))
	total := LenLocalFileHeader + nameLen + extraLen
	if len(b) < total {
		return LocalFileHeader{}, 0, ErrIncomplete
	}
	h := LocalFileHeader{
		ReaderVersion:    le16(b[4:]),
		Flags:            le16(b[6:]),
		Method:           le16(b[8:]),
		ModTime:          le16(b[10:]),
		ModDate:          le16(b[12:]),
		CRC32:            le32(b[14:]),
		CompressedSize:   le32(b[18:]),
		UncompressedSize: le32(b[22:]),
		Name:             b[30 : 30+nameLen],
		Extra:            b[30+nameLen : total],
	}
	return h, total, nil
}

// LZMAProperties is the 4-byte header ZIP's LZMA method prepends before the
// raw LZMA1 stream: an SDK version plus the size of the properties blob that
// follows it on the wire (always 5 for the version this package accepts).
type LZMAProperties struct {
	VersionMajor, VersionMinor byte
	PropertiesSize             uint16
}

// ParseLZMAProperties parses the 4-byte LZMA properties header. It does not
// itself reject unexpected version/size combinations; callers enforce the
// only combination the core accepts (SDK version 2.0, a 5-byte properties
// blob) since that's a semantic check, not a shape one.
func ParseLZMAProperties(b []byte) (LZMAProperties, int, error) {
	if len(b) < LenLZMAPropsHeader {
		return LZMAProperties{}, 0, ErrIncomplete
	}
	p := LZMAProperties{VersionMajor: b[0], VersionMinor: b[1], PropertiesSize: le16(b[2:])}
	return p, LenLZMAPropsHeader, nil
}
