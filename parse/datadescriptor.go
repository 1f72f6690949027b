package parse

// DataDescriptor is the optional trailer following a stored entry's
// compressed bytes when the local header's data-descriptor flag is set.
type DataDescriptor struct {
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
}

// ParseDataDescriptor parses a data descriptor, tolerating the de-facto but
// non-mandatory leading signature, and choosing 32- or 64-bit size fields
// based on zip64.
func ParseDataDescriptor(b []byte, zip64 bool) (DataDescriptor, int, error) {
	sizeFieldWidth := 4
	if zip64 {
		sizeFieldWidth = 8
	}
	minLen := 4 + 2*sizeFieldWidth // crc32 + two sizes, no signature
	if len(b) < 4 {
		return DataDescriptor{}, 0, ErrIncomplete
	}

	body := b
	consumed := 0
	if le32(b) == sigDataDescriptor {
		consumed = 4
		body = b[4:]
	}
	if len(body) < minLen {
		return DataDescriptor{}, 0, ErrIncomplete
	}

	var d DataDescriptor
	d.CRC32 = le32(body)
	if zip64 {
		d.CompressedSize = le64(body[4:])
		d.UncompressedSize = le64(body[12:])
	} else {
		d.CompressedSize = uint64(le32(body[4:]))
		d.UncompressedSize = uint64(le32(body[8:]))
	}
	return d, consumed + minLen, nil
}
