package parse

// EOCD is the classic end-of-central-directory record.
type EOCD struct {
	DiskNumber          uint16
	DirectoryDiskNumber uint16
	EntriesThisDisk      uint16
	TotalEntries         uint16
	DirectorySize        uint32
	DirectoryOffset      uint32
	Comment              []byte
}

// ParseEOCD looks for an EOCD record whose fixed portion starts at b[0]. It
// does not scan; see FindEOCD for the high-to-low window scan the AFSM uses.
func ParseEOCD(b []byte) (EOCD, int, error) {
	if len(b) < 4 {
		return EOCD{}, 0, ErrIncomplete
	}
	if le32(b) != sigEOCD {
		return EOCD{}, 0, ErrBacktrack
	}
	if len(b) < LenEOCD {
		return EOCD{}, 0, ErrIncomplete
	}
	commentLen := int(le16(b[20:]))
	total := LenEOCD + commentLen
	if len(b) < total {
		return EOCD{}, 0, ErrIncomplete
	}
	e := EOCD{
		DiskNumber:          le16(b[4:]),
		DirectoryDiskNumber: le16(b[6:]),
		EntriesThisDisk:     le16(b[8:]),
		TotalEntries:        le16(b[10:]),
		DirectorySize:       le32(b[12:]),
		DirectoryOffset:     le32(b[16:]),
		Comment:             b[22:total],
	}
	return e, total, nil
}

// FindEOCD scans window from high addresses to low addresses looking for a
// valid EOCD record, so that an EOCD signature occurring inside an earlier
// archive comment never wins over the real trailing record. windowBase is
// the absolute file offset of window[0]. It returns the absolute offset of
// the record found.
func FindEOCD(window []byte, windowBase int64) (EOCD, int64, error) {
	for i := len(window) - 4; i >= 0; i-- {
		if le32(window[i:]) != sigEOCD {
			continue
		}
		e, _, err := ParseEOCD(window[i:])
		if err == nil {
			return e, windowBase + int64(i), nil
		}
		if err == ErrBacktrack {
			continue
		}
		// incomplete: the window is too short to hold the comment this
		// candidate claims; it's not a real record at this offset either.
		continue
	}
	return EOCD{}, 0, ErrBacktrack
}

// EOCD64Locator is the ZIP64 end-of-central-directory locator: a fixed
// 20-byte record immediately preceding the classic EOCD when present.
type EOCD64Locator struct {
	DiskWithEOCD64    uint32
	EOCD64Offset      uint64
	TotalDisks        uint32
}

// ParseEOCD64Locator parses the fixed-size ZIP64 locator record.
func ParseEOCD64Locator(b []byte) (EOCD64Locator, int, error) {
	if len(b) < 4 {
		return EOCD64Locator{}, 0, ErrIncomplete
	}
	if le32(b) != sigEOCD64Locator {
		return EOCD64Locator{}, 0, ErrBacktrack
	}
	if len(b) < LenEOCD64Locator {
		return EOCD64Locator{}, 0, ErrIncomplete
	}
	l := EOCD64Locator{
		DiskWithEOCD64: le32(b[4:]),
		EOCD64Offset:   le64(b[8:]),
		TotalDisks:     le32(b[16:]),
	}
	return l, LenEOCD64Locator, nil
}

// EOCD64 is the ZIP64 end-of-central-directory record.
type EOCD64 struct {
	CreatorVersion      uint16
	ReaderVersion       uint16
	DiskNumber          uint32
	DirectoryDiskNumber uint32
	EntriesThisDisk     uint64
	TotalEntries        uint64
	DirectorySize       uint64
	DirectoryOffset     uint64
}

// ParseEOCD64 parses the fixed-size ZIP64 EOCD record. Any extensible data
// sector that might follow the fixed fields (per RecordSize) is ignored.
func ParseEOCD64(b []byte) (EOCD64, int, error) {
	if len(b) < 4 {
		return EOCD64{}, 0, ErrIncomplete
	}
	if le32(b) != sigEOCD64 {
		return EOCD64{}, 0, ErrBacktrack
	}
	if len(b) < LenEOCD64 {
		return EOCD64{}, 0, ErrIncomplete
	}
	e := EOCD64{
		CreatorVersion:      le16(b[12:]),
		ReaderVersion:       le16(b[14:]),
		DiskNumber:          le32(b[16:]),
		DirectoryDiskNumber: le32(b[20:]),
		EntriesThisDisk:     le64(b[24:]),
		TotalEntries:        le64(b[32:]),
		DirectorySize:       le64(b[40:]),
		DirectoryOffset:     le64(b[48:]),
	}
	return e, LenEOCD64, nil
}
