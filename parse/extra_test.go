package parse

import "testing"

func le16Bytes(v uint16) []byte {
	b := make([]byte, 2)
	putLE16(b, v)
	return b
}

func le32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	putLE32(b, v)
	return b
}

func le64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	putLE64(b, v)
	return b
}

func buildExtraRecord(tag uint16, payload []byte) []byte {
	b := append([]byte{}, le16Bytes(tag)...)
	b = append(b, le16Bytes(uint16(len(payload)))...)
	return append(b, payload...)
}

func TestParseExtraFieldsZip64AllThree(t *testing.T) {
	payload := append(append(append([]byte{}, le64Bytes(111)...), le64Bytes(222)...), le64Bytes(333)...)
	raw := buildExtraRecord(tagZip64, payload)
	fields := ParseExtraFields(raw, ExtraFieldSettings{
		NeedsUncompressedSize: true,
		NeedsCompressedSize:   true,
		NeedsHeaderOffset:     true,
	})
	if len(fields) != 1 || fields[0].Tag != ExtraZip64 {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	z := fields[0].Zip64
	if z.UncompressedSize == nil || *z.UncompressedSize != 111 {
		t.Fatalf("uncompressed size: %+v", z)
	}
	if z.CompressedSize == nil || *z.CompressedSize != 222 {
		t.Fatalf("compressed size: %+v", z)
	}
	if z.HeaderOffset == nil || *z.HeaderOffset != 333 {
		t.Fatalf("header offset: %+v", z)
	}
}

func TestParseExtraFieldsZip64OnlyUncompressed(t *testing.T) {
	payload := le64Bytes(999)
	raw := buildExtraRecord(tagZip64, payload)
	fields := ParseExtraFields(raw, ExtraFieldSettings{NeedsUncompressedSize: true})
	if len(fields) != 1 {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	z := fields[0].Zip64
	if z.UncompressedSize == nil || *z.UncompressedSize != 999 {
		t.Fatalf("unexpected: %+v", z)
	}
	if z.CompressedSize != nil || z.HeaderOffset != nil {
		t.Fatalf("unrequested fields populated: %+v", z)
	}
}

func TestParseExtraFieldsTimestamp(t *testing.T) {
	payload := append([]byte{1}, le32Bytes(1700000000)...)
	raw := buildExtraRecord(tagTimestamp, payload)
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 1 || fields[0].Tag != ExtraTimestamp {
		t.Fatalf("unexpected: %+v", fields)
	}
	if !fields[0].Timestamp.HasModTime || fields[0].Timestamp.ModTime != 1700000000 {
		t.Fatalf("unexpected timestamp: %+v", fields[0].Timestamp)
	}
}

func TestParseExtraFieldsTimestampNoModTimeBitSkipped(t *testing.T) {
	payload := []byte{0}
	raw := buildExtraRecord(tagTimestamp, payload)
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 1 || fields[0].Tag != ExtraUnknown {
		t.Fatalf("expected unknown fallback, got: %+v", fields)
	}
}

func TestParseExtraFieldsUnix(t *testing.T) {
	payload := append(append(append(append([]byte{},
		le32Bytes(111)...), le32Bytes(222)...), le16Bytes(7)...), le16Bytes(9)...)
	raw := buildExtraRecord(tagUnix, payload)
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 1 || fields[0].Tag != ExtraUnix {
		t.Fatalf("unexpected: %+v", fields)
	}
	u := fields[0].Unix
	if u.ATime != 111 || u.MTime != 222 || u.UID != 7 || u.GID != 9 {
		t.Fatalf("unexpected unix field: %+v", u)
	}
}

func TestParseExtraFieldsNewUnix(t *testing.T) {
	payload := append([]byte{1}, byte(2))
	payload = append(payload, le16Bytes(1001)...)
	payload = append(payload, 2)
	payload = append(payload, le16Bytes(1002)...)
	raw := buildExtraRecord(tagNewUnix, payload)
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 1 || fields[0].Tag != ExtraNewUnix {
		t.Fatalf("unexpected: %+v", fields)
	}
	nu := fields[0].NewUnix
	if nu.UID != 1001 || nu.GID != 1002 {
		t.Fatalf("unexpected new unix field: %+v", nu)
	}
}

func TestParseExtraFieldsNTFS(t *testing.T) {
	sub := append(append(append([]byte{}, le64Bytes(10)...), le64Bytes(20)...), le64Bytes(30)...)
	subRecord := append(append([]byte{}, le16Bytes(1)...), le16Bytes(uint16(len(sub)))...)
	subRecord = append(subRecord, sub...)
	payload := append([]byte{0, 0, 0, 0}, subRecord...)
	raw := buildExtraRecord(tagNTFS, payload)
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 1 || fields[0].Tag != ExtraNTFS {
		t.Fatalf("unexpected: %+v", fields)
	}
	n := fields[0].NTFS
	if !n.HasTimes || n.MTime != 10 || n.ATime != 20 || n.CTime != 30 {
		t.Fatalf("unexpected ntfs field: %+v", n)
	}
}

func TestParseExtraFieldsUnknownTag(t *testing.T) {
	raw := buildExtraRecord(0x9999, []byte{1, 2, 3})
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 1 || fields[0].Tag != ExtraUnknown || fields[0].RawTag != 0x9999 {
		t.Fatalf("unexpected: %+v", fields)
	}
}

func TestParseExtraFieldsMultipleRecords(t *testing.T) {
	a := buildExtraRecord(0x9999, []byte{1})
	b := buildExtraRecord(tagUnix, append(append(append(append([]byte{},
		le32Bytes(1)...), le32Bytes(2)...), le16Bytes(3)...), le16Bytes(4)...))
	raw := append(a, b...)
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %+v", len(fields), fields)
	}
	if fields[0].Tag != ExtraUnknown || fields[1].Tag != ExtraUnix {
		t.Fatalf("unexpected order/tags: %+v", fields)
	}
}

func TestParseExtraFieldsTruncatedSubrecordFallsBackToUnknown(t *testing.T) {
	raw := buildExtraRecord(tagUnix, []byte{1})
	fields := ParseExtraFields(raw, ExtraFieldSettings{})
	if len(fields) != 1 || fields[0].Tag != ExtraUnknown || fields[0].RawTag != tagUnix {
		t.Fatalf("expected unknown fallback for truncated subrecord, got %+v", fields)
	}
}
