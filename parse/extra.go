package parse

// ExtraFieldSettings tells the ZIP64 extra field parser which of its three
// positional u64s to expect: each one is present only if the corresponding
// u32 field in the enclosing header was the 0xFFFFFFFF sentinel. The fields
// have a fixed order but are individually optional, so the caller must say
// up front which ones it expects.
type ExtraFieldSettings struct {
	NeedsUncompressedSize bool
	NeedsCompressedSize   bool
	NeedsHeaderOffset     bool
}

// ExtraFieldTag identifies the kind of extra field subrecord.
type ExtraFieldTag int

const (
	ExtraUnknown ExtraFieldTag = iota
	ExtraZip64
	ExtraTimestamp
	ExtraUnix
	ExtraNewUnix
	ExtraNTFS
)

const (
	tagZip64      = 0x0001
	tagNTFS       = 0x000a
	tagUnix       = 0x000d
	tagTimestamp  = 0x5455
	tagInfoZipUID = 0x5855
	tagNewUnix    = 0x7875
)

// ExtraField is one decoded extra-field subrecord from a local or central
// directory header. Exactly one of the typed payload fields is meaningful,
// selected by Tag; RawTag holds the on-wire tag for ExtraUnknown fields.
type ExtraField struct {
	Tag    ExtraFieldTag
	RawTag uint16

	Zip64     ExtraZip64Field
	Timestamp ExtraTimestampField
	Unix      ExtraUnixField
	NewUnix   ExtraNewUnixField
	NTFS      ExtraNTFSField
}

// ExtraZip64Field is the ZIP64 extended information extra field (0x0001).
// Each pointer is nil when the corresponding size was not requested via
// ExtraFieldSettings (i.e. the outer record's u32 field was not the sentinel).
type ExtraZip64Field struct {
	UncompressedSize *uint64
	CompressedSize   *uint64
	HeaderOffset     *uint64
}

// ExtraTimestampField is the Info-ZIP extended timestamp extra field (0x5455).
// Only the modification time is modeled, matching what ZIP writers in
// practice populate for local/central directory extra data.
type ExtraTimestampField struct {
	HasModTime bool
	ModTime    uint32 // seconds since Unix epoch
}

// ExtraUnixField is the classic UNIX extra field (0x000d) or its Info-ZIP
// predecessor (0x5855), which share a layout.
type ExtraUnixField struct {
	ATime uint32
	MTime uint32
	UID   uint16
	GID   uint16
}

// ExtraNewUnixField is the Info-ZIP New Unix extra field (0x7875), supporting
// UID/GID wider than 16 bits.
type ExtraNewUnixField struct {
	UID uint64
	GID uint64
}

// ExtraNTFSField is the NTFS extra field (0x000a): modified/accessed/created
// timestamps as 100ns ticks since the NTFS epoch.
type ExtraNTFSField struct {
	HasTimes          bool
	MTime, ATime, CTime uint64
}

// ParseExtraFields decodes every subrecord in a header's extra field area.
// A malformed individual subrecord is returned as ExtraUnknown with RawTag
// set, the same as an unknown tag; a trailing subrecord whose declared size
// runs past the end of b ends the scan and is dropped. The result always
// succeeds.
func ParseExtraFields(b []byte, settings ExtraFieldSettings) []ExtraField {
	var out []ExtraField
	for len(b) >= 4 {
		tag := le16(b)
		size := int(le16(b[2:]))
		if len(b)-4 < size {
			break
		}
		payload := b[4 : 4+size]
		b = b[4+size:]

		ef, ok := parseOneExtra(tag, payload, settings)
		if !ok {
			ef = ExtraField{Tag: ExtraUnknown, RawTag: tag}
		}
		out = append(out, ef)
	}
	return out
}

func parseOneExtra(tag uint16, p []byte, settings ExtraFieldSettings) (ExtraField, bool) {
	switch tag {
	case tagZip64:
		var z ExtraZip64Field
		if settings.NeedsUncompressedSize {
			if len(p) < 8 {
				return ExtraField{}, false
			}
			v := le64(p)
			z.UncompressedSize = &v
			p = p[8:]
		}
		if settings.NeedsCompressedSize {
			if len(p) < 8 {
				return ExtraField{}, false
			}
			v := le64(p)
			z.CompressedSize = &v
			p = p[8:]
		}
		if settings.NeedsHeaderOffset {
			if len(p) < 8 {
				return ExtraField{}, false
			}
			v := le64(p)
			z.HeaderOffset = &v
		}
		return ExtraField{Tag: ExtraZip64, RawTag: tag, Zip64: z}, true

	case tagTimestamp:
		if len(p) < 1 {
			return ExtraField{}, false
		}
		if p[0]&1 == 0 || len(p) < 5 {
			return ExtraField{}, false
		}
		return ExtraField{Tag: ExtraTimestamp, RawTag: tag, Timestamp: ExtraTimestampField{
			HasModTime: true,
			ModTime:    le32(p[1:]),
		}}, true

	case tagNTFS:
		if len(p) < 4 {
			return ExtraField{}, false
		}
		sub := p[4:]
		for len(sub) >= 4 {
			subTag := le16(sub)
			subSize := int(le16(sub[2:]))
			if len(sub)-4 < subSize {
				break
			}
			if subTag == 1 && subSize >= 24 {
				payload := sub[4:]
				return ExtraField{Tag: ExtraNTFS, RawTag: tag, NTFS: ExtraNTFSField{
					HasTimes: true,
					MTime:    le64(payload),
					ATime:    le64(payload[8:]),
					CTime:    le64(payload[16:]),
				}}, true
			}
			sub = sub[4+subSize:]
		}
		return ExtraField{Tag: ExtraNTFS, RawTag: tag}, true

	case tagUnix, tagInfoZipUID:
		if len(p) < 12 {
			return ExtraField{}, false
		}
		return ExtraField{Tag: ExtraUnix, RawTag: tag, Unix: ExtraUnixField{
			ATime: le32(p),
			MTime: le32(p[4:]),
			UID:   le16(p[8:]),
			GID:   le16(p[10:]),
		}}, true

	case tagNewUnix:
		if len(p) < 1 || p[0] != 1 {
			return ExtraField{}, false
		}
		uid, rest, ok := parseVarUint(p[1:])
		if !ok {
			return ExtraField{}, false
		}
		gid, _, ok := parseVarUint(rest)
		if !ok {
			return ExtraField{}, false
		}
		return ExtraField{Tag: ExtraNewUnix, RawTag: tag, NewUnix: ExtraNewUnixField{UID: uid, GID: gid}}, true
	}
	return ExtraField{}, false
}

// parseVarUint decodes the New Unix extra field's length-prefixed integers:
// a one-byte size followed by that many little-endian bytes, widths 1/2/4/8
// only.
func parseVarUint(p []byte) (value uint64, rest []byte, ok bool) {
	if len(p) < 1 {
		return 0, nil, false
	}
	n := int(p[0])
	p = p[1:]
	if len(p) < n {
		return 0, nil, false
	}
	switch n {
	case 1:
		value = uint64(p[0])
	case 2:
		value = uint64(le16(p))
	case 4:
		value = uint64(le32(p))
	case 8:
		value = le64(p)
	default:
		return 0, nil, false
	}
	return value, p[n:], true
}
