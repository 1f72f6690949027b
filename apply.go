package zipcore

import (
	"strings"

	"github.com/go-zipcore/zipcore/parse"
)

// ApplyExtraFields merges every extra-field subrecord into e in wire order,
// then applies the final name/mode/timestamp defaulting rules.
//
// The New Unix case reproduces a long-standing bug in the implementation
// this applier is modeled on: gid is set from uid, not from the field's own
// gid value. Archives written with New Unix extra fields therefore report
// the wrong group through this library, same as upstream.
func ApplyExtraFields(e *Entry, fields []parse.ExtraField, dosDate, dosTime uint16) {
	e.extras = fields

	for _, f := range fields {
		switch f.Tag {
		case parse.ExtraZip64:
			if f.Zip64.UncompressedSize != nil {
				e.UncompressedSize = *f.Zip64.UncompressedSize
			}
			if f.Zip64.CompressedSize != nil {
				e.CompressedSize = *f.Zip64.CompressedSize
			}
			if f.Zip64.HeaderOffset != nil {
				e.HeaderOffset = int64(*f.Zip64.HeaderOffset)
			}

		case parse.ExtraTimestamp:
			if f.Timestamp.HasModTime {
				e.Modified = parse.UnixTime(int64(int32(f.Timestamp.ModTime)))
			}

		case parse.ExtraNTFS:
			if f.NTFS.HasTimes {
				e.Modified = parse.NTFSTime(f.NTFS.MTime)
				e.Created = parse.NTFSTime(f.NTFS.CTime)
				e.Accessed = parse.NTFSTime(f.NTFS.ATime)
				e.hasCreated = true
				e.hasAccessed = true
			}

		case parse.ExtraUnix:
			e.Modified = parse.UnixTime(int64(int32(f.Unix.MTime)))
			if !e.hasUIDGID {
				e.UID = uint32(f.Unix.UID)
				e.GID = uint32(f.Unix.GID)
				e.hasUIDGID = true
			}

		case parse.ExtraNewUnix:
			e.UID = uint32(f.NewUnix.UID)
			e.GID = uint32(f.NewUnix.UID) // reproduces the upstream gid-from-uid bug
			e.hasUIDGID = true

		case parse.ExtraUnknown:
			// retained in e.extras above, ignored for normalization
		}
	}

	if strings.HasSuffix(e.Name, "/") {
		e.Mode |= ModeDir
	}

	if e.Modified.IsZero() {
		dos := parse.MSDOSTime(dosDate, dosTime)
		if dos.Equal(parse.EpochSentinel) {
			e.Modified = parse.EpochSentinel
		} else {
			e.Modified = dos
		}
	}
	if !e.hasCreated {
		e.Created = e.Modified
	}
	if !e.hasAccessed {
		e.Accessed = e.Modified
	}
}

// modeFromHost derives Mode from a central directory header's creator host
// and external attributes, per §4.3: Unix/OS X hosts carry POSIX mode in the
// upper 16 bits; Windows/VFAT/MS-DOS hosts carry DOS attributes in the low
// byte; any other host contributes nothing.
func modeFromHost(host parse.HostSystem, externalAttrs uint32) Mode {
	switch host {
	case parse.HostUnix, parse.HostOSX:
		return ModeFromUnix(externalAttrs >> 16)
	case parse.HostMSDOS, parse.HostNTFS, parse.HostVFAT:
		return ModeFromMSDOS(externalAttrs)
	default:
		return 0
	}
}
