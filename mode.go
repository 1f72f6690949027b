package zipcore

import "os"

// Mode is a cross-platform union of POSIX permission/type bits and the handful
// of MS-DOS attribute bits ZIP archives carry, independent of any particular
// host OS's os.FileMode layout (though the bit positions are chosen to match
// os.FileMode so conversion is a straight cast for the bits both share).
type Mode uint32

// Permission bits occupy the low 9 bits, rwxrwxrwx, same as Unix.
const ModePerm Mode = 0777

// Type and attribute bits, one per flag, above the permission bits. Bit
// positions mirror os.FileMode so that ToOSFileMode is a simple mask-and-cast.
const (
	ModeDir        Mode = 1 << 31
	ModeAppend     Mode = 1 << 30 // MS-DOS: FILE_ATTRIBUTE_ARCHIVE-adjacent append-only marker some writers set
	ModeExclusive  Mode = 1 << 29
	ModeTemporary  Mode = 1 << 28 // MS-DOS FILE_ATTRIBUTE_TEMPORARY
	ModeSymlink    Mode = 1 << 27
	ModeDevice     Mode = 1 << 26
	ModeNamedPipe  Mode = 1 << 25
	ModeSocket     Mode = 1 << 24
	ModeSetuid     Mode = 1 << 23
	ModeSetgid     Mode = 1 << 22
	ModeCharDevice Mode = 1 << 21
	ModeSticky     Mode = 1 << 20
	ModeIrregular  Mode = 1 << 19
)

// Kind is the coarse classification of an Entry, derived from its Mode.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindSymlink
)

// Kind classifies the mode into {File, Directory, Symlink}.
func (m Mode) Kind() Kind {
	switch {
	case m&ModeDir != 0:
		return KindDirectory
	case m&ModeSymlink != 0:
		return KindSymlink
	default:
		return KindFile
	}
}

// IsDir reports whether m has the directory bit set.
func (m Mode) IsDir() bool { return m&ModeDir != 0 }

// Perm returns the Unix permission bits (the low 9 bits) of m.
func (m Mode) Perm() Mode { return m & ModePerm }

// ToOSFileMode converts m to the standard library's os.FileMode. Every Mode
// flag, including ModeAppend/ModeExclusive/ModeTemporary, maps to its
// os.FileMode counterpart, so no bit is dropped.
func (m Mode) ToOSFileMode() os.FileMode {
	fm := os.FileMode(m & ModePerm)
	if m&ModeDir != 0 {
		fm |= os.ModeDir
	}
	if m&ModeSymlink != 0 {
		fm |= os.ModeSymlink
	}
	if m&ModeDevice != 0 {
		fm |= os.ModeDevice
	}
	if m&ModeNamedPipe != 0 {
		fm |= os.ModeNamedPipe
	}
	if m&ModeSocket != 0 {
		fm |= os.ModeSocket
	}
	if m&ModeSetuid != 0 {
		fm |= os.ModeSetuid
	}
	if m&ModeSetgid != 0 {
		fm |= os.ModeSetgid
	}
	if m&ModeCharDevice != 0 {
		fm |= os.ModeCharDevice
	}
	if m&ModeSticky != 0 {
		fm |= os.ModeSticky
	}
	if m&ModeIrregular != 0 {
		fm |= os.ModeIrregular
	}
	if m&ModeAppend != 0 {
		fm |= os.ModeAppend
	}
	if m&ModeExclusive != 0 {
		fm |= os.ModeExclusive
	}
	if m&ModeTemporary != 0 {
		fm |= os.ModeTemporary
	}
	return fm
}

// Unix mode_t type bits, as agreed on by zip tools though never specified.
const (
	unixIFMT   = 0xf000
	unixIFSOCK = 0xc000
	unixIFLNK  = 0xa000
	unixIFREG  = 0x8000
	unixIFBLK  = 0x6000
	unixIFDIR  = 0x4000
	unixIFCHR  = 0x2000
	unixIFIFO  = 0x1000
	unixISUID  = 0x800
	unixISGID  = 0x400
	unixISVTX  = 0x200
)

// MS-DOS/VFAT external-attribute bits.
const (
	dosReadOnly  = 0x01
	dosHidden    = 0x02
	dosSystem    = 0x04
	dosDirectory = 0x10
	dosArchive   = 0x20
)

// ModeFromUnix masks the file-type and permission bits out of a Unix mode_t
// value (as found in the upper 16 bits of a central directory header's
// external attributes, for Unix/OS X creator hosts).
func ModeFromUnix(m uint32) Mode {
	mode := Mode(m) & ModePerm
	switch m & unixIFMT {
	case unixIFBLK:
		mode |= ModeDevice
	case unixIFCHR:
		mode |= ModeDevice | ModeCharDevice
	case unixIFDIR:
		mode |= ModeDir
	case unixIFIFO:
		mode |= ModeNamedPipe
	case unixIFLNK:
		mode |= ModeSymlink
	case unixIFSOCK:
		mode |= ModeSocket
	case unixIFREG:
		// nothing further to do
	}
	if m&unixISGID != 0 {
		mode |= ModeSetgid
	}
	if m&unixISUID != 0 {
		mode |= ModeSetuid
	}
	if m&unixISVTX != 0 {
		mode |= ModeSticky
	}
	return mode
}

// ModeFromMSDOS grants 0777 to directories and 0666 to files, withholding
// write permission when the read-only attribute bit is set, per the MS-DOS
// convention zip writers use when they have no POSIX mode to carry.
func ModeFromMSDOS(attrs uint32) Mode {
	var mode Mode
	if attrs&dosDirectory != 0 {
		mode = ModeDir | 0777
	} else {
		mode = 0666
	}
	if attrs&dosReadOnly != 0 {
		mode &^= 0222
	}
	return mode
}
