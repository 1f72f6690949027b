package zipcore

import "github.com/go-zipcore/zipcore/detect"

// Encoding is the text encoding detected (or declared) for an archive's names
// and comments.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingCP437
	EncodingShiftJIS
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "UTF-8"
	case EncodingCP437:
		return "CP437"
	case EncodingShiftJIS:
		return "Shift-JIS"
	default:
		return "unknown"
	}
}

// FromDetect converts the detect package's verdict into the public
// Encoding type.
func FromDetect(d detect.Encoding) Encoding {
	switch d {
	case detect.CP437:
		return EncodingCP437
	case detect.ShiftJIS:
		return EncodingShiftJIS
	default:
		return EncodingUTF8
	}
}

// ToDetect converts Encoding to the detect package's type, needed when a
// caller already has an Encoding (e.g. from the UTF-8 flag) and wants to
// decode strings through the detect package's Decode function.
func (e Encoding) ToDetect() detect.Encoding {
	switch e {
	case EncodingCP437:
		return detect.CP437
	case EncodingShiftJIS:
		return detect.ShiftJIS
	default:
		return detect.UTF8
	}
}
