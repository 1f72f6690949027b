// Package detect implements archive-level text encoding detection: UTF-8,
// CP437, or Shift-JIS, chosen from the accumulated name and comment bytes of
// entries that do not carry the UTF-8 general-purpose flag.
package detect

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// Encoding is the detected or declared text encoding for an archive's names
// and comments.
type Encoding int

const (
	UTF8 Encoding = iota
	CP437
	ShiftJIS
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case CP437:
		return "CP437"
	case ShiftJIS:
		return "Shift-JIS"
	default:
		return "unknown"
	}
}

// sampleCap bounds how many bytes of names/comments feed the detector.
const sampleCap = 4096

// Sampler accumulates bytes from non-UTF-8-flagged entries up to sampleCap,
// then lets Detect pick an Encoding for the whole archive.
type Sampler struct {
	buf []byte
}

// Add feeds one entry's name and comment bytes into the sample, skipping any
// contribution once the cap has been reached. Only bytes that carry signal
// (see NeedsDetection) should be passed in by the caller.
func (s *Sampler) Add(b []byte) {
	if len(s.buf) >= sampleCap {
		return
	}
	room := sampleCap - len(s.buf)
	if len(b) > room {
		b = b[:room]
	}
	s.buf = append(s.buf, b...)
}

// NeedsDetection reports whether b carries encoding signal: invalid UTF-8
// always does; valid UTF-8 using only bytes safe under any single-byte
// encoding (no codepoint below 0x20, above 0x7D, or equal to 0x5C) does not.
func NeedsDetection(b []byte) bool {
	if !utf8.Valid(b) {
		return true
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7d || c == 0x5c {
			return true
		}
	}
	return false
}

// Detect picks the archive's encoding from the accumulated sample. An empty
// sample (no signal anywhere) defaults to UTF-8.
func (s *Sampler) Detect() Encoding {
	if len(s.buf) == 0 {
		return UTF8
	}
	if utf8.Valid(s.buf) {
		return UTF8
	}
	if looksLikeShiftJIS(s.buf) {
		if hasCP437BoxDrawing(s.buf) {
			return ShiftJIS
		}
		return CP437
	}
	return CP437
}

// hasCP437BoxDrawing reports whether b contains any byte in the CP437
// box-drawing region [0xB0, 0xDF], used to disambiguate a Shift-JIS guess
// from CP437 since both can decode the same bytes without error.
func hasCP437BoxDrawing(b []byte) bool {
	for _, c := range b {
		if c >= 0xb0 && c <= 0xdf {
			return true
		}
	}
	return false
}

// looksLikeShiftJIS runs a lightweight statistical check: Shift-JIS lead
// bytes (0x81-0x9F, 0xE0-0xFC) followed by a valid trail byte occur densely
// in real Shift-JIS text and rarely in arbitrary CP437 bytes.
func looksLikeShiftJIS(b []byte) bool {
	leadCount, hits := 0, 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		isLead := (c >= 0x81 && c <= 0x9f) || (c >= 0xe0 && c <= 0xfc)
		if !isLead {
			continue
		}
		leadCount++
		if i+1 >= len(b) {
			continue
		}
		trail := b[i+1]
		if (trail >= 0x40 && trail <= 0x7e) || (trail >= 0x80 && trail <= 0xfc) {
			hits++
			i++
		}
	}
	if leadCount == 0 {
		return false
	}
	return hits*2 >= leadCount
}

// Decode converts b from the given Encoding to a UTF-8 string.
func Decode(b []byte, enc Encoding) (string, error) {
	switch enc {
	case UTF8:
		return string(b), nil
	case CP437:
		out, err := charmap.CodePage437.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case ShiftJIS:
		out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return string(b), nil
	}
}
