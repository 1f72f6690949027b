package parse

import "time"

// MSDOSTime converts a 2-second-resolution MS-DOS date/time pair into a UTC
// time.Time. MS-DOS timestamps carry no timezone; the format's convention
// (and this package's) is to treat them as already UTC.
func MSDOSTime(date, t uint16) time.Time {
	year := int(date>>9) + 1980
	month := time.Month(date >> 5 & 0xf)
	day := int(date & 0x1f)
	hour := int(t >> 11)
	minute := int(t >> 5 & 0x3f)
	second := int(t&0x1f) * 2
	if month < time.January || month > time.December || day == 0 {
		return time.Unix(0, 0).UTC()
	}
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}

// EncodeMSDOSTime is the inverse of MSDOSTime, used by callers that need to
// fall back to a DOS timestamp representation (e.g. re-deriving a missing
// extra-field timestamp is never required, but round-tripping is useful for
// tests).
func EncodeMSDOSTime(t time.Time) (date, timeOfDay uint16) {
	t = t.UTC()
	date = uint16(t.Day()) | uint16(t.Month())<<5 | uint16(t.Year()-1980)<<9
	timeOfDay = uint16(t.Second()/2) | uint16(t.Minute())<<5 | uint16(t.Hour())<<11
	return
}

// ntfsEpoch is 1601-01-01 UTC, the origin of NTFS 100ns-tick timestamps.
var ntfsEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// NTFSTime converts a count of 100ns ticks since the NTFS epoch to a UTC
// time.Time.
func NTFSTime(ticks uint64) time.Time {
	const ticksPerSecond = 1e7
	const nsPerTick = 1e9 / ticksPerSecond
	secs := int64(ticks / ticksPerSecond)
	nsecs := int64(ticks%ticksPerSecond) * nsPerTick
	return ntfsEpoch.Add(time.Duration(secs)*time.Second + time.Duration(nsecs))
}

// UnixTime converts Unix epoch seconds (signed, per the classic and extended
// timestamp extra fields) to a UTC time.Time.
func UnixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// EpochSentinel is the fallback timestamp used when no usable encoding was
// found: the Unix epoch.
var EpochSentinel = time.Unix(0, 0).UTC()
